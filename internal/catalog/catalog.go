// SPDX-License-Identifier: MPL-2.0

package catalog

import "slices"

// Catalog is an ordered sequence of command entries.
type Catalog struct {
	entries []Entry
}

// Merge concatenates the global entries followed by the file entries.
// Order is preserved and nothing is de-duplicated.
func Merge(global, file []Entry) Catalog {
	entries := make([]Entry, 0, len(global)+len(file))
	entries = append(entries, global...)
	entries = append(entries, file...)
	return Catalog{entries: entries}
}

// Len returns the number of entries.
func (c Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in catalog order.
func (c Catalog) Entries() []Entry { return slices.Clone(c.entries) }

// Names returns the display labels in catalog order. Duplicate names are
// kept so every entry has its own choice.
func (c Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// FindByName returns the first entry, in catalog order, whose name equals
// name. When a global and a file entry share a name, the global one wins
// regardless of which label the user picked.
func (c Catalog) FindByName(name string) (Entry, bool) {
	idx := slices.IndexFunc(c.entries, func(e Entry) bool { return e.Name == name })
	if idx < 0 {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// DuplicateNames returns the names that appear more than once, in the order
// of their first repeat.
func (c Catalog) DuplicateNames() []string {
	seen := make(map[string]int, len(c.entries))
	var dups []string
	for _, e := range c.entries {
		seen[e.Name]++
		if seen[e.Name] == 2 {
			dups = append(dups, e.Name)
		}
	}
	return dups
}

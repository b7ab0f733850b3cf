// SPDX-License-Identifier: MPL-2.0

// Package catalog holds the merged, ordered list of runnable commands.
//
// A Catalog is the concatenation of the global commands (from the user's
// settings) followed by the workspace file commands. It is rebuilt for every
// invocation and never cached. Names are display labels: duplicates are kept
// for display, and FindByName resolves a selected label to the first entry
// carrying it.
package catalog

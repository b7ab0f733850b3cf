// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SourceGlobal marks an entry defined in the user's global settings.
	SourceGlobal Source = "global"
	// SourceFile marks an entry defined in the workspace command file.
	SourceFile Source = "file"
)

var (
	// ErrInvalidEntry is the sentinel error wrapped by InvalidEntryError.
	ErrInvalidEntry = errors.New("invalid command entry")
	// ErrInvalidSource is returned when a Source value is not recognized.
	ErrInvalidSource = errors.New("invalid command source")
)

type (
	// Source identifies where a catalog entry was defined. It is informational
	// only; lookup precedence is purely positional.
	Source string

	// InvalidSourceError is returned when a Source value is not recognized.
	InvalidSourceError struct {
		Value Source
	}

	// Entry is a named shell command template. The target path is appended
	// (file mode) or used as the working directory (directory mode) at
	// execution time; the template itself carries no placeholders.
	Entry struct {
		// Name is the display label.
		Name string
		// Command is the shell command template.
		Command string
		// Source records which command list defined the entry.
		Source Source
	}

	// InvalidEntryError collects field-level validation failures of an Entry.
	InvalidEntryError struct {
		Name        string
		FieldErrors []error
	}
)

// String returns the string representation of the Source.
func (s Source) String() string { return string(s) }

// Validate returns an error if the Source is not one of the defined sources.
func (s Source) Validate() error {
	switch s {
	case SourceGlobal, SourceFile:
		return nil
	default:
		return &InvalidSourceError{Value: s}
	}
}

// Error implements the error interface for InvalidSourceError.
func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid command source %q (valid: global, file)", e.Value)
}

// Unwrap returns ErrInvalidSource for errors.Is() compatibility.
func (e *InvalidSourceError) Unwrap() error { return ErrInvalidSource }

// Validate returns an error if the entry has an empty name or command, or
// an unrecognized source.
func (e Entry) Validate() error {
	var errs []error
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, errors.New("name must be non-empty"))
	}
	if strings.TrimSpace(e.Command) == "" {
		errs = append(errs, errors.New("command must be non-empty"))
	}
	if err := e.Source.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidEntryError{Name: e.Name, FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidEntryError.
func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid command entry %q: %v", e.Name, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidEntry for errors.Is() compatibility.
func (e *InvalidEntryError) Unwrap() error { return ErrInvalidEntry }

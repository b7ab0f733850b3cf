// SPDX-License-Identifier: MPL-2.0

package commandsource

import (
	"errors"
	"fmt"
)

const (
	// ReasonUnreadable means the document could not be read from disk.
	ReasonUnreadable Reason = "unreadable"
	// ReasonInvalidJSON means the document is not strict JSON.
	ReasonInvalidJSON Reason = "invalid-json"
	// ReasonInvalidShape means the JSON does not match {"commands": [{name, command}]}.
	ReasonInvalidShape Reason = "invalid-shape"
	// ReasonTooLarge means the document exceeds the size limit.
	ReasonTooLarge Reason = "too-large"
)

// ErrConfigRead is the sentinel error wrapped by ConfigReadError.
var ErrConfigRead = errors.New("could not read or parse command document")

type (
	// Reason classifies a ConfigReadError.
	Reason string

	// ConfigReadError is returned when the command document exists but cannot
	// be turned into entries.
	ConfigReadError struct {
		Path   string
		Reason Reason
		Cause  error
	}
)

// String returns the string representation of the Reason.
func (r Reason) String() string { return string(r) }

// Error implements the error interface.
func (e *ConfigReadError) Error() string {
	return fmt.Sprintf("could not read or parse %s (%s): %v", e.Path, e.Reason, e.Cause)
}

// Unwrap returns ErrConfigRead and the cause, so errors.Is matches both.
func (e *ConfigReadError) Unwrap() []error {
	return []error{ErrConfigRead, e.Cause}
}

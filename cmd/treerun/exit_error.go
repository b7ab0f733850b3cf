// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/treerun/treerun/pkg/types"
)

// ExitAborted is the process status of an action that was rejected before a
// command could start. The exit status of a started command is never
// propagated; it is only reported through debug notifications.
const ExitAborted types.ExitCode = 1

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// aborted wraps err as an ExitAborted ExitError.
func aborted(err error) *ExitError {
	return &ExitError{Code: ExitAborted, Err: err}
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"

	"github.com/treerun/treerun/pkg/types"
)

// Result contains the result of a command execution.
type Result struct {
	// ExitCode is the process exit status. It is meaningful only when Exited is true.
	ExitCode types.ExitCode
	// Exited is false when the process never produced an exit status: it
	// failed to start, was killed by a signal, or the shell string did not parse.
	Exited bool
	// Error describes why the run failed without an exit status.
	Error error
	// Output contains captured stdout.
	Output string
	// ErrOutput contains captured stderr.
	ErrOutput string
}

// NewErrorResult creates a Result for a run that produced no exit status.
func NewErrorResult(err error) *Result {
	return &Result{Error: err}
}

// NewExitResult creates a Result for a process that exited with code.
func NewExitResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code, Exited: true}
}

// Success returns true if the command exited with status 0.
func (r *Result) Success() bool {
	return r.Exited && r.ExitCode.IsSuccess() && r.Error == nil
}

// Reason returns a one-line description of a failed run. It is empty for
// successful runs.
func (r *Result) Reason() string {
	switch {
	case r.Success():
		return ""
	case r.Exited:
		return fmt.Sprintf("exit code %s", r.ExitCode)
	case r.Error != nil:
		return r.Error.Error()
	default:
		return "process did not exit normally"
	}
}

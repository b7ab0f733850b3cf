// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/treerun/treerun/pkg/types"
)

const (
	// DefaultUnixShell is the shell used on Unix-like hosts when none is configured.
	DefaultUnixShell = "/bin/sh"
	// DefaultWindowsShell is used on Windows when %ComSpec% is unset.
	DefaultWindowsShell = "cmd.exe"
)

// ErrShellNotFound is the sentinel error wrapped by ShellNotFoundError.
var ErrShellNotFound = errors.New("shell not found")

type (
	// NativeRuntime executes commands using the system's shell.
	NativeRuntime struct {
		// Shell overrides the default shell.
		Shell string
		// ShellArgs are arguments passed to the shell before the command string.
		// Empty means they are derived from the shell name.
		ShellArgs []string

		goos     string
		getenv   func(string) string
		lookPath func(string) (string, error)
	}

	// ShellNotFoundError is returned when the shell binary cannot be resolved.
	ShellNotFoundError struct {
		Shell string
		Cause error
	}
)

// NewNativeRuntime creates a native runtime. An empty shell selects the
// platform default.
func NewNativeRuntime(shell string) *NativeRuntime {
	return &NativeRuntime{
		Shell:    shell,
		goos:     goruntime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
	}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether a shell can be resolved.
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Execute runs the command string through the shell.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	shell, err := r.getShell()
	if err != nil {
		return NewErrorResult(err)
	}

	args := append(r.getShellArgs(shell), ctx.ShellCommand)

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}
	cmd := exec.CommandContext(execCtx, shell, args...)
	if ctx.WorkDir != "" {
		cmd.Dir = ctx.WorkDir
	}
	cmd.Env = ctx.environ()
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr

	return resultFromExec(cmd.Run())
}

// resultFromExec maps the error of exec.Cmd.Run to a Result. An ExitError
// whose ExitCode is -1 means the process was terminated by a signal.
func resultFromExec(err error) *Result {
	if err == nil {
		return NewExitResult(0)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if code.Validate() != nil {
			return NewErrorResult(fmt.Errorf("process terminated: %s", exitErr.ProcessState))
		}
		return NewExitResult(code)
	}

	return NewErrorResult(fmt.Errorf("failed to start shell: %w", err))
}

// getShell determines which shell to use.
func (r *NativeRuntime) getShell() (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = r.defaultShell()
	}

	resolved, err := r.lookPath(shell)
	if err != nil {
		return "", &ShellNotFoundError{Shell: shell, Cause: err}
	}
	return resolved, nil
}

func (r *NativeRuntime) defaultShell() string {
	if r.goos == "windows" {
		if comspec := r.getenv("ComSpec"); comspec != "" {
			return comspec
		}
		return DefaultWindowsShell
	}
	return DefaultUnixShell
}

// getShellArgs returns the arguments to pass to the shell before the command.
func (r *NativeRuntime) getShellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	// Handle Windows separators on any host.
	base := filepath.Base(strings.ReplaceAll(shell, "\\", "/"))
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")

	switch base {
	case "cmd":
		if r.Shell == "" {
			return []string{"/d", "/s", "/c"}
		}
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		// Assume POSIX shell
		return []string{"-c"}
	}
}

// Error implements the error interface.
func (e *ShellNotFoundError) Error() string {
	return fmt.Sprintf("shell %q not found: %v", e.Shell, e.Cause)
}

// Unwrap returns ErrShellNotFound and the lookup error.
func (e *ShellNotFoundError) Unwrap() []error { return []error{ErrShellNotFound, e.Cause} }

// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

// Runtime type constants for different execution environments.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"

	// ExecutionIDEnv carries ExecutionContext.ExecutionID into the process
	// environment.
	ExecutionIDEnv = "TREERUN_EXECUTION_ID"
)

var (
	// ErrRuntimeNotRegistered is the sentinel error wrapped by RuntimeNotRegisteredError.
	ErrRuntimeNotRegistered = errors.New("runtime not registered")
	// ErrRuntimeNotAvailable is returned when a registered runtime cannot run on this host.
	ErrRuntimeNotAvailable = errors.New("runtime not available")
	// ErrEmptyCommand is returned when asked to execute an empty command string.
	ErrEmptyCommand = errors.New("empty shell command")
)

type (
	// ExecutionContext contains all information needed to execute a command.
	ExecutionContext struct {
		// Context is the Go context the process runs under.
		Context context.Context
		// ShellCommand is the complete command string handed to the shell.
		ShellCommand string
		// WorkDir is the initial working directory; empty means the current one.
		WorkDir string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// ExecutionID identifies the run in logs. It is exported to the
		// command as ExecutionIDEnv.
		ExecutionID string
	}

	// Runtime defines the interface for command execution.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available returns whether this runtime is available on the current system.
		Available() bool
		// Execute runs the command and blocks until it finishes.
		Execute(ctx *ExecutionContext) *Result
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// RuntimeNotRegisteredError is returned by Registry.Get for unknown types.
	RuntimeNotRegisteredError struct {
		Type RuntimeType
	}

	// Registry holds all available runtimes.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// environ returns the host environment plus the execution ID, if any.
func (c *ExecutionContext) environ() []string {
	env := os.Environ()
	if c.ExecutionID != "" {
		env = append(env, ExecutionIDEnv+"="+c.ExecutionID)
	}
	return env
}

// NewRegistry creates a new runtime registry.
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// Register adds a runtime to the registry.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, &RuntimeNotRegisteredError{Type: typ}
	}
	return rt, nil
}

// Available returns the types of all runtimes usable on this host, sorted.
func (r *Registry) Available() []RuntimeType {
	var types []RuntimeType
	for typ, rt := range r.runtimes {
		if rt.Available() {
			types = append(types, typ)
		}
	}
	slices.Sort(types)
	return types
}

// Execute runs ctx with the runtime registered for typ.
func (r *Registry) Execute(typ RuntimeType, ctx *ExecutionContext) *Result {
	rt, err := r.Get(typ)
	if err != nil {
		return NewErrorResult(err)
	}
	if !rt.Available() {
		return NewErrorResult(fmt.Errorf("%w: %s", ErrRuntimeNotAvailable, rt.Name()))
	}
	if ctx.ShellCommand == "" {
		return NewErrorResult(ErrEmptyCommand)
	}
	return rt.Execute(ctx)
}

// String returns the string representation of the RuntimeType.
func (t RuntimeType) String() string { return string(t) }

// Error implements the error interface.
func (e *RuntimeNotRegisteredError) Error() string {
	return fmt.Sprintf("runtime '%s' not registered", e.Type)
}

// Unwrap returns ErrRuntimeNotRegistered for errors.Is() compatibility.
func (e *RuntimeNotRegisteredError) Unwrap() error { return ErrRuntimeNotRegistered }

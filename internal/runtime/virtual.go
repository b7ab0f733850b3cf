// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/treerun/treerun/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes commands using the mvdan/sh interpreter. External
// programs named by the command are still resolved on the host PATH.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns whether this runtime is available.
func (r *VirtualRuntime) Available() bool {
	// Virtual runtime is always available as it's built-in
	return true
}

// Execute runs the command string in the interpreter.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(ctx.ShellCommand), "command")
	if err != nil {
		return NewErrorResult(fmt.Errorf("failed to parse command: %w", err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(ctx.environ()...)),
		interp.StdIO(nil, ctx.Stdout, ctx.Stderr),
	}
	if ctx.WorkDir != "" {
		opts = append(opts, interp.Dir(ctx.WorkDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(fmt.Errorf("failed to create interpreter: %w", err))
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	err = runner.Run(execCtx, prog)
	if err == nil {
		return NewExitResult(0)
	}

	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		return NewExitResult(types.ExitCode(exitStatus))
	}
	return NewErrorResult(fmt.Errorf("command execution failed: %w", err))
}

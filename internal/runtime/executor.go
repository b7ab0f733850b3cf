// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type (
	// Executor starts shell commands asynchronously on one runtime.
	Executor struct {
		registry    *Registry
		runtimeType RuntimeType
		logger      *log.Logger
		workDir     string
	}

	// Handle is the future of a started run.
	Handle struct {
		// ID identifies the run in the side-channel log.
		ID string
		// Command is the shell command string being executed.
		Command string

		done   chan struct{}
		result *Result
	}

	// syncBuffer is a bytes.Buffer safe for the concurrent writes exec.Cmd
	// may issue when stdout and stderr share a writer.
	syncBuffer struct {
		mu  sync.Mutex
		buf bytes.Buffer
	}
)

// NewExecutor creates an Executor that runs commands with the runtime
// registered for typ in registry.
func NewExecutor(registry *Registry, typ RuntimeType, logger *log.Logger) *Executor {
	return &Executor{registry: registry, runtimeType: typ, logger: logger}
}

// WithWorkDir returns a copy of the executor whose runs start in dir.
func (e *Executor) WithWorkDir(dir string) *Executor {
	cp := *e
	cp.workDir = dir
	return &cp
}

// Start launches shellCommand and returns immediately. The run is detached
// from ctx cancellation: once started it always runs to completion. There is
// no timeout and no limit on concurrent runs.
func (e *Executor) Start(ctx context.Context, shellCommand string) *Handle {
	h := &Handle{
		ID:      uuid.NewString(),
		Command: shellCommand,
		done:    make(chan struct{}),
	}

	runCtx := context.WithoutCancel(ctx)
	logger := e.logger.With("id", h.ID)
	logger.Info("starting command", "runtime", e.runtimeType, "command", shellCommand)

	go func() {
		defer close(h.done)

		var stdout, stderr syncBuffer
		stdoutLines := newLineWriter(func(line string) { logger.Info(line, "stream", "stdout") })
		stderrLines := newLineWriter(func(line string) { logger.Warn(line, "stream", "stderr") })

		result := e.registry.Execute(e.runtimeType, &ExecutionContext{
			Context:      runCtx,
			ShellCommand: shellCommand,
			WorkDir:      e.workDir,
			Stdout:       io.MultiWriter(&stdout, stdoutLines),
			Stderr:       io.MultiWriter(&stderr, stderrLines),
			ExecutionID:  h.ID,
		})
		stdoutLines.Flush()
		stderrLines.Flush()

		result.Output = stdout.String()
		result.ErrOutput = stderr.String()
		h.result = result

		switch {
		case result.Success():
			logger.Info("command finished", "exit", result.ExitCode)
		case result.Exited:
			logger.Error("command failed", "exit", result.ExitCode)
		default:
			logger.Error("command failed", "err", result.Error)
		}
	}()

	return h
}

// Done is closed when the run has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its result.
func (h *Handle) Wait() *Result {
	<-h.done
	return h.result
}

// Result returns the result if the run has finished, or nil.
func (h *Handle) Result() *Result {
	select {
	case <-h.done:
		return h.result
	default:
		return nil
	}
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/treerun/treerun/internal/app/run"
	"github.com/treerun/treerun/internal/config"
	"github.com/treerun/treerun/internal/logging"
	"github.com/treerun/treerun/internal/notify"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and builds
	// its services from it.
	App struct {
		fs        afero.Fs
		config    config.Provider
		notifier  notify.Notifier
		presenter run.Presenter
		executors run.ExecutorFactory
		getwd     func() (string, error)
		logger    *log.Logger
		editor    EditorLauncher
		stdout    io.Writer
		stderr    io.Writer

		flags globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Fs     afero.Fs
		Config config.Provider
		// Notifier receives user-visible messages. Defaults to a terminal
		// sink on Stderr.
		Notifier notify.Notifier
		// Presenter replaces the interactive picker.
		Presenter run.Presenter
		// Executors builds the command executor from the loaded settings.
		Executors run.ExecutorFactory
		Getwd     func() (string, error)
		// Logger replaces the side-channel log file.
		Logger *log.Logger
		// Editor opens the settings file for `settings open`.
		Editor EditorLauncher
		Stdout io.Writer
		Stderr io.Writer
	}

	// EditorLauncher opens path in the user's editor and waits for it.
	EditorLauncher func(ctx context.Context, path string) error

	globalFlags struct {
		configPath string
		workspace  string
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Config == nil {
		deps.Config = config.NewProviderFs(deps.Fs)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewTerminal(deps.Stderr)
	}
	if deps.Executors == nil {
		deps.Executors = run.DefaultExecutor
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	if deps.Editor == nil {
		deps.Editor = launchEditor
	}

	return &App{
		fs:        deps.Fs,
		config:    deps.Config,
		notifier:  deps.Notifier,
		presenter: deps.Presenter,
		executors: deps.Executors,
		getwd:     deps.Getwd,
		logger:    deps.Logger,
		editor:    deps.Editor,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// loadOptions returns the settings load options selected by --config.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configPath}
}

// openLogger returns the side-channel logger configured by the settings.
// The returned func releases the log file.
func (a *App) openLogger(ctx context.Context) (*log.Logger, func()) {
	if a.logger != nil {
		return a.logger, func() {}
	}

	cfg, err := a.config.Load(ctx, a.loadOptions())
	if err != nil {
		// The orchestrator reports broken settings; log with defaults here.
		cfg = config.DefaultConfig()
	}

	logger, closer, err := logging.New(logging.Options{
		Level:   string(cfg.Log.Level),
		File:    cfg.Log.File,
		Verbose: a.flags.verbose,
		Stderr:  a.stderr,
	})
	if err != nil {
		return logging.Fallback(err), func() {}
	}
	return logger, func() { _ = closer.Close() }
}

// orchestrator builds the run orchestrator for one invocation.
func (a *App) orchestrator(logger *log.Logger) *run.Orchestrator {
	return run.New(run.Dependencies{
		Fs:        a.fs,
		Config:    a.config,
		Presenter: a.presenter,
		Notifier:  a.notifier,
		Logger:    logger,
		Executors: a.executors,
		Getwd:     a.getwd,
	})
}

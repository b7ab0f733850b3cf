// SPDX-License-Identifier: MPL-2.0

package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/treerun/treerun/internal/catalog"
	"github.com/treerun/treerun/internal/commandsource"
	"github.com/treerun/treerun/internal/config"
	"github.com/treerun/treerun/internal/issue"
	"github.com/treerun/treerun/internal/logging"
	"github.com/treerun/treerun/internal/notify"
	"github.com/treerun/treerun/internal/runtime"
	"github.com/treerun/treerun/internal/target"
	"github.com/treerun/treerun/internal/workspace"
	"github.com/treerun/treerun/pkg/fspath"
	"github.com/treerun/treerun/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// NoCommandsMessage is the Info notification shown when the catalog is empty.
const NoCommandsMessage = "No commands configured."

type (
	// Request is one user action.
	Request struct {
		// Target is the selected file or directory.
		Target types.FilesystemPath
		// Mode selects run-on-file or run-on-file-directory.
		Mode target.Mode
		// Workspace is an explicit workspace root; empty means search upwards
		// from the current directory.
		Workspace types.FilesystemPath
		// ConfigPath is an explicit settings file; empty means the default.
		ConfigPath string
		// Command names the entry to run without prompting.
		Command string
	}

	// ExecutorFactory builds the executor for the loaded settings.
	ExecutorFactory func(cfg *config.Config, logger *log.Logger) *runtime.Executor

	// Dependencies are the collaborators of an Orchestrator. Nil fields are
	// replaced with production defaults by New.
	Dependencies struct {
		Fs        afero.Fs
		Config    config.Provider
		Presenter Presenter
		Notifier  notify.Notifier
		Logger    *log.Logger
		Executors ExecutorFactory
		Getwd     func() (string, error)
	}

	// Catalog is the merged command list of a workspace together with the
	// settings it was built from.
	Catalog struct {
		Catalog  catalog.Catalog
		Config   *config.Config
		Root     types.FilesystemPath
		FilePath types.FilesystemPath
	}

	// Orchestrator runs user actions and tracks the processes they start.
	Orchestrator struct {
		deps     Dependencies
		locator  *workspace.Locator
		resolver *target.Resolver
		source   *commandsource.Source
		runs     sync.WaitGroup
	}
)

// New creates an Orchestrator from deps.
func New(deps Dependencies) *Orchestrator {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Config == nil {
		deps.Config = config.NewProviderFs(deps.Fs)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Executors == nil {
		deps.Executors = DefaultExecutor
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}

	return &Orchestrator{
		deps:     deps,
		locator:  workspace.NewLocator(deps.Fs),
		resolver: target.NewResolver(deps.Fs),
		source:   commandsource.New(deps.Fs, deps.Notifier, deps.Logger),
	}
}

// DefaultExecutor runs commands with the runtime and shell named in cfg.
func DefaultExecutor(cfg *config.Config, logger *log.Logger) *runtime.Executor {
	return runtime.NewExecutor(runtime.BuildRegistry(cfg), runtime.TypeForMode(cfg.Runtime), logger)
}

// Run performs one action. It returns once the command has been started; the
// returned handle completes when the process exits. A nil handle with a nil
// error means nothing was started (empty catalog or dismissed prompt).
//
// Errors that abort the action are also sent to the notifier.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*runtime.Handle, error) {
	if err := req.Mode.Validate(); err != nil {
		return nil, err
	}
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}

	cat, err := o.Load(ctx, req.Workspace, req.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg := cat.Config

	if cat.Catalog.Len() == 0 {
		o.deps.Notifier.Notify(notify.SeverityInfo, NoCommandsMessage)
		return nil, nil
	}

	presenter := o.presenterFor(req, cfg)
	name, ok, err := presenter.Choose(ctx, promptFor(req.Mode), cat.Catalog.Names())
	if err != nil {
		return nil, err
	}
	if !ok {
		o.deps.Logger.Debug("selection dismissed", "mode", req.Mode)
		return nil, nil
	}

	// First match by name: with duplicate names the earlier entry wins,
	// whichever row was picked.
	entry, found := cat.Catalog.FindByName(name)
	if !found {
		notFound := &CommandNotFoundError{Name: name, Available: cat.Catalog.Names()}
		o.deps.Notifier.Notify(notify.SeverityError, fmt.Sprintf("No command named %q.", name))
		return nil, issue.NewErrorContext().
			WithOperation("select command").
			WithResource(name).
			WithSuggestion("Run 'treerun list' to see the available names").
			WithIssue(issue.CommandNotFoundId).
			Wrap(notFound).
			BuildError()
	}

	request, err := o.resolver.Build(req.Mode, entry.Command, req.Target)
	if err != nil {
		o.deps.Notifier.Notify(notify.SeverityError, err.Error())
		return nil, o.targetError(req.Target, err)
	}

	if cfg.DebugMode {
		o.deps.Notifier.Notify(notify.SeverityInfo, request.ShellCommand)
	}

	executor := o.deps.Executors(cfg, o.deps.Logger).WithWorkDir(string(cat.Root))
	handle := executor.Start(ctx, request.ShellCommand)
	o.deps.Logger.Info("command started",
		"id", handle.ID, "name", entry.Name, "source", entry.Source, "mode", req.Mode, "target", req.Target)

	o.runs.Add(1)
	go func() {
		defer o.runs.Done()
		ReportOutcome(o.deps.Notifier, cfg.DebugMode, request.ShellCommand, handle.Wait())
	}()

	return handle, nil
}

// Load reads the settings, locates the workspace and returns the merged
// catalog. It is rebuilt on every call.
func (o *Orchestrator) Load(ctx context.Context, explicitRoot types.FilesystemPath, configPath string) (*Catalog, error) {
	cfg := o.loadConfig(ctx, configPath)

	root, err := o.root(explicitRoot, cfg)
	if err != nil {
		o.deps.Notifier.Notify(notify.SeverityError, "No workspace folder found.")
		return nil, issue.NewErrorContext().
			WithOperation("locate workspace").
			WithResource(string(explicitRoot)).
			WithSuggestions("Run treerun from inside your project", "Pass --workspace <dir>").
			WithIssue(issue.NoWorkspaceId).
			Wrap(err).
			BuildError()
	}

	filePath := fspath.JoinStr(root, string(cfg.FileName))
	cat := catalog.Merge(o.source.LoadGlobal(cfg), o.source.LoadFile(ctx, string(filePath)))
	if dups := cat.DuplicateNames(); len(dups) > 0 {
		o.deps.Logger.Warn("duplicate command names resolve to the first entry", "names", dups)
	}

	return &Catalog{Catalog: cat, Config: cfg, Root: root, FilePath: filePath}, nil
}

// Wait blocks until every run started by this orchestrator has finished and
// its outcome has been reported.
func (o *Orchestrator) Wait() {
	o.runs.Wait()
}

// loadConfig returns the settings, falling back to defaults (with one Error
// notification) when the settings file cannot be used.
func (o *Orchestrator) loadConfig(ctx context.Context, configPath string) *config.Config {
	cfg, err := o.deps.Config.Load(ctx, config.LoadOptions{ConfigFilePath: configPath})
	if err == nil {
		return cfg
	}

	o.deps.Logger.Error("failed to load settings, using defaults", "err", err)
	o.deps.Notifier.Notify(notify.SeverityError, fmt.Sprintf("Could not load settings, using defaults. %v", err))
	return config.DefaultConfig()
}

func (o *Orchestrator) root(explicit types.FilesystemPath, cfg *config.Config) (types.FilesystemPath, error) {
	if explicit != "" {
		return o.locator.Root(explicit, "", string(cfg.FileName))
	}
	wd, err := o.deps.Getwd()
	if err != nil {
		return "", &workspace.NoWorkspaceError{Reason: err.Error()}
	}
	return o.locator.Root("", types.FilesystemPath(wd), string(cfg.FileName))
}

func (o *Orchestrator) presenterFor(req Request, cfg *config.Config) Presenter {
	switch {
	case req.Command != "":
		return FixedPresenter{Name: req.Command}
	case o.deps.Presenter != nil:
		return o.deps.Presenter
	default:
		return pickerFor(cfg)
	}
}

func (o *Orchestrator) targetError(path types.FilesystemPath, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("resolve target").
		WithResource(string(path))
	if errors.Is(err, target.ErrPathNotFound) {
		ctx = ctx.WithSuggestion("Check that the path still exists").WithIssue(issue.PathNotFoundId)
	}
	return ctx.Wrap(err).BuildError()
}

func promptFor(mode target.Mode) string {
	if mode == target.ModeDirectory {
		return PromptDirectory
	}
	return PromptFile
}

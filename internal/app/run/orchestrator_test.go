// SPDX-License-Identifier: MPL-2.0

package run

import (
	"context"
	"errors"
	goruntime "runtime"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/treerun/treerun/internal/config"
	"github.com/treerun/treerun/internal/issue"
	"github.com/treerun/treerun/internal/logging"
	"github.com/treerun/treerun/internal/notify"
	"github.com/treerun/treerun/internal/runtime"
	"github.com/treerun/treerun/internal/target"
	"github.com/treerun/treerun/internal/testutil"
	"github.com/treerun/treerun/internal/workspace"
	"github.com/treerun/treerun/pkg/types"
)

const (
	wsRoot    = "/ws"
	wsDocPath = "/ws/" + config.DefaultFileName
	formatDoc = `{"commands":[{"name":"Format","command":"prettier -w"}]}`
)

type (
	// staticProvider returns a fixed config or error.
	staticProvider struct {
		cfg *config.Config
		err error
	}

	// recordingRuntime records every command it is asked to run.
	recordingRuntime struct {
		mu       sync.Mutex
		commands []string
		workDirs []string
		result   *runtime.Result
	}

	// scriptedPresenter answers with a fixed name and records what it was shown.
	scriptedPresenter struct {
		name   string
		ok     bool
		err    error
		prompt string
		names  []string
	}
)

func (p staticProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return p.cfg, p.err
}

func (r *recordingRuntime) Name() string    { return "recording" }
func (r *recordingRuntime) Available() bool { return true }
func (r *recordingRuntime) Execute(ctx *runtime.ExecutionContext) *runtime.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, ctx.ShellCommand)
	r.workDirs = append(r.workDirs, ctx.WorkDir)
	if r.result == nil {
		return runtime.NewExitResult(0)
	}
	res := *r.result
	return &res
}

func (r *recordingRuntime) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commands)
}

func (p *scriptedPresenter) Choose(_ context.Context, prompt string, names []string) (string, bool, error) {
	p.prompt = prompt
	p.names = names
	return p.name, p.ok, p.err
}

type fixture struct {
	fs        afero.Fs
	cfg       *config.Config
	rt        *recordingRuntime
	notes     *notify.Recorder
	presenter *scriptedPresenter
	orch      *Orchestrator
}

// newFixture builds the workspace of the concrete scenarios: global "Lint",
// file-defined "Format", a file /ws/src/a.ts and the directory /ws/src.
func newFixture(t *testing.T, choose string) *fixture {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("scenarios use POSIX paths")
	}

	fs := afero.NewMemMapFs()
	testutil.MustWriteFile(t, fs, wsDocPath, formatDoc)
	testutil.MustWriteFile(t, fs, "/ws/src/a.ts", "export {}")

	cfg := config.DefaultConfig()
	cfg.GlobalCommands = []config.CommandEntry{{Name: "Lint", Command: "eslint"}}

	f := &fixture{
		fs:        fs,
		cfg:       cfg,
		rt:        &recordingRuntime{},
		notes:     notify.NewRecorder(),
		presenter: &scriptedPresenter{name: choose, ok: true},
	}
	f.orch = New(Dependencies{
		Fs:        fs,
		Config:    staticProvider{cfg: cfg},
		Presenter: f.presenter,
		Notifier:  f.notes,
		Logger:    logging.Discard(),
		Executors: func(_ *config.Config, logger *log.Logger) *runtime.Executor {
			reg := runtime.NewRegistry()
			reg.Register("recording", f.rt)
			return runtime.NewExecutor(reg, "recording", logger)
		},
		Getwd: func() (string, error) { return "/ws/src", nil },
	})
	return f
}

func (f *fixture) run(t *testing.T, req Request) (*runtime.Handle, error) {
	t.Helper()
	h, err := f.orch.Run(context.Background(), req)
	if h != nil {
		testutil.WaitTimeout(t, h.Done(), 10*time.Second)
	}
	f.orch.Wait()
	return h, err
}

func TestRun_ConcreteScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		choose     string
		target     types.FilesystemPath
		mode       target.Mode
		wantPrompt string
		wantCmd    string
	}{
		{
			name:       "format file",
			choose:     "Format",
			target:     "/ws/src/a.ts",
			mode:       target.ModeFile,
			wantPrompt: PromptFile,
			wantCmd:    "prettier -w /ws/src/a.ts",
		},
		{
			name:       "lint directory",
			choose:     "Lint",
			target:     "/ws/src",
			mode:       target.ModeDirectory,
			wantPrompt: PromptDirectory,
			wantCmd:    "cd /ws/src && eslint",
		},
		{
			name:       "lint parent of file",
			choose:     "Lint",
			target:     "/ws/src/a.ts",
			mode:       target.ModeDirectory,
			wantPrompt: PromptDirectory,
			wantCmd:    "cd /ws/src && eslint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.choose)
			h, err := f.run(t, Request{Target: tt.target, Mode: tt.mode})
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if h == nil || h.Command != tt.wantCmd {
				t.Fatalf("handle = %+v, want command %q", h, tt.wantCmd)
			}

			if !slices.Equal(f.presenter.names, []string{"Lint", "Format"}) {
				t.Errorf("presented names = %v, want [Lint Format]", f.presenter.names)
			}
			if f.presenter.prompt != tt.wantPrompt {
				t.Errorf("prompt = %q, want %q", f.presenter.prompt, tt.wantPrompt)
			}
			if got := f.rt.Commands(); !slices.Equal(got, []string{tt.wantCmd}) {
				t.Errorf("executed %v, want [%q]", got, tt.wantCmd)
			}
			if f.rt.workDirs[0] != wsRoot {
				t.Errorf("work dir = %q, want %q", f.rt.workDirs[0], wsRoot)
			}
			if n := len(f.notes.Messages()); n != 0 {
				t.Errorf("debug off: expected no notifications, got %v", f.notes.Messages())
			}
		})
	}
}

func TestRun_DebugMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   *runtime.Result
		wantLast notify.Message
	}{
		{
			name:     "success",
			result:   runtime.NewExitResult(0),
			wantLast: notify.Message{Severity: notify.SeverityInfo, Text: `Command "prettier -w /ws/src/a.ts" completed successfully.`},
		},
		{
			name:     "exit code",
			result:   runtime.NewExitResult(2),
			wantLast: notify.Message{Severity: notify.SeverityError, Text: `Command "prettier -w /ws/src/a.ts" failed with exit code 2.`},
		},
		{
			name:     "no exit code",
			result:   runtime.NewErrorResult(errors.New("process terminated: signal: killed")),
			wantLast: notify.Message{Severity: notify.SeverityError, Text: `Command "prettier -w /ws/src/a.ts" failed: process terminated: signal: killed.`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, "Format")
			f.cfg.DebugMode = true
			f.rt.result = tt.result

			if _, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile}); err != nil {
				t.Fatalf("Run() error: %v", err)
			}

			msgs := f.notes.Messages()
			if len(msgs) != 2 {
				t.Fatalf("expected echo + outcome, got %v", msgs)
			}
			if msgs[0] != (notify.Message{Severity: notify.SeverityInfo, Text: "prettier -w /ws/src/a.ts"}) {
				t.Errorf("echo = %+v", msgs[0])
			}
			if msgs[1] != tt.wantLast {
				t.Errorf("outcome = %+v, want %+v", msgs[1], tt.wantLast)
			}
		})
	}
}

func TestRun_DebugOffIsSilentOnFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Format")
	f.rt.result = runtime.NewExitResult(1)

	if _, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if msgs := f.notes.Messages(); len(msgs) != 0 {
		t.Errorf("expected no notifications, got %v", msgs)
	}
}

func TestRun_DuplicateNameResolvesToFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")
	testutil.MustWriteFile(t, f.fs, wsDocPath, `{"commands":[{"name":"Lint","command":"npm run lint"}]}`)

	if _, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !slices.Equal(f.presenter.names, []string{"Lint", "Lint"}) {
		t.Errorf("both entries should be offered, got %v", f.presenter.names)
	}
	if got := f.rt.Commands(); !slices.Equal(got, []string{"eslint /ws/src/a.ts"}) {
		t.Errorf("executed %v, want the global entry", got)
	}
}

func TestRun_DismissedPrompt(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.presenter.ok = false

	h, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile})
	if h != nil || err != nil {
		t.Errorf("Run() = %v, %v; want nil, nil", h, err)
	}
	if len(f.rt.Commands()) != 0 {
		t.Error("nothing should run after dismissal")
	}
}

func TestRun_NoCommands(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")
	f.cfg.GlobalCommands = nil
	if err := f.fs.Remove(wsDocPath); err != nil {
		t.Fatal(err)
	}
	testutil.MustMkdirAll(t, f.fs, "/ws/.git")

	h, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile})
	if h != nil || err != nil {
		t.Errorf("Run() = %v, %v; want nil, nil", h, err)
	}
	if f.presenter.names != nil {
		t.Error("the presenter must not be shown an empty catalog")
	}
	want := []notify.Message{{Severity: notify.SeverityInfo, Text: NoCommandsMessage}}
	if got := f.notes.Messages(); !slices.Equal(got, want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}
}

func TestRun_NoWorkspace(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")
	f.orch.deps.Getwd = func() (string, error) { return "", errors.New("getwd: no such file or directory") }

	_, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile})
	if !errors.Is(err, workspace.ErrNoWorkspace) {
		t.Fatalf("Run() error = %v, want ErrNoWorkspace", err)
	}
	if iss, ok := issue.IssueOf(err); !ok || iss.Id() != issue.NoWorkspaceId {
		t.Errorf("error should carry the no-workspace issue, got %v", iss)
	}
	if f.presenter.names != nil {
		t.Error("the prompt must not be shown without a workspace")
	}
	if f.notes.Count(notify.SeverityError) != 1 {
		t.Errorf("expected one error notification, got %v", f.notes.Messages())
	}
}

func TestRun_NoMarkerUsesStartDirectory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")
	testutil.MustWriteFile(t, f.fs, "/elsewhere/x.txt", "x")
	f.orch.deps.Getwd = func() (string, error) { return "/elsewhere", nil }

	h, err := f.run(t, Request{Target: "/elsewhere/x.txt", Mode: target.ModeFile})
	if err != nil || h == nil {
		t.Fatalf("Run() = %v, %v", h, err)
	}
	if got := f.rt.Commands(); len(got) != 1 {
		t.Fatalf("commands = %v, want one", got)
	}
	if f.rt.workDirs[0] != "/elsewhere" {
		t.Errorf("work dir = %q, want the start directory", f.rt.workDirs[0])
	}
	if !slices.Equal(f.presenter.names, []string{"Lint"}) {
		t.Errorf("offered %v, want only the global command", f.presenter.names)
	}
}

func TestRun_ExplicitWorkspace(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Format")
	f.orch.deps.Getwd = func() (string, error) { return "", errors.New("no cwd") }

	h, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile, Workspace: wsRoot})
	if err != nil || h == nil {
		t.Fatalf("Run() = %v, %v", h, err)
	}
}

func TestRun_MissingDirectoryTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")

	_, err := f.run(t, Request{Target: "/ws/gone", Mode: target.ModeDirectory})
	if !errors.Is(err, target.ErrPathNotFound) {
		t.Fatalf("Run() error = %v, want ErrPathNotFound", err)
	}
	if iss, ok := issue.IssueOf(err); !ok || iss.Id() != issue.PathNotFoundId {
		t.Errorf("error should carry the path-not-found issue")
	}
	if len(f.rt.Commands()) != 0 {
		t.Error("a missing path must not be treated as a directory")
	}
	if f.notes.Count(notify.SeverityError) != 1 {
		t.Errorf("expected one error notification, got %v", f.notes.Messages())
	}
}

func TestRun_FixedCommand(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ignored")

	h, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile, Command: "Format"})
	if err != nil || h == nil || h.Command != "prettier -w /ws/src/a.ts" {
		t.Fatalf("Run() = %+v, %v", h, err)
	}
	if f.presenter.names != nil {
		t.Error("--command must bypass the presenter")
	}

	_, err = f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile, Command: "Nope"})
	var notFound *CommandNotFoundError
	if !errors.As(err, &notFound) || notFound.Name != "Nope" {
		t.Fatalf("Run() error = %v, want CommandNotFoundError", err)
	}
	if !slices.Equal(notFound.Available, []string{"Lint", "Format"}) {
		t.Errorf("Available = %v", notFound.Available)
	}
}

func TestRun_BrokenSettingsFallBackToDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Format")
	f.orch.deps.Config = staticProvider{err: errors.New("config.cue:1:1: syntax error")}

	h, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile})
	if err != nil || h == nil {
		t.Fatalf("Run() = %v, %v", h, err)
	}
	if !slices.Equal(f.presenter.names, []string{"Format"}) {
		t.Errorf("defaults have no global commands, got %v", f.presenter.names)
	}
	if f.notes.Count(notify.SeverityError) != 1 {
		t.Errorf("expected one error notification, got %v", f.notes.Messages())
	}
}

func TestRun_MalformedDocumentStillOffersGlobals(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")
	testutil.MustWriteFile(t, f.fs, wsDocPath, `{"commands": [`)

	if _, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !slices.Equal(f.presenter.names, []string{"Lint"}) {
		t.Errorf("names = %v", f.presenter.names)
	}
	if f.notes.Count(notify.SeverityError) != 1 {
		t.Errorf("expected one error notification, got %v", f.notes.Messages())
	}
}

func TestRun_InvalidMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")
	if _, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: "sideways"}); !errors.Is(err, target.ErrInvalidMode) {
		t.Errorf("Run() error = %v, want ErrInvalidMode", err)
	}
}

func TestRun_BlankTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")
	if _, err := f.run(t, Request{Target: " ", Mode: target.ModeFile}); !errors.Is(err, types.ErrInvalidFilesystemPath) {
		t.Errorf("Run() error = %v, want ErrInvalidFilesystemPath", err)
	}
}

func TestRun_PresenterError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.presenter.err = errors.New("tty gone")

	if _, err := f.run(t, Request{Target: "/ws/src/a.ts", Mode: target.ModeFile}); err == nil {
		t.Error("a presenter failure must abort the action")
	}
}

func TestLoad_RebuiltEveryCall(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Lint")

	first, err := f.orch.Load(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	testutil.MustWriteFile(t, f.fs, wsDocPath, `{"commands":[{"name":"A","command":"a"},{"name":"B","command":"b"}]}`)
	second, err := f.orch.Load(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}

	if first.Catalog.Len() != 2 || second.Catalog.Len() != 3 {
		t.Errorf("lengths = %d, %d; want 2, 3", first.Catalog.Len(), second.Catalog.Len())
	}
	if second.Root != wsRoot || second.FilePath != wsDocPath {
		t.Errorf("root/file = %q, %q", second.Root, second.FilePath)
	}
}

func TestReportOutcome_DebugGating(t *testing.T) {
	t.Parallel()

	results := []*runtime.Result{
		runtime.NewExitResult(0),
		runtime.NewExitResult(7),
		runtime.NewErrorResult(errors.New("boom")),
	}

	off := notify.NewRecorder()
	for _, res := range results {
		ReportOutcome(off, false, "x", res)
	}
	if len(off.Messages()) != 0 {
		t.Errorf("debug off must be silent, got %v", off.Messages())
	}

	on := notify.NewRecorder()
	for _, res := range results {
		ReportOutcome(on, true, "x", res)
	}
	want := []notify.Message{
		{Severity: notify.SeverityInfo, Text: `Command "x" completed successfully.`},
		{Severity: notify.SeverityError, Text: `Command "x" failed with exit code 7.`},
		{Severity: notify.SeverityError, Text: `Command "x" failed: boom.`},
	}
	if got := on.Messages(); !slices.Equal(got, want) {
		t.Errorf("messages = %v, want %v", got, want)
	}
}

func TestWait_TracksConcurrentRuns(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Format")
	f.cfg.DebugMode = true

	const runs = 5
	for range runs {
		if _, err := f.orch.Run(context.Background(), Request{Target: "/ws/src/a.ts", Mode: target.ModeFile}); err != nil {
			t.Fatal(err)
		}
	}
	f.orch.Wait()

	// Every outcome is reported before Wait returns.
	if got := f.notes.Count(notify.SeverityInfo); got != 2*runs {
		t.Errorf("info notifications = %d, want %d", got, 2*runs)
	}
	if len(f.rt.Commands()) != runs {
		t.Errorf("executed %d runs, want %d", len(f.rt.Commands()), runs)
	}
}

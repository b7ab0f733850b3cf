// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/treerun/treerun/internal/issue"

	"github.com/spf13/afero"
)

const testConfigPath = "/cfg/treerun/config.cue"

func writeConfig(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.FileName != DefaultFileName {
		t.Errorf("FileName = %q, want %q", cfg.FileName, DefaultFileName)
	}
	if cfg.DebugMode {
		t.Error("expected debug mode to be off by default")
	}
	if len(cfg.GlobalCommands) != 0 {
		t.Errorf("expected no global commands, got %v", cfg.GlobalCommands)
	}
	if cfg.Runtime != RuntimeNative {
		t.Errorf("Runtime = %q, want native", cfg.Runtime)
	}
	if cfg.Log.Level != LogLevelInfo {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.UI.Theme != ThemeDefault {
		t.Errorf("UI.Theme = %q, want default", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, path, err := loadWithOptions(context.Background(), fs, LoadOptions{ConfigDirPath: "/cfg/treerun"})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.FileName != DefaultFileName || cfg.Runtime != RuntimeNative {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_ReadsCUEFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeConfig(t, fs, testConfigPath, `
file_name: ".treerun.json"
debug_mode: true
global_commands: [
	{name: "Format", command: "prettier --write"},
	{name: "Count lines", command: "wc -l"},
]
log: level: "debug"
ui: theme: "dracula"
`)

	cfg, path, err := loadWithOptions(context.Background(), fs, LoadOptions{ConfigDirPath: "/cfg/treerun"})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != testConfigPath {
		t.Errorf("resolved path = %q, want %q", path, testConfigPath)
	}
	if cfg.FileName != ".treerun.json" {
		t.Errorf("FileName = %q", cfg.FileName)
	}
	if !cfg.DebugMode {
		t.Error("expected debug mode on")
	}
	if len(cfg.GlobalCommands) != 2 || cfg.GlobalCommands[1].Command != "wc -l" {
		t.Errorf("GlobalCommands = %+v", cfg.GlobalCommands)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	// Unset keys keep their defaults.
	if cfg.Runtime != RuntimeNative {
		t.Errorf("Runtime = %q, want native", cfg.Runtime)
	}
	if cfg.UI.Theme != ThemeDracula {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: `colour: "red"`},
		{name: "bad runtime", content: `runtime: "container"`},
		{name: "debug mode not bool", content: `debug_mode: "yes"`},
		{name: "command entry extra field", content: `global_commands: [{name: "a", command: "b", cwd: "/"}]`},
		{name: "invalid syntax", content: `file_name: `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			writeConfig(t, fs, testConfigPath, tt.content)

			_, _, err := loadWithOptions(context.Background(), fs, LoadOptions{ConfigFilePath: testConfigPath})
			if err == nil {
				t.Fatal("expected an error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T", err)
			}
			if n := strings.Count(err.Error(), testConfigPath); n != 1 {
				t.Errorf("error should name the file once, named it %d times: %v", n, err)
			}
		})
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, _, err := loadWithOptions(context.Background(), fs, LoadOptions{ConfigFilePath: "/nope/config.cue"})
	if err == nil {
		t.Fatal("expected an error for a missing explicit config")
	}
	if !strings.Contains(err.Error(), "/nope/config.cue") {
		t.Errorf("error should name the file, got: %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := loadWithOptions(ctx, afero.NewMemMapFs(), LoadOptions{ConfigDirPath: "/cfg"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// Environment overrides mutate process state, so these tests do not run in parallel.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TREERUN_DEBUG_MODE", "true")
	t.Setenv("TREERUN_LOG_LEVEL", "warn")
	t.Setenv("TREERUN_FILE_NAME", "cmds.json")

	fs := afero.NewMemMapFs()
	writeConfig(t, fs, testConfigPath, `debug_mode: false`)

	cfg, _, err := loadWithOptions(context.Background(), fs, LoadOptions{ConfigFilePath: testConfigPath})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if !cfg.DebugMode {
		t.Error("TREERUN_DEBUG_MODE should override the file")
	}
	if cfg.Log.Level != LogLevelWarn {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.FileName != "cmds.json" {
		t.Errorf("FileName = %q, want cmds.json", cfg.FileName)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("TREERUN_RUNTIME", "docker")

	_, _, err := loadWithOptions(context.Background(), afero.NewMemMapFs(), LoadOptions{ConfigDirPath: "/cfg"})
	if !errors.Is(err, ErrInvalidRuntimeMode) {
		t.Errorf("expected ErrInvalidRuntimeMode, got %v", err)
	}
}

func TestLoad_SkipEnv(t *testing.T) {
	t.Setenv("TREERUN_DEBUG_MODE", "true")
	t.Setenv("TREERUN_RUNTIME", "docker")

	fs := afero.NewMemMapFs()
	writeConfig(t, fs, testConfigPath, `debug_mode: false`)

	cfg, _, err := loadWithOptions(context.Background(), fs, LoadOptions{ConfigFilePath: testConfigPath, SkipEnv: true})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if cfg.DebugMode || cfg.Runtime != RuntimeNative {
		t.Errorf("environment must be ignored, got debug=%v runtime=%q", cfg.DebugMode, cfg.Runtime)
	}
}

func TestFilePath(t *testing.T) {
	t.Parallel()

	got, err := FilePath(LoadOptions{ConfigFilePath: "/x/custom.cue", ConfigDirPath: "/ignored"})
	if err != nil || got != "/x/custom.cue" {
		t.Errorf("FilePath(explicit) = %q, %v", got, err)
	}

	got, err = FilePath(LoadOptions{ConfigDirPath: "/cfg/treerun"})
	if err != nil {
		t.Fatalf("FilePath() error: %v", err)
	}
	if want := filepath.Join("/cfg/treerun", "config.cue"); got != want {
		t.Errorf("FilePath(dir) = %q, want %q", got, want)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.DebugMode = true
	cfg.Shell = "/bin/bash"
	cfg.Log.File = "/var/log/treerun.log"
	cfg.GlobalCommands = []CommandEntry{{Name: "Say \"hi\"", Command: "echo hi"}}

	if err := SaveTo(fs, testConfigPath, cfg); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	got, err := NewProviderFs(fs).Load(context.Background(), LoadOptions{ConfigFilePath: testConfigPath})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !got.DebugMode || got.Shell != "/bin/bash" || got.Log.File != "/var/log/treerun.log" {
		t.Errorf("reloaded config = %+v", got)
	}
	if len(got.GlobalCommands) != 1 || got.GlobalCommands[0].Name != "Say \"hi\"" {
		t.Errorf("GlobalCommands = %+v", got.GlobalCommands)
	}
}

func TestSaveAndReload_EscapedStrings(t *testing.T) {
	t.Parallel()

	commands := []CommandEntry{
		{Name: "Color", Command: "printf '\x1b[31mred'"},
		{Name: "Bell\a", Command: "echo done\a"},
		{Name: "Two lines", Command: "echo a\necho b"},
		{Name: `Windows`, Command: `C:\tools\run.exe --tab "\t"`},
		{Name: "Ünïcode ✓", Command: "echo ✓"},
	}

	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.GlobalCommands = commands

	if err := SaveTo(fs, testConfigPath, cfg); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	got, err := NewProviderFs(fs).Load(context.Background(), LoadOptions{ConfigFilePath: testConfigPath})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got.GlobalCommands) != len(commands) {
		t.Fatalf("GlobalCommands = %+v", got.GlobalCommands)
	}
	for i, want := range commands {
		if got.GlobalCommands[i] != want {
			t.Errorf("GlobalCommands[%d] = %q, want %q", i, got.GlobalCommands[i], want)
		}
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Runtime = "podman"
	if err := SaveTo(afero.NewMemMapFs(), testConfigPath, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	created, err := CreateDefaultConfig(fs, testConfigPath)
	if err != nil || !created {
		t.Fatalf("first CreateDefaultConfig() = %v, %v", created, err)
	}

	writeConfig(t, fs, testConfigPath, `debug_mode: true`)

	created, err = CreateDefaultConfig(fs, testConfigPath)
	if err != nil || created {
		t.Fatalf("second CreateDefaultConfig() = %v, %v", created, err)
	}
	data, _ := afero.ReadFile(fs, testConfigPath)
	if string(data) != `debug_mode: true` {
		t.Errorf("existing file was overwritten: %q", data)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	out := GenerateCUE(DefaultConfig())
	for _, want := range []string{
		`file_name: "file-tree-command-runner.json"`,
		"debug_mode: false",
		`runtime: "native"`,
		"global_commands: []",
		`level: "info"`,
		`theme: "default"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "shell:") {
		t.Error("empty shell should be omitted")
	}
}

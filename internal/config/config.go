// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/treerun/treerun/internal/issue"
	"github.com/treerun/treerun/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/literal"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "treerun"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix is the prefix of environment variable overrides.
	EnvPrefix = "TREERUN"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the treerun configuration directory using the platform
// conventions of os.UserConfigDir: %APPDATA% on Windows,
// ~/Library/Application Support on macOS and $XDG_CONFIG_HOME (defaulting
// to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// FilePath returns the settings file that opts resolve to. The file does not
// have to exist.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// config and the path it was read from ("" when only defaults applied).
func loadWithOptions(ctx context.Context, fs afero.Fs, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper(!opts.SkipEnv)

	resolvedPath := ""
	cfgPath, err := FilePath(opts)
	if err != nil {
		return nil, "", err
	}

	exists, err := fileExists(fs, cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat config file %s: %w", cfgPath, err)
	}

	switch {
	case exists:
		if err := loadCUEIntoViper(v, fs, cfgPath); err != nil {
			// The cause already names cfgPath.
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithSuggestions(
					"Check that the file contains valid CUE syntax",
					"Verify the values match the expected schema",
					"Use 'treerun settings show' to see the effective settings",
				).
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		resolvedPath = cfgPath
	case opts.ConfigFilePath != "":
		// An explicit --config must exist.
		return nil, "", issue.NewErrorContext().
			WithOperation("load settings").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Run 'treerun settings init --config <path>' to create it").
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(resolvedPath).
			WithSuggestion("Check the TREERUN_* environment variables for invalid values").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance seeded with defaults and, when env is
// set, environment overrides. Every key is registered through SetDefault so
// that AutomaticEnv can see it during Unmarshal.
func newViper(env bool) *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("file_name", defaults.FileName)
	v.SetDefault("debug_mode", defaults.DebugMode)
	v.SetDefault("global_commands", defaults.GlobalCommands)
	v.SetDefault("runtime", defaults.Runtime)
	v.SetDefault("shell", defaults.Shell)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("ui.theme", defaults.UI.Theme)
	v.SetDefault("ui.accessible", defaults.UI.Accessible)

	if env {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	return v
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Note: This uses manual CUE parsing instead of cueutil.ParseAndDecode because:
// 1. Config decodes to map[string]any (not a struct) for Viper integration
// 2. Uses Concrete(false) because config fields are optional
// 3. Needs to merge into Viper's config map, not return a struct
func loadCUEIntoViper(v *viper.Viper, fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists reports whether path exists and is not a directory.
func fileExists(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// CreateDefaultConfig writes a default settings file to path unless one
// already exists. It reports whether a file was created.
func CreateDefaultConfig(fs afero.Fs, path string) (bool, error) {
	exists, err := fileExists(fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := SaveTo(fs, path, DefaultConfig()); err != nil {
		return false, err
	}
	return true, nil
}

// SaveTo validates cfg and writes it to path as CUE, creating parent
// directories as needed.
func SaveTo(fs afero.Fs, path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := afero.WriteFile(fs, path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// treerun settings\n")
	sb.WriteString("// Environment variables prefixed with TREERUN_ override these values.\n\n")

	fmt.Fprintf(&sb, "file_name: %s\n", cueString(string(cfg.FileName)))
	fmt.Fprintf(&sb, "debug_mode: %v\n", cfg.DebugMode)
	fmt.Fprintf(&sb, "runtime: %s\n", cueString(string(cfg.Runtime)))
	if cfg.Shell != "" {
		fmt.Fprintf(&sb, "shell: %s\n", cueString(cfg.Shell))
	}

	if len(cfg.GlobalCommands) > 0 {
		sb.WriteString("\nglobal_commands: [\n")
		for _, entry := range cfg.GlobalCommands {
			fmt.Fprintf(&sb, "\t{name: %s, command: %s},\n", cueString(entry.Name), cueString(entry.Command))
		}
		sb.WriteString("]\n")
	} else {
		sb.WriteString("\nglobal_commands: []\n")
	}

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %s\n", cueString(string(cfg.Log.Level)))
	if cfg.Log.File != "" {
		fmt.Fprintf(&sb, "\tfile: %s\n", cueString(cfg.Log.File))
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\ttheme: %s\n", cueString(string(cfg.UI.Theme)))
	fmt.Fprintf(&sb, "\taccessible: %v\n", cfg.UI.Accessible)
	sb.WriteString("}\n")

	return sb.String()
}

// cueString quotes s as a CUE string literal. Control characters become
// \u escapes, which CUE accepts where Go's \x escapes are rejected.
func cueString(s string) string {
	return literal.String.Quote(s)
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultFileName is the workspace-relative command document name.
	DefaultFileName = "file-tree-command-runner.json"

	// RuntimeNative runs commands through the host's default shell.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs commands in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// LogLevelDebug logs everything, including process output lines.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default side-channel level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// ThemeDefault uses the default picker theme.
	// Defined locally to avoid coupling config to internal/tui.
	ThemeDefault Theme = "default"
	// ThemeCharm uses the Charm picker theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula uses the Dracula picker theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin uses the Catppuccin picker theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 uses the Base16 picker theme.
	ThemeBase16 Theme = "base16"
)

var (
	// ErrInvalidRuntimeMode is returned when a RuntimeMode value is not recognized.
	ErrInvalidRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidTheme is returned when a Theme value is not recognized.
	ErrInvalidTheme = errors.New("invalid theme")
	// ErrInvalidFileName is returned when the command document name is blank.
	ErrInvalidFileName = errors.New("invalid command file name")
	// ErrInvalidCommandEntry is the sentinel error wrapped by InvalidCommandEntryError.
	ErrInvalidCommandEntry = errors.New("invalid global command")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode selects how shell commands are executed.
	// Defined locally to avoid coupling config to internal/runtime;
	// the app layer converts to runtime.RuntimeType at the boundary.
	RuntimeMode string

	// InvalidRuntimeModeError is returned when a RuntimeMode value is not recognized.
	InvalidRuntimeModeError struct {
		Value RuntimeMode
	}

	// LogLevel is the minimum level written to the side-channel log.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Theme is the picker theme name.
	Theme string

	// InvalidThemeError is returned when a Theme value is not recognized.
	InvalidThemeError struct {
		Value Theme
	}

	// FileName is the workspace-relative path of the command document.
	FileName string

	// InvalidFileNameError is returned when a FileName is empty or whitespace-only.
	InvalidFileNameError struct {
		Value FileName
	}

	// InvalidCommandEntryError is returned when a global command has a blank
	// name or command.
	InvalidCommandEntryError struct {
		Index int
		Entry CommandEntry
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// CommandEntry is one global command definition.
	// Defined locally to avoid coupling config to internal/catalog.
	CommandEntry struct {
		// Name is the display label shown in the picker.
		Name string `json:"name" mapstructure:"name" toml:"name"`
		// Command is the shell template; the target path is appended at run time.
		Command string `json:"command" mapstructure:"command" toml:"command"`
	}

	// Config holds the treerun settings.
	Config struct {
		// FileName is the workspace-relative command document path.
		FileName FileName `json:"file_name" mapstructure:"file_name" toml:"file_name"`
		// DebugMode gates the echo and success/failure messages.
		DebugMode bool `json:"debug_mode" mapstructure:"debug_mode" toml:"debug_mode"`
		// GlobalCommands are available in every workspace, listed before file commands.
		GlobalCommands []CommandEntry `json:"global_commands" mapstructure:"global_commands" toml:"global_commands"`
		// Runtime selects the executor runtime.
		Runtime RuntimeMode `json:"runtime" mapstructure:"runtime" toml:"runtime"`
		// Shell overrides the native runtime's shell binary.
		Shell string `json:"shell" mapstructure:"shell" toml:"shell"`
		// Log configures the side-channel log.
		Log LogConfig `json:"log" mapstructure:"log" toml:"log"`
		// UI configures the picker.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// LogConfig configures the side-channel log.
	LogConfig struct {
		// Level is the minimum level written.
		Level LogLevel `json:"level" mapstructure:"level" toml:"level"`
		// File is the log file path; empty means the default under the user cache dir.
		File string `json:"file" mapstructure:"file" toml:"file"`
	}

	// UIConfig configures the picker.
	UIConfig struct {
		// Theme is the picker theme.
		Theme Theme `json:"theme" mapstructure:"theme" toml:"theme"`
		// Accessible forces the line-mode picker.
		Accessible bool `json:"accessible" mapstructure:"accessible" toml:"accessible"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		FileName:       DefaultFileName,
		DebugMode:      false,
		GlobalCommands: []CommandEntry{},
		Runtime:        RuntimeNative,
		Shell:          "",
		Log: LogConfig{
			Level: LogLevelInfo,
			File:  "", // resolved by internal/logging
		},
		UI: UIConfig{
			Theme:      ThemeDefault,
			Accessible: false,
		},
	}
}

// Validate returns an error collecting every invalid field of the Config.
func (c Config) Validate() error {
	var errs []error
	if err := c.FileName.Validate(); err != nil {
		errs = append(errs, err)
	}
	for i, entry := range c.GlobalCommands {
		if strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.Command) == "" {
			errs = append(errs, &InvalidCommandEntryError{Index: i, Entry: entry})
		}
	}
	if err := c.Runtime.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Log.Level.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.Theme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the sentinel and any individual field sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface for InvalidCommandEntryError.
func (e *InvalidCommandEntryError) Error() string {
	return fmt.Sprintf("global_commands[%d]: name and command must be non-empty (name %q)", e.Index, e.Entry.Name)
}

// Unwrap returns ErrInvalidCommandEntry for errors.Is() compatibility.
func (e *InvalidCommandEntryError) Unwrap() error { return ErrInvalidCommandEntry }

// String returns the string representation of the FileName.
func (f FileName) String() string { return string(f) }

// Validate returns an error if the FileName is empty or whitespace-only.
func (f FileName) Validate() error {
	if strings.TrimSpace(string(f)) == "" {
		return &InvalidFileNameError{Value: f}
	}
	return nil
}

// Error implements the error interface for InvalidFileNameError.
func (e *InvalidFileNameError) Error() string {
	return fmt.Sprintf("invalid command file name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFileName for errors.Is() compatibility.
func (e *InvalidFileNameError) Unwrap() error { return ErrInvalidFileName }

// String returns the string representation of the RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// Validate returns an error if the RuntimeMode is not one of the defined modes.
func (m RuntimeMode) Validate() error {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return &InvalidRuntimeModeError{Value: m}
	}
}

// Error implements the error interface for InvalidRuntimeModeError.
func (e *InvalidRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: native, virtual)", e.Value)
}

// Unwrap returns ErrInvalidRuntimeMode for errors.Is() compatibility.
func (e *InvalidRuntimeModeError) Unwrap() error { return ErrInvalidRuntimeMode }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate returns an error if the LogLevel is not one of the defined levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the Theme.
func (t Theme) String() string { return string(t) }

// Validate returns an error if the Theme is not one of the defined themes.
func (t Theme) Validate() error {
	switch t {
	case ThemeDefault, ThemeCharm, ThemeDracula, ThemeCatppuccin, ThemeBase16:
		return nil
	default:
		return &InvalidThemeError{Value: t}
	}
}

// Error implements the error interface for InvalidThemeError.
func (e *InvalidThemeError) Error() string {
	return fmt.Sprintf("invalid theme %q (valid: default, charm, dracula, catppuccin, base16)", e.Value)
}

// Unwrap returns ErrInvalidTheme for errors.Is() compatibility.
func (e *InvalidThemeError) Unwrap() error { return ErrInvalidTheme }

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DumpFormatCUE renders settings in the settings file syntax.
	DumpFormatCUE DumpFormat = "cue"
	// DumpFormatJSON renders settings as indented JSON.
	DumpFormatJSON DumpFormat = "json"
	// DumpFormatTOML renders settings as TOML.
	DumpFormatTOML DumpFormat = "toml"
)

var (
	// ErrUnknownKey is returned when Set is called with an unsupported key.
	ErrUnknownKey = errors.New("unknown settings key")
	// ErrGlobalCommandNotFound is returned when RemoveCommand matches nothing.
	ErrGlobalCommandNotFound = errors.New("global command not found")
	// ErrInvalidDumpFormat is returned when a DumpFormat value is not recognized.
	ErrInvalidDumpFormat = errors.New("invalid dump format")
)

type (
	// DumpFormat selects the encoding used by Marshal.
	DumpFormat string

	// InvalidDumpFormatError is returned when a DumpFormat value is not recognized.
	InvalidDumpFormatError struct {
		Value DumpFormat
	}

	// UnknownKeyError is returned when Set is called with an unsupported key.
	UnknownKeyError struct {
		Key string
	}

	// InvalidValueError is returned when Set cannot convert a value for a key.
	InvalidValueError struct {
		Key   string
		Value string
		Cause error
	}

	// GlobalCommandNotFoundError is returned when RemoveCommand matches no entry.
	GlobalCommandNotFoundError struct {
		Name string
	}
)

// SettableKeys lists the keys accepted by Set, in display order.
var SettableKeys = []string{
	"file_name",
	"debug_mode",
	"runtime",
	"shell",
	"log.level",
	"log.file",
	"ui.theme",
	"ui.accessible",
}

// Set assigns value to the dotted settings key and validates the result.
// cfg is left unchanged when an error is returned.
func Set(cfg *Config, key, value string) error {
	next := *cfg
	next.GlobalCommands = slices.Clone(cfg.GlobalCommands)

	switch key {
	case "file_name":
		next.FileName = FileName(value)
	case "debug_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &InvalidValueError{Key: key, Value: value, Cause: err}
		}
		next.DebugMode = b
	case "runtime":
		next.Runtime = RuntimeMode(value)
	case "shell":
		next.Shell = value
	case "log.level":
		next.Log.Level = LogLevel(value)
	case "log.file":
		next.Log.File = value
	case "ui.theme":
		next.UI.Theme = Theme(value)
	case "ui.accessible":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &InvalidValueError{Key: key, Value: value, Cause: err}
		}
		next.UI.Accessible = b
	default:
		return &UnknownKeyError{Key: key}
	}

	if err := next.Validate(); err != nil {
		return &InvalidValueError{Key: key, Value: value, Cause: err}
	}
	*cfg = next
	return nil
}

// AddCommand appends a global command. Duplicate names are allowed; lookups
// resolve to the first entry with a given name.
func AddCommand(cfg *Config, name, command string) error {
	entry := CommandEntry{Name: name, Command: command}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(command) == "" {
		return &InvalidCommandEntryError{Index: len(cfg.GlobalCommands), Entry: entry}
	}
	cfg.GlobalCommands = append(cfg.GlobalCommands, entry)
	return nil
}

// RemoveCommand deletes every global command named name and returns how
// many entries were removed.
func RemoveCommand(cfg *Config, name string) (int, error) {
	before := len(cfg.GlobalCommands)
	cfg.GlobalCommands = slices.DeleteFunc(cfg.GlobalCommands, func(e CommandEntry) bool {
		return e.Name == name
	})
	removed := before - len(cfg.GlobalCommands)
	if removed == 0 {
		return 0, &GlobalCommandNotFoundError{Name: name}
	}
	return removed, nil
}

// Marshal encodes cfg in the requested format.
func Marshal(cfg *Config, format DumpFormat) ([]byte, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	switch format {
	case DumpFormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode settings as JSON: %w", err)
		}
		return append(data, '\n'), nil
	case DumpFormatTOML:
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode settings as TOML: %w", err)
		}
		return data, nil
	default:
		return []byte(GenerateCUE(cfg)), nil
	}
}

// String returns the string representation of the DumpFormat.
func (f DumpFormat) String() string { return string(f) }

// Validate returns an error if the DumpFormat is not one of the defined formats.
func (f DumpFormat) Validate() error {
	switch f {
	case DumpFormatCUE, DumpFormatJSON, DumpFormatTOML:
		return nil
	default:
		return &InvalidDumpFormatError{Value: f}
	}
}

// Error implements the error interface for InvalidDumpFormatError.
func (e *InvalidDumpFormatError) Error() string {
	return fmt.Sprintf("invalid dump format %q (valid: cue, json, toml)", e.Value)
}

// Unwrap returns ErrInvalidDumpFormat for errors.Is() compatibility.
func (e *InvalidDumpFormatError) Unwrap() error { return ErrInvalidDumpFormat }

// Error implements the error interface for UnknownKeyError.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown settings key %q (valid: %s)", e.Key, strings.Join(SettableKeys, ", "))
}

// Unwrap returns ErrUnknownKey for errors.Is() compatibility.
func (e *UnknownKeyError) Unwrap() error { return ErrUnknownKey }

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Key, e.Cause)
}

// Unwrap returns the underlying conversion or validation error.
func (e *InvalidValueError) Unwrap() error { return e.Cause }

// Error implements the error interface for GlobalCommandNotFoundError.
func (e *GlobalCommandNotFoundError) Error() string {
	return fmt.Sprintf("no global command named %q", e.Name)
}

// Unwrap returns ErrGlobalCommandNotFound for errors.Is() compatibility.
func (e *GlobalCommandNotFoundError) Unwrap() error { return ErrGlobalCommandNotFound }

// SPDX-License-Identifier: MPL-2.0

// Package config handles treerun settings using Viper with CUE as the file format.
//
// Settings are loaded from ~/.config/treerun/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/treerun/config.cue on macOS,
// %APPDATA%\treerun\config.cue on Windows). A missing file yields defaults.
// Every key can be overridden from the environment with the TREERUN_ prefix,
// e.g. TREERUN_DEBUG_MODE=true or TREERUN_LOG_LEVEL=debug.
//
// The file is validated against an embedded CUE schema (config_schema.cue)
// before it is merged into Viper, so type errors surface with file positions
// instead of as zero values.
package config

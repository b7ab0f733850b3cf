// SPDX-License-Identifier: MPL-2.0

// Package tui provides the interactive command picker built on charmbracelet/huh.
//
// The picker falls back to huh's accessible line mode when stdin is not a
// terminal, so it keeps working when treerun is launched from a file manager
// action or a pipe.
package tui

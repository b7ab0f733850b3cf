// SPDX-License-Identifier: MPL-2.0

// Package run implements the two user actions, run-on-file and
// run-on-file-directory: load settings, find the workspace, build the command
// catalog, ask the presenter for a name, resolve the shell command and start
// it in the background.
package run

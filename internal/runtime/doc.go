// SPDX-License-Identifier: MPL-2.0

// Package runtime executes shell command strings for treerun.
//
// Two runtime implementations are available:
//   - native: runs the string through the host shell (/bin/sh -c, cmd.exe /d /s /c)
//   - virtual: runs the string in an embedded shell interpreter (mvdan/sh)
//
// Executor.Start launches a run in its own goroutine and returns a Handle
// immediately. Output is streamed line by line to the side-channel logger and
// kept in the Result. Runs are never cancelled and never time out.
package runtime

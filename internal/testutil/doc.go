// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Filesystem helpers (MustMkdirAll, MustWriteFile) take an afero.Fs so the
// same fixtures work on an in-memory filesystem and on t.TempDir().
package testutil

// SPDX-License-Identifier: MPL-2.0

// Package workspace locates the root directory whose command document
// treerun reads.
package workspace

import (
	"errors"
	"fmt"
	"os"

	"github.com/treerun/treerun/pkg/fspath"
	"github.com/treerun/treerun/pkg/types"

	"github.com/spf13/afero"
)

// GitMarker is the directory that marks a repository root.
const GitMarker = ".git"

// ErrNoWorkspace is the sentinel error wrapped by NoWorkspaceError.
var ErrNoWorkspace = errors.New("no workspace folder")

type (
	// NoWorkspaceError is returned when no workspace root can be determined.
	NoWorkspaceError struct {
		// Start is the directory the search started from, or the explicit root.
		Start types.FilesystemPath
		// Reason explains why Start was rejected.
		Reason string
	}

	// Locator finds workspace roots on a filesystem.
	Locator struct {
		fs afero.Fs
	}
)

// NewLocator creates a Locator over fs.
func NewLocator(fs afero.Fs) *Locator {
	return &Locator{fs: fs}
}

// Root returns the workspace root.
//
// When explicit is set it must name an existing directory and is returned
// as-is (made absolute). Otherwise the search walks up from start and returns
// the first directory containing fileName or a .git entry. If no parent
// carries a marker, start itself (made absolute) is the root.
func (l *Locator) Root(explicit, start types.FilesystemPath, fileName string) (types.FilesystemPath, error) {
	if explicit != "" {
		return l.explicitRoot(explicit)
	}
	if start == "" {
		return "", &NoWorkspaceError{Reason: "no starting directory"}
	}

	abs, err := fspath.Abs(start)
	if err != nil {
		return "", &NoWorkspaceError{Start: start, Reason: err.Error()}
	}

	for dir := abs; ; dir = fspath.Dir(dir) {
		for _, marker := range []string{fileName, GitMarker} {
			if marker == "" {
				continue
			}
			if _, err := l.fs.Stat(string(fspath.JoinStr(dir, marker))); err == nil {
				return dir, nil
			}
		}
		if fspath.IsRoot(dir) {
			return abs, nil
		}
	}
}

func (l *Locator) explicitRoot(explicit types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := fspath.Abs(explicit)
	if err != nil {
		return "", &NoWorkspaceError{Start: explicit, Reason: err.Error()}
	}
	info, err := l.fs.Stat(string(abs))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", &NoWorkspaceError{Start: explicit, Reason: "directory does not exist"}
	case err != nil:
		return "", &NoWorkspaceError{Start: explicit, Reason: err.Error()}
	case !info.IsDir():
		return "", &NoWorkspaceError{Start: explicit, Reason: "not a directory"}
	}
	return abs, nil
}

// Error implements the error interface.
func (e *NoWorkspaceError) Error() string {
	if e.Start == "" {
		return fmt.Sprintf("no workspace folder: %s", e.Reason)
	}
	return fmt.Sprintf("no workspace folder for %s: %s", e.Start, e.Reason)
}

// Unwrap returns ErrNoWorkspace for errors.Is() compatibility.
func (e *NoWorkspaceError) Unwrap() error { return ErrNoWorkspace }

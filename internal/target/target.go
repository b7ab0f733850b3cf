// SPDX-License-Identifier: MPL-2.0

// Package target turns a command template and a selected path into the shell
// command string that gets executed.
//
// Paths are inserted verbatim, without quoting: a path containing spaces or
// shell metacharacters is split or interpreted by the shell.
package target

import (
	"errors"
	"fmt"
	"os"

	"github.com/treerun/treerun/pkg/fspath"
	"github.com/treerun/treerun/pkg/types"

	"github.com/spf13/afero"
)

const (
	// ModeFile appends the path to the template.
	ModeFile Mode = "file"
	// ModeDirectory runs the template inside the path's directory.
	ModeDirectory Mode = "directory"
)

var (
	// ErrPathNotFound is the sentinel error wrapped by PathNotFoundError.
	ErrPathNotFound = errors.New("path does not exist")
	// ErrClassify is the sentinel error wrapped by ClassifyError.
	ErrClassify = errors.New("could not classify path")
	// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
	ErrInvalidMode = errors.New("invalid target mode")
)

type (
	// Mode selects how a template is combined with a path.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}

	// PathNotFoundError is returned when the selected path does not exist.
	PathNotFoundError struct {
		Path types.FilesystemPath
	}

	// ClassifyError is returned when the selected path exists but cannot be
	// inspected.
	ClassifyError struct {
		Path  types.FilesystemPath
		Cause error
	}

	// Request is a fully built shell command, ready to execute.
	Request struct {
		// ShellCommand is the string passed to the shell.
		ShellCommand string
		// Mode is the mode the command was built for.
		Mode Mode
		// Dir is the working directory in directory mode; empty in file mode.
		Dir types.FilesystemPath
	}

	// Resolver classifies paths and builds requests.
	Resolver struct {
		fs afero.Fs
	}
)

// NewResolver creates a Resolver that inspects paths on fs.
func NewResolver(fs afero.Fs) *Resolver {
	return &Resolver{fs: fs}
}

// Classify reports whether path is a file (true) or a directory (false).
// Anything that is not a directory, including devices, sockets and named
// pipes, counts as a file.
func (r *Resolver) Classify(path types.FilesystemPath) (bool, error) {
	info, err := r.fs.Stat(string(path))
	if errors.Is(err, os.ErrNotExist) {
		return false, &PathNotFoundError{Path: path}
	}
	if err != nil {
		return false, &ClassifyError{Path: path, Cause: err}
	}
	return !info.IsDir(), nil
}

// BuildFileMode returns template + " " + path.
func BuildFileMode(template string, path types.FilesystemPath) Request {
	return Request{
		ShellCommand: template + " " + string(path),
		Mode:         ModeFile,
	}
}

// BuildDirectoryMode returns "cd <dir> && " + template, where dir is the
// parent of path when path is a file and path itself when it is a directory.
func (r *Resolver) BuildDirectoryMode(template string, path types.FilesystemPath) (Request, error) {
	isFile, err := r.Classify(path)
	if err != nil {
		return Request{}, err
	}

	dir := path
	if isFile {
		dir = fspath.Dir(path)
	}
	return Request{
		ShellCommand: "cd " + string(dir) + " && " + template,
		Mode:         ModeDirectory,
		Dir:          dir,
	}, nil
}

// Build dispatches on mode.
func (r *Resolver) Build(mode Mode, template string, path types.FilesystemPath) (Request, error) {
	switch mode {
	case ModeFile:
		return BuildFileMode(template, path), nil
	case ModeDirectory:
		return r.BuildDirectoryMode(template, path)
	default:
		return Request{}, &InvalidModeError{Value: mode}
	}
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// Validate returns an error if the Mode is not one of the defined modes.
func (m Mode) Validate() error {
	switch m {
	case ModeFile, ModeDirectory:
		return nil
	default:
		return &InvalidModeError{Value: m}
	}
}

// Error implements the error interface for InvalidModeError.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid target mode %q (valid: file, directory)", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// Error implements the error interface for PathNotFoundError.
func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("%s: path does not exist", e.Path)
}

// Unwrap returns ErrPathNotFound for errors.Is() compatibility.
func (e *PathNotFoundError) Unwrap() error { return ErrPathNotFound }

// Error implements the error interface for ClassifyError.
func (e *ClassifyError) Error() string {
	return fmt.Sprintf("could not classify %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrClassify and the cause.
func (e *ClassifyError) Unwrap() []error { return []error{ErrClassify, e.Cause} }

// SPDX-License-Identifier: MPL-2.0

package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/treerun/treerun/internal/config"
	"github.com/treerun/treerun/internal/tui"
)

const (
	// PromptFile is shown above the names in run-on-file.
	PromptFile = "Select a command to run on file"
	// PromptDirectory is shown above the names in run-on-file-directory.
	PromptDirectory = "Select a command to run on file directory"
)

// ErrCommandNotFound is the sentinel error wrapped by CommandNotFoundError.
var ErrCommandNotFound = errors.New("command not found")

type (
	// Presenter offers the catalog names to the user and returns the chosen
	// one. ok is false when the user dismissed the prompt.
	Presenter interface {
		Choose(ctx context.Context, prompt string, names []string) (name string, ok bool, err error)
	}

	// FixedPresenter always answers with Name, without prompting.
	FixedPresenter struct {
		Name string
	}

	// CommandNotFoundError is returned when the chosen name matches no entry.
	CommandNotFoundError struct {
		Name      string
		Available []string
	}
)

// Choose implements Presenter.
func (p FixedPresenter) Choose(context.Context, string, []string) (string, bool, error) {
	return p.Name, true, nil
}

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("no command named %q", e.Name)
}

// Unwrap returns ErrCommandNotFound for errors.Is() compatibility.
func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

// pickerFor builds the interactive picker from the UI settings.
func pickerFor(cfg *config.Config) Presenter {
	pcfg := tui.DefaultConfig()
	pcfg.Theme = tui.Theme(cfg.UI.Theme)
	if cfg.UI.Accessible {
		pcfg.Accessible = true
	}
	return tui.NewPicker(pcfg)
}

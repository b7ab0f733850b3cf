// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrNoOptions is returned when a prompt is asked to choose from nothing.
var ErrNoOptions = errors.New("no options to choose from")

type (
	// Option represents a selectable option with a display title and value.
	Option[T comparable] struct {
		// Title is the display text for the option.
		Title string
		// Value is the underlying value of the option.
		Value T
	}

	// ChooseOptions configures the Choose component.
	ChooseOptions[T comparable] struct {
		// Title is the title/prompt displayed above the options.
		Title string
		// Description provides additional context below the title.
		Description string
		// Options is the list of options to choose from.
		Options []Option[T]
		// Height limits the number of visible options (0 for auto).
		Height int
		// Config holds common TUI configuration.
		Config Config
	}

	// Picker asks the user to pick one command name. It is the interactive
	// Presenter used by the CLI.
	Picker struct {
		cfg Config
	}
)

// Choose prompts the user to select one option from a list.
// It returns huh.ErrUserAborted when the prompt is dismissed.
func Choose[T comparable](ctx context.Context, opts ChooseOptions[T]) (T, error) {
	var result T
	if len(opts.Options) == 0 {
		return result, ErrNoOptions
	}

	huhOpts := make([]huh.Option[T], len(opts.Options))
	for i, opt := range opts.Options {
		huhOpts[i] = huh.NewOption(opt.Title, opt.Value)
	}

	sel := huh.NewSelect[T]().
		Title(opts.Title).
		Description(opts.Description).
		Options(huhOpts...).
		Value(&result)

	if opts.Height > 0 {
		sel = sel.Height(opts.Height)
	}

	form := huh.NewForm(huh.NewGroup(sel)).
		WithTheme(getHuhTheme(opts.Config.Theme)).
		WithAccessible(shouldUseAccessible(opts.Config)).
		WithOutput(getOutputWriter(opts.Config))

	if opts.Config.Width > 0 {
		form = form.WithWidth(opts.Config.Width)
	}

	if err := form.RunWithContext(ctx); err != nil {
		return result, err
	}

	return result, nil
}

// NewPicker creates a Picker using cfg.
func NewPicker(cfg Config) *Picker {
	return &Picker{cfg: cfg}
}

// Choose shows names under prompt and returns the selected one. ok is false
// when the user dismissed the prompt.
//
// Duplicate names are shown as separate rows. Each row carries its own name
// as the value, so picking either one yields the same string.
func (p *Picker) Choose(ctx context.Context, prompt string, names []string) (name string, ok bool, err error) {
	opts := make([]Option[string], len(names))
	for i, n := range names {
		opts[i] = Option[string]{Title: n, Value: n}
	}

	name, err = Choose(ctx, ChooseOptions[string]{
		Title:   prompt,
		Options: opts,
		Config:  p.cfg,
	})
	switch {
	case errors.Is(err, huh.ErrUserAborted):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("command picker: %w", err)
	}
	return name, true, nil
}

// SPDX-License-Identifier: MPL-2.0

package commandsource

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/treerun/treerun/internal/catalog"
	"github.com/treerun/treerun/internal/config"
	"github.com/treerun/treerun/internal/notify"
	"github.com/treerun/treerun/pkg/cueutil"

	"cuelang.org/go/cue"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// MaxDocumentSize is the largest command document LoadFile accepts.
const MaxDocumentSize = cueutil.DefaultMaxFileSize

//go:embed document_schema.cue
var documentSchema []byte

type (
	// Source loads catalog entries from the settings and the workspace
	// command document.
	Source struct {
		fs       afero.Fs
		notifier notify.Notifier
		logger   *log.Logger
	}

	document struct {
		Commands []documentCommand `json:"commands"`
	}

	documentCommand struct {
		Name    string `json:"name"`
		Command string `json:"command"`
	}
)

// New creates a Source reading documents from fs. Read failures are reported
// to notifier; diagnostics go to logger.
func New(fs afero.Fs, notifier notify.Notifier, logger *log.Logger) *Source {
	return &Source{fs: fs, notifier: notifier, logger: logger}
}

// LoadGlobal returns the global command list from cfg, in order. A nil config
// or an empty list yields an empty slice.
func (s *Source) LoadGlobal(cfg *config.Config) []catalog.Entry {
	if cfg == nil {
		return []catalog.Entry{}
	}

	entries := make([]catalog.Entry, 0, len(cfg.GlobalCommands))
	for _, c := range cfg.GlobalCommands {
		entries = append(entries, catalog.Entry{Name: c.Name, Command: c.Command, Source: catalog.SourceGlobal})
	}
	s.warnDuplicates(catalog.SourceGlobal, "settings", entries)
	return entries
}

// LoadFile returns the commands defined in the document at path, in order.
//
// A missing document yields an empty slice and is only logged. Any other
// failure yields an empty slice and exactly one Error notification.
func (s *Source) LoadFile(ctx context.Context, path string) []catalog.Entry {
	if err := ctx.Err(); err != nil {
		s.logger.Warn("command document load skipped", "path", path, "err", err)
		return []catalog.Entry{}
	}

	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("no command document", "path", path)
		return []catalog.Entry{}
	}
	if err != nil {
		s.report(&ConfigReadError{Path: path, Reason: ReasonUnreadable, Cause: err})
		return []catalog.Entry{}
	}

	entries, err := s.ParseDocument(path, data)
	if err != nil {
		s.report(err)
		return []catalog.Entry{}
	}

	s.logger.Debug("loaded command document", "path", path, "commands", len(entries))
	s.warnInvalid(path, entries)
	s.warnDuplicates(catalog.SourceFile, path, entries)
	return entries
}

// ParseDocument decodes a command document. data must be strict JSON of the
// form {"commands": [{"name": "...", "command": "..."}]}; unknown keys,
// missing fields and wrong types are rejected. Failures are returned as
// *ConfigReadError.
func (s *Source) ParseDocument(path string, data []byte) ([]catalog.Entry, error) {
	result, err := cueutil.ParseAndDecode[document](documentSchema, data, "#CommandDocument",
		cueutil.WithFilename(path),
		cueutil.WithFormat(cueutil.FormatJSON),
		cueutil.WithMaxFileSize(MaxDocumentSize),
	)
	if err != nil {
		return nil, &ConfigReadError{Path: path, Reason: reasonFor(err), Cause: err}
	}

	// The closed schema accepts an absent list as empty; the key itself is required.
	if !result.User.LookupPath(cue.ParsePath("commands")).Exists() {
		return nil, &ConfigReadError{
			Path:   path,
			Reason: ReasonInvalidShape,
			Cause:  fmt.Errorf("%s: missing required key \"commands\"", path),
		}
	}

	entries := make([]catalog.Entry, 0, len(result.Value.Commands))
	for _, c := range result.Value.Commands {
		entries = append(entries, catalog.Entry{Name: c.Name, Command: c.Command, Source: catalog.SourceFile})
	}
	return entries, nil
}

func (s *Source) report(err error) {
	var readErr *ConfigReadError
	if !errors.As(err, &readErr) {
		readErr = &ConfigReadError{Reason: ReasonUnreadable, Cause: err}
	}
	s.logger.Error("command document rejected", "path", readErr.Path, "reason", readErr.Reason, "err", readErr.Cause)
	s.notifier.Notify(notify.SeverityError, fmt.Sprintf("Could not read or parse %s. %v", readErr.Path, readErr.Cause))
}

// warnInvalid logs entries with a blank name or command. They stay in the
// list: the document is valid and the entry is still offered as written.
func (s *Source) warnInvalid(origin string, entries []catalog.Entry) {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			s.logger.Warn("blank command entry", "origin", origin, "index", i, "err", err)
		}
	}
}

func (s *Source) warnDuplicates(source catalog.Source, origin string, entries []catalog.Entry) {
	for _, name := range catalog.Merge(entries, nil).DuplicateNames() {
		s.logger.Warn("duplicate command name; the first entry wins", "source", source, "origin", origin, "name", name)
	}
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, cueutil.ErrFileTooLarge):
		return ReasonTooLarge
	case errors.Is(err, cueutil.ErrSyntax):
		return ReasonInvalidJSON
	default:
		return ReasonInvalidShape
	}
}

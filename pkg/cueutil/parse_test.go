// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Doc: close({
	commands: [...close({
		name:    string
		command: string
	})]
})
`

type (
	testDoc struct {
		Commands []testCommand `json:"commands"`
	}

	testCommand struct {
		Name    string `json:"name"`
		Command string `json:"command"`
	}
)

func TestParseAndDecode_JSON(t *testing.T) {
	t.Parallel()

	data := []byte(`{"commands":[{"name":"Format","command":"prettier -w"}]}`)
	result, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc",
		WithFilename("doc.json"), WithFormat(FormatJSON))
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}
	if len(result.Value.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(result.Value.Commands))
	}
	if got := result.Value.Commands[0]; got.Name != "Format" || got.Command != "prettier -w" {
		t.Errorf("decoded command = %+v", got)
	}
	if !result.User.Exists() {
		t.Error("ParseResult.User should hold the compiled input")
	}
}

func TestParseAndDecode_JSONRejectsCUESyntax(t *testing.T) {
	t.Parallel()

	// Valid CUE, invalid JSON: unquoted key and a comment.
	data := []byte("// comment\n{commands: []}")
	_, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc",
		WithFilename("doc.json"), WithFormat(FormatJSON))
	if err == nil {
		t.Fatal("expected a syntax error for non-JSON input")
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("error should match ErrSyntax, got: %v", err)
	}
}

func TestParseAndDecode_SchemaMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "unknown top-level key", data: `{"commands":[],"extra":true}`},
		{name: "wrong element type", data: `{"commands":[{"name":1,"command":"x"}]}`},
		{name: "missing command", data: `{"commands":[{"name":"x"}]}`},
		{name: "commands not a list", data: `{"commands":{"name":"x","command":"y"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc",
				WithFilename("doc.json"), WithFormat(FormatJSON))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if errors.Is(err, ErrSyntax) {
				t.Errorf("schema mismatch should not be reported as a syntax error: %v", err)
			}
			if !strings.Contains(err.Error(), "doc.json") {
				t.Errorf("error should mention the file, got: %v", err)
			}
		})
	}
}

func TestParseAndDecode_CUE(t *testing.T) {
	t.Parallel()

	data := []byte(`commands: [{name: "Lint", command: "eslint"}]`)
	result, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc", WithFilename("doc.cue"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}
	if len(result.Value.Commands) != 1 || result.Value.Commands[0].Name != "Lint" {
		t.Errorf("decoded = %+v", result.Value)
	}
}

func TestParseAndDecode_TooLarge(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`{"commands":[]}`), "#Doc",
		WithFormat(FormatJSON), WithMaxFileSize(4))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got: %v", err)
	}
}

func TestParseAndDecode_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`{"commands":[]}`), "#Nope",
		WithFormat(FormatJSON))
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("expected missing definition error, got: %v", err)
	}
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	goruntime "runtime"

	"mvdan.cc/sh/v3/shell"
)

// ErrNoEditor is returned when no editor command can be determined.
var ErrNoEditor = errors.New("no editor configured")

// editorCommand returns the editor argv for path. $VISUAL wins over $EDITOR;
// both may carry arguments ("code --wait") and are split with shell rules.
// Without either, the platform's file opener is used.
func editorCommand(getenv func(string) string, goos, path string) ([]string, error) {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		value := getenv(key)
		if value == "" {
			continue
		}
		fields, err := shell.Fields(value, getenv)
		if err != nil {
			return nil, fmt.Errorf("invalid $%s %q: %w", key, value, err)
		}
		if len(fields) > 0 {
			return append(fields, path), nil
		}
	}

	switch goos {
	case "windows":
		return []string{"notepad", path}, nil
	case "darwin":
		return []string{"open", "-t", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open", path}, nil
	default:
		return nil, ErrNoEditor
	}
}

// launchEditor opens path in the user's editor attached to the terminal.
func launchEditor(ctx context.Context, path string) error {
	argv, err := editorCommand(os.Getenv, goruntime.GOOS, path)
	if err != nil {
		return err
	}

	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", argv[0], err)
	}
	return nil
}

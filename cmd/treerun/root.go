// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for treerun.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/treerun/treerun/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treerun",
		Short: "Run named shell commands on files and directories",
		Long: TitleStyle.Render("treerun") + SubtitleStyle.Render(" - run named shell commands on files and directories") + `

treerun offers the commands defined in your settings and in the workspace
command file, lets you pick one, and runs it in the background on the file
or directory you selected.

` + SubtitleStyle.Render("Command sources (in order):") + `
  1. global_commands in the settings file
  2. "commands" in file-tree-command-runner.json at the workspace root

` + SubtitleStyle.Render("Examples:") + `
  treerun file ./src/app.ts              Pick a command, append the file path
  treerun dir ./src/app.ts               Pick a command, run it in ./src
  treerun file a.ts --command Format     Run "Format" without prompting
  treerun list                           Show the merged command list
  treerun settings open                  Edit the settings file`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "mirror the side-channel log to stderr and show help pages for errors")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "settings file (default is <user config dir>/treerun/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&app.flags.workspace, "workspace", "w", "", "workspace root (default: nearest parent with the command file or .git)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newFileCommand(app))
	rootCmd.AddCommand(newDirCommand(app))
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newSettingsCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the resulting status.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue writes the help page attached to err, if any.
func (a *App) renderIssue(err error) {
	iss, ok := issue.IssueOf(err)
	if !ok {
		return
	}
	rendered, renderErr := iss.Render("auto")
	if renderErr != nil {
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

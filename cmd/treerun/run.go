// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/treerun/treerun/internal/app/run"
	"github.com/treerun/treerun/internal/issue"
	"github.com/treerun/treerun/internal/runtime"
	"github.com/treerun/treerun/internal/target"
	"github.com/treerun/treerun/pkg/fspath"
	"github.com/treerun/treerun/pkg/types"

	"github.com/spf13/cobra"
)

func newFileCommand(app *App) *cobra.Command {
	return newRunCommand(app, target.ModeFile, &cobra.Command{
		Use:   "file <path>",
		Short: "Run a command with a file path appended",
		Long: `Pick a command and run it with the selected path appended as the last
argument: "<command> <path>". The path is not quoted.`,
		Example: `  treerun file ./src/app.ts
  treerun file ./README.md --command "Count lines"`,
	})
}

func newDirCommand(app *App) *cobra.Command {
	return newRunCommand(app, target.ModeDirectory, &cobra.Command{
		Use:   "dir <path>",
		Short: "Run a command inside a directory",
		Long: `Pick a command and run it inside the selected directory, or inside the
parent directory when a file is selected: "cd <dir> && <command>".`,
		Example: `  treerun dir ./src
  treerun dir ./src/app.ts --command Lint`,
	})
}

func newRunCommand(app *App, mode target.Mode, cmd *cobra.Command) *cobra.Command {
	var commandName string

	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true

		ctx := cmd.Context()
		logger, closeLog := app.openLogger(ctx)
		defer closeLog()

		path, err := fspath.Abs(types.FilesystemPath(args[0]))
		if err != nil {
			fmt.Fprintln(app.stderr, ErrorStyle.Render("error: ")+err.Error())
			return aborted(err)
		}

		orch := app.orchestrator(logger)
		handle, err := orch.Run(ctx, run.Request{
			Target:     path,
			Mode:       mode,
			Workspace:  types.FilesystemPath(app.flags.workspace),
			ConfigPath: app.flags.configPath,
			Command:    commandName,
		})
		if err != nil {
			app.reportRunError(err)
			return aborted(err)
		}

		// The action is accepted once the command has started. Stay alive
		// until it exits so the child is not orphaned.
		orch.Wait()
		if handle != nil && app.flags.verbose {
			if res := handle.Result(); res != nil && errors.Is(res.Error, runtime.ErrShellNotFound) {
				app.renderIssue(issue.NewErrorContext().WithIssue(issue.ShellNotFoundId).Wrap(res.Error).BuildError())
			}
		}
		return nil
	}

	cmd.Flags().StringVarP(&commandName, "command", "c", "", "run the named command without prompting")
	return cmd
}

// reportRunError prints what the orchestrator has not already shown.
// ActionableErrors were notified when they happened, so they only add
// detail in verbose mode.
func (a *App) reportRunError(err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("error: ")+err.Error())
		return
	}
	if a.flags.verbose {
		fmt.Fprintln(a.stderr, formatErrorForDisplay(err, true))
		a.renderIssue(err)
	}
}

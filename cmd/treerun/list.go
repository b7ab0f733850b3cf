// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/treerun/treerun/internal/app/run"
	"github.com/treerun/treerun/pkg/types"

	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the merged command list",
		Long: `Show the commands treerun would offer in the current workspace, in the
order they are offered: global commands first, then the workspace command file.
When two entries share a name, the first one is the one that runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			logger, closeLog := app.openLogger(ctx)
			defer closeLog()

			cat, err := app.orchestrator(logger).Load(ctx, types.FilesystemPath(app.flags.workspace), app.flags.configPath)
			if err != nil {
				app.reportRunError(err)
				return aborted(err)
			}

			printCatalog(app, cat)
			return nil
		},
	}
}

func printCatalog(app *App, cat *run.Catalog) {
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Commands"))
	fmt.Fprintf(w, "%s: %s\n", SubtitleStyle.Render("Workspace"), cat.Root)
	fmt.Fprintf(w, "%s: %s\n\n", SubtitleStyle.Render("Command file"), cat.FilePath)

	entries := cat.Catalog.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("(no commands configured)"))
		return
	}

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}

	shadowed := make(map[string]bool, len(entries))
	for _, e := range entries {
		marker := ""
		if shadowed[e.Name] {
			marker = " " + WarningStyle.Render("(shadowed)")
		}
		shadowed[e.Name] = true

		pad := strings.Repeat(" ", width-len(e.Name))
		fmt.Fprintf(w, "  %s%s  %-6s  %s%s\n",
			CmdStyle.Render(e.Name), pad, e.Source, e.Command, marker)
	}
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/treerun/treerun/internal/config"
	"github.com/treerun/treerun/internal/runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newSettingsCommand creates the `treerun settings` command tree.
func newSettingsCommand(app *App) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage treerun settings",
		Long: `Manage treerun settings.

Settings are stored in:
  - Linux: ~/.config/treerun/config.cue
  - macOS: ~/Library/Application Support/treerun/config.cue
  - Windows: %APPDATA%\treerun\config.cue

Every key can be overridden with a TREERUN_ environment variable,
for example TREERUN_DEBUG_MODE=true or TREERUN_LOG_LEVEL=debug.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "open",
		Short: "Open the settings file in your editor",
		Long: `Open the settings file in $VISUAL or $EDITOR, creating it with default
values first if it does not exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.settingsPath()
			if err != nil {
				return err
			}
			if _, err := config.CreateDefaultConfig(app.fs, path); err != nil {
				return err
			}
			return app.editor(cmd.Context(), path)
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showSettings(cmd.Context(), app)
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.settingsPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the settings file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.settingsPath()
			if err != nil {
				return err
			}
			created, err := config.CreateDefaultConfig(app.fs, path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), path)
			} else {
				fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("Already exists:"), path)
			}
			return nil
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a settings value",
		Long:  "Set a settings value. Valid keys: file_name, debug_mode, runtime, shell, log.level, log.file, ui.theme, ui.accessible.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editSettings(cmd.Context(), func(cfg *config.Config) (string, error) {
				if err := config.Set(cfg, args[0], args[1]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Set %s = %s", CmdStyle.Render(args[0]), args[1]), nil
			})
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "add-command <name> <command>",
		Short: "Add a global command",
		Long: `Add a global command. Global commands are offered in every workspace,
before the commands of the workspace command file.`,
		Example: `  treerun settings add-command "Count lines" "wc -l"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editSettings(cmd.Context(), func(cfg *config.Config) (string, error) {
				if err := config.AddCommand(cfg, args[0], args[1]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Added %s: %s", CmdStyle.Render(args[0]), args[1]), nil
			})
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "remove-command <name>",
		Short: "Remove every global command with the given name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editSettings(cmd.Context(), func(cfg *config.Config) (string, error) {
				n, err := config.RemoveCommand(cfg, args[0])
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed %d command(s) named %s", n, CmdStyle.Render(args[0])), nil
			})
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective settings as CUE, JSON or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg, config.DumpFormat(format))
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(data)
			return err
		},
	}
	dumpCmd.Flags().StringVarP(&format, "format", "f", string(config.DumpFormatCUE), "output format (cue, json, toml)")
	settingsCmd.AddCommand(dumpCmd)

	return settingsCmd
}

// settingsPath returns the settings file selected by --config or the default.
func (a *App) settingsPath() (string, error) {
	return config.FilePath(a.loadOptions())
}

// editSettings loads the settings file without environment overrides,
// applies edit and saves the result.
func (a *App) editSettings(ctx context.Context, edit func(*config.Config) (string, error)) error {
	path, err := a.settingsPath()
	if err != nil {
		return err
	}

	opts := a.loadOptions()
	opts.ConfigFilePath = path
	opts.SkipEnv = true

	cfg := config.DefaultConfig()
	if exists, _ := afero.Exists(a.fs, path); exists {
		if cfg, err = a.config.Load(ctx, opts); err != nil {
			return err
		}
	}

	msg, err := edit(cfg)
	if err != nil {
		return err
	}
	if err := config.SaveTo(a.fs, path, cfg); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, msg)
	return nil
}

func showSettings(ctx context.Context, app *App) error {
	cfg, err := app.config.Load(ctx, app.loadOptions())
	if err != nil {
		fmt.Fprintln(app.stderr, formatErrorForDisplay(err, app.flags.verbose))
		app.renderIssue(err)
		return aborted(err)
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Settings"))
	fmt.Fprintln(w)

	path, pathErr := app.settingsPath()
	exists := false
	if pathErr == nil {
		exists, _ = afero.Exists(app.fs, path)
	}
	if exists {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Settings file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Settings file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	printSetting(w, "file_name", cfg.FileName.String())
	printSetting(w, "debug_mode", fmt.Sprint(cfg.DebugMode))
	printRuntime(w, cfg)
	shell := cfg.Shell
	if shell == "" {
		shell = "(platform default)"
	}
	printSetting(w, "shell", shell)
	printSetting(w, "log.level", cfg.Log.Level.String())
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = "(default)"
	}
	printSetting(w, "log.file", logFile)
	printSetting(w, "ui.theme", cfg.UI.Theme.String())
	printSetting(w, "ui.accessible", fmt.Sprint(cfg.UI.Accessible))

	fmt.Fprintln(w)
	fmt.Fprintln(w, CmdStyle.Render("global_commands")+":")
	if len(cfg.GlobalCommands) == 0 {
		fmt.Fprintln(w, "  "+SubtitleStyle.Render("(none)"))
	}
	for _, entry := range cfg.GlobalCommands {
		fmt.Fprintf(w, "  %s: %s\n", entry.Name, SuccessStyle.Render(entry.Command))
	}
	return nil
}

// printRuntime prints the configured runtime and flags it when it cannot run
// on this host, e.g. a native shell that is not on PATH.
func printRuntime(w io.Writer, cfg *config.Config) {
	available := runtime.BuildRegistry(cfg).Available()
	value := SuccessStyle.Render(cfg.Runtime.String())
	if !slices.Contains(available, runtime.TypeForMode(cfg.Runtime)) {
		value += " " + WarningStyle.Render("(not available on this host)")
	}
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("runtime"), value)

	names := make([]string, len(available))
	for i, typ := range available {
		names[i] = typ.String()
	}
	printSetting(w, "available runtimes", strings.Join(names, ", "))
}

func printSetting(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(key), SuccessStyle.Render(value))
}

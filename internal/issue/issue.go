// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	NoWorkspaceId Id = iota + 1
	CommandFileInvalidId
	PathNotFoundId
	ShellNotFoundId
	ConfigLoadFailedId
	CommandNotFoundId
	NoCommandsConfiguredId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the issue page rendered for a terminal. stylePath is a
// glamour style name ("auto", "dark", "light", "notty") or a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

const docsBase = "https://github.com/treerun/treerun/blob/main/README.md"

var (
	render = glamour.Render

	noWorkspaceIssue = &Issue{
		id:       NoWorkspaceId,
		docLinks: []HttpLink{docsBase + "#workspaces"},
		mdMsg: `
# No workspace found!

treerun reads per-project commands from a file at the root of your workspace,
and could not work out where that root is.

## How the root is found
1. The directory passed with ` + "`--workspace`" + `
2. Otherwise the nearest parent of the current directory that contains the
   command file or a ` + "`.git`" + ` directory
3. Otherwise the current directory itself

This error means the directory given with ` + "`--workspace`" + ` is not usable,
or the current directory could not be determined.

## Things you can try:
- Run treerun from inside your project:
~~~
$ cd /path/to/project
$ treerun file ./main.go
~~~

- Or name the workspace explicitly:
~~~
$ treerun dir ./src --workspace /path/to/project
~~~`,
	}

	commandFileInvalidIssue = &Issue{
		id:       CommandFileInvalidId,
		docLinks: []HttpLink{docsBase + "#command-file"},
		mdMsg: `
# Could not read the command file!

The workspace command file exists but is not valid. Its commands were skipped;
global commands are still offered.

## Expected format
~~~json
{
  "commands": [
    { "name": "Format", "command": "prettier --write" },
    { "name": "Count lines", "command": "wc -l" }
  ]
}
~~~

## Things you can try:
- Check the file is strict JSON (no comments, no trailing commas)
- Make sure every entry has exactly a "name" and a "command" string`,
	}

	pathNotFoundIssue = &Issue{
		id:       PathNotFoundId,
		docLinks: []HttpLink{docsBase + "#running-commands"},
		mdMsg: `
# Target path not found!

The file or directory you selected does not exist (anymore).

## Things you can try:
- Check the path for typos
- Refresh your file explorer; the entry may have been moved or deleted`,
	}

	shellNotFoundIssue = &Issue{
		id:       ShellNotFoundId,
		docLinks: []HttpLink{docsBase + "#runtimes"},
		mdMsg: `
# Shell not found!

The native runtime could not find a shell to run commands with.

## Things you can try:
- Point treerun at a shell explicitly:
~~~
$ treerun settings set shell /bin/bash
~~~

- Or use the built-in shell interpreter:
~~~
$ treerun settings set runtime virtual
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id:       ConfigLoadFailedId,
		docLinks: []HttpLink{docsBase + "#settings"},
		extLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
		mdMsg: `
# Failed to load settings!

The settings file could not be parsed. Default settings were used instead.

## Things you can try:
- Show where the settings file lives:
~~~
$ treerun settings path
~~~

- Open it and fix the reported line:
~~~
$ treerun settings open
~~~

- Check for ` + "`TREERUN_*`" + ` environment variables with invalid values`,
	}

	commandNotFoundIssue = &Issue{
		id:       CommandNotFoundId,
		docLinks: []HttpLink{docsBase + "#running-commands"},
		mdMsg: `
# Command not found!

No configured command has the name passed with ` + "`--command`" + `.

## Things you can try:
- List the commands available in this workspace:
~~~
$ treerun list
~~~

- Names are matched exactly, including case and spaces; quote names with spaces:
~~~
$ treerun file ./README.md --command "Count lines"
~~~`,
	}

	noCommandsConfiguredIssue = &Issue{
		id:       NoCommandsConfiguredId,
		docLinks: []HttpLink{docsBase + "#settings"},
		mdMsg: `
# No commands configured!

Neither your settings nor the workspace command file define any commands.

## Things you can try:
- Add a global command:
~~~
$ treerun settings add-command "Count lines" "wc -l"
~~~

- Or create ` + "`file-tree-command-runner.json`" + ` at the workspace root.`,
	}

	issues = map[Id]*Issue{
		noWorkspaceIssue.Id():          noWorkspaceIssue,
		commandFileInvalidIssue.Id():   commandFileInvalidIssue,
		pathNotFoundIssue.Id():         pathNotFoundIssue,
		shellNotFoundIssue.Id():        shellNotFoundIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		commandNotFoundIssue.Id():      commandNotFoundIssue,
		noCommandsConfiguredIssue.Id(): noCommandsConfiguredIssue,
	}
)

// Values returns every registered issue ordered by Id.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

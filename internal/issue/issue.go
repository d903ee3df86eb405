// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ToolNotFoundId Id = iota + 1
	CommandFailedId
	ConfigLoadFailedId
	UpdateFailedId
	PermissionDeniedId
	AliasFailedId
	NotInteractiveId
)

type (
	// Id identifies a catalog guide.
	Id int

	// MarkdownMsg is the Markdown body of a guide.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a Markdown guide for a well-known failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var (
	render = glamour.Render

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Required tool not found!

The feature you picked runs an external program that is not on your PATH.

## Things you can try:
- See which tools are installed:
~~~
$ qakit deps
~~~

- Install the missing package, for example on Debian or Ubuntu:
~~~
$ sudo apt install imagemagick ffmpeg stress-ng wget iputils-ping iproute2
~~~

- Point the feature at another program in your config file:
~~~cue
commands: ping: "ping -n \"$COUNT\" \"$HOST\""
~~~`,
		docLinks: []HttpLink{"https://github.com/McEwann/QAkit#requirements"},
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# Command failed!

The tool exited with an error. Its own output is shown above.

## Things you can try:
- Check the file names and addresses you entered
- Run the same feature directly to see the full command:
~~~
$ qakit --verbose ping
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The qakit configuration file could not be read or does not match the schema.

## Things you can try:
- Show where qakit looks for its config:
~~~
$ qakit config path
~~~

- Write a fresh default config:
~~~
$ qakit config init --force
~~~

- Check the allowed keys:
~~~
$ qakit config dump
~~~`,
	}

	updateFailedIssue = &Issue{
		id: UpdateFailedId,
		mdMsg: `
# Update failed!

qakit could not download or install the new release. The current binary was
left unchanged.

## Things you can try:
- Check your network connection and retry
- Set a GitHub token if you hit the API rate limit:
~~~
$ export GITHUB_TOKEN=...
~~~

- Download the release archive manually from GitHub`,
		docLinks: []HttpLink{"https://github.com/McEwann/QAkit/releases"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The qakit binary lives in a directory you cannot write to
- The shell startup file is owned by another user

## Things you can try:
- Re-run the update with elevated rights:
~~~
$ sudo qakit upgrade
~~~

- Move qakit to a directory you own, such as ~/.local/bin`,
	}

	aliasFailedIssue = &Issue{
		id: AliasFailedId,
		mdMsg: `
# Could not install the shell alias!

qakit could not work out or update your shell startup file.

## Things you can try:
- Name the file explicitly:
~~~
$ qakit alias install --rc-file ~/.bashrc
~~~

- Set it once in your config file:
~~~cue
alias: rc_file: "~/.zshrc"
~~~`,
	}

	notInteractiveIssue = &Issue{
		id: NotInteractiveId,
		mdMsg: `
# No terminal attached!

The menu needs an interactive terminal.

## Things you can try:
- Run a feature directly instead of using the menu:
~~~
$ qakit ping --set HOST=10.0.0.1
$ qakit nwtest -- 239.1.1.1 5000
~~~`,
	}

	issues = map[Id]*Issue{
		toolNotFoundIssue.Id():     toolNotFoundIssue,
		commandFailedIssue.Id():    commandFailedIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
		updateFailedIssue.Id():     updateFailedIssue,
		permissionDeniedIssue.Id(): permissionDeniedIssue,
		aliasFailedIssue.Id():      aliasFailedIssue,
		notInteractiveIssue.Id():   notInteractiveIssue,
	}
)

// Id returns the guide ID.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guide for the terminal using a glamour style
// ("dark", "light", "notty" or a style file path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns every guide ordered by ID.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the guide with the given ID, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

const introMarkdown = `# Craig's QA Kit - Version %s

Everyday QA tools behind one menu. Entries marked *dependencies not met*
need their tool installed first; run ` + "`qakit deps`" + ` for details.
`

// introText renders the banner shown above the menu.
func (a *App) introText() string {
	md := fmt.Sprintf(introMarkdown, Version)
	out, err := glamour.Render(md, a.Styles.MarkdownStyle())
	if err != nil {
		a.Logger.Debug("rendering intro", "err", err)
		return md
	}
	return out
}

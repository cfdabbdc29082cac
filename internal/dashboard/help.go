package dashboard

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// newHelp returns a help model styled for the theme.
func newHelp(t Theme) help.Model {
	h := help.New()
	h.Styles.ShortKey = t.fg(t.Text).Bold(true)
	h.Styles.ShortDesc = t.muted()
	h.Styles.ShortSeparator = t.muted()
	h.Styles.FullKey = t.fg(t.Text).Bold(true)
	h.Styles.FullDesc = t.muted()
	h.Styles.FullSeparator = t.muted()
	h.Styles.Ellipsis = t.muted()
	return h
}

// helpOverlay renders every key binding in a centered box over the body.
func (r renderer) helpOverlay(h help.Model, keys KeyMap, width, height int) string {
	h.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		r.theme.title().MarginBottom(1).Render("Keyboard Shortcuts"),
		h.FullHelpView(keys.FullHelp()),
		"",
		r.theme.muted().Render("Press ? or esc to close"),
	)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.theme.BorderFocus).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}

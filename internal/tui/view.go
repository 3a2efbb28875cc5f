package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/stwalsh4118/cclive/internal/page"
	"github.com/stwalsh4118/cclive/internal/view"
)

// Selection marker constants
const (
	selectedMarker   = "▸ "
	unselectedMarker = "  "
	rowIndent        = "    "
)

// Layout constants
const (
	headerTitle         = "Claude Code Live"
	headerHeight        = 6 // header box (3) + stats line + spacing
	footerHeight        = 3
	collapsedCardHeight = 1
)

var statLabels = map[page.Stat]string{
	page.StatSessions:   "Sessions",
	page.StatTokens:     "Tokens",
	page.StatActiveTime: "Active",
	page.StatToolCalls:  "Tool calls",
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")

	if !m.hasFrame {
		b.WriteString(fmt.Sprintf("  %s connecting to %s\n", m.spinner.View(), m.endpoint))
	} else {
		b.WriteString(m.renderCards())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the header box with the indicator and live count.
func (m Model) renderHeader() string {
	status := m.frame.Title
	if status == "" {
		status = "offline"
	}
	left := fmt.Sprintf("%s  %s  %s", boldStyle.Render(headerTitle), Indicator(m.frame.Active), dimStyle.Render(status))
	right := fmt.Sprintf("%d live", m.frame.LiveCount())

	contentWidth := m.width - 4
	padding := contentWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return boxStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", padding) + right)
}

// renderStats renders the aggregate figures shown on the page.
func (m Model) renderStats() string {
	if len(m.frame.Stats) == 0 {
		return dimStyle.Render("  no aggregate figures on this page")
	}
	parts := make([]string, 0, len(m.frame.Stats))
	for _, s := range m.frame.Stats {
		label := statLabels[s.Name]
		if label == "" {
			label = string(s.Name)
		}
		parts = append(parts, statLabelStyle.Render(label+" ")+statValueStyle.Render(s.Value))
	}
	return "  " + strings.Join(parts, "   ")
}

// renderCards renders the visible window of cards.
func (m Model) renderCards() string {
	if len(m.frame.Cards) == 0 {
		return dimStyle.Render(italicStyle.Render("  No sessions")) + "\n"
	}

	end := m.scrollOffset + m.visibleCards()
	if end > len(m.frame.Cards) {
		end = len(m.frame.Cards)
	}

	var b strings.Builder
	if m.scrollOffset > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more", m.scrollOffset)))
		b.WriteString("\n")
	}
	for i := m.scrollOffset; i < end; i++ {
		c := m.frame.Cards[i]
		b.WriteString(m.renderCard(c, i == m.cursor, m.width))
		b.WriteString("\n")
	}
	if rest := len(m.frame.Cards) - end; rest > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", rest)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderCard renders one card: a summary line, then details when expanded.
func (m Model) renderCard(c view.Card, selected bool, width int) string {
	var b strings.Builder

	marker := unselectedMarker
	if selected {
		marker = selectedMarker
	}

	project := c.Project
	if project == "" {
		project = c.ID
	}
	line := marker + Indicator(c.Live) + " " + boldStyle.Render(project)
	if c.Live {
		line += " " + liveStyle.Render("Live")
	}
	if c.Static {
		line += " " + dimStyle.Render("[saved]")
	}

	padding := width - lipgloss.Width(line) - lipgloss.Width(c.Tokens) - 2
	if padding < 1 {
		padding = 1
	}
	line = ansi.Truncate(line+strings.Repeat(" ", padding)+c.Tokens, width, "…")
	if selected {
		line = selectedStyle.Render(line)
	}
	b.WriteString(line)

	if !m.isExpanded(c.ID) {
		return b.String()
	}

	for _, r := range c.Rows {
		b.WriteString("\n")
		b.WriteString(rowIndent)
		b.WriteString(dimStyle.Render(r.Label+": ") + r.Value)
	}

	if c.Prompt != "" || c.Revealing {
		b.WriteString("\n")
		b.WriteString(rowIndent)
		b.WriteString(dimStyle.Render("Latest Prompt"))
		b.WriteString("\n")
		b.WriteString(renderPrompt(c.Prompt, c.Revealing, width-len(rowIndent)))
	}

	return b.String()
}

// renderPrompt wraps prompt text under the card, with a caret while the
// text is still being revealed.
func renderPrompt(text string, revealing bool, width int) string {
	if width < 10 {
		width = 10
	}
	wrapped := wordwrap.String(text, width)
	if revealing {
		wrapped += cyanStyle.Render(iconCaret)
	}

	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = rowIndent + italicStyle.Render(l)
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the footer box with keybinding help.
func (m Model) renderFooter() string {
	bindings := []struct{ key, desc string }{
		{keys.Up.Help().Key, keys.Up.Help().Desc},
		{keys.Down.Help().Key, keys.Down.Help().Desc},
		{keys.Toggle.Help().Key, keys.Toggle.Help().Desc},
		{keys.ExpandAll.Help().Key, keys.ExpandAll.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		parts = append(parts, kb.key+" "+kb.desc)
	}
	return boxStyle.Width(m.width - 2).Render(strings.Join(parts, "  "))
}

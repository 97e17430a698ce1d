package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/codeoverview/internal/overview"
)

const helpLine = "tab switch • ↑/↓ scroll • esc back • ctrl+c quit"

func (m *Model) View() string {
	if m.page == pageHome {
		return m.homeView()
	}
	return m.overviewView()
}

func (m *Model) homeView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("VIEW YOUR CODE OVERVIEW"))
	b.WriteString("\n")
	b.WriteString(m.idInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("enter open • esc quit"))
	return b.String()
}

func (m *Model) statusLine() string {
	switch m.status {
	case idChecking:
		return m.spinner.View() + " " + mutedStyle.Render("Checking...")
	case idFound:
		return okStyle.Render("✓ Overview found. Press enter to open it.")
	case idMissing:
		return errStyle.Render("✗ No overview with this ID.")
	case idError:
		return errStyle.Render("Could not check ID: " + m.checkErr.Error())
	}
	return ""
}

func (m *Model) overviewView() string {
	overviewTab, chatTab := activeTabStyle, inactiveTabStyle
	if m.tab == tabChat {
		overviewTab, chatTab = inactiveTabStyle, activeTabStyle
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		overviewTab.Render("Overview"), " ", chatTab.Render("Chat"))

	sections := []string{
		titleStyle.Render("Code overview " + m.id),
		tabs,
		"",
		m.body.View(),
	}
	if m.tab == tabChat {
		sections = append(sections, "", m.chatInput.View())
	}
	sections = append(sections, mutedStyle.Render(helpLine))
	return strings.Join(sections, "\n")
}

// refreshBody re-renders the active tab into the scrolling viewport.
func (m *Model) refreshBody() {
	if m.page != pageOverview {
		return
	}
	if m.tab == tabChat {
		m.body.SetContent(m.transcript())
		m.body.GotoBottom()
		return
	}
	m.body.SetContent(m.overviewText())
	m.body.GotoTop()
}

func (m *Model) overviewText() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Loading overview..."
	case m.loadErr != nil:
		return errStyle.Render("Could not load overview: " + m.loadErr.Error())
	}
	return m.renderMarkdown(m.doc.Text)
}

func (m *Model) transcript() string {
	if m.loading {
		return m.spinner.View() + " Loading conversation..."
	}
	if m.loadErr != nil {
		return errStyle.Render("Could not load overview: " + m.loadErr.Error())
	}

	var b strings.Builder
	for _, t := range m.history {
		style := aiStyle
		if t.User == overview.SpeakerHuman {
			style = humanStyle
		}
		b.WriteString(style.Render(t.User + ":"))
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(t.Text))
		b.WriteString("\n\n")
	}
	if m.sending {
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render("Thinking..."))
		b.WriteString("\n")
	}
	if m.chatErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Chat failed: %v", m.chatErr)))
		b.WriteString("\n")
	}
	if m.saveErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Conversation not saved: %v", m.saveErr)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderMarkdown renders s for the current width, falling back to the raw
// text when no renderer can be built.
func (m *Model) renderMarkdown(s string) string {
	width := max(m.body.Width-2, 20)
	if m.renderer == nil || m.renderWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.renderer = nil
			return s
		}
		m.renderer, m.renderWidth = r, width
	}
	out, err := m.renderer.Render(s)
	if err != nil {
		return s
	}
	return strings.Trim(out, "\n")
}

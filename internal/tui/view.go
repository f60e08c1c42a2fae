package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

func (m Model) View() string {
	var b strings.Builder

	var title string
	switch m.screen {
	case screenTables:
		title = " Tables "
	case screenRows:
		title = fmt.Sprintf(" %s (%d rows) ", m.table, len(m.rows))
	case screenForm:
		if st := m.session.State(); st.Key != "" {
			title = fmt.Sprintf(" Edit %s #%s ", m.table, st.Key)
		} else {
			title = fmt.Sprintf(" New %s ", m.table)
		}
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render("Error: " + m.notice + "\n\npress enter to dismiss"))
		b.WriteString("\n")
		return b.String()
	}

	switch m.screen {
	case screenTables:
		b.WriteString(m.renderTables())
	case screenRows:
		b.WriteString(m.grid.View())
	case screenForm:
		b.WriteString(m.renderForm())
	}
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(successStyle.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderTables() string {
	if len(m.tables) == 0 {
		return dimStyle.Render("No tables found.")
	}
	var b strings.Builder
	for i, name := range m.tables {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + name))
		} else {
			b.WriteString(normalStyle.Render("  " + name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderForm() string {
	if len(m.inputs) == 0 {
		return dimStyle.Render("Nothing to edit besides the key. Press ctrl+s to insert defaults.")
	}

	width := 0
	for _, f := range m.session.Fields() {
		width = max(width, len(f.Name))
	}

	var lines []string
	for i, f := range m.session.Fields() {
		label := fmt.Sprintf("%-*s ", width, f.Name)
		if i == m.focus {
			label = selectedStyle.Render("> " + label)
		} else {
			label = normalStyle.Render("  " + label)
		}
		lines = append(lines, label+m.inputs[i].View())
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	var bindings []key.Binding
	switch m.screen {
	case screenTables:
		bindings = []key.Binding{keys.Open, keys.Refresh, keys.Quit}
	case screenRows:
		bindings = []key.Binding{keys.Open, keys.New, keys.Delete, keys.Refresh, keys.Back, keys.Quit}
	case screenForm:
		bindings = []key.Binding{keys.Next, keys.Prev, keys.ChoiceL, keys.ChoiceR, keys.Save, keys.Back}
	}

	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

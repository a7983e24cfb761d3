package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dialogdb/dialog/pkg/artifact"
)

type tab int

const (
	tabFacts tab = iota
	tabTree
)

var (
	tabBarStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	activeTabStyle = tabBarStyle.Foreground(lipgloss.Color("212"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(1, 0, 0)
)

// model is the root bubbletea Model for dialog-diagnose: a Facts tab
// (a bubbles/table over the decoded CSV rows) and a Tree tab (a
// scrollable render of the EAV index's node shape).
type model struct {
	activeTab tab
	factsTbl  table.Model
	treeLines []treeLine
	treePos   int
	err       error
}

func newModel(l loaded) model {
	columns := []table.Column{
		{Title: "the", Width: 24},
		{Title: "of", Width: 14},
		{Title: "is", Width: 30},
	}
	rows := make([]table.Row, 0, len(l.facts))
	for _, a := range l.facts {
		value, _ := a.Is.AsString()
		rows = append(rows, table.Row{string(a.The), a.Of.String(), value})
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	lines, err := renderTree(context.Background(), l.store.Store(), l.revision.Root(artifact.EAV))

	return model{
		factsTbl:  tbl,
		treeLines: lines,
		err:       err,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "f":
			m.activeTab = tabFacts
			return m, nil
		case "t":
			m.activeTab = tabTree
			return m, nil
		}

		if m.activeTab == tabFacts {
			var cmd tea.Cmd
			m.factsTbl, cmd = m.factsTbl.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "up", "k":
			if m.treePos > 0 {
				m.treePos--
			}
		case "down", "j":
			if m.treePos < len(m.treeLines)-1 {
				m.treePos++
			}
		}
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	if m.err != nil && m.activeTab == tabTree {
		return fmt.Sprintf("error rendering tree: %v\npress f for facts, q to quit\n", m.err)
	}

	factsLabel := "Facts"
	treeLabel := "Tree"
	if m.activeTab == tabFacts {
		factsLabel = activeTabStyle.Render(factsLabel)
		treeLabel = tabBarStyle.Render(treeLabel)
	} else {
		factsLabel = tabBarStyle.Render(factsLabel)
		treeLabel = activeTabStyle.Render(treeLabel)
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, factsLabel, treeLabel)

	var body string
	if m.activeTab == tabFacts {
		body = m.factsTbl.View()
	} else {
		body = renderTreeLinesCursor(m.treeLines, m.treePos)
	}

	help := helpStyle.Render("f: facts  t: tree  ↑/↓: move  q: quit")
	return bar + "\n" + body + "\n" + help
}

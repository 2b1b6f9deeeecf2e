package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newInspectCmd creates the inspect command for browsing a positioned graph
// in the terminal.
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <layout.json>",
		Short: "Browse a positioned graph interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := graph.ReadPositionedFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			if len(p.Nodes) == 0 {
				printInfo("Layout is empty")
				return nil
			}
			_, err = tea.NewProgram(newNodeListModel(p)).Run()
			return err
		},
	}
}

// =============================================================================
// NodeListModel - Interactive node browsing
// =============================================================================

// NodeListModel is the bubbletea model for browsing positioned nodes.
// The left column lists nodes; the selected node's parameters are shown
// in a detail block below the list.
type NodeListModel struct {
	Layout graph.Positioned
	Cursor int
	Height int
	Offset int

	// degrees indexes edge counts by node ID for the detail block.
	inDegree  map[int]int
	outDegree map[int]int
}

// newNodeListModel creates a node list model with degree indexes prebuilt.
func newNodeListModel(p graph.Positioned) NodeListModel {
	in := make(map[int]int)
	out := make(map[int]int)
	for _, e := range p.Edges {
		out[e.Source]++
		in[e.Target]++
	}
	return NodeListModel{
		Layout:    p,
		Height:    15,
		inDegree:  in,
		outDegree: out,
	}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Layout.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	title := "Inspect Layout"
	if m.Layout.IsAggregated() {
		title = "Inspect Layout (file-level)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Layout.Nodes) {
		end = len(m.Layout.Nodes)
	}

	for i := m.Offset; i < end; i++ {
		n := m.Layout.Nodes[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := fmt.Sprintf("%s%s", cursor, style.Render(n.Title))
		if n.LayerInfo.Physical != "" {
			line += "  " + listDimStyle.Render(n.LayerInfo.Physical)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())
	return b.String()
}

// detailView renders the parameter block for the selected node.
func (m NodeListModel) detailView() string {
	n := m.Layout.Nodes[m.Cursor]

	var rows []string
	if n.Params.File != "" {
		rows = append(rows, fmt.Sprintf("file      %s:%d", n.Params.File, n.Params.Line))
	}
	rows = append(rows,
		fmt.Sprintf("type      %s", n.Type),
		fmt.Sprintf("position  (%.0f, %.0f)", n.X, n.Y),
		fmt.Sprintf("edges     %d in, %d out", m.inDegree[n.ID], m.outDegree[n.ID]),
	)
	if n.Params.ExecSeq > 0 {
		rows = append(rows, fmt.Sprintf("order     %d", n.Params.ExecSeq))
	}
	if n.Params.Status != "" && n.Params.Status != graph.StatusUnchanged {
		rows = append(rows, fmt.Sprintf("status    %s", n.Params.Status))
	}
	if n.Params.Hits > 0 {
		rows = append(rows, fmt.Sprintf("hits      %d", n.Params.Hits))
	}
	if n.Params.IsDead {
		rows = append(rows, StyleWarning.Render("never observed at runtime"))
	}
	if n.Params.Doc != "" {
		rows = append(rows, "", listDimStyle.Render(n.Params.Doc))
	}

	return listDimStyle.Render(strings.Join(rows, "\n"))
}

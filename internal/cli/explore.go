package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/pipeline"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/selection"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	damStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorDam))
	sireStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorSire))
	pickedStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(render.ColorSelected))
)

// exploreCommand creates the explore command, an interactive terminal view of
// a pedigree scene.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "explore <records>",
		Short: "Explore the pedigree of an individual interactively",
		Long: `Explore the pedigree of an individual interactively.

Keys: ↑/↓ move between nodes, ←/→ jump between generations, enter selects or
deselects the node under the cursor, r re-roots the view on it, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], &opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, source string, opts *viewOpts) error {
	v, err := c.openView(ctx, source, opts)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(newExploreModel(v.engine), tea.WithContext(ctx)).Run(); err != nil {
		_ = v.runner.Close()
		return err
	}
	return v.close(ctx)
}

// =============================================================================
// ExploreModel - Interactive scene navigation
// =============================================================================

// ExploreModel is the bubbletea model for pedigree exploration.
type ExploreModel struct {
	Engine *pipeline.Engine[record.Attributes]
	Cursor int
	Height int
	Offset int

	nodes []render.Node[record.Attributes]
	scene *render.Scene[record.Attributes]
}

// newExploreModel creates an explore model over engine's current scene.
func newExploreModel(e *pipeline.Engine[record.Attributes]) ExploreModel {
	m := ExploreModel{Engine: e, Height: 15}
	m.refresh()
	return m
}

// refresh re-reads the scene and orders nodes by generation, then x.
func (m *ExploreModel) refresh() {
	var current string
	if m.Cursor < len(m.nodes) {
		current = m.nodes[m.Cursor].ID
	}

	m.scene = m.Engine.Scene()
	m.nodes = slices.Clone(m.scene.Nodes)
	slices.SortStableFunc(m.nodes, func(a, b render.Node[record.Attributes]) int {
		return cmp.Or(cmp.Compare(a.Generation, b.Generation), cmp.Compare(a.Position.X, b.Position.X))
	})

	m.Cursor = 0
	for i, n := range m.nodes {
		if n.ID == current {
			m.Cursor = i
			break
		}
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "left", "h":
			m.jumpGeneration(-1)
		case "right", "l":
			m.jumpGeneration(1)
		case "enter", " ":
			if n, ok := m.current(); ok {
				m.Engine.NodeClicked(n.ID, selection.NodeType(n.Type))
				m.refresh()
			}
		case "r":
			if n, ok := m.current(); ok && n.Type == render.TypeIndividual {
				m.Engine.SetRoot(n.ID)
				m.refresh()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m *ExploreModel) current() (render.Node[record.Attributes], bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.nodes) {
		return render.Node[record.Attributes]{}, false
	}
	return m.nodes[m.Cursor], true
}

func (m *ExploreModel) move(delta int) {
	m.Cursor = min(max(m.Cursor+delta, 0), max(len(m.nodes)-1, 0))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// jumpGeneration moves the cursor to the first node of the adjacent generation.
func (m *ExploreModel) jumpGeneration(dir int) {
	n, ok := m.current()
	if !ok {
		return
	}
	if dir > 0 {
		for i := m.Cursor + 1; i < len(m.nodes); i++ {
			if m.nodes[i].Generation != n.Generation {
				m.move(i - m.Cursor)
				return
			}
		}
		return
	}
	target := -1
	for i := m.Cursor - 1; i >= 0; i-- {
		if m.nodes[i].Generation == n.Generation {
			continue
		}
		if target >= 0 && m.nodes[i].Generation != m.nodes[target].Generation {
			break
		}
		target = i
	}
	if target >= 0 {
		m.move(target - m.Cursor)
	}
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Pedigree of " + m.Engine.Root()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ←/→ generation  ⏎ select  r re-root  q quit"))
	b.WriteString("\n\n")

	if m.scene.Status == render.StatusNotFound {
		b.WriteString(StyleWarning.Render("Root not found in records"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.nodes))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(n.Generation),
			n.ID,
			n.Label,
			describeNode(n),
			fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Gen", "ID", "Label", "Role", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.nodes) {
				return lipgloss.NewStyle()
			}
			n := m.nodes[idx]
			switch {
			case n.Style.Selected:
				return pickedStyle
			case n.Style.ParentRole == "dam":
				return damStyle
			case n.Style.ParentRole == "sire":
				return sireStyle
			case idx == m.Cursor:
				return listSelectedStyle
			case n.Type == render.TypeGroup || n.Partner:
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	status := "nothing selected"
	if sel := m.scene.Selection; !sel.IsIdle() {
		status = fmt.Sprintf("selected %s  dam %s  sire %s", sel.SelectedID, orDash(sel.HighlightedDamID), orDash(sel.HighlightedSireID))
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s", m.Cursor+1, len(m.nodes), status)))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func describeNode(n render.Node[record.Attributes]) string {
	switch {
	case n.Type == render.TypeGroup:
		return fmt.Sprintf("group (%d)", n.Count)
	case n.Partner:
		return "partner"
	case n.Style.Selected:
		return "selected"
	case n.Style.ParentRole != "":
		return n.Style.ParentRole
	}
	return n.Sex
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

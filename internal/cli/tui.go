package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/worker"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// pick command
// =============================================================================

// pickCommand creates the interactive focus-person picker.
func (c *CLI) pickCommand() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "pick [people.json|people.yaml]",
		Short: "Choose a focus person interactively",
		Long: `Choose a focus person interactively.

Moving the cursor lays out the chart around the highlighted person in the
background and shows a preview of its size. Enter prints the chosen ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return c.runPick(cmd.Context(), args[0], opts, flags.noCache)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runPick(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
	if len(opts.People) == 0 {
		printInfo("No people in %s", input)
		return nil
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// Layout logs would tear the TUI; keep only warnings.
	quiet := c.Logger.With()
	quiet.SetLevel(LogWarn)
	runner.Logger = quiet

	host := worker.NewHost(ctx, runner.HandleLayout,
		worker.WithDebounce(worker.DefaultDebounce),
		worker.WithLogger(quiet))
	defer host.Close()

	people := graph.Normalize(opts.People)
	model := NewPersonListModel(people, host, pipeline.LayoutRequest{
		People:       people,
		Settings:     opts.Settings,
		CollapsedIDs: opts.CollapsedIDs,
	})
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("picker: %w", err)
	}

	m, ok := final.(PersonListModel)
	if !ok || m.Selected == "" {
		return nil
	}
	fmt.Println(m.Selected)
	printNextStep("Render", fmt.Sprintf("%s render %s --focus %s", appName, input, m.Selected))
	return nil
}

// =============================================================================
// PersonListModel - Interactive focus selection
// =============================================================================

// layoutMsg carries a current worker response into the model.
type layoutMsg struct {
	resp pipeline.LayoutResponse
}

// PersonListModel is the bubbletea model for interactive focus selection.
type PersonListModel struct {
	IDs      []string
	People   family.People
	Cursor   int
	Offset   int
	Height   int
	Selected string

	host    *worker.Host
	request pipeline.LayoutRequest
	preview *pipeline.LayoutResponse
}

// NewPersonListModel creates a list of people sorted by display name.
// When host is non-nil each cursor move requests a preview layout.
func NewPersonListModel(people family.People, host *worker.Host, req pipeline.LayoutRequest) PersonListModel {
	ids := people.SortedIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return strings.ToLower(people[ids[i]].DisplayName()) < strings.ToLower(people[ids[j]].DisplayName())
	})
	return PersonListModel{
		IDs:     ids,
		People:  people,
		Height:  15,
		host:    host,
		request: req,
	}
}

func (m PersonListModel) Init() tea.Cmd {
	return tea.Batch(m.requestPreview(), m.waitForLayout())
}

func (m PersonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
				return m, m.requestPreview()
			}
		case "down", "j":
			if m.Cursor < len(m.IDs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
				return m, m.requestPreview()
			}
		case "enter":
			if len(m.IDs) > 0 {
				m.Selected = m.IDs[m.Cursor]
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	case layoutMsg:
		resp := msg.resp
		m.preview = &resp
		return m, m.waitForLayout()
	}
	return m, nil
}

// requestPreview submits a layout for the person under the cursor. The
// host keeps only the newest response, so rapid moves never pile up.
func (m PersonListModel) requestPreview() tea.Cmd {
	if m.host == nil || len(m.IDs) == 0 {
		return nil
	}
	req := m.request
	req.FocusID = m.IDs[m.Cursor]
	host := m.host
	return func() tea.Msg {
		_, _ = host.Submit(req)
		return nil
	}
}

// waitForLayout blocks for the next current response.
func (m PersonListModel) waitForLayout() tea.Cmd {
	if m.host == nil {
		return nil
	}
	host := m.host
	return func() tea.Msg {
		resp, err := host.Next(context.Background())
		if err != nil {
			return nil
		}
		return layoutMsg{resp: resp}
	}
}

func (m PersonListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Focus Person"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.IDs))
	for i := m.Offset; i < end; i++ {
		p := m.People[m.IDs[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-28s %s", cursor, p.DisplayName(), listDimStyle.Render(lifespan(p)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("─", 40)))
	b.WriteString("\n")
	b.WriteString(m.previewLine())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.IDs))))

	return b.String()
}

// previewLine summarises the latest layout for the highlighted person.
func (m PersonListModel) previewLine() string {
	if m.preview == nil {
		return listDimStyle.Render("  computing…")
	}
	if m.preview.Failed() {
		return styleIconError.Render(iconError) + " " + m.preview.Error
	}
	return "  " + summarize(m.preview.Result)
}

// summarize describes a layout in one line, e.g. "12 nodes · 3 ancestors".
func summarize(res layout.Result) string {
	if res.IsEmpty() {
		return StyleDim.Render("empty chart")
	}
	roles := map[layout.Role]int{}
	for _, n := range res.Nodes {
		roles[n.Role]++
	}
	parts := []string{fmt.Sprintf("%d nodes", len(res.Nodes))}
	if len(res.FanArcs) > 0 {
		parts = append(parts, fmt.Sprintf("%d arcs", len(res.FanArcs)))
	}
	for _, role := range []layout.Role{layout.RoleAncestor, layout.RoleDescendant, layout.RoleSpouse} {
		if n := roles[role]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %ss", n, role))
		}
	}
	if res.Truncated {
		parts = append(parts, StyleWarning.Render("truncated"))
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

// lifespan formats birth and death years, e.g. "1901–1980".
func lifespan(p *family.Person) string {
	birth, death := p.BirthYear(), p.DeathYear()
	switch {
	case family.KnownYear(birth) && family.KnownYear(death):
		return fmt.Sprintf("%d–%d", birth, death)
	case family.KnownYear(birth):
		return fmt.Sprintf("b. %d", birth)
	case family.KnownYear(death):
		return fmt.Sprintf("d. %d", death)
	}
	return ""
}

package controller

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// pagerChrome is the number of lines taken by the title and footer.
const pagerChrome = 4

var (
	pagerTitleStyle  = lipgloss.NewStyle().Bold(true)
	pagerFooterStyle = lipgloss.NewStyle().Faint(true)
)

// TUI pages long reports using Bubble Tea.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Page writes content as is when it fits on the terminal and opens a
// scrollable view otherwise.
func (p *TUI) Page(title, content string) error {
	model := newPagerModel(title, content)

	// Get initial terminal size
	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model = model.resize(width, height)
		}
	}

	// If the report is small, just print and exit
	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, content)
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// pagerModel is the Bubble Tea model behind TUI.Page.
type pagerModel struct {
	title    string
	lines    int
	viewport viewport.Model
	height   int
	width    int
	quitting bool
}

func newPagerModel(title, content string) pagerModel {
	vp := viewport.New(0, 0)
	vp.SetContent(strings.TrimSuffix(content, "\n"))

	return pagerModel{
		title:    title,
		lines:    strings.Count(content, "\n"),
		viewport: vp,
	}
}

func (pm pagerModel) resize(width, height int) pagerModel {
	pm.width = width
	pm.height = height
	pm.viewport.Width = width
	pm.viewport.Height = pm.itemsPerPage()

	return pm
}

// itemsPerPage calculates how many lines fit on screen.
func (pm pagerModel) itemsPerPage() int {
	if pm.height == 0 {
		return 10
	}

	available := pm.height - pagerChrome
	if available < 1 {
		return 1
	}

	return available
}

// needsPagination returns true if the report is too large to fit on screen.
func (pm pagerModel) needsPagination() bool {
	return pm.height > 0 && pm.lines > pm.itemsPerPage()
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return pm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit

		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil

		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	}

	// Line and page scrolling use the viewport key map.
	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(pagerTitleStyle.Render(pm.title))
	b.WriteString("\n\n")
	b.WriteString(pm.viewport.View())
	b.WriteString("\n\n")

	first := pm.viewport.YOffset + 1
	last := min(pm.viewport.YOffset+pm.viewport.Height, pm.lines)

	b.WriteString(pagerFooterStyle.Render(fmt.Sprintf(
		"Lines %d-%d of %d | ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit", first, last, pm.lines)))

	return b.String()
}

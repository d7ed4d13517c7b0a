package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/xyzprep/internal/report"
	"github.com/san-kum/xyzprep/internal/xyz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const previewAtoms = 8

type model struct {
	traj     *xyz.Trajectory
	cursor   int
	energies []float64

	width  int
	height int
}

// NewBrowser returns a bubbletea model that pages through the frames of traj.
func NewBrowser(traj *xyz.Trajectory) tea.Model {
	m := model{traj: traj, width: 80, height: 24}
	if traj.HasEnergies() {
		m.energies = traj.Energies()
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	last := m.traj.Len() - 1
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "l", "n":
		if m.cursor < last {
			m.cursor++
		}
	case "left", "h", "p":
		if m.cursor > 0 {
			m.cursor--
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if last >= 0 {
			m.cursor = last
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(report.Title.Render(m.traj.Source))
	b.WriteString("\n\n")

	if m.traj.Len() == 0 {
		b.WriteString(dim.Render("no timesteps"))
		b.WriteString("\n\n" + dim.Render("q quit"))
		return b.String()
	}

	f := &m.traj.Frames[m.cursor]
	atoms, forces := f.Observed()
	pairs := []string{
		"timestep", fmt.Sprintf("%d / %d", m.cursor+1, m.traj.Len()),
		"declared", fmt.Sprintf("%d", f.Natoms),
		"read", fmt.Sprintf("%d atoms, %d forces", atoms, forces),
	}
	if f.HasEnergy {
		pairs = append(pairs, "energy", fmt.Sprintf("%.6f", f.Energy))
	}
	if f.HasBox {
		pairs = append(pairs, "box", formatBox(f.Box))
	}
	b.WriteString(report.Panel.Render(report.Metric(pairs...)))
	b.WriteString("\n")

	if atoms != f.Natoms || forces != f.Natoms {
		b.WriteString(yellow.Render("declared count does not match atom lines"))
		b.WriteString("\n")
	}

	b.WriteString(cyan.Render("        x          y          z          fx         fy         fz"))
	b.WriteString("\n")
	for i := 0; i < atoms && i < previewAtoms; i++ {
		c, fr := f.Coords[i], f.Forces[i]
		fmt.Fprintf(&b, "%10.4f %10.4f %10.4f %10.4f %10.4f %10.4f\n", c[0], c[1], c[2], fr[0], fr[1], fr[2])
	}
	if atoms > previewAtoms {
		b.WriteString(dim.Render(fmt.Sprintf("... %d more", atoms-previewAtoms)))
		b.WriteString("\n")
	}

	width := m.width - 12
	if width < 20 {
		width = 20
	}
	if g := report.EnergyGraph(m.energies, width, 8, "energy per timestep"); g != "" {
		b.WriteString("\n" + g + "\n")
	}

	b.WriteString("\n" + dim.Render("←/→ step  g/G first/last  q quit"))
	return b.String()
}

func formatBox(box xyz.Box) string {
	rows := make([]string, 3)
	for i := range rows {
		rows[i] = fmt.Sprintf("%.4f %.4f %.4f", box[i*3], box[i*3+1], box[i*3+2])
	}
	return strings.Join(rows, " | ")
}

// Run opens the browser full-screen and blocks until the user quits.
func Run(traj *xyz.Trajectory) error {
	_, err := tea.NewProgram(NewBrowser(traj), tea.WithAltScreen()).Run()
	return err
}

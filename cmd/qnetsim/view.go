package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"qnetsim/circuit"
	"qnetsim/sim"
)

var viewCommand = &cli.Command{
	Name:      "view",
	Usage:     "step through a circuit column by column interactively",
	ArgsUsage: "<file.qasm>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.Exit("view: expected exactly one QASM file", 2)
		}
		c, err := loadCircuit(ctx.Args().First())
		if err != nil {
			return err
		}
		m := newViewModel(ctx.Args().First(), c)
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

// viewModel is the read-only circuit viewer: the cursor selects how many
// columns of the circuit have been applied, and the probability bars show
// the state after that prefix.
type viewModel struct {
	path string
	circ *circuit.Circuit
	s    *sim.Simulator

	col    int // number of columns applied, 0..Columns
	vp     viewport.Model
	ready  bool
	width  int
	height int
}

func newViewModel(path string, c *circuit.Circuit) *viewModel {
	return &viewModel{
		path: path,
		circ: c,
		s:    sim.New(sim.WithUnitary(false)),
		col:  c.Columns(),
	}
}

func (m *viewModel) Init() tea.Cmd { return nil }

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			if m.col > 0 {
				m.col--
			}
		case "right", "l":
			if m.col < m.circ.Columns() {
				m.col++
			}
		case "home", "g":
			m.col = 0
		case "end", "G":
			m.col = m.circ.Columns()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.vp = viewport.New(msg.Width, max(msg.Height-m.circ.NumQubits()-6, 3))
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = max(msg.Height-m.circ.NumQubits()-6, 3)
		}
	}
	m.refresh()
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(nil)
	return m, cmd
}

func (m *viewModel) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(renderCircuit(m.circ, m.col-1))
}

func (m *viewModel) View() string {
	if !m.ready {
		return "loading..."
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("qnetsim view - %s", m.path)))
	fmt.Fprintf(&sb, "  column %d/%d\n", m.col, m.circ.Columns())
	sb.WriteString(m.vp.View())
	sb.WriteString("\n")

	res, err := m.s.RunPrefix(m.circ, m.col)
	if err != nil {
		sb.WriteString(err.Error())
	} else {
		sb.WriteString(renderMarginals(res))
	}

	if m.col > 0 {
		if g := firstGateInColumn(m.circ, m.col - 1); g != nil {
			sb.WriteString(dimStyle.Render(describeGate(g)))
			sb.WriteString("\n")
		}
	}
	sb.WriteString(dimStyle.Render("←/→ step · g/G start/end · q quit"))
	return sb.String()
}

func firstGateInColumn(c *circuit.Circuit, col int) *circuit.Gate {
	for wire := 0; wire < c.NumQubits(); wire++ {
		if g := c.GateAt(wire, col); g != nil {
			return g
		}
	}
	return nil
}

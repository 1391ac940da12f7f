package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qnetsim/circuit"
	"qnetsim/gate"
	"qnetsim/qasm"
	"qnetsim/qmath"
	"qnetsim/sim"
)

// Lipgloss styles shared by the CLI and the interactive viewer.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	circuitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	cursorColStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a"))
)

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len([]rune(s)) >= width {
		return s
	}
	total := width - len([]rune(s))
	left := total / 2
	right := total - left
	return strings.Repeat("─", left) + s + strings.Repeat("─", right)
}

// gateDisplayName returns a short display name for a gate.
func gateDisplayName(name string) string {
	switch name {
	case gate.Measure:
		return "M"
	default:
		return strings.ToUpper(name)
	}
}

// columnWidth returns the cell width needed for the widest gate in a column.
func columnWidth(c *circuit.Circuit, col int) int {
	w := 3
	for wire := 0; wire < c.NumQubits(); wire++ {
		g := c.GateAt(wire, col)
		if g == nil || g.Name == gate.Barrier {
			continue
		}
		if cw := len(gateDisplayName(g.Name)) + 2; cw > w {
			w = cw
		}
	}
	return w
}

// cellText renders the cell at (wire, col) as a bare string of the given
// width, wire symbols included.
func cellText(c *circuit.Circuit, wire, col, width int) string {
	g := c.GateAt(wire, col)
	if g == nil {
		// Pass-through: draw a vertical link when a multi-wire gate in
		// this column spans across this wire.
		for w := 0; w < c.NumQubits(); w++ {
			other := c.GateAt(w, col)
			if other == nil || len(other.Wires) < 2 {
				continue
			}
			lo, hi := spanOf(other)
			if wire > lo && wire < hi {
				return padCenter("│", width)
			}
		}
		return strings.Repeat("─", width)
	}

	switch g.Name {
	case gate.Barrier:
		return padCenter("░", width)
	case gate.Measure:
		return padCenter("[M]", width)
	}

	if len(g.Wires) == 1 {
		return padCenter("["+gateDisplayName(g.Name)+"]", width)
	}

	// Multi-wire gates: controls first in Wires, target(s) last.
	target := g.Wires[len(g.Wires)-1]
	switch g.Name {
	case "swap":
		return padCenter("×", width)
	case "cswap":
		if wire == g.Wires[0] {
			return padCenter("●", width)
		}
		return padCenter("×", width)
	case "cz":
		return padCenter("●", width)
	case "cx", "ccx":
		if wire == target {
			return padCenter("⊕", width)
		}
		return padCenter("●", width)
	default: // cy, ch, cp, crx, cry, crz
		if wire == target {
			return padCenter("["+gateDisplayName(g.Name)+"]", width)
		}
		return padCenter("●", width)
	}
}

// spanOf returns the lowest and highest wire a gate occupies.
func spanOf(g *circuit.Gate) (int, int) {
	lo, hi := g.Wires[0], g.Wires[0]
	for _, w := range g.Wires {
		if w < lo {
			lo = w
		}
		if w > hi {
			hi = w
		}
	}
	return lo, hi
}

// renderCircuit draws the circuit grid, one row per wire. cursorCol
// highlights a column (-1 for none).
func renderCircuit(c *circuit.Circuit, cursorCol int) string {
	qname := c.QuantumRegister().Name()
	cols := c.Columns()
	widths := make([]int, cols)
	for col := range widths {
		widths[col] = columnWidth(c, col)
	}

	var rows []string
	for wire := 0; wire < c.NumQubits(); wire++ {
		var sb strings.Builder
		sb.WriteString(qubitLabelStyle.Render(fmt.Sprintf("%5s ", fmt.Sprintf("%s[%d]", qname, wire))))
		for col := 0; col < cols; col++ {
			cell := cellText(c, wire, col, widths[col])
			switch {
			case col == cursorCol:
				sb.WriteString(cursorColStyle.Render(cell))
			case c.GateAt(wire, col) != nil:
				sb.WriteString(gateStyle.Render(cell))
			default:
				sb.WriteString(dimStyle.Render(cell))
			}
			sb.WriteString(dimStyle.Render("─"))
		}
		rows = append(rows, sb.String())
	}
	return circuitStyle.Render(strings.Join(rows, "\n"))
}

// renderProbabilities prints every basis state with non-negligible
// probability, with a proportional bar.
func renderProbabilities(res *sim.Result) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Probabilities"))
	sb.WriteString("\n")
	for i, p := range res.Probabilities {
		if p < 1e-9 {
			continue
		}
		bar := strings.Repeat("▇", int(p*30+0.5))
		fmt.Fprintf(&sb, "|%s⟩ %7.4f %s\n", res.Label(i), p, barStyle.Render(bar))
	}
	return sb.String()
}

// renderMarginals prints one per-qubit probability-of-one bar per wire.
func renderMarginals(res *sim.Result) string {
	var sb strings.Builder
	for q := 0; q < res.NumQubits; q++ {
		p := res.MarginalProbability(q)
		filled := int(p*20 + 0.5)
		bar := barStyle.Render(strings.Repeat("▇", filled)) + dimStyle.Render(strings.Repeat("░", 20-filled))
		fmt.Fprintf(&sb, "q[%d] %s %5.1f%%\n", q, bar, p*100)
	}
	return sb.String()
}

// renderMeasurements prints one sampled outcome.
func renderMeasurements(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return titleStyle.Render("Measured") + " " + formatOutcome(keys, m)
}

// formatOutcome renders measurement bits in sorted key order.
func formatOutcome(keys []string, m map[string]int) string {
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

// renderCounts prints aggregated outcomes over repeated sampling.
func renderCounts(counts map[string]int, shots int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d shots)\n", titleStyle.Render("Counts"), shots)
	for _, k := range keys {
		n := counts[k]
		bar := strings.Repeat("▇", n*30/shots)
		fmt.Fprintf(&sb, "%s %6d %s\n", k, n, barStyle.Render(bar))
	}
	return sb.String()
}

// renderUnitary prints the full circuit unitary with pi-aware phases
// suppressed to short fixed-point entries.
func renderUnitary(u qmath.Matrix) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Unitary"))
	sb.WriteString("\n")
	for _, row := range u {
		parts := make([]string, len(row))
		for j, v := range row {
			parts[j] = formatAmplitude(v)
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatAmplitude renders one complex entry compactly.
func formatAmplitude(v qmath.Complex) string {
	re, im := real(v), imag(v)
	switch {
	case im == 0:
		return fmt.Sprintf("%7.3f       ", re)
	case re == 0:
		return fmt.Sprintf("%7.3fi      ", im)
	default:
		return fmt.Sprintf("%6.3f%+.3fi", re, im)
	}
}

// describeGate summarizes a gate for the viewer status line.
func describeGate(g *circuit.Gate) string {
	if g == nil {
		return ""
	}
	s := gateDisplayName(g.Name)
	if len(g.Params) > 0 {
		def, err := gate.Lookup(g.Name)
		if err == nil {
			args := make([]string, len(def.Params))
			for i, p := range def.Params {
				args[i] = qasm.FormatParam(g.Params[p])
			}
			s += "(" + strings.Join(args, ", ") + ")"
		}
	}
	wires := make([]string, len(g.Wires))
	for i, w := range g.Wires {
		wires[i] = fmt.Sprintf("q[%d]", w)
	}
	return s + " " + strings.Join(wires, ", ")
}

// Package qasm is the textual interchange collaborator: it emits a
// deterministic OpenQASM 3 program from a circuit's ordered gate list and
// reconstructs an equivalent circuit from such text.
package qasm

import (
	"fmt"
	"strings"

	"qnetsim/circuit"
	"qnetsim/gate"
)

// Emit renders the circuit as an OpenQASM 3 program: version pragma,
// register declarations, then one statement per gate in column-then-wire
// order. Parameters use pi notation where possible.
func Emit(c *circuit.Circuit) string {
	qname := c.QuantumRegister().Name()
	var sb strings.Builder
	sb.WriteString("OPENQASM 3.0;\n\n")
	fmt.Fprintf(&sb, "qubit[%d] %s;\n", c.NumQubits(), qname)
	creg := c.ClassicalRegister()
	if creg != nil {
		fmt.Fprintf(&sb, "bit[%d] %s;\n", creg.Size(), creg.Name())
	}
	sb.WriteString("\n")

	for _, op := range c.Ops() {
		g := op.Gate
		switch g.Name {
		case gate.Measure:
			fmt.Fprintf(&sb, "measure %s[%d] -> %s;\n", qname, g.Wires[0], creg.Bit(g.Cbit))
		case gate.Barrier:
			fmt.Fprintf(&sb, "barrier %s;\n", operandList(qname, g.Wires))
		default:
			sb.WriteString(g.Name)
			if def, err := gate.Lookup(g.Name); err == nil && len(def.Params) > 0 {
				args := make([]string, len(def.Params))
				for i, p := range def.Params {
					args[i] = FormatParam(g.Params[p])
				}
				fmt.Fprintf(&sb, "(%s)", strings.Join(args, ", "))
			}
			fmt.Fprintf(&sb, " %s;\n", operandList(qname, g.Wires))
		}
	}

	return sb.String()
}

func operandList(qname string, wires []int) string {
	parts := make([]string, len(wires))
	for i, w := range wires {
		parts[i] = fmt.Sprintf("%s[%d]", qname, w)
	}
	return strings.Join(parts, ", ")
}

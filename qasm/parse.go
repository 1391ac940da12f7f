package qasm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qnetsim/circuit"
	"qnetsim/gate"
)

// Pre-compiled regexps for QASM parsing. Both OpenQASM 3 declarations and
// the legacy qreg/creg spelling are accepted.
var (
	qubitDeclRegex = regexp.MustCompile(`^qubit\[(\d+)\]\s+(\w+)\s*;?$`)
	bitDeclRegex   = regexp.MustCompile(`^bit\[(\d+)\]\s+(\w+)\s*;?$`)
	qregRegex      = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\]\s*;?$`)
	cregRegex      = regexp.MustCompile(`^creg\s+(\w+)\[(\d+)\]\s*;?$`)
	measureRegex   = regexp.MustCompile(`^measure\s+\w+\[(\d+)\]\s*->\s*\w+\[(\d+)\]\s*;?$`)
	barrierRegex   = regexp.MustCompile(`^barrier\b\s*(.*?)\s*;?$`)
	gateRegex      = regexp.MustCompile(`^(\w+)\s*(?:\(\s*(.*?)\s*\))?\s+(.+?)\s*;?$`)
	operandRegex   = regexp.MustCompile(`^\w+\[(\d+)\]$`)
)

// Parse reconstructs a circuit from an OpenQASM program. Register
// declarations must precede gate statements; each statement appends one
// gate. Unknown gate names and unparseable parameter expressions are hard
// errors.
func Parse(text string) (*circuit.Circuit, error) {
	var c *circuit.Circuit
	var qname, cname string
	qubits, clbits := 0, 0

	build := func() error {
		if c != nil {
			return nil
		}
		if qubits == 0 {
			return fmt.Errorf("%w: no qubit declaration before first statement", circuit.ErrRegisterSizeMismatch)
		}
		qr, err := circuit.NewRegister(qubits, qname)
		if err != nil {
			return err
		}
		var cr *circuit.Register
		if clbits > 0 {
			if cr, err = circuit.NewRegister(clbits, cname); err != nil {
				return err
			}
		}
		c, err = circuit.NewWithRegisters(qr, cr)
		return err
	}

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}

		if m := qubitDeclRegex.FindStringSubmatch(line); m != nil {
			qubits, _ = strconv.Atoi(m[1])
			qname = m[2]
			continue
		}
		if m := qregRegex.FindStringSubmatch(line); m != nil {
			qname = m[1]
			qubits, _ = strconv.Atoi(m[2])
			continue
		}
		if m := bitDeclRegex.FindStringSubmatch(line); m != nil {
			clbits, _ = strconv.Atoi(m[1])
			cname = m[2]
			continue
		}
		if m := cregRegex.FindStringSubmatch(line); m != nil {
			cname = m[1]
			clbits, _ = strconv.Atoi(m[2])
			continue
		}

		if err := build(); err != nil {
			return nil, err
		}

		if m := measureRegex.FindStringSubmatch(line); m != nil {
			q, _ := strconv.Atoi(m[1])
			cb, _ := strconv.Atoi(m[2])
			if _, err := c.Place(gate.Measure, circuit.Append, []int{q}, &circuit.PlaceOptions{Cbit: cb}); err != nil {
				return nil, fmt.Errorf("qasm: line %d: %w", lineNo+1, err)
			}
			continue
		}

		if m := barrierRegex.FindStringSubmatch(line); m != nil {
			wires, err := parseOperands(m[1])
			if err != nil {
				return nil, fmt.Errorf("qasm: line %d: %w", lineNo+1, err)
			}
			if len(wires) == 0 {
				for q := 0; q < c.NumQubits(); q++ {
					wires = append(wires, q)
				}
			}
			if _, err := c.Place(gate.Barrier, circuit.Append, wires, nil); err != nil {
				return nil, fmt.Errorf("qasm: line %d: %w", lineNo+1, err)
			}
			continue
		}

		m := gateRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("qasm: line %d: unrecognized statement %q", lineNo+1, line)
		}
		name, paramText, operandText := m[1], m[2], m[3]

		def, err := gate.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("qasm: line %d: %w", lineNo+1, err)
		}
		wires, err := parseOperands(operandText)
		if err != nil {
			return nil, fmt.Errorf("qasm: line %d: %w", lineNo+1, err)
		}

		var values gate.Values
		if len(def.Params) > 0 {
			args := splitArgs(paramText)
			if len(args) != len(def.Params) {
				return nil, fmt.Errorf("qasm: line %d: %q expects %d parameters, got %d",
					lineNo+1, def.Name, len(def.Params), len(args))
			}
			values = make(gate.Values, len(args))
			for i, a := range args {
				v, err := ParseParam(a)
				if err != nil {
					return nil, fmt.Errorf("qasm: line %d: %w", lineNo+1, err)
				}
				values[def.Params[i]] = v
			}
		} else if paramText != "" {
			return nil, fmt.Errorf("qasm: line %d: %q takes no parameters", lineNo+1, def.Name)
		}

		if _, err := c.Place(def.Name, circuit.Append, wires, &circuit.PlaceOptions{Params: values, Cbit: -1}); err != nil {
			return nil, fmt.Errorf("qasm: line %d: %w", lineNo+1, err)
		}
	}

	if err := build(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseOperands parses a comma-separated list of "reg[i]" operands into
// wire indices. An empty list is allowed (bare barrier).
func parseOperands(text string) ([]int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var wires []int
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		m := operandRegex.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("qasm: bad operand %q", part)
		}
		w, _ := strconv.Atoi(m[1])
		wires = append(wires, w)
	}
	return wires, nil
}

// splitArgs splits a parameter list on commas. The expression grammar has
// no nested parentheses, so plain splitting suffices.
func splitArgs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

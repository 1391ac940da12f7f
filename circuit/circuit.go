// Package circuit implements the sparse circuit representation: a register
// pair plus a qubit x column grid of shared gate records. Builder methods
// are chainable; all argument validation happens at placement time, never
// at simulation time.
package circuit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"qnetsim/gate"
)

// Validation failures, raised synchronously at the offending call.
var (
	ErrQubitIndexOutOfRange         = errors.New("circuit: qubit index out of range")
	ErrDuplicateQubit               = errors.New("circuit: duplicate qubit in gate")
	ErrWireCountMismatch            = errors.New("circuit: wrong number of wires for gate")
	ErrClassicalRegisterUnavailable = errors.New("circuit: classical register unavailable")
	ErrColumnOccupied               = errors.New("circuit: grid cell already occupied")
)

// Append is the column marker that places a gate after the circuit's
// global frontier (the rightmost occupied column on any wire).
const Append = -1

// Gate is one placed operation. A single record is shared by every grid
// cell it occupies; Wires holds the touched wire indices explicitly, in
// placement order (control wires before target wires).
type Gate struct {
	ID     uuid.UUID
	Name   string // canonical gate name
	Wires  []int
	Params gate.Values // nil for parameterless gates
	Cbit   int         // classical target for measure, -1 otherwise
}

// Op is a gate record together with the column it occupies.
type Op struct {
	Gate   *Gate
	Column int
}

// Circuit owns one quantum register, at most one classical register, and a
// grid of gate references. Wire count is fixed at construction; the column
// count grows monotonically as gates are appended.
type Circuit struct {
	qreg *Register
	creg *Register // nil when the circuit has no classical bits
	grid [][]*Gate // grid[wire][column], nil cells are empty
	cols int
	err  error // first builder-method failure, latched
	memo any   // derived state (e.g. a prior evolution), cleared on write
}

// New creates a circuit with the given qubit and classical bit counts,
// using the conventional register names "q" and "c". A clbits of zero
// creates a circuit without a classical register.
func New(qubits, clbits int) (*Circuit, error) {
	qr, err := NewRegister(qubits, "q")
	if err != nil {
		return nil, err
	}
	var cr *Register
	if clbits > 0 {
		if cr, err = NewRegister(clbits, "c"); err != nil {
			return nil, err
		}
	}
	return NewWithRegisters(qr, cr)
}

// NewWithRegisters creates a circuit over existing registers. cr may be nil.
func NewWithRegisters(qr, cr *Register) (*Circuit, error) {
	if qr == nil || qr.Size() == 0 {
		return nil, fmt.Errorf("%w: quantum register required", ErrRegisterSizeMismatch)
	}
	return &Circuit{
		qreg: qr,
		creg: cr,
		grid: make([][]*Gate, qr.Size()),
	}, nil
}

// NumQubits returns the number of wires in the circuit.
func (c *Circuit) NumQubits() int { return c.qreg.Size() }

// NumClbits returns the number of classical bits, 0 without a classical register.
func (c *Circuit) NumClbits() int {
	if c.creg == nil {
		return 0
	}
	return c.creg.Size()
}

// QuantumRegister returns the circuit's quantum register.
func (c *Circuit) QuantumRegister() *Register { return c.qreg }

// ClassicalRegister returns the circuit's classical register, or nil.
func (c *Circuit) ClassicalRegister() *Register { return c.creg }

// Columns returns the current column count of the grid.
func (c *Circuit) Columns() int { return c.cols }

// GateAt returns the gate record occupying (wire, column), or nil.
func (c *Circuit) GateAt(wire, column int) *Gate {
	if wire < 0 || wire >= len(c.grid) || column < 0 || column >= len(c.grid[wire]) {
		return nil
	}
	return c.grid[wire][column]
}

// Err returns the first error a chained builder method hit, if any.
func (c *Circuit) Err() error { return c.err }

// Memo returns the derived-state snapshot attached to the circuit, or nil.
// Any structural write discards it.
func (c *Circuit) Memo() any { return c.memo }

// SetMemo attaches a derived-state snapshot (e.g. a finished evolution).
func (c *Circuit) SetMemo(v any) { c.memo = v }

// frontier returns the rightmost column holding a gate on any wire, or -1
// for an empty circuit. The scan runs from the current rightmost column
// backward so trailing all-empty columns are skipped.
func (c *Circuit) frontier() int {
	for col := c.cols - 1; col >= 0; col-- {
		for wire := range c.grid {
			if col < len(c.grid[wire]) && c.grid[wire][col] != nil {
				return col
			}
		}
	}
	return -1
}

// PlaceOptions carries the optional arguments of Place.
type PlaceOptions struct {
	Params gate.Values
	Cbit   int // classical target for measure
}

// Place writes one gate record into the grid. column is either an explicit
// column index or Append, which targets the column after the circuit's
// global frontier. The same record is written into every wire the gate
// touches. Placement validates everything the simulator will later rely
// on: gate name, wire ranges, duplicates, arity, required parameters, the
// classical target of a measurement, and that every target cell is free.
func (c *Circuit) Place(name string, column int, wires []int, opts *PlaceOptions) (*Gate, error) {
	def, err := gate.Lookup(name)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &PlaceOptions{Cbit: -1}
	}

	if def.Arity >= 0 && len(wires) != def.Arity {
		return nil, fmt.Errorf("%w: %q takes %d, got %d", ErrWireCountMismatch, def.Name, def.Arity, len(wires))
	}
	if len(wires) == 0 {
		return nil, fmt.Errorf("%w: %q placed on no wires", ErrWireCountMismatch, def.Name)
	}
	seen := make(map[int]bool, len(wires))
	for _, w := range wires {
		if w < 0 || w >= c.NumQubits() {
			return nil, fmt.Errorf("%w: wire %d of %d-qubit circuit", ErrQubitIndexOutOfRange, w, c.NumQubits())
		}
		if seen[w] {
			return nil, fmt.Errorf("%w: wire %d", ErrDuplicateQubit, w)
		}
		seen[w] = true
	}
	for _, p := range def.Params {
		if _, ok := opts.Params[p]; !ok {
			return nil, fmt.Errorf("%w: %q requires %q", gate.ErrMissingParameter, def.Name, p)
		}
	}

	cbit := -1
	if def.Name == gate.Measure {
		if c.creg == nil {
			return nil, fmt.Errorf("%w: circuit has no classical register", ErrClassicalRegisterUnavailable)
		}
		if opts.Cbit < 0 || opts.Cbit >= c.creg.Size() {
			return nil, fmt.Errorf("%w: classical bit %d of %d", ErrClassicalRegisterUnavailable, opts.Cbit, c.creg.Size())
		}
		cbit = opts.Cbit
	}

	if column == Append {
		column = c.frontier() + 1
	}
	if column < 0 {
		return nil, fmt.Errorf("circuit: invalid column %d", column)
	}
	// Overwriting one cell of a multi-wire record would leave its other
	// cells pointing at a record whose Wires no longer match the grid, so
	// occupied target cells reject the placement outright.
	for _, w := range wires {
		if c.GateAt(w, column) != nil {
			return nil, fmt.Errorf("%w: wire %d column %d", ErrColumnOccupied, w, column)
		}
	}

	g := &Gate{
		ID:    uuid.New(),
		Name:  def.Name,
		Wires: append([]int(nil), wires...),
		Cbit:  cbit,
	}
	if len(def.Params) > 0 {
		g.Params = make(gate.Values, len(def.Params))
		for _, p := range def.Params {
			g.Params[p] = opts.Params[p]
		}
	}

	if column >= c.cols {
		c.cols = column + 1
	}
	for _, w := range g.Wires {
		for len(c.grid[w]) <= column {
			c.grid[w] = append(c.grid[w], nil)
		}
		c.grid[w][column] = g
	}
	c.memo = nil // the circuit changed structurally
	return g, nil
}

// apply runs Place with the Append marker and latches the first failure so
// builder chains stay usable after an error.
func (c *Circuit) apply(name string, params gate.Values, wires ...int) *Circuit {
	if c.err != nil {
		return c
	}
	if _, err := c.Place(name, Append, wires, &PlaceOptions{Params: params, Cbit: -1}); err != nil {
		c.err = err
	}
	return c
}

// ID places an identity gate on qubit q.
func (c *Circuit) ID(q int) *Circuit { return c.apply("id", nil, q) }

// X places a Pauli X gate on qubit q.
func (c *Circuit) X(q int) *Circuit { return c.apply("x", nil, q) }

// Y places a Pauli Y gate on qubit q.
func (c *Circuit) Y(q int) *Circuit { return c.apply("y", nil, q) }

// Z places a Pauli Z gate on qubit q.
func (c *Circuit) Z(q int) *Circuit { return c.apply("z", nil, q) }

// H places a Hadamard gate on qubit q.
func (c *Circuit) H(q int) *Circuit { return c.apply("h", nil, q) }

// S places an S gate on qubit q.
func (c *Circuit) S(q int) *Circuit { return c.apply("s", nil, q) }

// Sdg places the adjoint of S on qubit q.
func (c *Circuit) Sdg(q int) *Circuit { return c.apply("sdg", nil, q) }

// T places a T gate on qubit q.
func (c *Circuit) T(q int) *Circuit { return c.apply("t", nil, q) }

// Tdg places the adjoint of T on qubit q.
func (c *Circuit) Tdg(q int) *Circuit { return c.apply("tdg", nil, q) }

// SX places a square-root-of-X gate on qubit q.
func (c *Circuit) SX(q int) *Circuit { return c.apply("sx", nil, q) }

// P places a phase gate with angle lambda on qubit q.
func (c *Circuit) P(lambda float64, q int) *Circuit {
	return c.apply("p", gate.Values{"lambda": lambda}, q)
}

// RX places an X rotation by theta on qubit q.
func (c *Circuit) RX(theta float64, q int) *Circuit {
	return c.apply("rx", gate.Values{"theta": theta}, q)
}

// RY places a Y rotation by theta on qubit q.
func (c *Circuit) RY(theta float64, q int) *Circuit {
	return c.apply("ry", gate.Values{"theta": theta}, q)
}

// RZ places a Z rotation by theta on qubit q.
func (c *Circuit) RZ(theta float64, q int) *Circuit {
	return c.apply("rz", gate.Values{"theta": theta}, q)
}

// U places the generic single-qubit rotation U(theta, phi, lambda) on qubit q.
func (c *Circuit) U(theta, phi, lambda float64, q int) *Circuit {
	return c.apply("u", gate.Values{"theta": theta, "phi": phi, "lambda": lambda}, q)
}

// CX places a controlled X with the given control and target.
func (c *Circuit) CX(control, target int) *Circuit { return c.apply("cx", nil, control, target) }

// CY places a controlled Y with the given control and target.
func (c *Circuit) CY(control, target int) *Circuit { return c.apply("cy", nil, control, target) }

// CZ places a controlled Z with the given control and target.
func (c *Circuit) CZ(control, target int) *Circuit { return c.apply("cz", nil, control, target) }

// CH places a controlled Hadamard with the given control and target.
func (c *Circuit) CH(control, target int) *Circuit { return c.apply("ch", nil, control, target) }

// CP places a controlled phase gate with angle lambda.
func (c *Circuit) CP(lambda float64, control, target int) *Circuit {
	return c.apply("cp", gate.Values{"lambda": lambda}, control, target)
}

// CRX places a controlled X rotation by theta.
func (c *Circuit) CRX(theta float64, control, target int) *Circuit {
	return c.apply("crx", gate.Values{"theta": theta}, control, target)
}

// CRY places a controlled Y rotation by theta.
func (c *Circuit) CRY(theta float64, control, target int) *Circuit {
	return c.apply("cry", gate.Values{"theta": theta}, control, target)
}

// CRZ places a controlled Z rotation by theta.
func (c *Circuit) CRZ(theta float64, control, target int) *Circuit {
	return c.apply("crz", gate.Values{"theta": theta}, control, target)
}

// SWAP places a swap gate on qubits a and b.
func (c *Circuit) SWAP(a, b int) *Circuit { return c.apply("swap", nil, a, b) }

// CCX places a Toffoli gate with two controls and one target.
func (c *Circuit) CCX(control1, control2, target int) *Circuit {
	return c.apply("ccx", nil, control1, control2, target)
}

// CSWAP places a Fredkin gate: swap a and b when control is set.
func (c *Circuit) CSWAP(control, a, b int) *Circuit {
	return c.apply("cswap", nil, control, a, b)
}

// Measure places a measurement of qubit q into classical bit cb.
func (c *Circuit) Measure(q, cb int) *Circuit {
	if c.err != nil {
		return c
	}
	if _, err := c.Place(gate.Measure, Append, []int{q}, &PlaceOptions{Cbit: cb}); err != nil {
		c.err = err
	}
	return c
}

// MeasureAll measures every qubit into the classical bit of the same
// index, in a single column. The classical register must be at least as
// large as the quantum register.
func (c *Circuit) MeasureAll() *Circuit {
	if c.err != nil {
		return c
	}
	if c.creg == nil || c.creg.Size() < c.NumQubits() {
		c.err = fmt.Errorf("%w: need %d classical bits, have %d", ErrClassicalRegisterUnavailable, c.NumQubits(), c.NumClbits())
		return c
	}
	col := c.frontier() + 1
	for q := 0; q < c.NumQubits(); q++ {
		if _, err := c.Place(gate.Measure, col, []int{q}, &PlaceOptions{Cbit: q}); err != nil {
			c.err = err
			return c
		}
	}
	return c
}

// Barrier places a barrier across the given qubits, or across every qubit
// when called with none.
func (c *Circuit) Barrier(qubits ...int) *Circuit {
	if len(qubits) == 0 {
		qubits = make([]int, c.NumQubits())
		for i := range qubits {
			qubits[i] = i
		}
	}
	return c.apply(gate.Barrier, nil, qubits...)
}

// Ops returns every gate record exactly once, in column-then-wire order.
// This is the ordered view the text transpiler and the network composer
// consume.
func (c *Circuit) Ops() []Op {
	var ops []Op
	for col := 0; col < c.cols; col++ {
		seen := make(map[*Gate]bool)
		for wire := range c.grid {
			g := c.GateAt(wire, col)
			if g == nil || seen[g] {
				continue
			}
			seen[g] = true
			ops = append(ops, Op{Gate: g, Column: col})
		}
	}
	return ops
}

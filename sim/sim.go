// Package sim evolves a circuit's state vector column by column, optionally
// materializes the full unitary, and samples classical measurement
// outcomes. Gate application never builds 2^n x 2^n matrices: a k-wire gate
// acts within the 2^k classes the wire bits partition the basis into.
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"qnetsim/circuit"
	"qnetsim/gate"
	"qnetsim/qmath"
)

// ErrUnsupportedGate marks a gate the state-evolution path cannot apply.
// The three-wire path covers Toffoli semantics only; this is a scope
// limit, not a placeholder.
var ErrUnsupportedGate = errors.New("sim: unsupported gate")

// Simulator runs exact state-vector simulations. The zero value is not
// usable; construct with New.
type Simulator struct {
	buildUnitary bool
	rng          *rand.Rand
	log          *zap.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithUnitary controls whether Run materializes the full 2^n x 2^n circuit
// unitary. Enabled by default; the cost is exponential in qubit count.
func WithUnitary(enabled bool) Option {
	return func(s *Simulator) { s.buildUnitary = enabled }
}

// WithRand sets the random source used for measurement sampling.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rng = r }
}

// WithLogger sets the logger. A nop logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// New constructs a Simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		buildUnitary: true,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Run simulates c with a default Simulator.
func Run(c *circuit.Circuit) (*Result, error) { return New().Run(c) }

// measureOp records one measure directive found in the grid.
type measureOp struct {
	wire, cbit int
}

// evolved is the deterministic part of a finished run. It is memoized on
// the circuit and reused until the circuit is next mutated; measurement
// sampling stays fresh per Run call.
type evolved struct {
	state    []qmath.Complex
	probs    []float64
	unitary  qmath.Matrix // nil unless built
	measures []measureOp
}

// Run evolves the circuit from |0...0>, then computes probabilities,
// samples measurements and (by default) the full unitary. The returned
// Result is an independently owned snapshot.
func (s *Simulator) Run(c *circuit.Circuit) (*Result, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	ev, ok := c.Memo().(*evolved)
	if !ok || (s.buildUnitary && ev.unitary == nil) {
		var err error
		ev, err = s.evolve(c, c.Columns(), s.buildUnitary)
		if err != nil {
			return nil, err
		}
		c.SetMemo(ev)
	}

	res := &Result{
		NumQubits:     c.NumQubits(),
		StateVector:   append([]qmath.Complex(nil), ev.state...),
		Probabilities: append([]float64(nil), ev.probs...),
	}
	// A memo from an earlier unitary-enabled run may carry a unitary this
	// simulator was not asked for; only return what was requested.
	if s.buildUnitary && ev.unitary != nil {
		res.Unitary = ev.unitary.Clone()
	}
	if len(ev.measures) > 0 {
		res.Measurements = s.sample(c, ev)
	}
	return res, nil
}

// RunPrefix evolves only the columns before upToColumn and returns the
// state snapshot, without unitary construction or measurement sampling.
func (s *Simulator) RunPrefix(c *circuit.Circuit, upToColumn int) (*Result, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	if upToColumn < 0 || upToColumn > c.Columns() {
		upToColumn = c.Columns()
	}
	ev, err := s.evolve(c, upToColumn, false)
	if err != nil {
		return nil, err
	}
	return &Result{
		NumQubits:     c.NumQubits(),
		StateVector:   ev.state,
		Probabilities: ev.probs,
	}, nil
}

// sample draws one basis index from the final distribution and reads each
// measured wire's bit off that index, so correlated outcomes survive.
// Independent per-wire draws from marginals cannot reproduce Bell/GHZ
// correlations.
func (s *Simulator) sample(c *circuit.Circuit, ev *evolved) map[string]int {
	// Rounding can leave the cumulative sum a hair under 1; the final
	// basis state absorbs the remainder.
	idx := len(ev.probs) - 1
	r := s.rng.Float64()
	acc := 0.0
	for i, p := range ev.probs {
		acc += p
		if r < acc {
			idx = i
			break
		}
	}
	creg := c.ClassicalRegister()
	out := make(map[string]int, len(ev.measures))
	for _, m := range ev.measures {
		out[creg.Bit(m.cbit)] = (idx >> m.wire) & 1
	}
	return out
}

// evolve walks the grid left to right, applying each distinct gate record
// in a column exactly once.
func (s *Simulator) evolve(c *circuit.Circuit, upToColumn int, withUnitary bool) (*evolved, error) {
	n := c.NumQubits()
	dim := 1 << n
	state := make([]qmath.Complex, dim)
	state[0] = 1

	var unitary qmath.Matrix
	if withUnitary {
		unitary = qmath.Identity(dim)
	}

	ev := &evolved{state: state}
	for col := 0; col < upToColumn; col++ {
		seen := make(map[*circuit.Gate]bool)
		for wire := 0; wire < n; wire++ {
			g := c.GateAt(wire, col)
			if g == nil || seen[g] {
				continue
			}
			seen[g] = true

			switch g.Name {
			case gate.Measure:
				ev.measures = append(ev.measures, measureOp{wire: g.Wires[0], cbit: g.Cbit})
				continue
			case gate.Barrier:
				continue
			}

			def, err := gate.Lookup(g.Name)
			if err != nil {
				// Placement validated the name; reaching this is an
				// internal invariant violation.
				return nil, fmt.Errorf("sim: column %d: %w", col, err)
			}
			m, err := def.Matrix(g.Params)
			if err != nil {
				return nil, fmt.Errorf("sim: column %d: %w", col, err)
			}

			s.log.Debug("applying gate",
				zap.String("gate", g.Name),
				zap.Ints("wires", g.Wires),
				zap.Int("column", col))

			switch len(g.Wires) {
			case 1, 2:
				applyMatrix(state, m, g.Wires)
			case 3:
				if g.Name != "ccx" {
					return nil, fmt.Errorf("%w: %q (three-wire evolution covers Toffoli only)", ErrUnsupportedGate, g.Name)
				}
				applyToffoli(state, g.Wires[0], g.Wires[1], g.Wires[2])
			default:
				return nil, fmt.Errorf("%w: %q on %d wires", ErrUnsupportedGate, g.Name, len(g.Wires))
			}

			if withUnitary {
				full := expand(m, g.Wires, n)
				unitary, err = qmath.MatMul(full, unitary)
				if err != nil {
					return nil, fmt.Errorf("sim: column %d: %w", col, err)
				}
			}
		}
	}

	ev.probs = make([]float64, dim)
	for i, a := range state {
		re, im := real(a), imag(a)
		ev.probs[i] = re*re + im*im
	}
	ev.unitary = unitary
	return ev, nil
}

// wireOffsets maps each local basis index of a k-wire gate to the global
// bits it occupies. Wire order convention: wires[0] is the high bit of the
// local index, so a [control, target] gate uses the textbook matrix layout.
func wireOffsets(wires []int) []int {
	k := len(wires)
	offsets := make([]int, 1<<k)
	for l := range offsets {
		off := 0
		for j := 0; j < k; j++ {
			if l&(1<<(k-1-j)) != 0 {
				off |= 1 << wires[j]
			}
		}
		offsets[l] = off
	}
	return offsets
}

// applyMatrix applies a 2^k x 2^k gate matrix in place. Every basis index
// is partitioned by its k wire bits into 2^k classes; the matrix acts
// within each class while the remaining bits stay a free index.
func applyMatrix(state []qmath.Complex, m qmath.Matrix, wires []int) {
	size := 1 << len(wires)
	offsets := wireOffsets(wires)
	full := 0
	for _, w := range wires {
		full |= 1 << w
	}
	in := make([]qmath.Complex, size)
	for base := range state {
		if base&full != 0 {
			continue
		}
		for l := 0; l < size; l++ {
			in[l] = state[base|offsets[l]]
		}
		for l := 0; l < size; l++ {
			var acc qmath.Complex
			for l2 := 0; l2 < size; l2++ {
				if m[l][l2] != 0 {
					acc += m[l][l2] * in[l2]
				}
			}
			state[base|offsets[l]] = acc
		}
	}
}

// applyToffoli flips the target bit wherever both control bits are set.
func applyToffoli(state []qmath.Complex, control1, control2, target int) {
	cMask := 1<<control1 | 1<<control2
	tBit := 1 << target
	for i := range state {
		if i&cMask == cMask && i&tBit == 0 {
			j := i | tBit
			state[i], state[j] = state[j], state[i]
		}
	}
}

// expand lifts a k-wire gate matrix to the full 2^n x 2^n operator, i.e.
// the tensor product with identities on every untouched wire. Used only
// for unitary construction, never for state evolution.
func expand(m qmath.Matrix, wires []int, n int) qmath.Matrix {
	dim := 1 << n
	size := 1 << len(wires)
	offsets := wireOffsets(wires)
	full := 0
	for _, w := range wires {
		full |= 1 << w
	}
	local := func(i int) int {
		l := 0
		for j, w := range wires {
			if i&(1<<w) != 0 {
				l |= 1 << (len(wires) - 1 - j)
			}
		}
		return l
	}
	out := qmath.Zero(dim, dim)
	for i := 0; i < dim; i++ {
		free := i &^ full
		li := local(i)
		for l2 := 0; l2 < size; l2++ {
			out[i][free|offsets[l2]] = m[li][l2]
		}
	}
	return out
}

package sim

import (
	"strings"

	"qnetsim/qmath"
)

// Result is the outcome of one simulation run: a fresh, independently
// owned snapshot sharing no storage with the circuit or the simulator.
type Result struct {
	NumQubits   int
	StateVector []qmath.Complex
	// Probabilities is indexed by computational-basis state.
	Probabilities []float64
	// Unitary is nil unless unitary construction was enabled.
	Unitary qmath.Matrix
	// Measurements maps classical-bit labels ("c[0]") to sampled outcomes.
	Measurements map[string]int
}

// MarginalProbability returns the probability that the given qubit reads 1,
// summed over every basis state where its bit is set.
func (r *Result) MarginalProbability(qubit int) float64 {
	bit := 1 << qubit
	p := 0.0
	for i, prob := range r.Probabilities {
		if i&bit != 0 {
			p += prob
		}
	}
	return p
}

// Label formats a basis index as a classical bit string with qubit n-1
// leftmost, e.g. index 3 of a 3-qubit circuit is "011".
func (r *Result) Label(index int) string {
	return BasisLabel(index, r.NumQubits)
}

// BasisLabel formats index as an n-bit string, highest qubit first.
func BasisLabel(index, n int) string {
	var b strings.Builder
	for q := n - 1; q >= 0; q-- {
		if index&(1<<q) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Package gate is the registry of gate names to unitary matrices. Matrix
// entries are closed-form functions of the gate's declared parameter names,
// evaluated directly; a missing parameter is a hard error, never a silent
// default. Directive gates (measure, barrier) carry no matrix and only
// drive the simulator's bookkeeping.
package gate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"qnetsim/qmath"
)

var (
	ErrUnknownGate      = errors.New("gate: unknown gate")
	ErrMissingParameter = errors.New("gate: missing parameter")
)

// Values binds parameter names (e.g. "theta", "lambda") to concrete angles.
type Values map[string]float64

// Def describes one entry of the gate library.
type Def struct {
	Name        string   // canonical lower-case name
	Description string
	Arity       int      // number of wires; -1 for variable (barrier)
	Params      []string // required parameter names, in call order
	Directive   bool     // true for measure/barrier: no matrix, no evolution

	build func(v Values) qmath.Matrix
}

// Matrix evaluates the gate's unitary for the given parameter values.
// Every name in d.Params must be bound.
func (d *Def) Matrix(v Values) (qmath.Matrix, error) {
	if d.Directive {
		return nil, fmt.Errorf("gate: directive %q has no matrix", d.Name)
	}
	for _, p := range d.Params {
		if _, ok := v[p]; !ok {
			return nil, fmt.Errorf("%w: %q requires %q", ErrMissingParameter, d.Name, p)
		}
	}
	return d.build(v), nil
}

// Directive gate names.
const (
	Measure = "measure"
	Barrier = "barrier"
)

// aliases maps alternative spellings to canonical names. Matching is
// case-insensitive; unknown spellings are rejected, not defaulted.
var aliases = map[string]string{
	"cnot":    "cx",
	"toffoli": "ccx",
	"fredkin": "cswap",
	"not":     "x",
	"u1":      "p",
	"phase":   "p",
	"u3":      "u",
}

// Canonical maps any accepted spelling of a gate name to its canonical
// lower-case form, failing with ErrUnknownGate for unknown spellings.
func Canonical(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		n = a
	}
	if _, ok := catalogue[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGate, name)
	}
	return n, nil
}

// Lookup returns the library entry for any accepted spelling of name.
func Lookup(name string) (*Def, error) {
	n, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	return catalogue[n], nil
}

// Names returns all canonical gate names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for n := range catalogue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// fixed builds a Def whose matrix does not depend on parameters.
func fixed(name, desc string, arity int, m qmath.Matrix) *Def {
	return &Def{Name: name, Description: desc, Arity: arity,
		build: func(Values) qmath.Matrix { return m.Clone() }}
}

// parametric builds a Def whose matrix is a closed-form function of params.
func parametric(name, desc string, arity int, params []string, build func(v Values) qmath.Matrix) *Def {
	return &Def{Name: name, Description: desc, Arity: arity, Params: params, build: build}
}

// controlled lifts a 2x2 matrix to its 4x4 controlled form, with the
// control on the high bit of the local index.
func controlled(u qmath.Matrix) qmath.Matrix {
	m := qmath.Identity(4)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			m[2+i][2+j] = u[i][j]
		}
	}
	return m
}

func rxMatrix(theta float64) qmath.Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return qmath.Matrix{{c, s}, {s, c}}
}

func ryMatrix(theta float64) qmath.Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return qmath.Matrix{{c, -s}, {s, c}}
}

func rzMatrix(theta float64) qmath.Matrix {
	return qmath.Matrix{{qmath.ExpI(-theta / 2), 0}, {0, qmath.ExpI(theta / 2)}}
}

func pMatrix(lambda float64) qmath.Matrix {
	return qmath.Matrix{{1, 0}, {0, qmath.ExpI(lambda)}}
}

// uMatrix is the generic single-qubit rotation U(theta, phi, lambda).
func uMatrix(theta, phi, lambda float64) qmath.Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return qmath.Matrix{
		{c, -qmath.ExpI(lambda) * s},
		{qmath.ExpI(phi) * s, qmath.ExpI(phi + lambda) * c},
	}
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

var (
	xMatrix = qmath.Matrix{{0, 1}, {1, 0}}
	yMatrix = qmath.Matrix{{0, -1i}, {1i, 0}}
	zMatrix = qmath.Matrix{{1, 0}, {0, -1}}
	hMatrix = qmath.Matrix{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
)

var swapMatrix = qmath.Matrix{
	{1, 0, 0, 0},
	{0, 0, 1, 0},
	{0, 1, 0, 0},
	{0, 0, 0, 1},
}

// ccxMatrix flips the target (low bit) iff both controls (high bits) are 1.
var ccxMatrix = func() qmath.Matrix {
	m := qmath.Identity(8)
	m[6][6], m[7][7] = 0, 0
	m[6][7], m[7][6] = 1, 1
	return m
}()

// cswapMatrix swaps the two low bits iff the control (high bit) is 1.
var cswapMatrix = func() qmath.Matrix {
	m := qmath.Identity(8)
	m[5][5], m[6][6] = 0, 0
	m[5][6], m[6][5] = 1, 1
	return m
}()

var catalogue = map[string]*Def{
	"id":  fixed("id", "identity", 1, qmath.Identity(2)),
	"x":   fixed("x", "Pauli X (NOT)", 1, xMatrix),
	"y":   fixed("y", "Pauli Y", 1, yMatrix),
	"z":   fixed("z", "Pauli Z", 1, zMatrix),
	"h":   fixed("h", "Hadamard", 1, hMatrix),
	"s":   fixed("s", "phase pi/2", 1, qmath.Matrix{{1, 0}, {0, 1i}}),
	"sdg": fixed("sdg", "adjoint of s", 1, qmath.Matrix{{1, 0}, {0, -1i}}),
	"t":   fixed("t", "phase pi/4", 1, qmath.Matrix{{1, 0}, {0, qmath.ExpI(math.Pi / 4)}}),
	"tdg": fixed("tdg", "adjoint of t", 1, qmath.Matrix{{1, 0}, {0, qmath.ExpI(-math.Pi / 4)}}),
	"sx": fixed("sx", "square root of X", 1, qmath.Matrix{
		{complex(0.5, 0.5), complex(0.5, -0.5)},
		{complex(0.5, -0.5), complex(0.5, 0.5)},
	}),

	"p": parametric("p", "phase rotation", 1, []string{"lambda"}, func(v Values) qmath.Matrix {
		return pMatrix(v["lambda"])
	}),
	"rx": parametric("rx", "X-axis rotation", 1, []string{"theta"}, func(v Values) qmath.Matrix {
		return rxMatrix(v["theta"])
	}),
	"ry": parametric("ry", "Y-axis rotation", 1, []string{"theta"}, func(v Values) qmath.Matrix {
		return ryMatrix(v["theta"])
	}),
	"rz": parametric("rz", "Z-axis rotation", 1, []string{"theta"}, func(v Values) qmath.Matrix {
		return rzMatrix(v["theta"])
	}),
	"u": parametric("u", "generic single-qubit rotation", 1, []string{"theta", "phi", "lambda"}, func(v Values) qmath.Matrix {
		return uMatrix(v["theta"], v["phi"], v["lambda"])
	}),

	"cx":   fixed("cx", "controlled X", 2, controlled(xMatrix)),
	"cy":   fixed("cy", "controlled Y", 2, controlled(yMatrix)),
	"cz":   fixed("cz", "controlled Z", 2, controlled(zMatrix)),
	"ch":   fixed("ch", "controlled Hadamard", 2, controlled(hMatrix)),
	"swap": fixed("swap", "swap two qubits", 2, swapMatrix),
	"cp": parametric("cp", "controlled phase", 2, []string{"lambda"}, func(v Values) qmath.Matrix {
		return controlled(pMatrix(v["lambda"]))
	}),
	"crx": parametric("crx", "controlled X rotation", 2, []string{"theta"}, func(v Values) qmath.Matrix {
		return controlled(rxMatrix(v["theta"]))
	}),
	"cry": parametric("cry", "controlled Y rotation", 2, []string{"theta"}, func(v Values) qmath.Matrix {
		return controlled(ryMatrix(v["theta"]))
	}),
	"crz": parametric("crz", "controlled Z rotation", 2, []string{"theta"}, func(v Values) qmath.Matrix {
		return controlled(rzMatrix(v["theta"]))
	}),

	"ccx":   fixed("ccx", "Toffoli", 3, ccxMatrix),
	"cswap": fixed("cswap", "Fredkin", 3, cswapMatrix),

	Measure: {Name: Measure, Description: "measure into a classical bit", Arity: 1, Directive: true},
	Barrier: {Name: Barrier, Description: "scheduling barrier", Arity: -1, Directive: true},
}

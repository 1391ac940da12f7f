package gate

import (
	"errors"
	"math"
	"testing"

	"qnetsim/qmath"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"h", "h"},
		{"H", "h"},
		{"CNOT", "cx"},
		{"cnot", "cx"},
		{"TOFFOLI", "ccx"},
		{"Fredkin", "cswap"},
		{"NOT", "x"},
		{"u1", "p"},
		{"PHASE", "p"},
		{"u3", "u"},
		{" cx ", "cx"},
	}
	for _, tt := range tests {
		got, err := Canonical(tt.in)
		if err != nil {
			t.Errorf("Canonical(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalUnknown(t *testing.T) {
	for _, name := range []string{"", "frobnicate", "hh", "cxx"} {
		if _, err := Canonical(name); !errors.Is(err, ErrUnknownGate) {
			t.Errorf("Canonical(%q): err = %v, want ErrUnknownGate", name, err)
		}
	}
}

func TestFixedMatrices(t *testing.T) {
	h, err := mustLookup(t, "h").Matrix(nil)
	if err != nil {
		t.Fatalf("h matrix: %v", err)
	}
	f := complex(1/math.Sqrt2, 0)
	want := qmath.Matrix{{f, f}, {f, -f}}
	if !h.Equal(want, 1e-12) {
		t.Errorf("h = %v", h)
	}

	cx, err := mustLookup(t, "cx").Matrix(nil)
	if err != nil {
		t.Fatalf("cx matrix: %v", err)
	}
	wantCX := qmath.Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	}
	if !cx.Equal(wantCX, 0) {
		t.Errorf("cx = %v", cx)
	}
}

func TestParametricMatrices(t *testing.T) {
	rx, err := mustLookup(t, "rx").Matrix(Values{"theta": math.Pi})
	if err != nil {
		t.Fatalf("rx matrix: %v", err)
	}
	// RX(pi) = -i X
	want := qmath.Matrix{{0, -1i}, {-1i, 0}}
	if !rx.Equal(want, 1e-12) {
		t.Errorf("rx(pi) = %v", rx)
	}

	p, err := mustLookup(t, "p").Matrix(Values{"lambda": math.Pi / 2})
	if err != nil {
		t.Fatalf("p matrix: %v", err)
	}
	if !qmath.ApproxEqual(p[1][1], 1i, 1e-12) {
		t.Errorf("p(pi/2)[1][1] = %v", p[1][1])
	}
}

func TestMissingParameter(t *testing.T) {
	if _, err := mustLookup(t, "rx").Matrix(nil); !errors.Is(err, ErrMissingParameter) {
		t.Errorf("rx without theta: err = %v, want ErrMissingParameter", err)
	}
	if _, err := mustLookup(t, "u").Matrix(Values{"theta": 1}); !errors.Is(err, ErrMissingParameter) {
		t.Errorf("u without phi/lambda: err = %v, want ErrMissingParameter", err)
	}
}

func TestUnitarity(t *testing.T) {
	cases := []struct {
		name   string
		values Values
	}{
		{"h", nil},
		{"s", nil},
		{"t", nil},
		{"sx", nil},
		{"rx", Values{"theta": 0.7}},
		{"ry", Values{"theta": -1.3}},
		{"rz", Values{"theta": 2.1}},
		{"u", Values{"theta": 0.4, "phi": 1.1, "lambda": -0.9}},
		{"cx", nil},
		{"ch", nil},
		{"swap", nil},
		{"ccx", nil},
		{"cswap", nil},
		{"crz", Values{"theta": 0.5}},
	}
	for _, tc := range cases {
		m, err := mustLookup(t, tc.name).Matrix(tc.values)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		n := m.Rows()
		dag := qmath.Zero(n, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				dag[i][j] = qmath.Conj(m[j][i])
			}
		}
		prod, err := qmath.MatMul(m, dag)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if !prod.Equal(qmath.Identity(n), 1e-10) {
			t.Errorf("%s: M * M^dagger != I", tc.name)
		}
	}
}

func TestAdjointPairs(t *testing.T) {
	pairs := [][2]string{{"s", "sdg"}, {"t", "tdg"}}
	for _, pair := range pairs {
		a, _ := mustLookup(t, pair[0]).Matrix(nil)
		b, _ := mustLookup(t, pair[1]).Matrix(nil)
		prod, err := qmath.MatMul(a, b)
		if err != nil {
			t.Fatalf("%v: %v", pair, err)
		}
		if !prod.Equal(qmath.Identity(2), 1e-12) {
			t.Errorf("%s * %s != I", pair[0], pair[1])
		}
	}
}

func TestDirectives(t *testing.T) {
	for _, name := range []string{Measure, Barrier} {
		def, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if !def.Directive {
			t.Errorf("%q should be a directive", name)
		}
		if _, err := def.Matrix(nil); err == nil {
			t.Errorf("%q should have no matrix", name)
		}
	}
}

func TestMatrixIsFreshCopy(t *testing.T) {
	def := mustLookup(t, "x")
	m1, _ := def.Matrix(nil)
	m1[0][0] = 42
	m2, _ := def.Matrix(nil)
	if m2[0][0] != 0 {
		t.Error("catalogue matrix was mutated through a returned copy")
	}
}

func mustLookup(t *testing.T, name string) *Def {
	t.Helper()
	def, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return def
}

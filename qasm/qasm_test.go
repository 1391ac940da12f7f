package qasm

import (
	"errors"
	"math"
	"strings"
	"testing"

	"qnetsim/circuit"
	"qnetsim/gate"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1.5707", 1.5707},
		{"-0.5", -0.5},
		{"3.14e-2", 3.14e-2},
		{"pi", math.Pi},
		{"PI", math.Pi},
		{"pi/2", math.Pi / 2},
		{"pi/4", math.Pi / 4},
		{"2pi", 2 * math.Pi},
		{"2*pi", 2 * math.Pi},
		{"3pi/4", 3 * math.Pi / 4},
		{"3*pi/4", 3 * math.Pi / 4},
		{"-pi", -math.Pi},
		{"-pi/2", -math.Pi / 2},
		{"-3*pi/4", -3 * math.Pi / 4},
		{"  pi/2  ", math.Pi / 2},
	}
	for _, tt := range tests {
		got, err := ParseParam(tt.input)
		if err != nil {
			t.Errorf("ParseParam(%q) error: %v", tt.input, err)
			continue
		}
		if math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("ParseParam(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseParamErrors(t *testing.T) {
	for _, input := range []string{"", "theta", "pi/0", "two*pi", "pi+1"} {
		if _, err := ParseParam(input); !errors.Is(err, ErrUnknownExpression) {
			t.Errorf("ParseParam(%q) error = %v, want ErrUnknownExpression", input, err)
		}
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{-math.Pi / 2, "-pi/2"},
		{3 * math.Pi / 4, "3*pi/4"},
		{2 * math.Pi, "2*pi"},
		{0.5, "0.5"},
		{1.25, "1.25"},
	}
	for _, tt := range tests {
		if got := FormatParam(tt.input); got != tt.expected {
			t.Errorf("FormatParam(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseBasicProgram(t *testing.T) {
	text := `OPENQASM 3.0;

// entangle, rotate, read out
qubit[2] q;
bit[2] c;

h q[0];
cx q[0], q[1];
rx(pi/2) q[1];
barrier;
measure q[0] -> c[0];
measure q[1] -> c[1];
`
	c, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if c.NumQubits() != 2 || c.NumClbits() != 2 {
		t.Fatalf("got %d qubits / %d clbits, want 2 / 2", c.NumQubits(), c.NumClbits())
	}

	ops := c.Ops()
	wantNames := []string{"h", "cx", "rx", "barrier", "measure", "measure"}
	if len(ops) != len(wantNames) {
		t.Fatalf("got %d ops, want %d", len(ops), len(wantNames))
	}
	for i, want := range wantNames {
		if ops[i].Gate.Name != want {
			t.Errorf("op %d = %q, want %q", i, ops[i].Gate.Name, want)
		}
	}
	if theta := ops[2].Gate.Params["theta"]; math.Abs(theta-math.Pi/2) > 1e-10 {
		t.Errorf("rx theta = %v, want pi/2", theta)
	}
	if len(ops[3].Gate.Wires) != 2 {
		t.Errorf("bare barrier spans %d wires, want all 2", len(ops[3].Gate.Wires))
	}
	if ops[5].Gate.Cbit != 1 {
		t.Errorf("second measure cbit = %d, want 1", ops[5].Gate.Cbit)
	}
}

func TestParseLegacyRegisters(t *testing.T) {
	text := `OPENQASM 2.0;
include "qelib1.inc";
qreg q[3];
creg c[3];
h q[0];
ccx q[0], q[1], q[2];
`
	c, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if c.NumQubits() != 3 || c.NumClbits() != 3 {
		t.Fatalf("got %d qubits / %d clbits, want 3 / 3", c.NumQubits(), c.NumClbits())
	}
	if got := len(c.Ops()); got != 2 {
		t.Fatalf("got %d ops, want 2", got)
	}
}

func TestParseAliases(t *testing.T) {
	text := `qubit[2] q;
cnot q[0], q[1];
not q[1];
`
	c, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ops := c.Ops()
	if ops[0].Gate.Name != "cx" || ops[1].Gate.Name != "x" {
		t.Errorf("aliases not canonicalized: got %q, %q", ops[0].Gate.Name, ops[1].Gate.Name)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"statement before declaration", "h q[0];", circuit.ErrRegisterSizeMismatch},
		{"unknown gate", "qubit[1] q;\nfoo q[0];", gate.ErrUnknownGate},
		{"bad parameter expression", "qubit[1] q;\nrx(theta) q[0];", ErrUnknownExpression},
		{"wire out of range", "qubit[1] q;\nh q[4];", circuit.ErrQubitIndexOutOfRange},
		{"measure without bits", "qubit[1] q;\nmeasure q[0] -> c[0];", circuit.ErrClassicalRegisterUnavailable},
		{"wrong arity", "qubit[2] q;\ncx q[0];", circuit.ErrWireCountMismatch},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.text); !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestParseRejectsWrongParamCount(t *testing.T) {
	if _, err := Parse("qubit[1] q;\nu(pi/2, 0) q[0];"); err == nil {
		t.Error("u with 2 of 3 parameters should fail")
	}
	if _, err := Parse("qubit[1] q;\nh(pi) q[0];"); err == nil {
		t.Error("h with a parameter should fail")
	}
}

func TestEmitUsesPiNotation(t *testing.T) {
	c, err := circuit.New(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	c.RX(math.Pi/2, 0).P(-math.Pi/4, 0)
	if err := c.Err(); err != nil {
		t.Fatal(err)
	}
	text := Emit(c)
	if !strings.Contains(text, "rx(pi/2) q[0];") {
		t.Errorf("emitted text missing rx(pi/2):\n%s", text)
	}
	if !strings.Contains(text, "p(-pi/4) q[0];") {
		t.Errorf("emitted text missing p(-pi/4):\n%s", text)
	}
}

func TestEmitParseRoundTrip(t *testing.T) {
	c, err := circuit.New(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	c.H(0).CX(0, 1).RX(math.Pi/2, 2).U(0.25, -math.Pi, 1.5, 1).
		Barrier().CCX(0, 1, 2).SWAP(0, 2).MeasureAll()
	if err := c.Err(); err != nil {
		t.Fatal(err)
	}

	first := Emit(c)
	parsed, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse(Emit(c)) error: %v\n%s", err, first)
	}
	second := Emit(parsed)
	if first != second {
		t.Errorf("emit/parse round-trip not stable:\n--- first ---\n%s--- second ---\n%s", first, second)
	}
}

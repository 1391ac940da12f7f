package circuit

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func buildSample(t *testing.T) *Circuit {
	t.Helper()
	c, err := New(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	c.H(0).CX(0, 1).RX(math.Pi/2, 2).Barrier().CCX(0, 1, 2).Measure(0, 0).Measure(2, 1)
	if err := c.Err(); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := buildSample(t)
	s := c.Snapshot()

	restored, err := FromSnapshot(s)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), s) {
		t.Error("snapshot changed across a round-trip")
	}
	if restored.NumQubits() != 3 || restored.NumClbits() != 3 || restored.Columns() != c.Columns() {
		t.Errorf("restored shape: %d qubits, %d clbits, %d columns",
			restored.NumQubits(), restored.NumClbits(), restored.Columns())
	}
}

func TestSnapshotJSONStable(t *testing.T) {
	c := buildSample(t)

	first, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-serialization is not byte-stable")
	}

	var restored Circuit
	if err := json.Unmarshal(first, &restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	third, err := json.Marshal(&restored)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, third) {
		t.Error("round-tripped circuit serializes differently")
	}
}

func TestSnapshotRejectsBadGate(t *testing.T) {
	s := &Snapshot{
		Qubits: 1,
		Gates: []GateSnapshot{
			{Name: "bogus", Column: 0, Wires: []int{0}, Cbit: -1},
		},
	}
	if _, err := FromSnapshot(s); err == nil {
		t.Error("expected an error for an unknown gate name")
	}
}

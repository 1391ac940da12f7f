package circuit

import (
	"encoding/json"
	"fmt"

	"qnetsim/gate"
)

// Snapshot is the canonical structured-interchange form of a circuit. It
// round-trips qubit/classical-bit counts, register names and the full gate
// grid losslessly, and re-serializes byte-stably (encoding/json emits map
// keys in sorted order).
type Snapshot struct {
	Qubits   int            `json:"qubits"`
	Clbits   int            `json:"clbits"`
	QRegName string         `json:"qreg,omitempty"`
	CRegName string         `json:"creg,omitempty"`
	Gates    []GateSnapshot `json:"gates"`
}

// GateSnapshot records one placed gate. Wires are explicit here; the grid
// position is reconstructed from Column plus Wires.
type GateSnapshot struct {
	Name   string             `json:"name"`
	Column int                `json:"column"`
	Wires  []int              `json:"wires"`
	Params map[string]float64 `json:"params,omitempty"`
	Cbit   int                `json:"cbit"` // -1 when not a measurement
}

// Snapshot captures the circuit's current structure.
func (c *Circuit) Snapshot() *Snapshot {
	s := &Snapshot{
		Qubits:   c.NumQubits(),
		Clbits:   c.NumClbits(),
		QRegName: c.qreg.Name(),
		Gates:    []GateSnapshot{},
	}
	if c.creg != nil {
		s.CRegName = c.creg.Name()
	}
	for _, op := range c.Ops() {
		gs := GateSnapshot{
			Name:   op.Gate.Name,
			Column: op.Column,
			Wires:  append([]int(nil), op.Gate.Wires...),
			Cbit:   op.Gate.Cbit,
		}
		if len(op.Gate.Params) > 0 {
			gs.Params = make(map[string]float64, len(op.Gate.Params))
			for k, v := range op.Gate.Params {
				gs.Params[k] = v
			}
		}
		s.Gates = append(s.Gates, gs)
	}
	return s
}

// FromSnapshot rebuilds a circuit from its snapshot by replaying every
// gate at its recorded column.
func FromSnapshot(s *Snapshot) (*Circuit, error) {
	qname := s.QRegName
	if qname == "" {
		qname = "q"
	}
	qr, err := NewRegister(s.Qubits, qname)
	if err != nil {
		return nil, err
	}
	var cr *Register
	if s.Clbits > 0 {
		cname := s.CRegName
		if cname == "" {
			cname = "c"
		}
		if cr, err = NewRegister(s.Clbits, cname); err != nil {
			return nil, err
		}
	}
	c, err := NewWithRegisters(qr, cr)
	if err != nil {
		return nil, err
	}
	for _, gs := range s.Gates {
		opts := &PlaceOptions{Cbit: gs.Cbit}
		if len(gs.Params) > 0 {
			opts.Params = gate.Values(gs.Params)
		}
		if _, err := c.Place(gs.Name, gs.Column, gs.Wires, opts); err != nil {
			return nil, fmt.Errorf("circuit: snapshot gate %q at column %d: %w", gs.Name, gs.Column, err)
		}
	}
	return c, nil
}

// MarshalJSON serializes the circuit as its snapshot.
func (c *Circuit) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// UnmarshalJSON rebuilds the circuit from snapshot JSON.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	rebuilt, err := FromSnapshot(&s)
	if err != nil {
		return err
	}
	*c = *rebuilt
	return nil
}

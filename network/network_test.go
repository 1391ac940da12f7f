package network_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"qnetsim/circuit"
	"qnetsim/network"
	"qnetsim/sim"
)

func TestNodeIDsAreSequentialAndNeverReused(t *testing.T) {
	n := network.New()
	a, err := n.AddNode("alice", 2, network.Position{})
	require.NoError(t, err)
	b, err := n.AddNode("bob", 1, network.Position{X: 10, Y: 5})
	require.NoError(t, err)
	require.Equal(t, 0, a.ID)
	require.Equal(t, 1, b.ID)

	require.NoError(t, n.RemoveNode(b.ID))
	c, err := n.AddNode("carol", 3, network.Position{})
	require.NoError(t, err)
	require.Equal(t, 2, c.ID)

	names := []string{}
	for _, node := range n.Nodes() {
		names = append(names, node.Name)
	}
	require.Equal(t, []string{"alice", "carol"}, names)
}

func TestRemoveNodeCascadesEntanglements(t *testing.T) {
	n := network.New()
	_, err := n.AddNode("alice", 2, network.Position{})
	require.NoError(t, err)
	_, err = n.AddNode("bob", 2, network.Position{})
	require.NoError(t, err)
	_, err = n.AddNode("carol", 2, network.Position{})
	require.NoError(t, err)

	e1, err := n.AddEntanglement(0, 0, 1, 0, "")
	require.NoError(t, err)
	e2, err := n.AddEntanglement(1, 1, 2, 0, "")
	require.NoError(t, err)
	e3, err := n.AddEntanglement(0, 1, 2, 1, "")
	require.NoError(t, err)

	require.NoError(t, n.RemoveNode(1))

	ents := n.Entanglements()
	require.Len(t, ents, 1)
	require.Equal(t, e3.ID, ents[0].ID)

	require.ErrorIs(t, n.RemoveEntanglement(e1.ID), network.ErrEntanglementNotFound)
	require.ErrorIs(t, n.RemoveEntanglement(e2.ID), network.ErrEntanglementNotFound)
}

func TestAddEntanglementValidation(t *testing.T) {
	n := network.New()
	_, err := n.AddNode("alice", 2, network.Position{})
	require.NoError(t, err)
	_, err = n.AddNode("bob", 2, network.Position{})
	require.NoError(t, err)

	_, err = n.AddEntanglement(0, 0, 9, 0, "")
	require.ErrorIs(t, err, network.ErrNodeNotFound)

	_, err = n.AddEntanglement(0, 5, 1, 0, "")
	require.ErrorIs(t, err, circuit.ErrQubitIndexOutOfRange)

	_, err = n.AddEntanglement(0, 0, 0, 0, "")
	require.ErrorIs(t, err, network.ErrQubitAlreadyEntangled)

	_, err = n.AddEntanglement(0, 0, 1, 0, "")
	require.NoError(t, err)

	_, err = n.AddEntanglement(0, 0, 1, 1, "")
	require.ErrorIs(t, err, network.ErrQubitAlreadyEntangled)
	_, err = n.AddEntanglement(0, 1, 1, 0, "")
	require.ErrorIs(t, err, network.ErrQubitAlreadyEntangled)

	// Failed attempts must not have grown the entanglement list.
	require.Len(t, n.Entanglements(), 1)
}

func TestEntanglementDefaultsToEPR(t *testing.T) {
	n := network.New()
	_, err := n.AddNode("alice", 1, network.Position{})
	require.NoError(t, err)
	_, err = n.AddNode("bob", 1, network.Position{})
	require.NoError(t, err)

	e, err := n.AddEntanglement(0, 0, 1, 0, "")
	require.NoError(t, err)
	require.Equal(t, network.KindEPR, e.Kind)
}

func TestToCircuitEmptyNetwork(t *testing.T) {
	_, err := network.New().ToCircuit()
	require.ErrorIs(t, err, network.ErrEmptyNetwork)
}

func TestToCircuitColumnOffsets(t *testing.T) {
	// Without entanglements local gates keep their columns; with one, the
	// two-column preamble shifts everything right by two.
	n := network.New()
	a, err := n.AddNode("alice", 1, network.Position{})
	require.NoError(t, err)
	b, err := n.AddNode("bob", 1, network.Position{})
	require.NoError(t, err)
	a.Circuit.X(0)
	require.NoError(t, a.Circuit.Err())

	flat, err := n.ToCircuit()
	require.NoError(t, err)
	require.Equal(t, 2, flat.NumQubits())
	require.Equal(t, 1, flat.Columns())
	g := flat.GateAt(0, 0)
	require.NotNil(t, g)
	require.Equal(t, "x", g.Name)

	_, err = n.AddEntanglement(a.ID, 0, b.ID, 0, "")
	require.NoError(t, err)

	flat, err = n.ToCircuit()
	require.NoError(t, err)
	require.Equal(t, 3, flat.Columns())
	require.Equal(t, "h", flat.GateAt(0, 0).Name)
	require.Equal(t, "cx", flat.GateAt(0, 1).Name)
	require.Equal(t, "cx", flat.GateAt(1, 1).Name)
	require.Equal(t, "x", flat.GateAt(0, 2).Name)
}

func TestToCircuitBellDistribution(t *testing.T) {
	n := network.New()
	a, err := n.AddNode("alice", 1, network.Position{})
	require.NoError(t, err)
	b, err := n.AddNode("bob", 1, network.Position{})
	require.NoError(t, err)
	_, err = n.AddEntanglement(a.ID, 0, b.ID, 0, "")
	require.NoError(t, err)

	flat, err := n.ToCircuit()
	require.NoError(t, err)

	res, err := sim.New(sim.WithUnitary(false)).Run(flat)
	require.NoError(t, err)
	require.InDelta(t, 0.5, res.Probabilities[0], 1e-9)
	require.InDelta(t, 0.5, res.Probabilities[3], 1e-9)
	require.InDelta(t, 0.0, res.Probabilities[1], 1e-9)
	require.InDelta(t, 0.0, res.Probabilities[2], 1e-9)
}

func TestToCircuitMeasurementOffsets(t *testing.T) {
	// Bob's local measure of q0 -> c0 lands on global wire 2 and clbit 2.
	n := network.New()
	_, err := n.AddNode("alice", 2, network.Position{})
	require.NoError(t, err)
	b, err := n.AddNode("bob", 2, network.Position{})
	require.NoError(t, err)
	b.Circuit.X(0).Measure(0, 0)
	require.NoError(t, b.Circuit.Err())

	flat, err := n.ToCircuit()
	require.NoError(t, err)

	res, err := sim.New(sim.WithUnitary(false), sim.WithRand(rand.New(rand.NewSource(1)))).Run(flat)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"c[2]": 1}, res.Measurements)
}

func TestSnapshotRoundTrip(t *testing.T) {
	n := network.New()
	a, err := n.AddNode("alice", 2, network.Position{X: 1, Y: 2})
	require.NoError(t, err)
	b, err := n.AddNode("bob", 2, network.Position{X: 3, Y: 4})
	require.NoError(t, err)
	a.Circuit.H(0).CX(0, 1)
	require.NoError(t, a.Circuit.Err())
	_, err = n.AddEntanglement(a.ID, 1, b.ID, 0, "")
	require.NoError(t, err)
	require.NoError(t, n.RemoveNode(b.ID))

	data, err := json.Marshal(n)
	require.NoError(t, err)

	restored := network.New()
	require.NoError(t, json.Unmarshal(data, restored))
	require.Equal(t, n.Snapshot(), restored.Snapshot())

	// Counters resume past the highest recorded id, not from zero.
	c, err := restored.AddNode("carol", 1, network.Position{})
	require.NoError(t, err)
	require.Equal(t, 1, c.ID)
	e, err := restored.AddEntanglement(a.ID, 0, c.ID, 0, "")
	require.NoError(t, err)
	require.Equal(t, 0, e.ID)
}

func TestFromSnapshotRejectsMismatchedCircuit(t *testing.T) {
	n := network.New()
	_, err := n.AddNode("alice", 2, network.Position{})
	require.NoError(t, err)
	s := n.Snapshot()
	s.Nodes[0].Qubits = 3

	_, err = network.FromSnapshot(s)
	require.ErrorIs(t, err, circuit.ErrRegisterSizeMismatch)
}

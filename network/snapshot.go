package network

import (
	"encoding/json"
	"fmt"

	"qnetsim/circuit"
)

// Snapshot is the structured-interchange form of a network: the node list
// with embedded circuit snapshots, and the entanglement list.
type Snapshot struct {
	Nodes         []NodeSnapshot `json:"nodes"`
	Entanglements []EntSnapshot  `json:"entanglements"`
}

// NodeSnapshot records one node. Ids are preserved across round-trips so
// entanglement references stay valid.
type NodeSnapshot struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Qubits   int               `json:"qubits"`
	Position Position          `json:"position"`
	Circuit  *circuit.Snapshot `json:"circuit"`
}

// EntSnapshot records one entanglement.
type EntSnapshot struct {
	ID     int    `json:"id"`
	Node1  int    `json:"node1"`
	Qubit1 int    `json:"qubit1"`
	Node2  int    `json:"node2"`
	Qubit2 int    `json:"qubit2"`
	Kind   string `json:"kind"`
}

// Snapshot captures the network's current structure in insertion order.
func (n *Network) Snapshot() *Snapshot {
	s := &Snapshot{Nodes: []NodeSnapshot{}, Entanglements: []EntSnapshot{}}
	for _, node := range n.Nodes() {
		s.Nodes = append(s.Nodes, NodeSnapshot{
			ID:       node.ID,
			Name:     node.Name,
			Qubits:   node.Qubits,
			Position: node.Position,
			Circuit:  node.Circuit.Snapshot(),
		})
	}
	for _, e := range n.Entanglements() {
		s.Entanglements = append(s.Entanglements, EntSnapshot{
			ID:     e.ID,
			Node1:  e.Node1,
			Qubit1: e.Qubit1,
			Node2:  e.Node2,
			Qubit2: e.Qubit2,
			Kind:   e.Kind,
		})
	}
	return s
}

// FromSnapshot rebuilds a network, preserving ids and resuming the
// sequence counters past the highest id seen.
func FromSnapshot(s *Snapshot, opts ...Option) (*Network, error) {
	n := New(opts...)
	for _, ns := range s.Nodes {
		c, err := circuit.FromSnapshot(ns.Circuit)
		if err != nil {
			return nil, fmt.Errorf("network: node %d: %w", ns.ID, err)
		}
		if c.NumQubits() != ns.Qubits {
			return nil, fmt.Errorf("%w: node %d circuit has %d qubits, expected %d",
				circuit.ErrRegisterSizeMismatch, ns.ID, c.NumQubits(), ns.Qubits)
		}
		node := &Node{
			ID:       ns.ID,
			Name:     ns.Name,
			Qubits:   ns.Qubits,
			Position: ns.Position,
			Circuit:  c,
		}
		n.nodes[node.ID] = node
		n.order = append(n.order, node.ID)
		if node.ID >= n.nextNode {
			n.nextNode = node.ID + 1
		}
	}
	for _, es := range s.Entanglements {
		if _, err := n.Node(es.Node1); err != nil {
			return nil, err
		}
		if _, err := n.Node(es.Node2); err != nil {
			return nil, err
		}
		e := &Entanglement{
			ID:     es.ID,
			Node1:  es.Node1,
			Qubit1: es.Qubit1,
			Node2:  es.Node2,
			Qubit2: es.Qubit2,
			Kind:   es.Kind,
		}
		n.ents[e.ID] = e
		n.entOrder = append(n.entOrder, e.ID)
		if e.ID >= n.nextEnt {
			n.nextEnt = e.ID + 1
		}
	}
	return n, nil
}

// MarshalJSON serializes the network as its snapshot.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Snapshot())
}

// UnmarshalJSON rebuilds the network from snapshot JSON.
func (n *Network) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	rebuilt, err := FromSnapshot(&s)
	if err != nil {
		return err
	}
	*n = *rebuilt
	return nil
}

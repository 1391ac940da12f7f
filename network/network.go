// Package network composes several circuits into a multi-node network
// joined by entanglement links, and flattens the whole graph into one
// global circuit by qubit-offset translation. The composer never simulates
// directly; the flattened circuit goes to the same simulator as any other.
package network

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"qnetsim/circuit"
	"qnetsim/gate"
)

// Structural failures, raised before any circuit is touched.
var (
	ErrEmptyNetwork          = errors.New("network: empty network")
	ErrNodeNotFound          = errors.New("network: node not found")
	ErrEntanglementNotFound  = errors.New("network: entanglement not found")
	ErrQubitAlreadyEntangled = errors.New("network: qubit already entangled")
)

// KindEPR is the standard entanglement kind: a Bell pair prepared by an
// H + CX preamble when the network is flattened.
const KindEPR = "EPR"

// Position is an opaque UI placement hint carried through snapshots.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one named member of the network owning an isolated circuit.
type Node struct {
	ID       int
	Name     string
	Qubits   int
	Position Position
	Circuit  *circuit.Circuit
}

// Entanglement declares an EPR-style link between one qubit each of two
// nodes. Each physical qubit can be the endpoint of at most one
// entanglement.
type Entanglement struct {
	ID     int
	Node1  int
	Qubit1 int
	Node2  int
	Qubit2 int
	Kind   string
}

// Network owns nodes and entanglement declarations. Node and entanglement
// ids are per-instance sequence counters, assigned once and never reused
// within the instance's lifetime.
type Network struct {
	nodes    map[int]*Node
	order    []int // node insertion order, drives qubit offsets
	ents     map[int]*Entanglement
	entOrder []int
	nextNode int
	nextEnt  int
	log      *zap.Logger
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger. A nop logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(n *Network) { n.log = l }
}

// New creates an empty network.
func New(opts ...Option) *Network {
	n := &Network{
		nodes: make(map[int]*Node),
		ents:  make(map[int]*Entanglement),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// AddNode creates a node with the next sequential id and an isolated
// circuit sized to qubits (with an equally sized classical register).
func (n *Network) AddNode(name string, qubits int, pos Position) (*Node, error) {
	c, err := circuit.New(qubits, qubits)
	if err != nil {
		return nil, err
	}
	node := &Node{
		ID:       n.nextNode,
		Name:     name,
		Qubits:   qubits,
		Position: pos,
		Circuit:  c,
	}
	n.nextNode++
	n.nodes[node.ID] = node
	n.order = append(n.order, node.ID)
	n.log.Debug("node added", zap.Int("id", node.ID), zap.String("name", name), zap.Int("qubits", qubits))
	return node, nil
}

// Node returns the node with the given id.
func (n *Network) Node(id int) (*Node, error) {
	node, ok := n.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return node, nil
}

// Nodes returns all nodes in insertion order.
func (n *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.nodes[id])
	}
	return out
}

// RemoveNode deletes a node and cascades removal of every entanglement
// referencing it. The node's id is never reused.
func (n *Network) RemoveNode(id int) error {
	if _, ok := n.nodes[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	delete(n.nodes, id)
	for i, oid := range n.order {
		if oid == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	kept := n.entOrder[:0]
	for _, eid := range n.entOrder {
		e := n.ents[eid]
		if e.Node1 == id || e.Node2 == id {
			delete(n.ents, eid)
			n.log.Debug("entanglement cascaded", zap.Int("id", eid), zap.Int("node", id))
			continue
		}
		kept = append(kept, eid)
	}
	n.entOrder = kept
	return nil
}

// endpointUsed reports whether (node, qubit) is already the endpoint of an
// existing entanglement.
func (n *Network) endpointUsed(node, qubit int) bool {
	for _, e := range n.ents {
		if (e.Node1 == node && e.Qubit1 == qubit) || (e.Node2 == node && e.Qubit2 == qubit) {
			return true
		}
	}
	return false
}

// AddEntanglement links qubit q1 of node1 with qubit q2 of node2. Both
// nodes must exist, both local qubit indices must be in range, and neither
// endpoint may already be entangled.
func (n *Network) AddEntanglement(node1, q1, node2, q2 int, kind string) (*Entanglement, error) {
	n1, err := n.Node(node1)
	if err != nil {
		return nil, err
	}
	n2, err := n.Node(node2)
	if err != nil {
		return nil, err
	}
	if q1 < 0 || q1 >= n1.Qubits {
		return nil, fmt.Errorf("%w: qubit %d of node %d (%d qubits)", circuit.ErrQubitIndexOutOfRange, q1, node1, n1.Qubits)
	}
	if q2 < 0 || q2 >= n2.Qubits {
		return nil, fmt.Errorf("%w: qubit %d of node %d (%d qubits)", circuit.ErrQubitIndexOutOfRange, q2, node2, n2.Qubits)
	}
	if node1 == node2 && q1 == q2 {
		return nil, fmt.Errorf("%w: both endpoints are node %d qubit %d", ErrQubitAlreadyEntangled, node1, q1)
	}
	if n.endpointUsed(node1, q1) {
		return nil, fmt.Errorf("%w: node %d qubit %d", ErrQubitAlreadyEntangled, node1, q1)
	}
	if n.endpointUsed(node2, q2) {
		return nil, fmt.Errorf("%w: node %d qubit %d", ErrQubitAlreadyEntangled, node2, q2)
	}
	if kind == "" {
		kind = KindEPR
	}
	e := &Entanglement{
		ID:     n.nextEnt,
		Node1:  node1,
		Qubit1: q1,
		Node2:  node2,
		Qubit2: q2,
		Kind:   kind,
	}
	n.nextEnt++
	n.ents[e.ID] = e
	n.entOrder = append(n.entOrder, e.ID)
	return e, nil
}

// RemoveEntanglement deletes one entanglement by id.
func (n *Network) RemoveEntanglement(id int) error {
	if _, ok := n.ents[id]; !ok {
		return fmt.Errorf("%w: %d", ErrEntanglementNotFound, id)
	}
	delete(n.ents, id)
	for i, eid := range n.entOrder {
		if eid == id {
			n.entOrder = append(n.entOrder[:i], n.entOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Entanglements returns all entanglements in insertion order.
func (n *Network) Entanglements() []*Entanglement {
	out := make([]*Entanglement, 0, len(n.entOrder))
	for _, id := range n.entOrder {
		out = append(out, n.ents[id])
	}
	return out
}

// offsets assigns each node a contiguous global-qubit offset in insertion
// order and returns the mapping plus the total qubit count.
func (n *Network) offsets() (map[int]int, int) {
	offsets := make(map[int]int, len(n.order))
	total := 0
	for _, id := range n.order {
		offsets[id] = total
		total += n.nodes[id].Qubits
	}
	return offsets, total
}

// ToCircuit flattens the network into one global circuit: an entanglement
// preamble (all H gates in column 0, all CX gates in column 1) followed by
// every node's local gates translated by that node's qubit offset. The
// preamble width is computed, not assumed: the one-entanglement-per-qubit
// invariant keeps all endpoint qubits distinct, so two columns suffice for
// any number of entanglements, and zero are used when there are none.
func (n *Network) ToCircuit() (*circuit.Circuit, error) {
	if len(n.order) == 0 {
		return nil, ErrEmptyNetwork
	}
	offsets, total := n.offsets()
	flat, err := circuit.New(total, total)
	if err != nil {
		return nil, err
	}

	preamble := 0
	if len(n.entOrder) > 0 {
		preamble = 2
		for _, id := range n.entOrder {
			e := n.ents[id]
			g1 := offsets[e.Node1] + e.Qubit1
			g2 := offsets[e.Node2] + e.Qubit2
			if _, err := flat.Place("h", 0, []int{g1}, nil); err != nil {
				return nil, err
			}
			if _, err := flat.Place("cx", 1, []int{g1, g2}, nil); err != nil {
				return nil, err
			}
		}
	}

	for _, id := range n.order {
		node := n.nodes[id]
		off := offsets[id]
		for _, op := range node.Circuit.Ops() {
			wires := make([]int, len(op.Gate.Wires))
			for i, w := range op.Gate.Wires {
				wires[i] = w + off
			}
			opts := &circuit.PlaceOptions{Params: op.Gate.Params, Cbit: -1}
			if op.Gate.Name == gate.Measure {
				opts.Cbit = op.Gate.Cbit + off
			}
			if _, err := flat.Place(op.Gate.Name, op.Column+preamble, wires, opts); err != nil {
				return nil, fmt.Errorf("network: node %d gate %q: %w", id, op.Gate.Name, err)
			}
		}
	}

	n.log.Debug("network flattened",
		zap.Int("nodes", len(n.order)),
		zap.Int("entanglements", len(n.entOrder)),
		zap.Int("qubits", total),
		zap.Int("preamble", preamble))
	return flat, nil
}

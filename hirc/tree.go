package hirc

import (
	"fmt"

	"github.com/hpxro7/wwisecodec/wwise"
)

// The size in bytes of a single decision tree node.
const decisionNodeBytes = 12

// A GameSync is one argument of a decision tree: a switch or state group.
type GameSync struct {
	GroupID   uint32
	GroupType uint8
}

// A DecisionNode is a single node of a DecisionTree. Whether Value holds an
// audio node ID or a child range depends on the node's depth.
type DecisionNode struct {
	Key         uint32
	Value       uint32
	Weight      uint16
	Probability uint16
}

// ChildRange returns the index of the first child and the number of children
// of a branch node.
func (n DecisionNode) ChildRange() (index, count int) {
	return int(n.Value & 0xFFFF), int(n.Value >> 16)
}

// AudioNodeID returns the object played by a leaf node.
func (n DecisionNode) AudioNodeID() uint32 {
	return n.Value
}

// A DecisionTree selects an audio node from the current values of its game
// sync arguments. Nodes are stored flat; every branch's children are the
// contiguous range given by its ChildRange. Nodes at depth Depth are leaves.
type DecisionTree struct {
	Depth uint32
	Args  []GameSync
	Mode  uint8
	Nodes []DecisionNode
}

func readGameSyncs(r *wwise.Reader, n int) []GameSync {
	if n == 0 {
		return nil
	}
	if n > r.Remaining()/5 {
		r.Skip(r.Remaining() + 1)
		return nil
	}
	args := make([]GameSync, n)
	for i := range args {
		args[i].GroupID = r.U32()
	}
	for i := range args {
		args[i].GroupType = r.U8()
	}
	return args
}

func writeGameSyncs(w *wwise.Writer, args []GameSync) {
	for _, a := range args {
		w.U32(a.GroupID)
	}
	for _, a := range args {
		w.U8(a.GroupType)
	}
}

// readDecisionTree reads the tree depth, its arguments, the tree size, the
// mode and the nodes. The node window is bounded by the declared tree size.
func readDecisionTree(r *wwise.Reader) (DecisionTree, error) {
	var t DecisionTree
	t.Depth = r.U32()
	t.Args = readGameSyncs(r, int(t.Depth))
	size := r.U32()
	t.Mode = r.U8()
	if r.Err() != nil {
		return t, r.Err()
	}
	if size%decisionNodeBytes != 0 {
		return t, fmt.Errorf("%w: size %d is not a multiple of %d",
			wwise.ErrCorruptTree, size, decisionNodeBytes)
	}
	tr, err := r.Sub("decision tree", int64(size))
	if err != nil {
		return t, err
	}
	t.Nodes = make([]DecisionNode, size/decisionNodeBytes)
	for i := range t.Nodes {
		t.Nodes[i] = DecisionNode{tr.U32(), tr.U32(), tr.U16(), tr.U16()}
	}
	if err := t.Walk(nil); err != nil {
		return t, err
	}
	return t, tr.Err()
}

func (t *DecisionTree) write(w *wwise.Writer) {
	w.U32(t.Depth)
	writeGameSyncs(w, t.Args)
	w.U32(uint32(len(t.Nodes) * decisionNodeBytes))
	w.U8(t.Mode)
	for _, n := range t.Nodes {
		w.U32(n.Key)
		w.U32(n.Value)
		w.U16(n.Weight)
		w.U16(n.Probability)
	}
}

// Walk visits every node reachable from the root in depth first order. It
// fails with ErrCorruptTree if a child range leaves the node window, points
// backwards, reaches a node twice or the walk goes deeper than the tree's
// depth.
func (t *DecisionTree) Walk(fn func(n DecisionNode, depth int)) error {
	if len(t.Nodes) == 0 {
		return nil
	}
	return t.walk(0, 0, make([]bool, len(t.Nodes)), fn)
}

func (t *DecisionTree) walk(i, depth int, seen []bool,
	fn func(DecisionNode, int)) error {
	if depth > int(t.Depth) {
		return fmt.Errorf("%w: node %d is deeper than %d", wwise.ErrCorruptTree,
			i, t.Depth)
	}
	if seen[i] {
		return fmt.Errorf("%w: node %d is the child of more than one branch",
			wwise.ErrCorruptTree, i)
	}
	seen[i] = true
	n := t.Nodes[i]
	if fn != nil {
		fn(n, depth)
	}
	if depth == int(t.Depth) {
		return nil
	}
	index, count := n.ChildRange()
	if count == 0 {
		return nil
	}
	if index <= i || index+count > len(t.Nodes) {
		return fmt.Errorf("%w: node %d has children [%d, %d) outside of %d nodes",
			wwise.ErrCorruptTree, i, index, index+count, len(t.Nodes))
	}
	for c := index; c < index+count; c++ {
		if err := t.walk(c, depth+1, seen, fn); err != nil {
			return err
		}
	}
	return nil
}

// AudioNodeIDs returns the objects referenced by the leaves of the tree.
func (t *DecisionTree) AudioNodeIDs() []uint32 {
	var ids []uint32
	t.Walk(func(n DecisionNode, depth int) {
		if depth == int(t.Depth) && n.AudioNodeID() != 0 {
			ids = append(ids, n.AudioNodeID())
		}
	})
	return ids
}

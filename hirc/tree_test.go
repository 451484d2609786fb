package hirc

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hpxro7/wwisecodec/wwise"
)

// sampleTree builds a two level tree: the root branches on a switch group
// into two children, each branching on a state group into one leaf.
func sampleTree() DecisionTree {
	return DecisionTree{
		Depth: 2,
		Args:  []GameSync{{0xA0, 0}, {0xB0, 1}},
		Mode:  0,
		Nodes: []DecisionNode{
			{Key: 0, Value: 2<<16 | 1, Weight: 50, Probability: 100},
			{Key: 0xA1, Value: 1<<16 | 3, Weight: 50, Probability: 100},
			{Key: 0xA2, Value: 1<<16 | 4, Weight: 50, Probability: 100},
			{Key: 0xB1, Value: 0x5001, Weight: 50, Probability: 100},
			{Key: 0, Value: 0x5002, Weight: 50, Probability: 100},
		},
	}
}

func TestDecisionTreeAudioNodeIDs(t *testing.T) {
	tree := sampleTree()
	got := tree.AudioNodeIDs()
	if want := []uint32{0x5001, 0x5002}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %X, expected %X", got, want)
	}
}

func TestDialogueEventRoundTrip(t *testing.T) {
	e := &DialogueEventObject{
		ObjectDescriptor: desc(TypeDialogueEvent, 0x6000),
		Probability:      100,
		Tree:             sampleTree(),
	}
	got := assertRoundTrip(t, e).(*DialogueEventObject)
	if !reflect.DeepEqual(got.Tree, e.Tree) {
		t.Errorf("got tree %+v, expected %+v", got.Tree, e.Tree)
	}
}

func TestDecisionTreeCorruption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *wwise.Writer, tree *DecisionTree)
	}{
		{"child range out of bounds", func(w *wwise.Writer, tree *DecisionTree) {
			tree.Nodes[1].Value = 4<<16 | 3
			tree.write(w)
		}},
		{"child range points backwards", func(w *wwise.Writer, tree *DecisionTree) {
			tree.Nodes[2].Value = 1<<16 | 0
			tree.write(w)
		}},
		{"sibling ranges overlap", func(w *wwise.Writer, tree *DecisionTree) {
			tree.Nodes[2].Value = 1<<16 | 3
			tree.write(w)
		}},
		{"size not a multiple of a node", func(w *wwise.Writer, tree *DecisionTree) {
			w.U32(tree.Depth)
			writeGameSyncs(w, tree.Args)
			w.U32(13)
			w.U8(tree.Mode)
			w.Zeros(13)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := sampleTree()
			w := wwise.NewWriter()
			w.U8(100)
			tt.mutate(w, &tree)
			_, err := decodeDialogueEvent(desc(TypeDialogueEvent, 1),
				wwise.NewReader(w.Bytes()))
			if !errors.Is(err, wwise.ErrCorruptTree) {
				t.Errorf("expected corrupt tree, got %v", err)
			}
		})
	}
}

// overlappingTree returns a tree of n nodes in which node i branches to every
// later node, so each node is reachable along many paths.
func overlappingTree(n int) DecisionTree {
	tree := DecisionTree{Depth: uint32(n)}
	for i := 0; i < n; i++ {
		tree.Args = append(tree.Args, GameSync{GroupID: uint32(i + 1)})
		node := DecisionNode{Key: uint32(i)}
		if i+1 < n {
			node.Value = uint32(n-i-1)<<16 | uint32(i+1)
		}
		tree.Nodes = append(tree.Nodes, node)
	}
	return tree
}

func TestDecisionTreeSharedNodesFail(t *testing.T) {
	tree := overlappingTree(34)
	w := wwise.NewWriter()
	w.U8(100)
	tree.write(w)

	done := make(chan error, 1)
	go func() {
		_, err := decodeDialogueEvent(desc(TypeDialogueEvent, 1),
			wwise.NewReader(w.Bytes()))
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, wwise.ErrCorruptTree) {
			t.Errorf("expected corrupt tree, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("decoding a tree with shared nodes did not finish")
	}
}

func TestDecisionTreeTruncatedNodes(t *testing.T) {
	tree := sampleTree()
	w := wwise.NewWriter()
	w.U8(100)
	tree.write(w)
	data := w.Bytes()[:w.Len()-decisionNodeBytes]
	_, err := decodeDialogueEvent(desc(TypeDialogueEvent, 1), wwise.NewReader(data))
	if !errors.Is(err, wwise.ErrTruncatedStream) {
		t.Errorf("expected truncated stream, got %v", err)
	}
}

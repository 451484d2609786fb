package hirc

import (
	"io"

	"github.com/hpxro7/wwisecodec/wwise"
)

// A DialogueEventObject selects a node to play with its decision tree.
type DialogueEventObject struct {
	ObjectDescriptor
	Probability uint8
	Tree        DecisionTree
}

func decodeDialogueEvent(d ObjectDescriptor, r *wwise.Reader) (*DialogueEventObject, error) {
	o := &DialogueEventObject{ObjectDescriptor: d}
	o.Probability = r.U8()
	if r.Err() != nil {
		return nil, r.Err()
	}
	t, err := readDecisionTree(r)
	if err != nil {
		return nil, err
	}
	o.Tree = t
	return o, nil
}

func (o *DialogueEventObject) WriteTo(w io.Writer) (int64, error) {
	return writeObject(w, &o.ObjectDescriptor, func(w *wwise.Writer) {
		w.U8(o.Probability)
		o.Tree.write(w)
	})
}

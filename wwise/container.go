package wwise

import (
	"fmt"
	"io"
)

// A Container is a Wwise file that stores wems addressed by source ID.
type Container interface {
	io.WriterTo
	fmt.Stringer

	// MediaIDs returns the source IDs of every wem in this container, in the
	// order they are stored.
	MediaIDs() []uint32

	// ContainsMedia reports whether the wem with the given source ID is stored
	// in this container.
	ContainsMedia(id uint32) bool

	// Media returns the contents of the wem with the given source ID.
	Media(id uint32) ([]byte, error)
}

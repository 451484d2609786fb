// Package resolve maps human readable event names, called cues, to the wems
// their events play.
package resolve

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hpxro7/wwisecodec/wwise"
)

// The columns of a cue table that name an event and hold its index.
const (
	cueNameColumn  = "CueName"
	cueIndexColumn = "CueIndex"
)

// A Cue is a named event and the wems it was resolved to.
type Cue struct {
	Name string
	// The ID of the event, the FNV-1a hash of Name.
	Index uint32
	// The source IDs of the wems the event plays, in the order they were
	// resolved.
	FileIDs []uint32
	files   map[uint32]bool
}

func (c *Cue) add(id uint32) bool {
	if c.files[id] {
		return false
	}
	if c.files == nil {
		c.files = make(map[uint32]bool)
	}
	c.files[id] = true
	c.FileIDs = append(c.FileIDs, id)
	return true
}

// readCueTable reads a CSV cue table. The first record names the columns;
// CueName and CueIndex may appear in any order among other columns. Every
// index is checked against the hash of its name.
func readCueTable(in io.Reader) ([]*Cue, error) {
	r := csv.NewReader(in)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("cue table is empty")
	}
	if err != nil {
		return nil, err
	}
	nameCol, indexCol := -1, -1
	for i, col := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(col), cueNameColumn):
			nameCol = i
		case strings.EqualFold(strings.TrimSpace(col), cueIndexColumn):
			indexCol = i
		}
	}
	if nameCol < 0 || indexCol < 0 {
		return nil, fmt.Errorf("cue table must have %s and %s columns, got %v",
			cueNameColumn, cueIndexColumn, header)
	}

	var cues []*Cue
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		if len(rec) <= nameCol || len(rec) <= indexCol {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d",
				line, max(nameCol, indexCol)+1, len(rec))
		}
		name := rec[nameCol]
		stored, err := strconv.ParseUint(strings.TrimSpace(rec[indexCol]), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: cue index of %q: %w", line, name, err)
		}
		if computed := wwise.CueHash(name); computed != uint32(stored) {
			return nil, &wwise.HashMismatchError{
				Line:     line,
				Name:     name,
				Stored:   uint32(stored),
				Computed: computed,
			}
		}
		cues = append(cues, &Cue{Name: name, Index: uint32(stored)})
	}
	return cues, nil
}

// LoadCueTable adds the cues of the CSV table at path. Nothing is added if
// the table cannot be read or a cue's index does not match its name.
func (r *Resolver) LoadCueTable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.LoadCueTableFrom(f); err != nil {
		return fmt.Errorf("load cue table %s: %w", path, err)
	}
	return nil
}

// LoadCueTableFrom adds the cues of the CSV table read from in. Nothing is
// added if the table cannot be read or a cue's index does not match its name.
func (r *Resolver) LoadCueTableFrom(in io.Reader) error {
	cues, err := readCueTable(in)
	if err != nil {
		return err
	}
	for _, c := range cues {
		if _, ok := r.byIndex[c.Index]; ok {
			continue
		}
		r.byIndex[c.Index] = c
		r.byName[c.Name] = c
	}
	r.log.WithField("cues", len(r.byIndex)).Debug("loaded cue table")
	return nil
}

// Cue returns the cue with the given name.
func (r *Resolver) Cue(name string) (*Cue, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Cues returns every loaded cue, sorted by name.
func (r *Resolver) Cues() []*Cue {
	cues := make([]*Cue, 0, len(r.byName))
	for _, c := range r.byName {
		cues = append(cues, c)
	}
	sort.Slice(cues, func(i, j int) bool { return cues[i].Name < cues[j].Name })
	return cues
}

// CueNameForFileID returns the name of the first cue resolved to the wem with
// the given source ID.
func (r *Resolver) CueNameForFileID(id uint32) (string, bool) {
	c, ok := r.byFile[id]
	if !ok {
		return "", false
	}
	return c.Name, true
}

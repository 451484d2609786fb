// Package util implements common utility functions.
package util

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const wemExtension = ".wem"

// CanonicalWemName returns the canonical file name for the wem with the given
// source ID. When cue is not empty the name is prefixed with it, so unpacked
// files can be recognized by the event that plays them.
func CanonicalWemName(id uint32, cue string) string {
	if cue == "" {
		return fmt.Sprintf("%d%s", id, wemExtension)
	}
	return fmt.Sprintf("%s_%d%s", cue, id, wemExtension)
}

// ParseWemName returns the source ID of a file named by CanonicalWemName.
// Directory components of name are ignored.
func ParseWemName(name string) (uint32, bool) {
	base := filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(base), wemExtension) {
		return 0, false
	}
	base = base[:len(base)-len(wemExtension)]
	if i := strings.LastIndexByte(base, '_'); i >= 0 {
		base = base[i+1:]
	}
	id, err := strconv.ParseUint(base, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

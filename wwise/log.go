package wwise

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the logger used when a caller does not supply one. Each
// call returns a new instance.
func NewLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// CheckConsumed reports whether r was consumed exactly. A mismatch is logged
// and returned but is not treated as a failure by callers; it marks a region
// whose layout the decoder does not fully model.
func CheckConsumed(log logrus.FieldLogger, name string, r *Reader) *SizeMismatch {
	if r.Err() == nil && r.Remaining() == 0 {
		return nil
	}
	delta := -r.Remaining()
	if r.Err() != nil {
		// A failed read stops at the end of the region; the true overrun is
		// not known.
		delta = 1
	}
	m := &SizeMismatch{Name: name, Delta: delta}
	log.WithFields(logrus.Fields{
		"section": name,
		"delta":   delta,
	}).Warn(m.Error())
	return m
}

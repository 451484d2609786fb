package bnk

import (
	"fmt"
	"io"

	"github.com/hpxro7/wwisecodec/hirc"
	"github.com/hpxro7/wwisecodec/wwise"
)

// The number of bytes of a curve header in the ENVS section.
const envCurveHeaderBytes = 4

// An EnvCurve is a conversion curve applied to obstruction or occlusion.
type EnvCurve struct {
	Enabled bool
	Scaling uint8
	Points  []hirc.GraphPoint
}

// An EnvironmentSection represents the ENVS section of a SoundBank file: the
// obstruction and occlusion conversion curves of the project.
type EnvironmentSection struct {
	SectionHeader
	Curves []EnvCurve
	// Bytes too short to hold a curve, kept as read.
	Trailer []byte
}

// NewEnvironmentSection reads curves from r until fewer bytes than a curve
// header remain. Those bytes are kept in the Trailer.
func (hdr SectionHeader) NewEnvironmentSection(r *wwise.Reader) (*EnvironmentSection, error) {
	sec := &EnvironmentSection{SectionHeader: hdr}
	for r.Remaining() >= envCurveHeaderBytes && r.Err() == nil {
		c := EnvCurve{Enabled: r.Bool(), Scaling: r.U8()}
		n := int(r.U16())
		for i := 0; i < n && r.Err() == nil; i++ {
			c.Points = append(c.Points, hirc.GraphPoint{
				From:   r.F32(),
				To:     r.F32(),
				Interp: r.U32(),
			})
		}
		sec.Curves = append(sec.Curves, c)
	}
	sec.Trailer = r.Rest()
	return sec, r.Err()
}

func (sec *EnvironmentSection) WriteTo(w io.Writer) (int64, error) {
	return writeSection(w, &sec.SectionHeader, func(w *wwise.Writer) {
		for _, c := range sec.Curves {
			w.Bool(c.Enabled)
			w.U8(c.Scaling)
			w.U16(uint16(len(c.Points)))
			for _, p := range c.Points {
				w.F32(p.From)
				w.F32(p.To)
				w.U32(p.Interp)
			}
		}
		w.Write(sec.Trailer)
	})
}

func (sec *EnvironmentSection) String() string {
	return fmt.Sprintf("ENVS: len(%d) curves(%d)\n", sec.Length, len(sec.Curves))
}

// Package pattern generates visual stimulus frame sequences for cylindrical
// LED arenas: gratings, edges, uniform on/off and starfields, animated by
// rotation, translation or expansion about a configurable pole, with
// optional solid-angle and rectangular masks.
package pattern

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports a parameter combination rejected before
// generation begins. Generation never fails partway through.
var ErrInvalidParameter = errors.New("invalid parameter")

// GrayscaleMode is the pixel depth of a frame sequence, expressed in bits
// per pixel. The whole sequence shares one mode.
type GrayscaleMode uint8

const (
	// GS2 is binary: every pixel is 0 or 1.
	GS2 GrayscaleMode = 1
	// GS16 is 4-bit grayscale: every pixel is 0..15.
	GS16 GrayscaleMode = 4
)

// Valid reports whether m is a supported mode.
func (m GrayscaleMode) Valid() bool { return m == GS2 || m == GS16 }

// Levels returns the number of intensity levels (2 or 16).
func (m GrayscaleMode) Levels() int { return 1 << m }

// MaxLevel returns the maximum pixel value (1 or 15).
func (m GrayscaleMode) MaxLevel() uint8 { return uint8(1<<m - 1) }

func (m GrayscaleMode) String() string {
	switch m {
	case GS2:
		return "gs2"
	case GS16:
		return "gs16"
	default:
		return fmt.Sprintf("GrayscaleMode(%d)", uint8(m))
	}
}

// Frame is one pixel-intensity grid, indexed [y][x] with y=0 the bottom
// row of the stitched display surface.
type Frame [][]uint8

// NewFrame allocates a zeroed height x width frame.
func NewFrame(height, width int) Frame {
	f := make(Frame, height)
	for y := range f {
		f[y] = make([]uint8, width)
	}
	return f
}

// Clone deep-copies the frame.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	for y, row := range f {
		out[y] = append([]uint8(nil), row...)
	}
	return out
}

// Set is an ordered frame sequence with a parallel per-frame stretch value.
type Set struct {
	Frames  []Frame
	Stretch []uint8
	Mode    GrayscaleMode
}

// Validate checks the Set invariants: 1-65535 frames, parallel stretch
// slice, uniform dimensions, and pixel values within the mode's range.
func (s Set) Validate() error {
	if len(s.Frames) < 1 || len(s.Frames) > 65535 {
		return fmt.Errorf("frame count %d outside 1..65535", len(s.Frames))
	}
	if len(s.Stretch) != len(s.Frames) {
		return fmt.Errorf("stretch length %d != frame count %d", len(s.Stretch), len(s.Frames))
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("unsupported grayscale mode %d", uint8(s.Mode))
	}
	h := len(s.Frames[0])
	if h == 0 {
		return fmt.Errorf("empty frame")
	}
	w := len(s.Frames[0][0])
	maxLevel := s.Mode.MaxLevel()
	for i, f := range s.Frames {
		if len(f) != h {
			return fmt.Errorf("frame %d height %d != %d", i, len(f), h)
		}
		for y, row := range f {
			if len(row) != w {
				return fmt.Errorf("frame %d row %d width %d != %d", i, y, len(row), w)
			}
			for x, v := range row {
				if v > maxLevel {
					return fmt.Errorf("frame %d pixel (%d,%d) value %d exceeds %s max %d", i, x, y, v, s.Mode, maxLevel)
				}
			}
		}
	}
	return nil
}

// Width returns the frame width in pixels, or 0 for an empty set.
func (s Set) Width() int {
	if len(s.Frames) == 0 || len(s.Frames[0]) == 0 {
		return 0
	}
	return len(s.Frames[0][0])
}

// Height returns the frame height in pixels, or 0 for an empty set.
func (s Set) Height() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return len(s.Frames[0])
}

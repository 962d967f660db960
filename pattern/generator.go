package pattern

import (
	"fmt"
	"math"

	"github.com/arena-display/pattern-tools/arena"
	"github.com/arena-display/pattern-tools/geom"
)

// Generate produces the frame sequence for one stimulus. It is a pure
// function of (params, config): identical inputs give identical bytes,
// including starfield randomness, which is fully determined by the seed.
func Generate(p Params, cfg arena.Config) (Set, error) {
	if err := p.Validate(); err != nil {
		return Set{}, err
	}

	proj, err := geom.NewProjector(cfg, p.Geometry)
	if err != nil {
		return Set{}, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	width := cfg.TotalPixelsX()
	height := cfg.TotalPixelsY()
	numFrames := p.frameCount()

	set := Set{
		Frames:  make([]Frame, numFrames),
		Stretch: make([]uint8, numFrames),
		Mode:    p.Mode,
	}
	for i := range set.Stretch {
		set.Stretch[i] = p.Stretch
	}

	// Off-on is a uniform fill with no geometry dependency: one frame at
	// the low level, one at the high level.
	if p.Pattern == OffOn {
		for k, level := range []uint8{p.Levels.Low, p.Levels.High} {
			f := NewFrame(height, width)
			for y := range f {
				for x := range f[y] {
					f[y][x] = level
				}
			}
			set.Frames[k] = f
		}
		return set, nil
	}

	// Project every pixel's super-samples once; they are identical across
	// frames, only the pattern phase changes.
	samples := make([][]geom.Direction, height*width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			samples[y*width+x] = proj.Samples(x, y)
		}
	}

	frame := newMotionFrame(p)

	var fields []dotField
	if p.Pattern == Starfield {
		fields = buildDotFields(p, frame, numFrames)
	}

	maxLevel := float64(p.Mode.MaxLevel())
	for k := 0; k < numFrames; k++ {
		phaseDeg := frameDelta(k, numFrames, p.SpatialPeriodDeg)
		f := NewFrame(height, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				var sum float64
				pix := samples[y*width+x]
				for _, d := range pix {
					if !p.visible(d) {
						sum += float64(p.Levels.Background)
						continue
					}
					if p.Pattern == Starfield {
						sum += fields[k].intensityAt(d, p)
						continue
					}
					coord := frame.coordinate(p.Motion, d)
					sum += p.intensityAt(coord, phaseDeg, k, numFrames)
				}
				v := geom.RoundHalfUp(sum / float64(len(pix)))
				if v < 0 {
					v = 0
				} else if v > int(maxLevel) {
					v = int(maxLevel)
				}
				f[y][x] = uint8(v)
			}
		}
		set.Frames[k] = f
	}
	return set, nil
}

// frameDelta is the phase advance of frame k in degrees: the sequence
// sweeps exactly one spatial period over numFrames frames, so looping the
// file is seamless.
func frameDelta(k, numFrames int, periodDeg float64) float64 {
	return float64(k) / float64(numFrames) * periodDeg
}

// intensityAt evaluates the periodic pattern functions (everything except
// starfield and off-on) at one motion coordinate for one frame.
func (p Params) intensityAt(coordDeg, phaseDeg float64, k, numFrames int) float64 {
	period := p.SpatialPeriodDeg
	// Motion shifts the pattern forward along the coordinate.
	pos := math.Mod(coordDeg-phaseDeg, period)
	if pos < 0 {
		pos += period
	}

	switch p.Pattern {
	case SquareGrating:
		if pos < period*float64(p.DutyCyclePct)/100.0 {
			return float64(p.Levels.High)
		}
		return float64(p.Levels.Low)
	case SineGrating:
		// sin in [-1,1] maps linearly onto [Low,High].
		s := math.Sin(2 * math.Pi * pos / period)
		low := float64(p.Levels.Low)
		high := float64(p.Levels.High)
		return low + (s+1)/2*(high-low)
	default: // Edge
		// A single step sweeps the full period over the sequence: frame 0
		// is all low, each frame advances the lit region by period/N.
		boundary := math.Mod(coordDeg, period)
		if boundary < 0 {
			boundary += period
		}
		if boundary < frameDelta(k, numFrames, period) {
			return float64(p.Levels.High)
		}
		return float64(p.Levels.Low)
	}
}

package pattern

import (
	"fmt"

	"github.com/arena-display/pattern-tools/geom"
)

// PatternType is the closed set of stimulus patterns.
type PatternType int

const (
	SquareGrating PatternType = iota
	SineGrating
	Edge
	OffOn
	Starfield
)

func (t PatternType) String() string {
	switch t {
	case SquareGrating:
		return "square-grating"
	case SineGrating:
		return "sine-grating"
	case Edge:
		return "edge"
	case OffOn:
		return "off-on"
	case Starfield:
		return "starfield"
	default:
		return fmt.Sprintf("PatternType(%d)", int(t))
	}
}

// MotionType is the closed set of motion reparametrizations.
type MotionType int

const (
	// Rotation advances azimuth about the pole axis.
	Rotation MotionType = iota
	// Translation advances a linear coordinate orthogonal to the pole axis.
	Translation
	// Expansion advances angular distance from the pole, producing
	// concentric rings. Negative period direction gives contraction.
	Expansion
)

func (t MotionType) String() string {
	switch t {
	case Rotation:
		return "rotation"
	case Translation:
		return "translation"
	case Expansion:
		return "expansion"
	default:
		return fmt.Sprintf("MotionType(%d)", int(t))
	}
}

// OcclusionPolicy decides the intensity where starfield dots overlap.
// This is a documented tie-break, not an implementation accident: the
// three policies produce different bytes and must stay selectable.
type OcclusionPolicy int

const (
	// ClosestWins takes the intensity of the nearest overlapping dot.
	ClosestWins OcclusionPolicy = iota
	// SumClamped adds overlapping intensities, clamped to the mode maximum.
	SumClamped
	// MeanOverlap averages the overlapping intensities.
	MeanOverlap
)

// Levels maps pattern logical states to display intensities: High for
// pattern-on, Low for pattern-off, Background for masked-out samples.
// GS2 collapses these to {0,1}; GS16 uses explicit 0-15 values.
type Levels struct {
	High       uint8
	Low        uint8
	Background uint8
}

// SolidAngleMask passes samples within RadiusDeg of the centre direction
// (or outside it when inverted).
type SolidAngleMask struct {
	CenterAzDeg float64
	CenterElDeg float64
	RadiusDeg   float64
	Invert      bool
}

// RectMask passes samples whose azimuth and elevation both lie within the
// bounds (or outside when inverted). Azimuth bounds may wrap through 360.
type RectMask struct {
	MinAzDeg, MaxAzDeg float64
	MinElDeg, MaxElDeg float64
	Invert             bool
}

// StarfieldParams configures the starfield pattern.
type StarfieldParams struct {
	NumDots      int
	DotRadiusDeg float64
	Seed         int64
	// ReRandomize redraws the dot field every frame instead of moving a
	// persistent field with the motion coordinate.
	ReRandomize bool
	Occlusion   OcclusionPolicy
}

// Params fully describes one generation request. Validation happens once,
// before any frame is computed.
type Params struct {
	Pattern PatternType
	Motion  MotionType
	Mode    GrayscaleMode

	// NumFrames is the sequence length (1-65535). The sequence spans one
	// full spatial period, so looped playback is seamless. OffOn forces 2.
	NumFrames int

	// SpatialPeriodDeg is the angular period of the pattern along the
	// motion coordinate. Must be positive.
	SpatialPeriodDeg float64

	// DutyCyclePct is the on-fraction per period for square gratings, 1-99.
	DutyCyclePct int

	// Pole placement. In full-field mode the pole is (PoleAzDeg,PoleElDeg).
	// With LocalMode the pole is forced to the solid-angle mask centre and
	// MotionAngleDeg rotates the local motion direction about it instead.
	PoleAzDeg, PoleElDeg float64
	LocalMode            bool
	MotionAngleDeg       float64

	SolidMask *SolidAngleMask
	RectMask  *RectMask

	Levels  Levels
	Stretch uint8

	Star StarfieldParams

	Geometry geom.Options
}

// Validate rejects invalid parameter combinations up front.
func (p Params) Validate() error {
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: unsupported grayscale mode %d", ErrInvalidParameter, uint8(p.Mode))
	}
	switch p.Pattern {
	case SquareGrating, SineGrating, Edge, OffOn, Starfield:
	default:
		return fmt.Errorf("%w: unknown pattern type %d", ErrInvalidParameter, int(p.Pattern))
	}
	switch p.Motion {
	case Rotation, Translation, Expansion:
	default:
		return fmt.Errorf("%w: unknown motion type %d", ErrInvalidParameter, int(p.Motion))
	}
	if p.Pattern != OffOn {
		if p.NumFrames < 1 || p.NumFrames > 65535 {
			return fmt.Errorf("%w: num frames %d outside 1..65535", ErrInvalidParameter, p.NumFrames)
		}
	}
	if p.Pattern == SquareGrating || p.Pattern == SineGrating || p.Pattern == Edge {
		if p.SpatialPeriodDeg <= 0 {
			return fmt.Errorf("%w: spatial period must be positive, got %g", ErrInvalidParameter, p.SpatialPeriodDeg)
		}
	}
	if p.Pattern == SquareGrating {
		if p.DutyCyclePct < 1 || p.DutyCyclePct > 99 {
			return fmt.Errorf("%w: duty cycle %d%% outside 1..99", ErrInvalidParameter, p.DutyCyclePct)
		}
	}
	if p.LocalMode && p.SolidMask == nil {
		return fmt.Errorf("%w: local mode requires a solid-angle mask to centre on", ErrInvalidParameter)
	}
	if p.SolidMask != nil && p.SolidMask.RadiusDeg <= 0 {
		return fmt.Errorf("%w: mask radius must be positive, got %g", ErrInvalidParameter, p.SolidMask.RadiusDeg)
	}
	if p.RectMask != nil {
		if p.RectMask.MinElDeg > p.RectMask.MaxElDeg {
			return fmt.Errorf("%w: rect mask elevation bounds inverted (%g > %g)", ErrInvalidParameter, p.RectMask.MinElDeg, p.RectMask.MaxElDeg)
		}
	}
	if p.Pattern == Starfield {
		if p.Star.NumDots < 1 {
			return fmt.Errorf("%w: starfield needs at least one dot, got %d", ErrInvalidParameter, p.Star.NumDots)
		}
		if p.Star.DotRadiusDeg <= 0 {
			return fmt.Errorf("%w: dot radius must be positive, got %g", ErrInvalidParameter, p.Star.DotRadiusDeg)
		}
		switch p.Star.Occlusion {
		case ClosestWins, SumClamped, MeanOverlap:
		default:
			return fmt.Errorf("%w: unknown occlusion policy %d", ErrInvalidParameter, int(p.Star.Occlusion))
		}
	}
	maxLevel := p.Mode.MaxLevel()
	for _, lv := range []struct {
		name string
		v    uint8
	}{{"high", p.Levels.High}, {"low", p.Levels.Low}, {"background", p.Levels.Background}} {
		if lv.v > maxLevel {
			return fmt.Errorf("%w: %s level %d exceeds %s max %d", ErrInvalidParameter, lv.name, lv.v, p.Mode, maxLevel)
		}
	}
	return nil
}

// frameCount resolves the effective sequence length. OffOn is always
// exactly two frames regardless of NumFrames.
func (p Params) frameCount() int {
	if p.Pattern == OffOn {
		return 2
	}
	return p.NumFrames
}

// Package geom maps arena pixels onto directions of a unit sphere centred
// on the observer. The arena is modelled as a cylinder of panels; each
// pixel's direction is computed from its physical position on the cylinder
// surface, after applying the observer-relative rotation and translation.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arena-display/pattern-tools/arena"
)

// PanelModel selects how panel surfaces approximate the cylinder.
type PanelModel int

const (
	// PanelModelPoly treats each panel as a flat facet at its true angle,
	// so the arena cross-section is a regular polygon.
	PanelModelPoly PanelModel = iota
	// PanelModelSmooth treats the arena as a continuous cylinder; pixel
	// azimuth is linear in the pixel's x position.
	PanelModelSmooth
)

// Direction is a point on the unit sphere in observer coordinates.
// Azimuth is measured clockwise from the forward axis in degrees and
// normalised to [0,360); elevation is degrees above the horizontal.
type Direction struct {
	AzDeg float64
	ElDeg float64
}

// Vec returns the unit vector for d. Coordinate system matches the display
// convention used throughout: X=right, Y=forward, Z=up.
func (d Direction) Vec() r3.Vec {
	az := d.AzDeg * math.Pi / 180.0
	el := d.ElDeg * math.Pi / 180.0
	cosEl := math.Cos(el)
	return r3.Vec{
		X: cosEl * math.Sin(az),
		Y: cosEl * math.Cos(az),
		Z: math.Sin(el),
	}
}

// FromVec extracts azimuth/elevation from a vector (need not be unit).
func FromVec(v r3.Vec) Direction {
	az := math.Atan2(v.X, v.Y) * 180.0 / math.Pi
	if az < 0 {
		az += 360
	}
	el := math.Atan2(v.Z, math.Hypot(v.X, v.Y)) * 180.0 / math.Pi
	return Direction{AzDeg: az, ElDeg: el}
}

// AngularDistanceDeg returns the great-circle angle between two directions.
func AngularDistanceDeg(a, b Direction) float64 {
	dot := r3.Dot(a.Vec(), b.Vec())
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot) * 180.0 / math.Pi
}

// Options configures a Projector beyond what the arena config provides.
type Options struct {
	PanelModel PanelModel
	// Observer-relative arena attitude, applied as a 3D rotation before
	// azimuth/elevation extraction. Yaw about Z (up), pitch about X
	// (right), roll about Y (forward), applied in that order.
	YawDeg, PitchDeg, RollDeg float64
	// Observer translation from the cylinder axis, millimetres.
	TranslationMM r3.Vec
	// SamplesPerAxis is the super-sampling grid size per pixel. 1 disables
	// anti-aliasing; values >= 2 are required when mask or pattern edges
	// must not alias on pixel boundaries.
	SamplesPerAxis int
}

// Projector computes sphere directions for the pixels of one arena.
// Projectors are cheap value-like objects rebuilt on any config change;
// per-pixel directions are recomputed, never cached across configs.
type Projector struct {
	cfg  arena.Config
	opts Options

	radiusMM   float64 // cylinder radius (smooth) at the panel surface
	apothemMM  float64 // facet distance from axis (poly)
	pixelPitch float64 // millimetres per pixel
	colSpanDeg float64 // azimuth span of one full-grid column
	rotate     func(r3.Vec) r3.Vec
}

// NewProjector builds a projector for a resolved arena config.
func NewProjector(cfg arena.Config, opts Options) (*Projector, error) {
	if opts.SamplesPerAxis == 0 {
		opts.SamplesPerAxis = 1
	}
	if opts.SamplesPerAxis < 1 {
		return nil, fmt.Errorf("samples per axis must be >= 1, got %d", opts.SamplesPerAxis)
	}
	switch opts.PanelModel {
	case PanelModelPoly, PanelModelSmooth:
	default:
		return nil, fmt.Errorf("unknown panel model %d", opts.PanelModel)
	}

	n := float64(cfg.NumColsFull)
	circumference := n * cfg.Spec.PanelWidthMM
	radius := circumference / (2 * math.Pi)
	// Regular n-gon with side = panel width.
	apothem := cfg.Spec.PanelWidthMM / (2 * math.Tan(math.Pi/n))
	if cfg.NumColsFull == 1 {
		// A single column has no meaningful polygon; fall back to a facet
		// at the panel's distance.
		apothem = radius
	}

	p := &Projector{
		cfg:        cfg,
		opts:       opts,
		radiusMM:   radius,
		apothemMM:  apothem,
		pixelPitch: cfg.Spec.PanelWidthMM / float64(cfg.Spec.PixelsPerPanel),
		colSpanDeg: 360.0 / n,
	}
	p.rotate = buildRotation(opts.YawDeg, opts.PitchDeg, opts.RollDeg)
	return p, nil
}

func buildRotation(yawDeg, pitchDeg, rollDeg float64) func(r3.Vec) r3.Vec {
	if yawDeg == 0 && pitchDeg == 0 && rollDeg == 0 {
		return func(v r3.Vec) r3.Vec { return v }
	}
	yaw := r3.NewRotation(yawDeg*math.Pi/180.0, r3.Vec{Z: 1})
	pitch := r3.NewRotation(pitchDeg*math.Pi/180.0, r3.Vec{X: 1})
	roll := r3.NewRotation(rollDeg*math.Pi/180.0, r3.Vec{Y: 1})
	return func(v r3.Vec) r3.Vec {
		return roll.Rotate(pitch.Rotate(yaw.Rotate(v)))
	}
}

// Project maps a continuous pixel coordinate in the stitched display frame
// to its sphere direction. x runs over installed columns only (dense,
// 0..TotalPixelsX), y runs bottom-up (0..TotalPixelsY); integer pixel i
// spans [i,i+1), so the pixel centre is at i+0.5.
func (p *Projector) Project(x, y float64) Direction {
	if p.cfg.Flipped {
		x = float64(p.cfg.TotalPixelsX()) - x
	}

	px := p.cfg.Spec.PixelsPerPanel
	denseCol := int(x) / px
	if denseCol >= len(p.cfg.ColumnsInstalled) {
		denseCol = len(p.cfg.ColumnsInstalled) - 1
	}
	fullCol := p.cfg.ColumnsInstalled[denseCol]
	inPanelX := x - float64(denseCol*px) // 0..pixelsPerPanel within the panel

	// Height above the cylinder's vertical centre, millimetres.
	z := (y - float64(p.cfg.TotalPixelsY())/2) * p.pixelPitch

	var pos r3.Vec
	switch p.opts.PanelModel {
	case PanelModelSmooth:
		azDeg := p.cfg.AngleOffsetDeg + (float64(fullCol)+inPanelX/float64(px))*p.colSpanDeg
		az := azDeg * math.Pi / 180.0
		pos = r3.Vec{
			X: p.radiusMM * math.Sin(az),
			Y: p.radiusMM * math.Cos(az),
			Z: z,
		}
	default: // PanelModelPoly
		centerAz := (p.cfg.AngleOffsetDeg + (float64(fullCol)+0.5)*p.colSpanDeg) * math.Pi / 180.0
		// Lateral offset along the facet from its centre line.
		u := (inPanelX - float64(px)/2) * p.pixelPitch
		sinAz, cosAz := math.Sin(centerAz), math.Cos(centerAz)
		pos = r3.Vec{
			X: p.apothemMM*sinAz + u*cosAz,
			Y: p.apothemMM*cosAz - u*sinAz,
			Z: z,
		}
	}

	pos = r3.Sub(pos, p.opts.TranslationMM)
	return FromVec(p.rotate(pos))
}

// Samples returns the super-sample directions for integer pixel (x,y):
// an NxN grid of sub-pixel centres, N = SamplesPerAxis.
func (p *Projector) Samples(x, y int) []Direction {
	n := p.opts.SamplesPerAxis
	out := make([]Direction, 0, n*n)
	step := 1.0 / float64(n)
	for j := 0; j < n; j++ {
		sy := float64(y) + (float64(j)+0.5)*step
		for i := 0; i < n; i++ {
			sx := float64(x) + (float64(i)+0.5)*step
			out = append(out, p.Project(sx, sy))
		}
	}
	return out
}

// SamplesPerPixel returns the number of directions Samples yields.
func (p *Projector) SamplesPerPixel() int {
	return p.opts.SamplesPerAxis * p.opts.SamplesPerAxis
}

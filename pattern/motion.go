package pattern

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arena-display/pattern-tools/geom"
)

// motionFrame is the pole-relative coordinate frame a pattern is evaluated
// in. pole is the motion pole; m is the motion direction (unit, orthogonal
// to pole, already rotated by the motion angle); n completes the
// right-handed basis (n = pole x m).
type motionFrame struct {
	pole r3.Vec
	m    r3.Vec
	n    r3.Vec
}

// newMotionFrame builds the coordinate frame for p. In local mode the pole
// is forced to the solid-angle mask centre and MotionAngleDeg rotates the
// motion direction about it; in full-field mode the pole is the explicit
// (PoleAzDeg, PoleElDeg) pair.
func newMotionFrame(p Params) motionFrame {
	var pole r3.Vec
	if p.LocalMode {
		pole = geom.Direction{AzDeg: p.SolidMask.CenterAzDeg, ElDeg: p.SolidMask.CenterElDeg}.Vec()
	} else {
		pole = geom.Direction{AzDeg: p.PoleAzDeg, ElDeg: p.PoleElDeg}.Vec()
	}

	// Reference direction orthogonal to the pole. Up x pole is degenerate
	// when the pole is vertical; fall back to the forward axis.
	up := r3.Vec{Z: 1}
	e1 := r3.Cross(up, pole)
	if r3.Norm(e1) < 1e-9 {
		e1 = r3.Vec{Y: 1}
	}
	e1 = r3.Unit(e1)

	if p.MotionAngleDeg != 0 {
		rot := r3.NewRotation(p.MotionAngleDeg*math.Pi/180.0, pole)
		e1 = rot.Rotate(e1)
	}
	return motionFrame{pole: pole, m: e1, n: r3.Unit(r3.Cross(pole, e1))}
}

// coordinate maps a sample direction to the angular coordinate the pattern
// function is periodic in, in degrees:
//
//	Rotation:    azimuth about the pole axis, [0,360)
//	Translation: latitude with respect to the motion direction, [-90,90]
//	Expansion:   angular distance from the pole, [0,180]
func (f motionFrame) coordinate(motion MotionType, d geom.Direction) float64 {
	v := d.Vec()
	switch motion {
	case Rotation:
		phi := math.Atan2(r3.Dot(v, f.n), r3.Dot(v, f.m)) * 180.0 / math.Pi
		if phi < 0 {
			phi += 360
		}
		return phi
	case Translation:
		return asinDeg(r3.Dot(v, f.m))
	default: // Expansion
		return acosDeg(r3.Dot(v, f.pole))
	}
}

// advanceDot moves a persistent starfield dot by deltaDeg along the motion
// coordinate. All three motions are rotations of the dot direction:
// rotation spins about the pole axis, translation rotates about the axis
// orthogonal to both pole and motion direction, expansion pushes the dot
// along its own meridian away from the pole.
func (f motionFrame) advanceDot(motion MotionType, dot r3.Vec, deltaDeg float64) r3.Vec {
	rad := deltaDeg * math.Pi / 180.0
	switch motion {
	case Rotation:
		return r3.NewRotation(rad, f.pole).Rotate(dot)
	case Translation:
		return r3.NewRotation(rad, f.n).Rotate(dot)
	default: // Expansion
		axis := r3.Cross(f.pole, dot)
		if r3.Norm(axis) < 1e-9 {
			// Dot sits on the pole; expansion direction is undefined,
			// leave it in place.
			return dot
		}
		return r3.NewRotation(rad, r3.Unit(axis)).Rotate(dot)
	}
}

func asinDeg(x float64) float64 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return math.Asin(x) * 180.0 / math.Pi
}

func acosDeg(x float64) float64 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return math.Acos(x) * 180.0 / math.Pi
}

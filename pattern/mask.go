package pattern

import (
	"math"

	"github.com/arena-display/pattern-tools/geom"
)

// visible applies the configured masks to one super-sample. Both masks are
// independent multiplicative predicates: a sample must pass every
// configured mask to show the pattern instead of the background level.
func (p Params) visible(d geom.Direction) bool {
	if m := p.SolidMask; m != nil {
		center := geom.Direction{AzDeg: m.CenterAzDeg, ElDeg: m.CenterElDeg}
		in := geom.AngularDistanceDeg(center, d) <= m.RadiusDeg
		if in == m.Invert {
			return false
		}
	}
	if m := p.RectMask; m != nil {
		in := azWithin(d.AzDeg, m.MinAzDeg, m.MaxAzDeg) &&
			d.ElDeg >= m.MinElDeg && d.ElDeg <= m.MaxElDeg
		if in == m.Invert {
			return false
		}
	}
	return true
}

// azWithin tests an azimuth against bounds that may wrap through 360
// (e.g. min=350, max=10 covers a 20 degree window across north).
func azWithin(az, min, max float64) bool {
	az = wrap360(az)
	min = wrap360(min)
	max = wrap360(max)
	if min <= max {
		return az >= min && az <= max
	}
	return az >= min || az <= max
}

// wrap360 is a floored modulo into [0,360).
func wrap360(a float64) float64 {
	m := math.Mod(a, 360)
	if m < 0 {
		m += 360
	}
	return m
}

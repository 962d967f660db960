package pattern

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arena-display/pattern-tools/geom"
)

// dotField holds the starfield dot directions for one frame.
type dotField struct {
	dots []r3.Vec
}

// buildDotFields computes the per-frame dot fields for a starfield run.
// With ReRandomize off, a single field is drawn from the seed and moved
// with the motion coordinate each frame, so a fixed seed reproduces the
// exact same pixels on every run. With ReRandomize on, every frame draws a
// fresh field from the continuing random sequence.
func buildDotFields(p Params, frame motionFrame, numFrames int) []dotField {
	rng := rand.New(rand.NewSource(p.Star.Seed))
	fields := make([]dotField, numFrames)

	if p.Star.ReRandomize {
		for k := range fields {
			fields[k] = drawDots(rng, p.Star.NumDots)
		}
		return fields
	}

	base := drawDots(rng, p.Star.NumDots)
	for k := range fields {
		delta := frameDelta(k, numFrames, p.SpatialPeriodDeg)
		moved := make([]r3.Vec, len(base.dots))
		for i, d := range base.dots {
			moved[i] = frame.advanceDot(p.Motion, d, delta)
		}
		fields[k] = dotField{dots: moved}
	}
	return fields
}

// drawDots samples dot directions uniformly over the sphere: azimuth
// uniform in [0,360), sine of elevation uniform in [-1,1].
func drawDots(rng *rand.Rand, n int) dotField {
	dots := make([]r3.Vec, n)
	for i := range dots {
		az := rng.Float64() * 360.0
		el := asinDeg(2*rng.Float64() - 1)
		dots[i] = geom.Direction{AzDeg: az, ElDeg: el}.Vec()
	}
	return dotField{dots: dots}
}

// intensityAt evaluates the starfield at one super-sample. Samples covered
// by no dot read Low; overlaps resolve per the occlusion policy.
func (f dotField) intensityAt(d geom.Direction, p Params) float64 {
	v := d.Vec()
	radius := p.Star.DotRadiusDeg
	high := float64(p.Levels.High)

	var (
		hits     int
		sum      float64
		bestDist = math.Inf(1)
		bestVal  float64
	)
	for _, dot := range f.dots {
		dist := acosDeg(r3.Dot(v, dot))
		if dist > radius {
			continue
		}
		hits++
		sum += high
		if dist < bestDist {
			bestDist = dist
			bestVal = high
		}
	}
	if hits == 0 {
		return float64(p.Levels.Low)
	}
	switch p.Star.Occlusion {
	case SumClamped:
		if max := float64(p.Mode.MaxLevel()); sum > max {
			return max
		}
		return sum
	case MeanOverlap:
		return sum / float64(hits)
	default: // ClosestWins
		return bestVal
	}
}

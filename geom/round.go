package geom

import "math"

// RoundHalfUp quantizes an intensity with the canonical rounding rule for
// this toolkit: exact halves round up. Every quantization in the pipeline
// goes through this function; independent implementations must match it
// byte-for-byte, so do not substitute math.Round or banker's rounding here.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

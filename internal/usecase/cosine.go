package usecase

import (
	"math"

	"github.com/viant/vec/search"
)

// MaxDistance is returned whenever a distance cannot be computed.
const MaxDistance = 1.0

// CosineDistance returns 1 - cosine similarity clamped into [0, 1]. Empty,
// mismatched, zero-norm or non-finite inputs yield MaxDistance.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return MaxDistance
	}

	va, vb := search.Float32s(a), search.Float32s(b)
	ma, mb := va.Magnitude(), vb.Magnitude()
	if !usableMagnitude(ma) || !usableMagnitude(mb) {
		return MaxDistance
	}

	d := float64(va.CosineDistanceWithMagnitude(b, ma, mb))
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return MaxDistance
	}
	return math.Max(0, math.Min(MaxDistance, d))
}

func usableMagnitude(m float32) bool {
	f := float64(m)
	return f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

package formulas

import "math"

// MinMaxScale maps values linearly onto [lo, hi] using the finite minimum and
// maximum of the input. NaN entries do not take part in the fit and stay NaN.
// A column with zero range (or a single finite value) maps every finite entry to lo.
func MinMaxScale(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))

	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !IsFinite(v) {
			continue
		}
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	span := maxV - minV
	for i, v := range values {
		switch {
		case !IsFinite(v):
			out[i] = math.NaN()
		case span <= 0:
			out[i] = lo
		default:
			out[i] = lo + (v-minV)/span*(hi-lo)
		}
	}

	return out
}

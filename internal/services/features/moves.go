package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"VolEdge/internal/domain/models"
)

// Magnitudes converts signed earnings moves into absolute percentages, oldest first.
func Magnitudes(samples []models.HistoricalMoveSample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		out = append(out, math.Abs(s.MovePct))
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Median returns the midpoint of xs (average of the two middle values for even n).
// xs is not modified.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MAD is the median absolute deviation from the median.
func MAD(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	med := Median(xs)
	dev := make([]float64, len(xs))
	for i, x := range xs {
		dev[i] = math.Abs(x - med)
	}
	return Median(dev)
}

// Dispersion is MAD divided by the median; 0 when the median is 0.
func Dispersion(xs []float64) float64 {
	med := Median(xs)
	if med == 0 {
		return 0
	}
	return MAD(xs) / med
}

// AllFinite reports whether xs holds no NaN or Inf.
func AllFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

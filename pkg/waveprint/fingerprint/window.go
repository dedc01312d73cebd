package fingerprint

import "math"

// WindowFunc produces an n-point taper that is multiplied into each frame
// before the transform.
type WindowFunc func(n int) []float64

// Hann is the default window. It rolls off to zero at the frame edges,
// which keeps spectral leakage low enough that neighboring bands stay
// distinct.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Hamming is a near-Hann taper that keeps a small pedestal at the edges.
func Hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Rectangular applies no taper at all. Useful for tests and for callers
// that window upstream.
func Rectangular(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

package fingerprint

// Codeword is one fixed-width fingerprint unit. Only the low
// Config.CodewordWidth bits are meaningful, and of those the low
// Config.NumBands-1 bits carry delta signs.
type Codeword uint64

// Sequence is an ordered fingerprint, one codeword per analyzed frame.
type Sequence []Codeword

// Encode turns consecutive feature vectors, as produced by Extract, into
// codewords. Bit i of frame n is set when the energy step from band i to
// band i+1 grew relative to the previous frame:
//
//	(E[n][i] - E[n][i+1]) - (E[n-1][i] - E[n-1][i+1]) > 0
//
// The first frame has no predecessor and keeps its band deltas alone. Only
// the sign survives, so uniform gain on the input leaves the sequence
// unchanged, and a small perturbation can only flip bits whose deltas sit
// near zero. Encoding an empty input yields an empty Sequence; a degenerate
// fingerprint is a valid value, not an error.
func Encode(features [][]float64, cfg Config) Sequence {
	seq := make(Sequence, 0, len(features))
	var prev []float64
	for _, cur := range features {
		var w Codeword
		for i := 0; i < cfg.NumBands-1; i++ {
			delta := cur[i] - cur[i+1]
			if prev != nil {
				delta -= prev[i] - prev[i+1]
			}
			if delta > 0 {
				w |= 1 << uint(i)
			}
		}
		seq = append(seq, w)
		prev = cur
	}
	return seq
}

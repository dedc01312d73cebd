package fingerprint

import "math/bits"

// Result is the outcome of comparing two fingerprint sequences.
type Result struct {
	// Score is the best bitwise agreement across the scanned offsets,
	// within [0, 1].
	Score float64

	// Offset is the frame shift at which Score was found. Positive means
	// the second sequence leads: it carries extra content before the part
	// both sequences share.
	Offset int

	// IsMatch reports Score >= Config.MatchThreshold.
	IsMatch bool

	// NoOverlap is set when no scanned offset aligned any codewords, which
	// happens when either sequence is empty. Score is 0 in that case, but
	// it means "nothing was compared", not "compared and found different".
	NoOverlap bool
}

// OffsetSeconds converts the frame offset into seconds under cfg's hop.
func (r Result) OffsetSeconds(cfg Config) float64 {
	return float64(r.Offset) * float64(cfg.HopLength) / float64(cfg.SampleRate)
}

// Compare slides b against a and scores each alignment by the bitwise
// mismatch rate of the overlapping codewords, returning the best one.
// Offset t pairs a[i] with b[i+t]; the scan covers the full range
// -(len(a)-1) .. len(b)-1 unless cfg.MaxOffset narrows it. Zero-length
// overlaps are skipped, and equal scores resolve to the smallest |t|, so
// comparing a sequence with itself reports offset 0. The scan is
// O(offsets * overlap), fine for clip-sized sequences but not for
// database-scale search.
//
// Compare is commutative up to sign: swapping the arguments returns the
// same score with the offset negated.
func Compare(a, b Sequence, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if len(a) == 0 || len(b) == 0 {
		return Result{NoOverlap: true}, nil
	}

	lo, hi := -(len(a) - 1), len(b)-1
	if cfg.MaxOffset > 0 {
		if lo < -cfg.MaxOffset {
			lo = -cfg.MaxOffset
		}
		if hi > cfg.MaxOffset {
			hi = cfg.MaxOffset
		}
	}

	bitsPerWord := cfg.NumBands - 1
	best := Result{Score: -1}
	for t := lo; t <= hi; t++ {
		start := 0
		if t < 0 {
			start = -t
		}
		end := len(a)
		if n := len(b) - t; n < end {
			end = n
		}
		if end <= start {
			continue
		}

		mismatched := 0
		for i := start; i < end; i++ {
			mismatched += bits.OnesCount64(uint64(a[i] ^ b[i+t]))
		}
		score := 1 - float64(mismatched)/float64((end-start)*bitsPerWord)
		if score > best.Score || (score == best.Score && abs(t) < abs(best.Offset)) {
			best.Score = score
			best.Offset = t
		}
	}
	if best.Score < 0 {
		return Result{NoOverlap: true}, nil
	}

	best.IsMatch = best.Score >= cfg.MatchThreshold
	return best, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

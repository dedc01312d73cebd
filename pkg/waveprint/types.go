package waveprint

import (
	"errors"

	"github.com/jacklion710/waveprint/pkg/waveprint/analysis"
	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

// ErrClipNotFound is returned when a clip ID or name is not registered.
var ErrClipNotFound = errors.New("clip not found")

// Verdict buckets a similarity score into a human-readable label.
type Verdict string

const (
	VerdictIdentical       Verdict = "IDENTICAL"
	VerdictVerySimilar     Verdict = "VERY SIMILAR"
	VerdictSimilar         Verdict = "SIMILAR"
	VerdictSomewhatSimilar Verdict = "SOMEWHAT SIMILAR"
	VerdictSlightlySimilar Verdict = "SLIGHTLY SIMILAR"
	VerdictDifferent       Verdict = "DIFFERENT"
	VerdictNoOverlap       Verdict = "NO OVERLAP"
)

// VerdictFor labels a comparison outcome. A NoOverlap result gets its own
// label because nothing was compared, which is not the same as DIFFERENT.
func VerdictFor(res fingerprint.Result) Verdict {
	switch {
	case res.NoOverlap:
		return VerdictNoOverlap
	case res.Score >= 0.95:
		return VerdictIdentical
	case res.Score >= 0.80:
		return VerdictVerySimilar
	case res.Score >= 0.60:
		return VerdictSimilar
	case res.Score >= 0.40:
		return VerdictSomewhatSimilar
	case res.Score >= 0.20:
		return VerdictSlightlySimilar
	default:
		return VerdictDifferent
	}
}

// Clip represents a registered reference clip.
type Clip struct {
	ID            string // Database ID
	Name          string // Unique display name
	SourcePath    string // Path the clip was ingested from
	DurationMs    int    // Duration in milliseconds
	SampleRate    int    // Sample rate the fingerprint was computed at
	CodewordWidth int    // Significant bits per codeword
	Codewords     int    // Codewords in the stored fingerprint
}

// StoredFingerprint pairs a clip with its serialized codeword sequence.
type StoredFingerprint struct {
	Clip Clip
	Blob []byte
}

// MatchResult ranks one registered clip against a query recording.
type MatchResult struct {
	ClipID        string  // Database ID of the matched clip
	Name          string  // Clip display name
	Score         float64 // Similarity in [0, 1] at the best alignment
	Offset        int     // Best alignment in codewords
	OffsetSeconds float64 // Best alignment in seconds
	IsMatch       bool    // Score reached the configured threshold
	NoOverlap     bool    // No alignment produced an overlap
	Verdict       Verdict // Human-readable score bucket
}

// Report is the outcome of comparing two recordings or fingerprints.
// Characteristics is only populated when the audio itself was at hand.
type Report struct {
	Result          fingerprint.Result
	Verdict         Verdict
	OffsetSeconds   float64
	CodewordsA      int
	CodewordsB      int
	Characteristics *analysis.Breakdown
}

// Stats summarizes what the clip registry currently holds.
type Stats struct {
	Clips            int64 // Registered clips
	FingerprintBytes int64 // Serialized fingerprint volume in bytes
}

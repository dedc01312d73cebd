package main

import (
	"encoding/base64"
	"fmt"
)

// Upload and payload limits
const (
	// MaxUploadBytes caps multipart audio uploads (registration and comparison)
	MaxUploadBytes = 100 << 20

	// MaxQueryUploadBytes caps multipart uploads on the match endpoint
	MaxQueryUploadBytes = 50 << 20

	// MaxFingerprintBlobBytes caps a serialized fingerprint posted as JSON.
	// An hour of audio at the default settings is well under 100 KB.
	MaxFingerprintBlobBytes = 4 << 20
)

// CompareFingerprintsRequest is the request body for POST /api/compare/fingerprints.
// Both fields carry a serialized fingerprint, base64-encoded.
type CompareFingerprintsRequest struct {
	FingerprintA string `json:"fingerprint_a"`
	FingerprintB string `json:"fingerprint_b"`
}

// Validate checks if the request is valid
func (r *CompareFingerprintsRequest) Validate() error {
	if r.FingerprintA == "" || r.FingerprintB == "" {
		return fmt.Errorf("fingerprint_a and fingerprint_b are required")
	}
	if base64.StdEncoding.DecodedLen(len(r.FingerprintA)) > MaxFingerprintBlobBytes {
		return fmt.Errorf("fingerprint_a too large (maximum: %d bytes)", MaxFingerprintBlobBytes)
	}
	if base64.StdEncoding.DecodedLen(len(r.FingerprintB)) > MaxFingerprintBlobBytes {
		return fmt.Errorf("fingerprint_b too large (maximum: %d bytes)", MaxFingerprintBlobBytes)
	}
	return nil
}

// MatchFingerprintRequest is the JSON request body for POST /api/match.
// Fingerprint carries a serialized query fingerprint, base64-encoded.
type MatchFingerprintRequest struct {
	Fingerprint string `json:"fingerprint"`
}

// Validate checks if the request is valid
func (r *MatchFingerprintRequest) Validate() error {
	if r.Fingerprint == "" {
		return fmt.Errorf("fingerprint is required")
	}
	if base64.StdEncoding.DecodedLen(len(r.Fingerprint)) > MaxFingerprintBlobBytes {
		return fmt.Errorf("fingerprint too large (maximum: %d bytes)", MaxFingerprintBlobBytes)
	}
	return nil
}

// ClipDTO represents a registered clip in API responses
type ClipDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SourcePath    string `json:"source_path,omitempty"`
	DurationMs    int    `json:"duration_ms"`
	SampleRate    int    `json:"sample_rate"`
	CodewordWidth int    `json:"codeword_width"`
	Codewords     int    `json:"codewords"`
}

// ListClipsResponse is the response for GET /api/clips
type ListClipsResponse struct {
	Clips []ClipDTO `json:"clips"`
	Count int       `json:"count"`
}

// AddClipResponse is the response for successful clip registration
type AddClipResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

// DeleteClipResponse is the response for DELETE /api/clips/{id}
type DeleteClipResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MatchResultDTO represents a single ranked clip
type MatchResultDTO struct {
	ClipID        string  `json:"clip_id"`
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	Offset        int     `json:"offset"`
	OffsetSeconds float64 `json:"offset_seconds"`
	IsMatch       bool    `json:"is_match"`
	NoOverlap     bool    `json:"no_overlap"`
	Verdict       string  `json:"verdict"`
}

// MatchResponse is the response for POST /api/match
type MatchResponse struct {
	Matches []MatchResultDTO `json:"matches"`
	Count   int              `json:"count"`
}

// FeatureSimilarityDTO is one per-characteristic row in a comparison report
type FeatureSimilarityDTO struct {
	Name       string  `json:"name"`
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	Similarity float64 `json:"similarity"`
}

// CharacteristicsDTO carries the per-characteristic breakdown of a comparison
type CharacteristicsDTO struct {
	Features []FeatureSimilarityDTO `json:"features"`
	Overall  float64                `json:"overall"`
}

// CompareResponse is the response for the comparison endpoints
type CompareResponse struct {
	Score           float64             `json:"score"`
	Offset          int                 `json:"offset"`
	OffsetSeconds   float64             `json:"offset_seconds"`
	IsMatch         bool                `json:"is_match"`
	NoOverlap       bool                `json:"no_overlap"`
	Verdict         string              `json:"verdict"`
	CodewordsA      int                 `json:"codewords_a"`
	CodewordsB      int                 `json:"codewords_b"`
	Characteristics *CharacteristicsDTO `json:"characteristics,omitempty"`
}

// MetricsResponse provides server health and registry metrics
type MetricsResponse struct {
	Status           string `json:"status"`
	DatabasePath     string `json:"database_path"`
	ClipCount        int64  `json:"clip_count"`
	FingerprintBytes int64  `json:"fingerprint_bytes"`
	SampleRate       int    `json:"sample_rate"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

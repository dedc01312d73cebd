package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jacklion710/waveprint/pkg/logger"
	"github.com/jacklion710/waveprint/pkg/utils"
	"github.com/jacklion710/waveprint/pkg/waveprint"
	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service waveprint.Service
	config  *ServerConfig
	log     waveprint.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	MatchThreshold float64
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service waveprint.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// saveUploadedFile writes one multipart file field into the temp dir and
// returns the saved path plus the client's original file name. Callers
// remove the file when done.
func (s *Server) saveUploadedFile(r *http.Request, field string) (string, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	tempFile := utils.TempFilePath(s.config.TempDir, "upload", header.Filename)
	out, err := os.Create(tempFile)
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(tempFile)
		return "", "", fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return tempFile, header.Filename, nil
}

// toCompareResponse maps a comparison report onto its DTO
func toCompareResponse(report *waveprint.Report) CompareResponse {
	resp := CompareResponse{
		Score:         report.Result.Score,
		Offset:        report.Result.Offset,
		OffsetSeconds: report.OffsetSeconds,
		IsMatch:       report.Result.IsMatch,
		NoOverlap:     report.Result.NoOverlap,
		Verdict:       string(report.Verdict),
		CodewordsA:    report.CodewordsA,
		CodewordsB:    report.CodewordsB,
	}

	if report.Characteristics != nil {
		chars := &CharacteristicsDTO{Overall: report.Characteristics.Overall}
		for _, f := range report.Characteristics.Features {
			chars.Features = append(chars.Features, FeatureSimilarityDTO{
				Name:       f.Name,
				A:          f.A,
				B:          f.B,
				Similarity: f.Similarity,
			})
		}
		resp.Characteristics = chars
	}
	return resp
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "waveprint API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":              "GET /health",
			"metrics":             "GET /api/health/metrics",
			"clips":               "GET /api/clips",
			"addClip":             "POST /api/clips",
			"getClip":             "GET /api/clips/{id}",
			"deleteClip":          "DELETE /api/clips/{id}",
			"compareFiles":        "POST /api/compare",
			"compareFingerprints": "POST /api/compare/fingerprints",
			"matchFile":           "POST /api/match",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats()
	if err != nil {
		s.log.Errorf("Failed to read registry stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:           "healthy",
		DatabasePath:     s.config.DBPath,
		ClipCount:        stats.Clips,
		FingerprintBytes: stats.FingerprintBytes,
		SampleRate:       s.config.SampleRate,
	})
}

// handleListClips handles GET /api/clips
func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	clips, err := s.service.ListClips()
	if err != nil {
		s.log.Errorf("Failed to list clips: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve clips")
		return
	}

	clipDTOs := make([]ClipDTO, len(clips))
	for i, clip := range clips {
		clipDTOs[i] = toClipDTO(clip)
	}

	s.respondJSON(w, http.StatusOK, ListClipsResponse{
		Clips: clipDTOs,
		Count: len(clipDTOs),
	})
}

func toClipDTO(clip waveprint.Clip) ClipDTO {
	return ClipDTO{
		ID:            clip.ID,
		Name:          clip.Name,
		SourcePath:    clip.SourcePath,
		DurationMs:    clip.DurationMs,
		SampleRate:    clip.SampleRate,
		CodewordWidth: clip.CodewordWidth,
		Codewords:     clip.Codewords,
	}
}

// handleGetClip handles GET /api/clips/{id}
func (s *Server) handleGetClip(w http.ResponseWriter, r *http.Request, clipID string) {
	clip, err := s.service.GetClipByID(clipID)
	if err != nil {
		if errors.Is(err, waveprint.ErrClipNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Clip %s not found", clipID))
			return
		}
		s.log.Errorf("Failed to get clip %s: %v", clipID, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve clip")
		return
	}

	s.respondJSON(w, http.StatusOK, toClipDTO(*clip))
}

// handleDeleteClip handles DELETE /api/clips/{id}
func (s *Server) handleDeleteClip(w http.ResponseWriter, r *http.Request, clipID string) {
	clip, err := s.service.GetClipByID(clipID)
	if err != nil {
		if errors.Is(err, waveprint.ErrClipNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Clip %s not found", clipID))
			return
		}
		s.log.Errorf("Failed to get clip %s: %v", clipID, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve clip")
		return
	}

	if err := s.service.DeleteClip(clipID); err != nil {
		s.log.Errorf("Failed to delete clip %s: %v", clipID, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete clip")
		return
	}

	s.log.Infof("Deleted clip: %s (ID: %s)", clip.Name, clipID)
	s.respondJSON(w, http.StatusOK, DeleteClipResponse{
		Message: "Clip deleted successfully",
		ID:      clipID,
	})
}

// handleAddClipFile handles POST /api/clips (multipart file upload)
func (s *Server) handleAddClipFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	tempFile, original, err := s.saveUploadedFile(r, "audio")
	if err != nil {
		s.log.Errorf("Upload failed: %v", err)
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tempFile)

	// An explicit name wins; otherwise fall back to the uploaded file name
	// rather than the temp file's mangled one.
	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(original, filepath.Ext(original))
	}

	s.log.Infof("Registering clip from upload: %s", name)
	clipID, err := s.service.AddClip(ctx, tempFile, name)
	if err != nil {
		s.log.Errorf("Failed to add clip: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to add clip: %v", err))
		return
	}

	s.log.Infof("Successfully registered clip: %s (ID: %s)", name, clipID)
	s.respondJSON(w, http.StatusCreated, AddClipResponse{
		Message: "Clip registered successfully",
		ID:      clipID,
		Name:    name,
	})
}

// handleMatchFile handles POST /api/match (multipart file upload)
func (s *Server) handleMatchFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(MaxQueryUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	tempFile, original, err := s.saveUploadedFile(r, "audio")
	if err != nil {
		s.log.Errorf("Upload failed: %v", err)
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tempFile)

	s.log.Infof("Matching uploaded file: %s", original)
	matches, err := s.service.MatchClip(ctx, tempFile)
	if err != nil {
		s.log.Errorf("Failed to match: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to match: %v", err))
		return
	}

	s.log.Infof("Match complete: scored %d clips", len(matches))
	s.respondJSON(w, http.StatusOK, toMatchResponse(matches))
}

// handleMatchFingerprint handles POST /api/match with a JSON body. Clients
// that fingerprint locally post the serialized query instead of audio.
func (s *Server) handleMatchFingerprint(w http.ResponseWriter, r *http.Request) {
	var req MatchFingerprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Errorf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	blob, err := base64.StdEncoding.DecodeString(req.Fingerprint)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "fingerprint is not valid base64")
		return
	}

	query, width, err := fingerprint.Unmarshal(blob)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("fingerprint: %v", err))
		return
	}
	if width != fingerprint.DefaultCodewordWidth {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported codeword width %d, this server compares %d-bit codewords",
				width, fingerprint.DefaultCodewordWidth))
		return
	}

	matches, err := s.service.MatchSequence(query)
	if err != nil {
		s.log.Errorf("Failed to match: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to match fingerprint")
		return
	}

	s.log.Infof("Match complete: scored %d clips against a %d-codeword query", len(matches), len(query))
	s.respondJSON(w, http.StatusOK, toMatchResponse(matches))
}

func toMatchResponse(matches []waveprint.MatchResult) MatchResponse {
	matchDTOs := make([]MatchResultDTO, len(matches))
	for i, match := range matches {
		matchDTOs[i] = MatchResultDTO{
			ClipID:        match.ClipID,
			Name:          match.Name,
			Score:         match.Score,
			Offset:        match.Offset,
			OffsetSeconds: match.OffsetSeconds,
			IsMatch:       match.IsMatch,
			NoOverlap:     match.NoOverlap,
			Verdict:       string(match.Verdict),
		}
	}
	return MatchResponse{
		Matches: matchDTOs,
		Count:   len(matchDTOs),
	}
}

// handleCompareFiles handles POST /api/compare (two multipart audio files)
func (s *Server) handleCompareFiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	pathA, originalA, err := s.saveUploadedFile(r, "audio_a")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(pathA)

	pathB, originalB, err := s.saveUploadedFile(r, "audio_b")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(pathB)

	s.log.Infof("Comparing uploads: %s vs %s", originalA, originalB)
	report, err := s.service.CompareFiles(ctx, pathA, pathB)
	if err != nil {
		s.log.Errorf("Failed to compare: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to compare: %v", err))
		return
	}

	s.respondJSON(w, http.StatusOK, toCompareResponse(report))
}

// handleCompareFingerprints handles POST /api/compare/fingerprints.
// Clients that fingerprint locally (the wasm build does) post two
// serialized fingerprints instead of uploading audio.
func (s *Server) handleCompareFingerprints(w http.ResponseWriter, r *http.Request) {
	var req CompareFingerprintsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Errorf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	blobA, err := base64.StdEncoding.DecodeString(req.FingerprintA)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "fingerprint_a is not valid base64")
		return
	}
	blobB, err := base64.StdEncoding.DecodeString(req.FingerprintB)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "fingerprint_b is not valid base64")
		return
	}

	seqA, widthA, err := fingerprint.Unmarshal(blobA)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("fingerprint_a: %v", err))
		return
	}
	seqB, widthB, err := fingerprint.Unmarshal(blobB)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("fingerprint_b: %v", err))
		return
	}

	if widthA != widthB {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("fingerprints carry different codeword widths: %d and %d", widthA, widthB))
		return
	}
	if widthA != fingerprint.DefaultCodewordWidth {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported codeword width %d, this server compares %d-bit codewords",
				widthA, fingerprint.DefaultCodewordWidth))
		return
	}

	report, err := s.service.CompareSequences(seqA, seqB)
	if err != nil {
		s.log.Errorf("Failed to compare fingerprints: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to compare fingerprints")
		return
	}

	s.log.Infof("Compared posted fingerprints: %d vs %d codewords, score %.4f",
		len(seqA), len(seqB), report.Result.Score)
	s.respondJSON(w, http.StatusOK, toCompareResponse(report))
}

// handleClips routes requests to /api/clips
func (s *Server) handleClips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListClips(w, r)
	case http.MethodPost:
		s.handleAddClipFile(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleClip routes requests to /api/clips/{id}
func (s *Server) handleClip(w http.ResponseWriter, r *http.Request) {
	clipID := r.URL.Path[len("/api/clips/"):]
	if clipID == "" {
		s.respondError(w, http.StatusBadRequest, "Clip ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetClip(w, r, clipID)
	case http.MethodDelete:
		s.handleDeleteClip(w, r, clipID)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// isJSONRequest reports whether the request posts a JSON body rather than a
// multipart upload.
func isJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// handleCompare routes requests to /api/compare. A JSON body carries two
// serialized fingerprints; a multipart body carries two audio files.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if isJSONRequest(r) {
		s.handleCompareFingerprints(w, r)
		return
	}
	s.handleCompareFiles(w, r)
}

// handleCompareFingerprintsRoute routes requests to /api/compare/fingerprints
func (s *Server) handleCompareFingerprintsRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleCompareFingerprints(w, r)
}

// handleMatch routes requests to /api/match. A JSON body carries a serialized
// query fingerprint; a multipart body carries an audio file.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if isJSONRequest(r) {
		s.handleMatchFingerprint(w, r)
		return
	}
	s.handleMatchFile(w, r)
}

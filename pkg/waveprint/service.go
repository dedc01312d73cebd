package waveprint

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jacklion710/waveprint/pkg/logger"
	"github.com/jacklion710/waveprint/pkg/utils"
	"github.com/jacklion710/waveprint/pkg/waveprint/analysis"
	"github.com/jacklion710/waveprint/pkg/waveprint/audio"
	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

// waveprintService is the default implementation of the Service interface.
type waveprintService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Reject a bad engine config up front; nothing downstream clamps
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	// Create or use provided storage
	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &waveprintService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// loadSamples reads an audio file as mono PCM at the engine's sample rate.
// WAV files that already carry the right rate are read directly; anything
// else takes a round trip through ffmpeg.
func (s *waveprintService) loadSamples(ctx context.Context, audioPath string) ([]float64, error) {
	samples, rate, err := audio.ReadWAV(audioPath)
	if err == nil && rate == s.config.Engine.SampleRate {
		return samples, nil
	}

	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: s.config.Engine.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}
	defer utils.DeleteFile(wavPath)

	samples, rate, err = audio.ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted WAV: %w", err)
	}
	if rate != s.config.Engine.SampleRate {
		return nil, fmt.Errorf("converted WAV came back at %d Hz, want %d", rate, s.config.Engine.SampleRate)
	}
	return samples, nil
}

// FingerprintFile reduces an audio file to its codeword sequence.
func (s *waveprintService) FingerprintFile(ctx context.Context, audioPath string) (fingerprint.Sequence, error) {
	samples, err := s.loadSamples(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	return fingerprint.Fingerprint(samples, s.config.Engine)
}

// CompareFiles fingerprints two audio files and reports how alike they are.
func (s *waveprintService) CompareFiles(ctx context.Context, pathA, pathB string) (*Report, error) {
	s.log.Infof("Comparing %s against %s", pathA, pathB)

	// 1. Load both files as mono PCM
	samplesA, err := s.loadSamples(ctx, pathA)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pathA, err)
	}
	samplesB, err := s.loadSamples(ctx, pathB)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pathB, err)
	}

	// 2. Fingerprint both
	seqA, err := fingerprint.Fingerprint(samplesA, s.config.Engine)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s: %w", pathA, err)
	}
	seqB, err := fingerprint.Fingerprint(samplesB, s.config.Engine)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s: %w", pathB, err)
	}

	// 3. Scan alignments for the best similarity
	res, err := fingerprint.Compare(seqA, seqB, s.config.Engine)
	if err != nil {
		return nil, err
	}

	// 4. Describe both signals for the report
	breakdown := analysis.CompareCharacteristics(
		analysis.Analyze(samplesA, s.config.Engine.SampleRate),
		analysis.Analyze(samplesB, s.config.Engine.SampleRate),
	)

	report := &Report{
		Result:          res,
		Verdict:         VerdictFor(res),
		OffsetSeconds:   res.OffsetSeconds(s.config.Engine),
		CodewordsA:      len(seqA),
		CodewordsB:      len(seqB),
		Characteristics: &breakdown,
	}
	s.log.Infof("Similarity %.4f at offset %d (%s)", res.Score, res.Offset, report.Verdict)
	return report, nil
}

// CompareSequences scans two already-computed fingerprints. The report
// carries no signal characteristics because no audio is at hand.
func (s *waveprintService) CompareSequences(a, b fingerprint.Sequence) (*Report, error) {
	res, err := fingerprint.Compare(a, b, s.config.Engine)
	if err != nil {
		return nil, err
	}

	return &Report{
		Result:        res,
		Verdict:       VerdictFor(res),
		OffsetSeconds: res.OffsetSeconds(s.config.Engine),
		CodewordsA:    len(a),
		CodewordsB:    len(b),
	}, nil
}

// AddClip fingerprints an audio file and stores it as a reference clip.
func (s *waveprintService) AddClip(ctx context.Context, audioPath, name string) (string, error) {
	// 1. Resolve a display name: caller's choice, then tags, then filename
	name = strings.TrimSpace(name)
	if name == "" {
		meta := audio.ReadTags(audioPath)
		switch {
		case meta.Artist != "" && meta.Title != "":
			name = meta.Artist + " - " + meta.Title
		case meta.Title != "":
			name = meta.Title
		default:
			base := filepath.Base(audioPath)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	s.log.Infof("Registering clip: %s", name)

	// 2. Load samples
	samples, err := s.loadSamples(ctx, audioPath)
	if err != nil {
		return "", err
	}

	// 3. Fingerprint
	seq, err := fingerprint.Fingerprint(samples, s.config.Engine)
	if err != nil {
		return "", err
	}
	if len(seq) == 0 {
		return "", fmt.Errorf("%s is too short to fingerprint: %d samples, need at least %d",
			audioPath, len(samples), s.config.Engine.FrameLength)
	}

	// 4. Serialize the codewords
	blob, err := fingerprint.Marshal(seq, s.config.Engine.CodewordWidth)
	if err != nil {
		return "", err
	}

	// 5. Register in the database
	durationMs := int(float64(len(samples)) / float64(s.config.Engine.SampleRate) * 1000)
	clipID, err := s.storage.RegisterClip(Clip{
		Name:          name,
		SourcePath:    audioPath,
		DurationMs:    durationMs,
		SampleRate:    s.config.Engine.SampleRate,
		CodewordWidth: s.config.Engine.CodewordWidth,
		Codewords:     len(seq),
	}, blob)
	if err != nil {
		return "", fmt.Errorf("failed to register clip: %w", err)
	}

	s.log.Infof("Registered clip %s with %d codewords", clipID, len(seq))
	return clipID, nil
}

// MatchClip compares a query recording against every registered clip and
// returns the ranking, best score first.
func (s *waveprintService) MatchClip(ctx context.Context, audioPath string) ([]MatchResult, error) {
	s.log.Infof("Matching audio: %s", audioPath)

	// 1. Fingerprint the query
	samples, err := s.loadSamples(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	query, err := fingerprint.Fingerprint(samples, s.config.Engine)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Query has %d codewords", len(query))

	// 2. Score it against the registry
	return s.MatchSequence(query)
}

// MatchSequence compares an already-computed query fingerprint against every
// registered clip and returns the ranking, best score first. The scan is
// linear over the registry. Offsets are those of comparing the query against
// each clip: a query with extra leading content reports a negative offset.
func (s *waveprintService) MatchSequence(query fingerprint.Sequence) ([]MatchResult, error) {
	// 1. Pull every stored fingerprint
	stored, err := s.storage.ListFingerprints()
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}

	// 2. Score the query against each clip
	results := make([]MatchResult, 0, len(stored))
	for _, sf := range stored {
		seq, width, err := fingerprint.Unmarshal(sf.Blob)
		if err != nil {
			s.log.Warnf("Skipping clip %s: undecodable fingerprint: %v", sf.Clip.ID, err)
			continue
		}
		if width != s.config.Engine.CodewordWidth {
			s.log.Warnf("Skipping clip %s: codeword width %d, engine uses %d",
				sf.Clip.ID, width, s.config.Engine.CodewordWidth)
			continue
		}

		res, err := fingerprint.Compare(query, seq, s.config.Engine)
		if err != nil {
			return nil, err
		}

		results = append(results, MatchResult{
			ClipID:        sf.Clip.ID,
			Name:          sf.Clip.Name,
			Score:         res.Score,
			Offset:        res.Offset,
			OffsetSeconds: res.OffsetSeconds(s.config.Engine),
			IsMatch:       res.IsMatch,
			NoOverlap:     res.NoOverlap,
			Verdict:       VerdictFor(res),
		})
	}

	// 3. Rank best first, names break ties
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})

	s.log.Infof("Scored %d clips", len(results))
	return results, nil
}

// GetClipByID retrieves a clip's metadata by its database ID.
func (s *waveprintService) GetClipByID(clipID string) (*Clip, error) {
	return s.storage.GetClipByID(clipID)
}

// ListClips returns all registered clips.
func (s *waveprintService) ListClips() ([]Clip, error) {
	return s.storage.ListClips()
}

// DeleteClip removes a clip and its fingerprint from the database.
func (s *waveprintService) DeleteClip(clipID string) error {
	return s.storage.DeleteClipByID(clipID)
}

// Stats reports registry size for health and metrics endpoints.
func (s *waveprintService) Stats() (Stats, error) {
	clips, err := s.storage.CountClips()
	if err != nil {
		return Stats{}, err
	}
	bytes, err := s.storage.TotalFingerprintBytes()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Clips: clips, FingerprintBytes: bytes}, nil
}

// Close releases all resources held by the service.
func (s *waveprintService) Close() error {
	return s.storage.Close()
}

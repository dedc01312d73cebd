package waveprint

import (
	"context"

	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

type Service interface {
	FingerprintFile(ctx context.Context, audioPath string) (fingerprint.Sequence, error)
	CompareFiles(ctx context.Context, pathA, pathB string) (*Report, error)
	CompareSequences(a, b fingerprint.Sequence) (*Report, error)
	AddClip(ctx context.Context, audioPath, name string) (string, error)
	MatchClip(ctx context.Context, audioPath string) ([]MatchResult, error)
	MatchSequence(query fingerprint.Sequence) ([]MatchResult, error)
	GetClipByID(clipID string) (*Clip, error)
	ListClips() ([]Clip, error)
	DeleteClip(clipID string) error
	Stats() (Stats, error)
	Close() error
}

type Storage interface {
	RegisterClip(clip Clip, blob []byte) (string, error)
	GetClipByID(clipID string) (*Clip, error)
	ListClips() ([]Clip, error)
	ListFingerprints() ([]StoredFingerprint, error)
	DeleteClipByID(clipID string) error
	CountClips() (int64, error)
	TotalFingerprintBytes() (int64, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

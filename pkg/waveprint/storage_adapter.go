package waveprint

import (
	"errors"
	"fmt"

	"github.com/jacklion710/waveprint/pkg/waveprint/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func toDomainClip(c storage.Clip) Clip {
	return Clip{
		ID:            c.ID,
		Name:          c.Name,
		SourcePath:    c.SourcePath,
		DurationMs:    c.DurationMs,
		SampleRate:    c.SampleRate,
		CodewordWidth: c.CodewordWidth,
		Codewords:     c.Codewords,
	}
}

func (s *storageAdapter) RegisterClip(clip Clip, blob []byte) (string, error) {
	return s.db.RegisterClip(storage.Clip{
		Name:          clip.Name,
		SourcePath:    clip.SourcePath,
		DurationMs:    clip.DurationMs,
		SampleRate:    clip.SampleRate,
		CodewordWidth: clip.CodewordWidth,
		Codewords:     clip.Codewords,
		Blob:          blob,
	})
}

func (s *storageAdapter) GetClipByID(clipID string) (*Clip, error) {
	dbClip, err := s.db.GetClipByID(clipID)
	if err != nil {
		if errors.Is(err, storage.ErrClipNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
		}
		return nil, err
	}

	clip := toDomainClip(*dbClip)
	return &clip, nil
}

func (s *storageAdapter) ListClips() ([]Clip, error) {
	dbClips, err := s.db.ListClips()
	if err != nil {
		return nil, err
	}

	clips := make([]Clip, len(dbClips))
	for i, c := range dbClips {
		clips[i] = toDomainClip(c)
	}
	return clips, nil
}

func (s *storageAdapter) ListFingerprints() ([]StoredFingerprint, error) {
	dbClips, err := s.db.ListClips()
	if err != nil {
		return nil, err
	}

	stored := make([]StoredFingerprint, len(dbClips))
	for i, c := range dbClips {
		stored[i] = StoredFingerprint{
			Clip: toDomainClip(c),
			Blob: c.Blob,
		}
	}
	return stored, nil
}

func (s *storageAdapter) DeleteClipByID(clipID string) error {
	if err := s.db.DeleteClipByID(clipID); err != nil {
		if errors.Is(err, storage.ErrClipNotFound) {
			return fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
		}
		return err
	}
	return nil
}

func (s *storageAdapter) CountClips() (int64, error) {
	return s.db.CountClips()
}

func (s *storageAdapter) TotalFingerprintBytes() (int64, error) {
	return s.db.TotalFingerprintBytes()
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

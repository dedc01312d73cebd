//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "waveprint.sqlite3"
const errDBClientNil = "db client is nil"

// ErrClipNotFound is returned when a lookup or delete targets an unknown
// clip ID or name.
var ErrClipNotFound = errors.New("clip not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Clip is one registered fingerprint with its provenance. The serialized
// codewords live inline; a validation library holds clips, not a music
// catalog, so the blob stays small.
type Clip struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Name          string `gorm:"uniqueIndex:idx_clip_name" json:"name"`
	SourcePath    string `json:"source_path"`
	DurationMs    int    `json:"duration_ms"`
	SampleRate    int    `json:"sample_rate"`
	CodewordWidth int    `json:"codeword_width"`
	Codewords     int    `json:"codewords"`
	Blob          []byte `json:"-"`
	CreatedAt     time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("WAVEPRINT_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Clip{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterClip inserts a clip and returns its generated ID. A clip whose
// name is already registered returns the existing row's ID untouched;
// callers who want to replace a clip delete it first.
func (c *DBClient) RegisterClip(clip Clip) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	var existing Clip
	err := c.DB.Select("id").Where("name = ?", clip.Name).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing clip: %w", err)
	}

	clip.ID = uuid.NewString()
	if err := c.DB.Create(&clip).Error; err != nil {
		// Two writers can race past the lookup; on a name collision return
		// whichever row won.
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "constraint failed") {
			if fetchErr := c.DB.Select("id").Where("name = ?", clip.Name).First(&existing).Error; fetchErr != nil {
				return "", fmt.Errorf("fetching clip after constraint violation: %w", fetchErr)
			}
			return existing.ID, nil
		}
		return "", fmt.Errorf("creating clip: %w", err)
	}

	return clip.ID, nil
}

func (c *DBClient) GetClipByID(id string) (*Clip, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var clip Clip
	if err := c.DB.Where("id = ?", id).First(&clip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
		}
		return nil, fmt.Errorf("querying clip: %w", err)
	}
	return &clip, nil
}

func (c *DBClient) GetClipByName(name string) (*Clip, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var clip Clip
	if err := c.DB.Where("name = ?", name).First(&clip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrClipNotFound, name)
		}
		return nil, fmt.Errorf("querying clip: %w", err)
	}
	return &clip, nil
}

// ListClips returns every registered clip, blobs included, oldest first.
func (c *DBClient) ListClips() ([]Clip, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var clips []Clip
	if err := c.DB.Order("created_at").Find(&clips).Error; err != nil {
		return nil, fmt.Errorf("listing clips: %w", err)
	}
	return clips, nil
}

func (c *DBClient) DeleteClipByID(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	res := c.DB.Where("id = ?", id).Delete(&Clip{})
	if res.Error != nil {
		return fmt.Errorf("deleting clip: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	return nil
}

func (c *DBClient) CountClips() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}

	var count int64
	if err := c.DB.Model(&Clip{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting clips: %w", err)
	}
	return count, nil
}

// TotalFingerprintBytes reports the stored fingerprint volume, for metrics.
func (c *DBClient) TotalFingerprintBytes() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}

	var total sql.NullInt64
	err := c.DB.Model(&Clip{}).Select("SUM(LENGTH(blob))").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("summing fingerprint bytes: %w", err)
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Int64, nil
}

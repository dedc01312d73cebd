package waveprint

import (
	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

type Config struct {
	DBPath  string
	TempDir string
	Engine  fingerprint.Config
	Logger  Logger
	Storage Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.Engine.SampleRate = rate
	}
}

func WithMatchThreshold(threshold float64) Option {
	return func(c *Config) {
		c.Engine.MatchThreshold = threshold
	}
}

func WithMaxOffset(codewords int) Option {
	return func(c *Config) {
		c.Engine.MaxOffset = codewords
	}
}

func WithEngineConfig(engine fingerprint.Config) Option {
	return func(c *Config) {
		c.Engine = engine
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:  "waveprint.sqlite3",
		TempDir: "/tmp",
		Engine:  fingerprint.DefaultConfig(),
		Logger:  nil,
	}
}

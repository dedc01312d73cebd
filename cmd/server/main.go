//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jacklion710/waveprint/pkg/waveprint"
	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	matchThreshold float64
	allowedOrigins string
)

func init() {
	// Pull in a .env file when present so its values can seed flag defaults.
	_ = godotenv.Load()

	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("WAVEPRINT_DB_PATH", "waveprint.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("WAVEPRINT_TEMP_DIR", "/tmp"), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", fingerprint.DefaultSampleRate, "Audio sample rate")
	flag.Float64Var(&matchThreshold, "threshold", fingerprint.DefaultMatchThreshold, "Similarity score required to call two clips a match")
	flag.StringVar(&allowedOrigins, "origins", getEnvOrDefault("WAVEPRINT_CORS_ORIGINS", "*"), "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	// Create waveprint service
	service, err := waveprint.NewService(
		waveprint.WithDBPath(dbPath),
		waveprint.WithTempDir(tempDir),
		waveprint.WithSampleRate(sampleRate),
		waveprint.WithMatchThreshold(matchThreshold),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	// Create server configuration
	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		MatchThreshold: matchThreshold,
		AllowedOrigins: origins,
	}

	// Create and start server
	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

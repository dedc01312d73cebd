package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MakeDir creates a directory with all parent directories.
func MakeDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// DeleteFile removes a file.
func DeleteFile(path string) error {
	return os.Remove(path)
}

// MoveFile moves or renames a file.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file from %s to %s: %w", src, dst, err)
	}
	return nil
}

// TempFilePath builds a collision-resistant scratch path inside dir, keeping
// the original file name visible for debugging.
func TempFilePath(dir, prefix, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), filepath.Base(name)))
}

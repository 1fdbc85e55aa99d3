// Package fsutil holds file helpers shared by the repositories.
package fsutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// WriteFileAtomic writes data to a temporary file next to path and renames it
// over path, so readers never observe a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err = tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err = tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// ToEpoch converts t to fractional Unix seconds; the zero time becomes 0.
func ToEpoch(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}

	return float64(t.UnixMicro()) / float64(time.Second/time.Microsecond)
}

// FromEpoch converts fractional Unix seconds back to a time with microsecond
// precision; 0 and negative values become the zero time.
func FromEpoch(seconds float64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}

	micros := math.Round(seconds * float64(time.Second/time.Microsecond))

	return time.UnixMicro(int64(micros))
}

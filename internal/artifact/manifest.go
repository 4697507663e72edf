package artifact

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrChecksumMismatch = errors.New("checksum mismatch")

type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

// Save writes data to path through a temporary file and a rename,
// so readers never observe a partially written file.
func Save[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	checksum, err := calculateChecksum(data)
	if err != nil {
		return err
	}
	entry := Entry[T]{
		Data:      data,
		CreatedAt: time.Now().UTC(),
		Checksum:  checksum,
	}

	jsonData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads an entry written by Save and verifies its checksum.
func Load[T any](path string) (T, error) {
	var zero T
	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, err
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	expected, err := calculateChecksum(entry.Data)
	if err != nil {
		return zero, err
	}
	if entry.Checksum != expected {
		return zero, fmt.Errorf("%w: %s", ErrChecksumMismatch, path)
	}
	return entry.Data, nil
}

func calculateChecksum[T any](data T) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checksum payload: %w", err)
	}
	hash := md5.Sum(jsonData)
	return hex.EncodeToString(hash[:]), nil
}

// Manifest records what one analysis run produced.
type Manifest struct {
	RunID           string            `json:"run_id"`
	Artifacts       map[string]string `json:"artifacts"`
	DisplayLimit    float64           `json:"display_limit"`
	DifferenceStd   float64           `json:"difference_std"`
	Amplified       bool              `json:"amplified"`
	AmplifiedLimit  float64           `json:"amplified_limit,omitempty"`
	DegenerateBands []string          `json:"degenerate_bands,omitempty"`
}

package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const artifactPrefix = "run-"

// ArtifactStore keeps interactive build executables outside the scratch
// directory so they survive the build's cleanup. Entries older than the
// retention window are swept whenever a new build occurs, bounding disk
// growth from abandoned sessions.
type ArtifactStore struct {
	dir string
	ttl time.Duration
	log *slog.Logger
}

func NewArtifactStore(dir string, ttl time.Duration, log *slog.Logger) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &ArtifactStore{dir: dir, ttl: ttl, log: log}, nil
}

// Place copies the executable at src into the store under a fresh name
// and returns the durable path.
func (s *ArtifactStore) Place(src string) (string, error) {
	dst := filepath.Join(s.dir, artifactPrefix+uuid.NewString())

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open executable: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return dst, nil
}

// Sweep removes artifacts older than the retention window and reports
// how many were removed.
func (s *ArtifactStore) Sweep() int {
	cutoff := time.Now().Add(-s.ttl)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn("failed to read artifact directory", "error", err)
		return 0
	}

	removed := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), artifactPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed
}

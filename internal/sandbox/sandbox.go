package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sandbox provisions a private working directory for one judge instance.
// It only isolates on the filesystem level; real OS isolation (namespaces,
// cgroups, seccomp) is expected to be layered on by the deployment.
type Sandbox struct {
	dir string
}

// New creates the working directory with input/ and output/ subpaths.
func New() (*Sandbox, error) {
	dir, err := os.MkdirTemp("", "judge-box-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox directory: %w", err)
	}
	s := &Sandbox{dir: dir}
	for _, sub := range []string{s.InputDir(), s.OutputDir()} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to create sandbox subdirectory: %w", err)
		}
	}
	return s, nil
}

func (s *Sandbox) Dir() string {
	return s.dir
}

func (s *Sandbox) InputDir() string {
	return filepath.Join(s.dir, "input")
}

func (s *Sandbox) OutputDir() string {
	return filepath.Join(s.dir, "output")
}

// IsSecure reports whether the working directory still exists and is a
// directory. This is a minimal liveness check, not a security guarantee.
func (s *Sandbox) IsSecure() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// Close removes the working directory recursively. Safe to call twice.
func (s *Sandbox) Close() error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clean up sandbox directory: %w", err)
	}
	return nil
}

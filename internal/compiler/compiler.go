package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/programme-lv/judge/internal/config"
	"github.com/programme-lv/judge/internal/timer"
	"github.com/puzpuzpuz/xsync/v3"
)

// Compiler turns source text into a cached, size-bounded native
// executable. Each instance owns a private scratch directory; the
// on-disk cache directory is shared across instances and processes.
type Compiler struct {
	cfg config.Config
	log *slog.Logger

	scratch   string
	cacheRoot string // cache dir scoped by toolchain fingerprint
	locks     *xsync.MapOf[string, *sync.Mutex]
	artifacts *ArtifactStore
}

// Artifact is a successfully built executable.
type Artifact struct {
	Path        string
	SizeBytes   int64
	CompileTime time.Duration
	CacheHit    bool
}

func New(cfg config.Config, log *slog.Logger) (*Compiler, error) {
	scratch, err := os.MkdirTemp("", "judge-compile-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create compiler scratch directory: %w", err)
	}

	cacheRoot := filepath.Join(cfg.CacheDir, toolchainFingerprint(cfg))
	if err := os.MkdirAll(cacheRoot, 0755); err != nil {
		_ = os.RemoveAll(scratch)
		return nil, fmt.Errorf("failed to create compile cache directory: %w", err)
	}

	artifacts, err := NewArtifactStore(cfg.ArtifactDir, cfg.ArtifactTTL(), log)
	if err != nil {
		_ = os.RemoveAll(scratch)
		return nil, err
	}

	return &Compiler{
		cfg:       cfg,
		log:       log,
		scratch:   scratch,
		cacheRoot: cacheRoot,
		locks:     xsync.NewMapOf[string, *sync.Mutex](),
		artifacts: artifacts,
	}, nil
}

// Close removes the private scratch directory. Cache and run artifacts
// stay on disk; they outlive the instance on purpose.
func (c *Compiler) Close() error {
	return os.RemoveAll(c.scratch)
}

// Compile builds code for the given language and returns the executable
// artifact. A cache hit bypasses the toolchain entirely.
func (c *Compiler) Compile(ctx context.Context, code string, langName string) (*Artifact, error) {
	lang, err := resolveLanguage(langName)
	if err != nil {
		return nil, err
	}
	if int64(len(code)) > c.cfg.MaxSourceBytes {
		return nil, errSourceTooLarge(int64(len(code)), c.cfg.MaxSourceBytes)
	}

	key := cacheKey(code, lang.id)
	mu, _ := c.locks.LoadOrStore(key, &sync.Mutex{})
	mu.Lock()
	defer mu.Unlock()

	if path, ok := c.restoreFromCache(key); ok {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat cached executable: %w", err)
		}
		c.log.Debug("compile cache hit", "key", key)
		return &Artifact{Path: path, SizeBytes: info.Size(), CacheHit: true}, nil
	}

	t := timer.StartNew()
	srcPath := filepath.Join(c.scratch, key+lang.srcExt)
	exePath := filepath.Join(c.scratch, key)
	if err := os.WriteFile(srcPath, []byte(code), 0644); err != nil {
		return nil, fmt.Errorf("failed to write source file: %w", err)
	}

	args := append([]string{"-o", exePath, srcPath}, lang.flags...)
	size, err := c.runToolchainIn(ctx, "", lang, args)
	if err != nil {
		return nil, err
	}

	if err := c.populateCache(key, exePath); err != nil {
		// best effort: a cache copy failure must not fail a build
		// that already succeeded
		c.log.Warn("failed to populate compile cache", "key", key, "error", err)
	}

	c.log.Debug("compiled submission",
		"key", key, "lang", lang.id, "size_bytes", size, "took", t.Elapsed())
	return &Artifact{Path: exePath, SizeBytes: size, CompileTime: t.Elapsed()}, nil
}

// runToolchainIn invokes the toolchain under the compile timeout and
// applies the executable size ceiling. args must contain "-o <exePath>".
func (c *Compiler) runToolchainIn(ctx context.Context, dir string, lang *language, args []string) (int64, error) {
	cctx, cancel := context.WithTimeout(ctx, c.cfg.CompileTimeout())
	defer cancel()

	cmd := exec.CommandContext(cctx, c.toolchainFor(lang), args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cctx.Err() == context.DeadlineExceeded {
		return 0, errCompile(
			fmt.Sprintf("compilation timed out after %s", c.cfg.CompileTimeout()),
			stderr.String())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return 0, errCompile("compilation failed", stderr.String())
		}
		return 0, errEnv("failed to invoke toolchain", err)
	}

	exePath := exeArg(args)
	info, err := os.Stat(exePath)
	if err != nil {
		return 0, errCompile("toolchain produced no executable", stderr.String())
	}
	if info.Size() > c.cfg.MaxExecutableBytes {
		_ = os.Remove(exePath)
		return 0, errExecutableTooLarge(info.Size(), c.cfg.MaxExecutableBytes)
	}
	if err := os.Chmod(exePath, 0755); err != nil {
		return 0, fmt.Errorf("failed to mark executable: %w", err)
	}
	return info.Size(), nil
}

func exeArg(args []string) string {
	for i, a := range args {
		if a == "-o" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func (c *Compiler) toolchainFor(lang *language) string {
	if lang.isCxx {
		return c.cfg.CXX
	}
	return c.cfg.CC
}

// CheckToolchain verifies the configured compilers are invocable.
// A failure here is a deployment fault, not a submission fault.
func (c *Compiler) CheckToolchain(ctx context.Context) error {
	for _, bin := range []string{c.cfg.CC, c.cfg.CXX} {
		cmd := exec.CommandContext(ctx, bin, "--version")
		if err := cmd.Run(); err != nil {
			return errEnv(fmt.Sprintf("toolchain %q is not invocable", bin), err)
		}
	}
	return nil
}

package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/timer"
)

// BuildProject compiles an ordered set of named files for interactive
// use. The executable is relocated into the durable run-artifact store
// before the ephemeral build directory is discarded; stale artifacts are
// swept on every build.
func (c *Compiler) BuildProject(ctx context.Context, files []api.CodeFile, langName string) (*Artifact, error) {
	lang, err := resolveLanguage(langName)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errCompile("no files provided", "")
	}

	buildDir, err := os.MkdirTemp(c.scratch, "build-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create build directory: %w", err)
	}
	defer os.RemoveAll(buildDir)

	t := timer.StartNew()
	var sources []string
	for _, f := range files {
		if int64(len(f.Content)) > c.cfg.MaxSourceBytes {
			return nil, errSourceTooLarge(int64(len(f.Content)), c.cfg.MaxSourceBytes)
		}
		rel := filepath.Clean(filepath.FromSlash(f.Filename))
		if rel == "" || !filepath.IsLocal(rel) {
			return nil, errCompile(fmt.Sprintf("invalid filename: %s", f.Filename), "")
		}
		dst := filepath.Join(buildDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return nil, fmt.Errorf("failed to create file directory: %w", err)
		}
		if err := os.WriteFile(dst, []byte(f.Content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write file %s: %w", f.Filename, err)
		}
		ext := strings.ToLower(filepath.Ext(rel))
		if lang.sources.Contains(ext) {
			sources = append(sources, rel)
		}
	}
	if len(sources) == 0 {
		return nil, errCompile("no source files found", "")
	}

	exePath := filepath.Join(buildDir, "program")
	args := append(sources, "-o", exePath)
	args = append(args, lang.flags...)
	size, err := c.runToolchainIn(ctx, buildDir, lang, args)
	if err != nil {
		return nil, err
	}

	if n := c.artifacts.Sweep(); n > 0 {
		c.log.Debug("swept stale run artifacts", "count", n)
	}
	durable, err := c.artifacts.Place(exePath)
	if err != nil {
		return nil, fmt.Errorf("failed to store run artifact: %w", err)
	}

	return &Artifact{Path: durable, SizeBytes: size, CompileTime: t.Elapsed()}, nil
}

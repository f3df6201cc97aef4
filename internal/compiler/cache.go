package compiler

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/judge/internal/config"
)

// Cache entries are keyed by (content hash of source, language) and live
// under a directory scoped by a fingerprint of the toolchain and its flag
// set, so changing flags invalidates prior entries instead of serving
// stale binaries. Entries are stored zstd-compressed; a hit decompresses
// into the instance's private scratch directory.
//
// Writes are content-addressed and idempotent, so concurrent population
// by multiple processes is a benign last-writer-wins race of identical
// bytes.

func cacheKey(code, langID string) string {
	sum := sha256.Sum256([]byte(code))
	return fmt.Sprintf("%x_%s", sum, langID)
}

func toolchainFingerprint(cfg config.Config) string {
	h := sha256.New()
	io.WriteString(h, cfg.CC)
	io.WriteString(h, "\x00")
	io.WriteString(h, cfg.CXX)
	io.WriteString(h, "\x00")
	io.WriteString(h, strings.Join(langC.flags, " "))
	io.WriteString(h, "\x00")
	io.WriteString(h, strings.Join(langCpp.flags, " "))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

func (c *Compiler) cacheEntryPath(key string) string {
	return filepath.Join(c.cacheRoot, key+".zst")
}

// restoreFromCache materializes the cached executable for key in the
// scratch directory and returns its path, or false on a miss.
func (c *Compiler) restoreFromCache(key string) (string, bool) {
	dst := filepath.Join(c.scratch, key)
	if _, err := os.Stat(dst); err == nil {
		return dst, true
	}

	entry, err := os.Open(c.cacheEntryPath(key))
	if err != nil {
		return "", false
	}
	defer entry.Close()

	dec, err := zstd.NewReader(entry)
	if err != nil {
		return "", false
	}
	defer dec.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return "", false
	}
	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		c.log.Warn("failed to restore cache entry, recompiling", "key", key, "error", err)
		return "", false
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", false
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", false
	}
	return dst, true
}

// populateCache compresses the executable into the shared cache.
func (c *Compiler) populateCache(key, exePath string) error {
	src, err := os.Open(exePath)
	if err != nil {
		return fmt.Errorf("failed to open executable: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(c.cacheRoot, key+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return err
	}
	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("failed to compress executable: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), c.cacheEntryPath(key)); err != nil {
		return fmt.Errorf("failed to move entry into cache: %w", err)
	}
	return nil
}

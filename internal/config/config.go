package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the engine's resource ceilings and toolchain setup.
// Values come from defaults, optionally a TOML file, then env overrides.
type Config struct {
	CC  string `toml:"cc"`  // C toolchain binary
	CXX string `toml:"cxx"` // C++ toolchain binary

	MaxSourceBytes     int64 `toml:"max_source_bytes"`
	MaxExecutableBytes int64 `toml:"max_executable_bytes"`
	CompileTimeoutMs   int64 `toml:"compile_timeout_ms"`

	CacheDir       string `toml:"cache_dir"`
	ArtifactDir    string `toml:"artifact_dir"`
	ArtifactTTLMin int64  `toml:"artifact_ttl_min"`

	SampleIntervalMs int64 `toml:"sample_interval_ms"`
}

func Default() Config {
	return Config{
		CC:                 "gcc",
		CXX:                "g++",
		MaxSourceBytes:     256 * 1024,
		MaxExecutableBytes: 64 * 1024 * 1024,
		CompileTimeoutMs:   15000,
		CacheDir:           defaultCacheDir(),
		ArtifactDir:        filepath.Join(os.TempDir(), "judge-artifacts"),
		ArtifactTTLMin:     30,
		SampleIntervalMs:   30,
	}
}

// Load reads a TOML config file over the defaults. An empty path
// returns the defaults with env overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JUDGE_CC"); v != "" {
		c.CC = v
	}
	if v := os.Getenv("JUDGE_CXX"); v != "" {
		c.CXX = v
	}
	if v := os.Getenv("JUDGE_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("JUDGE_ARTIFACT_DIR"); v != "" {
		c.ArtifactDir = v
	}
}

func (c Config) CompileTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutMs) * time.Millisecond
}

func (c Config) ArtifactTTL() time.Duration {
	return time.Duration(c.ArtifactTTLMin) * time.Minute
}

func (c Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMs) * time.Millisecond
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "judge", "bin")
}

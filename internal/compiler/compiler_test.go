package compiler_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/programme-lv/judge/internal/compiler"
	"github.com/programme-lv/judge/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubToolchain writes a fake cc binary that records each invocation to
// countFile and produces a small runnable script as its "-o" target.
func stubToolchain(t *testing.T, countFile string) string {
	t.Helper()
	body := `#!/bin/sh
echo run >> "` + countFile + `"
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
printf '#!/bin/sh\necho built\n' > "$out"
chmod +x "$out"
`
	path := filepath.Join(t.TempDir(), "fake-cc")
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func failingToolchain(t *testing.T) string {
	t.Helper()
	body := "#!/bin/sh\necho 'main.c:1:1: dreadful mistake' >&2\nexit 1\n"
	path := filepath.Join(t.TempDir(), "fake-cc-fail")
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func invocationCount(t *testing.T, countFile string) int {
	t.Helper()
	data, err := os.ReadFile(countFile)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(data), "run")
}

func testConfig(t *testing.T, cc string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.CC = cc
	cfg.CXX = cc
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.ArtifactDir = filepath.Join(t.TempDir(), "artifacts")
	return cfg
}

func TestCompileProducesExecutable(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	cfg := testConfig(t, stubToolchain(t, countFile))

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	art, err := c.Compile(context.Background(), "int main(){}", "c")
	require.NoError(t, err)
	require.False(t, art.CacheHit)
	require.Greater(t, art.SizeBytes, int64(0))
	require.FileExists(t, art.Path)

	info, err := os.Stat(art.Path)
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&0100)
	require.Equal(t, 1, invocationCount(t, countFile))
}

func TestCompileCacheSkipsToolchain(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	cfg := testConfig(t, stubToolchain(t, countFile))

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Compile(context.Background(), "int main(){}", "c")
	require.NoError(t, err)
	require.Equal(t, 1, invocationCount(t, countFile))

	art, err := c.Compile(context.Background(), "int main(){}", "c")
	require.NoError(t, err)
	require.True(t, art.CacheHit)
	require.Equal(t, 1, invocationCount(t, countFile))

	// a fresh instance with an empty scratch restores from the shared
	// on-disk cache instead of recompiling
	c2, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c2.Close()

	art, err = c2.Compile(context.Background(), "int main(){}", "c")
	require.NoError(t, err)
	require.True(t, art.CacheHit)
	require.FileExists(t, art.Path)
	require.Equal(t, 1, invocationCount(t, countFile))
}

func TestCompileDistinctLanguagesMissCache(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	cfg := testConfig(t, stubToolchain(t, countFile))

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Compile(context.Background(), "int main(){}", "c")
	require.NoError(t, err)
	_, err = c.Compile(context.Background(), "int main(){}", "cpp")
	require.NoError(t, err)
	require.Equal(t, 2, invocationCount(t, countFile))
}

func TestCompileLanguageSynonyms(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	cfg := testConfig(t, stubToolchain(t, countFile))

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	// CPP and C++ resolve to the same target and share one cache key
	_, err = c.Compile(context.Background(), "int main(){}", "CPP")
	require.NoError(t, err)
	art, err := c.Compile(context.Background(), "int main(){}", "C++")
	require.NoError(t, err)
	require.True(t, art.CacheHit)
	require.Equal(t, 1, invocationCount(t, countFile))
}

func TestCompileUnsupportedLanguage(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	cfg := testConfig(t, stubToolchain(t, countFile))

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Compile(context.Background(), "print(1)", "python")
	require.Error(t, err)
	require.Equal(t, compiler.KindUnsupportedLanguage, compiler.KindOf(err))
	require.Equal(t, 0, invocationCount(t, countFile))
}

func TestCompileSourceTooLarge(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	cfg := testConfig(t, stubToolchain(t, countFile))
	cfg.MaxSourceBytes = 16

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Compile(context.Background(), strings.Repeat("x", 17), "c")
	require.Error(t, err)
	require.Equal(t, compiler.KindSourceTooLarge, compiler.KindOf(err))
	require.Equal(t, 0, invocationCount(t, countFile))
}

func TestCompileExecutableTooLarge(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	cfg := testConfig(t, stubToolchain(t, countFile))
	cfg.MaxExecutableBytes = 4

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Compile(context.Background(), "int main(){}", "c")
	require.Error(t, err)
	require.Equal(t, compiler.KindExecutableTooLarge, compiler.KindOf(err))
}

func TestCompileFailureCarriesDiagnostics(t *testing.T) {
	cfg := testConfig(t, failingToolchain(t))

	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Compile(context.Background(), "int main(){", "c")
	require.Error(t, err)
	require.Equal(t, compiler.KindCompile, compiler.KindOf(err))
	require.Contains(t, err.Error(), "dreadful mistake")
}

func TestCheckToolchain(t *testing.T) {
	cfg := testConfig(t, "/bin/true")
	c, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.CheckToolchain(context.Background()))

	cfg.CC = filepath.Join(t.TempDir(), "missing")
	bad, err := compiler.New(cfg, discardLogger())
	require.NoError(t, err)
	defer bad.Close()

	err = bad.CheckToolchain(context.Background())
	require.Error(t, err)
	require.Equal(t, compiler.KindEnv, compiler.KindOf(err))
}
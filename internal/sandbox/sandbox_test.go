package sandbox_test

import (
	"os"
	"testing"

	"github.com/programme-lv/judge/internal/sandbox"
	"github.com/stretchr/testify/require"
)

func TestSandboxLifecycle(t *testing.T) {
	s, err := sandbox.New()
	require.NoError(t, err)

	require.True(t, s.IsSecure())
	require.DirExists(t, s.InputDir())
	require.DirExists(t, s.OutputDir())

	require.NoError(t, s.Close())
	require.False(t, s.IsSecure())
	_, err = os.Stat(s.Dir())
	require.True(t, os.IsNotExist(err))

	// second close is a no-op
	require.NoError(t, s.Close())
}

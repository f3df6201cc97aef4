package timer_test

import (
	"testing"
	"time"

	"github.com/programme-lv/judge/internal/timer"
	"github.com/stretchr/testify/require"
)

func TestTimerLifecycle(t *testing.T) {
	tm := timer.New()
	require.False(t, tm.IsRunning())
	require.Equal(t, int64(0), tm.ElapsedMs())

	tm.Start()
	require.True(t, tm.IsRunning())
	time.Sleep(20 * time.Millisecond)
	require.GreaterOrEqual(t, tm.ElapsedMs(), int64(15))

	tm.Reset()
	require.False(t, tm.IsRunning())
	require.Equal(t, int64(0), tm.ElapsedMs())
}

func TestMeasure(t *testing.T) {
	d := timer.Measure(func() {
		time.Sleep(10 * time.Millisecond)
	})
	require.GreaterOrEqual(t, d, 10*time.Millisecond)
}

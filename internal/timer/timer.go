package timer

import "time"

// Timer measures elapsed wall-clock time on the monotonic clock.
type Timer struct {
	start   time.Time
	running bool
}

func New() *Timer {
	return &Timer{}
}

// StartNew returns an already running timer.
func StartNew() *Timer {
	t := New()
	t.Start()
	return t
}

func (t *Timer) Start() {
	t.start = time.Now()
	t.running = true
}

func (t *Timer) Reset() {
	t.start = time.Time{}
	t.running = false
}

func (t *Timer) IsRunning() bool {
	return t.running
}

func (t *Timer) Elapsed() time.Duration {
	if !t.running {
		return 0
	}
	return time.Since(t.start)
}

func (t *Timer) ElapsedMs() int64 {
	return t.Elapsed().Milliseconds()
}

// Measure runs f and returns how long it took.
func Measure(f func()) time.Duration {
	start := time.Now()
	f()
	return time.Since(start)
}

package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/timer"
	"golang.org/x/sync/errgroup"
)

// TimeLimitExceeded is the exact error text reported on a wall-clock
// timeout. The judge matches it verbatim when deriving submission status.
const TimeLimitExceeded = "Time limit exceeded"

const defaultSampleInterval = 30 * time.Millisecond

// drainGrace bounds how long the output drains may outlive the child.
// An orphaned descendant can inherit the pipe write ends and hold them
// open past the child's death; after the grace the read ends are cut so
// the drains return.
const drainGrace = 100 * time.Millisecond

// Params configure one Executor. An Executor is scoped to a single
// test-case run and discarded after producing its result.
type Params struct {
	TimeLimit time.Duration
	// MemoryLimitMB is informational telemetry context only; memory is
	// sampled, not enforced as a kill threshold.
	MemoryLimitMB  int64
	SampleInterval time.Duration
	WorkDir        string
}

type Executor struct {
	p   Params
	log *slog.Logger
}

func New(p Params, log *slog.Logger) *Executor {
	if p.SampleInterval <= 0 {
		p.SampleInterval = defaultSampleInterval
	}
	return &Executor{p: p, log: log}
}

// Execute runs the executable against input under the wall-clock limit.
// The target program's own failures are encoded in the result; an error
// is never returned to the caller.
//
// The stdin write, both output drains and the memory sampler all run
// concurrently and are joined on every exit path. The time limit races
// process exit, never drain completion: a child that closes its own
// stdout/stderr and keeps running must still be killed at the limit, and
// a child that exits cleanly must not be charged for an orphan holding
// its pipes. Pipes are created manually so cmd.Wait is safe to run while
// the drains are still reading.
func (e *Executor) Execute(ctx context.Context, exePath string, input []byte) api.ExecutionResult {
	cmd := exec.Command(exePath)
	cmd.Dir = e.p.WorkDir
	cmd.SysProcAttr = sysProcAttr()

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return spawnFailure(err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW)
		return spawnFailure(err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW)
		return spawnFailure(err)
	}
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	t := timer.StartNew()
	if err := cmd.Start(); err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW, stderrR, stderrW)
		return spawnFailure(err)
	}
	// the child holds its own duplicates now; keeping ours open would
	// stop the drains from ever seeing EOF
	closeAll(stdinR, stdoutW, stderrW)
	pid := cmd.Process.Pid

	var peakKiB atomic.Int64
	samplerStop := make(chan struct{})
	samplerDone := make(chan struct{})
	go func() {
		defer close(samplerDone)
		e.samplePeakMemory(pid, &peakKiB, samplerStop)
	}()

	var outBuf, errBuf bytes.Buffer
	g := new(errgroup.Group)
	g.Go(func() error {
		// A write error here means the child exited without consuming
		// its input; that is the child's business, not a run failure.
		_, _ = stdinW.Write(input)
		_ = stdinW.Close()
		return nil
	})
	g.Go(func() error {
		_, _ = io.Copy(&outBuf, stdoutR)
		return nil
	})
	g.Go(func() error {
		_, _ = io.Copy(&errBuf, stderrR)
		return nil
	})

	drained := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(drained)
	}()

	joinDrains := func() {
		select {
		case <-drained:
		case <-time.After(drainGrace):
			closeAll(stdinW, stdoutR, stderrR)
			<-drained
		}
		closeAll(stdoutR, stderrR)
	}

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	timedOut := false
	canceled := false
	var waitErr error
	select {
	case waitErr = <-waitCh:
	case <-time.After(e.p.TimeLimit):
		timedOut = true
	case <-ctx.Done():
		canceled = true
	}
	elapsedMs := t.ElapsedMs()

	if timedOut || canceled {
		killProcessGroup(pid)
		_ = cmd.Process.Kill()
		<-waitCh // reap before reporting
	}
	joinDrains()
	close(samplerStop)
	<-samplerDone
	peak := peakKiB.Load()

	if timedOut {
		e.log.Debug("execution hit wall-clock limit",
			"limit", e.p.TimeLimit, "peak_mem_kib", peak)
		return api.ExecutionResult{
			Success:       false,
			Error:         strPtr(TimeLimitExceeded),
			ExecutionTime: elapsedMs,
			MemoryUsage:   peak,
		}
	}
	if canceled {
		return api.ExecutionResult{
			Success:       false,
			Error:         strPtr(fmt.Sprintf("Execution canceled: %v", ctx.Err())),
			ExecutionTime: elapsedMs,
			MemoryUsage:   peak,
		}
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return api.ExecutionResult{
				Success:       false,
				Error:         strPtr(fmt.Sprintf("Process error: %v", waitErr)),
				ExecutionTime: elapsedMs,
			}
		}
	}

	success := cmd.ProcessState.Success()
	var errStr *string
	if !success && errBuf.Len() > 0 {
		errStr = strPtr(errBuf.String())
	}
	return api.ExecutionResult{
		Success:       success,
		Output:        outBuf.String(),
		Error:         errStr,
		ExecutionTime: elapsedMs,
		MemoryUsage:   peak,
	}
}

// samplePeakMemory tracks the running maximum of the child's resident
// set size until stop closes. A process that exits within the first
// interval reports zero; that is an accepted best-effort limitation.
func (e *Executor) samplePeakMemory(pid int, peak *atomic.Int64, stop <-chan struct{}) {
	ticker := time.NewTicker(e.p.SampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			kib, ok := residentMemKiB(pid)
			if ok && kib > peak.Load() {
				peak.Store(kib)
			}
		}
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func spawnFailure(err error) api.ExecutionResult {
	return api.ExecutionResult{
		Success: false,
		Error:   strPtr(fmt.Sprintf("Failed to start process: %v", err)),
	}
}

func strPtr(s string) *string {
	return &s
}

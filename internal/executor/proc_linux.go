//go:build linux

package executor

import (
	"bytes"
	"os"
	"strconv"
	"syscall"
)

// The child runs in its own process group so a timeout kill also reaps
// anything it forked. Pdeathsig covers the engine dying mid-run.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

func killProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// residentMemKiB reads the resident set size from /proc/<pid>/statm.
// Sampler reads never mutate process state.
func residentMemKiB(pid int) (int64, bool) {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/statm")
	if err != nil {
		return 0, false
	}
	fields := bytes.Fields(data)
	if len(fields) < 2 {
		return 0, false
	}
	pages, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0, false
	}
	return pages * int64(os.Getpagesize()) / 1024, true
}

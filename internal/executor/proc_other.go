//go:build !linux

package executor

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// Without process groups only the direct child is killed; cmd.Process.Kill
// in the caller covers that.
func killProcessGroup(pid int) {}

// Memory sampling is unavailable off Linux; results report zero.
func residentMemKiB(pid int) (int64, bool) {
	return 0, false
}

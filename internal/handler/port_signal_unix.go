//go:build darwin || linux

package handler

import (
	"errors"
	"syscall"
)

// terminateProcess sends SIGTERM so the listener can shut down
// cleanly. A process that already exited counts as terminated.
func terminateProcess(pid int) error {
	if pid <= 1 {
		return errors.New("refusing to signal pid <= 1")
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return err
	}
	return nil
}

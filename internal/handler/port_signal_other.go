//go:build !darwin && !linux

package handler

import (
	"errors"
	"os"
)

func terminateProcess(pid int) error {
	if pid <= 1 {
		return errors.New("refusing to signal pid <= 1")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return err
	}
	return nil
}

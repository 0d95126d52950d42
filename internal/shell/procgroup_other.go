//go:build !darwin && !linux

package shell

import "os/exec"

// setProcGroup is a no-op where process sessions are unavailable; the
// context cancellation still kills the direct child.
func setProcGroup(cmd *exec.Cmd) {}

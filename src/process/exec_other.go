//go:build !linux

package process

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so a timeout kill
// takes any grandchildren with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killGroup signals the whole process group rooted at cmd.
func killGroup(cmd *exec.Cmd, sig syscall.Signal) {
	syscall.Kill(-cmd.Process.Pid, sig)
}

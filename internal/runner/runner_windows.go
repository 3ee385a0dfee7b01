//go:build windows

package runner

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

// Windows has no SIGTERM to send, so a stop kills at once.
func terminate(cmd *exec.Cmd) { _ = cmd.Process.Kill() }

func kill(cmd *exec.Cmd) { _ = cmd.Process.Kill() }

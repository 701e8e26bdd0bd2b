//go:build windows

package infrastructure

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr keeps console interrupts aimed at us away from yt-dlp;
// cancellation kills the process
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

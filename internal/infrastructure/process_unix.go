//go:build !windows

package infrastructure

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr starts yt-dlp in its own process group and makes
// cancellation signal the whole group, so ffmpeg children stop too
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true, // Create new process group
		Pgid:    0,    // Use the new process's PID as PGID
	}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
}

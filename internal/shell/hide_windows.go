//go:build windows

package shell

import (
	"os/exec"
	"syscall"
)

// hideWindow keeps console tools from flashing a window when the library is
// loaded by a GUI host.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}

//go:build windows

package autostart

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

func CheckElevation(mode Mode) error {
	if mode == UserMode {
		return nil
	}
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return fmt.Errorf("cannot check elevation: %w", err)
	}
	defer token.Close()

	if !token.IsElevated() {
		return fmt.Errorf("installing the service requires Administrator privileges\n\nFrom an elevated prompt run:\n  %s autostart install", os.Args[0])
	}
	return nil
}

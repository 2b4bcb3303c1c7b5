//go:build !linux && !darwin && !windows

package autostart

import "github.com/Guliveer/hwprobe/internal/shell"

// New reports ErrUnsupported.
func New(Mode, shell.Runner) (Manager, error) { return nil, ErrUnsupported }

// Package shell runs OS utilities and captures their output.
// Every command is bounded by a timeout so a hung tool cannot block a
// reporter indefinitely.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single command when none is configured.
const DefaultTimeout = 10 * time.Second

// pipeWaitDelay bounds how long Output waits for inherited pipes to close
// after the command is killed or exits. Helpers spawned by system_profiler or
// powershell can otherwise hold stdout open past the timeout.
const pipeWaitDelay = 500 * time.Millisecond

// Runner executes a command and returns its trimmed stdout.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates an Exec runner. A zero timeout selects DefaultTimeout.
func New(timeout time.Duration, logger *zap.Logger) *Exec {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{Timeout: timeout, Logger: logger}
}

// Output runs name with args and returns stdout with trailing whitespace
// removed. A non-zero exit status is reported as an error that carries the
// first line of stderr.
func (e *Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = pipeWaitDelay
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if e.Logger != nil {
		e.Logger.Debug("Command finished",
			zap.String("cmd", name),
			zap.Strings("args", args),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: timed out after %s", name, timeout)
		}
		msg := firstLine(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimRight(stdout.String(), " \t\r\n"), nil
}

// PowerShell runs a PowerShell script without loading the user profile.
func PowerShell(ctx context.Context, r Runner, script string) (string, error) {
	return r.Output(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

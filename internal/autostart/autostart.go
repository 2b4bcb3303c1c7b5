// Package autostart registers `hwprobe serve` with the platform service
// manager: systemd on Linux, launchd on macOS and the Service Control
// Manager on Windows.
package autostart

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ServiceName identifies the installed service on every platform.
const ServiceName = "hwprobe"

// launchdLabel is the launchd job label on macOS.
const launchdLabel = "dev.hwprobe.serve"

// ErrUnsupported is returned on platforms without a service manager backend.
var ErrUnsupported = errors.New("autostart not supported on this platform")

// Mode determines whether the service is installed system-wide or per-user.
type Mode int

const (
	SystemMode Mode = iota // System-wide service (requires root/admin)
	UserMode               // Per-user service/agent
)

func (m Mode) String() string {
	switch m {
	case SystemMode:
		return "system"
	case UserMode:
		return "user"
	default:
		return "unknown"
	}
}

// ParseMode parses "system" or "user".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "system":
		return SystemMode, nil
	case "user":
		return UserMode, nil
	default:
		return 0, fmt.Errorf("invalid install mode %q (expected \"system\" or \"user\")", s)
	}
}

// Spec describes the command the service runs.
type Spec struct {
	// ExecPath is the absolute path of the hwprobe binary.
	ExecPath string
	// ConfigPath is passed as --config when set.
	ConfigPath string
}

// Args returns the arguments after the executable.
func (s Spec) Args() []string {
	args := []string{"serve"}
	if s.ConfigPath != "" {
		args = append(args, "--config", s.ConfigPath)
	}
	return args
}

// Manager provides platform-specific autostart installation.
type Manager interface {
	IsInstalled() (bool, error)
	Install(spec Spec) error
	Uninstall() error
	ServiceName() string
}

// systemdUnitTemplate is the unit file written during installation.
// {execStart} and {wantedBy} are replaced when rendering.
const systemdUnitTemplate = `[Unit]
Description=hwprobe hardware telemetry API
After=network.target

[Service]
Type=simple
ExecStart={execStart}
Restart=on-failure
RestartSec=10
StandardOutput=journal
StandardError=journal
SyslogIdentifier=hwprobe

# Security hardening
NoNewPrivileges=true
PrivateTmp=true

[Install]
WantedBy={wantedBy}
`

// systemdUnit renders the unit file for spec.
func systemdUnit(spec Spec, mode Mode) string {
	parts := []string{quoteSystemd(spec.ExecPath)}
	for _, a := range spec.Args() {
		parts = append(parts, quoteSystemd(a))
	}
	wantedBy := "multi-user.target"
	if mode == UserMode {
		wantedBy = "default.target"
	}
	unit := strings.ReplaceAll(systemdUnitTemplate, "{execStart}", strings.Join(parts, " "))
	return strings.ReplaceAll(unit, "{wantedBy}", wantedBy)
}

// quoteSystemd double-quotes an ExecStart word containing whitespace or
// quotes.
func quoteSystemd(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

const launchdPlistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{label}</string>
    <key>ProgramArguments</key>
    <array>
{arguments}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{logDir}/hwprobe.stdout.log</string>
    <key>StandardErrorPath</key>
    <string>{logDir}/hwprobe.stderr.log</string>
</dict>
</plist>
`

// launchdPlist renders the job definition for spec, logging under logDir.
func launchdPlist(spec Spec, logDir string) string {
	var args []string
	for _, a := range append([]string{spec.ExecPath}, spec.Args()...) {
		args = append(args, "        <string>"+html.EscapeString(a)+"</string>")
	}
	plist := strings.ReplaceAll(launchdPlistTemplate, "{label}", launchdLabel)
	plist = strings.ReplaceAll(plist, "{arguments}", strings.Join(args, "\n"))
	return strings.ReplaceAll(plist, "{logDir}", html.EscapeString(logDir))
}

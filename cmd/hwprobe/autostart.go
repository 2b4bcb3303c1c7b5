package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/autostart"
	"github.com/Guliveer/hwprobe/internal/shell"
)

// serviceCommandTimeout bounds each systemctl/launchctl invocation.
const serviceCommandTimeout = 30 * time.Second

func autostartCmd(a *app) *cobra.Command {
	var user bool

	manager := func() (autostart.Manager, autostart.Mode, error) {
		mode := autostart.SystemMode
		if user {
			mode = autostart.UserMode
		}
		m, err := autostart.New(mode, shell.New(serviceCommandTimeout, a.logger.Named("shell")))
		return m, mode, err
	}

	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Install or remove `hwprobe serve` as a system service",
	}
	cmd.PersistentFlags().BoolVar(&user, "user", false, "manage a per-user service instead of a system-wide one")

	install := &cobra.Command{
		Use:   "install",
		Short: "Register and start the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, mode, err := manager()
			if err != nil {
				return err
			}
			if err := autostart.CheckElevation(mode); err != nil {
				return err
			}
			spec, err := a.serviceSpec(cmd)
			if err != nil {
				return err
			}
			if err := m.Install(spec); err != nil {
				return fmt.Errorf("installing %s: %w", m.ServiceName(), err)
			}
			a.logger.Info("Service installed",
				zap.String("service", m.ServiceName()),
				zap.String("mode", mode.String()),
				zap.Strings("args", spec.Args()))
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s (%s)\n", m.ServiceName(), mode)
			return nil
		},
	}

	uninstall := &cobra.Command{
		Use:   "uninstall",
		Short: "Stop and remove the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, mode, err := manager()
			if err != nil {
				return err
			}
			if err := autostart.CheckElevation(mode); err != nil {
				return err
			}
			if err := m.Uninstall(); err != nil {
				return fmt.Errorf("uninstalling %s: %w", m.ServiceName(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%s)\n", m.ServiceName(), mode)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether the service is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, mode, err := manager()
			if err != nil {
				return err
			}
			ok, err := m.IsInstalled()
			if err != nil {
				return err
			}
			state := "not installed"
			if ok {
				state = "installed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", m.ServiceName(), mode, state)
			return nil
		},
	}

	cmd.AddCommand(install, uninstall, status)
	return cmd
}

// serviceSpec describes the running binary. An explicit --config is made
// absolute so the service finds it regardless of its working directory.
func (a *app) serviceSpec(cmd *cobra.Command) (autostart.Spec, error) {
	exe, err := os.Executable()
	if err != nil {
		return autostart.Spec{}, fmt.Errorf("resolving executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	spec := autostart.Spec{ExecPath: exe}
	if cmd.Flags().Changed("config") && a.configPath != "" {
		abs, err := filepath.Abs(a.configPath)
		if err != nil {
			return autostart.Spec{}, fmt.Errorf("resolving config path: %w", err)
		}
		spec.ConfigPath = abs
	}
	return spec, nil
}

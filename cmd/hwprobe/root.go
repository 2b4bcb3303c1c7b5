package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/config"
	"github.com/Guliveer/hwprobe/internal/logging"
	"github.com/Guliveer/hwprobe/internal/render"
	"github.com/Guliveer/hwprobe/internal/report"
)

// app carries the state shared by all subcommands.
type app struct {
	embedded   []byte
	configPath string
	logLevel   string
	pretty     bool

	cfg     *config.Config
	logger  *zap.Logger
	reports *report.Service
}

func newRootCmd(embedded []byte) *cobra.Command {
	a := &app{embedded: embedded}

	root := &cobra.Command{
		Use:           "hwprobe",
		Short:         "hwprobe - hardware and OS telemetry as JSON",
		Long:          `hwprobe reports battery, CPU, GPU, disk, memory, OS, process, fan, network and temperature information as JSON documents.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path (default: HWPROBE_CONFIG or the standard locations)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "render documents as tables")

	root.AddCommand(reportCmds(a)...)
	root.AddCommand(
		pathCmd(a, "disk", "Capacity of the volume holding path", a.diskUsage),
		pathCmd(a, "volume", "File system details of the volume holding path", a.volume),
		pathCmd(a, "disk-speed", "Sequential read/write benchmark in path", a.diskSpeed),
		usageCmd(a),
		snapshotCmd(a),
		watchCmd(a),
		historyCmd(a),
		serveCmd(a),
		configCmd(a),
		autostartCmd(a),
	)
	return root
}

// init loads configuration and builds the logger. The report service is
// created on first use so config subcommands never touch the hardware.
func (a *app) init(cmd *cobra.Command) error {
	cli := config.CLIOverrides{LogLevel: a.logLevel}

	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.LoadLayered(cli, a.embedded, a.configPath)
	} else {
		cfg, err = config.LoadLayered(cli, a.embedded)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Logging, cmd.ErrOrStderr())
	return nil
}

func (a *app) service() *report.Service {
	if a.reports == nil {
		a.reports = report.New(a.cfg, a.logger)
	}
	return a.reports
}

func (a *app) diskUsage(ctx context.Context, path string) string {
	return a.service().DiskUsage(ctx, path)
}

func (a *app) volume(ctx context.Context, path string) string {
	return a.service().Volume(ctx, path)
}

func (a *app) diskSpeed(ctx context.Context, path string) string {
	return a.service().DiskSpeed(ctx, path)
}

// print writes doc as-is, or as a table with --pretty.
func (a *app) print(w io.Writer, title, doc string) error {
	if a.pretty {
		return render.Write(w, title, doc)
	}
	_, err := fmt.Fprintln(w, doc)
	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func (a *app) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			a.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

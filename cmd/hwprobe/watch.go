package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/buffer"
	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/scheduler"
)

func watchCmd(a *app) *cobra.Command {
	var (
		archive  bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a snapshot at a fixed interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = a.cfg.Watch.Interval.Duration
			}
			out := cmd.OutOrStdout()

			sched := scheduler.New(a.service(), interval, a.logger.Named("scheduler"))
			sched.OnSnapshot(func(snap models.Snapshot) {
				data, err := json.Marshal(snap)
				if err != nil {
					a.logger.Error("Failed to encode snapshot", zap.Error(err))
					return
				}
				if err := a.print(out, snap.Timestamp.Format(time.RFC3339), string(data)); err != nil {
					a.logger.Warn("Failed to print snapshot", zap.Error(err))
				}
			})

			if archive {
				buf, err := buffer.New(a.cfg.Watch.ArchiveDir, a.cfg.Watch.ArchiveMaxMB, a.logger.Named("archive"))
				if err != nil {
					return err
				}
				sched.OnSnapshot(func(snap models.Snapshot) {
					if err := buf.Store(snap); err != nil {
						a.logger.Error("Failed to archive snapshot", zap.Error(err))
					}
				})
				a.logger.Info("Archiving snapshots",
					zap.String("dir", buf.Dir()),
					zap.Int("max_mb", a.cfg.Watch.ArchiveMaxMB))
			}

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()

			a.logger.Info("Watching", zap.Duration("interval", interval))
			sched.Start(ctx)
			a.logger.Info("Watch stopped", zap.Int("snapshots", sched.Count()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "store each snapshot in the archive directory")
	cmd.Flags().DurationVar(&interval, "interval", 0, "snapshot interval (default: watch.interval)")
	return cmd
}

func historyCmd(a *app) *cobra.Command {
	var drain bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print archived snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := buffer.New(a.cfg.Watch.ArchiveDir, a.cfg.Watch.ArchiveMaxMB, a.logger.Named("archive"))
			if err != nil {
				return err
			}

			var snaps []models.Snapshot
			if drain {
				snaps, err = buf.Drain()
			} else {
				snaps, err = buf.Load()
			}
			if err != nil {
				return err
			}

			if !a.pretty {
				data, err := json.Marshal(snaps)
				if err != nil {
					return fmt.Errorf("encoding history: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			for _, snap := range snaps {
				data, err := json.Marshal(snap)
				if err != nil {
					return fmt.Errorf("encoding snapshot: %w", err)
				}
				if err := a.print(cmd.OutOrStdout(), snap.Timestamp.Format(time.RFC3339), string(data)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&drain, "drain", false, "remove the snapshots after printing")
	return cmd
}

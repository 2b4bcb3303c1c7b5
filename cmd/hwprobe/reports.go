package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// reportCommands lists the argument-free reports with their help text.
var reportCommands = []struct {
	name  string
	short string
}{
	{"battery", "Battery charge, status and health"},
	{"cpu", "Processor description, temperature and utilization"},
	{"gpu", "Display adapters"},
	{"disks", "Physical disks with partitions and throughput"},
	{"ram", "Physical memory, swap and module layout"},
	{"os", "Operating system, host and uptime"},
	{"processes", "Running processes ordered by CPU usage"},
	{"apps", "Installed applications"},
	{"fans", "Fan speeds"},
	{"network", "Network interfaces and traffic"},
	{"temperature", "CPU and GPU temperatures"},
}

func reportCmds(a *app) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(reportCommands))
	for _, rc := range reportCommands {
		name := rc.name
		cmds = append(cmds, &cobra.Command{
			Use:   name,
			Short: rc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				doc := a.service().JSON(cmd.Context(), name)
				return a.print(cmd.OutOrStdout(), name, doc)
			},
		})
	}
	return cmds
}

// pathCmd builds a report command taking an optional path argument. An
// omitted path selects the configured default.
func pathCmd(a *app, name, short string, fn func(context.Context, string) string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [path]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return a.print(cmd.OutOrStdout(), name, fn(cmd.Context(), path))
		},
	}
}

func usageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "usage cpu|gpu|fan",
		Short:     "Print CPU or GPU utilization percentage, or fan RPM",
		ValidArgs: []string{"cpu", "gpu", "fan"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var v float64
			switch args[0] {
			case "cpu":
				v = a.service().CPUUsage(ctx)
			case "gpu":
				v = a.service().GPUUsage(ctx)
			case "fan":
				v = a.service().FanSpeed(ctx)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), formatScalar(v))
			return err
		},
	}
}

// formatScalar prints v as JSON would.
func formatScalar(v float64) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "0"
	}
	return string(data)
}

func snapshotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Collect every fast report once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(cmd.OutOrStdout(), "snapshot", a.service().SnapshotJSON(cmd.Context()))
		},
	}
}

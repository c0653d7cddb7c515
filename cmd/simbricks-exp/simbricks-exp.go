// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"github.com/onosproject/onos-lib-go/pkg/cli"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/catalog"
	"github.com/simbricks/simbricks-exp/pkg/channel"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"github.com/simbricks/simbricks-exp/pkg/fabric"
	"github.com/simbricks/simbricks-exp/pkg/netgraph"
	"github.com/simbricks/simbricks-exp/pkg/topo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
	"google.golang.org/grpc"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
)

const (
	serviceAddress = "fabric-sim:5150"

	experimentFlag = "experiment"
	recipeFlag     = "recipe"
	outputFlag     = "output"
	workDirFlag    = "workdir"
	shmDirFlag     = "shmdir"
	agentPortFlag  = "agent-port"
	metricsFlag    = "metrics"
)

// The main entry point
func main() {
	if err := getRootCommand().Execute(); err != nil {
		println(err)
		os.Exit(1)
	}
}

func getRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simbricks-exp {list, show, validate, generate, analyze, plan, load, clear}",
		Short: "Inspect, generate and load simulation experiments",
	}
	cmd.AddCommand(getListCommand())
	cmd.AddCommand(getShowCommand())
	cmd.AddCommand(getValidateCommand())
	cmd.AddCommand(getGenerateCommand())
	cmd.AddCommand(getAnalyzeCommand())
	cmd.AddCommand(getPlanCommand())
	cmd.AddCommand(getLoadCommand())
	cmd.AddCommand(getClearCommand())
	return cmd
}

// Returns a registry holding all built-in experiments
func newRegistry() (*experiment.Registry, error) {
	registry := experiment.NewRegistry()
	if err := catalog.Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// Resolves the experiment named by the argument, or loaded from the experiment YAML file flag
func getExperiment(cmd *cobra.Command, args []string) (*experiment.Experiment, error) {
	if len(args) == 1 {
		registry, err := newRegistry()
		if err != nil {
			return nil, err
		}
		return registry.Get(args[0])
	}
	path, _ := cmd.Flags().GetString(experimentFlag)
	e, err := topo.LoadExperiment(path)
	if err != nil {
		return nil, err
	}
	if err := e.Seal(); err != nil {
		return nil, err
	}
	return e, nil
}

func addExperimentFlag(cmd *cobra.Command) {
	cmd.Flags().String(experimentFlag, "-", "experiment YAML file, used when no experiment name is given; use - for stdin (default)")
}

func getListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the built-in experiments",
		Args:    cobra.NoArgs,
		RunE:    runListCommand,
	}
}

func runListCommand(cmd *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range registry.List() {
		_, _ = fmt.Fprintf(out, "%s\thosts=%d\tnics=%d\tnetworks=%d\tcheckpoint=%t\n",
			e.Name, len(e.Hosts()), len(e.NICs()), len(e.Networks()), e.Checkpoint)
	}
	return nil
}

func getShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print an experiment as an experiment YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShowCommand,
	}
	addExperimentFlag(cmd)
	return cmd
}

func runShowCommand(cmd *cobra.Command, args []string) error {
	e, err := getExperiment(cmd, args)
	if err != nil {
		return err
	}
	return topo.WriteExperiment(topo.DescribeExperiment(e), cmd.OutOrStdout())
}

func getValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [name]",
		Short: "Check an experiment for structural errors",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidateCommand,
	}
	addExperimentFlag(cmd)
	return cmd
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	e, err := getExperiment(cmd, args)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Experiment %s is valid\n", e.Name)
	return err
}

func getGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate an experiment YAML file from an experiment recipe YAML file",
		Args:    cobra.NoArgs,
		RunE:    runGenerateCommand,
	}
	cmd.Flags().String(recipeFlag, "-", "experiment recipe YAML file; use - for stdin (default)")
	cmd.Flags().String(outputFlag, "-", "output experiment YAML file; use - for stdout (default)")
	return cmd
}

func runGenerateCommand(cmd *cobra.Command, args []string) error {
	recipePath, _ := cmd.Flags().GetString(recipeFlag)
	outputPath, _ := cmd.Flags().GetString(outputFlag)
	return topo.GenerateExperiment(recipePath, outputPath)
}

func getAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [name]",
		Short: "Report host-to-host latencies and latency mismatches of an experiment",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyzeCommand,
	}
	addExperimentFlag(cmd)
	cmd.Flags().String(metricsFlag, "", "also write the analysis as Prometheus metrics to this text file")
	return cmd
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	e, err := getExperiment(cmd, args)
	if err != nil {
		return err
	}
	g, err := netgraph.Build(e)
	if err != nil {
		return err
	}
	report := g.Report()
	if path, _ := cmd.Flags().GetString(metricsFlag); path != "" {
		metrics := netgraph.NewMetrics()
		metrics.Observe(report)
		if err := metrics.WriteToTextfile(path); err != nil {
			return err
		}
	}

	pairs := make([]netgraph.Pair, 0, len(report.Latencies))
	for pair := range report.Latencies {
		pairs = append(pairs, pair)
	}
	slices.SortFunc(pairs, func(a, b netgraph.Pair) int {
		if c := strings.Compare(a.Src, b.Src); c != 0 {
			return c
		}
		return strings.Compare(a.Dst, b.Dst)
	})

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Experiment %s\n", report.Experiment)
	for _, pair := range pairs {
		_, _ = fmt.Fprintf(out, "%s -> %s: %d\n", pair.Src, pair.Dst, report.Latencies[pair])
	}
	for _, pair := range report.Unreachable {
		_, _ = fmt.Fprintf(out, "%s -> %s: unreachable\n", pair.Src, pair.Dst)
	}
	for _, mismatch := range report.Mismatches {
		_, _ = fmt.Fprintf(out, "latency mismatch: %s\n", mismatch)
	}
	return nil
}

func getPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [name]",
		Short: "Print the sockets and shared memory regions of every NIC simulator of an experiment",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlanCommand,
	}
	addExperimentFlag(cmd)
	cmd.Flags().String(workDirFlag, "/tmp/simbricks", "directory holding the simulator sockets")
	cmd.Flags().String(shmDirFlag, "/dev/shm", "directory holding the shared memory regions")
	return cmd
}

func runPlanCommand(cmd *cobra.Command, args []string) error {
	e, err := getExperiment(cmd, args)
	if err != nil {
		return err
	}
	workDir, _ := cmd.Flags().GetString(workDirFlag)
	shmDir, _ := cmd.Flags().GetString(shmDirFlag)
	plan, err := channel.Plan(e, workDir, shmDir)
	if err != nil {
		return err
	}
	buffer, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(buffer)
	return err
}

func getLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "load [name]",
		Aliases: []string{"start"},
		Short:   "Load an experiment topology into the fabric simulator",
		Args:    cobra.MaximumNArgs(1),
		RunE:    runLoadCommand,
	}
	cli.AddEndpointFlags(cmd, serviceAddress)
	addExperimentFlag(cmd)
	cmd.Flags().Int32(agentPortFlag, 20000, "first agent port of the simulated switches")
	return cmd
}

func runLoadCommand(cmd *cobra.Command, args []string) error {
	e, err := getExperiment(cmd, args)
	if err != nil {
		return err
	}
	agentPort, _ := cmd.Flags().GetInt32(agentPortFlag)
	if agentPort <= 0 {
		return errors.NewInvalid("Agent port must be positive")
	}
	conn, err := cli.GetConnection(cmd)
	if err != nil {
		return err
	}
	defer closeConnection(conn)
	return fabric.LoadExperiment(context.Background(), conn, e, agentPort)
}

func getClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clear",
		Aliases: []string{"stop"},
		Short:   "Clear all simulated hosts and devices from the fabric simulator",
		Args:    cobra.NoArgs,
		RunE:    runClearCommand,
	}
	cli.AddEndpointFlags(cmd, serviceAddress)
	return cmd
}

func runClearCommand(cmd *cobra.Command, args []string) error {
	conn, err := cli.GetConnection(cmd)
	if err != nil {
		return err
	}
	defer closeConnection(conn)
	return fabric.ClearExperiment(context.Background(), conn)
}

func closeConnection(conn *grpc.ClientConn) {
	_ = conn.Close()
}

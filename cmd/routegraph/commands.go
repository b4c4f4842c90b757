package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/routegraph/internal/core"
)

func newLookupCmd(a *app) *cobra.Command {
	var (
		location string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Print the interface addresses of a data center, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if location == "" {
				location = a.cfg.Lookup.Location
			}
			if location == "" {
				return &configError{err: fmt.Errorf("no location given (use --location or lookup.location)")}
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			records, err := a.runner().Lookup(ctx, a.cfg.Graph, location)
			if err != nil {
				return err
			}
			return core.WriteRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "data center location to match (default lookup.location)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for connect and query (0 for none)")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Merge a topology file into the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := core.LoadTopology(file)
			if err != nil {
				return &configError{err: err}
			}

			stats, err := a.runner().Seed(cmd.Context(), a.cfg.Graph, *topo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d datacenters, %d routers, %d interfaces\n",
				stats.DataCenters, stats.Routers, stats.Interfaces)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "config/topology.toml", "topology TOML file")
	return cmd
}

func newIndicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "Create the lookup indices if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runner().BuildIndices(cmd.Context(), a.cfg.Graph)
		},
	}
}

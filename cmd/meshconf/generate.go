package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render and write configs for every node",
		Long: `Render and write configs for every node.

Examples:
  # nodes/*.wg -> conf_output/*.conf
  meshconf generate

  # print configs instead of writing them
  meshconf generate --dry-run

  # read definitions from Consul KV and store configs back there
  meshconf generate --source consul --sink consul --consul-addr 10.0.0.5:8500`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd.Context(), cmd.OutOrStdout(), dryRun)
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print configs to stdout instead of writing them")
	return cmd
}

func (a *app) generate(ctx context.Context, out io.Writer, dryRun bool) error {
	g, err := a.generator(ctx, out, dryRun)
	if err != nil {
		return err
	}
	res, err := g.Run(ctx)
	if err != nil {
		return err
	}
	if res.Changed != nil {
		a.log.Info("changes since last run", "changed", len(res.Changed))
		for _, name := range res.Changed {
			a.log.Debug("changed", "output", name)
		}
	}
	return nil
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate definitions without writing anything",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			g, err := a.generator(cmd.Context(), cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			res, err := g.Check(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d nodes ok, %d configs would be written\n", res.Nodes, len(res.Outputs))
			return nil
		}),
	}
}

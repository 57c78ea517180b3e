package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meshconf/pkg/generator"
	"meshconf/pkg/topology"
)

func newPeersCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "peers [node]",
		Short: "Show the resolved mesh, or the peers of one node",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			g, err := a.generator(cmd.Context(), cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			reg, diags, err := g.Registry(cmd.Context())
			if err != nil {
				return err
			}
			if diags.Failed() {
				return fmt.Errorf("%w: %d problem(s)", generator.ErrValidation, len(diags))
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				edges := topology.Edges(reg)
				if asJSON {
					return json.NewEncoder(out).Encode(edges)
				}
				for _, e := range edges {
					fmt.Fprintf(out, "%s <-> %s\n", e.A, e.B)
				}
				return nil
			}

			plan, err := topology.Resolve(reg, args[0])
			if err != nil {
				return err
			}
			peers := plan.PeerSections()
			if asJSON {
				return json.NewEncoder(out).Encode(peers)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PEER\tENDPOINT\tALLOWED IPS")
			for _, p := range peers {
				ep := p.Endpoint
				if !p.HasEndpoint {
					ep = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, ep, strings.Join(p.AllowedIPs, ", "))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/codec"
	"github.com/hupe1980/symgraph/namedgraph"
)

func (a *app) rankCmd() *cobra.Command {
	var (
		method string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "rank [snapshot]",
		Short: "Rank declarations by PageRank or eigenvector centrality",
		Long:  "Scores every declaration of a snapshot. Parameters come from the ranking and centrality sections of the configuration.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, _, err := a.load(cmd.Context(), args, 0)
			if err != nil {
				return err
			}

			var ranking namedgraph.Ranking
			switch method {
			case "pagerank":
				ranking = tbl.Rank(a.cfg.PageRankOptions())
			case "centrality":
				ranking = tbl.Centrality(a.cfg.CentralityOptions())
			default:
				return fmt.Errorf("unknown method %q (want pagerank or centrality)", method)
			}

			ranked := ranking.Ranked()
			if top > 0 && top < len(ranked) {
				ranked = ranked[:top]
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, s := range ranked {
				fmt.Fprintf(tw, "%d\t%s\t%.6f\n", i+1, s.Name, s.Score)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if !ranking.Converged {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no convergence after %d iterations\n", ranking.Iterations)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "pagerank", "pagerank or centrality")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "print only the n highest scores")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		codecName string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export [snapshot]",
		Short: "Export a snapshot report",
		Long:  "Encodes the declarations, edges and diagnostics of a snapshot as JSON or YAML.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, _, err := a.load(cmd.Context(), args, 0)
			if err != nil {
				return err
			}

			opts := a.options()
			if codecName != "" {
				c, ok := codec.ByName(codecName)
				if !ok {
					return fmt.Errorf("unknown codec %q (want one of %v)", codecName, codec.Names())
				}
				opts = append(opts, symgraph.WithCodec(c))
			}
			data, err := symgraph.Export(tbl, opts...)
			if err != nil {
				return err
			}

			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&codecName, "codec", "", "json, go-json or yaml (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

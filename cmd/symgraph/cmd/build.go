package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/codec"
)

func (a *app) buildCmd() *cobra.Command {
	var (
		format      string
		publish     bool
		noOverwrite bool
	)

	cmd := &cobra.Command{
		Use:   "build <document> <snapshot>",
		Short: "Build a snapshot from a parser document",
		Long: "Reads the declarations, blocks and references of one source file from a " +
			"YAML or JSON document and saves the frozen table as a snapshot.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			c, err := documentCodec(args[0], format)
			if err != nil {
				return err
			}
			doc, err := symgraph.ParseDocument(data, c)
			if err != nil {
				return err
			}

			opts := a.options()
			if noOverwrite {
				opts = append(opts, symgraph.WithNoOverwrite())
			}
			tbl, err := symgraph.Build(doc, opts...)
			if err != nil {
				return err
			}

			save := symgraph.Save
			if publish {
				save = symgraph.Publish
			}
			if err := save(cmd.Context(), a.store, args[1], tbl, opts...); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d declarations, %d edges, %d unresolved\n",
				args[1], tbl.Len(), tbl.Graph().Graph().EdgeCount(), len(tbl.Unresolved()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "document format: yaml or json (default: by extension)")
	cmd.Flags().BoolVar(&publish, "publish", false, "point HEAD at the new snapshot")
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "fail if the snapshot exists")
	return cmd
}

// documentCodec picks the codec for a document by flag or file extension.
func documentCodec(path, format string) (codec.Codec, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}
	c, ok := codec.ByName(format)
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want one of %v)", format, codec.Names())
	}
	return c, nil
}

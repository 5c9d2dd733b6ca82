package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/blobstore"
	"github.com/hupe1980/symgraph/namedgraph"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List snapshots in the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			names, err := a.store.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			head, _ := symgraph.Head(cmd.Context(), a.store)

			out := cmd.OutOrStdout()
			for _, name := range names {
				switch name {
				case blobstore.HeadName:
					continue
				case head:
					fmt.Fprintf(out, "%s (HEAD)\n", name)
				default:
					fmt.Fprintln(out, name)
				}
			}
			return nil
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [snapshot]",
		Short: "Summarize a snapshot",
		Long:  "Prints the declarations of a snapshot with their reference counts and degrees, followed by unused, orphaned and cyclic declarations.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, name, err := a.load(cmd.Context(), args, 0)
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), name, tbl)
			return nil
		},
	}
}

func writeSummary(w io.Writer, name string, tbl *symgraph.Table) {
	r := symgraph.NewReport(tbl)
	fmt.Fprintf(w, "%s: %d declarations, %d edges\n\n", name, len(r.Declarations), len(r.Edges))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSPAN\tREFS\tUSES\tUSED BY")
	for _, d := range r.Declarations {
		fmt.Fprintf(tw, "%s\t%s\t[%d,%d)\t%d\t%d\t%d\n",
			d.Name, d.Kind, d.Start, d.End, d.References, len(d.Uses), len(d.UsedBy))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	writeList(w, "unreferenced", r.Unreferenced)
	writeList(w, "orphans", r.Orphans)
	writeList(w, "cyclic", r.Cyclic)
	if len(r.Unresolved) > 0 {
		refs := make([]string, 0, len(r.Unresolved))
		for _, ref := range r.Unresolved {
			refs = append(refs, fmt.Sprintf("%s@%d", ref.Name, ref.Start))
		}
		writeList(w, "unresolved", refs)
	}
}

func writeList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "%s: none\n", label)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", label, strings.Join(items, ", "))
}

func (a *app) atCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "at <snapshot> <offset>",
		Short: "Show what lies at a source offset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("offset: %w", err)
			}
			tbl, _, err := a.load(cmd.Context(), args, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			region, depth, ok := tbl.NestingAt(pos)
			if !ok {
				fmt.Fprintf(out, "%d: outside any declaration\n", pos)
			} else {
				fmt.Fprintf(out, "%d: in %s (depth %d)\n", pos, region, depth)
			}
			if name, ok := tbl.NameAt(pos); ok {
				decl, _ := tbl.DeclarationAt(pos)
				fmt.Fprintf(out, "symbol %s declared at %s\n", name, decl)
			}
			return nil
		},
	}
}

func (a *app) usagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usages <snapshot> <name>",
		Short: "List the references to a declaration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, _, err := a.load(cmd.Context(), args, 0)
			if err != nil {
				return err
			}
			name := args[1]
			if tbl.IndexOf(name) < 0 {
				return fmt.Errorf("%w: %q", symgraph.ErrNotFound, name)
			}

			out := cmd.OutOrStdout()
			usages := tbl.Usages(name)
			if len(usages) == 0 {
				fmt.Fprintf(out, "%s is never referenced\n", name)
				return nil
			}
			for _, u := range usages {
				enclosing := u.Enclosing
				if enclosing == "" {
					enclosing = "<top level>"
				}
				fmt.Fprintf(out, "[%d,%d)\t%s\n", u.Start, u.End, enclosing)
			}
			return nil
		},
	}
}

func (a *app) treeCmd() *cobra.Command {
	var breadthFirst bool

	cmd := &cobra.Command{
		Use:   "tree <snapshot> [name]",
		Short: "Print the declarations reachable from a name",
		Long:  "Walks the reference graph from name, or from every top-level declaration when name is omitted, printing each declaration once.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, _, err := a.load(cmd.Context(), args, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			visit := namedgraph.VisitorFunc(func(name string, depth int) {
				fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), name)
			})

			g := tbl.Graph()
			if len(args) == 1 {
				g.WalkAll(visit)
				return nil
			}

			walk := g.Walk
			if breadthFirst {
				walk = g.WalkBreadthFirst
			}
			if !walk(args[1], visit) {
				return fmt.Errorf("%w: %q", symgraph.ErrNotFound, args[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&breadthFirst, "breadth-first", "b", false, "walk breadth first")
	return cmd
}

// commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jshaughn/bloodline/cytoscope"
	"github.com/jshaughn/bloodline/cytoscope/cx"
	"github.com/jshaughn/bloodline/loader"
	"github.com/jshaughn/bloodline/tree"
	"github.com/jshaughn/bloodline/vizceral"
)

var errNotFound = errors.New("not found")

// lookup finds name in any tree of the forest.
func (a *app) lookup(ctx context.Context, name string) (*tree.Tree, error) {
	forest, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range forest {
		if n := t.FindByName(name); n != nil {
			return n, nil
		}
	}
	return nil, errors.Wrapf(errNotFound, "vampire %q", name)
}

func (a *app) lookupAll(ctx context.Context, names ...string) ([]*tree.Tree, error) {
	result := make([]*tree.Tree, 0, len(names))
	for _, name := range names {
		n, err := a.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

// scope returns the named subtree, or the whole forest when from is empty.
func (a *app) scope(ctx context.Context, from string) ([]*tree.Tree, error) {
	if from == "" {
		return a.load(ctx)
	}
	n, err := a.lookup(ctx, from)
	if err != nil {
		return nil, err
	}
	return []*tree.Tree{n}, nil
}

func labels(nodes []*tree.Tree) string {
	return strings.Join(lo.Map(nodes, func(n *tree.Tree, _ int) string {
		return n.String()
	}), "\n")
}

func (a *app) offspringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offspring NAME",
		Short: "List the vampires NAME created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("offspring")()
			n, err := a.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v created %d vampires\n", n, n.ChildCount())
			if !n.IsLeaf() {
				fmt.Fprintln(cmd.OutOrStdout(), labels(n.Children))
			}
			return nil
		},
	}
}

func (a *app) depthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "depth NAME",
		Short: "Print how many vampires separate NAME from the original vampire",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("depth")()
			n, err := a.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.DepthFromRoot())
			return nil
		},
	}
}

func (a *app) seniorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "senior A B",
		Short: "Report whether A is closer to the original vampire than B",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("senior")()
			nodes, err := a.lookupAll(cmd.Context(), args...)
			if err != nil {
				return err
			}
			verb := "is not"
			if nodes[0].IsMoreSeniorThan(nodes[1]) {
				verb = "is"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v %s more senior than %v\n", nodes[0].Name, verb, nodes[1].Name)
			return nil
		},
	}
}

func (a *app) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find NAME",
		Short: "Show a vampire and its creator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("find")()
			n, err := a.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if n.IsRoot() {
				fmt.Fprintf(cmd.OutOrStdout(), "%v, an original vampire\n", n)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%v, created by %v\n", n, n.Parent)
			}
			return nil
		},
	}
}

func (a *app) descendantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descendants NAME",
		Short: "Count every vampire descending from NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("descendants")()
			n, err := a.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.CountDescendants())
			return nil
		},
	}
}

func (a *app) afterCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "after YEAR",
		Short: "List vampires converted after YEAR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("after")()
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrapf(err, "invalid year %q", args[0])
			}
			return a.printConvertedAfter(cmd, from, year)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Only search the bloodline of this vampire")
	return cmd
}

func (a *app) millennialsCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "millennials",
		Short: fmt.Sprintf("List vampires converted after %d", tree.MillennialYear),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("millennials")()
			return a.printConvertedAfter(cmd, from, tree.MillennialYear)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Only search the bloodline of this vampire")
	return cmd
}

func (a *app) printConvertedAfter(cmd *cobra.Command, from string, year int) error {
	roots, err := a.scope(cmd.Context(), from)
	if err != nil {
		return err
	}
	var found []*tree.Tree
	for _, r := range roots {
		found = append(found, r.ConvertedAfter(year)...)
	}
	if len(found) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), labels(found))
	}
	return nil
}

func (a *app) ancestorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ancestor A B",
		Short: "Print the closest common ancestor of A and B",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("ancestor")()
			nodes, err := a.lookupAll(cmd.Context(), args...)
			if err != nil {
				return err
			}
			ancestor, err := nodes[0].ClosestCommonAncestor(nodes[1])
			if err != nil {
				return errors.Wrapf(err, "%v and %v", nodes[0].Name, nodes[1].Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ancestor)
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format, from, region string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the lineage for visualisation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.recorder.Observe("export")()
			roots, err := a.scope(cmd.Context(), from)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch format {
			case "yaml":
				for i, r := range roots {
					b, err := loader.Marshal(r)
					if err != nil {
						return err
					}
					if i > 0 {
						fmt.Fprintln(out, "---")
					}
					fmt.Fprint(out, string(b))
				}
				return nil
			case "vizceral":
				return writeJSON(cmd, vizceral.NewConfig(region, roots))
			case "cytoscope":
				for _, r := range roots {
					if err := writeJSON(cmd, cytoscope.NewConfig(r)); err != nil {
						return err
					}
				}
				return nil
			case "cx":
				for _, r := range roots {
					if err := writeJSON(cmd, cx.NewConfig(r)); err != nil {
						return err
					}
				}
				return nil
			default:
				return errors.Errorf("unknown format %q (cytoscope, cx, vizceral, yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "cytoscope", "Output format: cytoscope, cx, vizceral or yaml")
	cmd.Flags().StringVar(&from, "from", "", "Only export the bloodline of this vampire")
	cmd.Flags().StringVar(&region, "region", "bloodline", "Region name for the vizceral format")
	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding export")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

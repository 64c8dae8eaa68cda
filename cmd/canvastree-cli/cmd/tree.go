package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"canvastree/internal/application/commands"
	"canvastree/internal/domain"
)

var (
	treeDepth     int
	treeContent   []string
	treeFavorites bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the course content tree",
	Long: `Load every course and expand its content down to --depth levels.

Depth 0 lists the course nodes only, depth 1 runs their first expansion.
Expansions that fail are reported on stderr and leave the node empty.

Examples:
  canvastree-cli tree
  canvastree-cli tree --content files --depth 3
  canvastree-cli tree --favorites -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := contentTypes(treeContent)
		if err != nil {
			return err
		}
		tree, err := loadTree(context.Background(), cmd, types, treeDepth)
		if err != nil {
			return err
		}

		filter := domain.NewFilter(tree.Terms(), types[0])
		filter.FavoriteOnly = treeFavorites

		var roots []nodeView
		var rows []domain.Row
		for _, ct := range types {
			filter.Active = ct
			for _, r := range filter.Rows(tree, nil) {
				rows = append(rows, r)
				if r.Depth == 0 {
					roots = append(roots, viewOf(r.Node))
				}
			}
		}

		return write(cmd.OutOrStdout(), roots, func(w io.Writer) error {
			for _, r := range rows {
				printRow(w, r)
			}
			return nil
		})
	},
}

// loadTree builds the tree and reports failed expansions on stderr
func loadTree(ctx context.Context, cmd *cobra.Command, types []domain.ContentType, depth int) (*domain.Tree, error) {
	result, err := commands.NewBuildTreeCommand(rt.Engine, types, depth).Execute(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range result.Failures {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", f)
	}
	return result.Tree, nil
}

func printRow(w io.Writer, r domain.Row) {
	n := r.Node
	line := fmt.Sprintf("%s%s  %s", strings.Repeat("  ", r.Depth), n.ID(), n.Name())
	if r.Depth == 0 {
		line += fmt.Sprintf("  [%s]", n.MustCourseInfo().ContentType)
	}
	if label := n.Date().SmartLabel(); label != "" {
		line += "  (" + label + ")"
	}
	if !n.Enabled() {
		line += "  (empty)"
	}
	fmt.Fprintln(w, line)
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 1, "levels to expand below each course")
	treeCmd.Flags().StringSliceVarP(&treeContent, "content", "c", nil, "content types to load (modules, files, assignments, tools, announcements)")
	treeCmd.Flags().BoolVarP(&treeFavorites, "favorites", "f", false, "only show favorite courses")
}

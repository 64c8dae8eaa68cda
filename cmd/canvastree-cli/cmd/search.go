package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"canvastree/internal/application/commands"
)

var searchDepth int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search course content",
	Long: `Load the course tree down to --depth levels, then search every node
discovered on the way by name or key.

Results are ranked by relevance using fuzzy matching.

Examples:
  canvastree-cli search syllabus
  canvastree-cli search "week 3" --depth 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		ctx := context.Background()

		if _, err := loadTree(ctx, cmd, rt.ContentTypes(), searchDepth); err != nil {
			return err
		}

		searchCmd := commands.NewSearchCommand(rt.Index, query)
		results, err := searchCmd.Execute(ctx)
		if err != nil {
			return err
		}

		views := make([]resultView, 0, len(results))
		for _, r := range results {
			views = append(views, resultView{
				Kind:     strings.ToLower(r.Kind.String()),
				Key:      r.Key,
				Name:     r.Name,
				CourseID: r.CourseID,
				URL:      r.URL,
				Score:    r.Score,
			})
		}
		return write(cmd.OutOrStdout(), views, func(w io.Writer) error {
			if len(views) == 0 {
				fmt.Fprintln(w, "No results found")
				return nil
			}
			for _, r := range views {
				fmt.Fprintf(w, "[%s] %s %s  (course %s)\n", r.Kind, r.Key, r.Name, r.CourseID)
			}
			return nil
		})
	},
}

var linksDepth int

var linksCmd = &cobra.Command{
	Use:   "links-to <kind> <key>",
	Short: "List the content that links to a node",
	Long: `Load the course tree down to --depth levels, then list the pages,
assignments and announcements whose text links to the given node.

Example:
  canvastree-cli links-to file 1234 --depth 3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if _, err := loadTree(ctx, cmd, rt.ContentTypes(), linksDepth); err != nil {
			return err
		}

		sources, err := commands.NewLinksToCommand(rt.Index, args[0], args[1]).Execute(ctx)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(sources))
		for _, s := range sources {
			ids = append(ids, s.String())
		}
		return write(cmd.OutOrStdout(), ids, func(w io.Writer) error {
			for _, id := range ids {
				fmt.Fprintln(w, id)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(linksCmd)
	searchCmd.Flags().IntVarP(&searchDepth, "depth", "d", 2, "levels to expand before searching")
	linksCmd.Flags().IntVarP(&linksDepth, "depth", "d", 3, "levels to expand before looking up links")
}

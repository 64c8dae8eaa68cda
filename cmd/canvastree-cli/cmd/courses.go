package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"canvastree/internal/application/commands"
)

var (
	favoritesOnly bool
	termID        int64
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List your courses",
	Long: `List the courses of the current user, sorted by name.

Examples:
  canvastree-cli courses
  canvastree-cli courses --favorites
  canvastree-cli courses --term 42 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		listCmd := commands.NewListCoursesCommand(rt.Client, favoritesOnly)
		listCmd.TermID = termID
		courses, err := listCmd.Execute(ctx)
		if err != nil {
			return err
		}

		views := make([]courseView, 0, len(courses))
		for _, c := range courses {
			views = append(views, courseViewOf(c))
		}
		return write(cmd.OutOrStdout(), views, func(w io.Writer) error {
			for _, c := range views {
				star := " "
				if c.Favorite {
					star = "*"
				}
				fmt.Fprintf(w, "%s %-8d %s", star, c.ID, c.Name)
				if c.Term != "" {
					fmt.Fprintf(w, "  (%s)", c.Term)
				}
				fmt.Fprintln(w)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(coursesCmd)
	coursesCmd.Flags().BoolVarP(&favoritesOnly, "favorites", "f", false, "only list favorite courses")
	coursesCmd.Flags().Int64Var(&termID, "term", 0, "only list courses of this term id")
}

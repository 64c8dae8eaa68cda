package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"canvastree/internal/application/commands"
)

var removeFavorite bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite <course-id>",
	Short: "Add a course to the favorites",
	Long: `Add a course to, or with --remove take it off, the favorites.

Examples:
  canvastree-cli favorite 4711
  canvastree-cli favorite 4711 --remove`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCourseID(args[0])
		if err != nil {
			return err
		}
		result, err := commands.NewSetFavoriteCommand(rt.Client, id, !removeFavorite).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var nicknameCmd = &cobra.Command{
	Use:   "nickname <course-id> [nickname]",
	Short: "Set or reset a course nickname",
	Long: `Set the nickname shown instead of the course name. Without a
nickname the original course name is restored.

Examples:
  canvastree-cli nickname 4711 "Linear Algebra"
  canvastree-cli nickname 4711`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCourseID(args[0])
		if err != nil {
			return err
		}
		nickname := ""
		if len(args) == 2 {
			nickname = args[1]
		}
		result, err := commands.NewSetNicknameCommand(rt.Client, id, nickname).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func parseCourseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid course id %q", s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(nicknameCmd)
	favoriteCmd.Flags().BoolVar(&removeFavorite, "remove", false, "remove the course from the favorites")
}

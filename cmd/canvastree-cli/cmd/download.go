package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"canvastree/internal/application/commands"
	"canvastree/internal/domain"
)

var (
	downloadDir     string
	downloadDepth   int
	downloadContent []string
	downloadAsk     bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <kind> <key>",
	Short: "Download a course, module, folder, page, file or lecture",
	Long: `Download a node of the course tree into the download folder.

The tree is expanded --depth levels so the node can be found; keys are
shown by "canvastree-cli tree". Containers download recursively and
existing files and folders are skipped. A course downloads the content
of the --content types, by default the configured one. With --interactive
every container and file is confirmed on the terminal first.

Examples:
  canvastree-cli download course 4711
  canvastree-cli download folder 981 --depth 3 --dir ~/courses
  canvastree-cli download course 4711 --content files
  canvastree-cli download module 5512 -i`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		types := []domain.ContentType{rt.Config.DefaultContent}
		if len(downloadContent) > 0 {
			var err error
			if types, err = contentTypes(downloadContent); err != nil {
				return err
			}
		}

		dl := commands.NewDownloadCommand(rt.Engine, nil, args[0], args[1], downloadDir)
		if err := dl.Validate(); err != nil {
			return err
		}

		tree, err := loadTree(ctx, cmd, types, downloadDepth)
		if err != nil {
			return err
		}

		dl = commands.NewDownloadCommand(rt.Engine, tree, args[0], args[1], downloadDir)
		dl.Confirm = downloadAsk
		result, err := dl.Execute(ctx)
		if result != nil {
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "", "target directory (default: the configured download folder)")
	downloadCmd.Flags().IntVarP(&downloadDepth, "depth", "d", 2, "levels to expand while looking for the node")
	downloadCmd.Flags().StringSliceVarP(&downloadContent, "content", "c", nil, "content types to load")
	downloadCmd.Flags().BoolVarP(&downloadAsk, "interactive", "i", false, "confirm each item before downloading")
}

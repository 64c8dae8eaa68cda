package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"canvastree/internal/application"
	"canvastree/internal/application/engine"
	"canvastree/internal/bootstrap"
	"canvastree/internal/domain"
)

var (
	logLevel string
	format   string
	rt       *bootstrap.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "canvastree-cli",
	Short: "CLI for browsing and downloading LMS course content",
	Long: `canvastree-cli lists your courses and walks their content tree:
modules, files, assignments, external tools and announcements.

It reads ~/.canvasdefaults, $XDG_CONFIG_HOME/canvastree/config.yaml and
CANVASTREE_* environment variables for the LMS address, the access token
and the download folder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
		}

		log, err := bootstrap.NewLogger(os.Stderr, logLevel)
		if err != nil {
			return err
		}
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			return err
		}
		var opts []engine.Option
		if cmd.Name() == "download" && downloadAsk {
			opts = append(opts, engine.WithConfirmer(newPrompt(cmd.InOrStdin(), cmd.ErrOrStderr())))
		}
		rt, err = bootstrap.Open(cfg, log, bootstrap.Options{}, opts...)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if rt == nil {
			return nil
		}
		return rt.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "o", "text", "output format: text, json or yaml")
}

// contentTypes parses --content values, defaulting to every type with the
// configured one first
func contentTypes(values []string) ([]domain.ContentType, error) {
	if len(values) == 0 {
		return rt.ContentTypes(), nil
	}
	return application.ValidateContentTypes("contentType", values)
}

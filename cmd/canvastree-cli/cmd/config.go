package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"canvastree/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := rt.Config
		view := configView{
			BaseURL:        cfg.BaseURL,
			Token:          maskToken(cfg.Token),
			DownloadFolder: cfg.DownloadFolder,
			DefaultContent: cfg.DefaultContent.Tag(),
			Workers:        cfg.Workers,
		}
		view.Integrations.LecturePortal = cfg.LecturePortal
		view.Integrations.Attendance = cfg.Attendance
		view.Labels.LecturePortal = cfg.LecturePortalLabel
		view.Labels.Attendance = cfg.AttendanceLabel

		return write(cmd.OutOrStdout(), view, func(w io.Writer) error {
			fmt.Fprintf(w, "baseurl         %s\n", view.BaseURL)
			fmt.Fprintf(w, "token           %s\n", view.Token)
			fmt.Fprintf(w, "downloadfolder  %s\n", view.DownloadFolder)
			fmt.Fprintf(w, "defaultcontent  %s\n", view.DefaultContent)
			fmt.Fprintf(w, "workers         %d\n", view.Workers)
			fmt.Fprintf(w, "lectureportal   %t (%s)\n", view.Integrations.LecturePortal, view.Labels.LecturePortal)
			fmt.Fprintf(w, "attendance      %t (%s)\n", view.Integrations.Attendance, view.Labels.Attendance)
			return nil
		})
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the connection settings to ~/.canvasdefaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := config.DefaultSources()
		if err != nil {
			return err
		}
		if err := config.Save(afero.NewOsFs(), src.Defaults, rt.Config); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", src.Defaults)
		return nil
	},
}

// configView is the serialized form of the configuration
type configView struct {
	BaseURL        string `json:"baseurl" yaml:"baseurl"`
	Token          string `json:"token" yaml:"token"`
	DownloadFolder string `json:"downloadfolder" yaml:"downloadfolder"`
	DefaultContent string `json:"defaultcontent" yaml:"defaultcontent"`
	Workers        int    `json:"workers" yaml:"workers"`
	Integrations   struct {
		LecturePortal bool `json:"lectureportal" yaml:"lectureportal"`
		Attendance    bool `json:"attendance" yaml:"attendance"`
	} `json:"integrations" yaml:"integrations"`
	Labels struct {
		LecturePortal string `json:"lectureportal" yaml:"lectureportal"`
		Attendance    string `json:"attendance" yaml:"attendance"`
	} `json:"labels" yaml:"labels"`
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSaveCmd)
}

// Package config loads the LMS connection and download preferences.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"canvastree/internal/application"
	"canvastree/internal/domain"
)

const (
	// DefaultsFile is the JSON preference file kept in the home directory
	DefaultsFile = ".canvasdefaults"
	// EnvPrefix prefixes every environment override, e.g. CANVASTREE_TOKEN
	EnvPrefix = "CANVASTREE"

	DefaultWorkers = 4
)

// Config is the resolved configuration of a run
type Config struct {
	BaseURL        string
	Token          string
	DownloadFolder string
	DefaultContent domain.ContentType
	Workers        int

	LecturePortal      bool
	LecturePortalLabel string
	Attendance         bool
	AttendanceLabel    string
}

// Sources lists the files read by Load. Missing files are skipped.
type Sources struct {
	Defaults string // JSON, read first
	File     string // YAML, overrides Defaults
}

// DefaultSources returns ~/.canvasdefaults and
// $XDG_CONFIG_HOME/canvastree/config.yaml.
func DefaultSources() (Sources, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Sources{}, fmt.Errorf("locate home directory: %w", err)
	}
	src := Sources{Defaults: filepath.Join(home, DefaultsFile)}
	if dir, err := os.UserConfigDir(); err == nil {
		src.File = filepath.Join(dir, "canvastree", "config.yaml")
	}
	return src, nil
}

func newViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetDefault("defaultcontent", domain.ContentModules.Tag())
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("integrations.lectureportal", false)
	v.SetDefault("integrations.attendance", false)
	v.SetDefault("labels.lectureportal", "Echo360")
	v.SetDefault("labels.attendance", "aPlus+ Attendance")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the sources in order, applies CANVASTREE_* environment
// overrides and validates the result.
func Load(fs afero.Fs, src Sources) (*Config, error) {
	v := newViper(fs)

	if err := readFile(v, fs, src.Defaults, "json", false); err != nil {
		return nil, err
	}
	if err := readFile(v, fs, src.File, "yaml", true); err != nil {
		return nil, err
	}

	cfg, err := resolve(v, fs)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(v *viper.Viper, fs afero.Fs, path, kind string, merge bool) error {
	if path == "" {
		return nil
	}
	ok, err := afero.Exists(fs, path)
	if err != nil || !ok {
		return err
	}
	v.SetConfigFile(path)
	v.SetConfigType(kind)
	if merge {
		err = v.MergeInConfig()
	} else {
		err = v.ReadInConfig()
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// resolve validates every field; all failures are reported together
func resolve(v *viper.Viper, fs afero.Fs) (*Config, error) {
	cfg := &Config{
		BaseURL:            strings.TrimRight(strings.TrimSpace(v.GetString("baseurl")), "/"),
		Token:              strings.TrimSpace(v.GetString("token")),
		DownloadFolder:     v.GetString("downloadfolder"),
		Workers:            v.GetInt("workers"),
		LecturePortal:      v.GetBool("integrations.lectureportal"),
		LecturePortalLabel: v.GetString("labels.lectureportal"),
		Attendance:         v.GetBool("integrations.attendance"),
		AttendanceLabel:    v.GetString("labels.attendance"),
	}

	var errs []error
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := application.ValidateRequired("token", cfg.Token); err != nil {
		errs = append(errs, err)
	}
	if err := validateFolder(fs, cfg.DownloadFolder); err != nil {
		errs = append(errs, err)
	}
	ct, err := domain.ParseContentType(v.GetString("defaultcontent"))
	if err != nil {
		errs = append(errs, &application.ValidationError{Field: "defaultcontent", Message: err.Error()})
	}
	cfg.DefaultContent = ct
	if cfg.Workers <= 0 {
		errs = append(errs, &application.ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("must be positive, got: %d", cfg.Workers),
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return &application.ValidationError{Field: "baseurl", Message: "LMS base URL is required"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &application.ValidationError{Field: "baseurl", Message: fmt.Sprintf("not an http(s) URL: %s", raw)}
	}
	return nil
}

// validateFolder requires an absolute path to an existing directory
func validateFolder(fs afero.Fs, dir string) error {
	if dir == "" {
		return &application.ValidationError{Field: "downloadfolder", Message: "download folder is required"}
	}
	if !filepath.IsAbs(dir) {
		return &application.ValidationError{Field: "downloadfolder", Message: fmt.Sprintf("must be an absolute path: %s", dir)}
	}
	ok, err := afero.IsDir(fs, dir)
	if err != nil || !ok {
		return &application.ValidationError{Field: "downloadfolder", Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	return nil
}

// Save writes the connection settings back to the JSON preference file
func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := json.MarshalIndent(map[string]any{
		"baseurl":        cfg.BaseURL,
		"token":          cfg.Token,
		"downloadfolder": cfg.DownloadFolder,
		"defaultcontent": cfg.DefaultContent.Tag(),
	}, "", "    ")
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Package bootstrap wires the configured adapters into a tree engine for
// the canvastree binaries.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"canvastree/internal/adapters/browser"
	"canvastree/internal/adapters/canvas"
	"canvastree/internal/adapters/sqlite"
	"canvastree/internal/adapters/storage"
	"canvastree/internal/application/engine"
	"canvastree/internal/config"
	"canvastree/internal/domain"
)

// Runtime holds the collaborators of one run
type Runtime struct {
	Config *config.Config
	Log    *logrus.Logger
	Client *canvas.Client
	Index  *sqlite.Index
	Engine *engine.Engine
}

// Options tune how the runtime is assembled
type Options struct {
	Fs      afero.Fs // defaults to the host filesystem
	PageDir string   // where Display actions write HTML; defaults to a temp dir
}

// NewLogger returns a text logger writing to w at the given level name
func NewLogger(w io.Writer, level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)
	return log, nil
}

// LogFile opens canvastree.log under the user cache directory
func LogFile() (*os.File, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate cache directory: %w", err)
	}
	dir = filepath.Join(dir, "canvastree")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "canvastree.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// LoadConfig reads the configuration from its default sources
func LoadConfig() (*config.Config, error) {
	src, err := config.DefaultSources()
	if err != nil {
		return nil, err
	}
	return config.Load(afero.NewOsFs(), src)
}

// Open builds the LMS client, the run index and the engine. Extra engine
// options are applied last.
func Open(cfg *config.Config, log *logrus.Logger, opts Options, extra ...engine.Option) (*Runtime, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.PageDir == "" {
		opts.PageDir = filepath.Join(os.TempDir(), "canvastree")
	}

	client, err := canvas.New(cfg.BaseURL, cfg.Token, canvas.WithLogger(log))
	if err != nil {
		return nil, err
	}

	index, err := sqlite.Open()
	if err != nil {
		return nil, fmt.Errorf("open node index: %w", err)
	}

	opener := browser.NewOpener(opts.Fs, opts.PageDir)
	engOpts := []engine.Option{
		engine.WithLogger(log),
		engine.WithStorage(storage.New(opts.Fs)),
		engine.WithOpener(opener),
		engine.WithViewer(opener),
		engine.WithIndex(index),
		engine.WithDownloadDir(cfg.DownloadFolder),
		engine.WithWorkers(cfg.Workers),
		engine.WithIntegrations(engine.Integrations{
			LecturePortal:      cfg.LecturePortal,
			LecturePortalLabel: cfg.LecturePortalLabel,
			Attendance:         cfg.Attendance,
			AttendanceLabel:    cfg.AttendanceLabel,
		}),
	}

	return &Runtime{
		Config: cfg,
		Log:    log,
		Client: client,
		Index:  index,
		Engine: engine.New(client, append(engOpts, extra...)...),
	}, nil
}

// ContentTypes lists every content type with the configured default first
func (r *Runtime) ContentTypes() []domain.ContentType {
	types := []domain.ContentType{r.Config.DefaultContent}
	for _, ct := range domain.ContentTypes {
		if ct != r.Config.DefaultContent {
			types = append(types, ct)
		}
	}
	return types
}

// Close releases the run index
func (r *Runtime) Close() error {
	return r.Index.Close()
}

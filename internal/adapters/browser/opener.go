package browser

import (
	"fmt"
	"html"
	"net/url"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Opener implements ports.URLOpener and ports.Viewer with the desktop's
// default browser
type Opener struct {
	goos string
	fs   afero.Fs
	dir  string
	run  func(*exec.Cmd) error
}

// NewOpener creates an opener. HTML shown through the viewer is written
// to files under dir.
func NewOpener(fs afero.Fs, dir string) *Opener {
	return &Opener{
		goos: runtime.GOOS,
		fs:   fs,
		dir:  dir,
		run:  func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// OpenURL opens an absolute URL in the default browser
func (o *Opener) OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("not an absolute url: %s", rawURL)
	}
	cmd, err := o.Command(u.String())
	if err != nil {
		return err
	}
	return o.run(cmd)
}

// Command returns the platform command that opens target
func (o *Opener) Command(target string) (*exec.Cmd, error) {
	switch o.goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", o.goos)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PagePath is where ShowHTML writes a page with the given title
func (o *Opener) PagePath(title string, now time.Time) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(title, "-"), "-")
	if slug == "" {
		slug = "page"
	}
	return filepath.Join(o.dir, fmt.Sprintf("%s-%d.html", slug, now.UnixNano()))
}

// ShowHTML writes a standalone page and opens it in the browser
func (o *Opener) ShowHTML(title, body string) error {
	if err := o.fs.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create view directory: %w", err)
	}
	path := o.PagePath(title, time.Now())
	page := fmt.Sprintf("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s\n</body></html>\n",
		html.EscapeString(title), body)
	if err := afero.WriteFile(o.fs, path, []byte(page), 0o644); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}

	cmd, err := o.Command((&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String())
	if err != nil {
		return err
	}
	return o.run(cmd)
}

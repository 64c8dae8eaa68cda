package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"canvastree/internal/domain"
)

var safeNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// SafeName turns a display name into a single path segment
func SafeName(name string) string {
	name = safeNameReplacer.Replace(name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}

// Download materializes n below dir. Folders, modules and pages get a
// directory of their own and are expanded before descending; an existing
// directory or file is left untouched. Confirmation is asked at most once,
// at the top of the call.
func (e *Engine) Download(ctx context.Context, n *domain.Node, dir string, confirm bool) error {
	if e.storage == nil {
		return errors.New("no download storage configured")
	}
	switch n.Kind() {
	case domain.KindFolder, domain.KindModule, domain.KindPage:
		return e.downloadContainer(ctx, n, dir, confirm)
	case domain.KindFile:
		return e.downloadFile(ctx, n, dir, confirm)
	case domain.KindLecture:
		return e.downloadLecture(ctx, n, dir, confirm)
	default:
		return nil
	}
}

func (e *Engine) downloadContainer(ctx context.Context, n *domain.Node, dir string, confirm bool) error {
	if confirm && !e.confirm(fmt.Sprintf("Download contents of %s?", n.Name())) {
		return nil
	}
	target := filepath.Join(dir, SafeName(n.Name()))
	exists, err := e.storage.Exists(target)
	if err != nil {
		return err
	}
	if exists {
		e.warn(n, fmt.Sprintf("Folder %s already exists at %s; not downloaded.", n.Name(), dir))
		return nil
	}
	// a failed listing must leave no directory behind
	if n.State() == domain.StateCollapsed {
		if err := n.Expand(ctx); err != nil {
			return err
		}
	}
	if err := e.storage.Mkdir(target); err != nil {
		return err
	}

	var errs []error
	for _, child := range n.Children() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.Download(ctx, child, target, false); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", child.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) downloadFile(ctx context.Context, n *domain.Node, dir string, confirm bool) error {
	f := n.Resource().(*domain.File)
	name := f.Filename
	if name == "" {
		name = f.DisplayName
	}
	if confirm && !e.confirm(fmt.Sprintf("Download %s?", name)) {
		return nil
	}
	if unq, err := url.PathUnescape(name); err == nil {
		name = unq
	}
	return e.fetchTo(ctx, n, f.URL, dir, SafeName(name))
}

func (e *Engine) downloadLecture(ctx context.Context, n *domain.Node, dir string, confirm bool) error {
	if confirm && !e.confirm(fmt.Sprintf("Download video %s?", n.Name())) {
		return nil
	}
	lb, ok := n.Behavior().(*lectureBehavior)
	if !ok {
		return fmt.Errorf("%v is not a lecture", n)
	}
	u, err := lb.downloadURL(n)
	if err != nil {
		return err
	}
	name := n.Resource().(*domain.Lecture).Filename()
	if name == "" {
		name = n.Name() + ".mp4"
	}
	return e.fetchTo(ctx, n, u, dir, SafeName(name))
}

// fetchTo streams rawURL into dir/name unless the file exists. A failed
// or cancelled transfer removes the partial file.
func (e *Engine) fetchTo(ctx context.Context, n *domain.Node, rawURL, dir, name string) error {
	target := filepath.Join(dir, name)
	exists, err := e.storage.Exists(target)
	if err != nil {
		return err
	}
	if exists {
		e.warn(n, fmt.Sprintf("%s already exists at %s; file not replaced.", name, dir))
		return nil
	}

	w, err := e.storage.Create(target)
	if err != nil {
		return err
	}
	_, err = e.lms.Stream(ctx, rawURL, w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := e.storage.Remove(target); rerr != nil {
			e.log.WithError(rerr).WithField("path", target).Warn("partial file not removed")
		}
		if ctx.Err() != nil {
			e.warn(n, fmt.Sprintf("Download of %s aborted.", name))
		}
		return fmt.Errorf("download %s: %w", name, err)
	}
	e.notify(n, name+" downloaded.")
	return nil
}

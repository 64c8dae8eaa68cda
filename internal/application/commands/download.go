package commands

import (
	"context"
	"errors"
	"fmt"

	"canvastree/internal/application"
	"canvastree/internal/domain"
)

// DownloadResult contains where the content was written
type DownloadResult struct {
	Dir     string
	Nodes   int
	Message string
}

// DownloadCommand downloads a loaded node into a directory. Courses
// download every top-level child of the loaded content type.
type DownloadCommand struct {
	eng  TreeEngine
	tree *domain.Tree
	Kind string
	Key  string
	Dir  string // empty uses the configured download folder

	// Confirm asks the engine's confirmer before each container and file
	Confirm bool
}

// NewDownloadCommand creates a new DownloadCommand
func NewDownloadCommand(eng TreeEngine, tree *domain.Tree, kind, key, dir string) *DownloadCommand {
	return &DownloadCommand{
		eng:  eng,
		tree: tree,
		Kind: kind,
		Key:  key,
		Dir:  dir,
	}
}

// Validate checks that the kind has something to download
func (c *DownloadCommand) Validate() error {
	k, err := application.ValidateKind("kind", c.Kind)
	if err != nil {
		return err
	}
	if err := application.ValidateRequired("key", c.Key); err != nil {
		return err
	}
	if !Downloadable(k) {
		return &application.DownloadError{
			Node:   fmt.Sprintf("%s %s", k, c.Key),
			Reason: "only courses, modules, folders, pages, files and lectures can be downloaded",
		}
	}
	return nil
}

// Downloadable reports whether a node kind has content to download
func Downloadable(k domain.Kind) bool {
	switch k {
	case domain.KindCourse, domain.KindModule, domain.KindFolder, domain.KindPage, domain.KindFile, domain.KindLecture:
		return true
	default:
		return false
	}
}

// Execute runs the download command. Nothing is prompted unless Confirm
// is set.
func (c *DownloadCommand) Execute(ctx context.Context) (*DownloadResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := Resolve(c.tree, c.Kind, c.Key)
	if err != nil {
		return nil, err
	}

	dir := c.Dir
	if dir == "" {
		dir = c.eng.DownloadDir()
	}

	var errs []error
	for _, n := range nodes {
		errs = append(errs, DownloadNode(ctx, c.eng, n, dir, c.Confirm))
	}

	return &DownloadResult{
		Dir:     dir,
		Nodes:   len(nodes),
		Message: fmt.Sprintf("Downloaded %s %s to %s", c.Kind, c.Key, dir),
	}, errors.Join(errs...)
}

// DownloadNode downloads one node. A course node downloads its top-level
// children into dir.
func DownloadNode(ctx context.Context, eng TreeEngine, n *domain.Node, dir string, confirm bool) error {
	if n.Kind() != domain.KindCourse {
		return eng.Download(ctx, n, dir, confirm)
	}
	if err := eng.ExpandDepth(ctx, n, 0); err != nil {
		return err
	}
	var errs []error
	for _, child := range n.Children() {
		errs = append(errs, eng.Download(ctx, child, dir, confirm))
	}
	return errors.Join(errs...)
}

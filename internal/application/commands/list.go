package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"canvastree/internal/application"
	"canvastree/internal/application/engine"
	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// TreeEngine is the part of the expansion engine the tree commands drive
type TreeEngine interface {
	Populate(ctx context.Context, tree *domain.Tree, opts engine.PopulateOptions) error
	ExpandDepth(ctx context.Context, n *domain.Node, depth int) error
	Download(ctx context.Context, n *domain.Node, dir string, confirm bool) error
	DownloadDir() string
}

// ListCoursesCommand lists the current user's courses
type ListCoursesCommand struct {
	lms           ports.LMS
	FavoritesOnly bool
	TermID        int64 // zero lists every term
}

// NewListCoursesCommand creates a new ListCoursesCommand
func NewListCoursesCommand(lms ports.LMS, favoritesOnly bool) *ListCoursesCommand {
	return &ListCoursesCommand{
		lms:           lms,
		FavoritesOnly: favoritesOnly,
	}
}

// Execute runs the list courses command. Courses are sorted by name.
func (c *ListCoursesCommand) Execute(ctx context.Context) ([]domain.Course, error) {
	courses, err := c.lms.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	out := courses[:0]
	for _, course := range courses {
		if c.FavoritesOnly && !course.IsFavorite {
			continue
		}
		if c.TermID != 0 && course.TermID() != c.TermID {
			continue
		}
		out = append(out, course)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// BuildTreeResult contains the loaded tree and the expansions that failed
type BuildTreeResult struct {
	Tree     *domain.Tree
	Failures []error
}

// BuildTreeCommand loads one course node per content type and expands
// it Depth levels deep. Depth zero loads the course nodes only.
type BuildTreeCommand struct {
	eng          TreeEngine
	ContentTypes []domain.ContentType
	Depth        int
}

// NewBuildTreeCommand creates a new BuildTreeCommand
func NewBuildTreeCommand(eng TreeEngine, contentTypes []domain.ContentType, depth int) *BuildTreeCommand {
	return &BuildTreeCommand{
		eng:          eng,
		ContentTypes: contentTypes,
		Depth:        depth,
	}
}

// Validate checks the requested depth
func (c *BuildTreeCommand) Validate() error {
	if c.Depth < 0 {
		return &application.ValidationError{
			Field:   "depth",
			Message: fmt.Sprintf("depth must not be negative, got: %d", c.Depth),
		}
	}
	return nil
}

// Execute runs the build tree command. Failed expansions are collected in
// the result; only a failure to list courses is returned as an error.
func (c *BuildTreeCommand) Execute(ctx context.Context) (*BuildTreeResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tree := domain.NewTree()
	opts := engine.PopulateOptions{ContentTypes: c.ContentTypes, Expand: c.Depth > 0}
	if err := c.eng.Populate(ctx, tree, opts); err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}

	result := &BuildTreeResult{Tree: tree}
	if c.Depth > 1 {
		for _, root := range tree.Roots() {
			if err := c.eng.ExpandDepth(ctx, root, c.Depth-1); err != nil {
				result.Failures = append(result.Failures, err)
			}
		}
	}
	return result, nil
}

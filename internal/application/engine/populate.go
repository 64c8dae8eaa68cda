package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"canvastree/internal/domain"
)

// PopulateOptions selects what Populate builds
type PopulateOptions struct {
	// ContentTypes lists the lenses built per course; empty means all
	ContentTypes []domain.ContentType
	// Expand runs the first expansion of every course node
	Expand bool
}

// Populate lists the current user's courses and adds one node per course
// and content type to tree. Each course is owned by a single task, so no
// two tasks ever touch the same subtree. Expansion failures are reported
// per course and never abort the others.
func (e *Engine) Populate(ctx context.Context, tree *domain.Tree, opts PopulateOptions) error {
	courses, err := e.lms.ListCourses(ctx)
	if err != nil {
		return err
	}
	types := opts.ContentTypes
	if len(types) == 0 {
		types = domain.ContentTypes
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range courses {
		c := &courses[i]
		g.Go(func() error {
			for _, ct := range types {
				if err := gctx.Err(); err != nil {
					return err
				}
				n := e.NewCourseNode(gctx, c, ct)
				if tree.Add(n) && ct == types[0] {
					e.record(n)
				}
				if !opts.Expand {
					continue
				}
				if err := n.Expand(gctx); err != nil {
					e.warn(n, err.Error())
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// ExpandDepth expands n and its descendants down to depth levels below n.
// A depth of zero only expands n itself.
func (e *Engine) ExpandDepth(ctx context.Context, n *domain.Node, depth int) error {
	if !n.Expandable() {
		return nil
	}
	if n.State() == domain.StateCollapsed {
		if err := n.Expand(ctx); err != nil {
			return &domain.ActionError{Action: "expand", Node: n.Name(), Err: err}
		}
	}
	if depth <= 0 {
		return nil
	}
	var errs []error
	for _, child := range n.Children() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.ExpandDepth(ctx, child, depth-1); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

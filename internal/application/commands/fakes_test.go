package commands

import (
	"context"
	"fmt"
	"strings"

	"canvastree/internal/application/engine"
	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// fakeIndex returns every recorded node and filters edges by target
type fakeIndex struct {
	nodes []ports.IndexedNode
	edges []ports.LinkEdge
	limit int
	err   error
}

func (f *fakeIndex) Record(n ports.IndexedNode) error {
	f.nodes = append(f.nodes, n)
	return nil
}

func (f *fakeIndex) Link(e ports.LinkEdge) error {
	f.edges = append(f.edges, e)
	return nil
}

func (f *fakeIndex) Search(_ string, limit int) ([]ports.IndexedNode, error) {
	f.limit = limit
	return f.nodes, f.err
}

func (f *fakeIndex) LinksTo(target domain.Identity) ([]ports.LinkEdge, error) {
	var out []ports.LinkEdge
	for _, e := range f.edges {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out, f.err
}

func (f *fakeIndex) Close() error { return nil }

// fakeLMS implements the course calls the commands use. The embedded
// interface panics on anything else.
type fakeLMS struct {
	ports.LMS
	courses map[int64]*domain.Course
	listErr error
}

func newFakeLMS(courses ...domain.Course) *fakeLMS {
	f := &fakeLMS{courses: map[int64]*domain.Course{}}
	for i := range courses {
		f.courses[courses[i].ID] = &courses[i]
	}
	return f
}

func (f *fakeLMS) ListCourses(context.Context) ([]domain.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Course
	for id := int64(1); len(out) < len(f.courses); id++ {
		if c, ok := f.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeLMS) GetCourse(_ context.Context, id int64) (*domain.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeLMS) AddFavorite(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return domain.ErrNotFound
	}
	f.courses[id].IsFavorite = true
	return nil
}

func (f *fakeLMS) RemoveFavorite(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return domain.ErrNotFound
	}
	f.courses[id].IsFavorite = false
	return nil
}

func (f *fakeLMS) SetNickname(_ context.Context, id int64, nickname string) error {
	c := f.courses[id]
	if c.OriginalName == "" {
		c.OriginalName = c.Name
	}
	c.Name = nickname
	return nil
}

func (f *fakeLMS) RemoveNickname(_ context.Context, id int64) error {
	c := f.courses[id]
	if c.OriginalName != "" {
		c.Name = c.OriginalName
	}
	return nil
}

// folderExpander gives every node it expands two folder children
type folderExpander struct {
	fail map[int64]bool
}

func (x *folderExpander) Expand(_ context.Context, n *domain.Node) error {
	if c, ok := n.Resource().(*domain.Course); ok && x.fail[c.ID] {
		return fmt.Errorf("course %d unavailable", c.ID)
	}
	for i := int64(1); i <= 2; i++ {
		id := int64(len(n.Lineage()))*100 + i
		n.Append(domain.NewNode(domain.KindFolder, &domain.Folder{ID: id, Name: fmt.Sprintf("Folder %d", id)}, x, nil))
	}
	return nil
}

// fakeEngine builds course nodes from a fake LMS and records downloads
type fakeEngine struct {
	lms       *fakeLMS
	expander  *folderExpander
	dir       string
	downloads []string
	confirmed []bool
	expanded  []string
}

func newFakeEngine(lms *fakeLMS) *fakeEngine {
	return &fakeEngine{lms: lms, expander: &folderExpander{fail: map[int64]bool{}}, dir: "/dl"}
}

func (f *fakeEngine) Populate(ctx context.Context, tree *domain.Tree, opts engine.PopulateOptions) error {
	courses, err := f.lms.ListCourses(ctx)
	if err != nil {
		return err
	}
	types := opts.ContentTypes
	if len(types) == 0 {
		types = domain.ContentTypes
	}
	for i := range courses {
		for _, ct := range types {
			c := courses[i]
			n := domain.NewCourseNode(&c, domain.CourseInfo{Favorite: c.IsFavorite, TermID: c.TermID(), ContentType: ct}, f.expander, nil)
			tree.Add(n)
			if opts.Expand {
				_ = n.Expand(ctx)
			}
		}
	}
	return nil
}

func (f *fakeEngine) ExpandDepth(ctx context.Context, n *domain.Node, depth int) error {
	f.expanded = append(f.expanded, fmt.Sprintf("%s@%d", n.ID(), depth))
	if n.State() == domain.StateCollapsed {
		if err := n.Expand(ctx); err != nil {
			return err
		}
	}
	if depth <= 0 {
		return nil
	}
	for _, child := range n.Children() {
		if err := f.ExpandDepth(ctx, child, depth-1); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) Download(_ context.Context, n *domain.Node, dir string, confirm bool) error {
	f.confirmed = append(f.confirmed, confirm)
	f.downloads = append(f.downloads, dir+"/"+n.Name())
	return nil
}

func (f *fakeEngine) DownloadDir() string { return f.dir }

func course(id int64, name string, favorite bool, term int64) domain.Course {
	return domain.Course{ID: id, Name: name, IsFavorite: favorite, Term: &domain.Term{ID: term, Name: fmt.Sprintf("Term %d", term)}}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

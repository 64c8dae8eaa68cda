package engine

import (
	"context"
	"fmt"
	"path"
	"strings"

	"canvastree/internal/domain"
)

// NewCourseNode builds a course node whose expansion strategy is fixed by
// the content type.
func (e *Engine) NewCourseNode(ctx context.Context, c *domain.Course, ct domain.ContentType) *domain.Node {
	b := &courseBehavior{e: e}
	switch ct {
	case domain.ContentFiles:
		b.expand = e.expandCourseFiles
	case domain.ContentAssignments:
		b.expand = e.expandCourseAssignments
	case domain.ContentTools:
		b.expand = e.expandCourseTools
	case domain.ContentAnnouncements:
		b.expand = e.expandCourseAnnouncements
	default:
		b.expand = e.expandCourseModules
	}
	info := domain.CourseInfo{Favorite: c.IsFavorite, TermID: c.TermID(), ContentType: ct}
	return domain.NewCourseNode(c, info, b, e.fetcher(ctx))
}

type courseBehavior struct {
	e      *Engine
	expand func(ctx context.Context, n *domain.Node) error
}

func (b *courseBehavior) Expand(ctx context.Context, n *domain.Node) error {
	if err := b.expand(ctx, n); err != nil {
		return err
	}
	n.EnableIfPopulated()
	return nil
}

func (b *courseBehavior) Actions(n *domain.Node) []domain.Action {
	var actions []domain.Action
	if courseOf(n).IsFavorite {
		actions = append(actions, domain.Action{
			Name:  "Remove Favorite",
			Multi: true,
			Run:   func(ctx context.Context) error { return b.setFavorite(ctx, n, false) },
		})
	} else {
		actions = append(actions, domain.Action{
			Name:  "Add Favorite",
			Multi: true,
			Run:   func(ctx context.Context) error { return b.setFavorite(ctx, n, true) },
		})
	}
	return append(actions, domain.Action{
		Name:    "Edit Nickname",
		Prompt:  "Nickname (empty to reset)",
		RunText: func(ctx context.Context, name string) error { return b.Rename(ctx, n, name) },
	})
}

func (b *courseBehavior) setFavorite(ctx context.Context, n *domain.Node, favorite bool) error {
	id := courseOf(n).ID
	var err error
	if favorite {
		err = b.e.lms.AddFavorite(ctx, id)
	} else {
		err = b.e.lms.RemoveFavorite(ctx, id)
	}
	if err != nil {
		return err
	}
	return b.refresh(ctx, n)
}

// Rename sets the course nickname; an empty name removes it
func (b *courseBehavior) Rename(ctx context.Context, n *domain.Node, name string) error {
	id := courseOf(n).ID
	var err error
	if strings.TrimSpace(name) == "" {
		err = b.e.lms.RemoveNickname(ctx, id)
	} else {
		err = b.e.lms.SetNickname(ctx, id, name)
	}
	if err != nil {
		return err
	}
	return b.refresh(ctx, n)
}

// refresh refetches the course and updates the filter attributes. Callers
// re-query the filter afterwards.
func (b *courseBehavior) refresh(ctx context.Context, n *domain.Node) error {
	c, err := b.e.lms.GetCourse(ctx, courseOf(n).ID)
	if err != nil {
		return err
	}
	info := n.MustCourseInfo()
	info.Favorite = c.IsFavorite
	info.TermID = c.TermID()
	n.Refresh(c)
	n.SetCourseInfo(info)
	return nil
}

func (e *Engine) expandCourseModules(ctx context.Context, n *domain.Node) error {
	c := courseOf(n)
	modules, err := safeList(e, n, func() ([]domain.Module, error) { return e.lms.ListModules(ctx, c.ID) })
	if err != nil {
		return err
	}
	for i := range modules {
		e.attach(n, e.newModule(ctx, &modules[i]))
	}
	return nil
}

func (e *Engine) expandCourseFiles(ctx context.Context, n *domain.Node) error {
	c := courseOf(n)
	folders, err := safeList(e, n, func() ([]domain.Folder, error) { return e.lms.ListFolders(ctx, c.ID) })
	if err != nil {
		return err
	}
	var roots []domain.Folder
	for _, f := range folders {
		if isRootFolder(f.FullName) {
			roots = append(roots, f)
		}
	}
	if len(folders) == 0 {
		return nil
	}
	if len(roots) != 1 {
		return fmt.Errorf("course %d: expected one root folder, found %d", c.ID, len(roots))
	}
	return e.expandFolderContents(ctx, n, roots[0].ID)
}

func isRootFolder(fullName string) bool {
	fullName = strings.Trim(fullName, "/")
	return fullName != "" && path.Dir(fullName) == "."
}

func (e *Engine) expandCourseAssignments(ctx context.Context, n *domain.Node) error {
	c := courseOf(n)
	assignments, err := safeList(e, n, func() ([]domain.Assignment, error) { return e.lms.ListAssignments(ctx, c.ID) })
	if err != nil {
		return err
	}
	for i := range assignments {
		e.attach(n, e.newAssignment(ctx, &assignments[i]))
	}
	return nil
}

func (e *Engine) expandCourseTools(ctx context.Context, n *domain.Node) error {
	c := courseOf(n)
	tabs, err := safeList(e, n, func() ([]domain.Tab, error) { return e.lms.ListTabs(ctx, c.ID) })
	if err != nil {
		return err
	}
	for i := range tabs {
		if tabs[i].Type != "external" {
			continue
		}
		e.attach(n, e.newTab(ctx, &tabs[i]))
	}
	return nil
}

func (e *Engine) expandCourseAnnouncements(ctx context.Context, n *domain.Node) error {
	c := courseOf(n)
	topics, err := safeList(e, n, func() ([]domain.DiscussionTopic, error) { return e.lms.ListAnnouncements(ctx, c.ID) })
	if err != nil {
		return err
	}
	for i := range topics {
		e.attach(n, e.newAnnouncement(ctx, &topics[i]))
	}
	return nil
}

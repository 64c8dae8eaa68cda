package engine

import (
	"context"
	"fmt"

	"canvastree/internal/domain"
)

func (e *Engine) newModule(ctx context.Context, m *domain.Module) *domain.Node {
	return e.newNode(ctx, domain.KindModule, m, &moduleBehavior{e: e})
}

func (e *Engine) newFolder(ctx context.Context, f *domain.Folder) *domain.Node {
	n := e.newNode(ctx, domain.KindFolder, f, &folderBehavior{e: e})
	n.SetEnabled(!f.LockedForUser)
	return n
}

func (e *Engine) newFile(ctx context.Context, f *domain.File) *domain.Node {
	n := e.newNode(ctx, domain.KindFile, f, &fileBehavior{e: e})
	n.SetEnabled(!f.LockedForUser)
	return n
}

func (e *Engine) newPage(ctx context.Context, p *domain.Page) *domain.Node {
	return e.newNode(ctx, domain.KindPage, p, &pageBehavior{e: e})
}

func (e *Engine) newQuiz(ctx context.Context, q *domain.Quiz) *domain.Node {
	return e.newNode(ctx, domain.KindQuiz, q, &linkBehavior{e: e, url: func(*domain.Node) string { return q.HTMLURL }, missing: "No html_url to open."})
}

func (e *Engine) newAssignment(ctx context.Context, a *domain.Assignment) *domain.Node {
	return e.newNode(ctx, domain.KindAssignment, a, &assignmentBehavior{e: e})
}

func (e *Engine) newExternalTool(ctx context.Context, t *domain.ExternalTool) *domain.Node {
	return e.newNode(ctx, domain.KindExternalTool, t, &linkBehavior{e: e, url: func(*domain.Node) string {
		return t.CustomFields["url"]
	}, missing: "No external url found!"})
}

// newTopic dispatches on the topic's own discussion type; the module item
// type alone does not tell discussions and announcements apart.
func (e *Engine) newTopic(ctx context.Context, d *domain.DiscussionTopic) *domain.Node {
	switch d.DiscussionType {
	case domain.DiscussionThreaded:
		return e.newNode(ctx, domain.KindDiscussion, d, &discussionBehavior{e: e})
	case domain.DiscussionSideComment:
		return e.newAnnouncement(ctx, d)
	default:
		return e.newUnknown(ctx, d, d.HTMLURL)
	}
}

func (e *Engine) newAnnouncement(ctx context.Context, d *domain.DiscussionTopic) *domain.Node {
	return e.newNode(ctx, domain.KindAnnouncement, d, &announcementBehavior{e: e})
}

func (e *Engine) newUnknown(ctx context.Context, res domain.Resource, htmlURL string) *domain.Node {
	return e.newNode(ctx, domain.KindUnknown, res, &linkBehavior{e: e, url: func(*domain.Node) string {
		return htmlURL
	}, missing: "No html_url to open."})
}

func (e *Engine) newExternalURL(ctx context.Context, mi *domain.ModuleItem) *domain.Node {
	return e.newNode(ctx, domain.KindExternalURL, mi, &linkBehavior{e: e, url: func(*domain.Node) string {
		if mi.ExternalURL != "" {
			return mi.ExternalURL
		}
		return mi.HTMLURL
	}, missing: "No external url found!"})
}

type moduleBehavior struct{ e *Engine }

func (b *moduleBehavior) Expand(ctx context.Context, n *domain.Node) error {
	e := b.e
	mod := n.Resource().(*domain.Module)
	course := courseOf(n)
	items, err := safeList(e, n, func() ([]domain.ModuleItem, error) {
		return e.lms.ListModuleItems(ctx, course.ID, mod.ID)
	})
	if err != nil {
		return err
	}

	for i := range items {
		mi := &items[i]
		id := fmt.Sprint(mi.ContentID)
		switch mi.Type {
		case domain.ItemSubHeader:
		case domain.ItemFile:
			if f, ok := safeGet(e, n, "GetFile", id, func() (*domain.File, error) { return e.lms.GetFile(ctx, course.ID, id) }); ok {
				e.attach(n, e.newFile(ctx, f))
			}
		case domain.ItemPage:
			if p, ok := safeGet(e, n, "GetPage", mi.PageURL, func() (*domain.Page, error) { return e.lms.GetPage(ctx, course.ID, mi.PageURL) }); ok {
				e.attach(n, e.newPage(ctx, p))
			}
		case domain.ItemDiscussion:
			if d, ok := safeGet(e, n, "GetDiscussionTopic", id, func() (*domain.DiscussionTopic, error) {
				return e.lms.GetDiscussionTopic(ctx, course.ID, id)
			}); ok {
				e.attach(n, e.newTopic(ctx, d))
			}
		case domain.ItemQuiz:
			if q, ok := safeGet(e, n, "GetQuiz", id, func() (*domain.Quiz, error) { return e.lms.GetQuiz(ctx, course.ID, id) }); ok {
				e.attach(n, e.newQuiz(ctx, q))
			}
		case domain.ItemAssignment:
			if a, ok := safeGet(e, n, "GetAssignment", id, func() (*domain.Assignment, error) {
				return e.lms.GetAssignment(ctx, course.ID, id)
			}); ok {
				e.attach(n, e.newAssignment(ctx, a))
			}
		case domain.ItemExternalURL, domain.ItemExternalTool:
			e.attach(n, e.newExternalURL(ctx, mi))
		default:
			e.warn(n, fmt.Sprintf("%s has unrecognized type (%q).", mi.Title, mi.Type))
			e.attach(n, e.newUnknown(ctx, mi, mi.HTMLURL))
		}
	}
	n.EnableIfPopulated()
	return nil
}

func (b *moduleBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{downloadAction(b.e, n, "Download Module")}
}

type folderBehavior struct{ e *Engine }

func (b *folderBehavior) Expand(ctx context.Context, n *domain.Node) error {
	return b.e.expandFolderContents(ctx, n, n.Resource().(*domain.Folder).ID)
}

func (b *folderBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{downloadAction(b.e, n, "Download Folder")}
}

// expandFolderContents lists one folder level: files first, then folders
func (e *Engine) expandFolderContents(ctx context.Context, n *domain.Node, folderID int64) error {
	files, err := safeList(e, n, func() ([]domain.File, error) { return e.lms.ListFolderFiles(ctx, folderID) })
	if err != nil {
		return err
	}
	folders, err := safeList(e, n, func() ([]domain.Folder, error) { return e.lms.ListSubfolders(ctx, folderID) })
	if err != nil {
		return err
	}
	for i := range files {
		e.attach(n, e.newFile(ctx, &files[i]))
	}
	for i := range folders {
		e.attach(n, e.newFolder(ctx, &folders[i]))
	}
	return nil
}

// fileBehavior's primary action is a confirmed download into the
// default folder
type fileBehavior struct{ e *Engine }

func (b *fileBehavior) Open(ctx context.Context, n *domain.Node) error {
	return b.e.Download(ctx, n, b.e.downloadDir, true)
}

func (b *fileBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{downloadAction(b.e, n, "Download")}
}

type pageBehavior struct{ e *Engine }

func (b *pageBehavior) Expand(ctx context.Context, n *domain.Node) error {
	return b.e.ExtractReferences(ctx, n, n.Resource().(*domain.Page).Body)
}

func (b *pageBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{
		{Name: "Display HTML", Run: func(context.Context) error {
			body := n.Resource().(*domain.Page).Body
			if body == nil || *body == "" {
				b.e.warn(n, "No content on page.")
				return nil
			}
			return b.e.showHTML(n.Name(), *body)
		}},
		downloadAction(b.e, n, "Download Page Contents"),
	}
}

type discussionBehavior struct{ e *Engine }

func (b *discussionBehavior) Expand(ctx context.Context, n *domain.Node) error {
	return b.e.ExtractReferences(ctx, n, n.Resource().(*domain.DiscussionTopic).Message)
}

func (b *discussionBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{{Name: "Display HTML", Run: func(context.Context) error {
		return b.e.showHTML(n.Name(), deref(n.Resource().(*domain.DiscussionTopic).Message))
	}}}
}

// announcementBehavior opens by displaying the message and marking it
// read; embedded links expand through a secondary action.
type announcementBehavior struct{ e *Engine }

func (b *announcementBehavior) OpensDirectly() bool { return true }

func (b *announcementBehavior) Expand(ctx context.Context, n *domain.Node) error {
	return b.e.ExtractReferences(ctx, n, n.Resource().(*domain.DiscussionTopic).Message)
}

func (b *announcementBehavior) Open(ctx context.Context, n *domain.Node) error {
	d := n.Resource().(*domain.DiscussionTopic)
	if err := b.e.showHTML(n.Name(), deref(d.Message)); err != nil {
		return err
	}
	return b.mark(ctx, n, true)
}

func (b *announcementBehavior) Actions(n *domain.Node) []domain.Action {
	actions := []domain.Action{{Name: "Expand Embedded Links", Multi: true, Run: n.Expand}}
	if n.Resource().(*domain.DiscussionTopic).IsRead() {
		return append(actions, domain.Action{Name: "Mark as Unread", Multi: true, Run: func(ctx context.Context) error {
			return b.mark(ctx, n, false)
		}})
	}
	return append(actions, domain.Action{Name: "Mark as Read", Multi: true, Run: func(ctx context.Context) error {
		return b.mark(ctx, n, true)
	}})
}

func (b *announcementBehavior) mark(ctx context.Context, n *domain.Node, read bool) error {
	d := n.Resource().(*domain.DiscussionTopic)
	course := courseOf(n)
	if err := b.e.lms.MarkTopicRead(ctx, course.ID, d.ID, read); err != nil {
		return err
	}
	fresh, err := b.e.lms.GetDiscussionTopic(ctx, course.ID, d.Key())
	if err != nil {
		return err
	}
	n.Refresh(fresh)
	return nil
}

type assignmentBehavior struct{ e *Engine }

func (b *assignmentBehavior) Expand(ctx context.Context, n *domain.Node) error {
	return b.e.ExtractReferences(ctx, n, n.Resource().(*domain.Assignment).Description)
}

func (b *assignmentBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{openAction(func(ctx context.Context) error { return b.open(ctx, n) })}
}

// open prefers the sessionless launch of tool-backed assignments
func (b *assignmentBehavior) open(ctx context.Context, n *domain.Node) error {
	a := n.Resource().(*domain.Assignment)
	if a.URL == "" {
		return b.e.openURL(n, a.HTMLURL)
	}
	if u, err := b.e.sessionlessURL(ctx, a.URL); err == nil {
		return b.e.openURL(n, u)
	}
	return b.e.openURL(n, a.URL)
}

// linkBehavior opens a single URL; kinds without one report missing
type linkBehavior struct {
	e       *Engine
	url     func(n *domain.Node) string
	missing string
}

func (b *linkBehavior) Open(_ context.Context, n *domain.Node) error {
	u := b.url(n)
	if u == "" {
		b.e.warn(n, b.missing)
		return nil
	}
	return b.e.openURL(n, u)
}

func (b *linkBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{openAction(func(ctx context.Context) error { return b.Open(ctx, n) })}
}

func downloadAction(e *Engine, n *domain.Node, name string) domain.Action {
	return domain.Action{Name: name, Multi: true, Run: func(ctx context.Context) error {
		return e.Download(ctx, n, e.downloadDir, true)
	}}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

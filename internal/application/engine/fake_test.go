package engine

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"

	"canvastree/internal/adapters/storage"
	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

type postCall struct {
	URL  string
	Form url.Values
}

// fakeLMS serves canned resources keyed by id, URL or path
type fakeLMS struct {
	mu sync.Mutex

	courses       map[int64]*domain.Course
	modules       map[int64][]domain.Module
	items         map[int64][]domain.ModuleItem
	folders       map[int64][]domain.Folder
	folderFiles   map[int64][]domain.File
	subfolders    map[int64][]domain.Folder
	assignments   map[int64][]domain.Assignment
	tabs          map[int64][]domain.Tab
	announcements map[int64][]domain.DiscussionTopic

	files          map[string]*domain.File
	pages          map[string]*domain.Page
	quizzes        map[string]*domain.Quiz
	assignmentByID map[string]*domain.Assignment
	topics         map[string]*domain.DiscussionTopic
	tools          map[string]*domain.ExternalTool

	details   map[string]map[string]any
	web       map[string]*ports.Response
	posts     map[string]*ports.Response
	apiPaths  map[string]bool
	blobs     map[string]string
	streamErr map[string]error
	listErr   map[string]error

	postCalls   []postCall
	streamCalls []string
	marked      map[int64]bool
}

func newFakeLMS() *fakeLMS {
	return &fakeLMS{
		courses:        map[int64]*domain.Course{},
		modules:        map[int64][]domain.Module{},
		items:          map[int64][]domain.ModuleItem{},
		folders:        map[int64][]domain.Folder{},
		folderFiles:    map[int64][]domain.File{},
		subfolders:     map[int64][]domain.Folder{},
		assignments:    map[int64][]domain.Assignment{},
		tabs:           map[int64][]domain.Tab{},
		announcements:  map[int64][]domain.DiscussionTopic{},
		files:          map[string]*domain.File{},
		pages:          map[string]*domain.Page{},
		quizzes:        map[string]*domain.Quiz{},
		assignmentByID: map[string]*domain.Assignment{},
		topics:         map[string]*domain.DiscussionTopic{},
		tools:          map[string]*domain.ExternalTool{},
		details:        map[string]map[string]any{},
		web:            map[string]*ports.Response{},
		posts:          map[string]*ports.Response{},
		apiPaths:       map[string]bool{},
		blobs:          map[string]string{},
		streamErr:      map[string]error{},
		listErr:        map[string]error{},
		marked:         map[int64]bool{},
	}
}

func lookup[T any](m map[string]*T, id string) (*T, error) {
	if v, ok := m[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLMS) fail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listErr[op]
}

func (f *fakeLMS) BaseURL() string { return "https://lms.test" }

func (f *fakeLMS) Get(_ context.Context, rawURL string) (*ports.Response, error) {
	if r, ok := f.web[rawURL]; ok {
		return r, nil
	}
	return &ports.Response{URL: rawURL, StatusCode: 404}, nil
}

func (f *fakeLMS) Post(_ context.Context, rawURL string, form url.Values) (*ports.Response, error) {
	f.mu.Lock()
	f.postCalls = append(f.postCalls, postCall{URL: rawURL, Form: form})
	f.mu.Unlock()
	if r, ok := f.posts[rawURL]; ok {
		return r, nil
	}
	return &ports.Response{URL: rawURL, StatusCode: 404}, nil
}

func (f *fakeLMS) APIGet(_ context.Context, path string) (*ports.Response, error) {
	if f.apiPaths[path] {
		return &ports.Response{URL: f.BaseURL() + path, StatusCode: 200}, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLMS) Detail(ctx context.Context, rawURL string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d, ok := f.details[rawURL]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLMS) Stream(_ context.Context, rawURL string, w io.Writer) (int64, error) {
	f.mu.Lock()
	f.streamCalls = append(f.streamCalls, rawURL)
	f.mu.Unlock()
	if err := f.streamErr[rawURL]; err != nil {
		io.WriteString(w, "partial")
		return 7, err
	}
	blob, ok := f.blobs[rawURL]
	if !ok {
		return 0, domain.ErrNotFound
	}
	n, err := io.Copy(w, strings.NewReader(blob))
	return n, err
}

func (f *fakeLMS) ListCourses(context.Context) ([]domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Course
	for id := int64(1); len(out) < len(f.courses); id++ {
		if c, ok := f.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeLMS) GetCourse(_ context.Context, id int64) (*domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeLMS) SetNickname(_ context.Context, id int64, nickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.courses[id]
	if c.OriginalName == "" {
		c.OriginalName = c.Name
	}
	c.Name = nickname
	return nil
}

func (f *fakeLMS) RemoveNickname(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.courses[id]
	if c.OriginalName != "" {
		c.Name = c.OriginalName
	}
	return nil
}

func (f *fakeLMS) AddFavorite(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.courses[id].IsFavorite = true
	return nil
}

func (f *fakeLMS) RemoveFavorite(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.courses[id].IsFavorite = false
	return nil
}

func (f *fakeLMS) Profile(context.Context) (*domain.Profile, error) {
	return &domain.Profile{ID: 1, Name: "Test Student"}, nil
}

func (f *fakeLMS) ListModules(_ context.Context, courseID int64) ([]domain.Module, error) {
	return f.modules[courseID], f.fail("modules")
}

func (f *fakeLMS) ListModuleItems(_ context.Context, _, moduleID int64) ([]domain.ModuleItem, error) {
	return f.items[moduleID], f.fail("items")
}

func (f *fakeLMS) ListFolders(_ context.Context, courseID int64) ([]domain.Folder, error) {
	return f.folders[courseID], f.fail("folders")
}

func (f *fakeLMS) ListFolderFiles(_ context.Context, folderID int64) ([]domain.File, error) {
	if err := f.fail("files"); err != nil {
		return nil, err
	}
	return f.folderFiles[folderID], nil
}

func (f *fakeLMS) ListSubfolders(_ context.Context, folderID int64) ([]domain.Folder, error) {
	if err := f.fail("subfolders"); err != nil {
		return nil, err
	}
	return f.subfolders[folderID], nil
}

func (f *fakeLMS) ListAssignments(_ context.Context, courseID int64) ([]domain.Assignment, error) {
	return f.assignments[courseID], f.fail("assignments")
}

func (f *fakeLMS) ListTabs(_ context.Context, courseID int64) ([]domain.Tab, error) {
	return f.tabs[courseID], f.fail("tabs")
}

func (f *fakeLMS) ListAnnouncements(_ context.Context, courseID int64) ([]domain.DiscussionTopic, error) {
	return f.announcements[courseID], f.fail("announcements")
}

func (f *fakeLMS) GetFile(_ context.Context, _ int64, id string) (*domain.File, error) {
	return lookup(f.files, id)
}

func (f *fakeLMS) GetPage(_ context.Context, _ int64, slug string) (*domain.Page, error) {
	return lookup(f.pages, slug)
}

func (f *fakeLMS) GetQuiz(_ context.Context, _ int64, id string) (*domain.Quiz, error) {
	return lookup(f.quizzes, id)
}

func (f *fakeLMS) GetAssignment(_ context.Context, _ int64, id string) (*domain.Assignment, error) {
	return lookup(f.assignmentByID, id)
}

func (f *fakeLMS) GetDiscussionTopic(_ context.Context, _ int64, id string) (*domain.DiscussionTopic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lookup(f.topics, id)
}

func (f *fakeLMS) GetExternalTool(_ context.Context, _ int64, id string) (*domain.ExternalTool, error) {
	return lookup(f.tools, id)
}

func (f *fakeLMS) MarkTopicRead(_ context.Context, _, topicID int64, read bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked[topicID] = read
	if t, ok := f.topics[fmt.Sprint(topicID)]; ok {
		t.ReadState = "unread"
		if read {
			t.ReadState = "read"
		}
	}
	return nil
}

type fakeOpener struct{ urls []string }

func (o *fakeOpener) OpenURL(u string) error {
	o.urls = append(o.urls, u)
	return nil
}

type fakeViewer struct{ shown []string }

func (v *fakeViewer) ShowHTML(title, html string) error {
	v.shown = append(v.shown, title+": "+html)
	return nil
}

type fakeConfirmer struct {
	answer  bool
	prompts []string
}

func (c *fakeConfirmer) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type fixture struct {
	lms    *fakeLMS
	engine *Engine
	hook   *test.Hook
	fs     afero.Fs
	opener *fakeOpener
	viewer *fakeViewer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	fx := &fixture{
		lms:    newFakeLMS(),
		hook:   hook,
		fs:     afero.NewMemMapFs(),
		opener: &fakeOpener{},
		viewer: &fakeViewer{},
	}
	base := []Option{
		WithLogger(logger),
		WithStorage(storage.New(fx.fs)),
		WithOpener(fx.opener),
		WithViewer(fx.viewer),
		WithDownloadDir("/dl"),
	}
	fx.engine = New(fx.lms, append(base, opts...)...)
	return fx
}

// course registers a course and returns its node for the content type
func (fx *fixture) course(id int64, ct domain.ContentType) *domain.Node {
	c := &domain.Course{ID: id, Name: fmt.Sprintf("Course %d", id), IsFavorite: true, Term: &domain.Term{ID: 1, Name: "Fall"}}
	fx.lms.courses[id] = c
	cp := *c
	return fx.engine.NewCourseNode(context.Background(), &cp, ct)
}

func (fx *fixture) warnings() []string {
	var out []string
	for _, e := range fx.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func kinds(nodes []*domain.Node) []domain.Kind {
	var out []domain.Kind
	for _, n := range nodes {
		out = append(out, n.Kind())
	}
	return out
}

func sp(s string) *string { return &s }

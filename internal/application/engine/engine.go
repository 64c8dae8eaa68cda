// Package engine expands course tree nodes against the LMS and the
// third-party portals linked from it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// Default tab labels of the supported integrations
const (
	DefaultLecturePortalLabel = "Echo360"
	DefaultAttendanceLabel    = "aPlus+ Attendance"
)

const detailTimeout = 30 * time.Second

// Integrations selects which course tabs get specialized behaviour
type Integrations struct {
	LecturePortal      bool
	LecturePortalLabel string
	Attendance         bool
	AttendanceLabel    string
}

// Engine builds nodes and carries the collaborators their behaviours need
type Engine struct {
	lms          ports.LMS
	log          logrus.FieldLogger
	storage      ports.Storage
	opener       ports.URLOpener
	viewer       ports.Viewer
	confirmer    ports.Confirmer
	index        ports.NodeIndex
	downloadDir  string
	integrations Integrations
	workers      int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for user-visible notifications
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithStorage sets the download destination
func WithStorage(s ports.Storage) Option {
	return func(e *Engine) { e.storage = s }
}

// WithOpener sets the browser used by open actions
func WithOpener(o ports.URLOpener) Option {
	return func(e *Engine) { e.opener = o }
}

// WithViewer sets the HTML viewer used by display actions
func WithViewer(v ports.Viewer) Option {
	return func(e *Engine) { e.viewer = v }
}

// WithConfirmer sets the yes/no prompt used before downloads
func WithConfirmer(c ports.Confirmer) Option {
	return func(e *Engine) { e.confirmer = c }
}

// WithIndex records discovered nodes and links
func WithIndex(idx ports.NodeIndex) Option {
	return func(e *Engine) { e.index = idx }
}

// WithDownloadDir sets the default download folder
func WithDownloadDir(dir string) Option {
	return func(e *Engine) { e.downloadDir = dir }
}

// WithIntegrations enables the lecture portal and attendance tabs
func WithIntegrations(i Integrations) Option {
	return func(e *Engine) {
		if i.LecturePortalLabel == "" {
			i.LecturePortalLabel = DefaultLecturePortalLabel
		}
		if i.AttendanceLabel == "" {
			i.AttendanceLabel = DefaultAttendanceLabel
		}
		e.integrations = i
	}
}

// WithWorkers bounds the number of courses populated concurrently
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an Engine over the given LMS
func New(lms ports.LMS, opts ...Option) *Engine {
	e := &Engine{
		lms:     lms,
		log:     logrus.StandardLogger(),
		workers: 4,
		integrations: Integrations{
			LecturePortalLabel: DefaultLecturePortalLabel,
			AttendanceLabel:    DefaultAttendanceLabel,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DownloadDir returns the default download folder
func (e *Engine) DownloadDir() string { return e.downloadDir }

// LMS returns the underlying client
func (e *Engine) LMS() ports.LMS { return e.lms }

// fetcher outlives the expansion that built the node, so a later Refresh
// keeps working after that context is cancelled. Values are kept.
func (e *Engine) fetcher(ctx context.Context) domain.DetailFetcher {
	base := context.WithoutCancel(ctx)
	return func(url string) (map[string]any, error) {
		ctx, cancel := context.WithTimeout(base, detailTimeout)
		defer cancel()
		return e.lms.Detail(ctx, url)
	}
}

func (e *Engine) newNode(ctx context.Context, kind domain.Kind, res domain.Resource, b domain.Behavior) *domain.Node {
	return domain.NewNode(kind, res, b, e.fetcher(ctx))
}

// attach links child under parent and records it in the index
func (e *Engine) attach(parent, child *domain.Node) bool {
	if !parent.Append(child) {
		return false
	}
	e.record(child)
	return true
}

// record adds n to the run index, if there is one
func (e *Engine) record(n *domain.Node) {
	if e.index == nil {
		return
	}
	ix := ports.IndexedNode{
		Kind:     n.Kind(),
		Key:      n.Key(),
		Name:     n.Name(),
		CourseID: fmt.Sprint(courseOf(n).ID),
		URL:      n.Resource().Fields().HTMLURL,
	}
	if p := n.Parent(); p != nil {
		ix.Parent = p.ID().String()
	}
	if err := e.index.Record(ix); err != nil {
		e.log.WithError(err).Debug("index record failed")
	}
}

func (e *Engine) fields(n *domain.Node) logrus.Fields {
	return logrus.Fields{"node": n.Name(), "kind": n.Kind().String()}
}

// warn reports a recovered condition
func (e *Engine) warn(n *domain.Node, msg string) {
	e.log.WithFields(e.fields(n)).Warn(msg)
}

// notify reports a completed user-visible action
func (e *Engine) notify(n *domain.Node, msg string) {
	e.log.WithFields(e.fields(n)).Info(msg)
}

func (e *Engine) openURL(n *domain.Node, url string) error {
	e.notify(n, "Opening linked url:\n"+url)
	if e.opener == nil {
		return nil
	}
	return e.opener.OpenURL(url)
}

func (e *Engine) showHTML(title, html string) error {
	if e.viewer == nil {
		return errors.New("no HTML viewer configured")
	}
	return e.viewer.ShowHTML(title, html)
}

func (e *Engine) confirm(prompt string) bool {
	if e.confirmer == nil {
		return true
	}
	return e.confirmer.Confirm(prompt)
}

// courseOf returns the course record of n's course ancestor
func courseOf(n *domain.Node) *domain.Course {
	c, _ := n.Course().Resource().(*domain.Course)
	if c == nil {
		return &domain.Course{}
	}
	return c
}

// safeList runs a listing call. An authorization failure is reported and
// yields an empty result; other failures are returned.
func safeList[T any](e *Engine, n *domain.Node, list func() ([]T, error)) ([]T, error) {
	items, err := list()
	if err == nil {
		return items, nil
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		e.warn(n, "Unauthorized!")
		return nil, nil
	}
	return nil, err
}

// safeGet fetches one referenced resource. Any failure is reported and
// skips only that reference.
func safeGet[T any](e *Engine, n *domain.Node, method, id string, get func() (T, error)) (T, bool) {
	v, err := get()
	if err == nil {
		return v, true
	}
	var zero T
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		e.warn(n, "Unauthorized!")
	case errors.Is(err, domain.ErrNotFound):
		e.warn(n, fmt.Sprintf("Resource %q (via %q) not found for course %q.", id, method, n.Course().Name()))
	default:
		e.warn(n, fmt.Sprintf("Resource %q (via %q) failed: %v", id, method, err))
	}
	return zero, false
}

func openAction(run func(ctx context.Context) error) domain.Action {
	return domain.Action{Name: "Open", Multi: true, Run: run}
}

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

var errNoLaunchURL = errors.New("no sessionless launch url")

func (e *Engine) newTab(ctx context.Context, t *domain.Tab) *domain.Node {
	switch {
	case e.integrations.LecturePortal && t.Label == e.integrations.LecturePortalLabel:
		return e.newNode(ctx, domain.KindLecturePortal, t, &portalBehavior{tabBehavior: tabBehavior{e: e}})
	case e.integrations.Attendance && t.Label == e.integrations.AttendanceLabel:
		return e.newNode(ctx, domain.KindAttendance, t, &attendanceBehavior{tabBehavior: tabBehavior{e: e}})
	default:
		return e.newNode(ctx, domain.KindTab, t, &tabBehavior{e: e})
	}
}

// sessionlessURL asks the LMS for a one-time launch URL of a tool
func (e *Engine) sessionlessURL(ctx context.Context, apiURL string) (string, error) {
	if apiURL == "" {
		return "", errNoLaunchURL
	}
	doc, err := e.lms.Detail(ctx, apiURL)
	if err != nil {
		return "", err
	}
	if u, ok := doc["url"].(string); ok && u != "" {
		return u, nil
	}
	return "", errNoLaunchURL
}

// followSessionless opens the launch URL and submits the auto-post form
// it serves, leaving the tool's session cookies in the shared session.
func (e *Engine) followSessionless(ctx context.Context, t *domain.Tab) (*ports.Response, error) {
	launch, err := e.sessionlessURL(ctx, t.URL)
	if err != nil {
		return nil, err
	}
	r1, err := e.get(ctx, launch)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r1.Body))
	if err != nil {
		return nil, fmt.Errorf("parse launch page: %w", err)
	}
	form := doc.Find("form#tool_form").First()
	if form.Length() == 0 {
		return nil, fmt.Errorf("no launch form at %s", r1.URL)
	}
	r2, err := e.lms.Post(ctx, resolveURL(r1.URL, form.AttrOr("action", "")), formValues(form))
	if err != nil {
		return nil, err
	}
	if !r2.OK() {
		return nil, fmt.Errorf("POST %s: status %d", r2.URL, r2.StatusCode)
	}
	return r2, nil
}

// get is a session GET that treats non-2xx responses as errors
func (e *Engine) get(ctx context.Context, rawURL string) (*ports.Response, error) {
	r, err := e.lms.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !r.OK() {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, r.StatusCode)
	}
	return r, nil
}

func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input").Each(func(_ int, in *goquery.Selection) {
		if name, ok := in.Attr("name"); ok {
			values.Set(name, in.AttrOr("value", ""))
		}
	})
	return values
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// sameEndpoint keeps ref's query but takes scheme, host and path from base
func sameEndpoint(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	r.Scheme, r.Host, r.Path, r.RawPath = b.Scheme, b.Host, b.Path, b.RawPath
	return r.String()
}

// tabBehavior opens a course navigation tab through a sessionless launch
type tabBehavior struct{ e *Engine }

func (b *tabBehavior) Open(ctx context.Context, n *domain.Node) error {
	u, err := b.e.sessionlessURL(ctx, n.Resource().(*domain.Tab).URL)
	if errors.Is(err, errNoLaunchURL) {
		b.e.warn(n, "No external url found!")
		return nil
	}
	if err != nil {
		return err
	}
	return b.e.openURL(n, u)
}

func (b *tabBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{openAction(func(ctx context.Context) error { return b.Open(ctx, n) })}
}

// portalBehavior is a lecture portal tab. Its session is resolved on first
// use; a landing page outside /section/<id>/home leaves the tool inert.
type portalBehavior struct {
	tabBehavior

	mu       sync.Mutex
	resolved bool
	active   bool
	dest     string
	base     url.URL
}

func (b *portalBehavior) resolve(ctx context.Context, n *domain.Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.resolved {
		return nil
	}
	r, err := b.e.followSessionless(ctx, n.Resource().(*domain.Tab))
	if err != nil {
		return err
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return err
	}
	b.dest = r.URL
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 3 && parts[0] == "section" && parts[2] == "home" {
		b.active = true
		b.base = url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/" + parts[0] + "/" + parts[1]}
	}
	b.resolved = true
	return nil
}

func (b *portalBehavior) isActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// url builds an absolute portal URL for an absolute path
func (b *portalBehavior) url(path string) string {
	u := url.URL{Scheme: b.base.Scheme, Host: b.base.Host, Path: path}
	return u.String()
}

type syllabus struct {
	Status string `json:"status"`
	Data   []struct {
		Lesson struct {
			HasContent bool `json:"hasContent"`
			Lesson     struct {
				ID string `json:"id"`
			} `json:"lesson"`
		} `json:"lesson"`
	} `json:"data"`
}

func (b *portalBehavior) Expand(ctx context.Context, n *domain.Node) error {
	if err := b.resolve(ctx, n); err != nil {
		return err
	}
	if !b.isActive() {
		b.e.warn(n, fmt.Sprintf("Course is not activated on %s.", n.Name()))
		n.EnableIfPopulated()
		return nil
	}

	r, err := b.e.get(ctx, b.url(b.base.Path+"/syllabus"))
	if err != nil {
		return err
	}
	var s syllabus
	if err := json.Unmarshal(r.Body, &s); err != nil {
		return fmt.Errorf("decode syllabus: %w", err)
	}
	if s.Status != "ok" {
		return fmt.Errorf("syllabus status %q", s.Status)
	}

	for _, entry := range s.Data {
		if !entry.Lesson.HasContent {
			continue
		}
		id := entry.Lesson.Lesson.ID
		lecture, err := b.lecture(ctx, id)
		if err != nil {
			b.e.warn(n, fmt.Sprintf("Lesson %q skipped: %v", id, err))
			continue
		}
		b.e.attach(n, b.e.newNode(ctx, domain.KindLecture, lecture, &lectureBehavior{e: b.e}))
	}
	n.EnableIfPopulated()
	return nil
}

func (b *portalBehavior) lecture(ctx context.Context, lessonID string) (*domain.Lecture, error) {
	r, err := b.e.get(ctx, b.url("/lesson/"+lessonID+"/media"))
	if err != nil {
		return nil, err
	}
	var media struct {
		Data []domain.Lecture `json:"data"`
	}
	if err := json.Unmarshal(r.Body, &media); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	if len(media.Data) == 0 {
		return nil, errors.New("no media")
	}
	return &media.Data[0], nil
}

func (b *portalBehavior) Open(ctx context.Context, n *domain.Node) error {
	if err := b.resolve(ctx, n); err != nil {
		return err
	}
	return b.e.openURL(n, b.dest)
}

func (b *portalBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{openAction(func(ctx context.Context) error { return b.Open(ctx, n) })}
}

// lectureBehavior resolves its URLs against the parent portal
type lectureBehavior struct{ e *Engine }

func portalOf(n *domain.Node) (*portalBehavior, error) {
	p := n.Parent()
	if p == nil {
		return nil, fmt.Errorf("%v is not attached to a lecture portal", n)
	}
	b, ok := p.Behavior().(*portalBehavior)
	if !ok || !b.isActive() {
		return nil, fmt.Errorf("%v: %w", p, domain.ErrInactive)
	}
	return b, nil
}

func (b *lectureBehavior) Open(_ context.Context, n *domain.Node) error {
	portal, err := portalOf(n)
	if err != nil {
		return err
	}
	return b.e.openURL(n, portal.url("/lesson/"+n.Key()+"/classroom"))
}

func (b *lectureBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{
		{Name: "Show Info", Run: func(context.Context) error {
			return b.e.showHTML("Lecture Video Info", LectureInfoHTML(n.Resource().(*domain.Lecture)))
		}},
		openAction(func(ctx context.Context) error { return b.Open(ctx, n) }),
		downloadAction(b.e, n, "Download"),
	}
}

// downloadURL is the HD rendition of the lecture
func (b *lectureBehavior) downloadURL(n *domain.Node) (string, error) {
	portal, err := portalOf(n)
	if err != nil {
		return "", err
	}
	l := n.Resource().(*domain.Lecture)
	return portal.url("/media/download/" + l.Video.Media.ID + "/video/hd1.mp4"), nil
}

// LectureInfoHTML summarizes a recording's duration and file sizes
func LectureInfoHTML(l *domain.Lecture) string {
	var sb strings.Builder
	sb.WriteString(`<div align="center">`)
	fmt.Fprintf(&sb, "<h2>%s</h2>", html.EscapeString(l.Lesson.Name))
	if d, err := l.Duration(); err == nil {
		fmt.Fprintf(&sb, "<h3>Duration: %s</h3>", durationText(d))
	}
	sb.WriteString("<p>Files:</p><ul align=\"left\">")
	fmt.Fprintf(&sb, "<li>Original: %s</li>", humanize.Bytes(uint64(l.Video.Media.Media.OriginalFile.SizeInBytes)))
	video := l.Renditions()
	for i, label := range []string{"High Definition", "Standard Definition"} {
		if i < len(video) {
			f := video[i]
			fmt.Fprintf(&sb, "<li>%s (%dx%d): %s</li>", label, f.Width, f.Height, humanize.Bytes(uint64(f.Size)))
		}
	}
	if audio := l.Video.Media.Media.Current.AudioFiles; len(audio) > 0 {
		fmt.Fprintf(&sb, "<li>Audio Only: %s</li>", humanize.Bytes(uint64(audio[0].Size)))
	}
	sb.WriteString("</ul></div>")
	return sb.String()
}

func durationText(d time.Duration) string {
	secs := int(d.Seconds())
	h, m, s := secs/3600, secs%3600/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%d hrs, %d min, %d sec", h, m, s)
	case m > 0:
		return fmt.Sprintf("%d min, %d sec", m, s)
	default:
		return fmt.Sprintf("%d sec", s)
	}
}

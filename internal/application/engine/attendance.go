package engine

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"canvastree/internal/domain"
)

// attendanceBehavior is the attendance portal tab. It expands into one
// event per scheduled class day.
type attendanceBehavior struct {
	tabBehavior
}

func (b *attendanceBehavior) Expand(ctx context.Context, n *domain.Node) error {
	r, err := b.e.followSessionless(ctx, n.Resource().(*domain.Tab))
	if err != nil {
		return err
	}
	events, skipped, err := ParseAttendance(r.URL, r.Body)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		b.e.warn(n, "Unrecognized attendance entry: "+s)
	}
	for i := range events {
		b.e.attach(n, b.e.newNode(ctx, domain.KindEvent, &events[i], &eventBehavior{e: b.e}))
	}
	n.EnableIfPopulated()
	return nil
}

func (b *attendanceBehavior) Actions(n *domain.Node) []domain.Action {
	return []domain.Action{
		{Name: "Display Summary", Run: func(ctx context.Context) error { return b.summary(ctx, n) }},
		openAction(func(ctx context.Context) error { return b.Open(ctx, n) }),
	}
}

func (b *attendanceBehavior) summary(ctx context.Context, n *domain.Node) error {
	r1, err := b.e.followSessionless(ctx, n.Resource().(*domain.Tab))
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r1.Body))
	if err != nil {
		return err
	}
	href, ok := doc.Find(".stv_tt_title a").First().Attr("href")
	if !ok {
		return fmt.Errorf("no summary link at %s", r1.URL)
	}
	r2, err := b.e.get(ctx, resolveURL(r1.URL, href))
	if err != nil {
		return err
	}
	doc2, err := goquery.NewDocumentFromReader(bytes.NewReader(r2.Body))
	if err != nil {
		return err
	}
	content, err := goquery.OuterHtml(doc2.Find("#content").First())
	if err != nil {
		return err
	}
	return b.e.showHTML(n.Name(), content)
}

// ParseAttendance reads the day panels of an attendance page. Entries
// whose status icon is not recognized are returned as skipped text.
func ParseAttendance(pageURL string, body []byte) ([]domain.AttendanceEvent, []string, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}

	var (
		events  []domain.AttendanceEvent
		skipped []string
	)
	doc.Find(".dayPanel").Each(func(_ int, day *goquery.Selection) {
		id := day.AttrOr("id", "")
		rest, ok := strings.CutPrefix(id, "dayPanel_")
		if !ok {
			skipped = append(skipped, id)
			return
		}
		date, err := time.Parse("2_Jan_06", rest)
		if err != nil {
			skipped = append(skipped, id)
			return
		}
		eventURL := *page
		eventURL.Fragment = date.Format("2_Jan_06")

		day.Find("li").Each(func(_ int, li *goquery.Selection) {
			ev := domain.AttendanceEvent{
				Text:  strings.TrimSpace(li.Text()),
				DueAt: date.Format("2006-01-02T15:04:05"),
				URL:   eventURL.String(),
			}
			icon := li.Find("i").First()
			switch {
			case icon.HasClass("fa-check"):
				ev.Status = domain.AttendanceRecorded
			case icon.HasClass("fa-question"):
				if href, ok := li.Find("a").First().Attr("href"); ok {
					ev.Status = domain.AttendanceOpen
					ev.Link = sameEndpoint(pageURL, href)
				} else {
					ev.Status = domain.AttendanceMissed
				}
			default:
				skipped = append(skipped, ev.Text)
				return
			}
			events = append(events, ev)
		})
	})
	return events, skipped, nil
}

type eventBehavior struct{ e *Engine }

func (b *eventBehavior) Open(_ context.Context, n *domain.Node) error {
	return b.e.openURL(n, n.Resource().(*domain.AttendanceEvent).URL)
}

func (b *eventBehavior) Actions(n *domain.Node) []domain.Action {
	var actions []domain.Action
	if n.Resource().(*domain.AttendanceEvent).Status == domain.AttendanceOpen {
		actions = append(actions, domain.Action{
			Name:  "Record Attendance",
			Multi: true,
			Run:   func(ctx context.Context) error { return b.record(ctx, n) },
		})
	}
	return append(actions, openAction(func(ctx context.Context) error { return b.Open(ctx, n) }))
}

// record follows the submit link; when it lands on a check-in form the
// form is posted and the attendance tab is refreshed.
func (b *eventBehavior) record(ctx context.Context, n *domain.Node) error {
	ev := n.Resource().(*domain.AttendanceEvent)
	if ev.Link == "" {
		return nil
	}
	r1, err := b.e.get(ctx, ev.Link)
	if err != nil {
		return err
	}
	if r1.URL == ev.URL {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r1.Body))
	if err != nil {
		return err
	}
	form := doc.Find("form#ctl00").First()
	if form.Length() == 0 {
		return fmt.Errorf("no check-in form at %s", r1.URL)
	}
	r2, err := b.e.lms.Post(ctx, sameEndpoint(r1.URL, form.AttrOr("action", "")), formValues(form))
	if err != nil {
		return err
	}
	if !r2.OK() {
		return fmt.Errorf("POST %s: status %d", r2.URL, r2.StatusCode)
	}
	b.e.notify(n, fmt.Sprintf("Attendance recorded for event %s.", ev.Text))
	if p := n.Parent(); p != nil {
		return p.Reexpand(ctx)
	}
	return nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// Reference is a typed same-system link found in rich text
type Reference struct {
	Kind     domain.Kind
	Endpoint string
	ID       string
}

// referenceOrder is the order in which reference groups are resolved
var referenceOrder = []domain.Kind{
	domain.KindFile,
	domain.KindPage,
	domain.KindQuiz,
	domain.KindAssignment,
	domain.KindExternalTool,
}

var returnTypes = map[string]domain.Kind{
	"File":         domain.KindFile,
	"Page":         domain.KindPage,
	"Quiz":         domain.KindQuiz,
	"Assignment":   domain.KindAssignment,
	"ExternalTool": domain.KindExternalTool,
}

var pathSegments = map[string]domain.Kind{
	"files":          domain.KindFile,
	"pages":          domain.KindPage,
	"quizzes":        domain.KindQuiz,
	"assignments":    domain.KindAssignment,
	"external_tools": domain.KindExternalTool,
}

// ParseAPIPath splits an API endpoint path below api/v1 into
// resource-type segments and the identifiers following them.
func ParseAPIPath(endpoint string) (map[string]string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	p := strings.Trim(u.Path, "/")
	rel, ok := strings.CutPrefix(p, "api/v1/")
	if !ok {
		return nil, fmt.Errorf("not an API path: %s", u.Path)
	}
	parts := strings.Split(rel, "/")
	info := map[string]string{}
	if len(parts) > 3 {
		info[parts[0]] = parts[1]
		info[parts[2]] = strings.Join(parts[3:], "/")
	} else {
		info[parts[0]] = strings.Join(parts[1:], "/")
	}
	return info, nil
}

// reference classifies a parsed endpoint by its resource-type segment.
// Only the first path segment after the type is the identifier.
func reference(kind domain.Kind, endpoint string) (Reference, error) {
	info, err := ParseAPIPath(endpoint)
	if err != nil {
		return Reference{}, err
	}
	if kind == domain.KindUnknown {
		for seg, k := range pathSegments {
			if _, ok := info[seg]; ok {
				kind = k
				break
			}
		}
		if kind == domain.KindUnknown {
			return Reference{}, fmt.Errorf("unknown file link type, url: %s", endpoint)
		}
	}
	var seg string
	for s, k := range pathSegments {
		if k == kind {
			seg = s
		}
	}
	id, _, _ := strings.Cut(info[seg], "/")
	if id == "" {
		return Reference{}, fmt.Errorf("no %s id in %s", seg, endpoint)
	}
	if kind == domain.KindPage {
		if unq, err := url.PathUnescape(id); err == nil {
			id = unq
		}
	}
	return Reference{Kind: kind, Endpoint: endpoint, ID: id}, nil
}

// ParseReferences finds typed references in html. Anchors carrying the
// generic file-link class are probed through session; a probe that fails
// with not-found drops the anchor. A nil session disables probing.
func ParseReferences(ctx context.Context, session ports.Session, html string) ([]Reference, error) {
	if strings.TrimSpace(html) == "" {
		return nil, domain.ErrNoContent
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var (
		refs []Reference
		errs []error
	)
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if hidden, err := strconv.ParseBool(a.AttrOr("aria-hidden", "false")); err == nil && hidden {
			return
		}
		var (
			ref Reference
			err error
		)
		switch {
		case a.HasClass("instructure_file_link"):
			if session == nil {
				return
			}
			ref, err = probeFileLink(ctx, session, a.AttrOr("href", ""))
			if errors.Is(err, domain.ErrNotFound) {
				return
			}
		default:
			endpoint, ok := a.Attr("data-api-endpoint")
			kind, typed := returnTypes[a.AttrOr("data-api-returntype", "")]
			if !ok || !typed {
				return
			}
			ref, err = reference(kind, endpoint)
		}
		if err != nil {
			errs = append(errs, err)
			return
		}
		refs = append(refs, ref)
	})

	sort.SliceStable(refs, func(i, j int) bool {
		return kindRank(refs[i].Kind) < kindRank(refs[j].Kind)
	})
	if len(refs) == 0 {
		return nil, errors.Join(append([]error{domain.ErrNoLinks}, errs...)...)
	}
	return refs, errors.Join(errs...)
}

func probeFileLink(ctx context.Context, session ports.Session, href string) (Reference, error) {
	u, err := url.Parse(href)
	if err != nil {
		return Reference{}, err
	}
	if _, err := session.APIGet(ctx, u.Path); err != nil {
		return Reference{}, err
	}
	endpoint := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/api/v1/" + strings.TrimPrefix(u.Path, "/")}
	return reference(domain.KindUnknown, endpoint.String())
}

func kindRank(k domain.Kind) int {
	for i, o := range referenceOrder {
		if o == k {
			return i
		}
	}
	return len(referenceOrder)
}

// ExtractReferences resolves the references in a node's rich-text body
// and appends them as children. Missing content and bodies without links
// are reported, not returned.
func (e *Engine) ExtractReferences(ctx context.Context, n *domain.Node, html *string) error {
	if html == nil {
		e.warn(n, "No HTML present.")
		return nil
	}
	refs, err := ParseReferences(ctx, e.lms, *html)
	switch {
	case errors.Is(err, domain.ErrNoContent):
		e.warn(n, "No HTML present.")
		return nil
	case errors.Is(err, domain.ErrNoLinks):
		e.warn(n, "No HTML links found.")
		return nil
	case err != nil:
		e.warn(n, err.Error())
	}

	course := courseOf(n)
	for _, ref := range refs {
		child := e.resolveReference(ctx, n, course.ID, ref)
		if child == nil {
			continue
		}
		e.attach(n, child)
		if e.index != nil {
			if err := e.index.Link(ports.LinkEdge{Source: n.ID(), Target: child.ID()}); err != nil {
				e.log.WithError(err).Debug("index link failed")
			}
		}
	}
	return nil
}

func (e *Engine) resolveReference(ctx context.Context, n *domain.Node, courseID int64, ref Reference) *domain.Node {
	switch ref.Kind {
	case domain.KindFile:
		if f, ok := safeGet(e, n, "GetFile", ref.ID, func() (*domain.File, error) { return e.lms.GetFile(ctx, courseID, ref.ID) }); ok {
			return e.newFile(ctx, f)
		}
	case domain.KindPage:
		if p, ok := safeGet(e, n, "GetPage", ref.ID, func() (*domain.Page, error) { return e.lms.GetPage(ctx, courseID, ref.ID) }); ok {
			return e.newPage(ctx, p)
		}
	case domain.KindQuiz:
		if q, ok := safeGet(e, n, "GetQuiz", ref.ID, func() (*domain.Quiz, error) { return e.lms.GetQuiz(ctx, courseID, ref.ID) }); ok {
			return e.newQuiz(ctx, q)
		}
	case domain.KindAssignment:
		if a, ok := safeGet(e, n, "GetAssignment", ref.ID, func() (*domain.Assignment, error) {
			return e.lms.GetAssignment(ctx, courseID, ref.ID)
		}); ok {
			return e.newAssignment(ctx, a)
		}
	case domain.KindExternalTool:
		if t, ok := safeGet(e, n, "GetExternalTool", ref.ID, func() (*domain.ExternalTool, error) {
			return e.lms.GetExternalTool(ctx, courseID, ref.ID)
		}); ok {
			return e.newExternalTool(ctx, t)
		}
	}
	return nil
}

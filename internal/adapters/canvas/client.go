package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

const apiPrefix = "/api/v1/"

// DefaultPerPage is the page size requested from list endpoints
const DefaultPerPage = 100

// Client talks to a Canvas instance. API calls and the tool portals reached
// through sessionless launches share one cookie jar for the whole run.
type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	log     logrus.FieldLogger
	perPage int
}

var _ ports.LMS = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport. A client without a jar gets the
// default one.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the request logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// WithPerPage sets the page size of list requests
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// New creates a client for the instance at baseURL authenticated by token
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		base:    u,
		token:   token,
		http:    &http.Client{},
		log:     logrus.StandardLogger(),
		perPage: DefaultPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the instance root, without a trailing slash
func (c *Client) BaseURL() string { return c.base.String() }

// HTTPError is a non-2xx response that maps to no domain error
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

func statusError(method, rawURL string, code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, rawURL, domain.ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, rawURL, domain.ErrNotFound)
	default:
		return &HTTPError{Method: method, URL: rawURL, StatusCode: code}
	}
}

func ok(code int) bool { return code >= 200 && code < 300 }

// newRequest builds a request; the token only goes to the instance host
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" && strings.EqualFold(req.URL.Host, c.base.Host) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// send performs req and reads the whole body
func (c *Client) send(req *http.Request) (*ports.Response, http.Header, error) {
	c.log.WithFields(logrus.Fields{"method": req.Method, "url": req.URL.String()}).Debug("request")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", req.URL, err)
	}
	return &ports.Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, resp.Header, nil
}

// Get fetches rawURL and returns the response whatever its status
func (c *Client) Get(ctx context.Context, rawURL string) (*ports.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	r, _, err := c.send(req)
	return r, err
}

// Post submits form to rawURL and returns the response whatever its status
func (c *Client) Post(ctx context.Context, rawURL string, form url.Values) (*ports.Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r, _, err := c.send(req)
	return r, err
}

// APIGet fetches an API path. Paths outside /api/v1 are mapped into it,
// so a course page path doubles as the path of its API resource.
func (c *Client) APIGet(ctx context.Context, path string) (*ports.Response, error) {
	r, _, err := c.do(ctx, http.MethodGet, c.apiURL(path, nil), nil)
	return r, err
}

// Detail fetches a JSON document as a generic map
func (c *Client) Detail(ctx context.Context, rawURL string) (map[string]any, error) {
	r, _, err := c.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return doc, nil
}

// Stream copies the body of rawURL into w
func (c *Client) Stream(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	c.log.WithField("url", rawURL).Debug("stream")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if !ok(resp.StatusCode) {
		return 0, statusError(http.MethodGet, rawURL, resp.StatusCode)
	}
	return io.Copy(w, resp.Body)
}

// do performs an API request and maps error statuses
func (c *Client) do(ctx context.Context, method, rawURL string, form url.Values) (*ports.Response, http.Header, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	r, header, err := c.send(req)
	if err != nil {
		return nil, nil, err
	}
	if !ok(r.StatusCode) {
		return nil, nil, statusError(method, rawURL, r.StatusCode)
	}
	return r, header, nil
}

// apiURL resolves an API path against the instance
func (c *Client) apiURL(path string, query url.Values) string {
	path = "/" + strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(path, apiPrefix) {
		path = strings.TrimSuffix(apiPrefix, "/") + path
	}
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	u := c.apiURL(path, query)
	r, _, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

func (c *Client) write(ctx context.Context, method, path string, form url.Values) error {
	_, _, err := c.do(ctx, method, c.apiURL(path, nil), form)
	return err
}

// listAll follows rel="next" links until the listing is exhausted
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", fmt.Sprint(c.perPage))

	var out []T
	next := c.apiURL(path, query)
	for next != "" {
		r, header, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		var page []T
		if err := json.Unmarshal(r.Body, &page); err != nil {
			return nil, fmt.Errorf("decode %s: %w", next, err)
		}
		out = append(out, page...)
		next = nextLink(header.Get("Link"))
	}
	return out, nil
}

// nextLink extracts the rel="next" target of an RFC 8288 Link header
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segments[1:] {
			name, value, found := strings.Cut(strings.TrimSpace(param), "=")
			if found && strings.EqualFold(name, "rel") && strings.Trim(value, `"`) == "next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}

package canvas

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvastree/internal/domain"
)

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Auth   string
}

// recorder is an httptest server that logs every request it serves
type recorder struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
}

func newRecorder(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *recorder {
	t.Helper()
	rec := &recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		rec.mu.Lock()
		rec.requests = append(rec.requests, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Form:   r.PostForm,
			Auth:   r.Header.Get("Authorization"),
		})
		rec.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(rec.Close)
	return rec
}

func (r *recorder) last() recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	logger, _ := test.NewNullLogger()
	c, err := New(baseURL, "secret", append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("canvas.example.edu", "token")
	assert.Error(t, err)

	c, err := New("https://canvas.example.edu/", "token")
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu", c.BaseURL())
}

func TestListCoursesFollowsPagination(t *testing.T) {
	var srv *recorder
	srv = newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2&per_page=2>; rel="next", <%s/api/v1/courses?page=1&per_page=2>; rel="first"`, srv.URL, srv.URL))
			io.WriteString(w, `[{"id": 1, "name": "Physics", "is_favorite": true, "term": {"id": 7, "name": "Fall"}}, {"id": 2, "name": "Biology"}]`)
		case "2":
			io.WriteString(w, `[{"id": 3, "name": "Algebra"}]`)
		}
	})
	c := newTestClient(t, srv.URL, WithPerPage(2))

	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)

	require.Len(t, courses, 3)
	assert.Equal(t, "Physics", courses[0].Name)
	assert.True(t, courses[0].IsFavorite)
	assert.Equal(t, int64(7), courses[0].TermID())
	assert.Equal(t, int64(3), courses[2].ID)

	require.Len(t, srv.requests, 2)
	first := srv.requests[0]
	assert.Equal(t, "/api/v1/courses", first.Path)
	assert.Equal(t, "Bearer secret", first.Auth)
	assert.Equal(t, "2", first.Query.Get("per_page"))
	assert.Equal(t, []string{"term", "favorites"}, first.Query["include[]"])
	assert.Equal(t, "Bearer secret", srv.requests[1].Auth)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: domain.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: domain.ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			c := newTestClient(t, srv.URL)

			_, err := c.ListModules(context.Background(), 1)
			assert.ErrorIs(t, err, tt.want)

			_, err = c.GetPage(context.Background(), 1, "syllabus")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestServerErrorIsHTTPError(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(t, srv.URL)

	_, err := c.GetCourse(context.Background(), 5)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, http.MethodGet, httpErr.Method)
}

func TestGetAndPostKeepErrorStatuses(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "missing")
	})
	c := newTestClient(t, srv.URL)

	r, err := c.Get(context.Background(), srv.URL+"/nowhere")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
	assert.False(t, r.OK())
	assert.Equal(t, "missing", string(r.Body))

	r, err = c.Post(context.Background(), srv.URL+"/form", url.Values{"a": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
	assert.Equal(t, "1", srv.last().Form.Get("a"))
}

func TestTokenOnlyGoesToInstance(t *testing.T) {
	portal := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {})
	lms := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {})
	c := newTestClient(t, lms.URL)

	_, err := c.Get(context.Background(), portal.URL+"/section/1/home")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), lms.URL+"/courses/1")
	require.NoError(t, err)

	assert.Empty(t, portal.last().Auth)
	assert.Equal(t, "Bearer secret", lms.last().Auth)
}

func TestCookiesPersistAcrossRequests(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/launch":
			http.SetCookie(w, &http.Cookie{Name: "PLAY_SESSION", Value: "abc", Path: "/"})
			http.Redirect(w, r, "/section/9/home", http.StatusFound)
		case "/section/9/home":
			if ck, err := r.Cookie("PLAY_SESSION"); err == nil && ck.Value == "abc" {
				io.WriteString(w, "welcome")
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	c := newTestClient(t, "https://lms.example.edu")

	r, err := c.Post(context.Background(), srv.URL+"/launch", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/section/9/home", r.URL)

	r, err = c.Get(context.Background(), srv.URL+"/section/9/home")
	require.NoError(t, err)
	assert.Equal(t, "welcome", string(r.Body))
}

func TestAPIGetMapsCoursePaths(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/courses/1/files/2" {
			io.WriteString(w, `{"id": 2}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(t, srv.URL)

	_, err := c.APIGet(context.Background(), "/courses/1/files/2")
	require.NoError(t, err)

	_, err = c.APIGet(context.Background(), "/api/v1/courses/1/files/2")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/courses/1/files/2", srv.last().Path)

	_, err = c.APIGet(context.Background(), "/courses/1/files/3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetail(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": 4, "created_at": "2024-01-02T10:00:00Z", "url": "https://portal.example/launch"}`)
	})
	c := newTestClient(t, srv.URL)

	doc, err := c.Detail(context.Background(), srv.URL+"/api/v1/courses/1/external_tools/sessionless_launch?id=4")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example/launch", doc["url"])
	assert.Equal(t, "2024-01-02T10:00:00Z", doc["created_at"])
}

func TestStream(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/1/download" {
			io.WriteString(w, "file contents")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(t, srv.URL)

	var buf bytes.Buffer
	n, err := c.Stream(context.Background(), srv.URL+"/files/1/download", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)
	assert.Equal(t, "file contents", buf.String())
	assert.Equal(t, "Bearer secret", srv.last().Auth)

	buf.Reset()
	_, err = c.Stream(context.Background(), srv.URL+"/files/2/download", &buf)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, buf.Len())
}

func TestWritesUseCourseEndpoints(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"set nickname", func() error { return c.SetNickname(ctx, 3, "Physics") }, http.MethodPut, "/api/v1/users/self/course_nicknames/3"},
		{"remove nickname", func() error { return c.RemoveNickname(ctx, 3) }, http.MethodDelete, "/api/v1/users/self/course_nicknames/3"},
		{"add favorite", func() error { return c.AddFavorite(ctx, 3) }, http.MethodPost, "/api/v1/users/self/favorites/courses/3"},
		{"remove favorite", func() error { return c.RemoveFavorite(ctx, 3) }, http.MethodDelete, "/api/v1/users/self/favorites/courses/3"},
		{"mark read", func() error { return c.MarkTopicRead(ctx, 3, 8, true) }, http.MethodPut, "/api/v1/courses/3/discussion_topics/8/read"},
		{"mark unread", func() error { return c.MarkTopicRead(ctx, 3, 8, false) }, http.MethodDelete, "/api/v1/courses/3/discussion_topics/8/read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			got := srv.last()
			assert.Equal(t, tt.method, got.Method)
			assert.Equal(t, tt.path, got.Path)
			assert.Equal(t, "Bearer secret", got.Auth)
		})
	}

	assert.Equal(t, "Physics", srv.requests[0].Form.Get("nickname"))
}

func TestListingEndpoints(t *testing.T) {
	srv := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		path string
	}{
		{"modules", func() error { _, err := c.ListModules(ctx, 1); return err }, "/api/v1/courses/1/modules"},
		{"module items", func() error { _, err := c.ListModuleItems(ctx, 1, 2); return err }, "/api/v1/courses/1/modules/2/items"},
		{"folders", func() error { _, err := c.ListFolders(ctx, 1); return err }, "/api/v1/courses/1/folders"},
		{"folder files", func() error { _, err := c.ListFolderFiles(ctx, 5); return err }, "/api/v1/folders/5/files"},
		{"subfolders", func() error { _, err := c.ListSubfolders(ctx, 5); return err }, "/api/v1/folders/5/folders"},
		{"assignments", func() error { _, err := c.ListAssignments(ctx, 1); return err }, "/api/v1/courses/1/assignments"},
		{"tabs", func() error { _, err := c.ListTabs(ctx, 1); return err }, "/api/v1/courses/1/tabs"},
		{"announcements", func() error { _, err := c.ListAnnouncements(ctx, 1); return err }, "/api/v1/courses/1/discussion_topics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			assert.Equal(t, tt.path, srv.last().Path)
		})
	}
	assert.Equal(t, "true", srv.last().Query.Get("only_announcements"))
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{name: "next only", header: `<https://x/api/v1/courses?page=2>; rel="next"`, want: "https://x/api/v1/courses?page=2"},
		{
			name:   "next among others",
			header: `<https://x/a?page=1>; rel="current", <https://x/a?page=2>; rel="next", <https://x/a?page=5>; rel="last"`,
			want:   "https://x/a?page=2",
		},
		{name: "last page", header: `<https://x/a?page=1>; rel="first", <https://x/a?page=5>; rel="last"`, want: ""},
		{name: "malformed", header: `https://x/a?page=2; rel="next"`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.header))
		})
	}
}

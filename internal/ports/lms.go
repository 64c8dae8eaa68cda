package ports

import (
	"context"
	"io"
	"net/url"

	"canvastree/internal/domain"
)

// Response is a fetched page or document. URL is the final URL after
// redirects.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Session is an authenticated HTTP session shared with the LMS. Cookies
// set by third-party portals reached through it are kept for the run.
type Session interface {
	// Get fetches an absolute URL
	Get(ctx context.Context, rawURL string) (*Response, error)
	// Post submits a form to an absolute URL
	Post(ctx context.Context, rawURL string, form url.Values) (*Response, error)
	// APIGet fetches an API path on the LMS host, mapping error statuses
	APIGet(ctx context.Context, path string) (*Response, error)
	// Detail fetches a JSON document as a generic map
	Detail(ctx context.Context, rawURL string) (map[string]any, error)
	// Stream copies the body of rawURL into w
	Stream(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// LMS defines the course API operations the tree needs. Implementations
// map authorization failures to domain.ErrUnauthorized and missing
// resources to domain.ErrNotFound.
type LMS interface {
	Session

	BaseURL() string

	// Courses
	ListCourses(ctx context.Context) ([]domain.Course, error)
	GetCourse(ctx context.Context, courseID int64) (*domain.Course, error)
	SetNickname(ctx context.Context, courseID int64, nickname string) error
	RemoveNickname(ctx context.Context, courseID int64) error
	AddFavorite(ctx context.Context, courseID int64) error
	RemoveFavorite(ctx context.Context, courseID int64) error
	Profile(ctx context.Context) (*domain.Profile, error)

	// Listings
	ListModules(ctx context.Context, courseID int64) ([]domain.Module, error)
	ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]domain.ModuleItem, error)
	ListFolders(ctx context.Context, courseID int64) ([]domain.Folder, error)
	ListFolderFiles(ctx context.Context, folderID int64) ([]domain.File, error)
	ListSubfolders(ctx context.Context, folderID int64) ([]domain.Folder, error)
	ListAssignments(ctx context.Context, courseID int64) ([]domain.Assignment, error)
	ListTabs(ctx context.Context, courseID int64) ([]domain.Tab, error)
	ListAnnouncements(ctx context.Context, courseID int64) ([]domain.DiscussionTopic, error)

	// Single resources
	GetFile(ctx context.Context, courseID int64, fileID string) (*domain.File, error)
	GetPage(ctx context.Context, courseID int64, slug string) (*domain.Page, error)
	GetQuiz(ctx context.Context, courseID int64, quizID string) (*domain.Quiz, error)
	GetAssignment(ctx context.Context, courseID int64, assignmentID string) (*domain.Assignment, error)
	GetDiscussionTopic(ctx context.Context, courseID int64, topicID string) (*domain.DiscussionTopic, error)
	GetExternalTool(ctx context.Context, courseID int64, toolID string) (*domain.ExternalTool, error)

	MarkTopicRead(ctx context.Context, courseID, topicID int64, read bool) error
}

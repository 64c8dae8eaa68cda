package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"canvastree/internal/domain"
)

func courseQuery() url.Values {
	return url.Values{"include[]": {"term", "favorites"}}
}

// ListCourses lists the courses of the current user, with term and
// favorite state
func (c *Client) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return listAll[domain.Course](ctx, c, "courses", courseQuery())
}

func (c *Client) GetCourse(ctx context.Context, courseID int64) (*domain.Course, error) {
	var course domain.Course
	if err := c.getJSON(ctx, fmt.Sprintf("courses/%d", courseID), courseQuery(), &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) SetNickname(ctx context.Context, courseID int64, nickname string) error {
	return c.write(ctx, http.MethodPut, fmt.Sprintf("users/self/course_nicknames/%d", courseID), url.Values{"nickname": {nickname}})
}

func (c *Client) RemoveNickname(ctx context.Context, courseID int64) error {
	return c.write(ctx, http.MethodDelete, fmt.Sprintf("users/self/course_nicknames/%d", courseID), nil)
}

func (c *Client) AddFavorite(ctx context.Context, courseID int64) error {
	return c.write(ctx, http.MethodPost, fmt.Sprintf("users/self/favorites/courses/%d", courseID), nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, courseID int64) error {
	return c.write(ctx, http.MethodDelete, fmt.Sprintf("users/self/favorites/courses/%d", courseID), nil)
}

func (c *Client) Profile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.getJSON(ctx, "users/self/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListModules(ctx context.Context, courseID int64) ([]domain.Module, error) {
	return listAll[domain.Module](ctx, c, fmt.Sprintf("courses/%d/modules", courseID), nil)
}

func (c *Client) ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]domain.ModuleItem, error) {
	return listAll[domain.ModuleItem](ctx, c, fmt.Sprintf("courses/%d/modules/%d/items", courseID, moduleID),
		url.Values{"include[]": {"content_details"}})
}

func (c *Client) ListFolders(ctx context.Context, courseID int64) ([]domain.Folder, error) {
	return listAll[domain.Folder](ctx, c, fmt.Sprintf("courses/%d/folders", courseID), nil)
}

func (c *Client) ListFolderFiles(ctx context.Context, folderID int64) ([]domain.File, error) {
	return listAll[domain.File](ctx, c, fmt.Sprintf("folders/%d/files", folderID), nil)
}

func (c *Client) ListSubfolders(ctx context.Context, folderID int64) ([]domain.Folder, error) {
	return listAll[domain.Folder](ctx, c, fmt.Sprintf("folders/%d/folders", folderID), nil)
}

func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]domain.Assignment, error) {
	return listAll[domain.Assignment](ctx, c, fmt.Sprintf("courses/%d/assignments", courseID), nil)
}

func (c *Client) ListTabs(ctx context.Context, courseID int64) ([]domain.Tab, error) {
	return listAll[domain.Tab](ctx, c, fmt.Sprintf("courses/%d/tabs", courseID), nil)
}

// ListAnnouncements lists the course's announcement topics
func (c *Client) ListAnnouncements(ctx context.Context, courseID int64) ([]domain.DiscussionTopic, error) {
	return listAll[domain.DiscussionTopic](ctx, c, fmt.Sprintf("courses/%d/discussion_topics", courseID),
		url.Values{"only_announcements": {"true"}})
}

// getOne fetches a single course resource by id or slug
func getOne[T any](ctx context.Context, c *Client, courseID int64, collection, id string) (*T, error) {
	var v T
	path := fmt.Sprintf("courses/%d/%s/%s", courseID, collection, id)
	if err := c.getJSON(ctx, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) GetFile(ctx context.Context, courseID int64, fileID string) (*domain.File, error) {
	return getOne[domain.File](ctx, c, courseID, "files", fileID)
}

func (c *Client) GetPage(ctx context.Context, courseID int64, slug string) (*domain.Page, error) {
	return getOne[domain.Page](ctx, c, courseID, "pages", slug)
}

func (c *Client) GetQuiz(ctx context.Context, courseID int64, quizID string) (*domain.Quiz, error) {
	return getOne[domain.Quiz](ctx, c, courseID, "quizzes", quizID)
}

func (c *Client) GetAssignment(ctx context.Context, courseID int64, assignmentID string) (*domain.Assignment, error) {
	return getOne[domain.Assignment](ctx, c, courseID, "assignments", assignmentID)
}

func (c *Client) GetDiscussionTopic(ctx context.Context, courseID int64, topicID string) (*domain.DiscussionTopic, error) {
	return getOne[domain.DiscussionTopic](ctx, c, courseID, "discussion_topics", topicID)
}

func (c *Client) GetExternalTool(ctx context.Context, courseID int64, toolID string) (*domain.ExternalTool, error) {
	return getOne[domain.ExternalTool](ctx, c, courseID, "external_tools", toolID)
}

// MarkTopicRead marks a discussion topic read or unread for the user
func (c *Client) MarkTopicRead(ctx context.Context, courseID, topicID int64, read bool) error {
	method := http.MethodDelete
	if read {
		method = http.MethodPut
	}
	return c.write(ctx, method, fmt.Sprintf("courses/%d/discussion_topics/%d/read", courseID, topicID), nil)
}

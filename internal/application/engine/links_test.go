package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvastree/internal/domain"
)

func TestParseAPIPath(t *testing.T) {
	tests := []struct {
		endpoint string
		want     map[string]string
	}{
		{"https://lms.test/api/v1/courses/1/files/7", map[string]string{"courses": "1", "files": "7"}},
		{"https://lms.test/api/v1/courses/1/pages/intro-page", map[string]string{"courses": "1", "pages": "intro-page"}},
		{"/api/v1/courses/1/files/7/download", map[string]string{"courses": "1", "files": "7/download"}},
		{"https://lms.test/api/v1/files/7", map[string]string{"files": "7"}},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := ParseAPIPath(tt.endpoint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAPIPath("https://lms.test/courses/1")
	assert.Error(t, err)
}

func TestParseReferences(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		_, err := ParseReferences(context.Background(), nil, "")
		assert.ErrorIs(t, err, domain.ErrNoContent)
	})

	t.Run("no links", func(t *testing.T) {
		_, err := ParseReferences(context.Background(), nil, `<p>see <a href="https://example.com">this</a></p>`)
		assert.ErrorIs(t, err, domain.ErrNoLinks)
	})

	t.Run("typed anchors in group order", func(t *testing.T) {
		html := `
<a data-api-endpoint="https://lms.test/api/v1/courses/1/quizzes/3" data-api-returntype="Quiz">quiz</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/pages/week%201" data-api-returntype="Page">page</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/files/9" data-api-returntype="File" aria-hidden="true">hidden</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/files/8" data-api-returntype="File">file</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/modules/2" data-api-returntype="Module">module</a>`

		refs, err := ParseReferences(context.Background(), nil, html)
		require.NoError(t, err)
		require.Len(t, refs, 3)
		assert.Equal(t, Reference{Kind: domain.KindFile, Endpoint: "https://lms.test/api/v1/courses/1/files/8", ID: "8"}, refs[0])
		assert.Equal(t, domain.KindPage, refs[1].Kind)
		assert.Equal(t, "week 1", refs[1].ID)
		assert.Equal(t, domain.KindQuiz, refs[2].Kind)
	})
}

func TestExtractReferencesTwoFilesOneQuiz(t *testing.T) {
	fx := newFixture(t)
	course := fx.course(1, domain.ContentModules)
	body := `<p>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/files/1" data-api-returntype="File">one</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/files/2" data-api-returntype="File">two</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/quizzes/3" data-api-returntype="Quiz">quiz</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/files/1" data-api-returntype="File">one again</a>
</p>`
	fx.lms.files["1"] = &domain.File{ID: 1, DisplayName: "one.pdf"}
	fx.lms.files["2"] = &domain.File{ID: 2, DisplayName: "two.pdf"}
	fx.lms.quizzes["3"] = &domain.Quiz{ID: 3, Title: "Quiz"}
	page := fx.engine.newPage(context.Background(), &domain.Page{URL: "home", Title: "Home", Body: &body})
	require.True(t, course.Append(page))

	require.NoError(t, page.Expand(context.Background()))
	require.NoError(t, page.Expand(context.Background()))

	assert.Equal(t, []domain.Kind{domain.KindFile, domain.KindFile, domain.KindQuiz}, kinds(page.Children()))
}

func TestExtractReferencesFileLinkProbe(t *testing.T) {
	fx := newFixture(t)
	course := fx.course(1, domain.ContentModules)
	body := `<a class="instructure_file_link" href="https://lms.test/courses/1/files/5/download?wrap=1">notes</a>
<a class="instructure_file_link" href="https://lms.test/courses/1/files/6/download">gone</a>`
	fx.lms.apiPaths["/courses/1/files/5/download"] = true
	fx.lms.files["5"] = &domain.File{ID: 5, DisplayName: "notes.pdf"}
	assignment := fx.engine.newAssignment(context.Background(), &domain.Assignment{ID: 4, Name: "HW", Description: &body})
	require.True(t, course.Append(assignment))

	require.NoError(t, assignment.Expand(context.Background()))

	children := assignment.Children()
	require.Len(t, children, 1)
	assert.Equal(t, domain.Identity{Kind: domain.KindFile, Key: "5"}, children[0].ID())
}

func TestExtractReferencesReportsMissingContent(t *testing.T) {
	fx := newFixture(t)
	course := fx.course(1, domain.ContentModules)
	empty := ""
	withText := "<p>No links here</p>"

	for _, body := range []*string{nil, &empty, &withText} {
		page := fx.engine.newPage(context.Background(), &domain.Page{URL: "p", Title: "P", Body: body})
		course.Append(page)
		require.NoError(t, page.Expand(context.Background()))
		assert.Equal(t, 0, page.Len())
		course.Clear()
	}

	assert.Equal(t, []string{"No HTML present.", "No HTML present.", "No HTML links found."}, fx.warnings())
}

func TestExtractReferencesSkipsMissingResource(t *testing.T) {
	fx := newFixture(t)
	course := fx.course(1, domain.ContentModules)
	body := `<a data-api-endpoint="https://lms.test/api/v1/courses/1/assignments/77" data-api-returntype="Assignment">old</a>
<a data-api-endpoint="https://lms.test/api/v1/courses/1/external_tools/4" data-api-returntype="ExternalTool">tool</a>`
	fx.lms.tools["4"] = &domain.ExternalTool{ID: 4, Name: "Lab", CustomFields: map[string]string{"url": "https://lab.test"}}
	topic := fx.engine.newTopic(context.Background(), &domain.DiscussionTopic{ID: 1, Title: "T", DiscussionType: domain.DiscussionThreaded, Message: &body})
	course.Append(topic)

	require.NoError(t, topic.Expand(context.Background()))

	require.Equal(t, []domain.Kind{domain.KindExternalTool}, kinds(topic.Children()))
	assert.Contains(t, fx.warnings(), `Resource "77" (via "GetAssignment") not found for course "Course 1".`)

	require.NoError(t, topic.Children()[0].Activate(context.Background()))
	assert.Equal(t, []string{"https://lab.test"}, fx.opener.urls)
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

const launchAPI = "https://lms.test/api/v1/courses/1/external_tools/sessionless_launch?id=9"

const launchPage = `<html><body>
<form id="tool_form" action="https://portal.test/lti/launch" method="post">
  <input type="hidden" name="oauth_nonce" value="abc">
  <input type="hidden" name="user_id" value="42">
  <input type="submit" name="go">
</form></body></html>`

func portalFixture(t *testing.T, landing string) (*fixture, *domain.Node) {
	fx := newFixture(t, WithIntegrations(Integrations{LecturePortal: true}))
	course := fx.course(1, domain.ContentTools)
	fx.lms.tabs[1] = []domain.Tab{{ID: "context_external_tool_9", Label: "Echo360", Type: "external", URL: launchAPI}}
	fx.lms.details[launchAPI] = map[string]any{"url": "https://lms.test/launch/9"}
	fx.lms.web["https://lms.test/launch/9"] = &ports.Response{URL: "https://lms.test/launch/9", StatusCode: 200, Body: []byte(launchPage)}
	fx.lms.posts["https://portal.test/lti/launch"] = &ports.Response{URL: landing, StatusCode: 200}

	require.NoError(t, course.Expand(context.Background()))
	return fx, course.Children()[0]
}

func TestLecturePortalExpand(t *testing.T) {
	fx, portal := portalFixture(t, "https://portal.test/section/S1/home")
	fx.lms.web["https://portal.test/section/S1/syllabus"] = &ports.Response{StatusCode: 200, Body: []byte(`{
		"status": "ok",
		"data": [
			{"lesson": {"hasContent": true, "lesson": {"id": "L1"}}},
			{"lesson": {"hasContent": false, "lesson": {"id": "L2"}}}
		]}`)}
	fx.lms.web["https://portal.test/lesson/L1/media"] = &ports.Response{StatusCode: 200, Body: []byte(`{"data": [{
		"lesson": {"id": "L1", "name": "Lecture 1", "timing": {"end": "2024-02-01T15:00:00Z"}},
		"video": {"media": {"id": "M1", "media": {
			"originalFile": {"name": "lecture1.mp4", "sizeInBytes": 2000000000},
			"current": {"duration": "PT3671.5S",
				"primaryFiles": [{"width": 640, "height": 360, "size": 100000000}, {"width": 1280, "height": 720, "size": 300000000}],
				"audioFiles": [{"size": 20000000}]}
		}}}
	}]}`)}
	fx.lms.blobs["https://portal.test/media/download/M1/video/hd1.mp4"] = "video"

	require.NoError(t, portal.Activate(context.Background()))

	require.Len(t, fx.lms.postCalls, 1)
	assert.Equal(t, "abc", fx.lms.postCalls[0].Form.Get("oauth_nonce"))
	assert.Equal(t, "42", fx.lms.postCalls[0].Form.Get("user_id"))

	lectures := portal.Children()
	require.Len(t, lectures, 1)
	lecture := lectures[0]
	assert.Equal(t, domain.Identity{Kind: domain.KindLecture, Key: "L1"}, lecture.ID())
	assert.Equal(t, "Lecture 1", lecture.Name())
	assert.False(t, lecture.Date().IsZero())

	require.NoError(t, lecture.Activate(context.Background()))
	require.NoError(t, portal.Activate(context.Background()))
	assert.Equal(t, []string{
		"https://portal.test/lesson/L1/classroom",
		"https://portal.test/section/S1/home",
	}, fx.opener.urls)

	require.NoError(t, fx.engine.Download(context.Background(), lecture, "/dl", false))
	assert.Equal(t, "video", read(t, fx.fs, "/dl/lecture1.mp4"))

	require.NoError(t, portal.Expand(context.Background()))
	assert.Len(t, fx.lms.postCalls, 1, "session is resolved once")
	assert.Equal(t, 1, portal.Len())
}

func TestLecturePortalInactive(t *testing.T) {
	fx, portal := portalFixture(t, "https://portal.test/courses")

	require.NoError(t, portal.Expand(context.Background()))

	assert.Equal(t, 0, portal.Len())
	assert.Contains(t, fx.warnings(), "Course is not activated on Echo360.")
	assert.False(t, portal.Enabled())
}

func TestLectureInfoHTML(t *testing.T) {
	var l domain.Lecture
	l.Lesson.Name = "Intro & Overview"
	l.Video.Media.Media.OriginalFile.SizeInBytes = 1500000000
	l.Video.Media.Media.Current.Duration = "PT3671.5S"
	l.Video.Media.Media.Current.PrimaryFiles = []domain.MediaFile{{Width: 640, Height: 360, Size: 100000000}, {Width: 1280, Height: 720, Size: 300000000}}
	l.Video.Media.Media.Current.AudioFiles = []domain.MediaFile{{Size: 20000000}}

	html := LectureInfoHTML(&l)

	assert.Contains(t, html, "<h2>Intro &amp; Overview</h2>")
	assert.Contains(t, html, "Duration: 1 hrs, 1 min, 12 sec")
	assert.Contains(t, html, "Original: 1.5 GB")
	assert.Contains(t, html, "High Definition (1280x720): 300 MB")
	assert.Contains(t, html, "Standard Definition (640x360): 100 MB")
	assert.Contains(t, html, "Audio Only: 20 MB")
}

func TestDurationText(t *testing.T) {
	assert.Equal(t, "42 sec", durationText(42*time.Second))
	assert.Equal(t, "2 min, 5 sec", durationText(125*time.Second))
}

const attendancePage = `<html><body>
<div class="stv_tt_title"><a href="/summary?student=42">Summary</a></div>
<div class="dayPanel" id="dayPanel_05_Sep_19"><ul>
  <li><i class="fa fa-check"></i> Lecture 1</li>
</ul></div>
<div class="dayPanel" id="dayPanel_6_Sep_19"><ul>
  <li><i class="fa fa-question"></i><a href="?event=7&amp;check=1">Lecture 2</a></li>
  <li><i class="fa fa-question"></i> Lab 2</li>
  <li><i class="fa fa-star"></i> Party</li>
</ul></div>
</body></html>`

func TestParseAttendance(t *testing.T) {
	events, skipped, err := ParseAttendance("https://attend.test/student/home.aspx?id=3", []byte(attendancePage))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, domain.AttendanceEvent{
		Text:   "Lecture 1",
		DueAt:  "2019-09-05T00:00:00",
		Status: domain.AttendanceRecorded,
		URL:    "https://attend.test/student/home.aspx?id=3#5_Sep_19",
	}, events[0])
	assert.Equal(t, domain.AttendanceOpen, events[1].Status)
	assert.Equal(t, "https://attend.test/student/home.aspx?event=7&check=1", events[1].Link)
	assert.Equal(t, domain.AttendanceMissed, events[2].Status)
	assert.Equal(t, "", events[2].Link)
	assert.Equal(t, []string{"Party"}, skipped)
}

func TestParseAttendanceSameEntryOnTwoDays(t *testing.T) {
	page := `<div class="dayPanel" id="dayPanel_12_Sep_19"><ul><li><i class="fa fa-check"></i> Lecture</li></ul></div>
<div class="dayPanel" id="dayPanel_19_Sep_19"><ul><li><i class="fa fa-check"></i> Lecture</li></ul></div>
<div class="dayPanel" id="panel_20_Sep_19"><ul><li><i class="fa fa-check"></i> Lecture</li></ul></div>`
	events, skipped, err := ParseAttendance("https://attend.test/student/home.aspx", []byte(page))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "2019-09-12T00:00:00", events[0].DueAt)
	assert.Equal(t, "2019-09-19T00:00:00", events[1].DueAt)
	assert.Equal(t, []string{"panel_20_Sep_19"}, skipped)

	tool := domain.NewNode(domain.KindAttendance, &domain.ExternalTool{ID: 9}, nil, nil)
	for i := range events {
		tool.Append(domain.NewNode(domain.KindEvent, &events[i], nil, nil))
	}
	assert.Equal(t, 2, tool.Len())
}

func TestRecordAttendance(t *testing.T) {
	fx := newFixture(t, WithIntegrations(Integrations{Attendance: true}))
	course := fx.course(1, domain.ContentTools)
	const pageURL = "https://attend.test/student/home.aspx"
	fx.lms.tabs[1] = []domain.Tab{{ID: "context_external_tool_9", Label: "aPlus+ Attendance", Type: "external", URL: launchAPI}}
	fx.lms.details[launchAPI] = map[string]any{"url": "https://lms.test/launch/9"}
	fx.lms.web["https://lms.test/launch/9"] = &ports.Response{URL: "https://lms.test/launch/9", StatusCode: 200, Body: []byte(launchPage)}
	fx.lms.posts["https://portal.test/lti/launch"] = &ports.Response{URL: pageURL, StatusCode: 200, Body: []byte(attendancePage)}
	fx.lms.web[pageURL+"?event=7&check=1"] = &ports.Response{
		URL:        "https://attend.test/student/checkin.aspx?event=7",
		StatusCode: 200,
		Body:       []byte(`<form id="ctl00" action="./checkin.aspx?event=7&amp;go=1"><input name="__VIEWSTATE" value="vs"></form>`),
	}
	fx.lms.posts["https://attend.test/student/checkin.aspx?event=7&go=1"] = &ports.Response{StatusCode: 200}
	fx.lms.web["https://attend.test/summary?student=42"] = &ports.Response{StatusCode: 200, Body: []byte(`<div id="content"><p>3/4</p></div>`)}

	require.NoError(t, course.Expand(context.Background()))
	tool := course.Children()[0]
	require.Equal(t, domain.KindAttendance, tool.Kind())
	require.NoError(t, tool.Expand(context.Background()))
	require.Equal(t, 3, tool.Len())
	open := tool.Children()[1]

	actions := open.Actions()
	require.Equal(t, "Record Attendance", actions[0].Name)
	require.NoError(t, actions[0].Run(context.Background()))

	last := fx.lms.postCalls[len(fx.lms.postCalls)-2]
	assert.Equal(t, "https://attend.test/student/checkin.aspx?event=7&go=1", last.URL)
	assert.Equal(t, "vs", last.Form.Get("__VIEWSTATE"))
	assert.Equal(t, 3, tool.Len())
	assert.Len(t, tool.Children()[0].Actions(), 1)

	require.NoError(t, tool.Actions()[0].Run(context.Background()))
	assert.Equal(t, []string{`aPlus+ Attendance: <div id="content"><p>3/4</p></div>`}, fx.viewer.shown)
}

package domain

import "strconv"

// Fields is the typed projection of the optional attributes a remote
// resource may carry. Candidate lists are evaluated in order and the first
// non-nil entry wins.
type Fields struct {
	Name        *string
	Title       *string
	DisplayName *string
	Label       *string

	CreatedAt   *string
	CompletedAt *string
	UnlockAt    *string
	DueAt       *string
	AltDate     *string // kind-specific fallback, e.g. a lecture's end time

	URL     string // detail URL probed when no date is present
	HTMLURL string
}

// Resource is anything a node can wrap
type Resource interface {
	// Key is the kind-scoped natural identifier
	Key() string
	Fields() Fields
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func strp(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Term is an enrollment term
type Term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course is an enrollment as returned with include[]=term&include[]=favorites
type Course struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name,omitempty"`
	CourseCode   string  `json:"course_code"`
	IsFavorite   bool    `json:"is_favorite"`
	Term         *Term   `json:"term,omitempty"`
	CreatedAt    *string `json:"created_at,omitempty"`
	HTMLURL      string  `json:"html_url,omitempty"`
}

func (c *Course) Key() string { return itoa(c.ID) }

func (c *Course) Fields() Fields {
	return Fields{Name: strp(c.Name), CreatedAt: c.CreatedAt, HTMLURL: c.HTMLURL}
}

// TermID returns the course's term id, zero when the course has no term
func (c *Course) TermID() int64 {
	if c.Term == nil {
		return 0
	}
	return c.Term.ID
}

// Module is a course module
type Module struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Position    int     `json:"position"`
	UnlockAt    *string `json:"unlock_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
	ItemsURL    string  `json:"items_url,omitempty"`
}

func (m *Module) Key() string { return itoa(m.ID) }

func (m *Module) Fields() Fields {
	return Fields{Name: strp(m.Name), UnlockAt: m.UnlockAt, CompletedAt: m.CompletedAt}
}

// Module item types
const (
	ItemSubHeader    = "SubHeader"
	ItemFile         = "File"
	ItemPage         = "Page"
	ItemDiscussion   = "Discussion"
	ItemQuiz         = "Quiz"
	ItemAssignment   = "Assignment"
	ItemExternalURL  = "ExternalUrl"
	ItemExternalTool = "ExternalTool"
)

// ModuleItem is one entry of a module
type ModuleItem struct {
	ID          int64  `json:"id"`
	ModuleID    int64  `json:"module_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	ContentID   int64  `json:"content_id,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	HTMLURL     string `json:"html_url,omitempty"`
	URL         string `json:"url,omitempty"`

	Details *ItemDetails `json:"content_details,omitempty"`
}

// ItemDetails carries the dates of the item's content
type ItemDetails struct {
	DueAt    *string `json:"due_at,omitempty"`
	UnlockAt *string `json:"unlock_at,omitempty"`
}

func (i *ModuleItem) Key() string { return itoa(i.ID) }

func (i *ModuleItem) Fields() Fields {
	f := Fields{Title: strp(i.Title), URL: i.URL, HTMLURL: i.HTMLURL}
	if i.Details != nil {
		f.UnlockAt = i.Details.UnlockAt
		f.DueAt = i.Details.DueAt
	}
	return f
}

// Folder is a course filesystem folder
type Folder struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	FullName      string  `json:"full_name"`
	ParentID      *int64  `json:"parent_folder_id,omitempty"`
	CreatedAt     *string `json:"created_at,omitempty"`
	UnlockAt      *string `json:"unlock_at,omitempty"`
	LockedForUser bool    `json:"locked_for_user"`
}

func (f *Folder) Key() string { return itoa(f.ID) }

func (f *Folder) Fields() Fields {
	return Fields{Name: strp(f.Name), CreatedAt: f.CreatedAt, UnlockAt: f.UnlockAt}
}

// File is a course file
type File struct {
	ID            int64   `json:"id"`
	DisplayName   string  `json:"display_name"`
	Filename      string  `json:"filename"`
	URL           string  `json:"url"`
	Size          int64   `json:"size"`
	ContentType   string  `json:"content-type,omitempty"`
	CreatedAt     *string `json:"created_at,omitempty"`
	UnlockAt      *string `json:"unlock_at,omitempty"`
	LockedForUser bool    `json:"locked_for_user"`
}

func (f *File) Key() string { return itoa(f.ID) }

// The file URL is a download link, not a JSON detail endpoint, so it is
// deliberately not exposed for date probing.
func (f *File) Fields() Fields {
	return Fields{DisplayName: strp(f.DisplayName), CreatedAt: f.CreatedAt, UnlockAt: f.UnlockAt}
}

// Page is a wiki page; its natural key is the URL slug
type Page struct {
	PageID    int64   `json:"page_id"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Body      *string `json:"body,omitempty"`
	CreatedAt *string `json:"created_at,omitempty"`
	HTMLURL   string  `json:"html_url,omitempty"`
}

func (p *Page) Key() string { return p.URL }

func (p *Page) Fields() Fields {
	return Fields{Title: strp(p.Title), CreatedAt: p.CreatedAt, HTMLURL: p.HTMLURL}
}

// Quiz is a course quiz
type Quiz struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	HTMLURL  string  `json:"html_url"`
	UnlockAt *string `json:"unlock_at,omitempty"`
	DueAt    *string `json:"due_at,omitempty"`
}

func (q *Quiz) Key() string { return itoa(q.ID) }

func (q *Quiz) Fields() Fields {
	return Fields{Title: strp(q.Title), UnlockAt: q.UnlockAt, DueAt: q.DueAt, HTMLURL: q.HTMLURL}
}

// Discussion types
const (
	DiscussionThreaded    = "threaded"
	DiscussionSideComment = "side_comment"
)

// DiscussionTopic backs both discussions and announcements
type DiscussionTopic struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Message        *string `json:"message,omitempty"`
	DiscussionType string  `json:"discussion_type"`
	ReadState      string  `json:"read_state"`
	CreatedAt      *string `json:"created_at,omitempty"`
	PostedAt       *string `json:"posted_at,omitempty"`
	DelayedPostAt  *string `json:"delayed_post_at,omitempty"`
	HTMLURL        string  `json:"html_url,omitempty"`
}

func (d *DiscussionTopic) Key() string { return itoa(d.ID) }

func (d *DiscussionTopic) Fields() Fields {
	return Fields{Title: strp(d.Title), CreatedAt: d.CreatedAt, AltDate: d.PostedAt, HTMLURL: d.HTMLURL}
}

// IsRead reports whether the topic has been read by the current user
func (d *DiscussionTopic) IsRead() bool { return d.ReadState == "read" }

// Assignment is a course assignment
type Assignment struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   *string `json:"created_at,omitempty"`
	UnlockAt    *string `json:"unlock_at,omitempty"`
	DueAt       *string `json:"due_at,omitempty"`
	HTMLURL     string  `json:"html_url"`
	URL         string  `json:"url,omitempty"` // sessionless launch for tool-backed assignments
}

func (a *Assignment) Key() string { return itoa(a.ID) }

func (a *Assignment) Fields() Fields {
	return Fields{
		Name:      strp(a.Name),
		CreatedAt: a.CreatedAt,
		UnlockAt:  a.UnlockAt,
		DueAt:     a.DueAt,
		URL:       a.URL,
		HTMLURL:   a.HTMLURL,
	}
}

// Tab is a course navigation tab
type Tab struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	HTMLURL string `json:"html_url"`
	URL     string `json:"url,omitempty"`
}

func (t *Tab) Key() string { return t.ID }

func (t *Tab) Fields() Fields {
	return Fields{Label: strp(t.Label), URL: t.URL, HTMLURL: t.HTMLURL}
}

// ExternalTool is an LTI tool configured on the course
type ExternalTool struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	URL          string            `json:"url,omitempty"`
	CreatedAt    *string           `json:"created_at,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

func (t *ExternalTool) Key() string { return itoa(t.ID) }

func (t *ExternalTool) Fields() Fields {
	return Fields{Name: strp(t.Name), CreatedAt: t.CreatedAt}
}

// AttendanceEvent is one day entry scraped from the attendance portal
type AttendanceEvent struct {
	Text   string
	DueAt  string
	Status string // recorded, open, missed
	URL    string
	Link   string // submit link for open events
}

// Attendance statuses
const (
	AttendanceRecorded = "recorded"
	AttendanceOpen     = "open"
	AttendanceMissed   = "missed"
)

func (e *AttendanceEvent) Key() string { return e.DueAt + "|" + e.Text }

func (e *AttendanceEvent) Fields() Fields {
	return Fields{Name: strp(e.Text), DueAt: strp(e.DueAt), HTMLURL: e.URL}
}

// Profile is the current user's profile
type Profile struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	LoginID      string `json:"login_id"`
	PrimaryEmail string `json:"primary_email"`
}

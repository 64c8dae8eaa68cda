package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the remote resource a node wraps
type Kind int

const (
	KindUnknown Kind = iota
	KindCourse
	KindModule
	KindFolder
	KindFile
	KindPage
	KindQuiz
	KindDiscussion
	KindAnnouncement
	KindAssignment
	KindExternalTool // LTI tool referenced from rich text
	KindTab          // course navigation tab of type "external"
	KindExternalURL  // module item pointing outside the LMS
	KindLecturePortal
	KindLecture
	KindAttendance
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindCourse:
		return "Course"
	case KindModule:
		return "Module"
	case KindFolder:
		return "Folder"
	case KindFile:
		return "File"
	case KindPage:
		return "Page"
	case KindQuiz:
		return "Quiz"
	case KindDiscussion:
		return "Discussion"
	case KindAnnouncement:
		return "Announcement"
	case KindAssignment:
		return "Assignment"
	case KindExternalTool:
		return "ExternalTool"
	case KindTab:
		return "Tab"
	case KindExternalURL:
		return "ExternalURL"
	case KindLecturePortal:
		return "LecturePortal"
	case KindLecture:
		return "Lecture"
	case KindAttendance:
		return "Attendance"
	case KindEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// ParseKind is the inverse of Kind.String (case-insensitive)
func ParseKind(s string) Kind {
	for k := KindCourse; k <= KindEvent; k++ {
		if strings.EqualFold(k.String(), s) {
			return k
		}
	}
	return KindUnknown
}

// ContentType is the lens that decides how a course expands
type ContentType int

const (
	ContentModules ContentType = iota
	ContentFiles
	ContentAssignments
	ContentTools
	ContentAnnouncements
)

// ContentTypes lists every content type in selector order
var ContentTypes = []ContentType{
	ContentModules,
	ContentFiles,
	ContentAssignments,
	ContentTools,
	ContentAnnouncements,
}

// Tag is the short name used in preference files
func (c ContentType) Tag() string {
	switch c {
	case ContentFiles:
		return "files"
	case ContentAssignments:
		return "assignments"
	case ContentTools:
		return "tools"
	case ContentAnnouncements:
		return "announcements"
	default:
		return "modules"
	}
}

func (c ContentType) String() string {
	switch c {
	case ContentFiles:
		return "Filesystem"
	case ContentAssignments:
		return "Assignments"
	case ContentTools:
		return "External Tools"
	case ContentAnnouncements:
		return "Announcements"
	default:
		return "Modules"
	}
}

// Next cycles to the following content type
func (c ContentType) Next() ContentType {
	return ContentTypes[(int(c)+1)%len(ContentTypes)]
}

// ParseContentType accepts a tag ("files"), a display name ("Filesystem")
// or a selector index ("1").
func ParseContentType(s string) (ContentType, error) {
	s = strings.TrimSpace(s)
	for _, c := range ContentTypes {
		if strings.EqualFold(s, c.Tag()) || strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n < len(ContentTypes) {
			return ContentTypes[n], nil
		}
		return ContentModules, fmt.Errorf("content type index out of range: %d", n)
	}
	return ContentModules, fmt.Errorf("unknown content type: %q", s)
}

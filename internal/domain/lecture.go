package domain

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// MediaFile is one rendition of a lecture recording
type MediaFile struct {
	Width  int   `json:"width,omitempty"`
	Height int   `json:"height,omitempty"`
	Size   int64 `json:"size"`
}

// Lecture is the media payload returned by the lecture portal for one
// lesson. It has no counterpart in the course API.
type Lecture struct {
	Lesson struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		CreatedAt *string `json:"createdAt,omitempty"`
		Timing    *struct {
			Start *string `json:"start,omitempty"`
			End   *string `json:"end,omitempty"`
		} `json:"timing,omitempty"`
	} `json:"lesson"`
	Video struct {
		Media struct {
			ID    string `json:"id"`
			Media struct {
				OriginalFile struct {
					Name        string `json:"name"`
					SizeInBytes int64  `json:"sizeInBytes"`
				} `json:"originalFile"`
				Current struct {
					Duration     string      `json:"duration"`
					PrimaryFiles []MediaFile `json:"primaryFiles"`
					AudioFiles   []MediaFile `json:"audioFiles"`
				} `json:"current"`
			} `json:"media"`
		} `json:"media"`
	} `json:"video"`
}

func (l *Lecture) Key() string { return l.Lesson.ID }

func (l *Lecture) Fields() Fields {
	f := Fields{Name: strp(l.Lesson.Name), CreatedAt: l.Lesson.CreatedAt}
	if l.Lesson.Timing != nil {
		f.AltDate = l.Lesson.Timing.End
	}
	return f
}

var durationRe = regexp.MustCompile(`^PT([\d.]+)S$`)

// Duration parses the ISO-8601 "PT<seconds>S" duration of the recording
func (l *Lecture) Duration() (time.Duration, error) {
	m := durationRe.FindStringSubmatch(l.Video.Media.Media.Current.Duration)
	if m == nil {
		return 0, fmt.Errorf("unrecognized duration %q", l.Video.Media.Media.Current.Duration)
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(math.Round(secs)) * time.Second, nil
}

// Renditions returns the primary video files, largest first
func (l *Lecture) Renditions() []MediaFile {
	files := append([]MediaFile(nil), l.Video.Media.Media.Current.PrimaryFiles...)
	sort.Slice(files, func(i, j int) bool { return files[i].Size > files[j].Size })
	return files
}

// Filename is the name of the original upload
func (l *Lecture) Filename() string {
	return l.Video.Media.Media.OriginalFile.Name
}

package cmd

import (
	"encoding/json"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"canvastree/internal/domain"
)

// write renders v as json or yaml, or calls text for the text format
func write(w io.Writer, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

// nodeView is the serialized form of a loaded node and its subtree
type nodeView struct {
	Kind        string     `json:"kind" yaml:"kind"`
	Key         string     `json:"key" yaml:"key"`
	Name        string     `json:"name" yaml:"name"`
	ContentType string     `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Date        *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty"`
	Disabled    bool       `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Children    []nodeView `json:"children,omitempty" yaml:"children,omitempty"`
}

func viewOf(n *domain.Node) nodeView {
	v := nodeView{
		Kind:     n.Kind().String(),
		Key:      n.Key(),
		Name:     n.Name(),
		URL:      n.Resource().Fields().HTMLURL,
		Disabled: !n.Enabled(),
	}
	if info, ok := n.CourseInfo(); ok && n.Kind() == domain.KindCourse {
		v.ContentType = info.ContentType.String()
	}
	if t, ok := n.Date().Time(); ok {
		v.Date = &t
	}
	for _, c := range n.Children() {
		v.Children = append(v.Children, viewOf(c))
	}
	return v
}

// courseView is the serialized form of a course listing entry
type courseView struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Term     string `json:"term,omitempty" yaml:"term,omitempty"`
	Favorite bool   `json:"favorite" yaml:"favorite"`
}

func courseViewOf(c domain.Course) courseView {
	v := courseView{ID: c.ID, Name: c.Name, Code: c.CourseCode, Favorite: c.IsFavorite}
	if c.Term != nil {
		v.Term = c.Term.Name
	}
	return v
}

// resultView is the serialized form of a search hit
type resultView struct {
	Kind     string `json:"kind" yaml:"kind"`
	Key      string `json:"key" yaml:"key"`
	Name     string `json:"name" yaml:"name"`
	CourseID string `json:"course_id" yaml:"course_id"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Score    int    `json:"score" yaml:"score"`
}

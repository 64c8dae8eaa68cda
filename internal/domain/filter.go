package domain

import (
	"sort"
	"strings"
)

// Filter is the visibility and ordering projection over a Tree. It never
// mutates the tree; callers re-query it after any input changes.
type Filter struct {
	FavoriteOnly bool
	Active       ContentType
	Descending   bool
	terms        map[int64]bool
}

// NewFilter returns the default projection: favorites only, every known
// term visible.
func NewFilter(terms []Term, active ContentType) *Filter {
	f := &Filter{
		FavoriteOnly: true,
		Active:       active,
		Descending:   true,
		terms:        map[int64]bool{},
	}
	f.AddTerms(terms)
	return f
}

// AddTerms makes newly discovered terms visible; known terms keep their state
func (f *Filter) AddTerms(terms []Term) {
	for _, t := range terms {
		if _, ok := f.terms[t.ID]; !ok {
			f.terms[t.ID] = true
		}
	}
}

// SetTermVisible shows or hides one term
func (f *Filter) SetTermVisible(id int64, visible bool) {
	f.terms[id] = visible
}

// ToggleTerm flips one term
func (f *Filter) ToggleTerm(id int64) {
	f.terms[id] = !f.terms[id]
}

// TermVisible reports whether a term is in the visible set
func (f *Filter) TermVisible(id int64) bool {
	return f.terms[id]
}

// VisibleTerms returns the ids of visible terms
func (f *Filter) VisibleTerms() []int64 {
	var ids []int64
	for id, v := range f.terms {
		if v {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsVisible evaluates the three criteria against the node's course
// ancestor. A node without one is a programming error and panics.
func (f *Filter) IsVisible(n *Node) bool {
	info := n.MustCourseInfo()
	if f.FavoriteOnly && !info.Favorite {
		return false
	}
	if !f.terms[info.TermID] {
		return false
	}
	return info.ContentType == f.Active
}

// Compare orders by date, then display name for ties. With Descending
// the newest comes first and undated nodes trail.
func (f *Filter) Compare(a, b *Node) int {
	ka, kb := a.Date().SortKey(), b.Date().SortKey()
	if ka != kb {
		c := -1
		if ka > kb {
			c = 1
		}
		if f.Descending {
			c = -c
		}
		return c
	}
	return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
}

// Row is one visible line of the projection
type Row struct {
	Node  *Node
	Depth int
}

// Rows flattens the visible part of the tree. Children are listed for
// expanded nodes unless collapsed reports the node as folded in the view.
func (f *Filter) Rows(t *Tree, collapsed func(*Node) bool) []Row {
	var rows []Row
	roots := f.sorted(t.Roots(), true)
	for _, r := range roots {
		f.appendRows(&rows, r, 0, collapsed)
	}
	return rows
}

func (f *Filter) appendRows(rows *[]Row, n *Node, depth int, collapsed func(*Node) bool) {
	*rows = append(*rows, Row{Node: n, Depth: depth})
	if n.State() != StateExpanded || (collapsed != nil && collapsed(n)) {
		return
	}
	for _, c := range f.sorted(n.Children(), false) {
		f.appendRows(rows, c, depth+1, collapsed)
	}
}

func (f *Filter) sorted(nodes []*Node, filter bool) []*Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if !filter || f.IsVisible(n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return f.Compare(out[i], out[j]) < 0 })
	return out
}

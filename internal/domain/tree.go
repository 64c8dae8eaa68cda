package domain

import (
	"fmt"
	"sort"
	"sync"
)

// Tree is the ordered forest of course nodes
type Tree struct {
	mu    sync.RWMutex
	roots []*Node
}

// NewTree creates an empty tree
func NewTree() *Tree {
	return &Tree{}
}

// Add appends a course node. The node's course attributes must already be
// set so that it is filter-evaluable the moment it becomes reachable. A
// course appears once per content type.
func (t *Tree) Add(n *Node) bool {
	info, ok := n.CourseInfo()
	if !ok {
		panic(fmt.Errorf("tree add %v: %w", n, ErrNoCourse))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.roots {
		if r.Equal(n) && r.MustCourseInfo().ContentType == info.ContentType {
			return false
		}
	}
	t.roots = append(t.roots, n)
	return true
}

// Remove drops a course node and its subtree
func (t *Tree) Remove(n *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.roots {
		if r == n {
			t.roots = append(t.roots[:i], t.roots[i+1:]...)
			return true
		}
	}
	return false
}

// Reset drops every course
func (t *Tree) Reset() {
	t.mu.Lock()
	t.roots = nil
	t.mu.Unlock()
}

// Roots returns a snapshot of the course nodes
func (t *Tree) Roots() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Node(nil), t.roots...)
}

// Len returns the number of courses
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.roots)
}

// Walk visits every loaded node
func (t *Tree) Walk(fn func(node *Node, depth int) bool) {
	for _, r := range t.Roots() {
		cont := true
		r.Walk(func(n *Node, d int) bool {
			cont = fn(n, d)
			return cont
		})
		if !cont {
			return
		}
	}
}

// Find returns every loaded node with the given identity
func (t *Tree) Find(id Identity) []*Node {
	var found []*Node
	t.Walk(func(n *Node, _ int) bool {
		if n.ID() == id {
			found = append(found, n)
		}
		return true
	})
	return found
}

// Terms returns the distinct terms of the loaded courses, sorted by id
func (t *Tree) Terms() []Term {
	seen := map[int64]bool{}
	var terms []Term
	for _, r := range t.Roots() {
		c, ok := r.Resource().(*Course)
		if !ok {
			continue
		}
		term := Term{ID: c.TermID()}
		if c.Term != nil {
			term = *c.Term
		}
		if !seen[term.ID] {
			seen[term.ID] = true
			terms = append(terms, term)
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	return terms
}

package domain

import (
	"context"
	"fmt"
	"sync"
)

// Identity is a node's kind-scoped key. Two nodes are equal iff their
// identities are equal.
type Identity struct {
	Kind Kind
	Key  string
}

func (i Identity) String() string {
	return i.Kind.String() + ":" + i.Key
}

// State is the primary-action state of a node
type State int

const (
	StateCollapsed State = iota
	StateExpanded
)

// Behavior holds the kind-specific logic of a node. It may implement any
// of Expander, Opener, Renamer and ActionProvider.
type Behavior interface{}

// Expander fetches and attaches a node's children
type Expander interface {
	Expand(ctx context.Context, n *Node) error
}

// Opener is a node's "open" action
type Opener interface {
	Open(ctx context.Context, n *Node) error
}

// DirectOpener marks expandable kinds whose primary action is still Open
type DirectOpener interface {
	OpensDirectly() bool
}

// Renamer writes a new display name back to the remote
type Renamer interface {
	Rename(ctx context.Context, n *Node, name string) error
}

// ActionProvider lists a node's secondary actions
type ActionProvider interface {
	Actions(n *Node) []Action
}

// Action is a named secondary action. Actions with a Prompt take a line
// of text and run through RunText instead of Run.
type Action struct {
	Name  string
	Multi bool // applies to a multi-selection
	Run   func(ctx context.Context) error

	Prompt  string
	RunText func(ctx context.Context, text string) error
}

// CourseInfo holds the course-level attributes the filter reads
type CourseInfo struct {
	Favorite    bool
	TermID      int64
	ContentType ContentType
}

// Node is one element of the content tree
type Node struct {
	mu sync.RWMutex

	kind     Kind
	key      string
	name     string
	resource Resource
	date     DateField
	fetch    DetailFetcher
	behavior Behavior

	enabled  bool
	state    State
	parent   *Node
	children []*Node
	course   *CourseInfo
}

// NewNode builds a node; name and date are derived here and only change
// through Refresh.
func NewNode(kind Kind, res Resource, b Behavior, fetch DetailFetcher) *Node {
	n := &Node{
		kind:     kind,
		key:      res.Key(),
		resource: res,
		fetch:    fetch,
		behavior: b,
		enabled:  true,
	}
	n.derive()
	return n
}

// NewCourseNode builds a top-level course node with its filter attributes
func NewCourseNode(res Resource, info CourseInfo, b Behavior, fetch DetailFetcher) *Node {
	n := NewNode(KindCourse, res, b, fetch)
	n.course = &info
	return n
}

func (n *Node) derive() {
	f := n.resource.Fields()
	n.name = DisplayName(n.kind, n.resource.Key(), f)
	n.date = NewDateField(f, n.fetch)
}

// DisplayName returns the first present of name, title, display_name and
// label, falling back to the kind and key.
func DisplayName(kind Kind, key string, f Fields) string {
	for _, s := range []*string{f.Name, f.Title, f.DisplayName, f.Label} {
		if s != nil {
			return *s
		}
	}
	return fmt.Sprintf("%s %s", kind, key)
}

// Kind returns the node kind
func (n *Node) Kind() Kind { return n.kind }

// Key returns the kind-scoped key
func (n *Node) Key() string { return n.key }

// ID returns the node identity
func (n *Node) ID() Identity { return Identity{Kind: n.kind, Key: n.key} }

// Equal compares identities; kind is part of the identity
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.kind == o.kind && n.key == o.key
}

func (n *Node) String() string {
	return fmt.Sprintf("<%s %q>", n.kind, n.Name())
}

// Name returns the display name
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Date returns the node's date field
func (n *Node) Date() DateField {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.date
}

// Resource returns the wrapped remote resource
func (n *Node) Resource() Resource {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.resource
}

// Behavior returns the kind-specific behavior
func (n *Node) Behavior() Behavior { return n.behavior }

// Enabled reports the UI affordance flag
func (n *Node) Enabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// SetEnabled sets the UI affordance flag
func (n *Node) SetEnabled(v bool) {
	n.mu.Lock()
	n.enabled = v
	n.mu.Unlock()
}

// EnableIfPopulated disables the node when an expansion found no
// children and re-enables it once it has some
func (n *Node) EnableIfPopulated() {
	n.mu.Lock()
	n.enabled = len(n.children) > 0
	n.mu.Unlock()
}

// State returns the primary-action state
func (n *Node) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Parent returns the non-owning back-reference
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Children returns a snapshot of the children in discovery order
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// Len returns the number of children
func (n *Node) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.children)
}

// Lineage returns the ancestors, root first, ending with n
func (n *Node) Lineage() []*Node {
	var lineage []*Node
	for a := n; a != nil; a = a.Parent() {
		lineage = append([]*Node{a}, lineage...)
	}
	return lineage
}

// Course returns the topmost ancestor
func (n *Node) Course() *Node {
	a := n
	for p := a.Parent(); p != nil; p = a.Parent() {
		a = p
	}
	return a
}

// CourseInfo returns the attributes of the course ancestor
func (n *Node) CourseInfo() (CourseInfo, bool) {
	root := n.Course()
	root.mu.RLock()
	defer root.mu.RUnlock()
	if root.course == nil {
		return CourseInfo{}, false
	}
	return *root.course, true
}

// MustCourseInfo is CourseInfo for callers where a missing course is a
// programming error.
func (n *Node) MustCourseInfo() CourseInfo {
	info, ok := n.CourseInfo()
	if !ok {
		panic(fmt.Errorf("%v: %w", n, ErrNoCourse))
	}
	return info
}

// SetCourseInfo replaces the course attributes of a course node
func (n *Node) SetCourseInfo(info CourseInfo) {
	n.mu.Lock()
	n.course = &info
	n.mu.Unlock()
}

// Append links child under n. Children already present (by identity) and
// children equal to n or one of its ancestors are rejected.
func (n *Node) Append(child *Node) bool {
	if child == nil {
		return false
	}
	for a := n; a != nil; a = a.Parent() {
		if a.Equal(child) {
			return false
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.children {
		if c.Equal(child) {
			return false
		}
	}
	child.mu.Lock()
	child.parent = n
	child.mu.Unlock()
	n.children = append(n.children, child)
	return true
}

// Clear drops every child and returns the node to the collapsed state
func (n *Node) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.children {
		c.mu.Lock()
		c.parent = nil
		c.mu.Unlock()
	}
	n.children = nil
	n.state = StateCollapsed
}

// Expandable reports whether the kind has an expansion phase
func (n *Node) Expandable() bool {
	_, ok := n.behavior.(Expander)
	return ok
}

// Expand fetches children additively; repeated calls never duplicate
func (n *Node) Expand(ctx context.Context) error {
	if e, ok := n.behavior.(Expander); ok {
		if err := e.Expand(ctx, n); err != nil {
			return err
		}
	}
	n.mu.Lock()
	n.state = StateExpanded
	n.mu.Unlock()
	return nil
}

// Reexpand clears the children and expands again
func (n *Node) Reexpand(ctx context.Context) error {
	n.Clear()
	return n.Expand(ctx)
}

// Open runs the kind's open action, if any
func (n *Node) Open(ctx context.Context) error {
	if o, ok := n.behavior.(Opener); ok {
		return o.Open(ctx, n)
	}
	return nil
}

// Activate is the primary (double-click) action: a collapsed expandable
// node expands, anything else opens. Expandable kinds without an open
// action re-expand, which is idempotent.
func (n *Node) Activate(ctx context.Context) error {
	_, canOpen := n.behavior.(Opener)
	direct := false
	if d, ok := n.behavior.(DirectOpener); ok {
		direct = d.OpensDirectly()
	}
	if n.Expandable() && !direct && (n.State() == StateCollapsed || !canOpen) {
		return n.Expand(ctx)
	}
	return n.Open(ctx)
}

// Rename changes the display name through the kind's Renamer
func (n *Node) Rename(ctx context.Context, name string) error {
	r, ok := n.behavior.(Renamer)
	if !ok {
		return ErrNotRenamable
	}
	return r.Rename(ctx, n, name)
}

// Refresh swaps in a refetched resource and rederives name and date
func (n *Node) Refresh(res Resource) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resource = res
	n.derive()
}

// Actions lists the secondary actions; expanded nodes gain Refresh
func (n *Node) Actions() []Action {
	var actions []Action
	if p, ok := n.behavior.(ActionProvider); ok {
		actions = append(actions, p.Actions(n)...)
	}
	if n.Expandable() && n.State() == StateExpanded {
		actions = append(actions, Action{
			Name:  "Refresh",
			Multi: true,
			Run:   n.Reexpand,
		})
	}
	return actions
}

// Walk visits n and its loaded descendants depth-first until fn returns false
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) bool {
	if !fn(n, depth) {
		return false
	}
	for _, c := range n.Children() {
		if !c.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// Depth returns the distance to the course ancestor
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		depth++
	}
	return depth
}

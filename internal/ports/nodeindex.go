package ports

import "canvastree/internal/domain"

// IndexedNode is a node as recorded in the run index
type IndexedNode struct {
	Kind     domain.Kind
	Key      string
	Name     string
	CourseID string
	Parent   string // parent identity, "Kind:Key"
	URL      string
}

// LinkEdge is a rich-text reference from one node to another
type LinkEdge struct {
	Source domain.Identity
	Target domain.Identity
}

// NodeIndex records what has been discovered during this run. Nothing
// outlives the process.
type NodeIndex interface {
	Record(n IndexedNode) error
	Link(e LinkEdge) error
	Search(query string, limit int) ([]IndexedNode, error)
	LinksTo(target domain.Identity) ([]LinkEdge, error)
	Close() error
}

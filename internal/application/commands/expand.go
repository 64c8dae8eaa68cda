package commands

import (
	"context"
	"errors"
	"fmt"

	"canvastree/internal/application"
	"canvastree/internal/domain"
)

// Resolve finds the loaded nodes with the given kind name and key. A
// course key matches one node per loaded content type.
func Resolve(tree *domain.Tree, kind, key string) ([]*domain.Node, error) {
	k, err := application.ValidateKind("kind", kind)
	if err != nil {
		return nil, err
	}
	if err := application.ValidateRequired("key", key); err != nil {
		return nil, err
	}
	nodes := tree.Find(domain.Identity{Kind: k, Key: key})
	if len(nodes) == 0 {
		return nil, &application.LookupError{Kind: k.String(), Key: key}
	}
	return nodes, nil
}

// ExpandResult contains the nodes that were expanded
type ExpandResult struct {
	Nodes   []*domain.Node
	Message string
}

// ExpandCommand expands a loaded node, and optionally its descendants
type ExpandCommand struct {
	eng   TreeEngine
	tree  *domain.Tree
	Kind  string
	Key   string
	Depth int
}

// NewExpandCommand creates a new ExpandCommand
func NewExpandCommand(eng TreeEngine, tree *domain.Tree, kind, key string, depth int) *ExpandCommand {
	return &ExpandCommand{
		eng:   eng,
		tree:  tree,
		Kind:  kind,
		Key:   key,
		Depth: depth,
	}
}

// Validate checks the node reference and depth
func (c *ExpandCommand) Validate() error {
	if _, err := application.ValidateKind("kind", c.Kind); err != nil {
		return err
	}
	if err := application.ValidateRequired("key", c.Key); err != nil {
		return err
	}
	if c.Depth < 0 {
		return &application.ValidationError{
			Field:   "depth",
			Message: fmt.Sprintf("depth must not be negative, got: %d", c.Depth),
		}
	}
	return nil
}

// Execute runs the expand command. Every matching node is expanded even
// when another one fails.
func (c *ExpandCommand) Execute(ctx context.Context) (*ExpandResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := Resolve(c.tree, c.Kind, c.Key)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, n := range nodes {
		if err := c.eng.ExpandDepth(ctx, n, c.Depth); err != nil {
			errs = append(errs, err)
		}
	}

	return &ExpandResult{
		Nodes:   nodes,
		Message: fmt.Sprintf("Expanded %d node(s) matching %s %s", len(nodes), c.Kind, c.Key),
	}, errors.Join(errs...)
}

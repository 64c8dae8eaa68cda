package commands

import (
	"context"
	"sort"
	"strings"

	"canvastree/internal/application"
	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// DefaultSearchLimit caps index lookups when no limit is given
const DefaultSearchLimit = 50

// SearchResult wraps an indexed node with a relevance score
type SearchResult struct {
	ports.IndexedNode
	Score int
}

// SearchCommand searches the nodes discovered so far with fuzzy matching
type SearchCommand struct {
	index ports.NodeIndex
	Query string
	Limit int
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(index ports.NodeIndex, query string) *SearchCommand {
	return &SearchCommand{
		index: index,
		Query: query,
		Limit: DefaultSearchLimit,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	limit := c.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	results, err := c.index.Search(c.Query, limit)
	if err != nil {
		return nil, err
	}

	return FuzzySort(results, c.Query), nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		// Bonus if it starts with query
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '.' || target[i-1] == '-') {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// FuzzySort sorts indexed nodes by relevance to the query
func FuzzySort(results []ports.IndexedNode, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(results))

	for _, r := range results {
		s1 := FuzzyScore(r.Name, query)
		s2 := FuzzyScore(r.Key, query)

		best := max(s1, s2)

		if best > 0 {
			scored = append(scored, SearchResult{
				IndexedNode: r,
				Score:       best,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// LinksToCommand lists the nodes whose rich text references a node
type LinksToCommand struct {
	index ports.NodeIndex
	Kind  string
	Key   string
}

// NewLinksToCommand creates a new LinksToCommand
func NewLinksToCommand(index ports.NodeIndex, kind, key string) *LinksToCommand {
	return &LinksToCommand{
		index: index,
		Kind:  kind,
		Key:   key,
	}
}

// Execute runs the links-to command
func (c *LinksToCommand) Execute(ctx context.Context) ([]domain.Identity, error) {
	k, err := application.ValidateKind("kind", c.Kind)
	if err != nil {
		return nil, err
	}
	if err := application.ValidateRequired("key", c.Key); err != nil {
		return nil, err
	}

	edges, err := c.index.LinksTo(domain.Identity{Kind: k, Key: c.Key})
	if err != nil {
		return nil, err
	}
	sources := make([]domain.Identity, 0, len(edges))
	for _, e := range edges {
		sources = append(sources, e.Source)
	}
	return sources, nil
}

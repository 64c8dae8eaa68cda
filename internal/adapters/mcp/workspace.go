package mcp

import (
	"context"
	"sync"

	"canvastree/internal/application/commands"
	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// Workspace is the state shared by the tools of one server: the course
// tree loaded so far and the index of what it discovered.
type Workspace struct {
	eng   commands.TreeEngine
	lms   ports.LMS
	index ports.NodeIndex
	types []domain.ContentType

	mu   sync.Mutex
	tree *domain.Tree
}

// NewWorkspace creates a workspace. The tree is loaded on first use with
// one node per course and content type.
func NewWorkspace(eng commands.TreeEngine, lms ports.LMS, index ports.NodeIndex, types []domain.ContentType) *Workspace {
	return &Workspace{eng: eng, lms: lms, index: index, types: types}
}

// Tree returns the loaded tree, building the course level on first call
func (w *Workspace) Tree(ctx context.Context) (*domain.Tree, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tree != nil {
		return w.tree, nil
	}
	result, err := commands.NewBuildTreeCommand(w.eng, w.types, 0).Execute(ctx)
	if err != nil {
		return nil, err
	}
	w.tree = result.Tree
	return w.tree, nil
}

// Reload drops the loaded tree; the next call to Tree rebuilds it
func (w *Workspace) Reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tree = nil
}

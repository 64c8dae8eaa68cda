package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"canvastree/internal/domain"
	"canvastree/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

// Index implements ports.NodeIndex with an in-memory SQLite database.
// Everything is discarded on Close.
type Index struct {
	db *sql.DB
}

// Ensure Index implements NodeIndex
var _ ports.NodeIndex = (*Index)(nil)

// Open creates an empty in-memory index
func Open() (*Index, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		PRAGMA temp_store = MEMORY;

		CREATE TABLE nodes (
			kind INTEGER NOT NULL,
			key TEXT NOT NULL,
			course_id TEXT NOT NULL,
			name TEXT NOT NULL,
			parent TEXT NOT NULL,
			url TEXT NOT NULL,
			PRIMARY KEY (kind, key, course_id)
		);
		CREATE TABLE edges (
			source_kind INTEGER NOT NULL,
			source_key TEXT NOT NULL,
			target_kind INTEGER NOT NULL,
			target_key TEXT NOT NULL,
			PRIMARY KEY (source_kind, source_key, target_kind, target_key)
		);
		CREATE INDEX idx_nodes_name ON nodes(name);
		CREATE INDEX idx_edges_target ON edges(target_kind, target_key);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Record inserts or updates a node. A node seen again under another parent
// keeps the latest parent.
func (idx *Index) Record(n ports.IndexedNode) error {
	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO nodes (kind, key, course_id, name, parent, url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, int(n.Kind), n.Key, n.CourseID, n.Name, n.Parent, n.URL)
	return err
}

// Link records a rich-text reference
func (idx *Index) Link(e ports.LinkEdge) error {
	_, err := idx.db.Exec(`
		INSERT OR IGNORE INTO edges (source_kind, source_key, target_kind, target_key)
		VALUES (?, ?, ?, ?)
	`, int(e.Source.Kind), e.Source.Key, int(e.Target.Kind), e.Target.Key)
	return err
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Search returns nodes whose name or key contains query, case-insensitively
func (idx *Index) Search(query string, limit int) ([]ports.IndexedNode, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := idx.db.Query(`
		SELECT kind, key, course_id, name, parent, url
		FROM nodes
		WHERE name LIKE ? ESCAPE '\' OR key LIKE ? ESCAPE '\'
		ORDER BY name, kind, key
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []ports.IndexedNode
	for rows.Next() {
		var n ports.IndexedNode
		var kind int
		if err := rows.Scan(&kind, &n.Key, &n.CourseID, &n.Name, &n.Parent, &n.URL); err != nil {
			return nil, err
		}
		n.Kind = domain.Kind(kind)
		nodes = append(nodes, n)
	}

	return nodes, rows.Err()
}

// LinksTo returns all edges pointing to target
func (idx *Index) LinksTo(target domain.Identity) ([]ports.LinkEdge, error) {
	rows, err := idx.db.Query(`
		SELECT source_kind, source_key, target_kind, target_key
		FROM edges WHERE target_kind = ? AND target_key = ?
		ORDER BY source_kind, source_key
	`, int(target.Kind), target.Key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []ports.LinkEdge
	for rows.Next() {
		var e ports.LinkEdge
		var sk, tk int
		if err := rows.Scan(&sk, &e.Source.Key, &tk, &e.Target.Key); err != nil {
			return nil, err
		}
		e.Source.Kind, e.Target.Kind = domain.Kind(sk), domain.Kind(tk)
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

// Reset forgets every node and edge, for a full reload of the tree
func (idx *Index) Reset() error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM nodes`); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM edges`); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

package sqlite

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

func openIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func names(nodes []ports.IndexedNode) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestSearch(t *testing.T) {
	idx := openIndex(t)
	for _, n := range []ports.IndexedNode{
		{Kind: domain.KindFolder, Key: "10", CourseID: "1", Name: "Lecture Slides", Parent: "Course:1"},
		{Kind: domain.KindFile, Key: "11", CourseID: "1", Name: "lecture01.pdf", Parent: "Folder:10"},
		{Kind: domain.KindPage, Key: "syllabus", CourseID: "1", Name: "Syllabus", Parent: "Module:4"},
		{Kind: domain.KindPage, Key: "syllabus", CourseID: "2", Name: "Syllabus", Parent: "Module:9"},
		{Kind: domain.KindFile, Key: "12", CourseID: "1", Name: "100%_final.pdf", Parent: "Folder:10"},
	} {
		require.NoError(t, idx.Record(n))
	}

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{name: "case insensitive", query: "LECTURE", limit: 10, want: []string{"Lecture Slides", "lecture01.pdf"}},
		{name: "same slug in two courses", query: "syllabus", limit: 10, want: []string{"Syllabus", "Syllabus"}},
		{name: "key match", query: "11", limit: 10, want: []string{"lecture01.pdf"}},
		{name: "limit", query: "l", limit: 2, want: []string{"100%_final.pdf", "Lecture Slides"}},
		{name: "wildcards are literal", query: "%_", limit: 10, want: []string{"100%_final.pdf"}},
		{name: "no match", query: "grades", limit: 10, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Search(tt.query, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestRecordKeepsLatestParent(t *testing.T) {
	idx := openIndex(t)
	require.NoError(t, idx.Record(ports.IndexedNode{Kind: domain.KindFile, Key: "5", CourseID: "1", Name: "notes.pdf", Parent: "Folder:1"}))
	require.NoError(t, idx.Record(ports.IndexedNode{Kind: domain.KindFile, Key: "5", CourseID: "1", Name: "notes.pdf", Parent: "Page:intro", URL: "https://lms/files/5"}))

	got, err := idx.Search("notes", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Page:intro", got[0].Parent)
	assert.Equal(t, "https://lms/files/5", got[0].URL)
	assert.Equal(t, domain.KindFile, got[0].Kind)
}

func TestLinksTo(t *testing.T) {
	idx := openIndex(t)
	file := domain.Identity{Kind: domain.KindFile, Key: "7"}
	page := domain.Identity{Kind: domain.KindPage, Key: "intro"}
	assignment := domain.Identity{Kind: domain.KindAssignment, Key: "3"}

	require.NoError(t, idx.Link(ports.LinkEdge{Source: page, Target: file}))
	require.NoError(t, idx.Link(ports.LinkEdge{Source: page, Target: file}))
	require.NoError(t, idx.Link(ports.LinkEdge{Source: assignment, Target: file}))
	require.NoError(t, idx.Link(ports.LinkEdge{Source: assignment, Target: page}))

	edges, err := idx.LinksTo(file)
	require.NoError(t, err)
	assert.Equal(t, []ports.LinkEdge{
		{Source: page, Target: file},
		{Source: assignment, Target: file},
	}, edges)

	edges, err = idx.LinksTo(domain.Identity{Kind: domain.KindQuiz, Key: "7"})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestConcurrentRecords(t *testing.T) {
	idx := openIndex(t)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				key := fmt.Sprintf("%d-%d", w, i)
				assert.NoError(t, idx.Record(ports.IndexedNode{Kind: domain.KindFile, Key: key, CourseID: "1", Name: "file " + key}))
			}
		}(w)
	}
	wg.Wait()

	got, err := idx.Search("file", 1000)
	require.NoError(t, err)
	assert.Len(t, got, 100)
}

func TestReset(t *testing.T) {
	idx := openIndex(t)
	require.NoError(t, idx.Record(ports.IndexedNode{Kind: domain.KindFolder, Key: "1", CourseID: "1", Name: "Week 1"}))
	require.NoError(t, idx.Link(ports.LinkEdge{
		Source: domain.Identity{Kind: domain.KindPage, Key: "a"},
		Target: domain.Identity{Kind: domain.KindFolder, Key: "1"},
	}))

	require.NoError(t, idx.Reset())

	got, err := idx.Search("week", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	edges, err := idx.LinksTo(domain.Identity{Kind: domain.KindFolder, Key: "1"})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

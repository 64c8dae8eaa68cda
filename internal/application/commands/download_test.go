package commands

import (
	"context"
	"errors"
	"testing"

	"canvastree/internal/application"
	"canvastree/internal/domain"
)

func TestDownloadCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		key     string
		wantErr error
	}{
		{name: "folder", kind: "folder", key: "1"},
		{name: "course", kind: "course", key: "1"},
		{name: "lecture", kind: "lecture", key: "L1"},
		{name: "quiz has no download", kind: "quiz", key: "1", wantErr: application.ErrNotDownloadable},
		{name: "announcement has no download", kind: "announcement", key: "1", wantErr: application.ErrNotDownloadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&DownloadCommand{Kind: tt.kind, Key: tt.key}).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDownloadCommand_Folder(t *testing.T) {
	eng := newFakeEngine(newFakeLMS(course(1, "Physics", true, 1)))
	tree := loadedTree(t, eng, 1, domain.ContentFiles)

	result, err := NewDownloadCommand(eng, tree, "folder", "102", "/tmp/out").Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Dir != "/tmp/out" || result.Nodes != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(eng.downloads) != 1 || eng.downloads[0] != "/tmp/out/Folder 102" {
		t.Errorf("unexpected downloads: %v", eng.downloads)
	}
}

func TestDownloadCommand_CourseUsesDefaultDir(t *testing.T) {
	eng := newFakeEngine(newFakeLMS(course(1, "Physics", true, 1)))
	tree := loadedTree(t, eng, 0, domain.ContentFiles)

	result, err := NewDownloadCommand(eng, tree, "course", "1", "").Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Dir != "/dl" {
		t.Errorf("expected default dir, got %s", result.Dir)
	}
	want := []string{"/dl/Folder 101", "/dl/Folder 102"}
	if len(eng.downloads) != len(want) {
		t.Fatalf("expected %v, got %v", want, eng.downloads)
	}
	for i := range want {
		if eng.downloads[i] != want[i] {
			t.Errorf("download %d: expected %s, got %s", i, want[i], eng.downloads[i])
		}
	}
}

func TestDownloadCommand_Confirm(t *testing.T) {
	eng := newFakeEngine(newFakeLMS(course(1, "Physics", true, 1)))
	tree := loadedTree(t, eng, 1, domain.ContentFiles)

	cmd := NewDownloadCommand(eng, tree, "folder", "102", "")
	if _, err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmd.Confirm = true
	if _, err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.confirmed) != 2 || eng.confirmed[0] || !eng.confirmed[1] {
		t.Errorf("expected the flag to reach the engine, got %v", eng.confirmed)
	}
}

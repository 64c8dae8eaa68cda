// Package storage writes downloads through an afero filesystem.
package storage

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// FS implements ports.Storage
type FS struct {
	fs afero.Fs
}

// New wraps an afero filesystem
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOS writes to the host filesystem
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// Fs exposes the underlying filesystem
func (s *FS) Fs() afero.Fs { return s.fs }

func (s *FS) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Mkdir creates path, including missing parents
func (s *FS) Mkdir(path string) error {
	return s.fs.MkdirAll(path, 0o755)
}

func (s *FS) Create(path string) (io.WriteCloser, error) {
	return s.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
}

func (s *FS) WriteFile(path string, data []byte) error {
	return afero.WriteFile(s.fs, path, data, 0o644)
}

func (s *FS) Remove(path string) error {
	return s.fs.Remove(path)
}

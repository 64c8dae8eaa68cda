package ports

import "io"

// Storage is the local destination of downloads
type Storage interface {
	Exists(path string) (bool, error)
	Mkdir(path string) error
	Create(path string) (io.WriteCloser, error)
	WriteFile(path string, data []byte) error
	Remove(path string) error
}

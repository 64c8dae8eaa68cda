package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid ID")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotDownloadable  = errors.New("not downloadable")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LookupError reports a node identity that is not present in the loaded tree
type LookupError struct {
	Kind string
	Key  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s %q in the loaded tree", e.Kind, e.Key)
}

func (e *LookupError) Is(target error) bool {
	return target == ErrNotFound
}

// DownloadError reports a node whose kind has no download
type DownloadError struct {
	Node   string
	Reason string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("cannot download %s: %s", e.Node, e.Reason)
}

func (e *DownloadError) Is(target error) bool {
	return target == ErrNotDownloadable
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the model and its collaborators
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource does not exist")
	ErrNoCourse     = errors.New("node has no course ancestor")
	ErrNoContent    = errors.New("no HTML present")
	ErrNoLinks      = errors.New("no HTML links found")
	ErrNotRenamable = errors.New("only courses can be renamed")
	ErrInactive     = errors.New("integration is not active for this course")
)

// ActionError reports a failed node action
type ActionError struct {
	Action string
	Node   string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Action, e.Node, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

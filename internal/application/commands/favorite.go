package commands

import (
	"context"
	"fmt"
	"strings"

	"canvastree/internal/application"
	"canvastree/internal/domain"
	"canvastree/internal/ports"
)

// CourseResult contains the course as the LMS reports it after a change
type CourseResult struct {
	Course  *domain.Course
	Message string
}

// SetFavoriteCommand adds a course to, or removes it from, the favorites
type SetFavoriteCommand struct {
	lms      ports.LMS
	CourseID int64
	Favorite bool
}

// NewSetFavoriteCommand creates a new SetFavoriteCommand
func NewSetFavoriteCommand(lms ports.LMS, courseID int64, favorite bool) *SetFavoriteCommand {
	return &SetFavoriteCommand{
		lms:      lms,
		CourseID: courseID,
		Favorite: favorite,
	}
}

// Validate checks the course id
func (c *SetFavoriteCommand) Validate() error {
	return application.ValidateCourseID("courseID", c.CourseID)
}

// Execute runs the set favorite command
func (c *SetFavoriteCommand) Execute(ctx context.Context) (*CourseResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var err error
	if c.Favorite {
		err = c.lms.AddFavorite(ctx, c.CourseID)
	} else {
		err = c.lms.RemoveFavorite(ctx, c.CourseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update favorite: %w", err)
	}

	course, err := c.lms.GetCourse(ctx, c.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to refetch course: %w", err)
	}

	verb := "Removed %s from favorites"
	if course.IsFavorite {
		verb = "Added %s to favorites"
	}
	return &CourseResult{
		Course:  course,
		Message: fmt.Sprintf(verb, course.Name),
	}, nil
}

// SetNicknameCommand sets a course nickname; an empty nickname restores
// the original course name
type SetNicknameCommand struct {
	lms      ports.LMS
	CourseID int64
	Nickname string
}

// NewSetNicknameCommand creates a new SetNicknameCommand
func NewSetNicknameCommand(lms ports.LMS, courseID int64, nickname string) *SetNicknameCommand {
	return &SetNicknameCommand{
		lms:      lms,
		CourseID: courseID,
		Nickname: nickname,
	}
}

// Validate checks the course id
func (c *SetNicknameCommand) Validate() error {
	return application.ValidateCourseID("courseID", c.CourseID)
}

// Execute runs the set nickname command
func (c *SetNicknameCommand) Execute(ctx context.Context) (*CourseResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(c.Nickname)
	var err error
	if nickname == "" {
		err = c.lms.RemoveNickname(ctx, c.CourseID)
	} else {
		err = c.lms.SetNickname(ctx, c.CourseID, nickname)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update nickname: %w", err)
	}

	course, err := c.lms.GetCourse(ctx, c.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to refetch course: %w", err)
	}

	msg := fmt.Sprintf("Renamed course %d to %s", c.CourseID, course.Name)
	if nickname == "" {
		msg = fmt.Sprintf("Reset course %d to %s", c.CourseID, course.Name)
	}
	return &CourseResult{Course: course, Message: msg}, nil
}

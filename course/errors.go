package course

import "errors"

var (
	// ErrCourseNotFound means the course does not exist or belongs to another user.
	ErrCourseNotFound = errors.New("course not found")

	// ErrDuplicateContent means an appended content id is already part of the course.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrInvalidDate means a planning date is malformed or missing.
	ErrInvalidDate = errors.New("invalid date")
)

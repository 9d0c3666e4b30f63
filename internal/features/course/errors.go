package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrMissingFields  = errors.New("required course fields are missing")
	ErrNegativePrice  = errors.New("price cannot be negative")
	ErrInvalidTags    = errors.New("invalid tags")
)

package lesson

import "errors"

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrTitleRequired  = errors.New("lesson title is required")
	ErrTitleLength    = errors.New("lesson title must be between 3 and 120 characters")
	ErrVideoRequired  = errors.New("a video file is required")
	ErrNotVideoFile   = errors.New("uploaded file must declare a video content type")
	ErrVideoTooLarge  = errors.New("video file exceeds the size limit")
	ErrCourseNotFound = errors.New("course not found")
)

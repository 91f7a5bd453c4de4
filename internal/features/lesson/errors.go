package lesson

import "errors"

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrTitleRequired   = errors.New("lesson title is required")
	ErrCourseNotFound  = errors.New("course not found")
	ErrOrderInvalid    = errors.New("lesson order cannot be negative")
	ErrDurationInvalid = errors.New("lesson duration cannot be negative")
)

package enrollment

import "errors"

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrLessonNotInCourse  = errors.New("lesson does not belong to the enrolled course")
)

package course

import "errors"

var (
	ErrCourseNotFound       = errors.New("course not found")
	ErrCategoryNotFound     = errors.New("course category not found")
	ErrTitleRequired        = errors.New("course title is required")
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrInvalidDifficulty    = errors.New("difficulty must be beginner, intermediate, or advanced")
)

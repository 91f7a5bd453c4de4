package quiz

import "errors"

var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrTitleRequired        = errors.New("quiz title is required")
	ErrCategoryNotFound     = errors.New("quiz category not found")
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrInvalidQuestionType  = errors.New("question type must be multiple_choice, true_false, or short_answer")
	ErrInvalidPassingScore  = errors.New("passing score must be between 0 and 100")
	ErrChoicesRequired      = errors.New("multiple choice questions need at least two choices")
	ErrOneCorrectChoice     = errors.New("multiple choice questions need exactly one correct choice")
	ErrAnswerKeyRequired    = errors.New("true/false and short answer questions need a canonical answer")
)

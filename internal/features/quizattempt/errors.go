package quizattempt

import "errors"

var (
	ErrAttemptNotFound     = errors.New("quiz attempt not found")
	ErrAttemptCompleted    = errors.New("quiz attempt already completed")
	ErrAttemptNotCompleted = errors.New("quiz attempt not completed yet")
	ErrAlreadyAnswered     = errors.New("question already answered in this attempt")
	ErrChoiceNotInQuestion = errors.New("choice does not belong to the question")
	ErrChoiceRequired      = errors.New("a choice is required for multiple choice questions")
	ErrAnswerRequired      = errors.New("an answer is required")
)

package quizattempt

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jobhive/jobhive-server-go/internal/features/quiz"
	"github.com/jobhive/jobhive-server-go/pkg/metrics"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// RetakeScoreThreshold is the highest completed score that still permits a
// retake. A completed attempt scoring above it is final; starting the quiz
// again returns that attempt instead of a fresh one.
const RetakeScoreThreshold = 40

// QuizAttempt is one user's pass through a quiz. At most one attempt exists
// per (user, quiz); restarting a low-scoring or unfinished attempt replaces
// it rather than adding a second row.
type QuizAttempt struct {
	types.BaseModel

	UserID      uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_attempt_user_quiz" json:"userId"`
	QuizID      uuid.UUID  `gorm:"type:uuid;not null;column:quiz_id;uniqueIndex:idx_attempt_user_quiz" json:"quizId"`
	Score       int        `gorm:"type:int;not null;default:0" json:"score"`
	Passed      bool       `gorm:"type:boolean;not null;default:false" json:"passed"`
	StartedAt   time.Time  `gorm:"not null;column:started_at" json:"startedAt"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`

	Quiz *quiz.Quiz `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
}

// TableName overrides the default table name.
func (QuizAttempt) TableName() string { return "quiz_attempts" }

// Completed reports whether the attempt has been finalized.
func (a QuizAttempt) Completed() bool { return a.CompletedAt != nil }

// UserAnswer records one graded answer within an attempt. One row per
// (attempt, question), enforced by the composite unique index; answers are
// never revised once written.
type UserAnswer struct {
	types.BaseModel

	AttemptID        uuid.UUID  `gorm:"type:uuid;not null;column:attempt_id;uniqueIndex:idx_answer_attempt_question" json:"attemptId"`
	QuestionID       uuid.UUID  `gorm:"type:uuid;not null;column:question_id;uniqueIndex:idx_answer_attempt_question" json:"questionId"`
	SelectedChoiceID *uuid.UUID `gorm:"type:uuid;column:selected_choice_id" json:"selectedChoiceId,omitempty"`
	TextAnswer       *string    `gorm:"type:varchar(500);column:text_answer" json:"textAnswer,omitempty"`
	IsCorrect        bool       `gorm:"type:boolean;not null;default:false;column:is_correct" json:"isCorrect"`
}

// TableName overrides the default table name.
func (UserAnswer) TableName() string { return "user_answers" }

// Start begins a quiz attempt for a user, applying the retake policy:
//   - no prior attempt: create one in progress
//   - prior attempt completed with score above RetakeScoreThreshold: return
//     it unchanged
//   - prior attempt unfinished or scored at or below the threshold: delete
//     it with its answers and create a fresh attempt
//
// A quiz with no questions completes immediately with score 0 and passed
// false. The returned bool reports whether a new attempt was created.
func Start(db *gorm.DB, userID, quizID uuid.UUID) (QuizAttempt, bool, error) {
	q, err := quiz.Get(db, quizID)
	if err != nil {
		return QuizAttempt{}, false, err
	}

	var attempt QuizAttempt
	created := false
	finalized := false

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing QuizAttempt
		err := tx.First(&existing, "user_id = ? AND quiz_id = ?", userID, quizID).Error
		switch {
		case err == nil:
			if existing.Completed() && existing.Score > RetakeScoreThreshold {
				attempt = existing
				return nil
			}
			if err := deleteAttempt(tx, existing.ID); err != nil {
				return err
			}
		case err != gorm.ErrRecordNotFound:
			return err
		}

		attempt = QuizAttempt{UserID: userID, QuizID: quizID, StartedAt: time.Now()}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
			DoNothing: true,
		}).Create(&attempt)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost a race with a concurrent start. Refetch into a fresh
			// struct: attempt.ID now holds the discarded insert's key and
			// First would include it in the WHERE clause.
			var winner QuizAttempt
			if err := tx.First(&winner, "user_id = ? AND quiz_id = ?", userID, quizID).Error; err != nil {
				return err
			}
			attempt = winner
			return nil
		}
		created = true

		total, err := quiz.CountQuestions(tx, quizID)
		if err != nil {
			return err
		}
		if total == 0 {
			if err := finalize(tx, &attempt, q); err != nil {
				return err
			}
			finalized = true
		}
		return nil
	})
	if err != nil {
		return QuizAttempt{}, false, err
	}

	if finalized {
		metrics.RecordQuizCompletion(attempt.Passed)
	}

	return attempt, created, nil
}

// Get retrieves an attempt by ID.
func Get(db *gorm.DB, id uuid.UUID) (QuizAttempt, error) {
	var attempt QuizAttempt
	if err := db.Preload("Quiz").First(&attempt, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return attempt, ErrAttemptNotFound
		}
		return attempt, err
	}
	return attempt, nil
}

// GetForUser retrieves an attempt owned by the given user.
func GetForUser(db *gorm.DB, id, userID uuid.UUID) (QuizAttempt, error) {
	var attempt QuizAttempt
	if err := db.Preload("Quiz").First(&attempt, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return attempt, ErrAttemptNotFound
		}
		return attempt, err
	}
	return attempt, nil
}

// ListByUser retrieves all attempts for a user, newest first.
func ListByUser(db *gorm.DB, userID uuid.UUID) ([]QuizAttempt, error) {
	var attempts []QuizAttempt
	err := db.Preload("Quiz").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// CurrentQuestion returns the first quiz-ordered question without an answer
// in this attempt, along with the answered and total counts. A nil question
// means every question has been answered.
func CurrentQuestion(db *gorm.DB, attempt QuizAttempt) (*quiz.Question, int, int, error) {
	questions, err := quiz.GetQuestions(db, attempt.QuizID)
	if err != nil {
		return nil, 0, 0, err
	}

	answered, err := answeredQuestionIDs(db, attempt.ID)
	if err != nil {
		return nil, 0, 0, err
	}

	for i := range questions {
		if _, ok := answered[questions[i].ID]; !ok {
			return &questions[i], len(answered), len(questions), nil
		}
	}
	return nil, len(answered), len(questions), nil
}

// AnswerInput carries one submitted answer.
type AnswerInput struct {
	SelectedChoiceID *uuid.UUID
	TextAnswer       *string
}

// SubmitAnswer grades and records an answer for one question. Submitting for
// an already-answered question fails rather than overwriting. When the last
// question is answered the attempt is finalized in the same transaction. The
// returned attempt reflects any finalization.
func SubmitAnswer(db *gorm.DB, attempt QuizAttempt, questionID uuid.UUID, input AnswerInput) (UserAnswer, QuizAttempt, error) {
	if attempt.Completed() {
		return UserAnswer{}, attempt, ErrAttemptCompleted
	}

	question, err := quiz.GetQuestion(db, questionID, attempt.QuizID)
	if err != nil {
		return UserAnswer{}, attempt, err
	}

	answer := UserAnswer{AttemptID: attempt.ID, QuestionID: questionID}

	switch question.Type {
	case types.QuestionTypeMultipleChoice:
		if input.SelectedChoiceID == nil {
			return UserAnswer{}, attempt, ErrChoiceRequired
		}
		var selected *quiz.Choice
		for i := range question.Choices {
			if question.Choices[i].ID == *input.SelectedChoiceID {
				selected = &question.Choices[i]
				break
			}
		}
		if selected == nil {
			return UserAnswer{}, attempt, ErrChoiceNotInQuestion
		}
		answer.SelectedChoiceID = input.SelectedChoiceID
		answer.IsCorrect = selected.IsCorrect
	default:
		if input.TextAnswer == nil || strings.TrimSpace(*input.TextAnswer) == "" {
			return UserAnswer{}, attempt, ErrAnswerRequired
		}
		trimmed := strings.TrimSpace(*input.TextAnswer)
		answer.TextAnswer = &trimmed
		answer.IsCorrect = question.CorrectAnswer != nil &&
			strings.EqualFold(trimmed, strings.TrimSpace(*question.CorrectAnswer))
	}

	finalized := false
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoNothing: true,
		}).Create(&answer)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyAnswered
		}

		total, err := quiz.CountQuestions(tx, attempt.QuizID)
		if err != nil {
			return err
		}

		var answeredCount int64
		if err := tx.Model(&UserAnswer{}).
			Where("attempt_id = ?", attempt.ID).
			Count(&answeredCount).Error; err != nil {
			return err
		}

		if answeredCount >= total {
			q, err := quiz.Get(tx, attempt.QuizID)
			if err != nil {
				return err
			}
			if err := finalize(tx, &attempt, q); err != nil {
				return err
			}
			finalized = true
		}
		return nil
	})
	if err != nil {
		return UserAnswer{}, attempt, err
	}

	if finalized {
		metrics.RecordQuizCompletion(attempt.Passed)
	}

	return answer, attempt, nil
}

// finalize transitions an attempt to completed: computes the score from the
// recorded answers, stamps completion, and bumps the quiz attempt counter,
// all within the caller's transaction.
func finalize(tx *gorm.DB, attempt *QuizAttempt, q quiz.Quiz) error {
	total, err := quiz.CountQuestions(tx, attempt.QuizID)
	if err != nil {
		return err
	}

	var correct int64
	if err := tx.Model(&UserAnswer{}).
		Where("attempt_id = ? AND is_correct = ?", attempt.ID, true).
		Count(&correct).Error; err != nil {
		return err
	}

	score := 0
	if total > 0 {
		score = int(correct * 100 / total)
	}

	passed := total > 0 && score >= q.PassingScore

	now := time.Now()
	attempt.Score = score
	attempt.Passed = passed
	attempt.CompletedAt = &now

	if err := tx.Model(&QuizAttempt{}).
		Where("id = ?", attempt.ID).
		Updates(map[string]interface{}{
			"score":        score,
			"passed":       passed,
			"completed_at": now,
		}).Error; err != nil {
		return err
	}

	return tx.Model(&quiz.Quiz{}).
		Where("id = ?", attempt.QuizID).
		UpdateColumn("attempts_count", gorm.Expr("attempts_count + 1")).Error
}

// Result bundles a completed attempt with its graded answers.
type Result struct {
	Attempt      QuizAttempt  `json:"attempt"`
	Answers      []UserAnswer `json:"answers"`
	CorrectCount int          `json:"correctCount"`
	TotalCount   int          `json:"totalCount"`
}

// GetResult returns the graded outcome of a completed attempt. Requesting a
// result before completion fails so the caller can route back to the
// in-progress flow.
func GetResult(db *gorm.DB, attempt QuizAttempt) (Result, error) {
	if !attempt.Completed() {
		return Result{}, ErrAttemptNotCompleted
	}

	var answers []UserAnswer
	if err := db.Model(&UserAnswer{}).
		Joins("JOIN questions ON questions.id = user_answers.question_id").
		Where("user_answers.attempt_id = ?", attempt.ID).
		Order("questions.\"order\" ASC, questions.created_at ASC").
		Find(&answers).Error; err != nil {
		return Result{}, err
	}

	correct := 0
	for _, ans := range answers {
		if ans.IsCorrect {
			correct++
		}
	}

	return Result{
		Attempt:      attempt,
		Answers:      answers,
		CorrectCount: correct,
		TotalCount:   len(answers),
	}, nil
}

func answeredQuestionIDs(db *gorm.DB, attemptID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := db.Model(&UserAnswer{}).
		Where("attempt_id = ?", attemptID).
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}

	answered := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		answered[id] = struct{}{}
	}
	return answered, nil
}

func deleteAttempt(tx *gorm.DB, attemptID uuid.UUID) error {
	if err := tx.Delete(&UserAnswer{}, "attempt_id = ?", attemptID).Error; err != nil {
		return err
	}
	return tx.Delete(&QuizAttempt{}, "id = ?", attemptID).Error
}

package quizattempt

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jobhive/jobhive-server-go/internal/features/quiz"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// A pooled connection would get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&quiz.QuizCategory{},
		&quiz.Quiz{},
		&quiz.Question{},
		&quiz.Choice{},
		&QuizAttempt{},
		&UserAnswer{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func seedQuiz(t *testing.T, db *gorm.DB, passingScore int) quiz.Quiz {
	t.Helper()

	category := quiz.QuizCategory{Name: "Algorithms " + uuid.NewString()}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	q := quiz.Quiz{
		CategoryID:   category.ID,
		Title:        "Sorting Basics",
		Instructor:   "D. Knuth",
		Difficulty:   "beginner",
		PassingScore: passingScore,
		Active:       true,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return q
}

// seedMultipleChoice adds an MC question and returns it with the correct and
// a wrong choice.
func seedMultipleChoice(t *testing.T, db *gorm.DB, quizID uuid.UUID, order int) (quiz.Question, quiz.Choice, quiz.Choice) {
	t.Helper()

	question := quiz.Question{
		QuizID:       quizID,
		QuestionText: "Which sort is stable?",
		Type:         types.QuestionTypeMultipleChoice,
		Order:        order,
	}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}

	right := quiz.Choice{QuestionID: question.ID, ChoiceText: "Merge sort", IsCorrect: true, Order: 1}
	wrong := quiz.Choice{QuestionID: question.ID, ChoiceText: "Quick sort", Order: 2}
	if err := db.Create(&right).Error; err != nil {
		t.Fatalf("seed choice: %v", err)
	}
	if err := db.Create(&wrong).Error; err != nil {
		t.Fatalf("seed choice: %v", err)
	}
	return question, right, wrong
}

func seedShortAnswer(t *testing.T, db *gorm.DB, quizID uuid.UUID, order int, answer string) quiz.Question {
	t.Helper()

	question := quiz.Question{
		QuizID:        quizID,
		QuestionText:  "Name the inventor of quicksort.",
		Type:          types.QuestionTypeShortAnswer,
		Order:         order,
		CorrectAnswer: &answer,
	}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return question
}

func choiceAnswer(id uuid.UUID) AnswerInput {
	return AnswerInput{SelectedChoiceID: &id}
}

func textAnswer(s string) AnswerInput {
	return AnswerInput{TextAnswer: &s}
}

func TestStartCreatesAttempt(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 50)
	seedMultipleChoice(t, db, q.ID, 1)
	userID := uuid.New()

	attempt, created, err := Start(db, userID, q.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !created {
		t.Fatalf("Start: expected created=true")
	}
	if attempt.Completed() {
		t.Fatalf("Start: new attempt must be in progress")
	}
	if attempt.UserID != userID || attempt.QuizID != q.ID {
		t.Fatalf("Start: attempt bound to wrong user or quiz: %+v", attempt)
	}
}

func TestStartUnknownQuiz(t *testing.T) {
	db := openTestDB(t)

	_, _, err := Start(db, uuid.New(), uuid.New())
	if err != quiz.ErrQuizNotFound {
		t.Fatalf("Start: expected ErrQuizNotFound, got %v", err)
	}
}

func TestStartEmptyQuizCompletesImmediately(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 50)

	attempt, created, err := Start(db, uuid.New(), q.ID)
	if err != nil || !created {
		t.Fatalf("Start: created=%v err=%v", created, err)
	}
	if !attempt.Completed() {
		t.Fatalf("empty quiz: expected completed attempt")
	}
	if attempt.Score != 0 || attempt.Passed {
		t.Fatalf("empty quiz: expected score 0 and passed=false, got score=%d passed=%v", attempt.Score, attempt.Passed)
	}

	refreshed, err := quiz.Get(db, q.ID)
	if err != nil {
		t.Fatalf("quiz.Get: %v", err)
	}
	if refreshed.AttemptsCount != 1 {
		t.Fatalf("AttemptsCount: expected 1, got %d", refreshed.AttemptsCount)
	}
}

func TestSubmitAnswerFullFlow(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 50)
	q1, right, _ := seedMultipleChoice(t, db, q.ID, 1)
	q2, _, wrong2 := seedMultipleChoice(t, db, q.ID, 2)
	userID := uuid.New()

	attempt, _, err := Start(db, userID, q.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	current, answered, total, err := CurrentQuestion(db, attempt)
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if current == nil || current.ID != q1.ID {
		t.Fatalf("CurrentQuestion: expected first question, got %+v", current)
	}
	if answered != 0 || total != 2 {
		t.Fatalf("CurrentQuestion: expected 0/2, got %d/%d", answered, total)
	}

	if _, err := GetResult(db, attempt); err != ErrAttemptNotCompleted {
		t.Fatalf("GetResult before completion: expected ErrAttemptNotCompleted, got %v", err)
	}

	answer, attempt, err := SubmitAnswer(db, attempt, q1.ID, choiceAnswer(right.ID))
	if err != nil {
		t.Fatalf("SubmitAnswer q1: %v", err)
	}
	if !answer.IsCorrect {
		t.Fatalf("q1: expected correct answer")
	}
	if attempt.Completed() {
		t.Fatalf("q1: attempt finalized too early")
	}

	current, answered, _, err = CurrentQuestion(db, attempt)
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if current == nil || current.ID != q2.ID || answered != 1 {
		t.Fatalf("CurrentQuestion: expected second question with 1 answered, got %+v (%d)", current, answered)
	}

	answer, attempt, err = SubmitAnswer(db, attempt, q2.ID, choiceAnswer(wrong2.ID))
	if err != nil {
		t.Fatalf("SubmitAnswer q2: %v", err)
	}
	if answer.IsCorrect {
		t.Fatalf("q2: expected incorrect answer")
	}

	if !attempt.Completed() {
		t.Fatalf("attempt: expected finalized after last answer")
	}
	if attempt.Score != 50 {
		t.Fatalf("score: expected 50, got %d", attempt.Score)
	}
	if !attempt.Passed {
		t.Fatalf("passed: expected true at passing score boundary")
	}

	result, err := GetResult(db, attempt)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if result.CorrectCount != 1 || result.TotalCount != 2 {
		t.Fatalf("result: expected 1/2, got %d/%d", result.CorrectCount, result.TotalCount)
	}

	refreshed, err := quiz.Get(db, q.ID)
	if err != nil {
		t.Fatalf("quiz.Get: %v", err)
	}
	if refreshed.AttemptsCount != 1 {
		t.Fatalf("AttemptsCount: expected 1, got %d", refreshed.AttemptsCount)
	}
}

func TestSubmitDuplicateAnswerRejected(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 50)
	q1, right, wrong := seedMultipleChoice(t, db, q.ID, 1)
	seedMultipleChoice(t, db, q.ID, 2)

	attempt, _, err := Start(db, uuid.New(), q.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, attempt, err = SubmitAnswer(db, attempt, q1.ID, choiceAnswer(right.ID)); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if _, _, err := SubmitAnswer(db, attempt, q1.ID, choiceAnswer(wrong.ID)); err != ErrAlreadyAnswered {
		t.Fatalf("second submit: expected ErrAlreadyAnswered, got %v", err)
	}

	var count int64
	if err := db.Model(&UserAnswer{}).Where("attempt_id = ?", attempt.ID).Count(&count).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if count != 1 {
		t.Fatalf("answers: expected 1 row, got %d", count)
	}

	var stored UserAnswer
	if err := db.First(&stored, "attempt_id = ? AND question_id = ?", attempt.ID, q1.ID).Error; err != nil {
		t.Fatalf("load answer: %v", err)
	}
	if !stored.IsCorrect {
		t.Fatalf("answer: first submission must be preserved")
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 50)
	mc, _, _ := seedMultipleChoice(t, db, q.ID, 1)
	sa := seedShortAnswer(t, db, q.ID, 2, "Hoare")
	outsider, outsiderChoice, _ := seedMultipleChoice(t, db, seedQuiz(t, db, 50).ID, 1)

	attempt, _, err := Start(db, uuid.New(), q.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, _, err := SubmitAnswer(db, attempt, mc.ID, AnswerInput{}); err != ErrChoiceRequired {
		t.Fatalf("missing choice: expected ErrChoiceRequired, got %v", err)
	}
	if _, _, err := SubmitAnswer(db, attempt, mc.ID, choiceAnswer(outsiderChoice.ID)); err != ErrChoiceNotInQuestion {
		t.Fatalf("foreign choice: expected ErrChoiceNotInQuestion, got %v", err)
	}
	if _, _, err := SubmitAnswer(db, attempt, sa.ID, AnswerInput{}); err != ErrAnswerRequired {
		t.Fatalf("missing text: expected ErrAnswerRequired, got %v", err)
	}
	if _, _, err := SubmitAnswer(db, attempt, sa.ID, textAnswer("   ")); err != ErrAnswerRequired {
		t.Fatalf("blank text: expected ErrAnswerRequired, got %v", err)
	}
	if _, _, err := SubmitAnswer(db, attempt, outsider.ID, choiceAnswer(outsiderChoice.ID)); err != quiz.ErrQuestionNotFound {
		t.Fatalf("foreign question: expected ErrQuestionNotFound, got %v", err)
	}
}

func TestShortAnswerGradingIgnoresCaseAndSpace(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 100)
	seedShortAnswer(t, db, q.ID, 1, "Hoare")

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "exact", answer: "Hoare", want: true},
		{name: "case insensitive", answer: "hoare", want: true},
		{name: "surrounding space", answer: "  Hoare  ", want: true},
		{name: "wrong", answer: "Dijkstra", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt, _, err := Start(db, uuid.New(), q.ID)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}

			questions, err := quiz.GetQuestions(db, q.ID)
			if err != nil || len(questions) != 1 {
				t.Fatalf("GetQuestions: %v (%d)", err, len(questions))
			}

			answer, _, err := SubmitAnswer(db, attempt, questions[0].ID, textAnswer(tt.answer))
			if err != nil {
				t.Fatalf("SubmitAnswer: %v", err)
			}
			if answer.IsCorrect != tt.want {
				t.Fatalf("IsCorrect: expected %v, got %v", tt.want, answer.IsCorrect)
			}
		})
	}
}

func TestRetakePolicy(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 50)
	seedMultipleChoice(t, db, q.ID, 1)

	forceScore := func(t *testing.T, attemptID uuid.UUID, score int) {
		t.Helper()
		if err := db.Model(&QuizAttempt{}).Where("id = ?", attemptID).
			Updates(map[string]interface{}{"score": score, "completed_at": gorm.Expr("CURRENT_TIMESTAMP")}).Error; err != nil {
			t.Fatalf("force score: %v", err)
		}
	}

	t.Run("low score attempt is replaced", func(t *testing.T) {
		userID := uuid.New()
		first, _, err := Start(db, userID, q.ID)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		forceScore(t, first.ID, 25)

		second, created, err := Start(db, userID, q.ID)
		if err != nil {
			t.Fatalf("restart: %v", err)
		}
		if !created {
			t.Fatalf("restart: expected a fresh attempt")
		}
		if second.ID == first.ID {
			t.Fatalf("restart: expected replacement, got same attempt")
		}
		if second.Completed() {
			t.Fatalf("restart: fresh attempt must be in progress")
		}

		var gone int64
		if err := db.Model(&QuizAttempt{}).Where("id = ?", first.ID).Count(&gone).Error; err != nil {
			t.Fatalf("count old attempt: %v", err)
		}
		if gone != 0 {
			t.Fatalf("old attempt: expected deleted")
		}
	})

	t.Run("passing score attempt is returned", func(t *testing.T) {
		userID := uuid.New()
		first, _, err := Start(db, userID, q.ID)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		forceScore(t, first.ID, 55)

		second, created, err := Start(db, userID, q.ID)
		if err != nil {
			t.Fatalf("restart: %v", err)
		}
		if created {
			t.Fatalf("restart: expected existing attempt back")
		}
		if second.ID != first.ID {
			t.Fatalf("restart: expected attempt %s, got %s", first.ID, second.ID)
		}
	})

	t.Run("unfinished attempt is replaced", func(t *testing.T) {
		userID := uuid.New()
		first, _, err := Start(db, userID, q.ID)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}

		second, created, err := Start(db, userID, q.ID)
		if err != nil {
			t.Fatalf("restart: %v", err)
		}
		if !created || second.ID == first.ID {
			t.Fatalf("restart: expected unfinished attempt to be replaced")
		}
	})
}

func TestSubmitAfterCompletionRejected(t *testing.T) {
	db := openTestDB(t)
	q := seedQuiz(t, db, 50)
	q1, right, _ := seedMultipleChoice(t, db, q.ID, 1)

	attempt, _, err := Start(db, uuid.New(), q.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, attempt, err = SubmitAnswer(db, attempt, q1.ID, choiceAnswer(right.ID)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !attempt.Completed() {
		t.Fatalf("attempt: expected completed")
	}

	if _, _, err := SubmitAnswer(db, attempt, q1.ID, choiceAnswer(right.ID)); err != ErrAttemptCompleted {
		t.Fatalf("submit after completion: expected ErrAttemptCompleted, got %v", err)
	}
}

package quiz

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

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
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&QuizCategory{}, &Quiz{}, &Question{}, &Choice{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func seedQuizWithCategory(t *testing.T, db *gorm.DB) Quiz {
	t.Helper()

	category, err := CreateCategory(db, "General "+uuid.NewString(), nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	qz, err := Create(db, CreateInput{
		CategoryID:   category.ID,
		Title:        "Go Fundamentals",
		Instructor:   "A. Donovan",
		Difficulty:   types.DifficultyBeginner,
		PassingScore: 60,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return qz
}

func TestCreateValidation(t *testing.T) {
	db := openTestDB(t)

	category, err := CreateCategory(db, "Validation", nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	tests := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{
			name:    "blank title",
			input:   CreateInput{CategoryID: category.ID, Title: "   ", PassingScore: 50},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "passing score above range",
			input:   CreateInput{CategoryID: category.ID, Title: "Quiz", PassingScore: 101},
			wantErr: ErrInvalidPassingScore,
		},
		{
			name:    "passing score below range",
			input:   CreateInput{CategoryID: category.ID, Title: "Quiz", PassingScore: -1},
			wantErr: ErrInvalidPassingScore,
		},
		{
			name:    "unknown category",
			input:   CreateInput{CategoryID: uuid.New(), Title: "Quiz", PassingScore: 50},
			wantErr: ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Create(db, tt.input); err != tt.wantErr {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	db := openTestDB(t)
	qz := seedQuizWithCategory(t, db)
	answer := "true"

	tests := []struct {
		name    string
		input   QuestionInput
		wantErr error
	}{
		{
			name:    "invalid type",
			input:   QuestionInput{QuizID: qz.ID, QuestionText: "?", Type: "essay"},
			wantErr: ErrInvalidQuestionType,
		},
		{
			name: "multiple choice needs two choices",
			input: QuestionInput{
				QuizID: qz.ID, QuestionText: "?", Type: types.QuestionTypeMultipleChoice,
				Choices: []ChoiceInput{{ChoiceText: "only", IsCorrect: true}},
			},
			wantErr: ErrChoicesRequired,
		},
		{
			name: "multiple choice needs exactly one correct",
			input: QuestionInput{
				QuizID: qz.ID, QuestionText: "?", Type: types.QuestionTypeMultipleChoice,
				Choices: []ChoiceInput{
					{ChoiceText: "a", IsCorrect: true},
					{ChoiceText: "b", IsCorrect: true},
				},
			},
			wantErr: ErrOneCorrectChoice,
		},
		{
			name:    "true false needs answer key",
			input:   QuestionInput{QuizID: qz.ID, QuestionText: "?", Type: types.QuestionTypeTrueFalse},
			wantErr: ErrAnswerKeyRequired,
		},
		{
			name: "unknown quiz",
			input: QuestionInput{
				QuizID: uuid.New(), QuestionText: "?", Type: types.QuestionTypeTrueFalse,
				CorrectAnswer: &answer,
			},
			wantErr: ErrQuizNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateQuestion(db, tt.input); err != tt.wantErr {
				t.Errorf("CreateQuestion() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateQuestionWithChoices(t *testing.T) {
	db := openTestDB(t)
	qz := seedQuizWithCategory(t, db)

	question, err := CreateQuestion(db, QuestionInput{
		QuizID:       qz.ID,
		QuestionText: "Which keyword starts a goroutine?",
		Type:         types.QuestionTypeMultipleChoice,
		Order:        1,
		Choices: []ChoiceInput{
			{ChoiceText: "go", IsCorrect: true, Order: 1},
			{ChoiceText: "spawn", Order: 2},
			{ChoiceText: "async", Order: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if len(question.Choices) != 3 {
		t.Fatalf("choices: expected 3, got %d", len(question.Choices))
	}

	loaded, err := GetQuestion(db, question.ID, qz.ID)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if len(loaded.Choices) != 3 {
		t.Fatalf("loaded choices: expected 3, got %d", len(loaded.Choices))
	}

	count, err := CountQuestions(db, qz.ID)
	if err != nil || count != 1 {
		t.Fatalf("CountQuestions: count=%d err=%v", count, err)
	}
}

func TestGetQuestionScopedToQuiz(t *testing.T) {
	db := openTestDB(t)
	first := seedQuizWithCategory(t, db)
	second := seedQuizWithCategory(t, db)
	answer := "false"

	question, err := CreateQuestion(db, QuestionInput{
		QuizID:        first.ID,
		QuestionText:  "Channels are buffered by default.",
		Type:          types.QuestionTypeTrueFalse,
		CorrectAnswer: &answer,
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	if _, err := GetQuestion(db, question.ID, second.ID); err != ErrQuestionNotFound {
		t.Fatalf("GetQuestion: expected ErrQuestionNotFound for foreign quiz, got %v", err)
	}
}

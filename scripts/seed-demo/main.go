package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/course"
	"github.com/jobhive/jobhive-server-go/internal/features/lesson"
	"github.com/jobhive/jobhive-server-go/internal/features/quiz"
	"github.com/jobhive/jobhive-server-go/pkg/config"
	"github.com/jobhive/jobhive-server-go/pkg/database"
	"github.com/jobhive/jobhive-server-go/pkg/logger"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Seeds a small demo catalog: one course with lessons and one quiz with
// questions. Safe to run repeatedly; existing titles are skipped.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	db, err := database.Connect(context.Background(), cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	if err := seedCourse(db, appLogger); err != nil {
		appLogger.Error("seed course failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := seedQuiz(db, appLogger); err != nil {
		appLogger.Error("seed quiz failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("demo data seeded")
}

func seedCourse(db *gorm.DB, appLogger *slog.Logger) error {
	const title = "Backend Engineering with Go"

	var count int64
	if err := db.Model(&course.Course{}).Where("title = ?", title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		appLogger.Info("demo course already present", slog.String("title", title))
		return nil
	}

	category, err := ensureCourseCategory(db, "Software Engineering")
	if err != nil {
		return err
	}

	crs, err := course.Create(db, course.CreateInput{
		CategoryID:       category.ID,
		Title:            title,
		Instructor:       "Maya Chen",
		Description:      "Build production HTTP services in Go: routing, persistence, auth, and deployment.",
		ShortDescription: "Production HTTP services in Go.",
		Difficulty:       types.DifficultyIntermediate,
		Price:            types.NewMoney(49.99),
		DurationWeeks:    6,
		SkillsCovered:    []string{"Go", "PostgreSQL", "REST"},
	})
	if err != nil {
		return err
	}

	lessons := []lesson.CreateInput{
		{CourseID: crs.ID, Title: "HTTP servers and routing", DurationMinutes: 45, Order: 1},
		{CourseID: crs.ID, Title: "Persistence with GORM", DurationMinutes: 60, Order: 2},
		{CourseID: crs.ID, Title: "Authentication and middleware", DurationMinutes: 50, Order: 3},
		{CourseID: crs.ID, Title: "Shipping and observability", DurationMinutes: 40, Order: 4},
	}
	for _, input := range lessons {
		if _, err := lesson.Create(db, input); err != nil {
			return err
		}
	}

	appLogger.Info("demo course created",
		slog.String("title", title),
		slog.Int("lessons", len(lessons)),
	)
	return nil
}

func seedQuiz(db *gorm.DB, appLogger *slog.Logger) error {
	const title = "Go Fundamentals Check"

	var count int64
	if err := db.Model(&quiz.Quiz{}).Where("title = ?", title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		appLogger.Info("demo quiz already present", slog.String("title", title))
		return nil
	}

	category, err := ensureQuizCategory(db, "Programming Languages")
	if err != nil {
		return err
	}

	qz, err := quiz.Create(db, quiz.CreateInput{
		CategoryID:      category.ID,
		Title:           title,
		Instructor:      "Maya Chen",
		Difficulty:      types.DifficultyBeginner,
		DurationMinutes: 10,
		PassingScore:    60,
	})
	if err != nil {
		return err
	}

	trueAnswer := "true"
	goAnswer := "goroutine"

	questions := []quiz.QuestionInput{
		{
			QuizID:       qz.ID,
			QuestionText: "Which keyword declares a new variable with inferred type?",
			Type:         types.QuestionTypeMultipleChoice,
			Order:        1,
			Choices: []quiz.ChoiceInput{
				{ChoiceText: ":=", IsCorrect: true, Order: 1},
				{ChoiceText: "let", Order: 2},
				{ChoiceText: "var only", Order: 3},
			},
		},
		{
			QuizID:        qz.ID,
			QuestionText:  "Slices share their backing array when re-sliced.",
			Type:          types.QuestionTypeTrueFalse,
			Order:         2,
			CorrectAnswer: &trueAnswer,
		},
		{
			QuizID:        qz.ID,
			QuestionText:  "What is a lightweight thread managed by the Go runtime called?",
			Type:          types.QuestionTypeShortAnswer,
			Order:         3,
			CorrectAnswer: &goAnswer,
		},
	}
	for _, input := range questions {
		if _, err := quiz.CreateQuestion(db, input); err != nil {
			return err
		}
	}

	appLogger.Info("demo quiz created",
		slog.String("title", title),
		slog.Int("questions", len(questions)),
	)
	return nil
}

func ensureCourseCategory(db *gorm.DB, name string) (course.CourseCategory, error) {
	var category course.CourseCategory
	err := db.First(&category, "name = ?", name).Error
	if err == nil {
		return category, nil
	}
	if err != gorm.ErrRecordNotFound {
		return category, err
	}
	return course.CreateCategory(db, name, nil)
}

func ensureQuizCategory(db *gorm.DB, name string) (quiz.QuizCategory, error) {
	var category quiz.QuizCategory
	err := db.First(&category, "name = ?", name).Error
	if err == nil {
		return category, nil
	}
	if err != gorm.ErrRecordNotFound {
		return category, err
	}
	return quiz.CreateCategory(db, name, nil)
}

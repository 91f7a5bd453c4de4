package quiz

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/pagination"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// QuizCategory groups quizzes for catalog browsing.
type QuizCategory struct {
	types.BaseModel

	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
}

// TableName overrides the default table name.
func (QuizCategory) TableName() string { return "quiz_categories" }

// Quiz represents a scored quiz. PassingScore is the percentage a final score
// must meet or exceed to be marked passed.
type Quiz struct {
	types.BaseModel

	CategoryID      uuid.UUID        `gorm:"type:uuid;not null;column:category_id;index" json:"categoryId"`
	Title           string           `gorm:"type:varchar(200);not null" json:"title"`
	Instructor      string           `gorm:"type:varchar(100);not null" json:"instructor"`
	Description     *string          `gorm:"type:text" json:"description,omitempty"`
	Difficulty      types.Difficulty `gorm:"type:varchar(20);not null" json:"difficulty"`
	DurationMinutes int              `gorm:"type:int;not null;default:0;column:duration_minutes" json:"durationMinutes"`
	PassingScore    int              `gorm:"type:int;not null;default:50;column:passing_score" json:"passingScore"`
	AttemptsCount   int              `gorm:"type:int;not null;default:0;column:attempts_count" json:"attemptsCount"`
	Rating          float64          `gorm:"type:numeric(3,1);not null;default:0" json:"rating"`
	Active          bool             `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`

	Category *QuizCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName overrides the default table name.
func (Quiz) TableName() string { return "quizzes" }

// Question represents a single quiz question. CorrectAnswer is the canonical
// answer for true_false ("true"/"false") and short_answer questions; it is nil
// for multiple_choice, where correctness lives on the choices.
type Question struct {
	types.BaseModel

	QuizID        uuid.UUID          `gorm:"type:uuid;not null;column:quiz_id;index" json:"quizId"`
	QuestionText  string             `gorm:"type:text;not null;column:question_text" json:"questionText"`
	Type          types.QuestionType `gorm:"type:varchar(20);not null;column:question_type" json:"questionType"`
	Order         int                `gorm:"type:int;not null;default:0" json:"order"`
	CorrectAnswer *string            `gorm:"type:varchar(500);column:correct_answer" json:"-"`

	Choices []Choice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

// TableName overrides the default table name.
func (Question) TableName() string { return "questions" }

// Choice represents one option of a multiple choice question.
type Choice struct {
	types.BaseModel

	QuestionID uuid.UUID `gorm:"type:uuid;not null;column:question_id;index" json:"questionId"`
	ChoiceText string    `gorm:"type:varchar(500);not null;column:choice_text" json:"choiceText"`
	IsCorrect  bool      `gorm:"type:boolean;not null;default:false;column:is_correct" json:"-"`
	Order      int       `gorm:"type:int;not null;default:0" json:"order"`
}

// TableName overrides the default table name.
func (Choice) TableName() string { return "choices" }

// ListFilters defines quiz query filters.
type ListFilters struct {
	Keyword    string
	CategoryID *uuid.UUID
	Difficulty types.Difficulty
	ActiveOnly bool
}

// List retrieves paginated quizzes with filters.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Quiz, int64, error) {
	query := db.Model(&Quiz{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(instructor) LIKE ?", keyword, keyword)
	}

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}

	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []Quiz
	err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&quizzes).Error

	return quizzes, total, err
}

// Get retrieves a quiz by ID.
func Get(db *gorm.DB, id uuid.UUID) (Quiz, error) {
	var qz Quiz
	if err := db.Preload("Category").First(&qz, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return qz, ErrQuizNotFound
		}
		return qz, err
	}
	return qz, nil
}

// GetQuestions retrieves a quiz's questions in quiz-defined order, each with
// its ordered choices.
func GetQuestions(db *gorm.DB, quizID uuid.UUID) ([]Question, error) {
	var questions []Question
	err := db.Where("quiz_id = ?", quizID).
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC, created_at ASC")
		}).
		Order("\"order\" ASC, created_at ASC").
		Find(&questions).Error
	return questions, err
}

// GetQuestion retrieves a single question with choices, scoped to a quiz.
func GetQuestion(db *gorm.DB, questionID, quizID uuid.UUID) (Question, error) {
	var question Question
	err := db.Preload("Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("\"order\" ASC, created_at ASC")
	}).First(&question, "id = ? AND quiz_id = ?", questionID, quizID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return question, ErrQuestionNotFound
		}
		return question, err
	}
	return question, nil
}

// CountQuestions returns the current number of questions in a quiz.
func CountQuestions(db *gorm.DB, quizID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

// CreateInput carries data for creating a new quiz.
type CreateInput struct {
	CategoryID      uuid.UUID
	Title           string
	Instructor      string
	Description     *string
	Difficulty      types.Difficulty
	DurationMinutes int
	PassingScore    int
	Active          *bool
}

// Create inserts a new quiz.
func Create(db *gorm.DB, input CreateInput) (Quiz, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Quiz{}, ErrTitleRequired
	}

	if input.PassingScore < 0 || input.PassingScore > 100 {
		return Quiz{}, ErrInvalidPassingScore
	}

	var category QuizCategory
	if err := db.First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Quiz{}, ErrCategoryNotFound
		}
		return Quiz{}, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	qz := Quiz{
		CategoryID:      input.CategoryID,
		Title:           strings.TrimSpace(input.Title),
		Instructor:      strings.TrimSpace(input.Instructor),
		Description:     input.Description,
		Difficulty:      input.Difficulty,
		DurationMinutes: input.DurationMinutes,
		PassingScore:    input.PassingScore,
		Active:          active,
	}

	if err := db.Create(&qz).Error; err != nil {
		return Quiz{}, err
	}

	return qz, nil
}

// ChoiceInput carries one choice of a new multiple choice question.
type ChoiceInput struct {
	ChoiceText string
	IsCorrect  bool
	Order      int
}

// QuestionInput carries data for creating a new question with its choices.
type QuestionInput struct {
	QuizID        uuid.UUID
	QuestionText  string
	Type          types.QuestionType
	Order         int
	CorrectAnswer *string
	Choices       []ChoiceInput
}

// CreateQuestion inserts a question and its choices in one transaction.
func CreateQuestion(db *gorm.DB, input QuestionInput) (Question, error) {
	if !input.Type.Valid() {
		return Question{}, ErrInvalidQuestionType
	}

	switch input.Type {
	case types.QuestionTypeMultipleChoice:
		if len(input.Choices) < 2 {
			return Question{}, ErrChoicesRequired
		}
		correct := 0
		for _, choice := range input.Choices {
			if choice.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return Question{}, ErrOneCorrectChoice
		}
	default:
		if input.CorrectAnswer == nil || strings.TrimSpace(*input.CorrectAnswer) == "" {
			return Question{}, ErrAnswerKeyRequired
		}
	}

	question := Question{
		QuizID:        input.QuizID,
		QuestionText:  input.QuestionText,
		Type:          input.Type,
		Order:         input.Order,
		CorrectAnswer: input.CorrectAnswer,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Quiz{}, "id = ?", input.QuizID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrQuizNotFound
			}
			return err
		}

		if err := tx.Create(&question).Error; err != nil {
			return err
		}

		for _, choice := range input.Choices {
			row := Choice{
				QuestionID: question.ID,
				ChoiceText: choice.ChoiceText,
				IsCorrect:  choice.IsCorrect,
				Order:      choice.Order,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			question.Choices = append(question.Choices, row)
		}

		return nil
	})
	if err != nil {
		return Question{}, err
	}

	return question, nil
}

// CreateCategory inserts a new quiz category.
func CreateCategory(db *gorm.DB, name string, description *string) (QuizCategory, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return QuizCategory{}, ErrCategoryNameRequired
	}

	category := QuizCategory{Name: trimmed, Description: description}
	if err := db.Create(&category).Error; err != nil {
		return QuizCategory{}, err
	}
	return category, nil
}

// ListCategories retrieves all quiz categories ordered by name.
func ListCategories(db *gorm.DB) ([]QuizCategory, error) {
	var categories []QuizCategory
	err := db.Order("name ASC").Find(&categories).Error
	return categories, err
}

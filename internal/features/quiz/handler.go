package quiz

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/pagination"
	"github.com/jobhive/jobhive-server-go/pkg/response"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Handler processes quiz catalog HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a quiz handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated catalog quizzes.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Keyword:    c.Query("filterKeyword"),
		Difficulty: types.Difficulty(c.Query("difficulty")),
		ActiveOnly: c.Query("activeOnly") != "false",
	}

	if raw := c.Query("categoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid category id", err)
			return
		}
		filters.CategoryID = &categoryID
	}

	quizzes, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list quizzes", err)
		return
	}

	response.Success(c, http.StatusOK, quizzes, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single quiz with its question count.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	qz, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load quiz")
		return
	}

	count, err := CountQuestions(h.db, id)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to count questions", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"quiz":          qz,
		"questionCount": count,
	}, "", nil)
}

// ListCategories returns all quiz categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := ListCategories(h.db)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list categories", err)
		return
	}

	response.Success(c, http.StatusOK, categories, "", nil)
}

// Create inserts a new quiz (catalog admin only).
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		CategoryID      uuid.UUID        `json:"categoryId" binding:"required"`
		Title           string           `json:"title" binding:"required"`
		Instructor      string           `json:"instructor"`
		Description     *string          `json:"description"`
		Difficulty      types.Difficulty `json:"difficulty" binding:"required"`
		DurationMinutes int              `json:"durationMinutes"`
		PassingScore    int              `json:"passingScore"`
		Active          *bool            `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz payload", err)
		return
	}

	qz, err := Create(h.db, CreateInput{
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Instructor:      req.Instructor,
		Description:     req.Description,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		Active:          req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to create quiz")
		return
	}

	response.Created(c, qz, "")
}

// CreateQuestion inserts a question with choices (catalog admin only).
func (h *Handler) CreateQuestion(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	var req struct {
		QuestionText  string             `json:"questionText" binding:"required"`
		Type          types.QuestionType `json:"questionType" binding:"required"`
		Order         int                `json:"order"`
		CorrectAnswer *string            `json:"correctAnswer"`
		Choices       []struct {
			ChoiceText string `json:"choiceText" binding:"required"`
			IsCorrect  bool   `json:"isCorrect"`
			Order      int    `json:"order"`
		} `json:"choices"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid question payload", err)
		return
	}

	input := QuestionInput{
		QuizID:        quizID,
		QuestionText:  req.QuestionText,
		Type:          req.Type,
		Order:         req.Order,
		CorrectAnswer: req.CorrectAnswer,
	}
	for _, choice := range req.Choices {
		input.Choices = append(input.Choices, ChoiceInput{
			ChoiceText: choice.ChoiceText,
			IsCorrect:  choice.IsCorrect,
			Order:      choice.Order,
		})
	}

	question, err := CreateQuestion(h.db, input)
	if err != nil {
		h.respondError(c, err, "failed to create question")
		return
	}

	response.Created(c, question, "")
}

// CreateCategory inserts a new quiz category (catalog admin only).
func (h *Handler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid category payload", err)
		return
	}

	category, err := CreateCategory(h.db, req.Name, req.Description)
	if err != nil {
		h.respondError(c, err, "failed to create category")
		return
	}

	response.Created(c, category, "")
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrQuizNotFound):
		status = http.StatusNotFound
		message = "Quiz not found."
	case errors.Is(err, ErrQuestionNotFound):
		status = http.StatusNotFound
		message = "Question not found."
	case errors.Is(err, ErrCategoryNotFound):
		status = http.StatusNotFound
		message = "Quiz category not found."
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrCategoryNameRequired),
		errors.Is(err, ErrInvalidQuestionType),
		errors.Is(err, ErrInvalidPassingScore),
		errors.Is(err, ErrChoicesRequired),
		errors.Is(err, ErrOneCorrectChoice),
		errors.Is(err, ErrAnswerKeyRequired):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

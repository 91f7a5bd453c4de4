package quizattempt

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/quiz"
	"github.com/jobhive/jobhive-server-go/internal/middleware"
	"github.com/jobhive/jobhive-server-go/pkg/response"
)

// Handler processes quiz attempt HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a quiz attempt handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
	}
}

// Start begins (or resumes) the current user's attempt for a quiz.
func (h *Handler) Start(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	attempt, created, err := Start(h.db, usr.ID, quizID)
	if err != nil {
		h.respondError(c, err, "failed to start quiz")
		return
	}

	if !created {
		response.Success(c, http.StatusOK, attempt, resumeMessage(attempt), nil)
		return
	}

	h.logger.Info("quiz attempt started",
		slog.String("user_id", usr.ID.String()),
		slog.String("quiz_id", quizID.String()))

	response.Created(c, attempt, "Quiz started.")
}

// resumeMessage describes an attempt handed back instead of created: a
// concurrent start can return one that is still in progress.
func resumeMessage(attempt QuizAttempt) string {
	if attempt.Completed() {
		return "Quiz already completed."
	}
	return "Quiz attempt in progress."
}

// List returns the current user's attempts.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	attempts, err := ListByUser(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list attempts", err)
		return
	}

	response.Success(c, http.StatusOK, attempts, "", nil)
}

// CurrentQuestion returns the next unanswered question of an attempt.
func (h *Handler) CurrentQuestion(c *gin.Context) {
	attempt, ok := h.loadAttempt(c)
	if !ok {
		return
	}

	if attempt.Completed() {
		response.Success(c, http.StatusOK, gin.H{
			"completed": true,
			"attempt":   attempt,
		}, "Quiz already completed.", nil)
		return
	}

	question, answered, total, err := CurrentQuestion(h.db, attempt)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load current question", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"completed":      question == nil,
		"question":       question,
		"answeredCount":  answered,
		"totalQuestions": total,
	}, "", nil)
}

// SubmitAnswer records an answer for one question of an attempt.
func (h *Handler) SubmitAnswer(c *gin.Context) {
	attempt, ok := h.loadAttempt(c)
	if !ok {
		return
	}

	var req struct {
		QuestionID       uuid.UUID  `json:"questionId" binding:"required"`
		SelectedChoiceID *uuid.UUID `json:"selectedChoiceId"`
		TextAnswer       *string    `json:"textAnswer"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid answer payload", err)
		return
	}

	_, updated, err := SubmitAnswer(h.db, attempt, req.QuestionID, AnswerInput{
		SelectedChoiceID: req.SelectedChoiceID,
		TextAnswer:       req.TextAnswer,
	})
	if err != nil {
		h.respondError(c, err, "failed to submit answer")
		return
	}

	if updated.Completed() {
		response.Success(c, http.StatusOK, gin.H{
			"completed": true,
			"attempt":   updated,
		}, "Quiz completed.", nil)
		return
	}

	question, answered, total, err := CurrentQuestion(h.db, updated)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load current question", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"completed":      false,
		"nextQuestion":   question,
		"answeredCount":  answered,
		"totalQuestions": total,
	}, "Answer recorded.", nil)
}

// Result returns the graded outcome of a completed attempt.
func (h *Handler) Result(c *gin.Context) {
	attempt, ok := h.loadAttempt(c)
	if !ok {
		return
	}

	result, err := GetResult(h.db, attempt)
	if err != nil {
		h.respondError(c, err, "failed to load result")
		return
	}

	response.Success(c, http.StatusOK, result, "", nil)
}

func (h *Handler) loadAttempt(c *gin.Context) (QuizAttempt, bool) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return QuizAttempt{}, false
	}

	id, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid attempt id", err)
		return QuizAttempt{}, false
	}

	attempt, err := GetForUser(h.db, id, usr.ID)
	if err != nil {
		h.respondError(c, err, "failed to load attempt")
		return QuizAttempt{}, false
	}

	return attempt, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrAttemptNotFound):
		status = http.StatusNotFound
		message = "Quiz attempt not found."
	case errors.Is(err, quiz.ErrQuizNotFound):
		status = http.StatusNotFound
		message = "Quiz not found."
	case errors.Is(err, quiz.ErrQuestionNotFound):
		status = http.StatusNotFound
		message = "Question not found in this quiz."
	case errors.Is(err, ErrAttemptCompleted):
		status = http.StatusConflict
		message = "This quiz attempt is already completed."
	case errors.Is(err, ErrAttemptNotCompleted):
		status = http.StatusConflict
		message = "This quiz attempt is still in progress."
	case errors.Is(err, ErrAlreadyAnswered):
		status = http.StatusConflict
		message = "This question has already been answered."
	case errors.Is(err, ErrChoiceRequired):
		status = http.StatusBadRequest
		message = "A choice is required for this question."
	case errors.Is(err, ErrChoiceNotInQuestion):
		status = http.StatusBadRequest
		message = "The selected choice does not belong to this question."
	case errors.Is(err, ErrAnswerRequired):
		status = http.StatusBadRequest
		message = "An answer is required."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

package lesson

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/response"
)

// Handler processes lesson HTTP requests (catalog admin surface).
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// ListByCourse returns the ordered lesson list for a course.
func (h *Handler) ListByCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	lessons, err := GetByCourse(h.db, courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load lessons", err)
		return
	}

	response.Success(c, http.StatusOK, lessons, "", nil)
}

// Create inserts a new lesson into a course.
func (h *Handler) Create(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	var req struct {
		Title           string  `json:"title" binding:"required"`
		Description     *string `json:"description"`
		VideoURL        *string `json:"videoUrl"`
		DurationMinutes int     `json:"durationMinutes"`
		Order           int     `json:"order"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	lesson, err := Create(h.db, CreateInput{
		CourseID:        courseID,
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Order:           req.Order,
	})
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	response.Created(c, lesson, "")
}

// Update modifies an existing lesson.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	var req struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		VideoURL        *string `json:"videoUrl"`
		DurationMinutes *int    `json:"durationMinutes"`
		Order           *int    `json:"order"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	lesson, err := Update(h.db, id, UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		DescProvided:    req.Description != nil,
		VideoURL:        req.VideoURL,
		VideoProvided:   req.VideoURL != nil,
		DurationMinutes: req.DurationMinutes,
		Order:           req.Order,
	})
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	response.Success(c, http.StatusOK, lesson, "", nil)
}

// Delete removes a lesson from a course.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete lesson")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Lesson title is required."
	case errors.Is(err, ErrOrderInvalid), errors.Is(err, ErrDurationInvalid):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

package enrollment

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/course"
	"github.com/jobhive/jobhive-server-go/internal/middleware"
	"github.com/jobhive/jobhive-server-go/pkg/response"
)

// Handler processes enrollment and progress HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs an enrollment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
	}
}

// Enroll enrolls the current user into a course. Repeat calls return the
// existing enrollment unchanged.
func (h *Handler) Enroll(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	enr, created, err := Enroll(h.db, usr.ID, courseID)
	if err != nil {
		h.respondError(c, err, "failed to enroll")
		return
	}

	if !created {
		response.Success(c, http.StatusOK, enr, "Already enrolled in this course.", nil)
		return
	}

	h.logger.Info("user enrolled",
		slog.String("user_id", usr.ID.String()),
		slog.String("course_id", courseID.String()))

	response.Created(c, enr, "Enrolled successfully.")
}

// List returns the current user's enrollments with live progress.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	enrollments, err := ListByUser(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrollments", err)
		return
	}

	items := make([]gin.H, 0, len(enrollments))
	for _, enr := range enrollments {
		progress, err := ProgressPercentage(h.db, enr)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to compute progress", err)
			return
		}
		items = append(items, gin.H{
			"enrollment": enr,
			"progress":   progress,
		})
	}

	response.Success(c, http.StatusOK, items, "", nil)
}

// GetByID returns one enrollment with progress, completions, and the next
// lesson to take. Viewing an enrollment updates its last access time.
func (h *Handler) GetByID(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	id, err := uuid.Parse(c.Param("enrollmentId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid enrollment id", err)
		return
	}

	enr, err := GetForUser(h.db, id, usr.ID)
	if err != nil {
		h.respondError(c, err, "failed to load enrollment")
		return
	}

	progress, err := ProgressPercentage(h.db, enr)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to compute progress", err)
		return
	}

	completions, err := ListCompletions(h.db, enr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load lesson progress", err)
		return
	}

	next, err := NextUncompletedLesson(h.db, enr)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to resolve next lesson", err)
		return
	}

	if err := TouchLastAccessed(h.db, enr.ID); err != nil {
		h.logger.Warn("failed to update last access time",
			slog.String("enrollment_id", enr.ID.String()),
			slog.String("error", err.Error()))
	}

	response.Success(c, http.StatusOK, gin.H{
		"enrollment":  enr,
		"progress":    progress,
		"completions": completions,
		"nextLesson":  next,
	}, "", nil)
}

// CompleteLesson marks a lesson complete within the current user's enrollment.
func (h *Handler) CompleteLesson(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollmentId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid enrollment id", err)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	var req struct {
		TimeSpentMinutes int `json:"timeSpentMinutes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid completion payload", err)
			return
		}
	}
	if req.TimeSpentMinutes < 0 {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "timeSpentMinutes must not be negative", nil)
		return
	}

	enr, err := GetForUser(h.db, enrollmentID, usr.ID)
	if err != nil {
		h.respondError(c, err, "failed to load enrollment")
		return
	}

	completion, already, err := MarkLessonComplete(h.db, enr, lessonID, req.TimeSpentMinutes)
	if err != nil {
		h.respondError(c, err, "failed to complete lesson")
		return
	}

	progress, err := ProgressPercentage(h.db, enr)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to compute progress", err)
		return
	}

	message := "Lesson completed."
	if already {
		message = "Lesson was already completed."
	}

	response.Success(c, http.StatusOK, gin.H{
		"completion": completion,
		"progress":   progress,
	}, message, nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrEnrollmentNotFound):
		status = http.StatusNotFound
		message = "Enrollment not found."
	case errors.Is(err, course.ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrLessonNotInCourse):
		status = http.StatusNotFound
		message = "Lesson not found in this course."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

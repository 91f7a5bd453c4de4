package dashboard

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/course"
	"github.com/jobhive/jobhive-server-go/internal/features/enrollment"
	"github.com/jobhive/jobhive-server-go/internal/features/job"
	"github.com/jobhive/jobhive-server-go/internal/features/lesson"
	"github.com/jobhive/jobhive-server-go/internal/features/quiz"
	"github.com/jobhive/jobhive-server-go/internal/features/quizattempt"
	"github.com/jobhive/jobhive-server-go/internal/features/user"
	"github.com/jobhive/jobhive-server-go/internal/middleware"
	"github.com/jobhive/jobhive-server-go/pkg/response"
)

// Handler processes dashboard HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a dashboard handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// GetLearningSummary returns the current user's learning overview: every
// enrollment with live progress plus quiz attempt outcomes.
func (h *Handler) GetLearningSummary(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	enrollments, err := enrollment.ListByUser(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load enrollments", err)
		return
	}

	completedCourses := 0
	courses := make([]gin.H, 0, len(enrollments))
	for _, enr := range enrollments {
		progress, err := enrollment.ProgressPercentage(h.db, enr)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to compute progress", err)
			return
		}
		if enr.Completed {
			completedCourses++
		}
		courses = append(courses, gin.H{
			"enrollment": enr,
			"progress":   progress,
		})
	}

	attempts, err := quizattempt.ListByUser(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load attempts", err)
		return
	}

	passedQuizzes := 0
	for _, attempt := range attempts {
		if attempt.Completed() && attempt.Passed {
			passedQuizzes++
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"courses":          courses,
		"completedCourses": completedCourses,
		"quizAttempts":     attempts,
		"passedQuizzes":    passedQuizzes,
	}, "", nil)
}

// GetAdminStats returns platform-wide counters (admin only).
func (h *Handler) GetAdminStats(c *gin.Context) {
	sevenDaysAgo := time.Now().AddDate(0, 0, -7)

	counts := map[string]int64{}
	for name, model := range map[string]interface{}{
		"users":       &user.User{},
		"courses":     &course.Course{},
		"lessons":     &lesson.Lesson{},
		"quizzes":     &quiz.Quiz{},
		"enrollments": &enrollment.Enrollment{},
		"attempts":    &quizattempt.QuizAttempt{},
		"jobs":        &job.Job{},
		"companies":   &job.Company{},
	} {
		var count int64
		if err := h.db.Model(model).Count(&count).Error; err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load stats", err)
			return
		}
		counts[name] = count
	}

	var recentSignups int64
	if err := h.db.Model(&user.User{}).
		Where("created_at >= ?", sevenDaysAgo).
		Count(&recentSignups).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load stats", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"counts":        counts,
		"recentSignups": recentSignups,
	}, "", nil)
}

// GetSystemStats returns process statistics (admin only).
func (h *Handler) GetSystemStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response.Success(c, http.StatusOK, gin.H{
		"memory": gin.H{
			"total": m.Sys,
			"used":  m.Alloc,
			"free":  m.Sys - m.Alloc,
		},
		"cpu": gin.H{
			"numCPU": runtime.NumCPU(),
		},
		"goroutines": runtime.NumGoroutine(),
	}, "", nil)
}

// GetSystemLogs returns the last N lines from info.log or error.log
// GET /dashboard/logs?type=info|error&lines=100
func (h *Handler) GetSystemLogs(c *gin.Context) {
	logType := c.DefaultQuery("type", "info")
	if logType != "info" && logType != "error" {
		logType = "info"
	}

	lines, err := strconv.Atoi(c.DefaultQuery("lines", "100"))
	if err != nil {
		lines = 100
	}
	if lines < 10 {
		lines = 10
	}
	if lines > 1000 {
		lines = 1000
	}

	logFile := filepath.Join("logs", fmt.Sprintf("%s.log", logType))

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		response.Error(c, http.StatusNotFound, fmt.Sprintf("Log file not found: %s.log", logType), nil)
		return
	}

	file, err := os.Open(logFile)
	if err != nil {
		h.logger.Error("failed to open log file", "error", err, "file", logFile)
		response.Error(c, http.StatusInternalServerError, "Failed to read log file", nil)
		return
	}
	defer file.Close()

	var allLines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		allLines = append(allLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		h.logger.Error("failed to scan log file", "error", err)
		response.Error(c, http.StatusInternalServerError, "Failed to read log file", nil)
		return
	}

	startIdx := len(allLines) - lines
	if startIdx < 0 {
		startIdx = 0
	}
	lastLines := allLines[startIdx:]

	response.Success(c, http.StatusOK, gin.H{
		"type":  logType,
		"lines": len(lastLines),
		"log":   lastLines,
	}, "", nil)
}

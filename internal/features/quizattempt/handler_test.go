package quizattempt

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jobhive/jobhive-server-go/internal/middleware"
)

func TestResumeMessage(t *testing.T) {
	inProgress := QuizAttempt{StartedAt: time.Now()}
	if got := resumeMessage(inProgress); got != "Quiz attempt in progress." {
		t.Fatalf("in-progress message = %q", got)
	}

	now := time.Now()
	completed := QuizAttempt{StartedAt: now, CompletedAt: &now}
	if got := resumeMessage(completed); got != "Quiz already completed." {
		t.Fatalf("completed message = %q", got)
	}
}

func TestStartHandlerResumesCompletedAttempt(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	q := seedQuiz(t, db, 50)
	seedMultipleChoice(t, db, q.ID, 1)
	userID := uuid.New()

	attempt, created, err := Start(db, userID, q.ID)
	if err != nil || !created {
		t.Fatalf("Start: created=%v err=%v", created, err)
	}
	if err := db.Model(&QuizAttempt{}).Where("id = ?", attempt.ID).
		Updates(map[string]interface{}{"score": 80, "completed_at": time.Now()}).Error; err != nil {
		t.Fatalf("complete attempt: %v", err)
	}

	handler := NewHandler(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user", &middleware.User{ID: userID, Active: true})
	})
	router.POST("/quizzes/:quizId/attempts", handler.Start)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quizzes/"+q.ID.String()+"/attempts", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Message != "Quiz already completed." {
		t.Fatalf("message = %q, want %q", body.Message, "Quiz already completed.")
	}
}

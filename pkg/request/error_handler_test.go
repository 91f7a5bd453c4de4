package request

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/apperrors"
)

func performRequest(t *testing.T, handlerErr error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(Handler(logger))
	router.GET("/boom", func(c *gin.Context) {
		c.Error(handlerErr)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return w, body
}

func TestHandlerAppError(t *testing.T) {
	appErr := apperrors.New("Quiz attempt limit reached", http.StatusConflict, apperrors.CodeConflict, errors.New("attempt exists"))

	w, body := performRequest(t, appErr)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if body["message"] != "Quiz attempt limit reached" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestHandlerClassifiesErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"bad uuid", errors.New(`ERROR: invalid input syntax for type uuid: "abc"`), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := performRequest(t, tt.err)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

package auth

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/user"
	"github.com/jobhive/jobhive-server-go/internal/middleware"
	"github.com/jobhive/jobhive-server-go/pkg/config"
	"github.com/jobhive/jobhive-server-go/pkg/response"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		FullName string  `json:"fullName" binding:"required"`
		Email    string  `json:"email" binding:"required,email"`
		Password string  `json:"password" binding:"required"`
		Phone    *string `json:"phone"`
		UserType string  `json:"userType"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid registration payload", err)
		return
	}

	authResp, err := Register(h.db, RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		UserType: types.UserType(req.UserType),
	}, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "registration failed")
		return
	}

	h.logger.Info("user registered",
		slog.String("user_id", authResp.User.ID.String()),
		slog.String("user_type", string(authResp.User.UserType)))

	response.Created(c, authResp, "Registration successful")
}

// Login authenticates a user and returns JWT tokens.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	authResp, err := Login(h.db, LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, authResp, "Login successful", nil)
}

// Logout invalidates the caller's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	token := extractToken(c.GetHeader("Authorization"))
	if token == "" {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	if err := Logout(h.db, token, h.tokenConfig()); err != nil {
		h.respondError(c, err, "logout failed")
		return
	}

	response.Success(c, http.StatusOK, nil, "Logged out", nil)
}

// RefreshToken rotates the caller's token pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid refresh payload", err)
		return
	}

	pair, err := RefreshAccessToken(h.db, req.RefreshToken, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "token refresh failed")
		return
	}

	response.Success(c, http.StatusOK, pair, "", nil)
}

// Me returns the authenticated user's account.
func (h *Handler) Me(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	account, err := user.Get(h.db, usr.ID)
	if err != nil {
		h.respondError(c, err, "failed to load account")
		return
	}

	response.Success(c, http.StatusOK, account, "", nil)
}

func (h *Handler) tokenConfig() TokenConfig {
	return TokenConfig{
		JWTSecret:          h.cfg.JWTSecret,
		JWTRefreshSecret:   h.cfg.JWTRefreshSecret,
		AccessTokenExpiry:  h.cfg.AccessTokenExpiry,
		RefreshTokenExpiry: h.cfg.RefreshTokenExpiry,
	}
}

func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password."
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Missing required fields."
	case errors.Is(err, ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Invalid email format."
	case errors.Is(err, ErrWeakPassword), errors.Is(err, user.ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	case errors.Is(err, ErrInvalidUserType):
		status = http.StatusBadRequest
		message = "userType must be user or employee."
	case errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict
		message = "Email already in use."
	case errors.Is(err, ErrInactiveAccount):
		status = http.StatusForbidden
		message = "Account is deactivated."
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "Invalid or expired token."
	case errors.Is(err, user.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

package user

import (
	"errors"
	"net/http"
	"regexp"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/pagination"
	"github.com/jobhive/jobhive-server-go/pkg/response"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+$`)

// Handler processes user management HTTP requests (admin only).
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated users with filters.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Keyword: c.Query("filterKeyword"),
	}

	if raw := c.Query("userType"); raw != "" {
		filters.UserTypes = []types.UserType{types.UserType(raw)}
	}

	users, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, users, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single user.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	usr, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// Create inserts a new user.
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		FullName string  `json:"fullName" binding:"required"`
		Email    string  `json:"email" binding:"required"`
		Phone    *string `json:"phone"`
		Password string  `json:"password" binding:"required"`
		UserType string  `json:"userType" binding:"required"`
		Active   *bool   `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	if !emailRegex.MatchString(req.Email) {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid email format", nil)
		return
	}

	userType := types.UserType(req.UserType)
	switch userType {
	case types.UserTypeUser, types.UserTypeEmployee, types.UserTypeAdmin:
	default:
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "userType must be user, employee, or admin", nil)
		return
	}

	usr, err := Create(h.db, CreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		UserType: userType,
		Active:   req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to create user")
		return
	}

	h.logger.Info("user created",
		slog.String("user_id", usr.ID.String()),
		slog.String("user_type", string(usr.UserType)))

	response.Created(c, usr, "")
}

// Update modifies an existing user.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	var req struct {
		FullName *string `json:"fullName"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Password *string `json:"password"`
		UserType *string `json:"userType"`
		Active   *bool   `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	input := UpdateInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		PhoneProvided: req.Phone != nil,
		Password:      req.Password,
		Active:        req.Active,
	}

	if req.UserType != nil {
		userType := types.UserType(*req.UserType)
		switch userType {
		case types.UserTypeUser, types.UserTypeEmployee, types.UserTypeAdmin:
		default:
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "userType must be user, employee, or admin", nil)
			return
		}
		input.UserType = &userType
	}

	usr, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// Delete removes a user.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, nil, "User deleted.", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrEmailTaken):
		status = http.StatusConflict
		message = "Email already in use."
	case errors.Is(err, ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

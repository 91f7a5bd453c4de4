package course

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/lesson"
	"github.com/jobhive/jobhive-server-go/pkg/cache"
	"github.com/jobhive/jobhive-server-go/pkg/pagination"
	"github.com/jobhive/jobhive-server-go/pkg/response"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

const categoriesCacheKey = "catalog:course-categories"
const categoriesCacheTTL = 10 * time.Minute

// Handler processes course catalog HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cache  cache.Client
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		cache:  cacheClient,
	}
}

// List returns paginated catalog courses.
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

	courses, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single course with its ordered lesson list.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	crs, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	lessons, err := lesson.GetByCourse(h.db, id)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load lessons", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"course":  crs,
		"lessons": lessons,
	}, "", nil)
}

// ListCategories returns all course categories, served from cache when warm.
func (h *Handler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := h.cache.Get(ctx, categoriesCacheKey); err == nil && cached != "" {
		var categories []CourseCategory
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			response.Success(c, http.StatusOK, categories, "", nil)
			return
		}
	}

	categories, err := ListCategories(h.db)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list categories", err)
		return
	}

	h.cacheCategories(ctx, categories)

	response.Success(c, http.StatusOK, categories, "", nil)
}

// Create inserts a new course (catalog admin only).
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		CategoryID       uuid.UUID        `json:"categoryId" binding:"required"`
		Title            string           `json:"title" binding:"required"`
		Instructor       string           `json:"instructor" binding:"required"`
		Description      string           `json:"description"`
		ShortDescription string           `json:"shortDescription"`
		Difficulty       types.Difficulty `json:"difficulty" binding:"required"`
		Price            types.Money      `json:"price"`
		DurationWeeks    int              `json:"durationWeeks"`
		SkillsCovered    []string         `json:"skillsCovered"`
		Active           *bool            `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	crs, err := Create(h.db, CreateInput{
		CategoryID:       req.CategoryID,
		Title:            req.Title,
		Instructor:       req.Instructor,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Difficulty:       req.Difficulty,
		Price:            req.Price,
		DurationWeeks:    req.DurationWeeks,
		SkillsCovered:    req.SkillsCovered,
		Active:           req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	response.Created(c, crs, "")
}

// Update modifies an existing course (catalog admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	var req struct {
		Title            *string           `json:"title"`
		Instructor       *string           `json:"instructor"`
		Description      *string           `json:"description"`
		ShortDescription *string           `json:"shortDescription"`
		Difficulty       *types.Difficulty `json:"difficulty"`
		Price            *types.Money      `json:"price"`
		DurationWeeks    *int              `json:"durationWeeks"`
		SkillsCovered    []string          `json:"skillsCovered"`
		Active           *bool             `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	crs, err := Update(h.db, id, UpdateInput{
		Title:            req.Title,
		Instructor:       req.Instructor,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Difficulty:       req.Difficulty,
		Price:            req.Price,
		DurationWeeks:    req.DurationWeeks,
		SkillsProvided:   req.SkillsCovered != nil,
		SkillsCovered:    req.SkillsCovered,
		Active:           req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	response.Success(c, http.StatusOK, crs, "", nil)
}

// CreateCategory inserts a new course category (catalog admin only).
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

	if err := h.cache.Delete(c.Request.Context(), categoriesCacheKey); err != nil {
		h.logger.Warn("failed to invalidate category cache", slog.String("error", err.Error()))
	}

	response.Created(c, category, "")
}

func (h *Handler) cacheCategories(ctx context.Context, categories []CourseCategory) {
	payload, err := json.Marshal(categories)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, categoriesCacheKey, string(payload), categoriesCacheTTL); err != nil {
		h.logger.Debug("category cache write skipped", slog.String("error", err.Error()))
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrCategoryNotFound):
		status = http.StatusNotFound
		message = "Course category not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Course title is required."
	case errors.Is(err, ErrCategoryNameRequired):
		status = http.StatusBadRequest
		message = "Category name is required."
	case errors.Is(err, ErrInvalidDifficulty):
		status = http.StatusBadRequest
		message = "Difficulty must be beginner, intermediate, or advanced."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

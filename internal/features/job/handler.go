package job

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/middleware"
	"github.com/jobhive/jobhive-server-go/pkg/cache"
	"github.com/jobhive/jobhive-server-go/pkg/pagination"
	"github.com/jobhive/jobhive-server-go/pkg/response"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

const recentJobsCacheKey = "jobs:recent"
const recentJobsCacheTTL = 5 * time.Minute

// Handler processes job board HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cache  cache.Client
}

// NewHandler constructs a job handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		cache:  cacheClient,
	}
}

// List returns paginated job postings. The unfiltered first page is served
// from cache when warm.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Keyword:         c.Query("filterKeyword"),
		JobType:         types.JobType(c.Query("jobType")),
		ExperienceLevel: types.ExperienceLevel(c.Query("experienceLevel")),
		WorkMode:        types.WorkMode(c.Query("workMode")),
		Location:        c.Query("location"),
		ActiveOnly:      c.Query("activeOnly") != "false",
	}

	if raw := c.Query("companyId"); raw != "" {
		companyID, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid company id", err)
			return
		}
		filters.CompanyID = &companyID
	}

	cacheable := filters == (ListFilters{ActiveOnly: true}) && params.Skip == 0

	if cacheable {
		if cached, err := h.cache.Get(c.Request.Context(), recentJobsCacheKey); err == nil && cached != "" {
			var jobs []Job
			if err := json.Unmarshal([]byte(cached), &jobs); err == nil {
				response.Success(c, http.StatusOK, jobs, "", nil)
				return
			}
		}
	}

	jobs, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list jobs", err)
		return
	}

	if cacheable {
		if payload, err := json.Marshal(jobs); err == nil {
			if err := h.cache.Set(c.Request.Context(), recentJobsCacheKey, string(payload), recentJobsCacheTTL); err != nil {
				h.logger.Debug("job cache write skipped", slog.String("error", err.Error()))
			}
		}
	}

	response.Success(c, http.StatusOK, jobs, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single job posting.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid job id", err)
		return
	}

	posting, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load job")
		return
	}

	response.Success(c, http.StatusOK, posting, "", nil)
}

// Create inserts a new job posting (employee or admin).
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req struct {
		CompanyID       uuid.UUID             `json:"companyId" binding:"required"`
		Title           string                `json:"title" binding:"required"`
		Description     string                `json:"description"`
		JobType         types.JobType         `json:"jobType" binding:"required"`
		ExperienceLevel types.ExperienceLevel `json:"experienceLevel"`
		WorkMode        types.WorkMode        `json:"workMode"`
		Location        *string               `json:"location"`
		SalaryMin       *types.Money          `json:"salaryMin"`
		SalaryMax       *types.Money          `json:"salaryMax"`
		RequiredSkills  []string              `json:"requiredSkills"`
		Deadline        *time.Time            `json:"deadline"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid job payload", err)
		return
	}

	if !h.canManageCompany(c, usr, req.CompanyID) {
		return
	}

	posting, err := Create(h.db, CreateInput{
		CompanyID:       req.CompanyID,
		Title:           req.Title,
		Description:     req.Description,
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
		WorkMode:        req.WorkMode,
		Location:        req.Location,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		RequiredSkills:  req.RequiredSkills,
		Deadline:        req.Deadline,
	})
	if err != nil {
		h.respondError(c, err, "failed to create job")
		return
	}

	h.invalidateRecent(c)

	response.Created(c, posting, "")
}

// Update modifies an existing job posting (owner or admin).
func (h *Handler) Update(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	id, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid job id", err)
		return
	}

	existing, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load job")
		return
	}

	if !h.canManageCompany(c, usr, existing.CompanyID) {
		return
	}

	var req struct {
		Title           *string                `json:"title"`
		Description     *string                `json:"description"`
		JobType         *types.JobType         `json:"jobType"`
		ExperienceLevel *types.ExperienceLevel `json:"experienceLevel"`
		WorkMode        *types.WorkMode        `json:"workMode"`
		Location        *string                `json:"location"`
		SalaryMin       *types.Money           `json:"salaryMin"`
		SalaryMax       *types.Money           `json:"salaryMax"`
		RequiredSkills  []string               `json:"requiredSkills"`
		Active          *bool                  `json:"isActive"`
		Deadline        *time.Time             `json:"deadline"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid job payload", err)
		return
	}

	posting, err := Update(h.db, id, UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
		WorkMode:        req.WorkMode,
		Location:        req.Location,
		LocationGiven:   req.Location != nil,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryGiven:     req.SalaryMin != nil || req.SalaryMax != nil,
		SkillsGiven:     req.RequiredSkills != nil,
		RequiredSkills:  req.RequiredSkills,
		Active:          req.Active,
		Deadline:        req.Deadline,
		DeadlineGiven:   req.Deadline != nil,
	})
	if err != nil {
		h.respondError(c, err, "failed to update job")
		return
	}

	h.invalidateRecent(c)

	response.Success(c, http.StatusOK, posting, "", nil)
}

// Delete removes a job posting (owner or admin).
func (h *Handler) Delete(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	id, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid job id", err)
		return
	}

	existing, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load job")
		return
	}

	if !h.canManageCompany(c, usr, existing.CompanyID) {
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete job")
		return
	}

	h.invalidateRecent(c)

	response.Success(c, http.StatusOK, nil, "Job deleted.", nil)
}

// ListCompanies returns paginated companies.
func (h *Handler) ListCompanies(c *gin.Context) {
	params := pagination.Extract(c)

	companies, total, err := ListCompanies(h.db, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list companies", err)
		return
	}

	response.Success(c, http.StatusOK, companies, "", pagination.MetadataFrom(total, params))
}

// GetCompany fetches a single company.
func (h *Handler) GetCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid company id", err)
		return
	}

	company, err := GetCompany(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load company")
		return
	}

	response.Success(c, http.StatusOK, company, "", nil)
}

// CreateCompany inserts a new company owned by the caller.
func (h *Handler) CreateCompany(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		Website     *string `json:"website"`
		Location    *string `json:"location"`
		Industry    *string `json:"industry"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid company payload", err)
		return
	}

	company, err := CreateCompany(h.db, usr.ID, CompanyInput{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Location:    req.Location,
		Industry:    req.Industry,
	})
	if err != nil {
		h.respondError(c, err, "failed to create company")
		return
	}

	response.Created(c, company, "")
}

func (h *Handler) canManageCompany(c *gin.Context, usr *middleware.User, companyID uuid.UUID) bool {
	if usr.UserType == types.UserTypeAdmin {
		return true
	}

	company, err := GetCompany(h.db, companyID)
	if err != nil {
		h.respondError(c, err, "failed to load company")
		return false
	}

	if company.OwnerID != usr.ID {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You can only manage jobs for your own company.", ErrNotJobOwner)
		return false
	}

	return true
}

func (h *Handler) invalidateRecent(c *gin.Context) {
	if err := h.cache.Delete(c.Request.Context(), recentJobsCacheKey); err != nil {
		h.logger.Warn("failed to invalidate job cache", slog.String("error", err.Error()))
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrJobNotFound):
		status = http.StatusNotFound
		message = "Job not found."
	case errors.Is(err, ErrCompanyNotFound):
		status = http.StatusNotFound
		message = "Company not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Job title is required."
	case errors.Is(err, ErrCompanyNameRequired):
		status = http.StatusBadRequest
		message = "Company name is required."
	case errors.Is(err, ErrInvalidJobType):
		status = http.StatusBadRequest
		message = "jobType must be full_time, part_time, contract, or internship."
	case errors.Is(err, ErrInvalidSalaryRange):
		status = http.StatusBadRequest
		message = "salaryMin cannot exceed salaryMax."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

package profile

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/middleware"
	"github.com/jobhive/jobhive-server-go/pkg/response"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Handler processes profile HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a profile handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// GetMine returns the current user's profile with all sections.
func (h *Handler) GetMine(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	if _, err := Ensure(h.db, usr.ID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}

	profile, err := GetByUser(h.db, usr.ID)
	if err != nil {
		h.respondError(c, err, "failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, profile, "", nil)
}

// GetByUserID returns another user's public profile.
func (h *Handler) GetByUserID(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	profile, err := GetByUser(h.db, userID)
	if err != nil {
		h.respondError(c, err, "failed to load profile")
		return
	}

	if !profile.Public {
		usr, ok := middleware.GetUserFromContext(c)
		if !ok || (usr.ID != userID && usr.UserType != types.UserTypeAdmin) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Profile not found.", nil)
			return
		}
	}

	response.Success(c, http.StatusOK, profile, "", nil)
}

// Update modifies the current user's profile fields.
func (h *Handler) Update(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req struct {
		Headline *string `json:"headline"`
		Bio      *string `json:"bio"`
		Location *string `json:"location"`
		Website  *string `json:"website"`
		Public   *bool   `json:"isPublic"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid profile payload", err)
		return
	}

	profile, err := Update(h.db, usr.ID, UpdateInput{
		Headline: req.Headline,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
		Public:   req.Public,
	})
	if err != nil {
		h.respondError(c, err, "failed to update profile")
		return
	}

	response.Success(c, http.StatusOK, profile, "", nil)
}

// AddExperience appends a work history entry.
func (h *Handler) AddExperience(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	var req struct {
		Title       string     `json:"title" binding:"required"`
		Company     string     `json:"company" binding:"required"`
		Location    *string    `json:"location"`
		StartDate   time.Time  `json:"startDate" binding:"required"`
		EndDate     *time.Time `json:"endDate"`
		Current     bool       `json:"isCurrent"`
		Description *string    `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid experience payload", err)
		return
	}

	entry, err := AddExperience(h.db, profile.ID, Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err, "failed to add experience")
		return
	}

	response.Created(c, entry, "")
}

// AddEducation appends an education entry.
func (h *Handler) AddEducation(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	var req struct {
		School       string  `json:"school" binding:"required"`
		Degree       *string `json:"degree"`
		FieldOfStudy *string `json:"fieldOfStudy"`
		StartYear    int     `json:"startYear" binding:"required"`
		EndYear      *int    `json:"endYear"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid education payload", err)
		return
	}

	entry, err := AddEducation(h.db, profile.ID, Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		StartYear:    req.StartYear,
		EndYear:      req.EndYear,
	})
	if err != nil {
		h.respondError(c, err, "failed to add education")
		return
	}

	response.Created(c, entry, "")
}

// AddSkill appends a skill entry.
func (h *Handler) AddSkill(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	var req struct {
		Name        string            `json:"name" binding:"required"`
		Proficiency types.Proficiency `json:"proficiency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid skill payload", err)
		return
	}

	if req.Proficiency == "" {
		req.Proficiency = types.ProficiencyBeginner
	}

	entry, err := AddSkill(h.db, profile.ID, Skill{Name: req.Name, Proficiency: req.Proficiency})
	if err != nil {
		h.respondError(c, err, "failed to add skill")
		return
	}

	response.Created(c, entry, "")
}

// AddProject appends a project entry.
func (h *Handler) AddProject(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		URL         *string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid project payload", err)
		return
	}

	entry, err := AddProject(h.db, profile.ID, Project{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		h.respondError(c, err, "failed to add project")
		return
	}

	response.Created(c, entry, "")
}

// AddLanguage appends a language entry.
func (h *Handler) AddLanguage(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	var req struct {
		Name        string            `json:"name" binding:"required"`
		Proficiency types.Proficiency `json:"proficiency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid language payload", err)
		return
	}

	if req.Proficiency == "" {
		req.Proficiency = types.ProficiencyBeginner
	}

	entry, err := AddLanguage(h.db, profile.ID, Language{Name: req.Name, Proficiency: req.Proficiency})
	if err != nil {
		h.respondError(c, err, "failed to add language")
		return
	}

	response.Created(c, entry, "")
}

// AddCertificate appends a certificate entry.
func (h *Handler) AddCertificate(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	var req struct {
		Name          string     `json:"name" binding:"required"`
		Issuer        *string    `json:"issuer"`
		IssueDate     *time.Time `json:"issueDate"`
		CredentialURL *string    `json:"credentialUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid certificate payload", err)
		return
	}

	entry, err := AddCertificate(h.db, profile.ID, Certificate{
		Name:          req.Name,
		Issuer:        req.Issuer,
		IssueDate:     req.IssueDate,
		CredentialURL: req.CredentialURL,
	})
	if err != nil {
		h.respondError(c, err, "failed to add certificate")
		return
	}

	response.Created(c, entry, "")
}

// DeleteSection removes one section entry from the current user's profile.
func (h *Handler) DeleteSection(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid entry id", err)
		return
	}

	var model interface{}
	switch c.Param("section") {
	case "experiences":
		model = &Experience{}
	case "educations":
		model = &Education{}
	case "skills":
		model = &Skill{}
	case "projects":
		model = &Project{}
	case "languages":
		model = &Language{}
	case "certificates":
		model = &Certificate{}
	default:
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "unknown profile section", nil)
		return
	}

	if err := DeleteSection(h.db, model, entryID, profile.ID); err != nil {
		h.respondError(c, err, "failed to delete entry")
		return
	}

	response.Success(c, http.StatusOK, nil, "Entry deleted.", nil)
}

func (h *Handler) ownProfile(c *gin.Context) (UserProfile, bool) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return UserProfile{}, false
	}

	profile, err := Ensure(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load profile", err)
		return UserProfile{}, false
	}

	return profile, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrProfileNotFound):
		status = http.StatusNotFound
		message = "Profile not found."
	case errors.Is(err, ErrSectionNotFound):
		status = http.StatusNotFound
		message = "Profile entry not found."
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "A name is required."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

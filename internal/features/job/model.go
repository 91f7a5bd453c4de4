package job

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/pagination"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Company represents an employer organization on the job board.
type Company struct {
	types.BaseModel

	OwnerID     uuid.UUID `gorm:"type:uuid;not null;column:owner_id;index" json:"ownerId"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Website     *string   `gorm:"type:varchar(255)" json:"website,omitempty"`
	Location    *string   `gorm:"type:varchar(100)" json:"location,omitempty"`
	Industry    *string   `gorm:"type:varchar(100)" json:"industry,omitempty"`
}

// TableName overrides the default table name.
func (Company) TableName() string { return "companies" }

// Job represents one job posting.
type Job struct {
	types.BaseModel

	CompanyID       uuid.UUID             `gorm:"type:uuid;not null;column:company_id;index" json:"companyId"`
	Title           string                `gorm:"type:varchar(200);not null" json:"title"`
	Description     string                `gorm:"type:text;not null" json:"description"`
	JobType         types.JobType         `gorm:"type:varchar(20);not null;column:job_type" json:"jobType"`
	ExperienceLevel types.ExperienceLevel `gorm:"type:varchar(20);not null;column:experience_level" json:"experienceLevel"`
	WorkMode        types.WorkMode        `gorm:"type:varchar(20);not null;column:work_mode" json:"workMode"`
	Location        *string               `gorm:"type:varchar(100)" json:"location,omitempty"`
	SalaryMin       *types.Money          `gorm:"type:numeric(12,2);column:salary_min" json:"salaryMin,omitempty"`
	SalaryMax       *types.Money          `gorm:"type:numeric(12,2);column:salary_max" json:"salaryMax,omitempty"`
	RequiredSkills  pq.StringArray        `gorm:"type:text[];column:required_skills" json:"requiredSkills,omitempty"`
	Active          bool                  `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
	Deadline        *time.Time            `gorm:"column:deadline" json:"deadline,omitempty"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// TableName overrides the default table name.
func (Job) TableName() string { return "jobs" }

// ListFilters defines job query filters.
type ListFilters struct {
	Keyword         string
	CompanyID       *uuid.UUID
	JobType         types.JobType
	ExperienceLevel types.ExperienceLevel
	WorkMode        types.WorkMode
	Location        string
	ActiveOnly      bool
}

// List retrieves paginated jobs with filters, newest first.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Job, int64, error) {
	query := db.Model(&Job{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	if filters.CompanyID != nil {
		query = query.Where("company_id = ?", *filters.CompanyID)
	}

	if filters.JobType != "" {
		query = query.Where("job_type = ?", filters.JobType)
	}

	if filters.ExperienceLevel != "" {
		query = query.Where("experience_level = ?", filters.ExperienceLevel)
	}

	if filters.WorkMode != "" {
		query = query.Where("work_mode = ?", filters.WorkMode)
	}

	if filters.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filters.Location)+"%")
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []Job
	err := query.
		Preload("Company").
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&jobs).Error

	return jobs, total, err
}

// Get retrieves a job by ID.
func Get(db *gorm.DB, id uuid.UUID) (Job, error) {
	var job Job
	if err := db.Preload("Company").First(&job, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return job, ErrJobNotFound
		}
		return job, err
	}
	return job, nil
}

// CreateInput carries data for creating a job posting.
type CreateInput struct {
	CompanyID       uuid.UUID
	Title           string
	Description     string
	JobType         types.JobType
	ExperienceLevel types.ExperienceLevel
	WorkMode        types.WorkMode
	Location        *string
	SalaryMin       *types.Money
	SalaryMax       *types.Money
	RequiredSkills  []string
	Deadline        *time.Time
}

// Create inserts a new job posting under a company.
func Create(db *gorm.DB, input CreateInput) (Job, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Job{}, ErrTitleRequired
	}

	switch input.JobType {
	case types.JobTypeFullTime, types.JobTypePartTime, types.JobTypeContract, types.JobTypeInternship:
	default:
		return Job{}, ErrInvalidJobType
	}

	if input.SalaryMin != nil && input.SalaryMax != nil && input.SalaryMin.GreaterThan(*input.SalaryMax) {
		return Job{}, ErrInvalidSalaryRange
	}

	if err := db.First(&Company{}, "id = ?", input.CompanyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Job{}, ErrCompanyNotFound
		}
		return Job{}, err
	}

	job := Job{
		CompanyID:       input.CompanyID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		JobType:         input.JobType,
		ExperienceLevel: input.ExperienceLevel,
		WorkMode:        input.WorkMode,
		Location:        input.Location,
		SalaryMin:       input.SalaryMin,
		SalaryMax:       input.SalaryMax,
		RequiredSkills:  pq.StringArray(input.RequiredSkills),
		Active:          true,
		Deadline:        input.Deadline,
	}

	if err := db.Create(&job).Error; err != nil {
		return Job{}, err
	}

	return job, nil
}

// UpdateInput captures mutable job fields.
type UpdateInput struct {
	Title           *string
	Description     *string
	JobType         *types.JobType
	ExperienceLevel *types.ExperienceLevel
	WorkMode        *types.WorkMode
	Location        *string
	LocationGiven   bool
	SalaryMin       *types.Money
	SalaryMax       *types.Money
	SalaryGiven     bool
	SkillsGiven     bool
	RequiredSkills  []string
	Active          *bool
	Deadline        *time.Time
	DeadlineGiven   bool
}

// Update modifies an existing job posting.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Job, error) {
	job, err := Get(db, id)
	if err != nil {
		return job, err
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return job, ErrTitleRequired
		}
		job.Title = trimmed
	}

	if input.Description != nil {
		job.Description = *input.Description
	}

	if input.JobType != nil {
		switch *input.JobType {
		case types.JobTypeFullTime, types.JobTypePartTime, types.JobTypeContract, types.JobTypeInternship:
		default:
			return job, ErrInvalidJobType
		}
		job.JobType = *input.JobType
	}

	if input.ExperienceLevel != nil {
		job.ExperienceLevel = *input.ExperienceLevel
	}

	if input.WorkMode != nil {
		job.WorkMode = *input.WorkMode
	}

	if input.LocationGiven {
		job.Location = input.Location
	}

	if input.SalaryGiven {
		if input.SalaryMin != nil && input.SalaryMax != nil && input.SalaryMin.GreaterThan(*input.SalaryMax) {
			return job, ErrInvalidSalaryRange
		}
		job.SalaryMin = input.SalaryMin
		job.SalaryMax = input.SalaryMax
	}

	if input.SkillsGiven {
		job.RequiredSkills = pq.StringArray(input.RequiredSkills)
	}

	if input.Active != nil {
		job.Active = *input.Active
	}

	if input.DeadlineGiven {
		job.Deadline = input.Deadline
	}

	if err := db.Save(&job).Error; err != nil {
		return job, err
	}

	return job, nil
}

// Delete removes a job posting.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Job{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// CompanyInput carries data for creating or updating a company.
type CompanyInput struct {
	Name        string
	Description *string
	Website     *string
	Location    *string
	Industry    *string
}

// CreateCompany inserts a new company owned by the given user.
func CreateCompany(db *gorm.DB, ownerID uuid.UUID, input CompanyInput) (Company, error) {
	trimmed := strings.TrimSpace(input.Name)
	if trimmed == "" {
		return Company{}, ErrCompanyNameRequired
	}

	company := Company{
		OwnerID:     ownerID,
		Name:        trimmed,
		Description: input.Description,
		Website:     input.Website,
		Location:    input.Location,
		Industry:    input.Industry,
	}

	if err := db.Create(&company).Error; err != nil {
		return Company{}, err
	}

	return company, nil
}

// GetCompany retrieves a company by ID.
func GetCompany(db *gorm.DB, id uuid.UUID) (Company, error) {
	var company Company
	if err := db.First(&company, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return company, ErrCompanyNotFound
		}
		return company, err
	}
	return company, nil
}

// ListCompanies retrieves all companies ordered by name.
func ListCompanies(db *gorm.DB, params pagination.Params) ([]Company, int64, error) {
	var total int64
	if err := db.Model(&Company{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []Company
	err := db.Order("name ASC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&companies).Error
	return companies, total, err
}

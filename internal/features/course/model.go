package course

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/pagination"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// CourseCategory groups courses for catalog browsing.
type CourseCategory struct {
	types.BaseModel

	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
}

// TableName overrides the default table name.
func (CourseCategory) TableName() string { return "course_categories" }

// Course represents a catalog course. Read-only to learners; mutated only by
// catalog admins and the enrollment counter.
type Course struct {
	types.BaseModel

	CategoryID       uuid.UUID        `gorm:"type:uuid;not null;column:category_id;index" json:"categoryId"`
	Title            string           `gorm:"type:varchar(200);not null" json:"title"`
	Instructor       string           `gorm:"type:varchar(100);not null" json:"instructor"`
	Description      string           `gorm:"type:text;not null" json:"description"`
	ShortDescription string           `gorm:"type:varchar(300);not null;column:short_description" json:"shortDescription"`
	Difficulty       types.Difficulty `gorm:"type:varchar(20);not null" json:"difficulty"`
	Price            types.Money      `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	DurationWeeks    int              `gorm:"type:int;not null;default:0;column:duration_weeks" json:"durationWeeks"`
	SkillsCovered    pq.StringArray   `gorm:"type:text[];column:skills_covered" json:"skillsCovered,omitempty"`
	Rating           float64          `gorm:"type:numeric(3,1);not null;default:0" json:"rating"`
	RatingCount      int              `gorm:"type:int;not null;default:0;column:rating_count" json:"ratingCount"`
	StudentsCount    int              `gorm:"type:int;not null;default:0;column:students_count" json:"studentsCount"`
	Active           bool             `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`

	Category *CourseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// ListFilters defines course query filters.
type ListFilters struct {
	Keyword    string
	CategoryID *uuid.UUID
	Difficulty types.Difficulty
	ActiveOnly bool
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	CategoryID       uuid.UUID
	Title            string
	Instructor       string
	Description      string
	ShortDescription string
	Difficulty       types.Difficulty
	Price            types.Money
	DurationWeeks    int
	SkillsCovered    []string
	Active           *bool
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Title            *string
	Instructor       *string
	Description      *string
	ShortDescription *string
	Difficulty       *types.Difficulty
	Price            *types.Money
	DurationWeeks    *int
	SkillsProvided   bool
	SkillsCovered    []string
	Active           *bool
}

// List retrieves paginated courses with filters.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	query := db.Model(&Course{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(instructor) LIKE ? OR LOWER(short_description) LIKE ?",
			keyword, keyword, keyword)
	}

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}

	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&courses).Error

	return courses, total, err
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var course Course
	if err := db.Preload("Category").First(&course, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return course, ErrCourseNotFound
		}
		return course, err
	}
	return course, nil
}

// Create inserts a new course.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Course{}, ErrTitleRequired
	}

	if !input.Difficulty.Valid() {
		return Course{}, ErrInvalidDifficulty
	}

	var category CourseCategory
	if err := db.First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Course{}, ErrCategoryNotFound
		}
		return Course{}, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	course := Course{
		CategoryID:       input.CategoryID,
		Title:            strings.TrimSpace(input.Title),
		Instructor:       strings.TrimSpace(input.Instructor),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Difficulty:       input.Difficulty,
		Price:            input.Price,
		DurationWeeks:    input.DurationWeeks,
		SkillsCovered:    pq.StringArray(input.SkillsCovered),
		Active:           active,
	}

	if err := db.Create(&course).Error; err != nil {
		return Course{}, err
	}

	return course, nil
}

// Update modifies an existing course.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	course, err := Get(db, id)
	if err != nil {
		return course, err
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return course, ErrTitleRequired
		}
		course.Title = trimmed
	}

	if input.Instructor != nil {
		course.Instructor = strings.TrimSpace(*input.Instructor)
	}

	if input.Description != nil {
		course.Description = *input.Description
	}

	if input.ShortDescription != nil {
		course.ShortDescription = *input.ShortDescription
	}

	if input.Difficulty != nil {
		if !input.Difficulty.Valid() {
			return course, ErrInvalidDifficulty
		}
		course.Difficulty = *input.Difficulty
	}

	if input.Price != nil {
		course.Price = *input.Price
	}

	if input.DurationWeeks != nil {
		course.DurationWeeks = *input.DurationWeeks
	}

	if input.SkillsProvided {
		course.SkillsCovered = pq.StringArray(input.SkillsCovered)
	}

	if input.Active != nil {
		course.Active = *input.Active
	}

	if err := db.Save(&course).Error; err != nil {
		return course, err
	}

	return course, nil
}

// CreateCategory inserts a new course category.
func CreateCategory(db *gorm.DB, name string, description *string) (CourseCategory, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return CourseCategory{}, ErrCategoryNameRequired
	}

	category := CourseCategory{Name: trimmed, Description: description}
	if err := db.Create(&category).Error; err != nil {
		return CourseCategory{}, err
	}
	return category, nil
}

// ListCategories retrieves all course categories ordered by name.
func ListCategories(db *gorm.DB) ([]CourseCategory, error) {
	var categories []CourseCategory
	err := db.Order("name ASC").Find(&categories).Error
	return categories, err
}

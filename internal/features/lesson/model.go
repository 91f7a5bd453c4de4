package lesson

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Lesson represents a lesson within a course, ordered by the Order column.
type Lesson struct {
	types.BaseModel

	CourseID        uuid.UUID `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Title           string    `gorm:"type:varchar(200);not null" json:"title"`
	Description     *string   `gorm:"type:text" json:"description,omitempty"`
	VideoURL        *string   `gorm:"type:text;column:video_url" json:"videoUrl,omitempty"`
	DurationMinutes int       `gorm:"type:int;not null;default:0;column:duration_minutes" json:"durationMinutes"`
	Order           int       `gorm:"type:int;not null;default:0" json:"order"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	CourseID        uuid.UUID
	Title           string
	Description     *string
	VideoURL        *string
	DurationMinutes int
	Order           int
}

// UpdateInput captures mutable lesson fields.
type UpdateInput struct {
	Title           *string
	Description     *string
	DescProvided    bool
	VideoURL        *string
	VideoProvided   bool
	DurationMinutes *int
	Order           *int
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var lesson Lesson
	if err := db.First(&lesson, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return lesson, ErrLessonNotFound
		}
		return lesson, err
	}
	return lesson, nil
}

// GetForCourse retrieves a lesson that belongs to the given course.
func GetForCourse(db *gorm.DB, id, courseID uuid.UUID) (Lesson, error) {
	var lesson Lesson
	if err := db.First(&lesson, "id = ? AND course_id = ?", id, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return lesson, ErrLessonNotFound
		}
		return lesson, err
	}
	return lesson, nil
}

// GetByCourse retrieves all lessons for a course in course-defined order.
func GetByCourse(db *gorm.DB, courseID uuid.UUID) ([]Lesson, error) {
	var lessons []Lesson
	err := db.Where("course_id = ?", courseID).
		Order("\"order\" ASC, created_at ASC").
		Find(&lessons).Error
	return lessons, err
}

// CountByCourse returns the current number of lessons in a course.
func CountByCourse(db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// Create inserts a new lesson.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	trimmed := strings.TrimSpace(input.Title)
	if trimmed == "" {
		return Lesson{}, ErrTitleRequired
	}

	if input.Order < 0 {
		return Lesson{}, ErrOrderInvalid
	}

	if input.DurationMinutes < 0 {
		return Lesson{}, ErrDurationInvalid
	}

	lesson := Lesson{
		CourseID:        input.CourseID,
		Title:           trimmed,
		Description:     input.Description,
		VideoURL:        input.VideoURL,
		DurationMinutes: input.DurationMinutes,
		Order:           input.Order,
	}

	if err := db.Create(&lesson).Error; err != nil {
		return Lesson{}, err
	}

	return lesson, nil
}

// Update modifies an existing lesson.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Lesson, error) {
	lesson, err := Get(db, id)
	if err != nil {
		return lesson, err
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return lesson, ErrTitleRequired
		}
		lesson.Title = trimmed
	}

	if input.DescProvided {
		lesson.Description = input.Description
	}

	if input.VideoProvided {
		lesson.VideoURL = input.VideoURL
	}

	if input.DurationMinutes != nil {
		if *input.DurationMinutes < 0 {
			return lesson, ErrDurationInvalid
		}
		lesson.DurationMinutes = *input.DurationMinutes
	}

	if input.Order != nil {
		if *input.Order < 0 {
			return lesson, ErrOrderInvalid
		}
		lesson.Order = *input.Order
	}

	if err := db.Save(&lesson).Error; err != nil {
		return lesson, err
	}

	return lesson, nil
}

// Delete removes a lesson.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Lesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

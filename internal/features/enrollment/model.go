package enrollment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jobhive/jobhive-server-go/internal/features/course"
	"github.com/jobhive/jobhive-server-go/internal/features/lesson"
	"github.com/jobhive/jobhive-server-go/pkg/metrics"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Enrollment links a user to a course. A user holds at most one enrollment
// per course, enforced by the composite unique index.
type Enrollment struct {
	types.BaseModel

	UserID       uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_enrollment_user_course" json:"userId"`
	CourseID     uuid.UUID  `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_enrollment_user_course" json:"courseId"`
	Completed    bool       `gorm:"type:boolean;not null;default:false" json:"completed"`
	LastAccessed *time.Time `gorm:"column:last_accessed" json:"lastAccessed,omitempty"`

	Course *course.Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "enrollments" }

// LessonCompletion tracks one lesson's completion state within an enrollment.
// One row per (enrollment, lesson); rows are seeded on enroll and created
// lazily for lessons added to the course afterwards.
type LessonCompletion struct {
	types.BaseModel

	EnrollmentID     uuid.UUID  `gorm:"type:uuid;not null;column:enrollment_id;uniqueIndex:idx_completion_enrollment_lesson" json:"enrollmentId"`
	LessonID         uuid.UUID  `gorm:"type:uuid;not null;column:lesson_id;uniqueIndex:idx_completion_enrollment_lesson" json:"lessonId"`
	Completed        bool       `gorm:"type:boolean;not null;default:false" json:"completed"`
	CompletedDate    *time.Time `gorm:"column:completed_date" json:"completedDate,omitempty"`
	TimeSpentMinutes int        `gorm:"type:int;not null;default:0;column:time_spent_minutes" json:"timeSpentMinutes"`
}

// TableName overrides the default table name.
func (LessonCompletion) TableName() string { return "lesson_completions" }

// Enroll enrolls a user into a course, or returns the existing enrollment.
// On first enrollment it seeds one completion row per current lesson and
// bumps the course student counter, all in one transaction. The returned
// bool reports whether a new enrollment was created.
func Enroll(db *gorm.DB, userID, courseID uuid.UUID) (Enrollment, bool, error) {
	if _, err := course.Get(db, courseID); err != nil {
		return Enrollment{}, false, err
	}

	now := time.Now()
	enr := Enrollment{UserID: userID, CourseID: courseID, LastAccessed: &now}
	created := false

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).Create(&enr)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Already enrolled, possibly via a concurrent request. Refetch
			// into a fresh struct: Create has stamped enr.ID with a new
			// value that First would otherwise add to the WHERE clause.
			var existing Enrollment
			if err := tx.First(&existing, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
				return err
			}
			enr = existing
			return nil
		}
		created = true

		lessons, err := lesson.GetByCourse(tx, courseID)
		if err != nil {
			return err
		}

		if len(lessons) > 0 {
			completions := make([]LessonCompletion, 0, len(lessons))
			for _, les := range lessons {
				completions = append(completions, LessonCompletion{
					EnrollmentID: enr.ID,
					LessonID:     les.ID,
				})
			}
			if err := tx.Create(&completions).Error; err != nil {
				return err
			}
		}

		return tx.Model(&course.Course{}).
			Where("id = ?", courseID).
			UpdateColumn("students_count", gorm.Expr("students_count + 1")).Error
	})
	if err != nil {
		return Enrollment{}, false, err
	}

	if created {
		metrics.RecordEnrollment()
	}

	return enr, created, nil
}

// Get retrieves an enrollment by ID.
func Get(db *gorm.DB, id uuid.UUID) (Enrollment, error) {
	var enr Enrollment
	if err := db.Preload("Course").First(&enr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return enr, ErrEnrollmentNotFound
		}
		return enr, err
	}
	return enr, nil
}

// GetForUser retrieves an enrollment owned by the given user.
func GetForUser(db *gorm.DB, id, userID uuid.UUID) (Enrollment, error) {
	var enr Enrollment
	if err := db.Preload("Course").First(&enr, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return enr, ErrEnrollmentNotFound
		}
		return enr, err
	}
	return enr, nil
}

// ListByUser retrieves all enrollments for a user, most recently accessed first.
func ListByUser(db *gorm.DB, userID uuid.UUID) ([]Enrollment, error) {
	var enrollments []Enrollment
	err := db.Preload("Course").
		Where("user_id = ?", userID).
		Order("last_accessed DESC NULLS LAST, created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// MarkLessonComplete marks a lesson as completed within an enrollment.
// The completion row is created lazily when the lesson was added to the
// course after enroll time. Marking an already-completed lesson is a no-op
// that preserves the original completion date; the returned bool reports
// whether the lesson was already completed.
func MarkLessonComplete(db *gorm.DB, enr Enrollment, lessonID uuid.UUID, timeSpentMinutes int) (LessonCompletion, bool, error) {
	if _, err := lesson.GetForCourse(db, lessonID, enr.CourseID); err != nil {
		if err == lesson.ErrLessonNotFound {
			return LessonCompletion{}, false, ErrLessonNotInCourse
		}
		return LessonCompletion{}, false, err
	}

	var completion LessonCompletion
	already := false

	err := db.Transaction(func(tx *gorm.DB) error {
		seed := LessonCompletion{EnrollmentID: enr.ID, LessonID: lessonID}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).Create(&seed)
		if result.Error != nil {
			return result.Error
		}

		if err := tx.First(&completion, "enrollment_id = ? AND lesson_id = ?", enr.ID, lessonID).Error; err != nil {
			return err
		}

		if completion.Completed {
			already = true
			return nil
		}

		now := time.Now()
		completion.Completed = true
		completion.CompletedDate = &now
		completion.TimeSpentMinutes += timeSpentMinutes
		if err := tx.Save(&completion).Error; err != nil {
			return err
		}

		return refreshEnrollmentCompleted(tx, enr)
	})
	if err != nil {
		return LessonCompletion{}, false, err
	}

	return completion, already, nil
}

// refreshEnrollmentCompleted recomputes the enrollment completed flag after
// a lesson state change.
func refreshEnrollmentCompleted(tx *gorm.DB, enr Enrollment) error {
	total, err := lesson.CountByCourse(tx, enr.CourseID)
	if err != nil {
		return err
	}

	completed, err := countCompleted(tx, enr)
	if err != nil {
		return err
	}

	done := total > 0 && completed >= total
	if done == enr.Completed {
		return nil
	}

	return tx.Model(&Enrollment{}).
		Where("id = ?", enr.ID).
		UpdateColumn("completed", done).Error
}

// countCompleted counts completed lessons still belonging to the course.
func countCompleted(db *gorm.DB, enr Enrollment) (int64, error) {
	var count int64
	err := db.Model(&LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.enrollment_id = ? AND lesson_completions.completed = ? AND lessons.course_id = ?",
			enr.ID, true, enr.CourseID).
		Count(&count).Error
	return count, err
}

// ProgressPercentage computes progress as floor(100 * completed / total)
// against the course's current lesson set. A course with no lessons is 0%.
func ProgressPercentage(db *gorm.DB, enr Enrollment) (int, error) {
	total, err := lesson.CountByCourse(db, enr.CourseID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	completed, err := countCompleted(db, enr)
	if err != nil {
		return 0, err
	}

	return int(completed * 100 / total), nil
}

// NextUncompletedLesson returns the first course-ordered lesson not yet
// completed in this enrollment, or nil when every lesson is done.
func NextUncompletedLesson(db *gorm.DB, enr Enrollment) (*lesson.Lesson, error) {
	var next lesson.Lesson
	err := db.Model(&lesson.Lesson{}).
		Where("course_id = ?", enr.CourseID).
		Where("id NOT IN (?)", db.Model(&LessonCompletion{}).
			Select("lesson_id").
			Where("enrollment_id = ? AND completed = ?", enr.ID, true)).
		Order("\"order\" ASC, created_at ASC").
		First(&next).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &next, nil
}

// ListCompletions returns every completion row for an enrollment in course order.
func ListCompletions(db *gorm.DB, enrollmentID uuid.UUID) ([]LessonCompletion, error) {
	var completions []LessonCompletion
	err := db.Model(&LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.enrollment_id = ?", enrollmentID).
		Order("lessons.\"order\" ASC, lessons.created_at ASC").
		Find(&completions).Error
	return completions, err
}

// TouchLastAccessed stamps the enrollment with the current time.
func TouchLastAccessed(db *gorm.DB, enrollmentID uuid.UUID) error {
	return db.Model(&Enrollment{}).
		Where("id = ?", enrollmentID).
		UpdateColumn("last_accessed", time.Now()).Error
}

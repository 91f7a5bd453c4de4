package enrollment

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jobhive/jobhive-server-go/internal/features/course"
	"github.com/jobhive/jobhive-server-go/internal/features/lesson"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// A pooled connection would get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&course.CourseCategory{},
		&course.Course{},
		&lesson.Lesson{},
		&Enrollment{},
		&LessonCompletion{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func seedCourse(t *testing.T, db *gorm.DB, lessonCount int) (course.Course, []lesson.Lesson) {
	t.Helper()

	category := course.CourseCategory{Name: "Backend " + uuid.NewString()}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	crs := course.Course{
		CategoryID:       category.ID,
		Title:            "Go for Backend Engineers",
		Instructor:       "R. Pike",
		Description:      "Servers in Go from scratch.",
		ShortDescription: "Servers in Go.",
		Difficulty:       "beginner",
		Active:           true,
	}
	if err := db.Create(&crs).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	lessons := make([]lesson.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		les := lesson.Lesson{
			CourseID: crs.ID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Order:    i + 1,
		}
		if err := db.Create(&les).Error; err != nil {
			t.Fatalf("seed lesson %d: %v", i+1, err)
		}
		lessons = append(lessons, les)
	}

	return crs, lessons
}

func TestEnrollSeedsCompletions(t *testing.T) {
	db := openTestDB(t)
	crs, _ := seedCourse(t, db, 3)
	userID := uuid.New()

	enr, created, err := Enroll(db, userID, crs.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if !created {
		t.Fatalf("Enroll: expected created=true")
	}

	completions, err := ListCompletions(db, enr.ID)
	if err != nil {
		t.Fatalf("ListCompletions: %v", err)
	}
	if len(completions) != 3 {
		t.Fatalf("ListCompletions: expected 3 rows, got %d", len(completions))
	}
	for _, c := range completions {
		if c.Completed {
			t.Fatalf("completion %s: expected not completed", c.LessonID)
		}
	}

	progress, err := ProgressPercentage(db, enr)
	if err != nil {
		t.Fatalf("ProgressPercentage: %v", err)
	}
	if progress != 0 {
		t.Fatalf("ProgressPercentage: expected 0, got %d", progress)
	}

	refreshed, err := course.Get(db, crs.ID)
	if err != nil {
		t.Fatalf("course.Get: %v", err)
	}
	if refreshed.StudentsCount != 1 {
		t.Fatalf("StudentsCount: expected 1, got %d", refreshed.StudentsCount)
	}
}

func TestEnrollIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	crs, _ := seedCourse(t, db, 2)
	userID := uuid.New()

	first, created, err := Enroll(db, userID, crs.ID)
	if err != nil || !created {
		t.Fatalf("first Enroll: created=%v err=%v", created, err)
	}

	second, created, err := Enroll(db, userID, crs.ID)
	if err != nil {
		t.Fatalf("second Enroll: %v", err)
	}
	if created {
		t.Fatalf("second Enroll: expected created=false")
	}
	if second.ID != first.ID {
		t.Fatalf("second Enroll: expected same enrollment, got %s and %s", first.ID, second.ID)
	}

	var completionCount int64
	if err := db.Model(&LessonCompletion{}).Where("enrollment_id = ?", first.ID).Count(&completionCount).Error; err != nil {
		t.Fatalf("count completions: %v", err)
	}
	if completionCount != 2 {
		t.Fatalf("completions: expected 2, got %d", completionCount)
	}

	refreshed, err := course.Get(db, crs.ID)
	if err != nil {
		t.Fatalf("course.Get: %v", err)
	}
	if refreshed.StudentsCount != 1 {
		t.Fatalf("StudentsCount: expected 1 after repeat enroll, got %d", refreshed.StudentsCount)
	}
}

func TestEnrollUnknownCourse(t *testing.T) {
	db := openTestDB(t)

	_, _, err := Enroll(db, uuid.New(), uuid.New())
	if err != course.ErrCourseNotFound {
		t.Fatalf("Enroll: expected ErrCourseNotFound, got %v", err)
	}
}

func TestMarkLessonCompleteProgress(t *testing.T) {
	db := openTestDB(t)
	crs, lessons := seedCourse(t, db, 3)
	userID := uuid.New()

	enr, _, err := Enroll(db, userID, crs.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	wantProgress := []int{33, 66, 100}
	for i, les := range lessons {
		if _, already, err := MarkLessonComplete(db, enr, les.ID, 10); err != nil || already {
			t.Fatalf("MarkLessonComplete %d: already=%v err=%v", i+1, already, err)
		}

		progress, err := ProgressPercentage(db, enr)
		if err != nil {
			t.Fatalf("ProgressPercentage after %d: %v", i+1, err)
		}
		if progress != wantProgress[i] {
			t.Fatalf("progress after %d lessons: expected %d, got %d", i+1, wantProgress[i], progress)
		}
	}

	next, err := NextUncompletedLesson(db, enr)
	if err != nil {
		t.Fatalf("NextUncompletedLesson: %v", err)
	}
	if next != nil {
		t.Fatalf("NextUncompletedLesson: expected nil after full completion, got %s", next.ID)
	}

	refreshed, err := Get(db, enr.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !refreshed.Completed {
		t.Fatalf("enrollment: expected completed after all lessons")
	}
}

func TestNextUncompletedLessonFollowsOrder(t *testing.T) {
	db := openTestDB(t)
	crs, lessons := seedCourse(t, db, 3)

	enr, _, err := Enroll(db, uuid.New(), crs.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	// Complete the middle lesson; the first lesson stays next in line.
	if _, _, err := MarkLessonComplete(db, enr, lessons[1].ID, 0); err != nil {
		t.Fatalf("MarkLessonComplete: %v", err)
	}

	next, err := NextUncompletedLesson(db, enr)
	if err != nil {
		t.Fatalf("NextUncompletedLesson: %v", err)
	}
	if next == nil || next.ID != lessons[0].ID {
		t.Fatalf("NextUncompletedLesson: expected first lesson, got %+v", next)
	}
}

func TestMarkLessonCompleteTwicePreservesDate(t *testing.T) {
	db := openTestDB(t)
	crs, lessons := seedCourse(t, db, 2)

	enr, _, err := Enroll(db, uuid.New(), crs.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	first, already, err := MarkLessonComplete(db, enr, lessons[0].ID, 15)
	if err != nil || already {
		t.Fatalf("first mark: already=%v err=%v", already, err)
	}
	if first.CompletedDate == nil {
		t.Fatalf("first mark: expected completion date")
	}

	second, already, err := MarkLessonComplete(db, enr, lessons[0].ID, 25)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !already {
		t.Fatalf("second mark: expected already=true")
	}
	if second.CompletedDate == nil || !second.CompletedDate.Equal(*first.CompletedDate) {
		t.Fatalf("second mark: completion date changed from %v to %v", first.CompletedDate, second.CompletedDate)
	}
	if second.TimeSpentMinutes != first.TimeSpentMinutes {
		t.Fatalf("second mark: time spent changed from %d to %d", first.TimeSpentMinutes, second.TimeSpentMinutes)
	}
}

func TestMarkLessonNotInCourse(t *testing.T) {
	db := openTestDB(t)
	crs, _ := seedCourse(t, db, 1)
	other, otherLessons := seedCourse(t, db, 1)

	enr, _, err := Enroll(db, uuid.New(), crs.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if _, _, err := MarkLessonComplete(db, enr, otherLessons[0].ID, 0); err != ErrLessonNotInCourse {
		t.Fatalf("MarkLessonComplete: expected ErrLessonNotInCourse, got %v", err)
	}
	_ = other
}

func TestLessonAddedAfterEnroll(t *testing.T) {
	db := openTestDB(t)
	crs, lessons := seedCourse(t, db, 1)

	enr, _, err := Enroll(db, uuid.New(), crs.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, _, err := MarkLessonComplete(db, enr, lessons[0].ID, 0); err != nil {
		t.Fatalf("MarkLessonComplete: %v", err)
	}

	added := lesson.Lesson{CourseID: crs.ID, Title: "Late addition", Order: 2}
	if err := db.Create(&added).Error; err != nil {
		t.Fatalf("seed late lesson: %v", err)
	}

	// Denominator grows with the course, so progress drops below 100.
	progress, err := ProgressPercentage(db, enr)
	if err != nil {
		t.Fatalf("ProgressPercentage: %v", err)
	}
	if progress != 50 {
		t.Fatalf("progress: expected 50 after new lesson, got %d", progress)
	}

	// No completion row was seeded for the late lesson; marking it creates one.
	completion, already, err := MarkLessonComplete(db, enr, added.ID, 5)
	if err != nil || already {
		t.Fatalf("mark late lesson: already=%v err=%v", already, err)
	}
	if !completion.Completed {
		t.Fatalf("late lesson: expected completed row")
	}

	progress, err = ProgressPercentage(db, enr)
	if err != nil {
		t.Fatalf("ProgressPercentage: %v", err)
	}
	if progress != 100 {
		t.Fatalf("progress: expected 100, got %d", progress)
	}
}

func TestProgressWithNoLessons(t *testing.T) {
	db := openTestDB(t)
	crs, _ := seedCourse(t, db, 0)

	enr, _, err := Enroll(db, uuid.New(), crs.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	progress, err := ProgressPercentage(db, enr)
	if err != nil {
		t.Fatalf("ProgressPercentage: %v", err)
	}
	if progress != 0 {
		t.Fatalf("progress: expected 0 for empty course, got %d", progress)
	}
	if enr.Completed {
		t.Fatalf("enrollment: empty course must not count as completed")
	}
}

package migrations

import "gorm.io/gorm"

func init() {
	// Older rows predate the counter columns kept on courses and quizzes.
	Register("backfill_course_students_count", func(db *gorm.DB) error {
		return db.Exec(`
			UPDATE courses c SET students_count = sub.cnt
			FROM (
				SELECT course_id, COUNT(*) AS cnt
				FROM enrollments
				GROUP BY course_id
			) sub
			WHERE c.id = sub.course_id AND c.students_count <> sub.cnt
		`).Error
	})

	Register("backfill_quiz_attempts_count", func(db *gorm.DB) error {
		return db.Exec(`
			UPDATE quizzes q SET attempts_count = sub.cnt
			FROM (
				SELECT quiz_id, COUNT(*) AS cnt
				FROM quiz_attempts
				WHERE completed_at IS NOT NULL
				GROUP BY quiz_id
			) sub
			WHERE q.id = sub.quiz_id AND q.attempts_count <> sub.cnt
		`).Error
	})
}

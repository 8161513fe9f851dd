package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/db"
	"github.com/yigit/institute/internal/pkg/logger"
)

// ErrEnrollmentNotFound is returned when a student is not enrolled in a course
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// EnrollmentRepository reads and writes StudentCourse rows
type EnrollmentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(database *db.PostgresDB) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: database,
		sb: newStatementBuilder(),
	}
}

// Enroll links a student to a course; it is a no-op when already enrolled.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID int64) error {
	sql, args, err := r.sb.Insert("student_courses").
		Columns("student_id", "course_id").
		Values(studentID, courseID).
		Suffix("ON CONFLICT ON CONSTRAINT student_courses_pkey DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enroll query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error enrolling student %d in course %d: %w", studentID, courseID, err)
	}
	return nil
}

// UpdateEnrollmentScore overwrites the score of (studentID, courseID). It reports
// false when the student has no enrollment row for the course.
func (r *EnrollmentRepository) UpdateEnrollmentScore(ctx context.Context, studentID, courseID int64, score string) (bool, error) {
	sql, args, err := r.sb.Update("student_courses").
		Set("grade", score).
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update enrollment score query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error updating enrollment score")
		return false, fmt.Errorf("error updating enrollment score: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetEnrollment returns the StudentCourse row for (studentID, courseID)
func (r *EnrollmentRepository) GetEnrollment(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select("student_id", "course_id", "grade").
		From("student_courses").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	var e models.Enrollment
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&e.StudentID, &e.CourseID, &e.Score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return &e, nil
}

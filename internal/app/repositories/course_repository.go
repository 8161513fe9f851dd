package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/institute/internal/db"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/logger"
)

// CourseRepository answers course directory lookups
type CourseRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(database *db.PostgresDB) *CourseRepository {
	return &CourseRepository{
		db: database,
		sb: newStatementBuilder(),
	}
}

// ResolveCourseID returns the id of the course with the given name
func (r *CourseRepository) ResolveCourseID(ctx context.Context, name string) (int64, error) {
	sql, args, err := r.sb.Select("id").
		From("courses").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build resolve course query: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn().Str("courseName", name).Msg("Course not found by name")
			return 0, apperrors.ErrCourseNotFound
		}
		return 0, fmt.Errorf("error resolving course %q: %w", name, err)
	}

	return id, nil
}

// CourseExists checks whether a course with the given id exists
func (r *CourseRepository) CourseExists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db.Pool, r.sb.Select("1").From("courses").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return false, fmt.Errorf("error checking course existence: %w", err)
	}
	return found, nil
}

// EnsureCourse returns the id of the named course, creating it when missing.
func (r *CourseRepository) EnsureCourse(ctx context.Context, name string) (int64, error) {
	sql, args, err := r.sb.Insert("courses").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT ON CONSTRAINT courses_name_key DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build ensure course query: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error ensuring course %q: %w", name, err)
	}
	return id, nil
}

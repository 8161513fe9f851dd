package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/institute/internal/db"
)

// StudentRepository answers student directory lookups
type StudentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db: database,
		sb: newStatementBuilder(),
	}
}

// StudentExists checks whether a student with the given id exists
func (r *StudentRepository) StudentExists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db.Pool, r.sb.Select("1").From("students").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return false, fmt.Errorf("error checking student existence: %w", err)
	}
	return found, nil
}

// EnsureStudent returns the id of the student with the given email, creating it when missing.
func (r *StudentRepository) EnsureStudent(ctx context.Context, fullName, email string) (int64, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("full_name", "email").
		Values(fullName, email).
		Suffix("ON CONFLICT ON CONSTRAINT students_email_key DO UPDATE SET full_name = EXCLUDED.full_name RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build ensure student query: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error ensuring student %q: %w", email, err)
	}
	return id, nil
}

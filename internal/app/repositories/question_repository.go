package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/db"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/dberrors"
	"github.com/yigit/institute/internal/pkg/logger"
)

const (
	questionsCanonicalTextKey = "questions_canonical_text_key"
	questionsCourseFKey       = "questions_course_id_fkey"
)

var questionColumns = []string{
	"id", "question_type", "question_text", "canonical_text",
	"correct_answer", "course_id", "created_at", "updated_at",
}

// QuestionRepository handles database operations for the question bank
type QuestionRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(database *db.PostgresDB) *QuestionRepository {
	return &QuestionRepository{
		db: database,
		sb: newStatementBuilder(),
	}
}

// CreateQuestion inserts the question and its options in one transaction and
// fills in q.ID and timestamps.
func (r *QuestionRepository) CreateQuestion(ctx context.Context, q *models.Question, options []string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("questions").
			Columns("question_type", "question_text", "canonical_text", "correct_answer", "course_id").
			Values(int16(q.Type), q.Text, q.CanonicalText, q.CorrectAnswer, q.CourseID).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create question query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return mapQuestionWriteError(err)
		}

		if err := r.insertOptions(ctx, tx, q.ID, options); err != nil {
			return err
		}

		q.Options = options
		return nil
	})
}

// CanonicalTextExists reports whether another question already uses canonical.
// excludeID (0 for none) skips the question being edited.
func (r *QuestionRepository) CanonicalTextExists(ctx context.Context, canonical string, excludeID int64) (bool, error) {
	b := r.sb.Select("1").From("questions").Where(squirrel.Eq{"canonical_text": canonical})
	if excludeID != 0 {
		b = b.Where(squirrel.NotEq{"id": excludeID})
	}

	found, err := exists(ctx, r.db.Pool, b)
	if err != nil {
		return false, fmt.Errorf("error checking canonical text: %w", err)
	}
	return found, nil
}

// GetQuestionByID returns the question with its options
func (r *QuestionRepository) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	sql, args, err := r.sb.Select(questionColumns...).
		From("questions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get question query: %w", err)
	}

	var (
		q     models.Question
		qType int16
	)
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&q.ID, &qType, &q.Text, &q.CanonicalText,
		&q.CorrectAnswer, &q.CourseID, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("error retrieving question %d: %w", id, err)
	}
	q.Type = models.QuestionType(qType)

	options, err := r.listOptions(ctx, r.db.Pool, id)
	if err != nil {
		return nil, err
	}
	q.Options = options

	return &q, nil
}

// UpdateQuestion applies patch to the question. A non-nil patch.Options
// replaces the option set in the same transaction.
func (r *QuestionRepository) UpdateQuestion(ctx context.Context, id int64, patch models.QuestionPatch) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		set := map[string]interface{}{
			"updated_at": squirrel.Expr("CURRENT_TIMESTAMP"),
		}
		if patch.Type != nil {
			set["question_type"] = int16(*patch.Type)
		}
		if patch.Text != nil {
			set["question_text"] = *patch.Text
		}
		if patch.CanonicalText != nil {
			set["canonical_text"] = *patch.CanonicalText
		}
		if patch.CorrectAnswer != nil {
			set["correct_answer"] = *patch.CorrectAnswer
		}
		if patch.CourseID != nil {
			set["course_id"] = *patch.CourseID
		}

		sql, args, err := r.sb.Update("questions").
			SetMap(set).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update question query: %w", err)
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return mapQuestionWriteError(err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrQuestionNotFound
		}

		if patch.Options == nil {
			return nil
		}

		delSQL, delArgs, err := r.sb.Delete("answer_options").
			Where(squirrel.Eq{"question_id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete options query: %w", err)
		}
		if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
			return fmt.Errorf("error deleting options of question %d: %w", id, err)
		}

		return r.insertOptions(ctx, tx, id, patch.Options)
	})
}

// DeleteQuestion removes the question. Options, exam membership and recorded
// answers go with it through ON DELETE CASCADE.
func (r *QuestionRepository) DeleteQuestion(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("questions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete question query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("questionID", id).Msg("Error deleting question")
		return fmt.Errorf("error deleting question %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrQuestionNotFound
	}
	return nil
}

// ListQuestionIDsByType returns the ids of a course's questions of one type
func (r *QuestionRepository) ListQuestionIDsByType(ctx context.Context, courseID int64, qType models.QuestionType) ([]int64, error) {
	sql, args, err := r.sb.Select("id").
		From("questions").
		Where(squirrel.Eq{"course_id": courseID, "question_type": int16(qType)}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list question ids query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s questions of course %d: %w", qType, courseID, err)
	}
	return collectInt64s(rows)
}

// ListExamIDsByQuestion returns the exams whose question set contains questionID
func (r *QuestionRepository) ListExamIDsByQuestion(ctx context.Context, questionID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("exam_id").
		From("exam_questions").
		Where(squirrel.Eq{"question_id": questionID}).
		OrderBy("exam_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list exam ids query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing exams of question %d: %w", questionID, err)
	}
	return collectInt64s(rows)
}

func (r *QuestionRepository) insertOptions(ctx context.Context, q DBTX, questionID int64, options []string) error {
	if len(options) == 0 {
		return nil
	}

	b := r.sb.Insert("answer_options").Columns("question_id", "option_text")
	for _, opt := range options {
		b = b.Values(questionID, opt)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert options query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error inserting options of question %d: %w", questionID, err)
	}
	return nil
}

func (r *QuestionRepository) listOptions(ctx context.Context, q DBTX, questionID int64) ([]string, error) {
	sql, args, err := r.sb.Select("option_text").
		From("answer_options").
		Where(squirrel.Eq{"question_id": questionID}).
		OrderBy("option_text").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list options query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing options of question %d: %w", questionID, err)
	}
	defer rows.Close()

	options := make([]string, 0)
	for rows.Next() {
		var opt string
		if err := rows.Scan(&opt); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func mapQuestionWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, questionsCanonicalTextKey):
		return apperrors.ErrDuplicateQuestion
	case dberrors.IsForeignKeyConstraintError(err, questionsCourseFKey):
		return apperrors.ErrCourseNotFound
	default:
		return fmt.Errorf("error writing question: %w", err)
	}
}

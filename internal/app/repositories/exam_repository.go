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
)

const (
	examsCourseFKey           = "exams_course_id_fkey"
	examQuestionsQuestionFKey = "exam_questions_question_id_fkey"
)

// ExamRepository handles database operations for exams and their question sets
type ExamRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(database *db.PostgresDB) *ExamRepository {
	return &ExamRepository{
		db: database,
		sb: newStatementBuilder(),
	}
}

// CreateExamWithQuestions stores the exam header and its question set atomically.
func (r *ExamRepository) CreateExamWithQuestions(ctx context.Context, courseID int64, questionIDs []int64) (*models.Exam, error) {
	exam := &models.Exam{CourseID: courseID}

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("exams").
			Columns("course_id").
			Values(courseID).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create exam query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&exam.ID, &exam.CreatedAt); err != nil {
			if dberrors.IsForeignKeyConstraintError(err, examsCourseFKey) {
				return apperrors.ErrCourseNotFound
			}
			return fmt.Errorf("error creating exam: %w", err)
		}

		if len(questionIDs) == 0 {
			return nil
		}

		b := r.sb.Insert("exam_questions").Columns("exam_id", "question_id")
		for _, qid := range questionIDs {
			b = b.Values(exam.ID, qid)
		}
		sql, args, err = b.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build exam questions query: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsForeignKeyConstraintError(err, examQuestionsQuestionFKey) {
				return apperrors.ErrQuestionNotFound
			}
			return fmt.Errorf("error storing question set of exam %d: %w", exam.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	exam.QuestionIDs = questionIDs
	return exam, nil
}

// GetExamByID returns the exam header. The question set is not loaded.
func (r *ExamRepository) GetExamByID(ctx context.Context, id int64) (*models.Exam, error) {
	sql, args, err := r.sb.Select("id", "course_id", "created_at").
		From("exams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam query: %w", err)
	}

	var exam models.Exam
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&exam.ID, &exam.CourseID, &exam.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExamNotFound
		}
		return nil, fmt.Errorf("error retrieving exam %d: %w", id, err)
	}

	return &exam, nil
}

// ExamExists checks whether an exam with the given id exists
func (r *ExamRepository) ExamExists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db.Pool, r.sb.Select("1").From("exams").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return false, fmt.Errorf("error checking exam existence: %w", err)
	}
	return found, nil
}

// IsQuestionInExam reports whether questionID belongs to the exam's question set
func (r *ExamRepository) IsQuestionInExam(ctx context.Context, examID, questionID int64) (bool, error) {
	found, err := exists(ctx, r.db.Pool, r.sb.Select("1").
		From("exam_questions").
		Where(squirrel.Eq{"exam_id": examID, "question_id": questionID}))
	if err != nil {
		return false, fmt.Errorf("error checking exam membership: %w", err)
	}
	return found, nil
}

// ListExamItems returns one row per (question, option) pair of the exam.
// TRUE_FALSE questions come first, then by question id, then option text.
func (r *ExamRepository) ListExamItems(ctx context.Context, examID int64) ([]models.ExamItem, error) {
	sql, args, err := r.sb.Select("q.id", "q.question_text", "q.question_type", "ao.option_text").
		From("exam_questions eq").
		Join("questions q ON q.id = eq.question_id").
		Join("answer_options ao ON ao.question_id = q.id").
		Where(squirrel.Eq{"eq.exam_id": examID}).
		OrderBy("q.question_type DESC", "q.id", "ao.option_text").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build exam items query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing items of exam %d: %w", examID, err)
	}
	defer rows.Close()

	items := make([]models.ExamItem, 0)
	for rows.Next() {
		var (
			item  models.ExamItem
			qType int16
		)
		if err := rows.Scan(&item.QuestionID, &item.QuestionText, &qType, &item.AnswerOption); err != nil {
			return nil, fmt.Errorf("error scanning exam item: %w", err)
		}
		item.QuestionType = models.QuestionType(qType)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

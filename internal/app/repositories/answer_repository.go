package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/institute/internal/app/grading"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/db"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/dberrors"
)

const (
	studentAnswersPKey             = "student_answers_pkey"
	studentAnswersExamQuestionFKey = "student_answers_exam_question_fkey"
	studentAnswersStudentFKey      = "student_answers_student_id_fkey"
)

// AnswerRepository handles database operations for recorded answers
type AnswerRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAnswerRepository creates a new AnswerRepository
func NewAnswerRepository(database *db.PostgresDB) *AnswerRepository {
	return &AnswerRepository{
		db: database,
		sb: newStatementBuilder(),
	}
}

// AnswerExists checks whether (studentID, questionID, examID) was already answered
func (r *AnswerRepository) AnswerExists(ctx context.Context, studentID, questionID, examID int64) (bool, error) {
	found, err := exists(ctx, r.db.Pool, r.sb.Select("1").
		From("student_answers").
		Where(squirrel.Eq{"student_id": studentID, "question_id": questionID, "exam_id": examID}))
	if err != nil {
		return false, fmt.Errorf("error checking answer existence: %w", err)
	}
	return found, nil
}

// CreateGradedAnswer reads the correct answer, grades ans with grade and inserts
// it in one transaction. The membership row is share-locked until commit so the
// question cannot leave the exam between grading and insert.
func (r *AnswerRepository) CreateGradedAnswer(ctx context.Context, ans *models.StudentAnswer, grade grading.Func) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Select("q.correct_answer").
			From("exam_questions eq").
			Join("questions q ON q.id = eq.question_id").
			Where(squirrel.Eq{"eq.exam_id": ans.ExamID, "eq.question_id": ans.QuestionID}).
			Suffix("FOR SHARE OF eq").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build correct answer query: %w", err)
		}

		var correctAnswer string
		if err := tx.QueryRow(ctx, sql, args...).Scan(&correctAnswer); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrQuestionNotInExam
			}
			return fmt.Errorf("error reading correct answer: %w", err)
		}

		isCorrect := grade(ans.AnswerText, correctAnswer)

		sql, args, err = r.sb.Insert("student_answers").
			Columns("student_id", "question_id", "exam_id", "answer_text", "is_correct").
			Values(ans.StudentID, ans.QuestionID, ans.ExamID, ans.AnswerText, isCorrect).
			Suffix("RETURNING answered_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert answer query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&ans.AnsweredAt); err != nil {
			return mapAnswerWriteError(err)
		}

		ans.IsCorrect = &isCorrect
		return nil
	})
}

// GetAnswerStats aggregates the graded answers of one student in one exam
func (r *AnswerRepository) GetAnswerStats(ctx context.Context, studentID, examID int64) (models.AnswerStats, error) {
	var stats models.AnswerStats

	sql, args, err := r.sb.Select(
		"COUNT(*) FILTER (WHERE is_correct)",
		"COUNT(*) FILTER (WHERE NOT is_correct)",
		"COUNT(DISTINCT question_id)",
	).
		From("student_answers").
		Where(squirrel.Eq{"student_id": studentID, "exam_id": examID}).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build answer stats query: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&stats.Correct, &stats.Wrong, &stats.Answered); err != nil {
		return stats, fmt.Errorf("error computing answer stats: %w", err)
	}
	return stats, nil
}

func mapAnswerWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, studentAnswersPKey):
		return apperrors.ErrDuplicateAnswer
	case dberrors.IsForeignKeyConstraintError(err, studentAnswersExamQuestionFKey):
		return apperrors.ErrQuestionNotInExam
	case dberrors.IsForeignKeyConstraintError(err, studentAnswersStudentFKey):
		return apperrors.ErrStudentNotFound
	default:
		return fmt.Errorf("error recording answer: %w", err)
	}
}

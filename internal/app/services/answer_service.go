package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yigit/institute/internal/app/grading"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/monitoring"
	"github.com/yigit/institute/internal/pkg/tracing"
)

// AnswerService defines the interface for recording student answers
type AnswerService interface {
	RecordAnswer(ctx context.Context, studentID, examID int64, req *dto.RecordAnswerRequest) (*dto.RecordAnswerResponse, error)
}

// answerServiceImpl implements AnswerService
type answerServiceImpl struct {
	answers  AnswerStore
	exams    ExamStore
	students StudentDirectory
	grade    grading.Func
	logger   zerolog.Logger
}

// NewAnswerService creates a new AnswerService. A nil grade uses grading.ExactMatch.
func NewAnswerService(
	answers AnswerStore,
	exams ExamStore,
	students StudentDirectory,
	grade grading.Func,
	logger zerolog.Logger,
) AnswerService {
	if grade == nil {
		grade = grading.ExactMatch
	}
	return &answerServiceImpl{
		answers:  answers,
		exams:    exams,
		students: students,
		grade:    grade,
		logger:   logger,
	}
}

// RecordAnswer validates, grades and stores one answer. Checks run in order and
// stop at the first failure: student, exam, exam membership, duplicate. The
// first recorded answer for a (student, question, exam) stands.
func (s *answerServiceImpl) RecordAnswer(ctx context.Context, studentID, examID int64, req *dto.RecordAnswerRequest) (resp *dto.RecordAnswerResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "AnswerService.RecordAnswer",
		attribute.Int64("student.id", studentID),
		attribute.Int64("exam.id", examID),
		attribute.Int64("question.id", req.QuestionID),
	)
	defer func() {
		monitoring.AnswersRecorded.WithLabelValues(answerOutcome(err)).Inc()
		tracing.EndSpan(span, err)
	}()

	if err := s.precheck(ctx, studentID, examID, req.QuestionID); err != nil {
		return nil, err
	}

	if req.AnswerText == "" {
		return nil, apperrors.NewValidationError("answer text is required")
	}

	ans := &models.StudentAnswer{
		StudentID:  studentID,
		QuestionID: req.QuestionID,
		ExamID:     examID,
		AnswerText: req.AnswerText,
	}
	if err := s.answers.CreateGradedAnswer(ctx, ans, s.grade); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("studentId", studentID).
		Int64("examId", examID).
		Int64("questionId", req.QuestionID).
		Msg("Answer recorded")

	return &dto.RecordAnswerResponse{
		StudentID:  ans.StudentID,
		ExamID:     ans.ExamID,
		QuestionID: ans.QuestionID,
		AnsweredAt: ans.AnsweredAt,
	}, nil
}

// precheck gives early, ordered failures. The storage constraints remain the
// authoritative guards for membership and uniqueness.
func (s *answerServiceImpl) precheck(ctx context.Context, studentID, examID, questionID int64) error {
	found, err := s.students.StudentExists(ctx, studentID)
	if err != nil {
		return fmt.Errorf("error checking student: %w", err)
	}
	if !found {
		return apperrors.ErrStudentNotFound
	}

	found, err = s.exams.ExamExists(ctx, examID)
	if err != nil {
		return fmt.Errorf("error checking exam: %w", err)
	}
	if !found {
		return apperrors.ErrExamNotFound
	}

	inExam, err := s.exams.IsQuestionInExam(ctx, examID, questionID)
	if err != nil {
		return fmt.Errorf("error checking exam membership: %w", err)
	}
	if !inExam {
		return apperrors.ErrQuestionNotInExam
	}

	answered, err := s.answers.AnswerExists(ctx, studentID, questionID, examID)
	if err != nil {
		return fmt.Errorf("error checking previous answer: %w", err)
	}
	if answered {
		return apperrors.ErrDuplicateAnswer
	}

	return nil
}

func answerOutcome(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeRecorded
	case errors.Is(err, apperrors.ErrDuplicateAnswer):
		return monitoring.OutcomeDuplicate
	case errors.Is(err, apperrors.ErrQuestionNotInExam):
		return monitoring.OutcomeNotInExam
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return monitoring.OutcomeStudentNotFound
	case errors.Is(err, apperrors.ErrExamNotFound):
		return monitoring.OutcomeExamNotFound
	default:
		return monitoring.OutcomeError
	}
}

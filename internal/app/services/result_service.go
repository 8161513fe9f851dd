package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/monitoring"
	"github.com/yigit/institute/internal/pkg/tracing"
)

// ResultService defines the interface for computing exam results
type ResultService interface {
	ComputeResults(ctx context.Context, studentID, examID int64) (*dto.ExamResultResponse, error)
}

// resultServiceImpl implements ResultService
type resultServiceImpl struct {
	answers     AnswerStore
	exams       ExamStore
	students    StudentDirectory
	enrollments EnrollmentStore
	logger      zerolog.Logger
}

// NewResultService creates a new ResultService
func NewResultService(
	answers AnswerStore,
	exams ExamStore,
	students StudentDirectory,
	enrollments EnrollmentStore,
	logger zerolog.Logger,
) ResultService {
	return &resultServiceImpl{
		answers:     answers,
		exams:       exams,
		students:    students,
		enrollments: enrollments,
		logger:      logger,
	}
}

// ScorePercent is floor(correct*100/answered), or 0 when nothing was answered
func ScorePercent(stats models.AnswerStats) int {
	if stats.Answered == 0 {
		return 0
	}
	return stats.Correct * 100 / stats.Answered
}

// FormatScore renders the enrollment score, e.g. "60 %"
func FormatScore(percent int) string {
	return fmt.Sprintf("%d %%", percent)
}

// ComputeResults derives the student's statistics from the recorded answers and
// overwrites the enrollment score for the exam's course. Repeating the call with
// no new answers writes the same value.
func (s *resultServiceImpl) ComputeResults(ctx context.Context, studentID, examID int64) (resp *dto.ExamResultResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "ResultService.ComputeResults",
		attribute.Int64("student.id", studentID),
		attribute.Int64("exam.id", examID),
	)
	defer func() { tracing.EndSpan(span, err) }()

	found, err := s.students.StudentExists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error checking student: %w", err)
	}
	if !found {
		return nil, apperrors.ErrStudentNotFound
	}

	exam, err := s.exams.GetExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	stats, err := s.answers.GetAnswerStats(ctx, studentID, examID)
	if err != nil {
		return nil, err
	}

	percent := ScorePercent(stats)
	score := FormatScore(percent)

	updated, err := s.enrollments.UpdateEnrollmentScore(ctx, studentID, exam.CourseID, score)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.logger.Warn().
			Int64("studentId", studentID).
			Int64("courseId", exam.CourseID).
			Msg("Student is not enrolled in the exam's course, score not stored")
	}
	monitoring.ExamResultsComputed.Inc()

	return &dto.ExamResultResponse{
		StudentID:         studentID,
		ExamID:            examID,
		CourseID:          exam.CourseID,
		Correct:           stats.Correct,
		Wrong:             stats.Wrong,
		Answered:          stats.Answered,
		ScorePercent:      percent,
		Score:             score,
		EnrollmentUpdated: updated,
	}, nil
}

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yigit/institute/internal/app/cache"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/monitoring"
	"github.com/yigit/institute/internal/pkg/tracing"
)

// ExamComposition sets how many questions of each type an exam samples
type ExamComposition struct {
	MultipleChoiceCount int
	TrueFalseCount      int
}

// ExamService defines the interface for composing and presenting exams
type ExamService interface {
	ComposeExam(ctx context.Context, courseID int64) (*dto.ComposeExamResponse, error)
	PresentExam(ctx context.Context, examID int64) (*dto.PresentExamResponse, error)
}

// examServiceImpl implements ExamService
type examServiceImpl struct {
	exams       ExamStore
	questions   QuestionStore
	courses     CourseDirectory
	examCache   cache.ExamCache
	composition ExamComposition
	intn        func(int) int
	logger      zerolog.Logger
}

// NewExamService creates a new ExamService
func NewExamService(
	exams ExamStore,
	questions QuestionStore,
	courses CourseDirectory,
	examCache cache.ExamCache,
	composition ExamComposition,
	logger zerolog.Logger,
) ExamService {
	if examCache == nil {
		examCache = cache.NewNoopExamCache()
	}
	return &examServiceImpl{
		exams:       exams,
		questions:   questions,
		courses:     courses,
		examCache:   examCache,
		composition: composition,
		intn:        defaultIntN,
		logger:      logger,
	}
}

// ComposeExam creates an exam for the course with a freshly sampled question set.
// A course with fewer candidates than configured contributes all of them.
func (s *examServiceImpl) ComposeExam(ctx context.Context, courseID int64) (resp *dto.ComposeExamResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "ExamService.ComposeExam", attribute.Int64("course.id", courseID))
	defer func() { tracing.EndSpan(span, err) }()

	found, err := s.courses.CourseExists(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error checking course: %w", err)
	}
	if !found {
		return nil, apperrors.ErrCourseNotFound
	}

	mcIDs, err := s.questions.ListQuestionIDsByType(ctx, courseID, models.QuestionTypeMultipleChoice)
	if err != nil {
		return nil, err
	}
	tfIDs, err := s.questions.ListQuestionIDsByType(ctx, courseID, models.QuestionTypeTrueFalse)
	if err != nil {
		return nil, err
	}

	chosen := sampleIDs(mcIDs, s.composition.MultipleChoiceCount, s.intn)
	chosen = append(chosen, sampleIDs(tfIDs, s.composition.TrueFalseCount, s.intn)...)

	exam, err := s.exams.CreateExamWithQuestions(ctx, courseID, chosen)
	if err != nil {
		return nil, err
	}
	monitoring.ExamsComposed.Inc()

	s.logger.Info().
		Int64("examId", exam.ID).
		Int64("courseId", courseID).
		Int("multipleChoiceCandidates", len(mcIDs)).
		Int("trueFalseCandidates", len(tfIDs)).
		Int("questions", len(chosen)).
		Msg("Exam composed")

	return &dto.ComposeExamResponse{
		ExamID:        exam.ID,
		CourseID:      exam.CourseID,
		QuestionIDs:   chosen,
		QuestionCount: len(chosen),
		CreatedAt:     exam.CreatedAt,
	}, nil
}

// PresentExam returns the exam's (question, option) rows without correct answers.
func (s *examServiceImpl) PresentExam(ctx context.Context, examID int64) (*dto.PresentExamResponse, error) {
	lookup, cacheErr := s.examCache.Get(ctx, examID)
	if cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Int64("examId", examID).Msg("Exam cache read failed, using database")
	}
	if lookup.Hit {
		monitoring.ExamCacheLookups.WithLabelValues("hit").Inc()
		return toPresentExamResponse(examID, lookup.Items), nil
	}
	monitoring.ExamCacheLookups.WithLabelValues("miss").Inc()

	found, err := s.exams.ExamExists(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error checking exam: %w", err)
	}
	if !found {
		return nil, apperrors.ErrExamNotFound
	}

	items, err := s.exams.ListExamItems(ctx, examID)
	if err != nil {
		return nil, err
	}

	// Without a generation from the read there is nothing safe to store against.
	if cacheErr == nil {
		stored, err := s.examCache.Set(ctx, examID, lookup.Generation, items)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Int64("examId", examID).Msg("Failed to cache presented exam")
		case !stored:
			s.logger.Debug().Int64("examId", examID).Msg("Exam changed while loading, not cached")
		}
	}

	return toPresentExamResponse(examID, items), nil
}

func toPresentExamResponse(examID int64, items []models.ExamItem) *dto.PresentExamResponse {
	resp := &dto.PresentExamResponse{
		ExamID: examID,
		Items:  make([]dto.ExamItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.ExamItemResponse{
			QuestionID:   item.QuestionID,
			QuestionText: item.QuestionText,
			QuestionType: item.QuestionType.String(),
			AnswerOption: item.AnswerOption,
		})
	}
	return resp
}

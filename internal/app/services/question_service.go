package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/institute/internal/app/cache"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/helpers"
)

// QuestionService defines the interface for question bank operations
type QuestionService interface {
	AddQuestion(ctx context.Context, req *dto.CreateQuestionRequest) (*dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id int64) (*dto.QuestionResponse, error)
	EditQuestion(ctx context.Context, id int64, req *dto.UpdateQuestionRequest) (*dto.QuestionResponse, error)
	RemoveQuestion(ctx context.Context, id int64) error
}

// questionServiceImpl implements QuestionService
type questionServiceImpl struct {
	questions       QuestionStore
	courses         CourseDirectory
	examCache       cache.ExamCache
	optionDelimiter string
	logger          zerolog.Logger
}

// NewQuestionService creates a new QuestionService
func NewQuestionService(
	questions QuestionStore,
	courses CourseDirectory,
	examCache cache.ExamCache,
	optionDelimiter string,
	logger zerolog.Logger,
) QuestionService {
	if examCache == nil {
		examCache = cache.NewNoopExamCache()
	}
	return &questionServiceImpl{
		questions:       questions,
		courses:         courses,
		examCache:       examCache,
		optionDelimiter: optionDelimiter,
		logger:          logger,
	}
}

// AddQuestion validates and stores a new question with its option set
func (s *questionServiceImpl) AddQuestion(ctx context.Context, req *dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	qType, ok := models.ParseQuestionType(req.Type)
	if !ok {
		return nil, apperrors.ErrInvalidQuestionType
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.NewValidationError("question text is required")
	}
	correct := strings.TrimSpace(req.CorrectAnswer)
	if correct == "" {
		return nil, apperrors.NewValidationError("correct answer is required")
	}

	options := helpers.SplitList(req.AnswerOptions, s.optionDelimiter)
	if len(options) == 0 {
		return nil, apperrors.ErrInvalidAnswerOptions
	}

	canonical := helpers.CanonicalText(text)
	taken, err := s.questions.CanonicalTextExists(ctx, canonical, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking duplicate question: %w", err)
	}
	if taken {
		return nil, apperrors.ErrDuplicateQuestion
	}

	courseID, err := s.courses.ResolveCourseID(ctx, strings.TrimSpace(req.CourseName))
	if err != nil {
		return nil, err
	}

	q := &models.Question{
		Type:          qType,
		Text:          text,
		CanonicalText: canonical,
		CorrectAnswer: correct,
		CourseID:      courseID,
	}
	if err := s.questions.CreateQuestion(ctx, q, options); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("questionId", q.ID).
		Int64("courseId", courseID).
		Str("type", qType.String()).
		Int("options", len(options)).
		Msg("Question added")

	return toQuestionResponse(q), nil
}

// GetQuestion returns the instructor view of a question
func (s *questionServiceImpl) GetQuestion(ctx context.Context, id int64) (*dto.QuestionResponse, error) {
	q, err := s.questions.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toQuestionResponse(q), nil
}

// EditQuestion applies a partial update; supplied options replace the whole set
func (s *questionServiceImpl) EditQuestion(ctx context.Context, id int64, req *dto.UpdateQuestionRequest) (*dto.QuestionResponse, error) {
	current, err := s.questions.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := s.buildPatch(ctx, current, req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return toQuestionResponse(current), nil
	}

	if err := s.questions.UpdateQuestion(ctx, id, patch); err != nil {
		return nil, err
	}
	s.invalidateExams(ctx, id)

	updated, err := s.questions.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("questionId", id).Bool("optionsReplaced", patch.Options != nil).Msg("Question edited")
	return toQuestionResponse(updated), nil
}

func (s *questionServiceImpl) buildPatch(ctx context.Context, current *models.Question, req *dto.UpdateQuestionRequest) (models.QuestionPatch, error) {
	var patch models.QuestionPatch
	id := current.ID

	if req.Type != nil {
		qType, ok := models.ParseQuestionType(*req.Type)
		if !ok {
			return patch, apperrors.ErrInvalidQuestionType
		}
		patch.Type = &qType
	}

	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return patch, apperrors.NewValidationError("question text cannot be empty")
		}
		canonical := helpers.CanonicalText(text)
		taken, err := s.questions.CanonicalTextExists(ctx, canonical, id)
		if err != nil {
			return patch, fmt.Errorf("error checking duplicate question: %w", err)
		}
		if taken {
			return patch, apperrors.ErrDuplicateQuestion
		}
		patch.Text = &text
		patch.CanonicalText = &canonical
	}

	if req.CorrectAnswer != nil {
		correct := strings.TrimSpace(*req.CorrectAnswer)
		if correct == "" {
			return patch, apperrors.NewValidationError("correct answer cannot be empty")
		}
		patch.CorrectAnswer = &correct
	}

	if req.CourseName != nil {
		courseID, err := s.courses.ResolveCourseID(ctx, strings.TrimSpace(*req.CourseName))
		if err != nil {
			return patch, err
		}
		if courseID != current.CourseID {
			// Exam question sets are bound to the exam's course.
			examIDs, err := s.questions.ListExamIDsByQuestion(ctx, id)
			if err != nil {
				return patch, fmt.Errorf("error listing exams of question: %w", err)
			}
			if len(examIDs) > 0 {
				return patch, apperrors.ErrQuestionInUse
			}
			patch.CourseID = &courseID
		}
	}

	if req.AnswerOptions != nil {
		options := helpers.SplitList(*req.AnswerOptions, s.optionDelimiter)
		if len(options) == 0 {
			return patch, apperrors.ErrInvalidAnswerOptions
		}
		patch.Options = options
	}

	return patch, nil
}

// RemoveQuestion deletes the question; storage cascades to its options, exam
// memberships and recorded answers.
func (s *questionServiceImpl) RemoveQuestion(ctx context.Context, id int64) error {
	// Membership is gone after the cascade, so collect affected exams first.
	examIDs, err := s.questions.ListExamIDsByQuestion(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("questionId", id).Msg("Could not list exams of question before removal")
	}

	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		return err
	}

	if len(examIDs) > 0 {
		if err := s.examCache.Invalidate(ctx, examIDs...); err != nil {
			s.logger.Warn().Err(err).Int64("questionId", id).Msg("Failed to invalidate cached exams")
		}
	}

	s.logger.Info().Int64("questionId", id).Int("exams", len(examIDs)).Msg("Question removed")
	return nil
}

func (s *questionServiceImpl) invalidateExams(ctx context.Context, questionID int64) {
	examIDs, err := s.questions.ListExamIDsByQuestion(ctx, questionID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("questionId", questionID).Msg("Could not list exams of edited question")
		return
	}
	if err := s.examCache.Invalidate(ctx, examIDs...); err != nil {
		s.logger.Warn().Err(err).Int64("questionId", questionID).Msg("Failed to invalidate cached exams")
	}
}

func toQuestionResponse(q *models.Question) *dto.QuestionResponse {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	return &dto.QuestionResponse{
		ID:            q.ID,
		Type:          q.Type.String(),
		Text:          q.Text,
		CorrectAnswer: q.CorrectAnswer,
		CourseID:      q.CourseID,
		Options:       options,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

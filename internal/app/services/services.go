package services

import (
	"context"

	"github.com/yigit/institute/internal/app/grading"
	"github.com/yigit/institute/internal/app/models"
)

// Services defined in this package:
// - QuestionService: question bank authoring (add, view, edit, remove)
// - ExamService: composing and presenting exams
// - AnswerService: recording student answers
// - ResultService: computing exam results and the enrollment score
//
// Each service depends on the narrow store interfaces below; the concrete
// implementations live in the repositories package.

// CourseDirectory resolves courses owned by the directory subsystem
type CourseDirectory interface {
	ResolveCourseID(ctx context.Context, name string) (int64, error)
	CourseExists(ctx context.Context, id int64) (bool, error)
}

// StudentDirectory answers student lookups
type StudentDirectory interface {
	StudentExists(ctx context.Context, id int64) (bool, error)
}

// EnrollmentStore writes the derived score of a StudentCourse row
type EnrollmentStore interface {
	UpdateEnrollmentScore(ctx context.Context, studentID, courseID int64, score string) (bool, error)
}

// QuestionStore persists the question bank
type QuestionStore interface {
	CreateQuestion(ctx context.Context, q *models.Question, options []string) error
	CanonicalTextExists(ctx context.Context, canonical string, excludeID int64) (bool, error)
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id int64, patch models.QuestionPatch) error
	DeleteQuestion(ctx context.Context, id int64) error
	ListQuestionIDsByType(ctx context.Context, courseID int64, qType models.QuestionType) ([]int64, error)
	ListExamIDsByQuestion(ctx context.Context, questionID int64) ([]int64, error)
}

// ExamStore persists exams and their question sets
type ExamStore interface {
	CreateExamWithQuestions(ctx context.Context, courseID int64, questionIDs []int64) (*models.Exam, error)
	GetExamByID(ctx context.Context, id int64) (*models.Exam, error)
	ExamExists(ctx context.Context, id int64) (bool, error)
	IsQuestionInExam(ctx context.Context, examID, questionID int64) (bool, error)
	ListExamItems(ctx context.Context, examID int64) ([]models.ExamItem, error)
}

// AnswerStore persists graded answers
type AnswerStore interface {
	AnswerExists(ctx context.Context, studentID, questionID, examID int64) (bool, error)
	CreateGradedAnswer(ctx context.Context, ans *models.StudentAnswer, grade grading.Func) error
	GetAnswerStats(ctx context.Context, studentID, examID int64) (models.AnswerStats, error)
}

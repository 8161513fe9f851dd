package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/app/repositories"
	"github.com/yigit/institute/internal/app/services"
	"github.com/yigit/institute/internal/pkg/apperrors"
	"github.com/yigit/institute/internal/pkg/auth"
)

// Directory is the slice of the course/student directory the seed writes to
type Directory interface {
	EnsureCourse(ctx context.Context, name string) (int64, error)
	EnsureStudent(ctx context.Context, fullName, email string) (int64, error)
	Enroll(ctx context.Context, studentID, courseID int64) error
}

type repositoryDirectory struct {
	*repositories.CourseRepository
	*repositories.StudentRepository
	*repositories.EnrollmentRepository
}

// NewRepositoryDirectory backs Directory with the Postgres repositories
func NewRepositoryDirectory(repos *repositories.Repositories) Directory {
	return repositoryDirectory{
		CourseRepository:     repos.CourseRepository,
		StudentRepository:    repos.StudentRepository,
		EnrollmentRepository: repos.EnrollmentRepository,
	}
}

// DemoCourse is the course every seeded student is enrolled in
const DemoCourse = "Geography 101"

// demoInstructorID is the user id carried by the demo instructor token. Instructors
// live outside this service, so no row backs it.
const demoInstructorID = 1

type demoStudent struct {
	fullName string
	email    string
}

var demoStudents = []demoStudent{
	{"Ada Lovelace", "ada@institute.test"},
	{"Alan Turing", "alan@institute.test"},
}

var demoQuestions = []dto.CreateQuestionRequest{
	{Type: "MULTIPLE_CHOICE", Text: "What is the capital of France?", CorrectAnswer: "Paris", AnswerOptions: "Paris,Rome,Berlin,Madrid"},
	{Type: "MULTIPLE_CHOICE", Text: "Which is the longest river in the world?", CorrectAnswer: "Nile", AnswerOptions: "Nile,Amazon,Yangtze,Danube"},
	{Type: "MULTIPLE_CHOICE", Text: "Which continent is Kenya in?", CorrectAnswer: "Africa", AnswerOptions: "Africa,Asia,Europe,South America"},
	{Type: "MULTIPLE_CHOICE", Text: "What is the largest ocean?", CorrectAnswer: "Pacific", AnswerOptions: "Pacific,Atlantic,Indian,Arctic"},
	{Type: "TRUE_FALSE", Text: "Mount Everest is the highest mountain above sea level.", CorrectAnswer: "True", AnswerOptions: "True,False"},
	{Type: "TRUE_FALSE", Text: "The Sahara is the largest desert in Europe.", CorrectAnswer: "False", AnswerOptions: "True,False"},
}

// CreateDefaultData ensures the demo course, students, enrollments and question
// bank exist. Questions already in the bank are skipped, so it can run on every
// start. Failures are collected and returned together.
func CreateDefaultData(
	ctx context.Context,
	directory Directory,
	questionService services.QuestionService,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (course, students, question bank)...")
	var finalErr error

	courseID, err := directory.EnsureCourse(ctx, DemoCourse)
	if err != nil {
		lgr.Error().Err(err).Str("course", DemoCourse).Msg("Error creating demo course")
		return fmt.Errorf("seed course: %w", err)
	}

	for _, s := range demoStudents {
		studentID, err := directory.EnsureStudent(ctx, s.fullName, s.email)
		if err != nil {
			lgr.Error().Err(err).Str("email", s.email).Msg("Error creating demo student")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := directory.Enroll(ctx, studentID, courseID); err != nil {
			lgr.Error().Err(err).Int64("studentId", studentID).Msg("Error enrolling demo student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	created, skipped := 0, 0
	for _, q := range demoQuestions {
		req := q
		req.CourseName = DemoCourse
		_, err := questionService.AddQuestion(ctx, &req)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrDuplicateQuestion):
			skipped++
		default:
			lgr.Error().Err(err).Str("text", q.Text).Msg("Error creating demo question")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().
		Int64("courseId", courseID).
		Int("questionsCreated", created).
		Int("questionsSkipped", skipped).
		Msg("Default data check/creation finished.")
	return finalErr
}

// LogDemoTokens issues and logs access tokens for the demo instructor and
// students. Only meant for development setups.
func LogDemoTokens(ctx context.Context, directory Directory, jwtService *auth.JWTService, lgr zerolog.Logger) error {
	tok, _, err := jwtService.GenerateAccessToken(demoInstructorID, "instructor@institute.test", models.RoleInstructor)
	if err != nil {
		return err
	}
	lgr.Info().Int64("userId", demoInstructorID).Str("role", string(models.RoleInstructor)).Str("token", tok).Msg("Demo token")

	for _, s := range demoStudents {
		studentID, err := directory.EnsureStudent(ctx, s.fullName, s.email)
		if err != nil {
			return err
		}
		tok, _, err := jwtService.GenerateAccessToken(studentID, s.email, models.RoleStudent)
		if err != nil {
			return err
		}
		lgr.Info().Int64("userId", studentID).Str("role", string(models.RoleStudent)).Str("token", tok).Msg("Demo token")
	}
	return nil
}

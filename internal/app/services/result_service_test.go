package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/pkg/apperrors"
)

// newResultFixture builds a 20 question exam (id 42, course 1) where student 7
// answers five questions: three correctly, two wrongly.
func newResultFixture(t *testing.T) (*memStore, ResultService) {
	t.Helper()
	store := newMemStore()
	store.addCourse(1, "Geography 101")
	store.addStudent(7, 1)
	store.addStudent(8)

	ids := make([]int64, 0, 20)
	for id := int64(1); id <= 20; id++ {
		store.seedQuestion(id, 1, models.QuestionTypeTrueFalse, fmt.Sprintf("q%d", id), "True", "True", "False")
		ids = append(ids, id)
	}
	store.seedExam(42, 1, ids...)

	answers := NewAnswerService(store, store, store, nil, zerolog.Nop())
	for i, text := range []string{"True", "True", "True", "False", "False"} {
		_, err := answers.RecordAnswer(context.Background(), 7, 42, &dto.RecordAnswerRequest{
			QuestionID: int64(i + 1),
			AnswerText: text,
		})
		require.NoError(t, err)
	}

	return store, NewResultService(store, store, store, store, zerolog.Nop())
}

func TestComputeResults(t *testing.T) {
	store, svc := newResultFixture(t)

	resp, err := svc.ComputeResults(context.Background(), 7, 42)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Correct)
	assert.Equal(t, 2, resp.Wrong)
	assert.Equal(t, 5, resp.Answered, "answered counts the student's answers, not the exam size")
	assert.Equal(t, 60, resp.ScorePercent)
	assert.Equal(t, "60 %", resp.Score)
	assert.Equal(t, int64(1), resp.CourseID)
	assert.True(t, resp.EnrollmentUpdated)

	score := store.score(7, 1)
	require.NotNil(t, score)
	assert.Equal(t, "60 %", *score)
}

func TestComputeResultsIsIdempotent(t *testing.T) {
	store, svc := newResultFixture(t)
	ctx := context.Background()

	first, err := svc.ComputeResults(ctx, 7, 42)
	require.NoError(t, err)
	second, err := svc.ComputeResults(ctx, 7, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, store.scoreWrites)
	assert.Equal(t, "60 %", *store.score(7, 1))
}

func TestComputeResultsOverwritesPriorScore(t *testing.T) {
	store, svc := newResultFixture(t)
	prior := "100 %"
	store.enrollments[enrollmentKey{7, 1}] = &prior

	_, err := svc.ComputeResults(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, "60 %", *store.score(7, 1))
}

func TestComputeResultsNoAnswers(t *testing.T) {
	store, svc := newResultFixture(t)
	store.enrollments[enrollmentKey{8, 1}] = nil

	resp, err := svc.ComputeResults(context.Background(), 8, 42)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Answered)
	assert.Equal(t, 0, resp.ScorePercent)
	assert.Equal(t, "0 %", *store.score(8, 1))
}

func TestComputeResultsWithoutEnrollment(t *testing.T) {
	_, svc := newResultFixture(t)

	resp, err := svc.ComputeResults(context.Background(), 8, 42)
	require.NoError(t, err)
	assert.False(t, resp.EnrollmentUpdated)
	assert.Equal(t, "0 %", resp.Score)
}

func TestComputeResultsNotFound(t *testing.T) {
	_, svc := newResultFixture(t)

	_, err := svc.ComputeResults(context.Background(), 99, 42)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = svc.ComputeResults(context.Background(), 7, 404)
	assert.ErrorIs(t, err, apperrors.ErrExamNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestScorePercent(t *testing.T) {
	tests := []struct {
		stats models.AnswerStats
		want  int
	}{
		{models.AnswerStats{Correct: 3, Wrong: 2, Answered: 5}, 60},
		{models.AnswerStats{Correct: 2, Wrong: 1, Answered: 3}, 66},
		{models.AnswerStats{Correct: 1, Wrong: 2, Answered: 3}, 33},
		{models.AnswerStats{Correct: 5, Answered: 5}, 100},
		{models.AnswerStats{}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScorePercent(tt.stats), "%+v", tt.stats)
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "60 %", FormatScore(60))
	assert.Equal(t, "0 %", FormatScore(0))
	assert.Equal(t, "100 %", FormatScore(100))
}

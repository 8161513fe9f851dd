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

var defaultComposition = ExamComposition{MultipleChoiceCount: 15, TrueFalseCount: 5}

// seedBank adds mc MULTIPLE_CHOICE and tf TRUE_FALSE questions to courseID,
// numbering them from firstID.
func seedBank(store *memStore, courseID, firstID int64, mc, tf int) {
	id := firstID
	for i := 0; i < mc; i++ {
		store.seedQuestion(id, courseID, models.QuestionTypeMultipleChoice, fmt.Sprintf("mc-%d", id), "A", "A", "B", "C")
		id++
	}
	for i := 0; i < tf; i++ {
		store.seedQuestion(id, courseID, models.QuestionTypeTrueFalse, fmt.Sprintf("tf-%d", id), "True", "True", "False")
		id++
	}
}

func newExamFixture(composition ExamComposition) (*memStore, *fakeCache, ExamService) {
	store := newMemStore()
	store.addCourse(1, "Geography 101")
	store.addCourse(2, "History 101")
	c := newFakeCache()
	return store, c, NewExamService(store, store, store, c, composition, zerolog.Nop())
}

func TestComposeExamSamplesTwentyDistinctQuestions(t *testing.T) {
	store, _, svc := newExamFixture(defaultComposition)
	seedBank(store, 1, 1, 30, 10)
	seedBank(store, 2, 100, 30, 10)

	resp, err := svc.ComposeExam(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, resp.QuestionIDs, 20)
	assert.Equal(t, 20, resp.QuestionCount)

	seen := make(map[int64]bool)
	var mc, tf int
	for _, id := range resp.QuestionIDs {
		assert.False(t, seen[id], "question %d sampled twice", id)
		seen[id] = true

		q := store.questions[id]
		require.NotNil(t, q)
		assert.Equal(t, int64(1), q.CourseID, "question %d belongs to another course", id)
		if q.Type == models.QuestionTypeMultipleChoice {
			mc++
		} else {
			tf++
		}
	}
	assert.Equal(t, 15, mc)
	assert.Equal(t, 5, tf)

	for _, id := range resp.QuestionIDs {
		in, err := store.IsQuestionInExam(context.Background(), resp.ExamID, id)
		require.NoError(t, err)
		assert.True(t, in, "question %d missing from stored set", id)
	}
}

func TestComposeExamTakesAllWhenBankIsSmall(t *testing.T) {
	store, _, svc := newExamFixture(defaultComposition)
	seedBank(store, 1, 1, 3, 5)

	resp, err := svc.ComposeExam(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, resp.QuestionIDs, 8)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, resp.QuestionIDs)
}

func TestComposeExamEmptyBank(t *testing.T) {
	_, _, svc := newExamFixture(defaultComposition)

	resp, err := svc.ComposeExam(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, resp.QuestionIDs)
}

func TestComposeExamConfiguredCounts(t *testing.T) {
	store, _, svc := newExamFixture(ExamComposition{MultipleChoiceCount: 2, TrueFalseCount: 1})
	seedBank(store, 1, 1, 10, 10)

	resp, err := svc.ComposeExam(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, resp.QuestionIDs, 3)
}

func TestComposeExamUnknownCourse(t *testing.T) {
	store, _, svc := newExamFixture(defaultComposition)

	_, err := svc.ComposeExam(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Empty(t, store.exams)
}

func TestComposeExamUsesInjectedRandomness(t *testing.T) {
	store, _, svc := newExamFixture(ExamComposition{MultipleChoiceCount: 2, TrueFalseCount: 1})
	seedBank(store, 1, 1, 4, 2)
	svc.(*examServiceImpl).intn = func(k int) int { return k - 1 }

	resp, err := svc.ComposeExam(context.Background(), 1)
	require.NoError(t, err)
	// MC candidates [1 2 3 4] yield [4 1]; TF candidates [5 6] yield [6].
	assert.Equal(t, []int64{4, 1, 6}, resp.QuestionIDs)
}

func TestPresentExamUnknown(t *testing.T) {
	_, _, svc := newExamFixture(defaultComposition)

	_, err := svc.PresentExam(context.Background(), 12345)
	assert.ErrorIs(t, err, apperrors.ErrExamNotFound)
	assert.Equal(t, apperrors.ReasonExamNotFound, apperrors.ReasonOf(err))
}

func TestPresentExamOrdersTrueFalseFirst(t *testing.T) {
	store, _, svc := newExamFixture(defaultComposition)
	store.seedQuestion(3, 1, models.QuestionTypeMultipleChoice, "Two plus two?", "4", "5", "4", "3")
	store.seedQuestion(184, 1, models.QuestionTypeTrueFalse, "Sky is blue?", "True", "True", "False")
	store.seedQuestion(2, 1, models.QuestionTypeTrueFalse, "Fire is cold?", "False", "True", "False")
	store.seedExam(42, 1, 3, 184, 2)

	resp, err := svc.PresentExam(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, resp.Items, 7)

	var order []string
	for _, item := range resp.Items {
		order = append(order, fmt.Sprintf("%d:%s", item.QuestionID, item.AnswerOption))
	}
	assert.Equal(t, []string{
		"2:False", "2:True",
		"184:False", "184:True",
		"3:3", "3:4", "3:5",
	}, order)
	assert.Equal(t, "TRUE_FALSE", resp.Items[0].QuestionType)
	assert.Equal(t, "MULTIPLE_CHOICE", resp.Items[6].QuestionType)
}

func TestPresentExamEmptyExam(t *testing.T) {
	store, _, svc := newExamFixture(defaultComposition)
	store.seedExam(8, 1)

	resp, err := svc.PresentExam(context.Background(), 8)
	require.NoError(t, err)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestPresentExamServesFromCache(t *testing.T) {
	store, c, svc := newExamFixture(defaultComposition)
	store.seedQuestion(184, 1, models.QuestionTypeTrueFalse, "Sky is blue?", "True", "True", "False")
	store.seedExam(42, 1, 184)

	first, err := svc.PresentExam(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, c.has(42))

	// The store no longer knows the exam; a hit must not consult it.
	delete(store.exams, 42)

	second, err := svc.PresentExam(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPresentExamFallsBackWhenCacheFails(t *testing.T) {
	store, c, svc := newExamFixture(defaultComposition)
	store.seedQuestion(184, 1, models.QuestionTypeTrueFalse, "Sky is blue?", "True", "True", "False")
	store.seedExam(42, 1, 184)
	c.failReads = true

	resp, err := svc.PresentExam(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
}

// interleavedExamStore runs between once ListExamItems has read its rows and
// before it returns them, the way a concurrent edit can land mid-request.
type interleavedExamStore struct {
	*memStore
	between func()
}

func (s *interleavedExamStore) ListExamItems(ctx context.Context, examID int64) ([]models.ExamItem, error) {
	items, err := s.memStore.ListExamItems(ctx, examID)
	if s.between != nil {
		run := s.between
		s.between = nil
		run()
	}
	return items, err
}

func TestPresentExamDoesNotCacheRowsOverlappingRemove(t *testing.T) {
	store := newMemStore()
	store.addCourse(1, "Geography 101")
	store.seedQuestion(10, 1, models.QuestionTypeTrueFalse, "Sky?", "True", "True", "False")
	store.seedQuestion(11, 1, models.QuestionTypeTrueFalse, "Grass?", "True", "True", "False")
	store.seedExam(100, 1, 10, 11)

	c := newFakeCache()
	questions := NewQuestionService(store, store, c, ",", zerolog.Nop())
	exams := &interleavedExamStore{memStore: store}
	exams.between = func() {
		require.NoError(t, questions.RemoveQuestion(context.Background(), 10))
	}
	svc := NewExamService(exams, store, store, c, defaultComposition, zerolog.Nop())

	// The in-flight request still answers with what it read.
	first, err := svc.PresentExam(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, first.Items, 4)
	assert.False(t, c.has(100), "rows read before the remove must not be cached")

	second, err := svc.PresentExam(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	for _, item := range second.Items {
		assert.Equal(t, int64(11), item.QuestionID)
	}
	assert.True(t, c.has(100))
}

func TestPresentExamDoesNotCacheRowsOverlappingEdit(t *testing.T) {
	store := newMemStore()
	store.addCourse(1, "Geography 101")
	store.seedQuestion(10, 1, models.QuestionTypeTrueFalse, "Sky?", "True", "True", "False")
	store.seedExam(100, 1, 10)

	c := newFakeCache()
	questions := NewQuestionService(store, store, c, ",", zerolog.Nop())
	exams := &interleavedExamStore{memStore: store}
	exams.between = func() {
		_, err := questions.EditQuestion(context.Background(), 10, &dto.UpdateQuestionRequest{Text: strPtr("Sky blue?")})
		require.NoError(t, err)
	}
	svc := NewExamService(exams, store, store, c, defaultComposition, zerolog.Nop())

	_, err := svc.PresentExam(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)
	assert.False(t, c.has(100))

	resp, err := svc.PresentExam(context.Background(), 100)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Items)
	assert.Equal(t, "Sky blue?", resp.Items[0].QuestionText)
}

func TestPresentExamSkipsCacheWriteAfterFailedRead(t *testing.T) {
	store, c, svc := newExamFixture(defaultComposition)
	store.seedQuestion(184, 1, models.QuestionTypeTrueFalse, "Sky is blue?", "True", "True", "False")
	store.seedExam(42, 1, 184)
	c.failReads = true

	_, err := svc.PresentExam(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, c.sets)
}

package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yigit/institute/internal/app/cache"
	"github.com/yigit/institute/internal/app/grading"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/pkg/apperrors"
)

type enrollmentKey struct{ studentID, courseID int64 }

type answerKey struct{ studentID, questionID, examID int64 }

// memStore is an in-memory stand-in for the repositories. It enforces the same
// uniqueness and membership rules as the schema so services can be exercised
// without a database.
type memStore struct {
	mu sync.Mutex

	courses     map[int64]string
	students    map[int64]bool
	enrollments map[enrollmentKey]*string

	questions      map[int64]*models.Question
	nextQuestionID int64

	exams         map[int64]*models.Exam
	examQuestions map[int64]map[int64]bool
	nextExamID    int64

	answers map[answerKey]models.StudentAnswer

	scoreWrites int
}

func newMemStore() *memStore {
	return &memStore{
		courses:       make(map[int64]string),
		students:      make(map[int64]bool),
		enrollments:   make(map[enrollmentKey]*string),
		questions:     make(map[int64]*models.Question),
		exams:         make(map[int64]*models.Exam),
		examQuestions: make(map[int64]map[int64]bool),
		answers:       make(map[answerKey]models.StudentAnswer),
	}
}

func (m *memStore) addCourse(id int64, name string) { m.courses[id] = name }

func (m *memStore) addStudent(id int64, enrolledIn ...int64) {
	m.students[id] = true
	for _, c := range enrolledIn {
		m.enrollments[enrollmentKey{id, c}] = nil
	}
}

// seedQuestion inserts a question directly with a fixed id
func (m *memStore) seedQuestion(id, courseID int64, qType models.QuestionType, text, correct string, options ...string) {
	m.questions[id] = &models.Question{
		ID:            id,
		Type:          qType,
		Text:          text,
		CanonicalText: text,
		CorrectAnswer: correct,
		CourseID:      courseID,
		Options:       options,
	}
	if id >= m.nextQuestionID {
		m.nextQuestionID = id
	}
}

// seedExam inserts an exam directly with the given question set
func (m *memStore) seedExam(id, courseID int64, questionIDs ...int64) {
	m.exams[id] = &models.Exam{ID: id, CourseID: courseID, QuestionIDs: questionIDs}
	set := make(map[int64]bool, len(questionIDs))
	for _, q := range questionIDs {
		set[q] = true
	}
	m.examQuestions[id] = set
	if id >= m.nextExamID {
		m.nextExamID = id
	}
}

func (m *memStore) score(studentID, courseID int64) *string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enrollments[enrollmentKey{studentID, courseID}]
}

// CourseDirectory

func (m *memStore) ResolveCourseID(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.courses {
		if n == name {
			return id, nil
		}
	}
	return 0, apperrors.ErrCourseNotFound
}

func (m *memStore) CourseExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.courses[id]
	return ok, nil
}

// StudentDirectory and EnrollmentStore

func (m *memStore) StudentExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.students[id], nil
}

func (m *memStore) UpdateEnrollmentScore(_ context.Context, studentID, courseID int64, score string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := enrollmentKey{studentID, courseID}
	if _, ok := m.enrollments[key]; !ok {
		return false, nil
	}
	m.scoreWrites++
	m.enrollments[key] = &score
	return true, nil
}

// QuestionStore

func (m *memStore) canonicalTaken(canonical string, excludeID int64) bool {
	for id, q := range m.questions {
		if id != excludeID && q.CanonicalText == canonical {
			return true
		}
	}
	return false
}

func (m *memStore) CreateQuestion(_ context.Context, q *models.Question, options []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[q.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if m.canonicalTaken(q.CanonicalText, 0) {
		return apperrors.ErrDuplicateQuestion
	}
	m.nextQuestionID++
	q.ID = m.nextQuestionID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	q.Options = append([]string(nil), options...)

	stored := *q
	m.questions[q.ID] = &stored
	return nil
}

func (m *memStore) CanonicalTextExists(_ context.Context, canonical string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canonicalTaken(canonical, excludeID), nil
}

func (m *memStore) GetQuestionByID(_ context.Context, id int64) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, apperrors.ErrQuestionNotFound
	}
	out := *q
	out.Options = append([]string(nil), q.Options...)
	sort.Strings(out.Options)
	return &out, nil
}

func (m *memStore) UpdateQuestion(_ context.Context, id int64, patch models.QuestionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return apperrors.ErrQuestionNotFound
	}
	if patch.CanonicalText != nil && m.canonicalTaken(*patch.CanonicalText, id) {
		return apperrors.ErrDuplicateQuestion
	}

	updated := *q
	if patch.Type != nil {
		updated.Type = *patch.Type
	}
	if patch.Text != nil {
		updated.Text = *patch.Text
	}
	if patch.CanonicalText != nil {
		updated.CanonicalText = *patch.CanonicalText
	}
	if patch.CorrectAnswer != nil {
		updated.CorrectAnswer = *patch.CorrectAnswer
	}
	if patch.CourseID != nil {
		updated.CourseID = *patch.CourseID
	}
	if patch.Options != nil {
		updated.Options = append([]string(nil), patch.Options...)
	}
	updated.UpdatedAt = time.Now()
	m.questions[id] = &updated
	return nil
}

func (m *memStore) DeleteQuestion(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return apperrors.ErrQuestionNotFound
	}
	delete(m.questions, id)
	for _, set := range m.examQuestions {
		delete(set, id)
	}
	for key := range m.answers {
		if key.questionID == id {
			delete(m.answers, key)
		}
	}
	return nil
}

func (m *memStore) ListQuestionIDsByType(_ context.Context, courseID int64, qType models.QuestionType) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0)
	for id, q := range m.questions {
		if q.CourseID == courseID && q.Type == qType {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) ListExamIDsByQuestion(_ context.Context, questionID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0)
	for examID, set := range m.examQuestions {
		if set[questionID] {
			ids = append(ids, examID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ExamStore

func (m *memStore) CreateExamWithQuestions(_ context.Context, courseID int64, questionIDs []int64) (*models.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[courseID]; !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	set := make(map[int64]bool, len(questionIDs))
	for _, q := range questionIDs {
		if _, ok := m.questions[q]; !ok {
			return nil, apperrors.ErrQuestionNotFound
		}
		set[q] = true
	}

	m.nextExamID++
	exam := &models.Exam{
		ID:          m.nextExamID,
		CourseID:    courseID,
		CreatedAt:   time.Now(),
		QuestionIDs: append([]int64(nil), questionIDs...),
	}
	m.exams[exam.ID] = exam
	m.examQuestions[exam.ID] = set
	return exam, nil
}

func (m *memStore) GetExamByID(_ context.Context, id int64) (*models.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exam, ok := m.exams[id]
	if !ok {
		return nil, apperrors.ErrExamNotFound
	}
	out := *exam
	out.QuestionIDs = nil
	return &out, nil
}

func (m *memStore) ExamExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.exams[id]
	return ok, nil
}

func (m *memStore) IsQuestionInExam(_ context.Context, examID, questionID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.examQuestions[examID][questionID], nil
}

func (m *memStore) ListExamItems(_ context.Context, examID int64) ([]models.ExamItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]models.ExamItem, 0)
	for qid := range m.examQuestions[examID] {
		q := m.questions[qid]
		for _, opt := range q.Options {
			items = append(items, models.ExamItem{
				QuestionID:   q.ID,
				QuestionText: q.Text,
				QuestionType: q.Type,
				AnswerOption: opt,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.QuestionType != b.QuestionType {
			return a.QuestionType > b.QuestionType
		}
		if a.QuestionID != b.QuestionID {
			return a.QuestionID < b.QuestionID
		}
		return a.AnswerOption < b.AnswerOption
	})
	return items, nil
}

// AnswerStore

func (m *memStore) AnswerExists(_ context.Context, studentID, questionID, examID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.answers[answerKey{studentID, questionID, examID}]
	return ok, nil
}

func (m *memStore) CreateGradedAnswer(_ context.Context, ans *models.StudentAnswer, grade grading.Func) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.examQuestions[ans.ExamID][ans.QuestionID] {
		return apperrors.ErrQuestionNotInExam
	}
	if !m.students[ans.StudentID] {
		return apperrors.ErrStudentNotFound
	}
	key := answerKey{ans.StudentID, ans.QuestionID, ans.ExamID}
	if _, dup := m.answers[key]; dup {
		return apperrors.ErrDuplicateAnswer
	}

	correct := grade(ans.AnswerText, m.questions[ans.QuestionID].CorrectAnswer)
	ans.IsCorrect = &correct
	ans.AnsweredAt = time.Now()
	m.answers[key] = *ans
	return nil
}

func (m *memStore) GetAnswerStats(_ context.Context, studentID, examID int64) (models.AnswerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats models.AnswerStats
	questions := make(map[int64]bool)
	for key, a := range m.answers {
		if key.studentID != studentID || key.examID != examID {
			continue
		}
		questions[key.questionID] = true
		if a.IsCorrect == nil {
			continue
		}
		if *a.IsCorrect {
			stats.Correct++
		} else {
			stats.Wrong++
		}
	}
	stats.Answered = len(questions)
	return stats, nil
}

func (m *memStore) answer(studentID, questionID, examID int64) (models.StudentAnswer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[answerKey{studentID, questionID, examID}]
	return a, ok
}

func (m *memStore) answerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.answers)
}

// fakeCache is an in-memory cache.ExamCache that records invalidations. Like the
// Redis cache it refuses writes made against a generation that has since moved.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[int64][]models.ExamItem
	generations map[int64]int64
	invalidated []int64
	gets        int
	sets        int
	failReads   bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:     make(map[int64][]models.ExamItem),
		generations: make(map[int64]int64),
	}
}

var errCacheDown = errors.New("cache unavailable")

func (c *fakeCache) Get(_ context.Context, examID int64) (cache.Lookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failReads {
		return cache.Lookup{}, errCacheDown
	}
	items, ok := c.entries[examID]
	return cache.Lookup{Items: items, Hit: ok, Generation: c.generations[examID]}, nil
}

func (c *fakeCache) Set(_ context.Context, examID, generation int64, items []models.ExamItem) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.generations[examID] != generation {
		return false, nil
	}
	c.entries[examID] = items
	return true, nil
}

func (c *fakeCache) Invalidate(_ context.Context, examIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range examIDs {
		delete(c.entries, id)
		c.generations[id]++
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

func (c *fakeCache) has(examID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[examID]
	return ok
}

package models

import "time"

// Exam is one administered instance of a course's question bank. Immutable.
type Exam struct {
	ID        int64     `json:"id" db:"id"`
	CourseID  int64     `json:"courseId" db:"course_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	QuestionIDs []int64 `json:"questionIds,omitempty"`
}

// ExamItem is one (question, option) display row. It never carries the correct answer.
type ExamItem struct {
	QuestionID   int64        `json:"questionId"`
	QuestionText string       `json:"questionText"`
	QuestionType QuestionType `json:"questionType"`
	AnswerOption string       `json:"answerOption"`
}

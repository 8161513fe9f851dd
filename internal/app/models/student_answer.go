package models

import "time"

// StudentAnswer is keyed by (StudentID, QuestionID, ExamID) and written once.
type StudentAnswer struct {
	StudentID  int64     `json:"studentId" db:"student_id"`
	QuestionID int64     `json:"questionId" db:"question_id"`
	ExamID     int64     `json:"examId" db:"exam_id"`
	AnswerText string    `json:"answerText" db:"answer_text"`
	IsCorrect  *bool     `json:"isCorrect,omitempty" db:"is_correct"`
	AnsweredAt time.Time `json:"answeredAt" db:"answered_at"`
}

// AnswerStats aggregates one student's graded answers for one exam
type AnswerStats struct {
	Correct  int
	Wrong    int
	Answered int
}

package dto

import "time"

// RecordAnswerRequest represents one submitted answer
type RecordAnswerRequest struct {
	QuestionID int64  `json:"questionId" binding:"required,gt=0" example:"184"`
	AnswerText string `json:"answerText" binding:"required,max=1000" example:"True"`
}

// RecordAnswerResponse acknowledges a recorded answer. Correctness is not disclosed.
type RecordAnswerResponse struct {
	StudentID  int64     `json:"studentId" example:"7"`
	ExamID     int64     `json:"examId" example:"42"`
	QuestionID int64     `json:"questionId" example:"184"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// ExamResultResponse represents a student's computed exam statistics
type ExamResultResponse struct {
	StudentID         int64  `json:"studentId" example:"7"`
	ExamID            int64  `json:"examId" example:"42"`
	CourseID          int64  `json:"courseId" example:"1"`
	Correct           int    `json:"correct" example:"3"`
	Wrong             int    `json:"wrong" example:"2"`
	Answered          int    `json:"answered" example:"5"`
	ScorePercent      int    `json:"scorePercent" example:"60"`
	Score             string `json:"score" example:"60 %"`
	EnrollmentUpdated bool   `json:"enrollmentUpdated" example:"true"`
}

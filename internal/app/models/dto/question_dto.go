package dto

import "time"

// CreateQuestionRequest represents question creation data. AnswerOptions is a
// delimited list, e.g. "Paris, Rome, Berlin".
type CreateQuestionRequest struct {
	Type          string `json:"type" binding:"required" example:"MULTIPLE_CHOICE" enums:"MULTIPLE_CHOICE,TRUE_FALSE"`
	Text          string `json:"text" binding:"required,max=4000" example:"What is the capital of France?"`
	CorrectAnswer string `json:"correctAnswer" binding:"required,max=1000" example:"Paris"`
	CourseName    string `json:"courseName" binding:"required,max=255" example:"Geography 101"`
	AnswerOptions string `json:"answerOptions" binding:"required" example:"Paris,Rome,Berlin"`
}

// UpdateQuestionRequest represents a partial question update. Omitted fields
// keep their stored value; AnswerOptions, when present, replaces the whole set.
type UpdateQuestionRequest struct {
	Type          *string `json:"type,omitempty" example:"TRUE_FALSE"`
	Text          *string `json:"text,omitempty" binding:"omitempty,max=4000"`
	CorrectAnswer *string `json:"correctAnswer,omitempty" binding:"omitempty,max=1000"`
	CourseName    *string `json:"courseName,omitempty" binding:"omitempty,max=255"`
	AnswerOptions *string `json:"answerOptions,omitempty"`
}

// QuestionResponse is the instructor view of a question, correct answer included
type QuestionResponse struct {
	ID            int64     `json:"id" example:"184"`
	Type          string    `json:"type" example:"TRUE_FALSE"`
	Text          string    `json:"text" example:"The sky is blue."`
	CorrectAnswer string    `json:"correctAnswer" example:"True"`
	CourseID      int64     `json:"courseId" example:"1"`
	Options       []string  `json:"options"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

package dto

import "time"

// ComposeExamResponse describes a newly composed exam
type ComposeExamResponse struct {
	ExamID        int64     `json:"examId" example:"42"`
	CourseID      int64     `json:"courseId" example:"1"`
	QuestionIDs   []int64   `json:"questionIds"`
	QuestionCount int       `json:"questionCount" example:"20"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ExamItemResponse is one (question, option) row of a presented exam
type ExamItemResponse struct {
	QuestionID   int64  `json:"questionId" example:"184"`
	QuestionText string `json:"questionText" example:"The sky is blue."`
	QuestionType string `json:"questionType" example:"TRUE_FALSE"`
	AnswerOption string `json:"answerOption" example:"True"`
}

// PresentExamResponse lists the exam's display rows in presentation order
type PresentExamResponse struct {
	ExamID int64              `json:"examId" example:"42"`
	Items  []ExamItemResponse `json:"items"`
}

// ExamQuestionResponse is one question of a grouped presentation
type ExamQuestionResponse struct {
	QuestionID   int64    `json:"questionId"`
	QuestionText string   `json:"questionText"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options"`
}

// GroupedExamResponse lists the exam's questions with their options
type GroupedExamResponse struct {
	ExamID    int64                  `json:"examId"`
	Questions []ExamQuestionResponse `json:"questions"`
}

// Grouped folds consecutive rows of the same question into one entry,
// keeping presentation order.
func (r *PresentExamResponse) Grouped() *GroupedExamResponse {
	grouped := &GroupedExamResponse{
		ExamID:    r.ExamID,
		Questions: make([]ExamQuestionResponse, 0),
	}

	index := make(map[int64]int)
	for _, item := range r.Items {
		i, ok := index[item.QuestionID]
		if !ok {
			i = len(grouped.Questions)
			index[item.QuestionID] = i
			grouped.Questions = append(grouped.Questions, ExamQuestionResponse{
				QuestionID:   item.QuestionID,
				QuestionText: item.QuestionText,
				QuestionType: item.QuestionType,
				Options:      make([]string, 0, 4),
			})
		}
		grouped.Questions[i].Options = append(grouped.Questions[i].Options, item.AnswerOption)
	}
	return grouped
}

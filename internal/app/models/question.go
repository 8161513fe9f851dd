package models

import (
	"strings"
	"time"
)

// QuestionType is stored as a small integer. TrueFalse sorts above MultipleChoice.
type QuestionType int16

const (
	QuestionTypeMultipleChoice QuestionType = 1
	QuestionTypeTrueFalse      QuestionType = 2
)

const (
	multipleChoiceName = "MULTIPLE_CHOICE"
	trueFalseName      = "TRUE_FALSE"
)

// String returns the API name of the type
func (t QuestionType) String() string {
	switch t {
	case QuestionTypeMultipleChoice:
		return multipleChoiceName
	case QuestionTypeTrueFalse:
		return trueFalseName
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the two supported types
func (t QuestionType) Valid() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// ParseQuestionType converts an API name into a QuestionType.
func ParseQuestionType(s string) (QuestionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case multipleChoiceName:
		return QuestionTypeMultipleChoice, true
	case trueFalseName:
		return QuestionTypeTrueFalse, true
	default:
		return 0, false
	}
}

// Question is one authored item of a course's question bank
type Question struct {
	ID            int64        `json:"id" db:"id"`
	Type          QuestionType `json:"type" db:"question_type"`
	Text          string       `json:"text" db:"question_text"`
	CanonicalText string       `json:"-" db:"canonical_text"`
	CorrectAnswer string       `json:"correctAnswer" db:"correct_answer"`
	CourseID      int64        `json:"courseId" db:"course_id"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Options []string `json:"options,omitempty"`
}

// QuestionPatch carries a partial update. Nil fields keep the stored value;
// a non-nil Options replaces the whole option set.
type QuestionPatch struct {
	Type          *QuestionType
	Text          *string
	CanonicalText *string
	CorrectAnswer *string
	CourseID      *int64
	Options       []string
}

// Empty reports whether the patch changes nothing
func (p QuestionPatch) Empty() bool {
	return p.Type == nil && p.Text == nil && p.CorrectAnswer == nil && p.CourseID == nil && p.Options == nil
}

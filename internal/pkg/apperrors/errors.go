package apperrors

import "errors"

// Error categories
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrIntegrityViolation    = errors.New("integrity violation")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Reason codes carried by domain errors
const (
	ReasonCourseNotFound       = "COURSE_NOT_FOUND"
	ReasonStudentNotFound      = "STUDENT_NOT_FOUND"
	ReasonExamNotFound         = "EXAM_NOT_FOUND"
	ReasonQuestionNotFound     = "QUESTION_NOT_FOUND"
	ReasonQuestionNotInExam    = "QUESTION_NOT_IN_EXAM"
	ReasonDuplicateAnswer      = "DUPLICATE_ANSWER"
	ReasonDuplicateQuestion    = "DUPLICATE_QUESTION"
	ReasonInvalidQuestionType  = "INVALID_QUESTION_TYPE"
	ReasonInvalidAnswerOptions = "INVALID_ANSWER_OPTIONS"
	ReasonQuestionInUse        = "QUESTION_IN_USE"
)

// Directory lookups
var (
	ErrCourseNotFound  = newDomainError(ErrResourceNotFound, "course not found", ReasonCourseNotFound)
	ErrStudentNotFound = newDomainError(ErrResourceNotFound, "student not found", ReasonStudentNotFound)
)

// Question bank errors
var (
	ErrQuestionNotFound     = newDomainError(ErrResourceNotFound, "question not found", ReasonQuestionNotFound)
	ErrDuplicateQuestion    = newDomainError(ErrResourceAlreadyExists, "an equivalent question already exists", ReasonDuplicateQuestion)
	ErrInvalidQuestionType  = newDomainError(ErrValidationFailed, "question type must be MULTIPLE_CHOICE or TRUE_FALSE", ReasonInvalidQuestionType)
	ErrInvalidAnswerOptions = newDomainError(ErrValidationFailed, "answer options list contains no usable entries", ReasonInvalidAnswerOptions)
	ErrQuestionInUse        = newDomainError(ErrConflict, "question belongs to an exam and cannot change course", ReasonQuestionInUse)
)

// Exam errors
var (
	ErrExamNotFound      = newDomainError(ErrResourceNotFound, "exam not found", ReasonExamNotFound)
	ErrQuestionNotInExam = newDomainError(ErrIntegrityViolation, "question is not part of this exam", ReasonQuestionNotInExam)
	ErrDuplicateAnswer   = newDomainError(ErrResourceAlreadyExists, "question already answered in this exam", ReasonDuplicateAnswer)
)

func newDomainError(category error, message, code string) *CustomError {
	return &CustomError{
		Err:     category,
		Message: message,
		Code:    code,
	}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// ReasonOf returns the reason code of the first CustomError in the chain.
func ReasonOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// MessageOf returns the message of the first CustomError in the chain, or fallback.
func MessageOf(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

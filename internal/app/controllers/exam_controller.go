package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/app/services"
	"github.com/yigit/institute/internal/middleware"
)

// ExamController handles exam composition, presentation, answers and results
type ExamController struct {
	examService   services.ExamService
	answerService services.AnswerService
	resultService services.ResultService
}

// NewExamController creates a new ExamController
func NewExamController(
	examService services.ExamService,
	answerService services.AnswerService,
	resultService services.ResultService,
) *ExamController {
	return &ExamController{
		examService:   examService,
		answerService: answerService,
		resultService: resultService,
	}
}

// ComposeExam creates a new exam for a course
// @Summary Compose an exam
// @Description Samples multiple-choice and true/false questions of the course into a new exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 201 {object} dto.APIResponse{data=dto.ComposeExamResponse} "Exam composed successfully"
// @Failure 400 {object} dto.APIResponse "Invalid course ID"
// @Failure 403 {object} dto.APIResponse "Forbidden - Instructor role required"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Router /courses/{courseId}/exams [post]
func (c *ExamController) ComposeExam(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId", "Course")
	if !ok {
		return
	}

	exam, err := c.examService.ComposeExam(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(exam, "Exam composed successfully"))
}

// PresentExam returns an exam's questions and options without correct answers
// @Summary Present an exam
// @Description Lists the exam's (question, option) rows, true/false first; grouped=true folds them per question
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param examId path int true "Exam ID"
// @Param grouped query bool false "Group options per question"
// @Success 200 {object} dto.APIResponse{data=dto.PresentExamResponse} "Exam retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid exam ID"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{examId} [get]
func (c *ExamController) PresentExam(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "examId", "Exam")
	if !ok {
		return
	}

	grouped, err := strconv.ParseBool(ctx.DefaultQuery("grouped", "false"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid grouped flag").
			WithField("grouped")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorAPIResponse(errorDetail))
		return
	}

	exam, err := c.examService.PresentExam(ctx.Request.Context(), examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if grouped {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exam.Grouped(), ""))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exam, ""))
}

// RecordAnswer stores a student's answer to one exam question
// @Summary Record an answer
// @Description Grades and stores the answer; each question can be answered once per exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path int true "Exam ID"
// @Param studentId path int true "Student ID"
// @Param request body dto.RecordAnswerRequest true "Answer"
// @Success 201 {object} dto.APIResponse{data=dto.RecordAnswerResponse} "Answer recorded"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 403 {object} dto.APIResponse "Forbidden - not your exam"
// @Failure 404 {object} dto.APIResponse "Exam or student not found"
// @Failure 409 {object} dto.APIResponse "Question already answered"
// @Failure 422 {object} dto.APIResponse "Question is not part of the exam"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Router /exams/{examId}/students/{studentId}/answers [post]
func (c *ExamController) RecordAnswer(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "examId", "Exam")
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId", "Student")
	if !ok {
		return
	}

	var req dto.RecordAnswerRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	answer, err := c.answerService.RecordAnswer(ctx.Request.Context(), studentID, examID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(answer, "Answer recorded"))
}

// ComputeResults computes a student's score on an exam
// @Summary Compute exam results
// @Description Counts correct and wrong answers and stores the score on the course enrollment
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param examId path int true "Exam ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.ExamResultResponse} "Results computed"
// @Failure 400 {object} dto.APIResponse "Invalid ID"
// @Failure 403 {object} dto.APIResponse "Forbidden - not your exam"
// @Failure 404 {object} dto.APIResponse "Exam or student not found"
// @Router /exams/{examId}/students/{studentId}/results [post]
func (c *ExamController) ComputeResults(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "examId", "Exam")
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId", "Student")
	if !ok {
		return
	}

	result, err := c.resultService.ComputeResults(ctx.Request.Context(), studentID, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Results computed"))
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/app/services"
	"github.com/yigit/institute/internal/middleware"
)

// QuestionController handles question bank operations
type QuestionController struct {
	questionService services.QuestionService
}

// NewQuestionController creates a new QuestionController
func NewQuestionController(questionService services.QuestionService) *QuestionController {
	return &QuestionController{
		questionService: questionService,
	}
}

// AddQuestion handles question creation
// @Summary Add a question to the bank
// @Description Creates a question and its answer options for a course
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuestionRequest true "Question data"
// @Success 201 {object} dto.APIResponse{data=dto.QuestionResponse} "Question created successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.APIResponse "Forbidden - Instructor role required"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Failure 409 {object} dto.APIResponse "An equivalent question already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /questions [post]
func (c *QuestionController) AddQuestion(ctx *gin.Context) {
	var req dto.CreateQuestionRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	question, err := c.questionService.AddQuestion(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(question, "Question created successfully"))
}

// GetQuestion retrieves a question by ID
// @Summary Get question by ID
// @Description Returns the instructor view of a question, correct answer included
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse{data=dto.QuestionResponse} "Question retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid question ID"
// @Failure 404 {object} dto.APIResponse "Question not found"
// @Router /questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Question")
	if !ok {
		return
	}

	question, err := c.questionService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(question, ""))
}

// EditQuestion applies a partial update to a question
// @Summary Edit a question
// @Description Updates the provided fields; answerOptions replaces the whole option set
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body dto.UpdateQuestionRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.QuestionResponse} "Question updated successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Question or course not found"
// @Failure 409 {object} dto.APIResponse "An equivalent question already exists"
// @Router /questions/{id} [patch]
func (c *QuestionController) EditQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Question")
	if !ok {
		return
	}

	var req dto.UpdateQuestionRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	question, err := c.questionService.EditQuestion(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(question, "Question updated successfully"))
}

// RemoveQuestion deletes a question
// @Summary Remove a question
// @Description Deletes a question together with its options, exam memberships and answers
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Question removed successfully"
// @Failure 400 {object} dto.APIResponse "Invalid question ID"
// @Failure 404 {object} dto.APIResponse "Question not found"
// @Router /questions/{id} [delete]
func (c *QuestionController) RemoveQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Question")
	if !ok {
		return
	}

	if err := c.questionService.RemoveQuestion(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Question removed"}, "Question removed successfully"))
}

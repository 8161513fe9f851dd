package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/institute/internal/app/controllers"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/app/models/dto"
	"github.com/yigit/institute/internal/middleware"
)

// SetupRouter configures all application routes. answerLimiter wraps answer
// submission and runs after authentication so it can key on the caller.
func SetupRouter(
	router *gin.Engine,
	questionController *controllers.QuestionController,
	examController *controllers.ExamController,
	authMiddleware *middleware.AuthMiddleware,
	answerLimiter gin.HandlerFunc,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		instructorOnly := authMiddleware.RoleRequired(models.RoleInstructor)

		// Question bank, instructors only
		questions := authenticated.Group("/questions")
		questions.Use(instructorOnly)
		{
			questions.POST("", questionController.AddQuestion)
			questions.GET("/:id", questionController.GetQuestion)
			questions.PATCH("/:id", questionController.EditQuestion)
			questions.DELETE("/:id", questionController.RemoveQuestion)
		}

		authenticated.POST("/courses/:courseId/exams", instructorOnly, examController.ComposeExam)

		exams := authenticated.Group("/exams")
		{
			exams.GET("/:examId", examController.PresentExam)

			// A student may only act on their own answers; instructors on anyone's.
			studentScoped := exams.Group("/:examId/students/:studentId")
			studentScoped.Use(authMiddleware.SelfOrRole("studentId", models.RoleInstructor))
			{
				studentScoped.POST("/answers", answerLimiter, examController.RecordAnswer)
				studentScoped.POST("/results", examController.ComputeResults)
			}
		}
	}
}

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/institute/internal/app/controllers"
	"github.com/yigit/institute/internal/app/models"
	"github.com/yigit/institute/internal/middleware"
	"github.com/yigit/institute/internal/pkg/auth"
)

// Only requests rejected before reaching a controller are exercised, so the
// controllers can run without services.
func TestRouteAccessControl(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "s", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	router := gin.New()
	SetupRouter(router,
		controllers.NewQuestionController(nil),
		controllers.NewExamController(nil, nil, nil),
		middleware.NewAuthMiddleware(jwtService),
		func(c *gin.Context) { c.Next() },
	)

	bearer := func(id int64, role models.RoleType) string {
		tok, _, err := jwtService.GenerateAccessToken(id, "u@example.test", role)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	student := bearer(7, models.RoleStudent)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"present needs a token", http.MethodGet, "/api/v1/exams/1", "", http.StatusUnauthorized},
		{"student cannot add questions", http.MethodPost, "/api/v1/questions", student, http.StatusForbidden},
		{"student cannot compose", http.MethodPost, "/api/v1/courses/1/exams", student, http.StatusForbidden},
		{"student cannot answer for another", http.MethodPost, "/api/v1/exams/1/students/8/answers", student, http.StatusForbidden},
		{"student cannot read other results", http.MethodPost, "/api/v1/exams/1/students/8/results", student, http.StatusForbidden},
		{"student own answer hits validation", http.MethodPost, "/api/v1/exams/1/students/7/answers", student, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

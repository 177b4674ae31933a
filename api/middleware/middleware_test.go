package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Annany2002/cvm-baseprep/config"
	"github.com/Annany2002/cvm-baseprep/internal/auth"
	"github.com/Annany2002/cvm-baseprep/internal/mediation"
	"github.com/Annany2002/cvm-baseprep/internal/session"
	"github.com/Annany2002/cvm-baseprep/internal/sqlbuilder"
	"github.com/Annany2002/cvm-baseprep/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 11, 29, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per IP")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(NewRateLimiter(1, time.Minute)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", fmt.Errorf("%w: abc", storage.ErrSessionNotFound), http.StatusNotFound},
		{"table not selected", session.ErrTableNotSelected, http.StatusNotFound},
		{"no run", ErrNoGenerationRun, http.StatusNotFound},
		{"duplicate table", ErrTableAlreadySelected, http.StatusConflict},
		{"join in use", session.ErrJoinTableInUse, http.StatusConflict},
		{"run in progress", ErrGenerationInProgress, http.StatusConflict},
		{"expired token", auth.ErrTokenExpired, http.StatusUnauthorized},
		{"bad request", fmt.Errorf("%w: nope", ErrBadRequest), http.StatusBadRequest},
		{"no base table", sqlbuilder.ErrNoBaseTable, http.StatusBadRequest},
		{"upstream", fmt.Errorf("%w: down", mediation.ErrUpstream), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler())
			router.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "middleware-test-secret"}
	router := gin.New()
	router.Use(AuthMiddleware(cfg))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(OperatorKey)) })

	valid, err := auth.GenerateJWT("ops", cfg.JWTSecret, time.Minute)
	assert.NoError(t, err)
	expired, err := auth.GenerateJWT("ops", cfg.JWTSecret, -time.Minute)
	assert.NoError(t, err)

	testCases := []struct {
		name   string
		header string
		want   int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization header required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Bearer"},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"valid", "Bearer " + valid, http.StatusOK, "ops"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestAuthMiddlewareWithoutSecret(t *testing.T) {
	router := gin.New()
	router.Use(AuthMiddleware(&config.Config{}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

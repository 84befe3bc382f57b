package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool      `json:"ok"`
	Error *apiError `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":     "user-1",
		"employee_id": 7,
		"role":        "employee",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func newAuthRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(testSecret), func(c *gin.Context) {
		id, ok := middleware.EmployeeID(c)
		require.True(t, ok)
		actorID, ok := contextutil.GetActorID(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"employee_id": id, "actor_id": actorID, "role": c.GetString(middleware.KeyRole)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("success bearer token", func(t *testing.T) {
		r := newAuthRouter(t)
		token := signToken(t, validClaims(), jwt.SigningMethodHS256, []byte(testSecret))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"employee_id":7,"actor_id":7,"role":"employee"}`, w.Body.String())
	})

	t.Run("success cookie with string employee id", func(t *testing.T) {
		r := newAuthRouter(t)
		claims := validClaims()
		claims["employee_id"] = "7"
		token := signToken(t, claims, jwt.SigningMethodHS256, []byte(testSecret))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative missing token", func(t *testing.T) {
		r := newAuthRouter(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, middleware.ErrTokenMissing.Code, decodeEnvelope(t, w).Error.Code)
	})

	t.Run("negative expired token", func(t *testing.T) {
		r := newAuthRouter(t)
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		token := signToken(t, claims, jwt.SigningMethodHS256, []byte(testSecret))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_EXPIRED", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("negative wrong secret", func(t *testing.T) {
		r := newAuthRouter(t)
		token := signToken(t, validClaims(), jwt.SigningMethodHS256, []byte("other"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("negative missing employee id", func(t *testing.T) {
		r := newAuthRouter(t)
		claims := validClaims()
		delete(claims, "employee_id")
		token := signToken(t, claims, jwt.SigningMethodHS256, []byte(testSecret))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Employee ID not found in token", decodeEnvelope(t, w).Error.Message)
	})
}

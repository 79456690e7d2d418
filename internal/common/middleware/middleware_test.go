package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), ErrorHandler(), LoggerMiddleware())

	router.GET("/me", AuthRequired(), func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	router.GET("/maybe", OptionalAuth(), func(c *gin.Context) {
		userID, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authenticated": ok})
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("scoring exploded")
	})
	router.GET("/fail", func(c *gin.Context) {
		JSONErrorResponse(c, fmt.Errorf("wrapped: %w", errors.MissingSurvey()))
	})
	router.GET("/plain", func(c *gin.Context) {
		JSONErrorResponse(c, fmt.Errorf("connection reset"))
	})
	return router
}

func TestAuthRequired(t *testing.T) {
	router := setupTestRouter()

	tests := []struct {
		name       string
		cookie     string
		header     string
		wantStatus int
		wantUser   float64
	}{
		{"session cookie", "42", "", http.StatusOK, 42},
		{"bearer token", "", "Bearer 7", http.StatusOK, 7},
		{"raw header", "", "9", http.StatusOK, 9},
		{"cookie wins over header", "5", "Bearer 6", http.StatusOK, 5},
		{"missing credentials", "", "", http.StatusUnauthorized, 0},
		{"non numeric", "", "Bearer abc", http.StatusUnauthorized, 0},
		{"zero id", "0", "", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session_id", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, body["user_id"])
			} else {
				assert.Equal(t, errors.CodeUnauthorized, body["code"])
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := setupTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/maybe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 0, "authenticated": false}`, w.Body.String())
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	router := setupTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var appErr errors.AppError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appErr))
	assert.Equal(t, errors.CodeInternalError, appErr.Code)
}

func TestJSONErrorResponse(t *testing.T) {
	router := setupTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var appErr errors.AppError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appErr))
	assert.Equal(t, errors.CodeMissingSurvey, appErr.Code)
	assert.Equal(t, "complete the interest survey first", appErr.Message)

	req, _ = http.NewRequest(http.MethodGet, "/plain", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appErr))
	assert.Equal(t, errors.CodeInternalError, appErr.Code)
	assert.Equal(t, "connection reset", appErr.Details)
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/maybe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	existing := uuid.New().String()
	req, _ = http.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set(RequestIDHeader, existing)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, existing, w.Header().Get(RequestIDHeader))

	req, _ = http.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

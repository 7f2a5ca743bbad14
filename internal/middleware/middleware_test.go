package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/auth"
	"github.com/kindergarten-canvas/backend/internal/pkg/ratelimit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidatorTagNames()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		{"news not found", fmt.Errorf("%w: id 3", apperrors.ErrNewsNotFound), http.StatusNotFound, dto.ErrorCodeNewsNotFound, dto.MsgNewsNotFound},
		{"teacher not found", apperrors.ErrTeacherNotFound, http.StatusNotFound, dto.ErrorCodeTeacherNotFound, dto.MsgTeacherNotFound},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeAuth, dto.MsgInvalidCredentials},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgSessionExpired},
		{"revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgInvalidRefresh},
		{"forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, dto.MsgForbidden},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeEmailExists, dto.MsgEmailExists},
		{"not implemented", apperrors.ErrNotImplemented, http.StatusUnprocessableEntity, dto.ErrorCodeNotImplemented, dto.MsgNotImplemented},
		{"file too large", apperrors.ErrFileSizeExceeded, http.StatusBadRequest, dto.ErrorCodeFileSizeExceeded, dto.MsgFileSizeExceeded},
		{"upload failed", apperrors.ErrUploadFailed, http.StatusInternalServerError, dto.ErrorCodeUploadFailed, dto.MsgUploadFailed},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, dto.MsgInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestHandleAPIErrorValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError("title", "Заглавието е задължително"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Message string           `json:"message"`
		Error   string           `json:"error"`
		Details []dto.FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error)
	assert.Equal(t, "Заглавието е задължително", resp.Message)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "title", resp.Details[0].Field)
}

func TestHandleBindingError(t *testing.T) {
	r := gin.New()
	r.POST("/news", func(c *gin.Context) {
		var req dto.CreateNewsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindingError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/news", strings.NewReader(`{"content":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Message string           `json:"message"`
			Details []dto.FieldError `json:"details"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Заглавието е задължително", resp.Message)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "title", resp.Details[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/news", strings.NewReader(`{"title":`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error)
		assert.Equal(t, dto.MsgInvalidData, resp.Message)
	})
}

type stubValidator struct {
	claims *auth.Claims
	err    error
}

func (s stubValidator) ValidateAccessToken(string) (*auth.Claims, error) {
	return s.claims, s.err
}

func authRouter(v TokenValidator, roles ...models.RoleType) *gin.Engine {
	m := NewAuthMiddleware(v)
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, "%d", id)
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	valid := stubValidator{claims: &auth.Claims{UserID: 42, Email: "a@b.bg", Role: models.RoleAdmin}}

	tests := []struct {
		name        string
		validator   TokenValidator
		header      string
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		{"missing header", valid, "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized, dto.MsgUnauthorized},
		{"wrong scheme", valid, "Basic abc", http.StatusUnauthorized, dto.ErrorCodeUnauthorized, dto.MsgUnauthorized},
		{"invalid token", stubValidator{err: auth.ErrInvalidToken}, "Bearer x", http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgUnauthorized},
		{"expired token", stubValidator{err: auth.ErrExpiredToken}, "Bearer x", http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			authRouter(tt.validator).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")
		authRouter(valid).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "42", w.Body.String())
	})
}

func TestJWTAuthWithRealTokens(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{
		AccessSecret:    strings.Repeat("a", 32),
		RefreshSecret:   strings.Repeat("r", 32),
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
	})
	user := &models.User{ID: 5, Email: "dev@kindergarten.bg", Role: models.RoleDeveloper}

	access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	authRouter(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh.Token)
	authRouter(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleRequired(t *testing.T) {
	developer := stubValidator{claims: &auth.Claims{UserID: 1, Email: "d@b.bg", Role: models.RoleDeveloper}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer x")
	authRouter(developer, models.RoleAdmin, models.RoleDeveloper).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer x")
	authRouter(developer, models.RoleAdmin).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error)
}

func loginRouter(limit int) *gin.Engine {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "login", limit, 15*time.Minute)
	r := gin.New()
	r.POST("/login", RateLimit(limiter, RateLimitOptions{SkipSuccessful: true, Logger: zerolog.Nop()}), func(c *gin.Context) {
		if c.Query("ok") == "1" {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusUnauthorized)
	})
	return r
}

func TestRateLimitCountsOnlyFailures(t *testing.T) {
	r := loginRouter(5)

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login?ok=1", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login?ok=1", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "900", w.Header().Get("Retry-After"))
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeRateLimit, resp.Error)
	assert.Equal(t, dto.MsgRateLimitExceeded, resp.Message)
}

func TestXSS(t *testing.T) {
	r := gin.New()
	r.Use(XSS())
	var got map[string]interface{}
	var gotQuery string
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		_ = json.Unmarshal(body, &got)
		gotQuery = c.Query("q")
		c.Status(http.StatusOK)
	})

	body := `{"title":"  <b>Hi</b> ","content":"<p>keep</p>","displayOrder":3,"tags":["<i>x</i>"],"nested":{"bio":"<script>"}}`
	req := httptest.NewRequest(http.MethodPost, "/echo?q=%3Cscript%3E", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "&lt;b>Hi&lt;/b>", got["title"])
	assert.Equal(t, "<p>keep</p>", got["content"])
	assert.Equal(t, float64(3), got["displayOrder"])
	assert.Equal(t, []interface{}{"&lt;i>x&lt;/i>"}, got["tags"])
	assert.Equal(t, map[string]interface{}{"bio": "&lt;script>"}, got["nested"])
	assert.Equal(t, "&lt;script>", gotQuery)
}

func TestXSSLeavesInvalidJSONAlone(t *testing.T) {
	assert.Equal(t, []byte(`{"a":`), sanitizeJSON([]byte(`{"a":`)))
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.POST("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodPost, "/api", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(), RequestLogger(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	role models.RoleType
	err  error
}

func (r stubResolver) ResolveActor(_ context.Context, claims *auth.Claims) (*appauth.Actor, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &appauth.Actor{UserID: uuid.New(), Email: claims.Email, Role: r.role, SessionID: claims.SessionID()}, nil
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "test"})
}

func token(t *testing.T, svc *auth.JWTService, ttl time.Duration) string {
	t.Helper()
	tok, err := svc.GenerateToken(auth.Claims{UserID: "acct-1", Email: "ada@org.example", Role: "admin"}, ttl)
	require.NoError(t, err)
	return tok
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func protectedRouter(m *AuthMiddleware, roles ...models.RoleType) *gin.Engine {
	r := gin.New()
	r.GET("/p", m.JWTAuth(), m.RoleRequired(roles...), func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, string(actor.Role))
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	svc := newJWT()
	m := NewAuthMiddleware(svc, stubResolver{role: models.RoleAdmin})
	router := protectedRouter(m, models.RoleAdmin, models.RoleSuperAdmin)

	tests := []struct {
		name   string
		header string
		query  string
		status int
		code   dto.ErrorCode
	}{
		{"missing", "", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"garbage", "Basic abc", "", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"wrong signature", "Bearer " + token(t, auth.NewJWTService(auth.JWTConfig{SecretKey: "other", TokenIssuer: "test"}), time.Hour), "", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"expired", "Bearer " + token(t, svc, -time.Minute), "", http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"valid header", "Bearer " + token(t, svc, time.Hour), "", http.StatusOK, ""},
		{"valid query", "", token(t, svc, time.Hour), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/p"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
			} else {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}

func TestRoleRequiredRejectsApplicants(t *testing.T) {
	svc := newJWT()
	m := NewAuthMiddleware(svc, stubResolver{role: models.RoleApplicant})
	router := protectedRouter(m, models.RoleAdmin, models.RoleSuperAdmin)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, svc, time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)
}

func TestJWTAuthResolverFailure(t *testing.T) {
	svc := newJWT()
	m := NewAuthMiddleware(svc, stubResolver{err: errors.New("db down")})
	router := protectedRouter(m, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, svc, time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.NewIllegalTransitionError("cannot accept", nil), http.StatusConflict, dto.ErrorCodeIllegalTransition},
		{apperrors.NewInvalidTargetError("unknown target"), http.StatusUnprocessableEntity, dto.ErrorCodeInvalidTarget},
		{apperrors.ErrDeleteNotAllowed, http.StatusConflict, dto.ErrorCodeDeleteNotAllowed},
		{fmt.Errorf("load: %w", apperrors.ErrApplicationNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewConflictError("modified"), http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.ErrApplicationExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.NewValidationError("bad", map[string]interface{}{"q": "x"}), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.NewBadRequestError("bad"), http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{apperrors.NewForbiddenError("no"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.ErrRateLimited, http.StatusTooManyRequests, dto.ErrorCodeRateLimited},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		status, detail := ErrorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, detail.Code, tt.err.Error())
	}

	_, detail := ErrorStatus(apperrors.NewIllegalTransitionError("cannot accept a committee application in status pending", nil))
	assert.Equal(t, "cannot accept a committee application in status pending", detail.Message)

	_, detail = ErrorStatus(apperrors.NewValidationError("bad", map[string]interface{}{"q": "x"}))
	assert.Equal(t, "q", detail.Field)

	_, detail = ErrorStatus(errors.New("pq: password authentication failed"))
	assert.Equal(t, "Internal server error", detail.Message, "internal errors are not leaked")
}

type countingLimiter struct{ max, seen int }

func (l *countingLimiter) Allow(_ context.Context, _ string) bool {
	l.seen++
	return l.seen <= l.max
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.PUT("/x", RateLimit(&countingLimiter{max: 1}), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitDisabled(t *testing.T) {
	assert.Nil(t, NewRedisLimiter(nil, 10, time.Minute, "rl"))

	var limiter *RedisLimiter
	assert.True(t, limiter.Allow(context.Background(), "user:1"))

	r := gin.New()
	r.GET("/x", RateLimit(nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://portal.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://portal.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://portal.test", w.Header().Get("Access-Control-Allow-Origin"))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPermissionRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(svc, zap.NewNop()))
	r.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/stock", RequirePermission("stock:write"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func issueToken(t *testing.T, svc *auth.JWTService, role string, permissions []string) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
		TenantID:    uuid.New(),
		ActorID:     uuid.New(),
		Role:        role,
		Permissions: permissions,
	})
	require.NoError(t, err)
	return token
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := newPermissionRouter(svc)

	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "matching role passes", role: "admin", want: http.StatusOK},
		{name: "other role forbidden", role: "viewer", want: http.StatusForbidden},
		{name: "empty role forbidden", role: "", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, svc, tt.role, nil))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := newPermissionRouter(svc)

	tests := []struct {
		name        string
		permissions []string
		want        int
	}{
		{name: "holding the permission passes", permissions: []string{"stock:write"}, want: http.StatusOK},
		{name: "holding one of several passes", permissions: []string{"catalog:read", "stock:write"}, want: http.StatusOK},
		{name: "unrelated permission forbidden", permissions: []string{"catalog:read"}, want: http.StatusForbidden},
		{name: "no permissions forbidden", permissions: nil, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/stock", nil)
			req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, svc, "manager", tt.permissions))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// No Authenticate in the chain
	r.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

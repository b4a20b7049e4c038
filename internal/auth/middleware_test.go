package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luct-reporting/internal/scope"
)

func identityRouter(t *testing.T) (*gin.Engine, *scope.Scope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	captured := &scope.Scope{}
	r := gin.New()
	r.Use(Identity("secret", "luct-reporting"))
	r.GET("/probe", func(c *gin.Context) {
		*captured = CallerScope(c)
		c.Status(http.StatusOK)
	})
	return r, captured
}

func TestIdentityFromHeaders(t *testing.T) {
	r, captured := identityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("x-user-id", "7")
	req.Header.Set("x-user-role", "PRL")
	req.Header.Set("x-user-stream", "Information Systems")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, scope.Scope{UserID: 7, Role: "prl", Stream: "Information Systems"}, *captured)
}

func TestIdentityFromBearerToken(t *testing.T) {
	r, captured := identityRouter(t)

	token, _, err := Issue(42, "lecturer", "", "luct-reporting", "secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	// headers lose to the token
	req.Header.Set("x-user-id", "7")
	req.Header.Set("x-user-role", "pl")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), captured.UserID)
	assert.Equal(t, "lecturer", captured.Role)
}

func TestIdentityRejectsBadToken(t *testing.T) {
	r, _ := identityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity("secret", "luct-reporting"))
	r.GET("/prl-only", RequireRole(scope.RolePRL, scope.RolePL), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/prl-only", nil)
	req.Header.Set("x-user-role", "student")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/prl-only", nil)
	req.Header.Set("x-user-role", "prl")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

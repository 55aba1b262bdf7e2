package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"portal-service/internal/auth"
	"portal-service/internal/models"
)

func setupAuthRouter(tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt("userID"), "role": c.GetString("userRole")})
	})
	r.GET("/admin", AuthMiddleware(tokens), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "portal")
	router := setupAuthRouter(tokens)

	token, err := tokens.Sign(7, models.RoleMember, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"user_id":7`)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	router := setupAuthRouter(auth.NewTokenManager("secret", "portal"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	router := setupAuthRouter(auth.NewTokenManager("secret", "portal"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	router := setupAuthRouter(auth.NewTokenManager("secret", "portal"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "portal")
	router := setupAuthRouter(tokens)

	memberToken, err := tokens.Sign(7, models.RoleMember, time.Minute)
	require.NoError(t, err)
	adminToken, err := tokens.Sign(8, models.RoleAdmin, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

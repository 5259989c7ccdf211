package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseBearer(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"userId": "user-1",
		"role":   "user",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	userID, role, err := parseBearer("Bearer "+signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "user", role)
}

func TestParseBearerExpiredToken(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"userId": "user-1",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	_, _, err := parseBearer("Bearer "+signed, testSecret)
	require.Error(t, err)
	assert.Equal(t, "token is expired", err.Error())
}

func TestParseBearerWrongSecret(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"userId": "user-1",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}, "other-secret")

	_, _, err := parseBearer("Bearer "+signed, testSecret)
	assert.Error(t, err)
}

func TestParseBearerMissingUserClaim(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, _, err := parseBearer("Bearer "+signed, testSecret)
	assert.Error(t, err)
}

func TestParseBearerMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Bearer", "Basic abc", "garbage"} {
		_, _, err := parseBearer(header, testSecret)
		assert.Error(t, err, "header %q should be rejected", header)
	}
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", requireAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(ctxUserID)})
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		signed := signToken(t, jwt.MapClaims{
			"userId": "user-1",
			"exp":    time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "user-1")
	})
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/open", optionalAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(ctxUserID)})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPageParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  int
	}{
		{"tab=3", 3},
		{"tab=0", 1},
		{"tab=-2", 1},
		{"tab=abc", 1},
		{"", 1},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/bookings?"+tt.query, nil)
		assert.Equal(t, tt.want, pageParam(c, "tab"), "query %q", tt.query)
	}
}

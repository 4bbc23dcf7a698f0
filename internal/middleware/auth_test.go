package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// newAuthRouter 返回一个把上下文中的身份回显出来的路由
func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(testSecret), func(c *gin.Context) {
		id, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "ok": ok, "email": c.GetString(ContextEmailKey)})
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"email":   "ada@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	newAuthRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42,"ok":true,"email":"ada@example.com"}`, w.Body.String())
}

func TestAuth_Rejections(t *testing.T) {
	expired := signToken(t, testSecret, jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(-time.Minute).Unix()})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(time.Hour).Unix()})
	badUserID := signToken(t, testSecret, jwt.MapClaims{"user_id": "abc", "exp": time.Now().Add(time.Hour).Unix()})

	cases := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing header", "", "Authorization header is required"},
		{"not bearer", "Basic abc", "Invalid token format"},
		{"garbage token", "Bearer not.a.jwt", "Invalid or expired token"},
		{"expired", "Bearer " + expired, "Invalid or expired token"},
		{"wrong signature", "Bearer " + wrongKey, "Invalid or expired token"},
		{"invalid user_id", "Bearer " + badUserID, "Invalid or expired token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			newAuthRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"`+tc.wantMsg+`"}`, w.Body.String())
		})
	}
}

func TestAuth_EmptySecretPanics(t *testing.T) {
	assert.Panics(t, func() { Auth("") })
}

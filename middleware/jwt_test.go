package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-secret")

func sign(t *testing.T, key []byte, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() *Claims {
	return &Claims{
		UserID:   7,
		Username: "mina",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func run(t *testing.T, header string) (int, int64) {
	t.Helper()
	e := echo.New()
	var seen int64
	h := JWT(testKey)(func(c echo.Context) error {
		seen, _ = UserID(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	if err != nil {
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		return he.Code, seen
	}
	return rec.Code, seen
}

func TestJWT(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	anonymous := validClaims()
	anonymous.UserID = 0

	tests := []struct {
		name   string
		header string
		status int
		userID int64
	}{
		{"valid", sign(t, testKey, validClaims()), http.StatusOK, 7},
		{"bearer prefix", "Bearer " + sign(t, testKey, validClaims()), http.StatusOK, 7},
		{"missing header", "", http.StatusBadRequest, 0},
		{"wrong key", sign(t, []byte("other"), validClaims()), http.StatusUnauthorized, 0},
		{"expired", sign(t, testKey, expired), http.StatusUnauthorized, 0},
		{"no user id", sign(t, testKey, anonymous), http.StatusUnauthorized, 0},
		{"garbage", "not-a-token", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, userID := run(t, tt.header)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.userID, userID)
		})
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/avelorn/storefront/internal/models"
)

var testSecret = []byte("test-secret")

func signTestToken(t *testing.T, role string, exp time.Time, secret []byte) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   float64(1),
		"email": "alice@example.com",
		"role":  role,
		"exp":   exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func runMiddleware(header string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return rec, handler(c)
}

func TestRequireLogin_MissingToken(t *testing.T) {
	_, err := runMiddleware("", RequireLogin(testSecret))
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
}

func TestRequireLogin_ExpiredToken(t *testing.T) {
	token := signTestToken(t, models.RoleUser, time.Now().Add(-time.Minute), testSecret)
	_, err := runMiddleware("Bearer "+token, RequireLogin(testSecret))
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
}

func TestRequireLogin_WrongSecret(t *testing.T) {
	token := signTestToken(t, models.RoleUser, time.Now().Add(time.Hour), []byte("other-secret"))
	_, err := runMiddleware("Bearer "+token, RequireLogin(testSecret))
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
}

func TestAdminOnly_RejectsUserRole(t *testing.T) {
	token := signTestToken(t, models.RoleUser, time.Now().Add(time.Hour), testSecret)
	_, err := runMiddleware("Bearer "+token, RequireLogin(testSecret), AdminOnly)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
}

func TestAdminOnly_AllowsAdmin(t *testing.T) {
	token := signTestToken(t, models.RoleAdmin, time.Now().Add(time.Hour), testSecret)
	rec, err := runMiddleware("Bearer "+token, RequireLogin(testSecret), AdminOnly)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carvohq/carvo-backend/internal/utils"
)

func invokeWithRole(t *testing.T, mw echo.MiddlewareFunc, role interface{}) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.NoError(t, h(c))
	return rec
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole("DELIVERY", "ADMIN")

	t.Run("allowed role passes", func(t *testing.T) {
		rec := invokeWithRole(t, mw, "DELIVERY")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other role forbidden", func(t *testing.T) {
		rec := invokeWithRole(t, mw, "CUSTOMER")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing role forbidden", func(t *testing.T) {
		rec := invokeWithRole(t, mw, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-string role forbidden", func(t *testing.T) {
		rec := invokeWithRole(t, mw, 42)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("case sensitive", func(t *testing.T) {
		rec := invokeWithRole(t, mw, "delivery")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	secret := "test-secret"
	at, err := utils.NewAccessToken(secret, 7, "SELLER", 5)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser interface{}
	var gotRole interface{}
	h := JWTAuth(secret)(func(c echo.Context) error {
		gotUser = c.Get("user_id")
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(7), gotUser) // numeric claims decode as float64
	assert.Equal(t, "SELLER", gotRole)
}

func TestJWTAuthRejects(t *testing.T) {
	e := echo.New()

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := JWTAuth("s")(func(c echo.Context) error { return nil })
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		at, err := utils.NewAccessToken("other", 1, "ADMIN", 5)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+at.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := JWTAuth("s")(func(c echo.Context) error { return nil })
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := JWTAuth("s")(func(c echo.Context) error { return nil })
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

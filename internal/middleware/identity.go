package middleware

// identity.go holds the identity helper shared by the rate limiter and
// the response cache when building per-user keys.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's ID as a string for use
// in Redis keys, or "anon" when the request carries no identity. JWTAuth
// stores the raw sub claim, which decodes as float64 for numeric
// subjects.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return "anon"
}

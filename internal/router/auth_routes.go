package router

import (
	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/handler"
	"github.com/carvohq/carvo-backend/internal/middleware"
	"github.com/carvohq/carvo-backend/internal/model"
)

// RegisterAuth registers the session lifecycle. Everything under
// /v1/auth is unauthenticated (that is the point of it); /v1/me and the
// notification feed require a valid access token but no particular role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/verify-otp", a.VerifyOTP)
	g.POST("/resend-otp", a.ResendOTP)
	g.POST("/login", a.Login)
	g.POST("/google", a.Google)
	g.POST("/refresh", a.Refresh)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(
			model.RoleAdmin, model.RoleCustomer, model.RoleSeller,
			model.RoleProvider, model.RoleDelivery, model.RoleSupport,
		),
	)
	auth.GET("/me", a.Me)
	auth.GET("/notifications", n.List)
	auth.GET("/notifications/unread-count", n.UnreadCount)
	auth.PUT("/notifications/:id/read", n.MarkRead)
	auth.PUT("/notifications/mark-all-read", n.MarkAllRead)
}

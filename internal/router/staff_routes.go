package router

import (
	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/handler"
	"github.com/carvohq/carvo-backend/internal/middleware"
	"github.com/carvohq/carvo-backend/internal/model"
)

// RegisterDelivery registers the delivery agent surface: the assignment
// list plus the OTP handoff flow.
func RegisterDelivery(e *echo.Echo, d *handler.DeliveryHandler, jwtSecret string) {
	g := e.Group(
		"/v1/delivery",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleDelivery),
	)
	g.GET("/assignments", d.Assignments)
	g.POST("/:id/start", d.Start)
	g.POST("/:id/verify", d.Verify)
}

// RegisterProvider registers the service provider surface: quotation
// requests and booking lifecycle management.
func RegisterProvider(e *echo.Echo, p *handler.ProviderHandler, jwtSecret string) {
	g := e.Group(
		"/v1/provider",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleProvider),
	)
	g.GET("/quotations", p.OpenQuotations)
	g.PATCH("/quotations/:id", p.RespondQuotation)
	g.GET("/bookings", p.Bookings)
	g.PATCH("/bookings/:id/status", p.UpdateBooking)
}

// RegisterSeller registers part listing management. Admins can also
// remove listings, for takedowns.
func RegisterSeller(e *echo.Echo, cat *handler.CatalogHandler, jwtSecret string) {
	g := e.Group(
		"/v1/seller",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleSeller, model.RoleAdmin),
	)
	g.POST("/parts", cat.CreatePart)
	g.DELETE("/parts/:id", cat.DeletePart)
}

// RegisterSupport registers the support agent queue.
func RegisterSupport(e *echo.Echo, s *handler.SupportHandler, jwtSecret string) {
	g := e.Group(
		"/v1/support",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleSupport, model.RoleAdmin),
	)
	g.GET("/complaints", s.Queue)
	g.PATCH("/complaints/:id/status", s.UpdateStatus)
}

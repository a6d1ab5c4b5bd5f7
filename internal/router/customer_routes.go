package router

import (
	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/handler"
	"github.com/carvohq/carvo-backend/internal/middleware"
	"github.com/carvohq/carvo-backend/internal/model"
)

// RegisterCustomer registers everything a signed-in customer can do:
// checkout and order views, payments, coupon validation, the
// customization-to-booking pipeline, complaints and invoices.
func RegisterCustomer(
	e *echo.Echo,
	o *handler.OrderHandler,
	p *handler.PaymentHandler,
	cp *handler.CouponHandler,
	w *handler.WorkflowHandler,
	s *handler.SupportHandler,
	inv *handler.InvoiceHandler,
	jwtSecret string,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)

	g.POST("/orders", o.Checkout)
	g.GET("/orders/my-orders", o.MyOrders)
	g.GET("/orders/:id", o.GetOrder)
	g.POST("/orders/:id/cancel", o.CancelOrder)
	g.GET("/orders/:id/payments", p.ListForOrder)
	g.GET("/invoices/:id", inv.Get)
	g.POST("/invoices/:id/generate", inv.Generate)

	g.GET("/payments/upi-config", p.UPIConfig)
	g.POST("/payments/create", p.Create)
	g.POST("/payments/confirm", p.Confirm)

	g.POST("/coupons/validate", cp.Validate)

	g.POST("/customer/customizations", w.CreateCustomization)
	g.GET("/customer/customizations", w.MyCustomizations)
	g.POST("/customer/quotations", w.RequestQuotation)
	g.GET("/customer/quotations", w.MyQuotations)
	g.POST("/customer/bookings", w.CreateBooking)
	g.GET("/customer/bookings", w.MyBookings)
	g.POST("/customer/bookings/:id/cancel", w.CancelBooking)

	g.POST("/complaints", s.Create)
	g.GET("/complaints", s.Mine)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/handler"
	"github.com/carvohq/carvo-backend/internal/middleware"
	"github.com/carvohq/carvo-backend/internal/model"
)

// RegisterAdmin registers the back-office surface: account provisioning,
// the order queue with delivery assignment, plus catalog, coupon and
// gallery management.
func RegisterAdmin(
	e *echo.Echo,
	a *handler.AdminHandler,
	cat *handler.CatalogHandler,
	cp *handler.CouponHandler,
	g *handler.GalleryHandler,
	jwtSecret string,
) {
	grp := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	grp.POST("/users", a.CreateUser)
	grp.GET("/users", a.ListUsers)
	grp.PUT("/users/:id", a.UpdateUser)

	grp.GET("/orders", a.ListOrders)
	grp.PATCH("/orders/:id/status", a.UpdateOrder)

	grp.POST("/categories", cat.CreateCategory)
	grp.POST("/coupons", cp.Create)

	// gallery writes live on the public prefix but carry the admin guard
	gallery := e.Group(
		"/v1/gallery",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	gallery.POST("/seed", g.Upload)
	gallery.DELETE("/:id", g.Delete)
}

package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carvohq/carvo-backend/internal/handler"
)

// RegisterRoutes registers the unauthenticated infrastructure endpoints:
// the health check used by load balancers and the Prometheus scrape
// endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers the guest browse surface. No JWT or role
// middleware applies here; catalog and gallery reads are open to anyone.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, g *handler.GalleryHandler) {
	e.GET("/v1/cars", cat.ListCars)
	e.GET("/v1/categories", cat.ListCategories)
	e.GET("/v1/parts", cat.ListParts)
	e.GET("/v1/parts/:id", cat.GetPart)
	e.GET("/v1/gallery", g.List)
}

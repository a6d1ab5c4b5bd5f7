package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
)

// CatalogHandler serves the public browse surface: cars, categories and
// parts. Seller-facing part management lives here too since it shares the
// same repositories.
type CatalogHandler struct {
	Cars       *repository.CarRepo
	Categories *repository.CategoryRepo
	Parts      *repository.PartRepo
}

func NewCatalogHandler(cars *repository.CarRepo, cats *repository.CategoryRepo, parts *repository.PartRepo) *CatalogHandler {
	return &CatalogHandler{Cars: cars, Categories: cats, Parts: parts}
}

type partResp struct {
	ID            uint64 `json:"id"`
	CategoryID    uint64 `json:"category_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PricePaise    int64  `json:"price_paise"`
	StockQuantity int32  `json:"stock_quantity"`
	InStock       bool   `json:"in_stock"`
	ImageURL      string `json:"image_url"`
}

func toPartResp(p model.Part) partResp {
	return partResp{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		Description:   p.Description,
		PricePaise:    p.PricePaise,
		StockQuantity: p.StockQuantity,
		InStock:       p.StockQuantity > 0,
		ImageURL:      p.ImageURL,
	}
}

// ListCars: all car models available for customization previews.
func (h *CatalogHandler) ListCars(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cars, err := h.Cars.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cars": cars})
}

// ListCategories: browse categories with their live part counts.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(cats))
	for _, cat := range cats {
		out = append(out, echo.Map{
			"id":         cat.ID,
			"name":       cat.Name,
			"slug":       cat.Slug,
			"part_count": cat.PartCount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// CreateCategory (admin): slug is derived from the name, never client-supplied.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	name := strings.TrimSpace(req.Name)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Categories.Create(ctx, name, slug.Make(name))
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "name": name, "slug": slug.Make(name)})
}

// ListParts: public listing with optional ?category= (slug) and ?q=
// filters.
func (h *CatalogHandler) ListParts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var categoryID uint64
	if catSlug := strings.TrimSpace(c.QueryParam("category")); catSlug != "" {
		cat, err := h.Categories.GetBySlug(ctx, catSlug)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		categoryID = cat.ID
	}

	parts, err := h.Parts.List(ctx, categoryID, strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]partResp, 0, len(parts))
	for _, p := range parts {
		out = append(out, toPartResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"parts": out})
}

// GetPart: single part detail.
func (h *CatalogHandler) GetPart(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "part not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPartResp(p))
}

type createPartReq struct {
	CategoryID    uint64 `json:"category_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PricePaise    int64  `json:"price_paise"`
	StockQuantity int32  `json:"stock_quantity"`
	ImageURL      string `json:"image_url"`
}

// CreatePart (seller): inserts the part and bumps the category counter in
// one transaction.
func (h *CatalogHandler) CreatePart(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/category_id required"})
	}
	if req.PricePaise <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_paise must be positive"})
	}
	if req.StockQuantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock_quantity must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Part{
		CategoryID:    req.CategoryID,
		SellerID:      sellerID,
		Name:          req.Name,
		Description:   req.Description,
		PricePaise:    req.PricePaise,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
	}
	if err := h.Parts.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toPartResp(p))
}

// DeletePart (seller/admin): sellers may only remove their own listings.
func (h *CatalogHandler) DeletePart(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "part not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if role != model.RoleAdmin && p.SellerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
	}
	if err := h.Parts.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// parseUintQuery is shared by list endpoints with numeric filters.
func parseUintQuery(c echo.Context, name string) (uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

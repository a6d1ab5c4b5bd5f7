package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
)

// GalleryHandler manages the public landing-page gallery. Reads are
// public; writes are admin only.
type GalleryHandler struct {
	Gallery *repository.GalleryRepo
}

func NewGalleryHandler(g *repository.GalleryRepo) *GalleryHandler {
	return &GalleryHandler{Gallery: g}
}

// List: all gallery items, newest first.
func (h *GalleryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Gallery.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type galleryItemReq struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

// Upload (admin): add one or more gallery images in a single batch.
func (h *GalleryHandler) Upload(c echo.Context) error {
	var req struct {
		Items []galleryItemReq `json:"items"`
	}
	if err := c.Bind(&req); err != nil || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items required"})
	}
	items := make([]model.GalleryItem, 0, len(req.Items))
	for _, it := range req.Items {
		if strings.TrimSpace(it.ImageURL) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs image_url"})
		}
		items = append(items, model.GalleryItem{
			Title:    strings.TrimSpace(it.Title),
			ImageURL: strings.TrimSpace(it.ImageURL),
			Caption:  it.Caption,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Gallery.InsertBulk(ctx, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "insert failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"inserted": len(items)})
}

// Delete (admin): remove one image.
func (h *GalleryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Gallery.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

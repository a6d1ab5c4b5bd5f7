package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
)

// ProviderHandler is the service provider surface: answer quotation
// requests and work bookings through their lifecycle.
type ProviderHandler struct {
	Quotations    *repository.QuotationRepo
	BookingRepo   *repository.BookingRepo
	Notifications *repository.NotificationRepo
}

func NewProviderHandler(q *repository.QuotationRepo, b *repository.BookingRepo, n *repository.NotificationRepo) *ProviderHandler {
	return &ProviderHandler{Quotations: q, BookingRepo: b, Notifications: n}
}

// OpenQuotations: unclaimed pending requests plus the provider's own.
func (h *ProviderHandler) OpenQuotations(c echo.Context) error {
	pid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Quotations.ListForProvider(ctx, pid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, q := range list {
		out = append(out, echo.Map{
			"id":                    q.ID,
			"customization_id":      q.CustomizationID,
			"estimated_price_paise": q.EstimatedPricePaise,
			"status":                q.Status,
			"created_at":            q.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"quotations": out})
}

type respondQuotationReq struct {
	Accept     bool  `json:"accept"`
	PricePaise int64 `json:"price_paise"`
}

// RespondQuotation: claim a pending request and answer it with a price
// (or decline). Two providers responding at once serialize on the
// guarded update; the loser gets a 409.
func (h *ProviderHandler) RespondQuotation(c echo.Context) error {
	pid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req respondQuotationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.QuotationRejected
	if req.Accept {
		if req.PricePaise <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_paise must be positive"})
		}
		status = model.QuotationAccepted
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Quotations.Respond(ctx, id, pid, req.PricePaise, status); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "quotation already answered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	q, err := h.Quotations.GetByID(ctx, id)
	if err == nil {
		msg := "A provider declined your quotation request."
		if status == model.QuotationAccepted {
			msg = "A provider quoted your customization. Review the estimate and book when ready."
		}
		_ = h.Notifications.Insert(ctx, &model.Notification{
			UserID:          q.UserID,
			Type:            model.NotifyQuotation,
			Title:           "Quotation answered",
			Message:         msg,
			RelatedEntityID: &id,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// Bookings: appointments assigned to the calling provider.
func (h *ProviderHandler) Bookings(c echo.Context) error {
	pid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.BookingRepo.ListByProvider(ctx, pid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, b := range list {
		out = append(out, echo.Map{
			"id":             b.ID,
			"user_id":        b.UserID,
			"quotation_id":   b.QuotationID,
			"scheduled_date": b.ScheduledDate.Format("2006-01-02"),
			"status":         b.Status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

type updateBookingReq struct {
	Status string `json:"status"`
}

// UpdateBooking: move an owned booking along its lifecycle. Illegal jumps
// are rejected before touching the database; concurrent updates lose on
// the guarded write.
func (h *ProviderHandler) UpdateBooking(c echo.Context) error {
	pid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next := model.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !next.IsValid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.BookingRepo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.ProviderID != pid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	if !b.Status.CanTransitionTo(next) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal transition", "from": b.Status, "to": next})
	}
	if err := h.BookingRepo.UpdateStatus(ctx, id, b.Status, next); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking state changed; retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	_ = h.Notifications.Insert(ctx, &model.Notification{
		UserID:          b.UserID,
		Type:            model.NotifyBooking,
		Title:           "Booking updated",
		Message:         "Your booking is now " + string(next) + ".",
		RelatedEntityID: &id,
	})
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": next})
}

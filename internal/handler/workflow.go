package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
)

// WorkflowHandler is the customer side of the customization pipeline:
// save a customization, request a quotation on it, then book the work
// once a provider has priced it.
type WorkflowHandler struct {
	Cars           *repository.CarRepo
	Customizations *repository.CustomizationRepo
	Quotations     *repository.QuotationRepo
	Bookings       *repository.BookingRepo
	Notifications  *repository.NotificationRepo
}

func NewWorkflowHandler(cars *repository.CarRepo, cz *repository.CustomizationRepo, q *repository.QuotationRepo, b *repository.BookingRepo, n *repository.NotificationRepo) *WorkflowHandler {
	return &WorkflowHandler{Cars: cars, Customizations: cz, Quotations: q, Bookings: b, Notifications: n}
}

type createCustomizationReq struct {
	CarID         uint64          `json:"car_id"`
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration"`
}

// CreateCustomization: save a car customization. The preview token is a
// server-generated UUID clients use for shareable render links.
func (h *WorkflowHandler) CreateCustomization(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createCustomizationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CarID == 0 || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "car_id and name required"})
	}
	if len(req.Configuration) == 0 || !json.Valid(req.Configuration) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "configuration must be a JSON object"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Cars.GetByID(ctx, req.CarID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cz := model.Customization{
		UserID:        uid,
		CarID:         req.CarID,
		Name:          strings.TrimSpace(req.Name),
		Configuration: req.Configuration,
		PreviewToken:  uuid.NewString(),
	}
	if err := h.Customizations.Create(ctx, &cz); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":            cz.ID,
		"car_id":        cz.CarID,
		"name":          cz.Name,
		"preview_token": cz.PreviewToken,
	})
}

// MyCustomizations: the caller's saved customizations.
func (h *WorkflowHandler) MyCustomizations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Customizations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, cz := range list {
		out = append(out, echo.Map{
			"id":            cz.ID,
			"car_id":        cz.CarID,
			"name":          cz.Name,
			"configuration": cz.Configuration,
			"preview_token": cz.PreviewToken,
			"created_at":    cz.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"customizations": out})
}

type requestQuotationReq struct {
	CustomizationID uint64 `json:"customization_id"`
}

// RequestQuotation: ask providers to price a saved customization.
func (h *WorkflowHandler) RequestQuotation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req requestQuotationReq
	if err := c.Bind(&req); err != nil || req.CustomizationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customization_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cz, err := h.Customizations.GetByID(ctx, req.CustomizationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customization not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if cz.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your customization"})
	}

	q := model.Quotation{
		UserID:          uid,
		CustomizationID: cz.ID,
		Status:          model.QuotationPending,
	}
	if err := h.Quotations.Create(ctx, &q); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": q.ID, "status": q.Status})
}

// MyQuotations: the caller's quote requests with any provider responses.
func (h *WorkflowHandler) MyQuotations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Quotations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, q := range list {
		out = append(out, echo.Map{
			"id":                    q.ID,
			"customization_id":      q.CustomizationID,
			"provider_id":           q.ProviderID,
			"estimated_price_paise": q.EstimatedPricePaise,
			"status":                q.Status,
			"created_at":            q.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"quotations": out})
}

type createBookingReq struct {
	QuotationID   uint64 `json:"quotation_id"`
	ScheduledDate string `json:"scheduled_date"` // YYYY-MM-DD
}

// CreateBooking: schedule the work on an accepted quotation. The booking
// inherits the quotation's provider and price.
func (h *WorkflowHandler) CreateBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil || req.QuotationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quotation_id required"})
	}
	when, err := time.Parse("2006-01-02", strings.TrimSpace(req.ScheduledDate))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_date must be YYYY-MM-DD"})
	}
	if when.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_date is in the past"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q, err := h.Quotations.GetByID(ctx, req.QuotationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if q.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your quotation"})
	}
	if q.Status != model.QuotationAccepted || q.ProviderID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "quotation has not been accepted by a provider"})
	}

	b := model.Booking{
		UserID:        uid,
		ProviderID:    *q.ProviderID,
		QuotationID:   q.ID,
		ScheduledDate: when,
		Status:        model.BookingPending,
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	_ = h.Notifications.Insert(ctx, &model.Notification{
		UserID:          *q.ProviderID,
		Type:            model.NotifyBooking,
		Title:           "New booking",
		Message:         "A customer booked your quoted service for " + when.Format("2 Jan 2006") + ".",
		RelatedEntityID: &b.ID,
	})

	return c.JSON(http.StatusCreated, echo.Map{"id": b.ID, "status": b.Status, "scheduled_date": req.ScheduledDate})
}

// MyBookings: the caller's service appointments.
func (h *WorkflowHandler) MyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, b := range list {
		out = append(out, echo.Map{
			"id":             b.ID,
			"provider_id":    b.ProviderID,
			"quotation_id":   b.QuotationID,
			"scheduled_date": b.ScheduledDate.Format("2006-01-02"),
			"status":         b.Status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// CancelBooking: customer cancels before the work starts.
func (h *WorkflowHandler) CancelBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	if !b.Status.CanTransitionTo(model.BookingCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be cancelled", "status": b.Status})
	}
	if err := h.Bookings.UpdateStatus(ctx, id, b.Status, model.BookingCancelled); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking state changed; retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	_ = h.Notifications.Insert(ctx, &model.Notification{
		UserID:          b.ProviderID,
		Type:            model.NotifyBooking,
		Title:           "Booking cancelled",
		Message:         "A customer cancelled their booking.",
		RelatedEntityID: &id,
	})
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.BookingCancelled})
}

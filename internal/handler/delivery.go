package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/queue"
	"github.com/carvohq/carvo-backend/internal/repository"
	queue_publisher "github.com/carvohq/carvo-backend/internal/service"
	"github.com/carvohq/carvo-backend/internal/utils"
)

// deliveryOTPTTL is how long a handoff code stays valid after start.
const deliveryOTPTTL = 10 * time.Minute

// DeliveryHandler is the delivery agent surface. Start and Verify both
// lock the order row, so two agents (or a double-tap) serialize instead
// of racing.
type DeliveryHandler struct {
	DB            *sql.DB
	Orders        *repository.OrderRepo
	Payments      *repository.PaymentRepo
	Notifications *repository.NotificationRepo
}

func NewDeliveryHandler(db *sql.DB, o *repository.OrderRepo, p *repository.PaymentRepo, n *repository.NotificationRepo) *DeliveryHandler {
	return &DeliveryHandler{DB: db, Orders: o, Payments: p, Notifications: n}
}

// Assignments: orders assigned to the calling agent that still need
// moving (SHIPPED or OUT_FOR_DELIVERY).
func (h *DeliveryHandler) Assignments(c echo.Context) error {
	agentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListAssignments(ctx, agentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, echo.Map{
			"id":               o.ID,
			"status":           o.Status,
			"total_paise":      o.TotalPaise,
			"shipping_address": o.ShippingAddress,
			"otp_expires_at":   o.OTPExpiresAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// Start: begin the handoff. Generates a fresh six-digit code, moves the
// order to OUT_FOR_DELIVERY and dispatches the code to the customer out
// of band. The code is never returned to the agent.
//
// Calling start again while an unexpired code is active is a 409; once
// the code has expired or been exhausted, start rotates in a new one.
func (h *DeliveryHandler) Start(c echo.Context) error {
	agentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := h.Orders.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if o.DeliveryUserID == nil || *o.DeliveryUserID != agentID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "order not assigned to you"})
	}

	now := time.Now().UTC()
	switch o.Status {
	case model.OrderShipped:
		// first start
	case model.OrderOutForDelivery:
		if o.OTPExpiresAt != nil && now.Before(*o.OTPExpiresAt) && o.OTPAttempts < model.MaxOTPAttempts {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":          "delivery already started",
				"otp_expires_at": o.OTPExpiresAt,
			})
		}
		// stale code, rotate
	default:
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is not ready for delivery", "status": o.Status})
	}

	code, err := utils.NewOTP()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code generation failed"})
	}
	exp := now.Add(deliveryOTPTTL)
	if err := h.Orders.SetDeliveryOTPTx(ctx, tx, id, code, exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = queue_publisher.Publish(ctx, queue.KindDeliveryOTP, queue.DeliveryOTPEvent{
		OrderID:    id,
		CustomerID: o.UserID,
		Code:       code,
		ExpiresAt:  exp.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"id":             id,
		"status":         model.OrderOutForDelivery,
		"otp_expires_at": exp,
	})
}

type verifyDeliveryReq struct {
	OTP string `json:"otp"`
}

// Verify: check the code the customer read out. On a match the order is
// DELIVERED, the spent code is cleared and any pending COD payment
// settles in the same transaction.
func (h *DeliveryHandler) Verify(c echo.Context) error {
	agentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req verifyDeliveryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.OTP) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "otp required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := h.Orders.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if o.DeliveryUserID == nil || *o.DeliveryUserID != agentID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "order not assigned to you"})
	}
	if o.Status == model.OrderDelivered {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already delivered"})
	}

	switch model.EvaluateDeliveryOTP(&o, strings.TrimSpace(req.OTP), time.Now().UTC()) {
	case model.OTPNotIssued:
		return c.JSON(http.StatusConflict, echo.Map{"error": "delivery not started"})
	case model.OTPExpired:
		return c.JSON(http.StatusGone, echo.Map{"error": "code expired; restart the delivery"})
	case model.OTPExhausted:
		return c.JSON(http.StatusGone, echo.Map{"error": "too many attempts; restart the delivery"})
	case model.OTPMismatch:
		if err := h.Orders.RecordOTPAttemptTx(ctx, tx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
		}
		committed = true
		remaining := model.MaxOTPAttempts - int(o.OTPAttempts) - 1
		if remaining < 0 {
			remaining = 0
		}
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":              "incorrect code",
			"attempts_remaining": remaining,
		})
	}

	if err := h.Orders.CompleteDeliveryTx(ctx, tx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := h.Payments.CompletePendingForOrderTx(ctx, tx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment settle failed"})
	}
	if err := h.Notifications.InsertTx(ctx, tx, &model.Notification{
		UserID:          o.UserID,
		Type:            model.NotifyOrderDelivered,
		Title:           "Order delivered",
		Message:         "Your order has been delivered. Thank you for shopping with Carvo.",
		RelatedEntityID: &id,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "notification failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = queue_publisher.Publish(ctx, queue.KindOrderDelivered, queue.OrderEvent{
		OrderID:    id,
		UserID:     o.UserID,
		TotalPaise: o.TotalPaise,
		Status:     string(model.OrderDelivered),
	})

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.OrderDelivered})
}

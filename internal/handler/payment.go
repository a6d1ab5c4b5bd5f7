package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/config"
	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
	"github.com/carvohq/carvo-backend/internal/utils"
)

// PaymentHandler implements the UPI/COD payment flow. Amounts are always
// derived from the order or booking row, never trusted from the client.
type PaymentHandler struct {
	Cfg           config.Config
	DB            *sql.DB
	Payments      *repository.PaymentRepo
	Orders        *repository.OrderRepo
	Bookings      *repository.BookingRepo
	Quotations    *repository.QuotationRepo
	Notifications *repository.NotificationRepo
}

func NewPaymentHandler(cfg config.Config, db *sql.DB, p *repository.PaymentRepo, o *repository.OrderRepo, b *repository.BookingRepo, q *repository.QuotationRepo, n *repository.NotificationRepo) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, DB: db, Payments: p, Orders: o, Bookings: b, Quotations: q, Notifications: n}
}

// UPIConfig: merchant details the client needs to render its UPI screen.
func (h *PaymentHandler) UPIConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"vpa":        h.Cfg.UPIVPA,
		"payee_name": h.Cfg.UPIPayeeName,
		"currency":   "INR",
	})
}

type createPaymentReq struct {
	OrderID   uint64 `json:"order_id"`
	BookingID uint64 `json:"booking_id"`
	Method    string `json:"method"`
}

// Create: open a payment against exactly one order or booking. UPI
// payments get a deep link back; COD payments stay PENDING until the
// delivery handoff settles them.
func (h *PaymentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method != model.PaymentMethodUPI && method != model.PaymentMethodCOD {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method must be UPI or COD"})
	}
	if (req.OrderID == 0) == (req.BookingID == 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one of order_id or booking_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var amount int64
	var note string
	p := model.Payment{
		Method:    method,
		Status:    model.PaymentPending,
		Reference: uuid.NewString(),
	}

	switch {
	case req.OrderID != 0:
		o, err := h.Orders.GetByID(ctx, req.OrderID)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if o.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
		}
		if o.Status != model.OrderPending {
			return c.JSON(http.StatusConflict, echo.Map{"error": "order is not awaiting payment", "status": o.Status})
		}
		amount = o.TotalPaise
		note = "Carvo order"
		p.OrderID = &req.OrderID
	default:
		b, err := h.Bookings.GetByID(ctx, req.BookingID)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if b.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
		}
		q, err := h.Quotations.GetByID(ctx, b.QuotationID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if q.EstimatedPricePaise == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking has no quoted price"})
		}
		amount = *q.EstimatedPricePaise
		note = "Carvo service booking"
		p.BookingID = &req.BookingID
	}

	p.AmountPaise = amount
	if err := h.Payments.Create(ctx, &p); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	// COD orders start processing right away; the payment settles at the
	// delivery handoff.
	if method == model.PaymentMethodCOD && p.OrderID != nil {
		if err := h.advanceOrderToProcessing(ctx, *p.OrderID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order update failed"})
		}
	}

	resp := echo.Map{
		"id":           p.ID,
		"reference":    p.Reference,
		"amount_paise": p.AmountPaise,
		"method":       p.Method,
		"status":       p.Status,
	}
	if method == model.PaymentMethodUPI {
		resp["upi_deep_link"] = utils.UPIDeepLink(h.Cfg.UPIVPA, h.Cfg.UPIPayeeName, amount, note)
	}
	return c.JSON(http.StatusCreated, resp)
}

// advanceOrderToProcessing moves a PENDING order forward under a row
// lock. Orders already past PENDING are left alone.
func (h *PaymentHandler) advanceOrderToProcessing(ctx context.Context, orderID uint64) error {
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	o, err := h.Orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if o.Status == model.OrderPending {
		if err := h.Orders.UpdateStatusTx(ctx, tx, orderID, model.OrderProcessing); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type confirmPaymentReq struct {
	PaymentID            uint64 `json:"payment_id"`
	TransactionReference string `json:"transaction_reference"`
}

// confirmGuard checks a locked payment against the caller before the
// completion write. ownerID is the owner of the linked order or booking;
// both targets get the same treatment so a guessed payment id never
// settles someone else's payment. A zero status means the confirm may
// proceed.
func confirmGuard(p model.Payment, ownerID, callerID uint64) (int, string) {
	if !p.Status.CanTransitionTo(model.PaymentCompleted) {
		return http.StatusConflict, "payment already settled"
	}
	if p.Method != model.PaymentMethodUPI {
		return http.StatusConflict, "COD payments settle at delivery"
	}
	if ownerID != callerID {
		return http.StatusForbidden, "not your payment"
	}
	return 0, ""
}

// Confirm: mark a UPI payment COMPLETED and move the order to PROCESSING.
// The reference arrives from the client and is stored as-is; that trust
// boundary is part of the flow, there is no gateway callback. A second
// confirm on the same payment is a 409, never a double apply.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil || req.PaymentID == 0 || strings.TrimSpace(req.TransactionReference) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_id and transaction_reference required"})
	}
	id := req.PaymentID

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

	p, err := h.Payments.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var (
		ownerID uint64
		order   *model.Order
	)
	switch {
	case p.OrderID != nil:
		o, err := h.Orders.GetForUpdateTx(ctx, tx, *p.OrderID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		ownerID = o.UserID
		order = &o
	case p.BookingID != nil:
		b, err := h.Bookings.GetByID(ctx, *p.BookingID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		ownerID = b.UserID
	}
	if status, msg := confirmGuard(p, ownerID, uid); status != 0 {
		body := echo.Map{"error": msg}
		if status == http.StatusConflict {
			body["status"] = p.Status
		}
		return c.JSON(status, body)
	}

	if order != nil {
		if order.Status == model.OrderPending {
			if err := h.Orders.UpdateStatusTx(ctx, tx, order.ID, model.OrderProcessing); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order update failed"})
			}
		}
		if err := h.Notifications.InsertTx(ctx, tx, &model.Notification{
			UserID:          uid,
			Type:            model.NotifyPayment,
			Title:           "Payment received",
			Message:         "Payment of ₹" + utils.PaiseToRupees(p.AmountPaise) + " received. Your order is being processed.",
			RelatedEntityID: p.OrderID,
		}); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "notification failed"})
		}
	} else {
		if err := h.Notifications.InsertTx(ctx, tx, &model.Notification{
			UserID:          uid,
			Type:            model.NotifyPayment,
			Title:           "Payment received",
			Message:         "Payment of ₹" + utils.PaiseToRupees(p.AmountPaise) + " received for your service booking.",
			RelatedEntityID: p.BookingID,
		}); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "notification failed"})
		}
	}

	if err := h.Payments.CompleteTx(ctx, tx, id, strings.TrimSpace(req.TransactionReference)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.PaymentCompleted})
}

// ListForOrder: payments recorded against one of the caller's orders.
func (h *PaymentHandler) ListForOrder(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if role != model.RoleAdmin && o.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
	}

	payments, err := h.Payments.ListByOrder(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(payments))
	for _, p := range payments {
		out = append(out, echo.Map{
			"id":             p.ID,
			"amount_paise":   p.AmountPaise,
			"method":         p.Method,
			"status":         p.Status,
			"reference":      p.Reference,
			"transaction_id": p.TransactionID,
			"created_at":     p.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
	"github.com/carvohq/carvo-backend/internal/utils"
)

// InvoiceHandler serves invoices addressed by order ID. GET returns 404
// until an invoice exists; POST generate is idempotent, so clients that
// hit the 404 simply generate and re-fetch. Concurrent generates are
// safe because the unique key on orders makes the loser re-read.
type InvoiceHandler struct {
	Invoices *repository.InvoiceRepo
	Orders   *repository.OrderRepo
}

func NewInvoiceHandler(inv *repository.InvoiceRepo, o *repository.OrderRepo) *InvoiceHandler {
	return &InvoiceHandler{Invoices: inv, Orders: o}
}

// loadOrder fetches the order and enforces ownership. Admins may read
// any invoice.
func (h *InvoiceHandler) loadOrder(c echo.Context, ctx context.Context) (model.Order, bool, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.Order{}, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	orderID, err := pathID(c, "id")
	if err != nil {
		return model.Order{}, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	o, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Order{}, false, c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return model.Order{}, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if role != model.RoleAdmin && o.UserID != uid {
		return model.Order{}, false, c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
	}
	return o, true, nil
}

// Get: the invoice for an order, or 404 when none has been generated.
func (h *InvoiceHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, ok, err := h.loadOrder(c, ctx)
	if !ok {
		return err
	}

	inv, err := h.Invoices.GetByOrder(ctx, o.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not generated yet"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, invoiceMap(inv))
}

// Generate: create the invoice from the delivered order's amounts, or
// return the existing one. Calling it twice yields the same document.
func (h *InvoiceHandler) Generate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, ok, err := h.loadOrder(c, ctx)
	if !ok {
		return err
	}
	if o.Status != model.OrderDelivered {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invoice is available once the order is delivered"})
	}

	inv, err := h.Invoices.GetByOrder(ctx, o.ID)
	if err == nil {
		return c.JSON(http.StatusOK, invoiceMap(inv))
	}
	if err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	issued := time.Now().UTC()
	inv = model.Invoice{
		OrderID:       o.ID,
		Number:        utils.InvoiceNumber(o.ID, issued),
		SubtotalPaise: o.SubtotalPaise,
		DiscountPaise: o.DiscountPaise,
		TotalPaise:    o.TotalPaise,
		IssuedAt:      issued,
	}
	if cerr := h.Invoices.Create(ctx, &inv); cerr != nil {
		if cerr != repository.ErrConflict {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
		}
		// lost the race; the winner's row is canonical
		inv, err = h.Invoices.GetByOrder(ctx, o.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, invoiceMap(inv))
	}
	return c.JSON(http.StatusCreated, invoiceMap(inv))
}

func invoiceMap(inv model.Invoice) echo.Map {
	return echo.Map{
		"order_id":       inv.OrderID,
		"number":         inv.Number,
		"subtotal_paise": inv.SubtotalPaise,
		"discount_paise": inv.DiscountPaise,
		"total_paise":    inv.TotalPaise,
		"issued_at":      inv.IssuedAt,
	}
}

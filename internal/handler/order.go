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
)

// OrderHandler owns the checkout transaction and the customer order views.
// Checkout locks the part rows, snapshots prices, consumes the coupon and
// writes the notification, all in one transaction; the queue event goes
// out only after commit.
type OrderHandler struct {
	DB            *sql.DB
	Orders        *repository.OrderRepo
	Parts         *repository.PartRepo
	Coupons       *repository.CouponRepo
	Notifications *repository.NotificationRepo
}

func NewOrderHandler(db *sql.DB, o *repository.OrderRepo, p *repository.PartRepo, cp *repository.CouponRepo, n *repository.NotificationRepo) *OrderHandler {
	return &OrderHandler{DB: db, Orders: o, Parts: p, Coupons: cp, Notifications: n}
}

type checkoutItem struct {
	PartID   uint64 `json:"part_id"`
	Quantity uint32 `json:"quantity"`
}
type checkoutReq struct {
	Items           []checkoutItem `json:"items"`
	ShippingAddress string         `json:"shipping_address"`
	CouponCode      string         `json:"coupon_code"`
}

type orderResp struct {
	ID              uint64            `json:"id"`
	Status          model.OrderStatus `json:"status"`
	SubtotalPaise   int64             `json:"subtotal_paise"`
	DiscountPaise   int64             `json:"discount_paise"`
	TotalPaise      int64             `json:"total_paise"`
	CouponCode      *string           `json:"coupon_code,omitempty"`
	ShippingAddress string            `json:"shipping_address"`
	CreatedAt       time.Time         `json:"created_at"`
}

func toOrderResp(o model.Order) orderResp {
	return orderResp{
		ID:              o.ID,
		Status:          o.Status,
		SubtotalPaise:   o.SubtotalPaise,
		DiscountPaise:   o.DiscountPaise,
		TotalPaise:      o.TotalPaise,
		CouponCode:      o.CouponCode,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
	}
}

// Checkout: place an order. Amounts come from the parts table at lock
// time, never from the request body; the coupon discount is re-derived
// server side the same way /coupons/validate derives it.
func (h *OrderHandler) Checkout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items required"})
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shipping_address required"})
	}
	seen := make(map[uint64]bool, len(req.Items))
	ids := make([]uint64, 0, len(req.Items))
	for _, it := range req.Items {
		if it.PartID == 0 || it.Quantity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs part_id and quantity"})
		}
		if seen[it.PartID] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate part in items"})
		}
		seen[it.PartID] = true
		ids = append(ids, it.PartID)
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

	locked, err := h.Parts.LockByIDsTx(ctx, tx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock parts failed"})
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		p, ok := locked[it.PartID]
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "part not found"})
		}
		if err := h.Parts.DecrementStockTx(ctx, tx, it.PartID, it.Quantity); err != nil {
			if err == repository.ErrInsufficientStock {
				return c.JSON(http.StatusConflict, echo.Map{
					"error":   "insufficient stock",
					"part_id": it.PartID,
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stock update failed"})
		}
		items = append(items, model.OrderItem{
			PartID:     it.PartID,
			Quantity:   it.Quantity,
			PricePaise: p.PricePaise, // snapshot at purchase time
		})
	}
	subtotal := model.ItemsSubtotal(items)

	var discount int64
	var couponCode *string
	if code := strings.ToUpper(strings.TrimSpace(req.CouponCode)); code != "" {
		coupon, err := h.Coupons.GetByCodeTx(ctx, tx, code)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown coupon"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "coupon lookup failed"})
		}
		discount, err = coupon.Discount(subtotal, time.Now().UTC())
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		if err := h.Coupons.ConsumeTx(ctx, tx, coupon.ID); err != nil {
			if err == model.ErrCouponExhausted {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "coupon usage limit reached"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "coupon consume failed"})
		}
		couponCode = &code
	}

	order := model.Order{
		UserID:          uid,
		Status:          model.OrderPending,
		SubtotalPaise:   subtotal,
		DiscountPaise:   discount,
		TotalPaise:      model.OrderTotal(subtotal, discount),
		CouponCode:      couponCode,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
	}
	if err := h.Orders.CreateTx(ctx, tx, &order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := h.Orders.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create items failed"})
	}

	if err := h.Notifications.InsertTx(ctx, tx, &model.Notification{
		UserID:          uid,
		Type:            model.NotifyOrderPlaced,
		Title:           "Order placed",
		Message:         "Your order has been placed and is awaiting payment.",
		RelatedEntityID: &order.ID,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "notification failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = queue_publisher.Publish(ctx, queue.KindOrderPlaced, queue.OrderEvent{
		OrderID:    order.ID,
		UserID:     uid,
		TotalPaise: order.TotalPaise,
		Status:     string(order.Status),
	})

	return c.JSON(http.StatusCreated, toOrderResp(order))
}

// MyOrders: the caller's orders with their items, newest first.
func (h *OrderHandler) MyOrders(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	itemsByOrder, err := h.Orders.ItemsForUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		items := make([]echo.Map, 0, len(itemsByOrder[o.ID]))
		for _, it := range itemsByOrder[o.ID] {
			items = append(items, echo.Map{
				"part_id":     it.PartID,
				"quantity":    it.Quantity,
				"price_paise": it.PricePaise,
			})
		}
		out = append(out, echo.Map{"order": toOrderResp(o), "items": items})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// GetOrder: one order with its items. Customers see only their own;
// admins see any.
func (h *OrderHandler) GetOrder(c echo.Context) error {
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

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if role != model.RoleAdmin && o.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
	}

	items, err := h.Orders.Items(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	itemsOut := make([]echo.Map, 0, len(items))
	for _, it := range items {
		itemsOut = append(itemsOut, echo.Map{
			"part_id":     it.PartID,
			"quantity":    it.Quantity,
			"price_paise": it.PricePaise,
		})
	}
	resp := toOrderResp(o)
	return c.JSON(http.StatusOK, echo.Map{"order": resp, "items": itemsOut})
}

// CancelOrder: customer cancels before handoff. Stock returns to the
// shelves inside the same transaction.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	uid, err := getUserID(c)
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
	if o.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
	}
	if !o.Status.CanTransitionTo(model.OrderCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order can no longer be cancelled", "status": o.Status})
	}

	if err := restockOrderTx(ctx, tx, h.Orders, h.Parts, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restock failed"})
	}
	if err := h.Orders.UpdateStatusTx(ctx, tx, id, model.OrderCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := h.Notifications.InsertTx(ctx, tx, &model.Notification{
		UserID:          uid,
		Type:            model.NotifyOrderStatus,
		Title:           "Order cancelled",
		Message:         "Your order has been cancelled.",
		RelatedEntityID: &id,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "notification failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.OrderCancelled})
}

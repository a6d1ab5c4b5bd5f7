package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/config"
	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
)

// AdminHandler is the back-office surface: staff provisioning, the order
// queue and delivery assignment. Every mutation lands in the audit log.
type AdminHandler struct {
	Cfg           config.Config
	DB            *sql.DB
	Users         *repository.UserRepo
	Orders        *repository.OrderRepo
	Parts         *repository.PartRepo
	Notifications *repository.NotificationRepo
	Audit         *repository.AuditRepo
}

func NewAdminHandler(cfg config.Config, db *sql.DB, u *repository.UserRepo, o *repository.OrderRepo, p *repository.PartRepo, n *repository.NotificationRepo, a *repository.AuditRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, DB: db, Users: u, Orders: o, Parts: p, Notifications: n, Audit: a}
}

type provisionUserReq struct {
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Role     string        `json:"role"`
	Name     string        `json:"name"`
	Phone    string        `json:"phone"`
	Profile  model.Profile `json:"profile"`
}

// CreateUser: provision a staff account (seller, provider, delivery,
// support, admin). Admin-created accounts skip email verification.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req provisionUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.CreateVerified(ctx, req.Email, req.Password, role, req.Name, req.Phone, h.Cfg.BcryptCost, req.Profile)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	_ = h.Audit.Record(ctx, actorID, "USER_CREATED", "user", uid, "role="+role)

	return c.JSON(http.StatusCreated, echo.Map{"id": uid, "email": req.Email, "role": role})
}

// ListUsers: all accounts, optionally filtered by ?role=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	role := strings.ToUpper(strings.TrimSpace(c.QueryParam("role")))
	if role != "" && !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, echo.Map{
			"id":          u.ID,
			"email":       u.Email,
			"role":        u.Role,
			"name":        u.Name,
			"phone":       u.Phone,
			"is_verified": u.IsVerified,
			"is_active":   u.IsActive,
			"created_at":  u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type updateUserReq struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Active *bool  `json:"active"`
}

// UpdateUser: rename, re-phone or toggle an account. Deactivation is the
// ban mechanism; tokens already issued die at the auth middleware.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	name := u.Name
	if strings.TrimSpace(req.Name) != "" {
		name = strings.TrimSpace(req.Name)
	}
	phone := u.Phone
	if strings.TrimSpace(req.Phone) != "" {
		phone = strings.TrimSpace(req.Phone)
	}
	active := u.IsActive
	if req.Active != nil {
		active = *req.Active
	}
	if err := h.Users.Update(ctx, id, name, phone, active); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	_ = h.Audit.Record(ctx, actorID, "USER_UPDATED", "user", id, fmt.Sprintf("active=%t", active))

	return c.JSON(http.StatusOK, echo.Map{"id": id, "name": name, "phone": phone, "is_active": active})
}

// ListOrders: the full order queue for back-office triage.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, echo.Map{
			"id":               o.ID,
			"user_id":          o.UserID,
			"status":           o.Status,
			"total_paise":      o.TotalPaise,
			"delivery_user_id": o.DeliveryUserID,
			"created_at":       o.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

type updateOrderReq struct {
	Status         string `json:"status"`
	DeliveryUserID uint64 `json:"delivery_user_id"`
}

// UpdateOrder: advance an order through the back-office transitions.
// Moving to SHIPPED requires a delivery agent; the OTP path takes over
// from there, so DELIVERED and OUT_FOR_DELIVERY are not settable here.
func (h *AdminHandler) UpdateOrder(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next := model.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !next.IsValid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if next == model.OrderDelivered || next == model.OrderOutForDelivery {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivery transitions happen through the delivery flow"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if next == model.OrderShipped {
		if req.DeliveryUserID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivery_user_id required when shipping"})
		}
		agent, err := h.Users.GetByID(ctx, req.DeliveryUserID)
		if err != nil || agent.Role != model.RoleDelivery || !agent.IsActive {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivery_user_id is not an active delivery agent"})
		}
	}

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
	if !o.Status.CanTransitionTo(next) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal transition", "from": o.Status, "to": next})
	}

	if next == model.OrderShipped {
		if err := h.Orders.AssignDeliveryTx(ctx, tx, id, req.DeliveryUserID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign failed"})
		}
	}
	// back-office cancellation returns stock the same way the
	// customer-initiated path does
	if next == model.OrderCancelled {
		if err := restockOrderTx(ctx, tx, h.Orders, h.Parts, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restock failed"})
		}
	}
	if err := h.Orders.UpdateStatusTx(ctx, tx, id, next); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := h.Notifications.InsertTx(ctx, tx, &model.Notification{
		UserID:          o.UserID,
		Type:            model.NotifyOrderStatus,
		Title:           "Order update",
		Message:         "Your order is now " + string(next) + ".",
		RelatedEntityID: &id,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "notification failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = h.Audit.Record(ctx, actorID, "ORDER_STATUS", "order", id, string(o.Status)+"->"+string(next))

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": next})
}

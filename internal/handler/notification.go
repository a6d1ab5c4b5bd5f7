package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/carvohq/carvo-backend/internal/repository"
)

// The badge count gets polled far more often than it changes, so it is
// kept in Redis and dropped whenever the caller marks anything read.
const unreadCountTTL = 60 * time.Second

// NotificationHandler serves the in-app notification feed. All reads and
// writes are scoped to the authenticated user.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	RDB           *redis.Client
}

func NewNotificationHandler(n *repository.NotificationRepo, rdb *redis.Client) *NotificationHandler {
	return &NotificationHandler{Notifications: n, RDB: rdb}
}

func unreadCountKey(uid uint64) string {
	return fmt.Sprintf("notif:unread:%d", uid)
}

func (h *NotificationHandler) dropUnreadCount(ctx context.Context, uid uint64) {
	if h.RDB != nil {
		_ = h.RDB.Del(ctx, unreadCountKey(uid)).Err()
	}
}

// List: latest notifications, unread first, plus the unread count.
func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Notifications.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	unread, err := h.Notifications.UnreadCount(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]echo.Map, 0, len(list))
	for _, n := range list {
		out = append(out, echo.Map{
			"id":                n.ID,
			"type":              n.Type,
			"title":             n.Title,
			"message":           n.Message,
			"is_read":           n.IsRead,
			"related_entity_id": n.RelatedEntityID,
			"created_at":        n.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out, "unread_count": unread})
}

// UnreadCount: just the badge number. Served from Redis when possible;
// works fine straight off MySQL when Redis is absent.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.RDB != nil {
		if raw, err := h.RDB.Get(ctx, unreadCountKey(uid)).Result(); err == nil {
			if cached, perr := strconv.ParseUint(raw, 10, 64); perr == nil {
				return c.JSON(http.StatusOK, echo.Map{"unread_count": cached})
			}
		}
	}
	unread, err := h.Notifications.UnreadCount(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if h.RDB != nil {
		_ = h.RDB.SetEx(ctx, unreadCountKey(uid), strconv.FormatUint(unread, 10), unreadCountTTL).Err()
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": unread})
}

// MarkRead: mark one of the caller's notifications read. Marking someone
// else's notification is a 404, not a 403, so IDs stay unguessable.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
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

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.dropUnreadCount(ctx, uid)
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead: clear the caller's unread badge in one go.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Notifications.MarkAllRead(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.dropUnreadCount(ctx, uid)
	return c.NoContent(http.StatusNoContent)
}

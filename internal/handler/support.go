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

// SupportHandler covers complaints: customers file and view them,
// support agents work the queue.
type SupportHandler struct {
	Complaints    *repository.ComplaintRepo
	Notifications *repository.NotificationRepo
}

func NewSupportHandler(cp *repository.ComplaintRepo, n *repository.NotificationRepo) *SupportHandler {
	return &SupportHandler{Complaints: cp, Notifications: n}
}

type createComplaintReq struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Create: file a complaint. Priority defaults to MEDIUM.
func (h *SupportHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createComplaintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Subject) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject required"})
	}
	priority := strings.ToUpper(strings.TrimSpace(req.Priority))
	switch priority {
	case "":
		priority = model.PriorityMedium
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be LOW, MEDIUM or HIGH"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cp := model.Complaint{
		UserID:      uid,
		Subject:     strings.TrimSpace(req.Subject),
		Description: req.Description,
		Status:      model.ComplaintOpen,
		Priority:    priority,
	}
	if err := h.Complaints.Create(ctx, &cp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": cp.ID, "status": cp.Status, "priority": cp.Priority})
}

// Mine: the caller's complaints.
func (h *SupportHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Complaints.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"complaints": toComplaintMaps(list)})
}

// Queue (support/admin): every complaint, unresolved first.
func (h *SupportHandler) Queue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Complaints.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"complaints": toComplaintMaps(list)})
}

type updateComplaintReq struct {
	Status string `json:"status"`
}

// UpdateStatus (support/admin): claim and progress a ticket. The guarded
// write assigns the acting agent and rejects stale transitions.
func (h *SupportHandler) UpdateStatus(c echo.Context) error {
	agentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateComplaintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next := model.ComplaintStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cp, err := h.Complaints.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "complaint not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !cp.Status.CanTransitionTo(next) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal transition", "from": cp.Status, "to": next})
	}
	if err := h.Complaints.UpdateStatus(ctx, id, agentID, cp.Status, next); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "complaint state changed; retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	_ = h.Notifications.Insert(ctx, &model.Notification{
		UserID:          cp.UserID,
		Type:            model.NotifyComplaint,
		Title:           "Complaint updated",
		Message:         "Your complaint is now " + string(next) + ".",
		RelatedEntityID: &id,
	})
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": next})
}

func toComplaintMaps(list []model.Complaint) []echo.Map {
	out := make([]echo.Map, 0, len(list))
	for _, cp := range list {
		out = append(out, echo.Map{
			"id":          cp.ID,
			"user_id":     cp.UserID,
			"agent_id":    cp.AgentID,
			"subject":     cp.Subject,
			"description": cp.Description,
			"status":      cp.Status,
			"priority":    cp.Priority,
			"created_at":  cp.CreatedAt,
		})
	}
	return out
}

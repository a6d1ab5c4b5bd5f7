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

// CouponHandler validates coupons for the cart screen and lets admins
// create them. Validation never consumes usage; consumption happens only
// inside the checkout transaction.
type CouponHandler struct {
	Coupons *repository.CouponRepo
}

func NewCouponHandler(cp *repository.CouponRepo) *CouponHandler {
	return &CouponHandler{Coupons: cp}
}

type validateCouponReq struct {
	Code             string `json:"code"`
	OrderAmountPaise int64  `json:"order_amount_paise"`
}

// Validate: dry-run a coupon against an order amount. Deterministic for
// fixed inputs and never consumes usage, so clients can call it on every
// cart change.
func (h *CouponHandler) Validate(c echo.Context) error {
	var req validateCouponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" || req.OrderAmountPaise <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and positive order_amount_paise required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coupon, err := h.Coupons.GetByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"valid": false, "message": "unknown coupon"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	discount, err := coupon.Discount(req.OrderAmountPaise, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"valid": false, "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"coupon": echo.Map{
			"code":           coupon.Code,
			"discount_paise": discount,
			"final_paise":    model.OrderTotal(req.OrderAmountPaise, discount),
		},
		"message": "coupon applied",
	})
}

type createCouponReq struct {
	Code            string     `json:"code"`
	DiscountPercent uint32     `json:"discount_percent"`
	MinOrderPaise   int64      `json:"min_order_paise"`
	UsageLimit      uint32     `json:"usage_limit"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

// Create (admin): new coupon, code stored upper case.
func (h *CouponHandler) Create(c echo.Context) error {
	var req createCouponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	if req.DiscountPercent == 0 || req.DiscountPercent > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount_percent must be 1-100"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coupon := model.Coupon{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		MinOrderPaise:   req.MinOrderPaise,
		UsageLimit:      req.UsageLimit,
		Active:          true,
		ExpiresAt:       req.ExpiresAt,
	}
	if err := h.Coupons.Create(ctx, &coupon); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "coupon code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": coupon.ID, "code": coupon.Code})
}

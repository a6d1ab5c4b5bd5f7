package handler // handler defines http handlers

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWTAuth stores the raw claim value, which the jwt library decodes as
// float64 for numeric subjects.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// restockOrderTx returns an order's item quantities to part stock inside
// the caller's transaction. Shared by the customer and back-office
// cancellation paths so neither can leak the checkout decrement.
func restockOrderTx(ctx context.Context, tx *sql.Tx, orders *repository.OrderRepo, parts *repository.PartRepo, orderID uint64) error {
	items, err := orders.Items(ctx, orderID)
	if err != nil {
		return err
	}
	for partID, qty := range model.StockReturns(items) {
		if err := parts.IncrementStockTx(ctx, tx, partID, qty); err != nil {
			return err
		}
	}
	return nil
}

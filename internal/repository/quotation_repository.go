package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// QuotationRepo manages quote requests for customizations.
type QuotationRepo struct{ DB *sql.DB }

func NewQuotationRepo(db *sql.DB) *QuotationRepo { return &QuotationRepo{DB: db} }

const quotationColumns = "id, user_id, customization_id, provider_id, estimated_price_paise, status, created_at, updated_at"

func scanQuotation(s interface{ Scan(...any) error }) (model.Quotation, error) {
	var q model.Quotation
	err := s.Scan(&q.ID, &q.UserID, &q.CustomizationID, &q.ProviderID,
		&q.EstimatedPricePaise, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// Create inserts a pending quotation and populates the generated ID.
func (r *QuotationRepo) Create(ctx context.Context, q *model.Quotation) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO quotations (user_id, customization_id, status) VALUES (?,?,'PENDING')",
		q.UserID, q.CustomizationID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	q.ID = uint64(id)
	q.Status = model.QuotationPending
	return err
}

// GetByID fetches a quotation.
func (r *QuotationRepo) GetByID(ctx context.Context, id uint64) (model.Quotation, error) {
	return scanQuotation(r.DB.QueryRowContext(ctx,
		"SELECT "+quotationColumns+" FROM quotations WHERE id=? LIMIT 1", id))
}

// ListByUser returns a customer's quotations, newest first.
func (r *QuotationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Quotation, error) {
	return r.list(ctx, "user_id=?", userID)
}

// ListForProvider returns quotations a provider can act on: unclaimed
// pending requests plus ones already claimed by this provider.
func (r *QuotationRepo) ListForProvider(ctx context.Context, providerID uint64) ([]model.Quotation, error) {
	return r.list(ctx, "(provider_id IS NULL AND status='PENDING') OR provider_id=?", providerID)
}

func (r *QuotationRepo) list(ctx context.Context, where string, args ...any) ([]model.Quotation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+quotationColumns+" FROM quotations WHERE "+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Respond records a provider's decision on a pending quotation: the
// price plus ACCEPTED or REJECTED. The guarded UPDATE claims unowned
// requests and rejects quotations another provider already answered.
func (r *QuotationRepo) Respond(ctx context.Context, id, providerID uint64, pricePaise int64, status model.QuotationStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE quotations SET provider_id=?, estimated_price_paise=?, status=?
		 WHERE id=? AND status='PENDING' AND (provider_id IS NULL OR provider_id=?)`,
		providerID, pricePaise, status, id, providerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// BookingRepo manages service appointments created from accepted
// quotations.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = "id, user_id, provider_id, quotation_id, scheduled_date, status, created_at, updated_at"

func scanBooking(s interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	err := s.Scan(&b.ID, &b.UserID, &b.ProviderID, &b.QuotationID,
		&b.ScheduledDate, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a pending booking and populates the generated ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO bookings (user_id, provider_id, quotation_id, scheduled_date, status) VALUES (?,?,?,?,'PENDING')",
		b.UserID, b.ProviderID, b.QuotationID, b.ScheduledDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	b.ID = uint64(id)
	b.Status = model.BookingPending
	return err
}

// GetByID fetches a booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return scanBooking(r.DB.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1", id))
}

// ListByUser returns a customer's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx, "user_id=?", userID)
}

// ListByProvider returns bookings assigned to a provider, newest first.
func (r *BookingRepo) ListByProvider(ctx context.Context, providerID uint64) ([]model.Booking, error) {
	return r.list(ctx, "provider_id=?", providerID)
}

func (r *BookingRepo) list(ctx context.Context, where string, args ...any) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE "+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus moves a booking to a new status when the transition is
// legal from its current state. The guarded UPDATE carries the legality
// check so concurrent patches cannot both win.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status=?", to, id, from)
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

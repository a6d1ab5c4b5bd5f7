package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// NotificationRepo manages the per-user notification feed. Rows caused
// by a state change are inserted through InsertTx inside the same
// transaction as that change.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// InsertTx writes a notification within an existing transaction.
func (r *NotificationRepo) InsertTx(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, title, message, related_entity_id) VALUES (?,?,?,?,?)",
		n.UserID, n.Type, n.Title, n.Message, n.RelatedEntityID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	n.ID = uint64(id)
	return err
}

// Insert writes a standalone notification (used by the event consumer).
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, title, message, related_entity_id) VALUES (?,?,?,?,?)",
		n.UserID, n.Type, n.Title, n.Message, n.RelatedEntityID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	n.ID = uint64(id)
	return err
}

// ListByUser returns the user's feed, unread first then newest first,
// capped at 50 entries to keep the polling payload small.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, type, title, message, is_read, related_entity_id, created_at
		 FROM notifications WHERE user_id=?
		 ORDER BY is_read ASC, created_at DESC LIMIT 50`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.IsRead, &n.RelatedEntityID, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount returns the number of unread notifications for a user.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint64) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0", userID).Scan(&n)
	return n, err
}

// MarkRead flags one notification read. Scoped to the owning user so a
// caller cannot mark someone else's entry.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// either unknown id, foreign owner, or already read
		var exists int
		if e := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE id=? AND user_id=?", id, userID).Scan(&exists); e == sql.ErrNoRows {
			return sql.ErrNoRows
		}
	}
	return nil
}

// MarkAllRead drives the user's unread count to zero.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0", userID)
	return err
}

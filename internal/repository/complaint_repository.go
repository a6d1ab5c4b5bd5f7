package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// ComplaintRepo manages support tickets.
type ComplaintRepo struct{ DB *sql.DB }

func NewComplaintRepo(db *sql.DB) *ComplaintRepo { return &ComplaintRepo{DB: db} }

const complaintColumns = "id, user_id, agent_id, subject, description, status, priority, created_at, updated_at"

func scanComplaint(s interface{ Scan(...any) error }) (model.Complaint, error) {
	var c model.Complaint
	err := s.Scan(&c.ID, &c.UserID, &c.AgentID, &c.Subject, &c.Description,
		&c.Status, &c.Priority, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts an open complaint and populates the generated ID.
func (r *ComplaintRepo) Create(ctx context.Context, c *model.Complaint) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO complaints (user_id, subject, description, status, priority) VALUES (?,?,?,'OPEN',?)",
		c.UserID, c.Subject, c.Description, c.Priority)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	c.ID = uint64(id)
	c.Status = model.ComplaintOpen
	return err
}

// GetByID fetches a complaint.
func (r *ComplaintRepo) GetByID(ctx context.Context, id uint64) (model.Complaint, error) {
	return scanComplaint(r.DB.QueryRowContext(ctx,
		"SELECT "+complaintColumns+" FROM complaints WHERE id=? LIMIT 1", id))
}

// ListByUser returns a customer's own complaints, newest first.
func (r *ComplaintRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Complaint, error) {
	return r.list(ctx, "user_id=?", userID)
}

// ListAll returns every complaint, open tickets first (support queue view).
func (r *ComplaintRepo) ListAll(ctx context.Context) ([]model.Complaint, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+complaintColumns+" FROM complaints ORDER BY status='RESOLVED' ASC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComplaints(rows)
}

func (r *ComplaintRepo) list(ctx context.Context, where string, args ...any) ([]model.Complaint, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+complaintColumns+" FROM complaints WHERE "+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComplaints(rows)
}

func collectComplaints(rows *sql.Rows) ([]model.Complaint, error) {
	var out []model.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateStatus moves a complaint to a new status and records the acting
// agent as assignee. The guarded UPDATE enforces the current-state check.
func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id, agentID uint64, from, to model.ComplaintStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE complaints SET status=?, agent_id=? WHERE id=? AND status=?", to, agentID, id, from)
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

package repository

import (
	"context"
	"database/sql"
)

// AuditRepo appends admin mutation records. Write-only from the API;
// rows are read out of band.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Record appends one audit line.
func (r *AuditRepo) Record(ctx context.Context, actorID uint64, action, entity string, entityID uint64, detail string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (actor_id, action, entity, entity_id, detail) VALUES (?,?,?,?,?)",
		actorID, action, entity, entityID, detail)
	return err
}

package repository

import (
	"context"
	"fmt"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// AuditRepository handles database operations for OnPathway audit records
type AuditRepository struct {
	db *db.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(database *db.DB) *AuditRepository {
	return &AuditRepository{db: database}
}

// Create inserts an audit record
func (r *AuditRepository) Create(ctx context.Context, a *models.OnPathwayAudit) error {
	query := `
		INSERT INTO on_pathway_audit (on_pathway_id, decision_point_id, patch)
		VALUES ($1, $2, $3)
		RETURNING id, added_at
	`

	err := r.db.Q(ctx).QueryRow(
		ctx,
		query,
		a.OnPathwayID,
		a.DecisionPointID,
		a.Patch,
	).Scan(&a.ID, &a.AddedAt)

	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

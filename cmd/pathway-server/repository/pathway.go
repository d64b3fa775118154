package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// PathwayRepository handles database operations for pathways and the
// user-pathway permission link table
type PathwayRepository struct {
	db *db.DB
}

// NewPathwayRepository creates a new pathway repository
func NewPathwayRepository(database *db.DB) *PathwayRepository {
	return &PathwayRepository{db: database}
}

// GetByID retrieves a pathway by its ID
func (r *PathwayRepository) GetByID(ctx context.Context, id int64) (*models.Pathway, error) {
	query := `
		SELECT id, name, added_at, updated_at
		FROM pathway
		WHERE id = $1
	`

	p := &models.Pathway{}
	err := r.db.Q(ctx).QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.AddedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pathway %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pathway: %w", err)
	}

	return p, nil
}

// UserHasAccess reports whether a user_pathway association exists for
// the pair. This is the permission contract behind pathway validation.
func (r *PathwayRepository) UserHasAccess(ctx context.Context, userID, pathwayID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_pathway
			WHERE user_id = $1 AND pathway_id = $2
		)
	`

	var exists bool
	if err := r.db.Q(ctx).QueryRow(ctx, query, userID, pathwayID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pathway access: %w", err)
	}

	return exists, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// DecisionPointRepository handles database operations for decision points
type DecisionPointRepository struct {
	db *db.DB
}

// NewDecisionPointRepository creates a new decision point repository
func NewDecisionPointRepository(database *db.DB) *DecisionPointRepository {
	return &DecisionPointRepository{db: database}
}

// Create inserts a new decision point. dp.AddedAt is honoured when set
// (historical import); otherwise the database stamps now(). The generated
// id and timestamp are written back onto dp.
func (r *DecisionPointRepository) Create(ctx context.Context, dp *models.DecisionPoint) error {
	query := `
		INSERT INTO decision_point
			(on_pathway_id, clinician_id, decision_type, clinic_history, comorbidities, added_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		RETURNING id, added_at
	`

	var addedAt any
	if !dp.AddedAt.IsZero() {
		addedAt = dp.AddedAt
	}

	err := r.db.Q(ctx).QueryRow(
		ctx,
		query,
		dp.OnPathwayID,
		dp.ClinicianID,
		dp.DecisionType,
		dp.ClinicHistory,
		dp.Comorbidities,
		addedAt,
	).Scan(&dp.ID, &dp.AddedAt)

	if err != nil {
		return fmt.Errorf("failed to create decision point: %w", err)
	}

	return nil
}

// GetByID retrieves a decision point by its ID
func (r *DecisionPointRepository) GetByID(ctx context.Context, id int64) (*models.DecisionPoint, error) {
	query := `
		SELECT id, on_pathway_id, clinician_id, decision_type, clinic_history, comorbidities, added_at
		FROM decision_point
		WHERE id = $1
	`

	dp := &models.DecisionPoint{}
	err := r.db.Q(ctx).QueryRow(ctx, query, id).Scan(
		&dp.ID,
		&dp.OnPathwayID,
		&dp.ClinicianID,
		&dp.DecisionType,
		&dp.ClinicHistory,
		&dp.Comorbidities,
		&dp.AddedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decision_point %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision point: %w", err)
	}

	return dp, nil
}

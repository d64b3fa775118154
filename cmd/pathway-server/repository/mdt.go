package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// MdtRepository handles database operations for MDTs and their patient
// queues
type MdtRepository struct {
	db *db.DB
}

// NewMdtRepository creates a new MDT repository
func NewMdtRepository(database *db.DB) *MdtRepository {
	return &MdtRepository{db: database}
}

// GetByID retrieves an MDT by its ID
func (r *MdtRepository) GetByID(ctx context.Context, id int64) (*models.MDT, error) {
	query := `
		SELECT id, pathway_id, planned_at, location
		FROM mdt
		WHERE id = $1
	`

	m := &models.MDT{}
	err := r.db.Q(ctx).QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.PathwayID,
		&m.PlannedAt,
		&m.Location,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mdt %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mdt: %w", err)
	}

	return m, nil
}

// HighestOrder returns the current maximum queue order for an MDT, and
// false when the queue is empty. Must run inside the caller's
// transaction so order assignment stays dense under concurrency.
func (r *MdtRepository) HighestOrder(ctx context.Context, mdtID int64) (int, bool, error) {
	query := `
		SELECT MAX(queue_order)
		FROM on_mdt
		WHERE mdt_id = $1
	`

	var max *int
	if err := r.db.Q(ctx).QueryRow(ctx, query, mdtID).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to get highest on_mdt order: %w", err)
	}

	if max == nil {
		return 0, false, nil
	}

	return *max, true, nil
}

// CreateOnMdt enrolls a patient into an MDT queue. A unique violation on
// (mdt_id, patient_id) is translated to models.ErrDuplicateOnMdt, the
// one expected user-facing validation outcome of enrollment.
func (r *MdtRepository) CreateOnMdt(ctx context.Context, om *models.OnMdt) error {
	query := `
		INSERT INTO on_mdt (mdt_id, patient_id, user_id, reason, queue_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, added_at
	`

	err := r.db.Q(ctx).QueryRow(
		ctx,
		query,
		om.MdtID,
		om.PatientID,
		om.UserID,
		om.Reason,
		om.Order,
	).Scan(&om.ID, &om.AddedAt)

	if db.IsUniqueViolation(err) {
		return fmt.Errorf("mdt %d, patient %d: %w", om.MdtID, om.PatientID, models.ErrDuplicateOnMdt)
	}
	if err != nil {
		return fmt.Errorf("failed to create on_mdt: %w", err)
	}

	return nil
}

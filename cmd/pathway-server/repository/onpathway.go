package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// OnPathwayRepository handles database operations for OnPathway rows
type OnPathwayRepository struct {
	db *db.DB
}

// NewOnPathwayRepository creates a new OnPathway repository
func NewOnPathwayRepository(database *db.DB) *OnPathwayRepository {
	return &OnPathwayRepository{db: database}
}

const onPathwayColumns = `
	id, patient_id, pathway_id, is_discharged, awaiting_decision_type,
	lock_user_id, lock_end_time, under_care_of_id, added_at, updated_at
`

// GetByID retrieves an OnPathway by its ID
func (r *OnPathwayRepository) GetByID(ctx context.Context, id int64) (*models.OnPathway, error) {
	query := `
		SELECT ` + onPathwayColumns + `
		FROM on_pathway
		WHERE id = $1
	`

	op := &models.OnPathway{}
	err := r.db.Q(ctx).QueryRow(ctx, query, id).Scan(
		&op.ID,
		&op.PatientID,
		&op.PathwayID,
		&op.IsDischarged,
		&op.AwaitingDecisionType,
		&op.LockUserID,
		&op.LockEndTime,
		&op.UnderCareOfID,
		&op.AddedAt,
		&op.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("on_pathway %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get on_pathway: %w", err)
	}

	return op, nil
}

// MarkDischarged sets is_discharged = true. Idempotent: discharging an
// already-discharged OnPathway is a no-op.
func (r *OnPathwayRepository) MarkDischarged(ctx context.Context, id int64) error {
	query := `
		UPDATE on_pathway
		SET is_discharged = TRUE, updated_at = now()
		WHERE id = $1
	`

	if _, err := r.db.Q(ctx).Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark on_pathway discharged: %w", err)
	}

	return nil
}

// AssignCareOwnerIfUnset sets under_care_of_id only when currently NULL.
// The guard lives in the WHERE clause so an existing owner is never
// overwritten regardless of interleaving.
func (r *OnPathwayRepository) AssignCareOwnerIfUnset(ctx context.Context, id, userID int64) error {
	query := `
		UPDATE on_pathway
		SET under_care_of_id = $2, updated_at = now()
		WHERE id = $1 AND under_care_of_id IS NULL
	`

	if _, err := r.db.Q(ctx).Exec(ctx, query, id, userID); err != nil {
		return fmt.Errorf("failed to assign care owner: %w", err)
	}

	return nil
}

// AcquireLock atomically takes the lock for userID when it is free,
// already held by userID, or expired. Returns false when another user
// holds an unexpired lock.
func (r *OnPathwayRepository) AcquireLock(ctx context.Context, id, userID int64, until time.Time) (bool, error) {
	query := `
		UPDATE on_pathway
		SET lock_user_id = $2, lock_end_time = $3, updated_at = now()
		WHERE id = $1
		  AND (lock_user_id IS NULL OR lock_user_id = $2 OR lock_end_time < now())
	`

	tag, err := r.db.Q(ctx).Exec(ctx, query, id, userID, until)
	if err != nil {
		return false, fmt.Errorf("failed to acquire on_pathway lock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ReleaseLock clears the lock when held by userID or expired. Returns
// false when another user holds an unexpired lock.
func (r *OnPathwayRepository) ReleaseLock(ctx context.Context, id, userID int64) (bool, error) {
	query := `
		UPDATE on_pathway
		SET lock_user_id = NULL, lock_end_time = NULL, updated_at = now()
		WHERE id = $1
		  AND (lock_user_id IS NULL OR lock_user_id = $2 OR lock_end_time < now())
	`

	tag, err := r.db.Q(ctx).Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to release on_pathway lock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

// PathwayStateEngine owns the OnPathway lifecycle rules: the advisory
// lock, discharge, care-owner assignment, and pathway permission checks.
// Every mutation it performs is monotonic or guarded so the invariants
// hold regardless of request interleaving.
type PathwayStateEngine struct {
	onPathways OnPathwayStore
	pathways   PathwayStore
	lockTTL    time.Duration
	log        *logger.Logger
}

// NewPathwayStateEngine creates a state engine. lockTTL bounds how long
// an OnPathway lock survives without renewal.
func NewPathwayStateEngine(onPathways OnPathwayStore, pathways PathwayStore, lockTTL time.Duration, log *logger.Logger) *PathwayStateEngine {
	return &PathwayStateEngine{
		onPathways: onPathways,
		pathways:   pathways,
		lockTTL:    lockTTL,
		log:        log,
	}
}

// ValidatePathwayPermission checks the user_pathway association and
// returns PathwayPermissionError when absent
func (e *PathwayStateEngine) ValidatePathwayPermission(ctx context.Context, userID, pathwayID int64) error {
	ok, err := e.pathways.UserHasAccess(ctx, userID, pathwayID)
	if err != nil {
		return fmt.Errorf("failed to check pathway permission: %w", err)
	}
	if !ok {
		return &PathwayPermissionError{UserID: userID, PathwayID: pathwayID}
	}
	return nil
}

// ValidateLockOwnership checks that userID holds the OnPathway lock right
// now. An expired lock does not count as held.
func (e *PathwayStateEngine) ValidateLockOwnership(op *models.OnPathway, userID int64) error {
	if op.LockedBy(userID) && !op.LockExpired(time.Now()) {
		return nil
	}
	return &LockNotOwnedError{OnPathwayID: op.ID, UserID: userID}
}

// MarkDischarged sets is_discharged on the OnPathway. Idempotent.
func (e *PathwayStateEngine) MarkDischarged(ctx context.Context, onPathwayID int64) error {
	if err := e.onPathways.MarkDischarged(ctx, onPathwayID); err != nil {
		return err
	}

	e.log.WithOnPathwayID(onPathwayID).InfoContext(ctx, "on_pathway discharged")
	return nil
}

// AssignCareOwnerIfUnset records userID as the care owner when none is
// set yet. A later call with a different user is a silent no-op.
func (e *PathwayStateEngine) AssignCareOwnerIfUnset(ctx context.Context, onPathwayID, userID int64) error {
	return e.onPathways.AssignCareOwnerIfUnset(ctx, onPathwayID, userID)
}

// AcquireLock takes the OnPathway lock for userID. Contention with
// another clinician is an expected outcome and comes back as InputErrors,
// not an error.
func (e *PathwayStateEngine) AcquireLock(ctx context.Context, onPathwayID, userID int64) (*models.OnPathway, *InputErrors, error) {
	if _, err := e.onPathways.GetByID(ctx, onPathwayID); err != nil {
		return nil, nil, translateNotFound(err, "on_pathway", onPathwayID)
	}

	until := time.Now().Add(e.lockTTL)
	ok, err := e.onPathways.AcquireLock(ctx, onPathwayID, userID, until)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		errs := (&InputErrors{}).AddError("lock", "another clinician currently holds the lock")
		return nil, errs, nil
	}

	op, err := e.onPathways.GetByID(ctx, onPathwayID)
	if err != nil {
		return nil, nil, translateNotFound(err, "on_pathway", onPathwayID)
	}

	e.log.WithOnPathwayID(onPathwayID).WithUserID(userID).InfoContext(ctx, "on_pathway lock acquired")
	return op, nil, nil
}

// ReleaseLock clears the OnPathway lock when held by userID or expired
func (e *PathwayStateEngine) ReleaseLock(ctx context.Context, onPathwayID, userID int64) (*models.OnPathway, *InputErrors, error) {
	if _, err := e.onPathways.GetByID(ctx, onPathwayID); err != nil {
		return nil, nil, translateNotFound(err, "on_pathway", onPathwayID)
	}

	ok, err := e.onPathways.ReleaseLock(ctx, onPathwayID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to release lock: %w", err)
	}
	if !ok {
		errs := (&InputErrors{}).AddError("lock", "another clinician currently holds the lock")
		return nil, errs, nil
	}

	op, err := e.onPathways.GetByID(ctx, onPathwayID)
	if err != nil {
		return nil, nil, translateNotFound(err, "on_pathway", onPathwayID)
	}

	e.log.WithOnPathwayID(onPathwayID).WithUserID(userID).InfoContext(ctx, "on_pathway lock released")
	return op, nil, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

func newStateFixture(t *testing.T) (*PathwayStateEngine, *fakeOnPathwayStore) {
	t.Helper()

	onPathways := &fakeOnPathwayStore{rows: map[int64]*models.OnPathway{
		1: {ID: 1, PatientID: 1, PathwayID: 1},
	}}
	pathways := &fakePathwayStore{
		rows:   map[int64]*models.Pathway{1: {ID: 1, Name: "Lung cancer"}},
		access: map[int64]map[int64]bool{7: {1: true}},
	}

	engine := NewPathwayStateEngine(onPathways, pathways, 10*time.Minute, logger.New("error", "json"))
	return engine, onPathways
}

func TestAcquireLock_Free(t *testing.T) {
	engine, store := newStateFixture(t)

	op, userErrs, err := engine.AcquireLock(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.False(t, userErrs.HasErrors())

	require.NotNil(t, op.LockUserID)
	assert.Equal(t, int64(7), *op.LockUserID)
	require.NotNil(t, op.LockEndTime)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *op.LockEndTime, time.Minute)

	assert.True(t, store.rows[1].LockedBy(7))
}

func TestAcquireLock_Renewal(t *testing.T) {
	engine, store := newStateFixture(t)

	_, _, err := engine.AcquireLock(context.Background(), 1, 7)
	require.NoError(t, err)
	first := *store.rows[1].LockEndTime

	op, userErrs, err := engine.AcquireLock(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.False(t, userErrs.HasErrors())
	assert.True(t, !op.LockEndTime.Before(first))
}

func TestAcquireLock_HeldByAnother(t *testing.T) {
	engine, store := newStateFixture(t)
	store.rows[1].LockUserID = int64Ptr(99)
	store.rows[1].LockEndTime = timePtr(time.Now().Add(5 * time.Minute))

	op, userErrs, err := engine.AcquireLock(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, op)
	require.True(t, userErrs.HasErrors())
	assert.Equal(t, "lock", userErrs.Errors[0].Field)

	// the holder keeps the lock
	assert.True(t, store.rows[1].LockedBy(99))
}

func TestAcquireLock_ExpiredLockIsTakeable(t *testing.T) {
	engine, store := newStateFixture(t)
	store.rows[1].LockUserID = int64Ptr(99)
	store.rows[1].LockEndTime = timePtr(time.Now().Add(-time.Minute))

	op, userErrs, err := engine.AcquireLock(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.False(t, userErrs.HasErrors())
	assert.True(t, op.LockedBy(7))
}

func TestAcquireLock_NotFound(t *testing.T) {
	engine, _ := newStateFixture(t)

	_, _, err := engine.AcquireLock(context.Background(), 404, 7)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestReleaseLock_Owned(t *testing.T) {
	engine, store := newStateFixture(t)
	store.rows[1].LockUserID = int64Ptr(7)
	store.rows[1].LockEndTime = timePtr(time.Now().Add(5 * time.Minute))

	op, userErrs, err := engine.ReleaseLock(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.False(t, userErrs.HasErrors())
	assert.Nil(t, op.LockUserID)
	assert.Nil(t, op.LockEndTime)
}

func TestReleaseLock_HeldByAnother(t *testing.T) {
	engine, store := newStateFixture(t)
	store.rows[1].LockUserID = int64Ptr(99)
	store.rows[1].LockEndTime = timePtr(time.Now().Add(5 * time.Minute))

	op, userErrs, err := engine.ReleaseLock(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, op)
	require.True(t, userErrs.HasErrors())
	assert.True(t, store.rows[1].LockedBy(99))
}

func TestValidateLockOwnership(t *testing.T) {
	engine, _ := newStateFixture(t)

	op := &models.OnPathway{
		ID:          1,
		LockUserID:  int64Ptr(7),
		LockEndTime: timePtr(time.Now().Add(5 * time.Minute)),
	}
	assert.NoError(t, engine.ValidateLockOwnership(op, 7))

	var lock *LockNotOwnedError
	require.ErrorAs(t, engine.ValidateLockOwnership(op, 8), &lock)

	op.LockEndTime = timePtr(time.Now().Add(-time.Minute))
	require.ErrorAs(t, engine.ValidateLockOwnership(op, 7), &lock)

	op.LockUserID = nil
	require.ErrorAs(t, engine.ValidateLockOwnership(op, 7), &lock)
}

func TestValidatePathwayPermission(t *testing.T) {
	engine, _ := newStateFixture(t)

	assert.NoError(t, engine.ValidatePathwayPermission(context.Background(), 7, 1))

	var permission *PathwayPermissionError
	require.ErrorAs(t, engine.ValidatePathwayPermission(context.Background(), 8, 1), &permission)
	assert.Equal(t, int64(8), permission.UserID)
}

func TestMarkDischarged_Idempotent(t *testing.T) {
	engine, store := newStateFixture(t)

	require.NoError(t, engine.MarkDischarged(context.Background(), 1))
	assert.True(t, store.rows[1].IsDischarged)

	require.NoError(t, engine.MarkDischarged(context.Background(), 1))
	assert.True(t, store.rows[1].IsDischarged)
}

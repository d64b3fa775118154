package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/cache"
	"github.com/sdhealth/pathway-tracker/common/clients"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

// ClinicalRequestReconciler turns submitted clinical-request inputs into
// remote trust records plus local rows. The ordering contract is strict:
// the remote placeholder is created first and only a successful remote
// create is followed by the local insert. A remote failure aborts the
// whole submission, which can orphan the remote placeholder; the reverse
// (a local row with no remote record) must never happen.
type ClinicalRequestReconciler struct {
	types    ClinicalRequestTypeStore
	requests ClinicalRequestStore
	trust    clients.TrustAdapter
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewClinicalRequestReconciler creates a reconciler. cache holds the
// per-pathway valid-type sets; a miss falls through to the catalog store.
func NewClinicalRequestReconciler(
	types ClinicalRequestTypeStore,
	requests ClinicalRequestStore,
	trust clients.TrustAdapter,
	typeCache cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *ClinicalRequestReconciler {
	return &ClinicalRequestReconciler{
		types:    types,
		requests: requests,
		trust:    trust,
		cache:    typeCache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// reconcileOutcome summarizes what one batch of request inputs did
type reconcileOutcome struct {
	created   []*models.ClinicalRequest
	discharge bool
}

// ValidTypeIDs returns the set of request-type ids allowed on a pathway.
// The set is read through the TTL cache; the catalog changes rarely and a
// stale hit only delays visibility of newly linked types.
func (r *ClinicalRequestReconciler) ValidTypeIDs(ctx context.Context, pathwayID int64) (map[int64]bool, error) {
	key := fmt.Sprintf("pathway:%d:request-types", pathwayID)

	if raw, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var ids []int64
		if err := json.Unmarshal(raw, &ids); err == nil {
			return toSet(ids), nil
		}
	}

	ids, err := r.types.ListIDsForPathway(ctx, pathwayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list valid request types: %w", err)
	}

	if raw, err := json.Marshal(ids); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.cacheTTL); err != nil {
			r.log.WarnContext(ctx, "failed to cache request type set", "error", err)
		}
	}

	return toSet(ids), nil
}

// Reconcile processes the request inputs of one decision point. Each
// input is validated against the pathway's allowed set, then either
// tracked locally only (MDT types) or created remotely and mirrored into
// a local ClinicalRequest row keyed by the returned reference id.
func (r *ClinicalRequestReconciler) Reconcile(
	ctx context.Context,
	loader *entityLoader,
	op *models.OnPathway,
	pathway *models.Pathway,
	patient *models.Patient,
	dp *models.DecisionPoint,
	typeIDs []int64,
	authToken string,
) (*reconcileOutcome, error) {
	if len(typeIDs) == 0 {
		return &reconcileOutcome{}, nil
	}

	valid, err := r.ValidTypeIDs(ctx, pathway.ID)
	if err != nil {
		return nil, err
	}

	outcome := &reconcileOutcome{}
	for _, typeID := range typeIDs {
		if !valid[typeID] {
			return nil, &ClinicalRequestTypeNotOnPathwayError{TypeID: typeID, PathwayID: pathway.ID}
		}

		reqType, err := loader.RequestType(ctx, typeID)
		if err != nil {
			return nil, err
		}

		if reqType.IsDischarge {
			outcome.discharge = true
		}

		// MDT types are local bookkeeping only: enrollment into the MDT
		// queue happens elsewhere and nothing is sent to the trust system
		if reqType.IsMdt {
			continue
		}

		remote, err := r.trust.CreateTestResult(ctx, &clients.TestResultRequest{
			TypeID:         reqType.ID,
			HospitalNumber: patient.HospitalNumber,
			PathwayName:    pathway.Name,
		}, authToken)
		if err != nil {
			return nil, err
		}

		cr := &models.ClinicalRequest{
			OnPathwayID:           op.ID,
			DecisionPointID:       dp.ID,
			ClinicalRequestTypeID: reqType.ID,
			TestResultReferenceID: remote.ID,
		}
		if err := r.requests.Create(ctx, cr); err != nil {
			return nil, err
		}

		outcome.created = append(outcome.created, cr)
	}

	return outcome, nil
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

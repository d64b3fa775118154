package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/clients"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

// errValidationRollback aborts the transaction when the submission failed
// validation. The caller translates it into the recorded InputErrors; it
// never escapes CreateDecisionPoint.
var errValidationRollback = errors.New("submission failed validation")

// MdtInput names the MDT to enroll the patient into, with a free-text
// reason shown to the MDT coordinator
type MdtInput struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// CreateDecisionPointRequest is one decision submission. ClinicianID is
// the clinician the decision is recorded against and must hold the
// OnPathway lock; UserID is the authenticated session user performing the
// submission.
type CreateDecisionPointRequest struct {
	OnPathwayID   int64
	ClinicianID   int64
	DecisionType  models.DecisionType
	ClinicHistory string
	Comorbidities string

	// AddedAt backdates the decision point, for historical import only
	AddedAt *time.Time

	// ClinicalRequestTypeIDs are new requests to raise with this decision
	ClinicalRequestTypeIDs []int64

	// ResolvedRequestIDs are prior open requests this decision acknowledges
	ResolvedRequestIDs []int64

	Mdt *MdtInput

	UserID       int64
	SessionToken string
}

// CreateDecisionPointResult carries either the created decision point or
// the validation errors that rejected the submission, never both
type CreateDecisionPointResult struct {
	DecisionPoint *models.DecisionPoint
	UserErrors    *InputErrors
}

// DecisionServiceOpts carries the collaborators of DecisionService
type DecisionServiceOpts struct {
	Tx               TxRunner
	OnPathways       OnPathwayStore
	Pathways         PathwayStore
	Patients         PatientStore
	DecisionPoints   DecisionPointStore
	ClinicalRequests ClinicalRequestStore
	RequestTypes     ClinicalRequestTypeStore
	Mdts             MdtStore
	Audits           AuditStore
	State            *PathwayStateEngine
	Reconciler       *ClinicalRequestReconciler
	Trust            clients.TrustAdapter
	Events           EventPublisher
	Logger           *logger.Logger
}

// DecisionService implements the decision-point submission workflow
type DecisionService struct {
	tx         TxRunner
	onPathways OnPathwayStore
	pathways   PathwayStore
	patients   PatientStore
	decisions  DecisionPointStore
	requests   ClinicalRequestStore
	types      ClinicalRequestTypeStore
	mdts       MdtStore
	audits     AuditStore
	state      *PathwayStateEngine
	reconciler *ClinicalRequestReconciler
	trust      clients.TrustAdapter
	events     EventPublisher
	log        *logger.Logger
}

// NewDecisionService creates a decision service
func NewDecisionService(opts DecisionServiceOpts) *DecisionService {
	return &DecisionService{
		tx:         opts.Tx,
		onPathways: opts.OnPathways,
		pathways:   opts.Pathways,
		patients:   opts.Patients,
		decisions:  opts.DecisionPoints,
		requests:   opts.ClinicalRequests,
		types:      opts.RequestTypes,
		mdts:       opts.Mdts,
		audits:     opts.Audits,
		state:      opts.State,
		reconciler: opts.Reconciler,
		trust:      opts.Trust,
		events:     opts.Events,
		log:        opts.Logger,
	}
}

// CreateDecisionPoint records one clinical decision and all of its side
// effects atomically. Trust connectivity is verified up front so a dead
// remote never costs local work; everything else runs inside one
// serializable transaction that either fully commits or leaves no trace.
func (s *DecisionService) CreateDecisionPoint(ctx context.Context, req *CreateDecisionPointRequest) (*CreateDecisionPointResult, error) {
	if !req.DecisionType.Valid() {
		result := &CreateDecisionPointResult{UserErrors: &InputErrors{}}
		result.UserErrors.AddError("decisionType", fmt.Sprintf("unknown decision type %q", req.DecisionType))
		return result, nil
	}

	if err := s.trust.TestConnection(ctx, req.SessionToken); err != nil {
		return nil, err
	}

	result := &CreateDecisionPointResult{}
	var discharged bool

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		loader := newEntityLoader(s.onPathways, s.pathways, s.patients, s.types)

		op, err := loader.OnPathway(ctx, req.OnPathwayID)
		if err != nil {
			return err
		}
		before, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("failed to snapshot on_pathway: %w", err)
		}

		pathway, err := loader.Pathway(ctx, op.PathwayID)
		if err != nil {
			return err
		}

		if err := s.state.ValidatePathwayPermission(ctx, req.ClinicianID, pathway.ID); err != nil {
			return err
		}
		if err := s.state.ValidateLockOwnership(op, req.ClinicianID); err != nil {
			return err
		}

		if req.Mdt != nil {
			if err := s.enrollOnMdt(ctx, op, req, result); err != nil {
				return err
			}
		}

		dp := &models.DecisionPoint{
			OnPathwayID:   op.ID,
			ClinicianID:   req.ClinicianID,
			DecisionType:  req.DecisionType,
			ClinicHistory: req.ClinicHistory,
			Comorbidities: req.Comorbidities,
		}
		if req.AddedAt != nil {
			dp.AddedAt = *req.AddedAt
		}
		if err := s.decisions.Create(ctx, dp); err != nil {
			return err
		}

		patient, err := loader.Patient(ctx, op.PatientID)
		if err != nil {
			return err
		}

		outcome, err := s.reconciler.Reconcile(ctx, loader, op, pathway, patient, dp, req.ClinicalRequestTypeIDs, req.SessionToken)
		if err != nil {
			return err
		}

		for _, requestID := range req.ResolvedRequestIDs {
			if err := s.requests.SetForwardDecisionPoint(ctx, requestID, dp.ID); err != nil {
				return err
			}
		}

		if outcome.discharge {
			if err := s.state.MarkDischarged(ctx, op.ID); err != nil {
				return err
			}
			discharged = true
		}

		if err := s.state.AssignCareOwnerIfUnset(ctx, op.ID, req.UserID); err != nil {
			return err
		}

		if err := s.writeAudit(ctx, op.ID, dp.ID, before); err != nil {
			return err
		}

		result.DecisionPoint = dp
		return nil
	})

	if errors.Is(err, errValidationRollback) {
		result.DecisionPoint = nil
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	s.publishCreated(ctx, result.DecisionPoint, discharged)

	return result, nil
}

// enrollOnMdt adds the patient to the named MDT's queue at the tail. A
// duplicate enrollment is a validation outcome: it is recorded on result
// and signalled with errValidationRollback so the transaction unwinds.
func (s *DecisionService) enrollOnMdt(ctx context.Context, op *models.OnPathway, req *CreateDecisionPointRequest, result *CreateDecisionPointResult) error {
	mdt, err := s.mdts.GetByID(ctx, req.Mdt.ID)
	if err != nil {
		return translateNotFound(err, "mdt", req.Mdt.ID)
	}

	if mdt.PathwayID != op.PathwayID {
		return &MdtPathwayMismatchError{
			MdtID:            mdt.ID,
			MdtPathwayID:     mdt.PathwayID,
			OnPathwayPathway: op.PathwayID,
		}
	}

	order := 0
	if highest, found, err := s.mdts.HighestOrder(ctx, mdt.ID); err != nil {
		return err
	} else if found {
		order = highest + 1
	}

	om := &models.OnMdt{
		MdtID:     mdt.ID,
		PatientID: op.PatientID,
		UserID:    req.UserID,
		Reason:    req.Mdt.Reason,
		Order:     order,
	}
	if err := s.mdts.CreateOnMdt(ctx, om); err != nil {
		if errors.Is(err, models.ErrDuplicateOnMdt) {
			result.UserErrors = (&InputErrors{}).AddError("mdt", "This patient is already on the MDT specified")
			return errValidationRollback
		}
		return err
	}

	return nil
}

// writeAudit records the JSON merge patch of the OnPathway row across
// this decision, read fresh inside the transaction
func (s *DecisionService) writeAudit(ctx context.Context, onPathwayID, decisionPointID int64, before []byte) error {
	op, err := s.onPathways.GetByID(ctx, onPathwayID)
	if err != nil {
		return translateNotFound(err, "on_pathway", onPathwayID)
	}

	after, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to snapshot on_pathway: %w", err)
	}

	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return fmt.Errorf("failed to compute audit patch: %w", err)
	}

	return s.audits.Create(ctx, &models.OnPathwayAudit{
		OnPathwayID:     onPathwayID,
		DecisionPointID: decisionPointID,
		Patch:           patch,
	})
}

// publishCreated emits the post-commit event. Best effort: the decision
// is already durable and a stream failure must not fail the request.
func (s *DecisionService) publishCreated(ctx context.Context, dp *models.DecisionPoint, discharged bool) {
	if s.events == nil {
		return
	}

	event := &DecisionEvent{
		DecisionPointID: dp.ID,
		OnPathwayID:     dp.OnPathwayID,
		ClinicianID:     dp.ClinicianID,
		DecisionType:    dp.DecisionType,
		Discharged:      discharged,
		OccurredAt:      dp.AddedAt,
	}
	if err := s.events.PublishDecisionCreated(ctx, event); err != nil {
		s.log.WarnContext(ctx, "failed to publish decision event",
			"decision_point_id", dp.ID,
			"error", err)
	}
}

// ClinicalRequestDetail is a clinical request joined with the current
// state of its remote test result
type ClinicalRequestDetail struct {
	*models.ClinicalRequest
	CurrentState string `json:"current_state,omitempty"`
}

// DecisionPointDetail is a decision point with the requests it raised
type DecisionPointDetail struct {
	*models.DecisionPoint
	ClinicalRequests []*ClinicalRequestDetail `json:"clinical_requests,omitempty"`
}

// GetDecisionPoint fetches one decision point and its clinical requests.
// Each request's remote state is read back from the trust system; a
// remote failure leaves the state empty rather than failing the read.
func (s *DecisionService) GetDecisionPoint(ctx context.Context, id int64, sessionToken string) (*DecisionPointDetail, error) {
	dp, err := s.decisions.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "decision_point", id)
	}

	requests, err := s.requests.ListByDecisionPoint(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &DecisionPointDetail{DecisionPoint: dp}
	for _, cr := range requests {
		d := &ClinicalRequestDetail{ClinicalRequest: cr}
		if result, err := s.trust.LoadTestResult(ctx, cr.TestResultReferenceID, sessionToken); err != nil {
			s.log.WarnContext(ctx, "failed to load remote test result",
				"reference_id", cr.TestResultReferenceID,
				"error", err)
		} else {
			d.CurrentState = result.CurrentState
		}
		detail.ClinicalRequests = append(detail.ClinicalRequests, d)
	}

	return detail, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// ClinicalRequestRepository handles database operations for clinical
// requests
type ClinicalRequestRepository struct {
	db *db.DB
}

// NewClinicalRequestRepository creates a new clinical request repository
func NewClinicalRequestRepository(database *db.DB) *ClinicalRequestRepository {
	return &ClinicalRequestRepository{db: database}
}

// Create inserts a new clinical request. The external reference id must
// already exist: remote creation always precedes local creation.
func (r *ClinicalRequestRepository) Create(ctx context.Context, cr *models.ClinicalRequest) error {
	query := `
		INSERT INTO clinical_request
			(on_pathway_id, decision_point_id, clinical_request_type_id, test_result_reference_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, added_at
	`

	err := r.db.Q(ctx).QueryRow(
		ctx,
		query,
		cr.OnPathwayID,
		cr.DecisionPointID,
		cr.ClinicalRequestTypeID,
		cr.TestResultReferenceID,
	).Scan(&cr.ID, &cr.AddedAt)

	if err != nil {
		return fmt.Errorf("failed to create clinical request: %w", err)
	}

	return nil
}

// SetForwardDecisionPoint marks a prior open request as acknowledged by
// the given decision point
func (r *ClinicalRequestRepository) SetForwardDecisionPoint(ctx context.Context, requestID, decisionPointID int64) error {
	query := `
		UPDATE clinical_request
		SET fwd_decision_point_id = $2
		WHERE id = $1
	`

	if _, err := r.db.Q(ctx).Exec(ctx, query, requestID, decisionPointID); err != nil {
		return fmt.Errorf("failed to resolve clinical request: %w", err)
	}

	return nil
}

// ListByDecisionPoint lists the requests raised by one decision point
func (r *ClinicalRequestRepository) ListByDecisionPoint(ctx context.Context, decisionPointID int64) ([]*models.ClinicalRequest, error) {
	query := `
		SELECT id, on_pathway_id, decision_point_id, clinical_request_type_id,
		       test_result_reference_id, fwd_decision_point_id, added_at
		FROM clinical_request
		WHERE decision_point_id = $1
		ORDER BY id
	`

	rows, err := r.db.Q(ctx).Query(ctx, query, decisionPointID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinical requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ClinicalRequest
	for rows.Next() {
		cr := &models.ClinicalRequest{}
		err := rows.Scan(
			&cr.ID,
			&cr.OnPathwayID,
			&cr.DecisionPointID,
			&cr.ClinicalRequestTypeID,
			&cr.TestResultReferenceID,
			&cr.FwdDecisionPointID,
			&cr.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clinical request: %w", err)
		}
		requests = append(requests, cr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clinical requests: %w", err)
	}

	return requests, nil
}

// ListOutstandingByOnPathway lists requests on an OnPathway that no
// decision point has acknowledged yet
func (r *ClinicalRequestRepository) ListOutstandingByOnPathway(ctx context.Context, onPathwayID int64) ([]*models.ClinicalRequest, error) {
	query := `
		SELECT id, on_pathway_id, decision_point_id, clinical_request_type_id,
		       test_result_reference_id, fwd_decision_point_id, added_at
		FROM clinical_request
		WHERE on_pathway_id = $1 AND fwd_decision_point_id IS NULL
		ORDER BY added_at
	`

	rows, err := r.db.Q(ctx).Query(ctx, query, onPathwayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding clinical requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ClinicalRequest
	for rows.Next() {
		cr := &models.ClinicalRequest{}
		err := rows.Scan(
			&cr.ID,
			&cr.OnPathwayID,
			&cr.DecisionPointID,
			&cr.ClinicalRequestTypeID,
			&cr.TestResultReferenceID,
			&cr.FwdDecisionPointID,
			&cr.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clinical request: %w", err)
		}
		requests = append(requests, cr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clinical requests: %w", err)
	}

	return requests, nil
}

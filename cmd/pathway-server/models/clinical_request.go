package models

import "time"

// ClinicalRequestType is a catalog entry describing a requestable
// test/procedure
// Maps to: clinical_request_type table
type ClinicalRequestType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// MDT-only types are tracked locally and never sent to the trust system
	IsMdt bool `db:"is_mdt" json:"is_mdt"`

	// Requesting a discharge type discharges the OnPathway
	IsDischarge bool `db:"is_discharge" json:"is_discharge"`

	IsTestRequest bool `db:"is_test_request" json:"is_test_request"`
}

// ClinicalRequest is a requested or resolved clinical test tied to a
// decision point. TestResultReferenceID is the external trust system's
// identifier, set at creation and never reused. FwdDecisionPointID is set
// exactly once, by the decision point that acknowledges the request.
// Maps to: clinical_request table
type ClinicalRequest struct {
	ID                    int64  `db:"id" json:"id"`
	OnPathwayID           int64  `db:"on_pathway_id" json:"on_pathway_id"`
	DecisionPointID       int64  `db:"decision_point_id" json:"decision_point_id"`
	ClinicalRequestTypeID int64  `db:"clinical_request_type_id" json:"clinical_request_type_id"`
	TestResultReferenceID string `db:"test_result_reference_id" json:"test_result_reference_id"`

	FwdDecisionPointID *int64 `db:"fwd_decision_point_id" json:"fwd_decision_point_id,omitempty"`

	AddedAt time.Time `db:"added_at" json:"added_at"`
}

// Resolved reports whether a later decision point has acknowledged this
// request
func (c *ClinicalRequest) Resolved() bool {
	return c.FwdDecisionPointID != nil
}

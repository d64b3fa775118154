package models

import "time"

// DecisionType classifies a decision point
type DecisionType string

const (
	DecisionTriage      DecisionType = "TRIAGE"
	DecisionClinic      DecisionType = "CLINIC"
	DecisionMDT         DecisionType = "MDT"
	DecisionAdHoc       DecisionType = "AD_HOC"
	DecisionFollowUp    DecisionType = "FOLLOW_UP"
	DecisionPostRequest DecisionType = "POST_REQUEST"
)

// Valid reports whether d is a known decision type
func (d DecisionType) Valid() bool {
	switch d {
	case DecisionTriage, DecisionClinic, DecisionMDT, DecisionAdHoc,
		DecisionFollowUp, DecisionPostRequest:
		return true
	}
	return false
}

// OnPathway is one patient's live traversal of a Pathway.
// Maps to: on_pathway table
//
// Invariants:
//   - at most one lock holder at a time (lock_user_id)
//   - is_discharged only ever moves false -> true
//   - under_care_of_id is set once, by the first clinician whose decision
//     point is accepted, and never overwritten
type OnPathway struct {
	ID        int64 `db:"id" json:"id"`
	PatientID int64 `db:"patient_id" json:"patient_id"`
	PathwayID int64 `db:"pathway_id" json:"pathway_id"`

	IsDischarged         bool         `db:"is_discharged" json:"is_discharged"`
	AwaitingDecisionType DecisionType `db:"awaiting_decision_type" json:"awaiting_decision_type"`

	// Lock state: the clinician currently authorized to submit decisions
	LockUserID  *int64     `db:"lock_user_id" json:"lock_user_id,omitempty"`
	LockEndTime *time.Time `db:"lock_end_time" json:"lock_end_time,omitempty"`

	UnderCareOfID *int64 `db:"under_care_of_id" json:"under_care_of_id,omitempty"`

	AddedAt   time.Time `db:"added_at" json:"added_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LockedBy reports whether userID currently holds the lock
func (o *OnPathway) LockedBy(userID int64) bool {
	return o.LockUserID != nil && *o.LockUserID == userID
}

// LockExpired reports whether the lock has passed its end time
func (o *OnPathway) LockExpired(now time.Time) bool {
	return o.LockEndTime != nil && now.After(*o.LockEndTime)
}

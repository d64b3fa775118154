package models

import "time"

// DecisionPoint is a clinical decision recorded against an OnPathway.
// Immutable after creation; clinician_id must hold the OnPathway lock at
// creation time.
// Maps to: decision_point table
type DecisionPoint struct {
	ID           int64        `db:"id" json:"id"`
	OnPathwayID  int64        `db:"on_pathway_id" json:"on_pathway_id"`
	ClinicianID  int64        `db:"clinician_id" json:"clinician_id"`
	DecisionType DecisionType `db:"decision_type" json:"decision_type"`

	ClinicHistory string `db:"clinic_history" json:"clinic_history"`
	Comorbidities string `db:"comorbidities" json:"comorbidities"`

	// AddedAt defaults to now; backdated only by historical data import
	AddedAt time.Time `db:"added_at" json:"added_at"`
}

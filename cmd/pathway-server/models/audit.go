package models

import "time"

// OnPathwayAudit records the JSON merge patch of an OnPathway row across
// one accepted decision point. Written inside the same transaction as the
// decision point itself.
// Maps to: on_pathway_audit table
type OnPathwayAudit struct {
	ID              int64     `db:"id" json:"id"`
	OnPathwayID     int64     `db:"on_pathway_id" json:"on_pathway_id"`
	DecisionPointID int64     `db:"decision_point_id" json:"decision_point_id"`
	Patch           []byte    `db:"patch" json:"patch"`
	AddedAt         time.Time `db:"added_at" json:"added_at"`
}

package models

import "time"

// Pathway is a named clinical protocol template
// Maps to: pathway table
type Pathway struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	AddedAt   time.Time `db:"added_at" json:"added_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserPathway links a clinician to a pathway they may act on
// Maps to: user_pathway table, unique (user_id, pathway_id)
type UserPathway struct {
	UserID    int64 `db:"user_id" json:"user_id"`
	PathwayID int64 `db:"pathway_id" json:"pathway_id"`
}

// PathwayClinicalRequestType links a pathway to the clinical-request
// types that may be requested on it
// Maps to: pathway_clinical_request_type table
type PathwayClinicalRequestType struct {
	PathwayID             int64 `db:"pathway_id" json:"pathway_id"`
	ClinicalRequestTypeID int64 `db:"clinical_request_type_id" json:"clinical_request_type_id"`
}

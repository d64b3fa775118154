package models

import (
	"errors"
	"time"
)

// ErrDuplicateOnMdt is returned when a patient is enrolled into an MDT
// they are already on (unique (mdt_id, patient_id) violated).
var ErrDuplicateOnMdt = errors.New("patient already on mdt")

// ErrNotFound is returned by repositories when an entity does not exist
var ErrNotFound = errors.New("not found")

// MDT is a multidisciplinary-team session tied to a pathway
// Maps to: mdt table
type MDT struct {
	ID        int64     `db:"id" json:"id"`
	PathwayID int64     `db:"pathway_id" json:"pathway_id"`
	PlannedAt time.Time `db:"planned_at" json:"planned_at"`
	Location  string    `db:"location" json:"location"`
}

// OnMdt is a patient's ordered membership in an MDT queue.
// Order is a dense, strictly increasing sequence per MDT starting at 0;
// (mdt_id, patient_id) is unique.
// Maps to: on_mdt table
type OnMdt struct {
	ID        int64  `db:"id" json:"id"`
	MdtID     int64  `db:"mdt_id" json:"mdt_id"`
	PatientID int64  `db:"patient_id" json:"patient_id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	Reason    string `db:"reason" json:"reason"`
	Order     int    `db:"queue_order" json:"order"`

	AddedAt time.Time `db:"added_at" json:"added_at"`
}

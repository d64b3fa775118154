package models

import "time"

// Patient is the local record of a patient known to the trust system.
// HospitalNumber keys remote test-result creation.
type Patient struct {
	ID             int64  `db:"id" json:"id"`
	HospitalNumber string `db:"hospital_number" json:"hospital_number"`
	NationalNumber string `db:"national_number" json:"national_number"`

	AddedAt time.Time `db:"added_at" json:"added_at"`
}

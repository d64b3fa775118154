package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// PatientRepository handles database operations for patients
type PatientRepository struct {
	db *db.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(database *db.DB) *PatientRepository {
	return &PatientRepository{db: database}
}

// GetByID retrieves a patient by its ID
func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	query := `
		SELECT id, hospital_number, national_number, added_at
		FROM patient
		WHERE id = $1
	`

	p := &models.Patient{}
	err := r.db.Q(ctx).QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.HospitalNumber,
		&p.NationalNumber,
		&p.AddedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patient %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return p, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/db"
)

// ClinicalRequestTypeRepository handles catalog lookups for clinical
// request types
type ClinicalRequestTypeRepository struct {
	db *db.DB
}

// NewClinicalRequestTypeRepository creates a new type repository
func NewClinicalRequestTypeRepository(database *db.DB) *ClinicalRequestTypeRepository {
	return &ClinicalRequestTypeRepository{db: database}
}

// GetByID retrieves a clinical request type by its ID
func (r *ClinicalRequestTypeRepository) GetByID(ctx context.Context, id int64) (*models.ClinicalRequestType, error) {
	query := `
		SELECT id, name, is_mdt, is_discharge, is_test_request
		FROM clinical_request_type
		WHERE id = $1
	`

	t := &models.ClinicalRequestType{}
	err := r.db.Q(ctx).QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.IsMdt,
		&t.IsDischarge,
		&t.IsTestRequest,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("clinical_request_type %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinical request type: %w", err)
	}

	return t, nil
}

// ListIDsForPathway returns the ids of all request types valid on a
// pathway, via the pathway_clinical_request_type link table
func (r *ClinicalRequestTypeRepository) ListIDsForPathway(ctx context.Context, pathwayID int64) ([]int64, error) {
	query := `
		SELECT clinical_request_type_id
		FROM pathway_clinical_request_type
		WHERE pathway_id = $1
		ORDER BY clinical_request_type_id
	`

	rows, err := r.db.Q(ctx).Query(ctx, query, pathwayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list request types for pathway: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan request type id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request type ids: %w", err)
	}

	return ids, nil
}

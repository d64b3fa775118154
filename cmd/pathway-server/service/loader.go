package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
)

// entityLoader memoizes entity reads for the duration of one workflow
// invocation so each entity is fetched at most once per submission. It is
// scoped to a single goroutine and never shared.
type entityLoader struct {
	onPathways OnPathwayStore
	pathways   PathwayStore
	patients   PatientStore
	types      ClinicalRequestTypeStore

	onPathwayCache map[int64]*models.OnPathway
	pathwayCache   map[int64]*models.Pathway
	patientCache   map[int64]*models.Patient
	typeCache      map[int64]*models.ClinicalRequestType
}

func newEntityLoader(onPathways OnPathwayStore, pathways PathwayStore, patients PatientStore, types ClinicalRequestTypeStore) *entityLoader {
	return &entityLoader{
		onPathways:     onPathways,
		pathways:       pathways,
		patients:       patients,
		types:          types,
		onPathwayCache: make(map[int64]*models.OnPathway),
		pathwayCache:   make(map[int64]*models.Pathway),
		patientCache:   make(map[int64]*models.Patient),
		typeCache:      make(map[int64]*models.ClinicalRequestType),
	}
}

func (l *entityLoader) OnPathway(ctx context.Context, id int64) (*models.OnPathway, error) {
	if op, ok := l.onPathwayCache[id]; ok {
		return op, nil
	}

	op, err := l.onPathways.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "on_pathway", id)
	}

	l.onPathwayCache[id] = op
	return op, nil
}

func (l *entityLoader) Pathway(ctx context.Context, id int64) (*models.Pathway, error) {
	if p, ok := l.pathwayCache[id]; ok {
		return p, nil
	}

	p, err := l.pathways.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "pathway", id)
	}

	l.pathwayCache[id] = p
	return p, nil
}

func (l *entityLoader) Patient(ctx context.Context, id int64) (*models.Patient, error) {
	if p, ok := l.patientCache[id]; ok {
		return p, nil
	}

	p, err := l.patients.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "patient", id)
	}

	l.patientCache[id] = p
	return p, nil
}

func (l *entityLoader) RequestType(ctx context.Context, id int64) (*models.ClinicalRequestType, error) {
	if t, ok := l.typeCache[id]; ok {
		return t, nil
	}

	t, err := l.types.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "clinical_request_type", id)
	}

	l.typeCache[id] = t
	return t, nil
}

// translateNotFound lifts the repository sentinel into the service error
// taxonomy, keeping other failures intact
func translateNotFound(err error, entity string, id int64) error {
	if errors.Is(err, models.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
)

type countingOnPathwayStore struct {
	fakeOnPathwayStore
	gets int
}

func (c *countingOnPathwayStore) GetByID(ctx context.Context, id int64) (*models.OnPathway, error) {
	c.gets++
	return c.fakeOnPathwayStore.GetByID(ctx, id)
}

func TestEntityLoader_MemoizesWithinInvocation(t *testing.T) {
	onPathways := &countingOnPathwayStore{fakeOnPathwayStore: fakeOnPathwayStore{
		rows: map[int64]*models.OnPathway{1: {ID: 1, PatientID: 1, PathwayID: 1}},
	}}
	types := &fakeRequestTypeStore{
		rows: map[int64]*models.ClinicalRequestType{10: {ID: 10, Name: "Chest X-ray"}},
	}

	loader := newEntityLoader(
		onPathways,
		&fakePathwayStore{rows: map[int64]*models.Pathway{1: {ID: 1, Name: "Lung cancer"}}},
		&fakePatientStore{rows: map[int64]*models.Patient{1: {ID: 1}}},
		types,
	)

	for i := 0; i < 3; i++ {
		op, err := loader.OnPathway(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), op.ID)
	}
	assert.Equal(t, 1, onPathways.gets)

	// each loader is scoped to one invocation; a new one re-reads
	fresh := newEntityLoader(onPathways, nil, nil, types)
	_, err := fresh.OnPathway(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, onPathways.gets)
}

func TestEntityLoader_NotFound(t *testing.T) {
	loader := newEntityLoader(
		&fakeOnPathwayStore{rows: map[int64]*models.OnPathway{}},
		&fakePathwayStore{rows: map[int64]*models.Pathway{}},
		&fakePatientStore{rows: map[int64]*models.Patient{}},
		&fakeRequestTypeStore{rows: map[int64]*models.ClinicalRequestType{}},
	)

	var notFound *NotFoundError

	_, err := loader.OnPathway(context.Background(), 5)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "on_pathway", notFound.Entity)

	_, err = loader.Pathway(context.Background(), 5)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "pathway", notFound.Entity)

	_, err = loader.Patient(context.Background(), 5)
	require.ErrorAs(t, err, &notFound)

	_, err = loader.RequestType(context.Background(), 5)
	require.ErrorAs(t, err, &notFound)
}

package ingest

import (
	"context"
	"testing"

	"github.com/boreledger/boreledger/pkg/entityrepo"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/repository"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	entities := entityrepo.New(repository.New(store))
	return New(entities)
}

const csvMixedErrors = `project_id,borelog_id,ordinal,depth_from,description
p1,b1,0,1.5,silty clay
p1,b1,,2.0,dense sand
p1,b1,2,not-a-number,gravel
p1,b1,3,3.5,weathered rock
`

func TestIngestCSVMixedErrors(t *testing.T) {
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	repo := repository.New(store)
	engine := New(entityrepo.New(repo))

	result, err := engine.IngestCSVString(context.Background(), csvMixedErrors, Options{
		Project: "p1", EntityType: types.EntityBorelog, EntityID: "b1",
		TableName: "stratum_layers", User: "u1", SkipErrors: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Equal(t, 2, result.InvalidRows)
	assert.Len(t, result.Errors, 2)
	assert.NotEmpty(t, result.ErrorSummary)
	assert.NotEmpty(t, result.BatchID)

	recordID := entityrepo.RecordID("p1", types.EntityBorelog, "b1")
	_, table, err := repo.GetLatestVersion(context.Background(), recordID)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows, "both valid rows must be written, not just the last")
}

func TestIngestCSVStopsAtFirstErrorWhenSkipErrorsFalse(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.IngestCSVString(context.Background(), csvMixedErrors, Options{
		Project: "p1", EntityType: types.EntityBorelog, EntityID: "b1",
		TableName: "stratum_layers", User: "u1", SkipErrors: false,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 1, result.InvalidRows)
}

func TestIngestCSVZeroValidRowsMutatesNothing(t *testing.T) {
	engine := newTestEngine(t)
	const allInvalid = `project_id,borelog_id,ordinal,depth_from,description
p1,b1,,,silty clay
`
	result, err := engine.IngestCSVString(context.Background(), allInvalid, Options{
		Project: "p1", EntityType: types.EntityBorelog, EntityID: "b1",
		TableName: "stratum_layers", User: "u1", SkipErrors: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ValidRows)
	assert.Empty(t, result.RecordID)
}

func TestIngestCSVZeroIsNotASentinel(t *testing.T) {
	engine := newTestEngine(t)
	const zeroOrdinal = `project_id,borelog_id,ordinal,depth_from,description
p1,b1,0,0,silty clay
`
	result, err := engine.IngestCSVString(context.Background(), zeroOrdinal, Options{
		Project: "p1", EntityType: types.EntityBorelog, EntityID: "b1",
		TableName: "stratum_layers", User: "u1", SkipErrors: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 0, result.InvalidRows)
}

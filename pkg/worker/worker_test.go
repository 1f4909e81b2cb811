package worker

import (
	"context"
	"testing"

	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "project_name,job_code,stratum_description,stratum_depth_from,stratum_depth_to\n" +
	"Metro Line 3,ML3-01,,,\n" +
	",,Silty clay,0,2.5\n" +
	",,Weathered rock,2.5,5\n"

func newTestWorker(t *testing.T) (*Worker, objectstore.Store) {
	t.Helper()
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return New(store), store
}

func TestProcessCSVWritesEnvelopeAndStrata(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "uploads/u1.csv", []byte(sampleCSV), "text/csv", true))

	req := ParseRequest{
		ProjectID: "acme", BorelogID: "bh-1", VersionNo: 1,
		ObjectKey: "uploads/u1.csv", FileType: FileTypeCSV, RequestedBy: "u1",
	}
	result, err := w.Process(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StatusParsed, result.Status)
	assert.Equal(t, "Metro Line 3", result.Envelope.Metadata.ProjectName)

	exists, err := store.Head(ctx, strataKey(req))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Head(ctx, indexKey(req))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProcessUsesStableKeySchema(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "uploads/u1.csv", []byte(sampleCSV), "text/csv", true))

	req := ParseRequest{
		ProjectID: "acme", BorelogID: "bh-1", VersionNo: 1,
		ObjectKey: "uploads/u1.csv", FileType: FileTypeCSV, RequestedBy: "u1",
	}
	_, err := w.Process(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "projects/acme/borelogs/bh-1/parsed/v1/strata.json", strataKey(req))
	assert.Equal(t, "projects/acme/borelogs/bh-1/parsed/v1/index.json", indexKey(req))
}

func TestProcessIsIdempotent(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "uploads/u1.csv", []byte(sampleCSV), "text/csv", true))

	req := ParseRequest{
		ProjectID: "acme", BorelogID: "bh-1", VersionNo: 1,
		ObjectKey: "uploads/u1.csv", FileType: FileTypeCSV, RequestedBy: "u1",
	}
	first, err := w.Process(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StatusParsed, first.Status)

	require.NoError(t, store.Put(ctx, "uploads/u1.csv", []byte("garbage that would fail to parse"), "text/csv", true))

	second, err := w.Process(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, "Metro Line 3", second.Envelope.Metadata.ProjectName)
}

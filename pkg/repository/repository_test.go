package repository

import (
	"context"
	"testing"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return New(store)
}

func sampleRow() types.Row {
	return types.Row{
		"project_id": "p1",
		"borelog_id": "b1",
		"ordinal":    0,
		"depth_from": 1.5,
		"description": "silty clay",
	}
}

func TestCreateThenApprove(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	meta, err := repo.CreateRecord(ctx, "p1/borelog/b1", []types.Row{sampleRow()}, "stratum_layers", "u1", "initial")
	require.NoError(t, err)
	assert.Equal(t, 1, meta.CurrentVersion)
	assert.Equal(t, types.StatusDraft, meta.Status)

	approved, err := repo.ApproveRecord(ctx, "p1/borelog/b1", "u2", "looks good")
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "u2", *approved.ApprovedBy)
	assert.Len(t, approved.History, 2)
	assert.Equal(t, types.StatusDraft, approved.History[0].Status)
	assert.Equal(t, types.StatusApproved, approved.History[1].Status)
}

func TestCreateRecordFailsIfAlreadyExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateRecord(ctx, "p1/borelog/b1", []types.Row{sampleRow()}, "stratum_layers", "u1", "")
	require.NoError(t, err)

	_, err = repo.CreateRecord(ctx, "p1/borelog/b1", []types.Row{sampleRow()}, "stratum_layers", "u1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestUpdateRetainsPriorVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateRecord(ctx, "p1/borelog/b1", []types.Row{sampleRow()}, "stratum_layers", "u1", "")
	require.NoError(t, err)

	modified := sampleRow()
	modified["description"] = "dense sand"
	meta, err := repo.UpdateRecord(ctx, "p1/borelog/b1", []types.Row{modified}, "u1", "revise")
	require.NoError(t, err)
	assert.Equal(t, 2, meta.CurrentVersion)
	assert.Equal(t, types.StatusDraft, meta.Status)

	v1, err := repo.GetSpecificVersion(ctx, "p1/borelog/b1", 1)
	require.NoError(t, err)
	require.Equal(t, 1, v1.NumRows)
	assert.Equal(t, "silty clay", v1.Columns["description"][0])
}

func TestApproveTwiceIsIllegalTransition(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateRecord(ctx, "p1/borelog/b1", []types.Row{sampleRow()}, "stratum_layers", "u1", "")
	require.NoError(t, err)
	_, err = repo.ApproveRecord(ctx, "p1/borelog/b1", "u2", "")
	require.NoError(t, err)

	_, err = repo.ApproveRecord(ctx, "p1/borelog/b1", "u2", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
}

func TestApprovedCannotBeDirectlyRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateRecord(ctx, "p1/borelog/b1", []types.Row{sampleRow()}, "stratum_layers", "u1", "")
	require.NoError(t, err)
	_, err = repo.ApproveRecord(ctx, "p1/borelog/b1", "u2", "")
	require.NoError(t, err)

	_, err = repo.RejectRecord(ctx, "p1/borelog/b1", "u2", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
}

func TestGetLatestVersionNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, _, err := repo.GetLatestVersion(context.Background(), "missing/borelog/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

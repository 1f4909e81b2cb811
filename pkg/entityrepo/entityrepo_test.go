package entityrepo

import (
	"context"
	"testing"

	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/repository"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return New(repository.New(store))
}

func TestCreateFillsAbsentColumnsWithNull(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	result, err := repo.Create(ctx, "acme", types.EntityBorelog, "bh-1", types.Row{
		"borelog_id":      "bh-1",
		"borehole_number": "BH-1",
	}, "u1", "first draft")
	require.NoError(t, err)
	assert.Equal(t, "acme", result.Data["project_id"])
	assert.Equal(t, "BH-1", result.Data["borehole_number"])
	assert.Nil(t, result.Data["chainage"])
	assert.Equal(t, 1, result.Metadata.CurrentVersion)
}

func TestListByProjectFiltersByPrefix(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "acme", types.EntityBorelog, "bh-1", types.Row{"borelog_id": "bh-1"}, "u1", "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "other", types.EntityBorelog, "bh-2", types.Row{"borelog_id": "bh-2"}, "u1", "")
	require.NoError(t, err)

	records, err := repo.ListByProject(ctx, "acme", types.EntityBorelog, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "acme/borelog/bh-1", records[0].RecordID)
}

func TestApproveThenGetReflectsApprovedStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "acme", types.EntityBorelog, "bh-1", types.Row{"borelog_id": "bh-1"}, "u1", "")
	require.NoError(t, err)
	_, err = repo.Approve(ctx, "acme", types.EntityBorelog, "bh-1", "u2", "ok")
	require.NoError(t, err)

	result, err := repo.Get(ctx, "acme", types.EntityBorelog, "bh-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, result.Metadata.Status)
}

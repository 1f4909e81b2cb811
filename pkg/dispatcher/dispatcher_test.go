package dispatcher

import (
	"context"
	"testing"

	"github.com/boreledger/boreledger/pkg/entityrepo"
	"github.com/boreledger/boreledger/pkg/ingest"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/repository"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	repo := repository.New(store)
	entities := entityrepo.New(repo)
	return New(entities, ingest.New(entities))
}

func TestDispatchCreateThenGet(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	createResp := d.Dispatch(ctx, Request{
		Action: ActionCreate, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-1",
		Payload: types.Row{"borelog_id": "bh-1", "borehole_number": "BH-1"}, User: "u1", Comment: "first",
	})
	assert.Equal(t, 200, createResp.StatusCode)

	getResp := d.Dispatch(ctx, Request{
		Action: ActionGet, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-1",
	})
	assert.Equal(t, 200, getResp.StatusCode)
	assert.Contains(t, getResp.Body, "BH-1")
}

func TestDispatchGetMissingRecordReturns404(t *testing.T) {
	d := newTestDispatcher(t)
	resp := d.Dispatch(context.Background(), Request{
		Action: ActionGet, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "missing",
	})
	assert.Equal(t, 404, resp.StatusCode)
}

func TestDispatchUnknownActionReturns400(t *testing.T) {
	d := newTestDispatcher(t)
	resp := d.Dispatch(context.Background(), Request{Action: "bogus"})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestDispatchGetVersionReturnsPastVersion(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Dispatch(ctx, Request{
		Action: ActionCreate, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-3",
		Payload: types.Row{"borelog_id": "bh-3", "borehole_number": "BH-3-v1"}, User: "u1",
	})
	d.Dispatch(ctx, Request{
		Action: ActionUpdate, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-3",
		Payload: types.Row{"borelog_id": "bh-3", "borehole_number": "BH-3-v2"}, User: "u1",
	})

	resp := d.Dispatch(ctx, Request{
		Action: ActionGetVersion, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-3", Version: 1,
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Body, "BH-3-v1")
	assert.NotContains(t, resp.Body, "BH-3-v2")
}

func TestDispatchGetHistoryReturnsEntries(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Dispatch(ctx, Request{
		Action: ActionCreate, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-4",
		Payload: types.Row{"borelog_id": "bh-4", "borehole_number": "BH-4"}, User: "u1",
	})
	d.Dispatch(ctx, Request{Action: ActionApprove, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-4", User: "u2"})

	resp := d.Dispatch(ctx, Request{
		Action: ActionGetHistory, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-4",
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Body, "u2")
}

func TestDispatchSaveStratumCreatesThenAppendsVersion(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	first := d.Dispatch(ctx, Request{
		Action: ActionSaveStratum, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-5",
		Rows: []types.Row{{"borelog_id": "bh-5", "borehole_number": "BH-5"}}, User: "u1", Comment: "initial strata",
	})
	assert.Equal(t, 200, first.StatusCode)

	second := d.Dispatch(ctx, Request{
		Action: ActionSaveStratum, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-5",
		Rows: []types.Row{{"borelog_id": "bh-5", "borehole_number": "BH-5"}, {"borelog_id": "bh-5", "borehole_number": "BH-5"}}, User: "u1", Comment: "more strata",
	})
	assert.Equal(t, 200, second.StatusCode)
	assert.Contains(t, second.Body, `"current_version":2`)
}

func TestDispatchDoubleApproveReturns422(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	d.Dispatch(ctx, Request{
		Action: ActionCreate, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-2",
		Payload: types.Row{"borelog_id": "bh-2"}, User: "u1",
	})
	first := d.Dispatch(ctx, Request{Action: ActionApprove, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-2", User: "u2"})
	require.Equal(t, 200, first.StatusCode)
	second := d.Dispatch(ctx, Request{Action: ActionApprove, EntityType: types.EntityBorelog, ProjectID: "acme", EntityID: "bh-2", User: "u2"})
	assert.Equal(t, 422, second.StatusCode)
}

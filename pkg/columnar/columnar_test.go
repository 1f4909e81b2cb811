package columnar

import (
	"context"
	"strings"
	"testing"

	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/schema"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() schema.Schema {
	return schema.Schema{Name: "stratum_layers", Fields: []schema.Field{
		{Name: "project_id", Type: schema.String, Nullable: false},
		{Name: "borelog_id", Type: schema.String, Nullable: false},
		{Name: "ordinal", Type: schema.Int32, Nullable: false},
		{Name: "depth_from", Type: schema.Float64, Nullable: true},
		{Name: "description", Type: schema.String, Nullable: true},
	}}
}

func TestWriteRejectsEmptyRows(t *testing.T) {
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	_, err = Write(context.Background(), store, "records/p/borelog/b/versions/v1", nil, testSchema(), false)
	require.Error(t, err)
}

func TestWriteRejectsMissingRequiredField(t *testing.T) {
	store, err := objectstore.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	rows := []types.Row{{"borelog_id": "b1", "ordinal": 0}}
	_, err = Write(context.Background(), store, "records/p/borelog/b/versions/v1", rows, testSchema(), false)
	require.Error(t, err)

	var schemaErr interface{ Error() string }
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestUniqueFileKeyAppendsSuffix(t *testing.T) {
	key, err := uniqueFileKey("records/p/borelog/b/versions/v1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "records/p/borelog/b/versions/v1_"))
	assert.True(t, strings.HasSuffix(key, ".parquet"))
}

func TestPartitionDirLayout(t *testing.T) {
	dir := partitionDir("base", []string{"project_id", "status"}, map[string]any{
		"project_id": "acme",
		"status":     "draft",
	})
	assert.Equal(t, "base/project_id=acme/status=draft", dir)
}

package schema

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestLookupKnownTable(t *testing.T) {
	s, ok := Lookup("borelog_versions")
	require.True(t, ok)
	assert.Equal(t, "borelog_versions", s.Name)
	assert.NotEmpty(t, s.Fields)

	f, ok := s.Field("project_id")
	require.True(t, ok)
	assert.False(t, f.Nullable)
}

func TestLookupUnknownTable(t *testing.T) {
	_, ok := Lookup("does_not_exist")
	assert.False(t, ok)
}

func TestFieldNamesPreservesOrder(t *testing.T) {
	s, ok := Lookup("stratum_sample_points")
	require.True(t, ok)
	names := s.FieldNames()
	require.Equal(t, s.Fields[0].Name, names[0])
	require.Equal(t, s.Fields[len(s.Fields)-1].Name, names[len(names)-1])
}

func TestCompatible(t *testing.T) {
	cases := []struct {
		a, b LogicalType
		want bool
	}{
		{String, String, true},
		{Int32, Int64, true},
		{Int64, Int32, true},
		{Float64, Float64, true},
		{TimestampMS, TimestampMS, true},
		{String, Int32, false},
		{Boolean, Int32, false},
		{ListOfT, String, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, Compatible(c.a, c.b), "%s vs %s", c.a, c.b)
	}
}

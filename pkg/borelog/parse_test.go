package borelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeNumberZeroIsNotSentinel(t *testing.T) {
	v, ok := safeNumber("0")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestSafeNumberSentinels(t *testing.T) {
	for _, s := range []string{"-", "#VALUE!", "[object Object]", "", "   "} {
		_, ok := safeNumber(s)
		assert.False(t, ok, "expected sentinel %q to yield no value", s)
	}
}

func TestExtractDepthRange(t *testing.T) {
	from, to, ok := extractDepthRange("1.5-3.0 silty clay")
	require.True(t, ok)
	assert.Equal(t, 1.5, from)
	assert.Equal(t, 3.0, to)
}

func TestExtractDepthRangeNoMatch(t *testing.T) {
	_, _, ok := extractDepthRange("silty clay with gravel")
	assert.False(t, ok)
}

func TestIsSubHeaderRowDetectsLabelOnlyRow(t *testing.T) {
	assert.True(t, isSubHeaderRow([]string{"From", "To", "", "N-Value", ""}))
}

func TestIsSubHeaderRowRejectsNumericRow(t *testing.T) {
	assert.False(t, isSubHeaderRow([]string{"1.0", "2.0", "silty clay"}))
}

func TestSPTBlowsSeparateColumns(t *testing.T) {
	header := []string{"From", "To", "Description of Soil Stratum", "SPT1", "SPT2", "SPT3"}
	cm := buildColumnMap(header)
	require.True(t, cm.hasSeparateSPTColumns())
	row := []string{"1", "2", "clay", "4", "6", "9"}
	blows := sptBlows(cm, row)
	require.NotNil(t, blows[0])
	require.NotNil(t, blows[1])
	require.NotNil(t, blows[2])
	assert.Equal(t, 4, *blows[0])
	assert.Equal(t, 6, *blows[1])
	assert.Equal(t, 9, *blows[2])
}

func TestSPTBlowsSingleColumnSplit(t *testing.T) {
	header := []string{"From", "To", "Description of Soil Stratum", "15 cm blows"}
	cm := buildColumnMap(header)
	require.False(t, cm.hasSeparateSPTColumns())
	row := []string{"1", "2", "clay", "4/6/9"}
	blows := sptBlows(cm, row)
	assert.Equal(t, 4, *blows[0])
	assert.Equal(t, 6, *blows[1])
	assert.Equal(t, 9, *blows[2])
}

func TestParseStructuredDocument(t *testing.T) {
	rows := [][]string{
		{"project_name", "job_code", "stratum_description", "stratum_depth_from", "stratum_depth_to", "sample_event_type", "sample_event_depth_m"},
		{"Metro Line 3", "ML3-01", "", "", "", "", ""},
		{"", "", "Silty clay", "0", "2.5", "SPT", "1.5"},
		{"", "", "Silty clay", "0", "2.5", "SPT", "2.0"},
		{"", "", "Weathered rock", "2.5", "5.0", "", ""},
	}
	doc, err := ParseBorelogDocument(rows)
	require.NoError(t, err)
	assert.Equal(t, "Metro Line 3", doc.Metadata.ProjectName)
	require.Len(t, doc.Strata, 2)
	assert.Equal(t, "Silty clay", doc.Strata[0].Description)
	assert.Equal(t, 0.0, *doc.Strata[0].DepthFrom)
	require.Len(t, doc.Strata[0].Samples, 2)
	assert.Equal(t, "Weathered rock", doc.Strata[1].Description)
	assert.Empty(t, doc.Strata[1].Samples)
}

func TestParseTemplateDocument(t *testing.T) {
	rows := [][]string{
		{"Project Name:", "Metro Line 3"},
		{"Borehole No:", "BH-12"},
		{"From", "To", "Description of Soil Stratum", "Type of Sample", "Depth of Sample (m)", "15 cm blows"},
		{"0", "1.5", "Silty clay", "SPT", "1.0", "4/6/9"},
		{"", "", "3.0-5.0 weathered rock", "", "", ""},
		{"", "", "Termination Depth: 5.0m", "", "", ""},
	}
	doc, err := ParseBorelogDocument(rows)
	require.NoError(t, err)
	assert.Equal(t, "Metro Line 3", doc.Metadata.ProjectName)
	assert.Equal(t, "BH-12", doc.Metadata.BoreholeNumber)
	require.Len(t, doc.Strata, 2)
	assert.Equal(t, "Silty clay", doc.Strata[0].Description)
	require.Len(t, doc.Strata[0].Samples, 1)
	assert.Equal(t, 4, *doc.Strata[0].Samples[0].SPTBlows[0])
	assert.Equal(t, "weathered rock", doc.Strata[1].Description)
	assert.Equal(t, 3.0, *doc.Strata[1].DepthFrom)
	assert.Equal(t, 5.0, *doc.Strata[1].DepthTo)
}

func TestParseTemplateDocumentContinuesAfterSubHeaderRow(t *testing.T) {
	rows := [][]string{
		{"Project Name:", "Metro Line 3"},
		{"From", "To", "Description of Soil Stratum", "Type of Sample", "Depth of Sample (m)", "15 cm blows"},
		{"0", "1.5", "Silty clay", "SPT", "1.0", "4/6/9"},
		{"From", "To", "N-Value"},
		{"1.5", "3.0", "Weathered rock", "", "", ""},
	}
	doc, err := ParseBorelogDocument(rows)
	require.NoError(t, err)
	require.Len(t, doc.Strata, 2, "a stratum row after a sub-header row must still be parsed")
	assert.Equal(t, "Silty clay", doc.Strata[0].Description)
	assert.Equal(t, "Weathered rock", doc.Strata[1].Description)
	assert.Equal(t, 1.5, *doc.Strata[1].DepthFrom)
	assert.Equal(t, 3.0, *doc.Strata[1].DepthTo)
}

func TestParseUnknownHeaderReturnsError(t *testing.T) {
	rows := [][]string{{"foo", "bar"}, {"1", "2"}}
	_, err := ParseBorelogDocument(rows)
	assert.ErrorIs(t, err, errHeaderNotFound)
}

func TestBuildDepthIndex(t *testing.T) {
	rows := [][]string{
		{"project_name", "stratum_description", "stratum_depth_from", "stratum_depth_to"},
		{"P", "", "", ""},
		{"", "Clay", "0", "1.5"},
		{"", "Sand", "1.5", "3"},
	}
	doc, err := ParseBorelogDocument(rows)
	require.NoError(t, err)
	idx := BuildDepthIndex(doc.Strata)
	assert.Equal(t, 0, idx["0.000-1.500"])
	assert.Equal(t, 1, idx["1.500-3.000"])
}

package borelog

import "strings"

// field is the semantic column identity the template column-mapping
// dictionary resolves headers to.
type field int

const (
	fieldDepthFrom field = iota
	fieldDepthTo
	fieldThickness
	fieldDescription
	fieldSampleType
	fieldSampleDepth
	fieldRunLength
	fieldSPT1
	fieldSPT2
	fieldSPT3
	fieldSPTSingle
	fieldNValue
	fieldCoreLength
	fieldTCR
	fieldRQDLength
	fieldRQDPercent
	fieldReturnWaterColor
	fieldWaterLoss
	fieldBoreholeDiameter
	fieldRemarks
)

// columnPredicate is one substring rule in the fixed header dictionary.
// Predicates are tried in order; the first match for a column wins, so
// more specific entries (SPT1/SPT2/SPT3) must precede the generic
// single-column fallback.
type columnPredicate struct {
	field      field
	substrings []string
}

// columnDictionary is the fixed substring-predicate dictionary used to
// map a header cell to a logical field. Headers are lowercased before
// matching.
var columnDictionary = []columnPredicate{
	{fieldDepthFrom, []string{"from"}},
	{fieldDepthTo, []string{"to"}},
	{fieldThickness, []string{"thickness"}},
	{fieldDescription, []string{"description of soil", "description of stratum", "description"}},
	{fieldSampleType, []string{"type of sample", "sample type"}},
	{fieldSampleDepth, []string{"depth of sample", "sample depth"}},
	{fieldRunLength, []string{"run length"}},
	{fieldSPT1, []string{"spt1", "spt 1", "15 cm-1", "blows 1"}},
	{fieldSPT2, []string{"spt2", "spt 2", "15 cm-2", "blows 2"}},
	{fieldSPT3, []string{"spt3", "spt 3", "15 cm-3", "blows 3"}},
	{fieldSPTSingle, []string{"15 cm"}},
	{fieldNValue, []string{"n-value", "n value"}},
	{fieldCoreLength, []string{"core length", "total core"}},
	{fieldTCR, []string{"tcr"}},
	{fieldRQDLength, []string{"rqd length"}},
	{fieldRQDPercent, []string{"rqd"}},
	{fieldReturnWaterColor, []string{"colour", "color of return", "return water"}},
	{fieldWaterLoss, []string{"water loss"}},
	{fieldBoreholeDiameter, []string{"diameter of bore", "borehole diameter", "dia. of bore"}},
	{fieldRemarks, []string{"remark"}},
}

// columnMap is the header → column-index result of matching one row
// against columnDictionary.
type columnMap map[field]int

// buildColumnMap lowercases each header cell and matches it against
// columnDictionary in order, recording the first column index found for
// each field. Separate SPT1/SPT2/SPT3 headers take priority over the
// generic single "15 cm" column, so a document with genuinely separate
// blow-count columns never falls back to the single-cell split path.
func buildColumnMap(header []string) columnMap {
	cm := columnMap{}
	assigned := map[field]bool{}
	for idx, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		if lower == "" {
			continue
		}
	predicates:
		for _, pred := range columnDictionary {
			if assigned[pred.field] {
				continue
			}
			for _, sub := range pred.substrings {
				if strings.Contains(lower, sub) {
					cm[pred.field] = idx
					assigned[pred.field] = true
					break predicates
				}
			}
		}
	}
	return cm
}

// hasSeparateSPTColumns reports whether the column map resolved distinct
// SPT1/SPT2/SPT3 columns rather than the single "15 cm" fallback.
func (cm columnMap) hasSeparateSPTColumns() bool {
	_, a := cm[fieldSPT1]
	_, b := cm[fieldSPT2]
	_, c := cm[fieldSPT3]
	return a && b && c
}

func (cm columnMap) get(row []string, f field) string {
	idx, ok := cm[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// isSubHeaderRow detects a sub-header row that supersedes the main header
// for column indexing: every non-empty cell is one of the recognized
// header-like labels, and it has no numeric cells and at most 5 non-empty
// cells.
func isSubHeaderRow(row []string) bool {
	labels := map[string]bool{
		"from": true, "to": true, "thickness": true, "description": true,
		"type": true, "depth": true, "n-value": true, "remarks": true,
		"tcr": true, "rqd": true,
	}
	nonEmpty := 0
	for _, cell := range row {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if nonEmpty > 5 {
			return false
		}
		if _, ok := safeNumber(trimmed); ok {
			return false
		}
		if !labels[strings.ToLower(trimmed)] {
			return false
		}
	}
	return nonEmpty > 0
}

// Package borelog parses borelog CSV/XLSX documents into metadata and
// stratum records. ParseBorelogDocument is a pure function of a row
// iterator: it performs no I/O and makes no network or storage calls,
// so the async parse worker owns fetching the raw bytes and this package
// only ever sees decoded string cells.
package borelog

import (
	"strings"

	"github.com/boreledger/boreledger/pkg/types"
)

// structuredHeaderRequired are the column names that must all be present,
// case-insensitively, for a header row to be treated as the structured
// dialect.
var structuredHeaderRequired = []string{"project_name", "stratum_description", "stratum_depth_from"}

// ParseBorelogDocument consumes every row of a borelog CSV/XLSX export and
// returns the parsed metadata and stratum tree. It skips blank rows while
// searching for the header, then dispatches to the structured or template
// builder depending on which header convention it finds.
func ParseBorelogDocument(rows [][]string) (types.ParsedDocument, error) {
	var metadataRows [][]string

	for i := 0; i < len(rows); i++ {
		row := normalizeRow(rows[i])
		if !hasMeaningfulData(row) {
			continue
		}

		if looksLikeStructuredHeader(row) {
			return parseStructured(rows[i+1:], row)
		}

		metadataRows = append(metadataRows, row)
		if looksLikeTemplateHeader(row) {
			return parseTemplate(metadataRows, row, rows[i+1:])
		}
	}

	return types.ParsedDocument{}, errHeaderNotFound
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}

func hasMeaningfulData(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return true
		}
	}
	return false
}

func looksLikeStructuredHeader(row []string) bool {
	lowered := map[string]bool{}
	for _, cell := range row {
		if cell != "" {
			lowered[strings.ToLower(cell)] = true
		}
	}
	for _, required := range structuredHeaderRequired {
		if !lowered[required] {
			return false
		}
	}
	return true
}

func looksLikeTemplateHeader(row []string) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	return strings.Contains(joined, "description of soil stratum") && strings.Contains(joined, "depth")
}

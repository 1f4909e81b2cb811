package borelog

import (
	"errors"
	"strings"

	"github.com/boreledger/boreledger/pkg/types"
)

var errHeaderNotFound = errors.New(
	"borelog: failed to detect document header; expected structured columns " +
		"(project_name, stratum_description, stratum_depth_from, ...) or a " +
		"template header containing \"Description of Soil Stratum\"")

var errStructuredMissingMetadataRow = errors.New("borelog: structured document has a header but no metadata row")

type structuredRecord map[string]string

// parseStructured handles the structured dialect: the first data row after
// the header is the single borehole metadata row, every row after that is
// one (stratum, sample) tuple keyed by exact snake_case column names.
func parseStructured(dataRows [][]string, header []string) (types.ParsedDocument, error) {
	trimmedHeader := make([]string, len(header))
	for i, h := range header {
		trimmedHeader[i] = strings.TrimSpace(h)
	}

	var metadataRow structuredRecord
	var strataRows []structuredRecord

	for _, raw := range dataRows {
		row := normalizeRow(raw)
		if len(row) == 0 {
			continue
		}
		record := make(structuredRecord, len(trimmedHeader))
		for i, col := range trimmedHeader {
			if i < len(row) {
				record[col] = row[i]
			} else {
				record[col] = ""
			}
		}
		if metadataRow == nil {
			metadataRow = record
			continue
		}
		strataRows = append(strataRows, record)
	}

	if metadataRow == nil {
		return types.ParsedDocument{}, errStructuredMissingMetadataRow
	}

	return types.ParsedDocument{
		Metadata: buildStructuredMetadata(metadataRow),
		Strata:   buildStructuredStrata(strataRows),
	}, nil
}

func buildStructuredMetadata(row structuredRecord) types.BorelogMetadata {
	meta := types.BorelogMetadata{
		ProjectName:      row["project_name"],
		JobCode:          row["job_code"],
		SectionName:      row["section_name"],
		BoreholeNumber:   row["borehole_no"],
		BoringMethod:     row["method_of_boring"],
		CommencementDate: row["commencement_date"],
		CompletionDate:   row["completion_date"],
		Remarks:          row["remarks"],
	}
	if v, ok := safeNumber(row["chainage_km"]); ok {
		meta.Chainage = &v
	}
	if v, ok := safeNumber(row["msl"]); ok {
		meta.MSL = &v
	}
	if v, ok := safeNumber(row["diameter_of_hole"]); ok {
		meta.HoleDiameter = &v
	}
	if v, ok := safeNumber(row["standing_water_level"]); ok {
		meta.StandingWaterLevel = &v
	}
	if v, ok := safeNumber(row["termination_depth"]); ok {
		meta.TerminationDepth = &v
	}
	if v, ok := safeInt(row["spt_tests_count"]); ok {
		meta.TestCount = &v
	}
	if v, ok := safeInt(row["undisturbed_samples_count"]); ok {
		meta.SampleCount = &v
	}
	return meta
}

type strataKey struct {
	from, to float64
	desc     string
}

// buildStructuredStrata folds rows sharing the same (depth_from, depth_to,
// description) into one stratum with multiple samples, preserving first
// appearance order.
func buildStructuredStrata(rows []structuredRecord) []types.Stratum {
	index := map[strataKey]int{}
	var strata []types.Stratum

	for _, row := range rows {
		description := strings.TrimSpace(row["stratum_description"])
		from, fromOK := safeNumber(row["stratum_depth_from"])
		to, toOK := safeNumber(row["stratum_depth_to"])
		if description == "" || !fromOK || !toOK {
			continue
		}

		key := strataKey{from, to, description}
		idx, exists := index[key]
		if !exists {
			thickness, ok := safeNumber(row["stratum_thickness_m"])
			if !ok {
				thickness = to - from
			}
			stratum := types.Stratum{
				DepthFrom:   &from,
				DepthTo:     &to,
				Thickness:   &thickness,
				Description: description,
				Remarks:     strings.TrimSpace(row["remarks"]),
			}
			if v, ok := safeString(row["return_water_colour"]); ok {
				stratum.ReturnWaterColor = v
			}
			if v, ok := safeNumber(row["water_loss"]); ok {
				stratum.WaterLoss = &v
			}
			if v, ok := safeNumber(row["borehole_diameter"]); ok {
				stratum.BoreholeDiameter = &v
			}
			if v, ok := safeNumber(row["tcr_percent"]); ok {
				stratum.TCRPercent = &v
			}
			if v, ok := safeNumber(row["rqd_percent"]); ok {
				stratum.RQDPercent = &v
			}
			strata = append(strata, stratum)
			idx = len(strata) - 1
			index[key] = idx
		} else if strata[idx].Remarks == "" {
			strata[idx].Remarks = strings.TrimSpace(row["remarks"])
		}

		if sample, ok := buildStructuredSample(row); ok {
			strata[idx].Samples = append(strata[idx].Samples, sample)
		}
	}

	return strata
}

func buildStructuredSample(row structuredRecord) (types.Sample, bool) {
	sampleType, hasType := safeString(row["sample_event_type"])
	sampleDepth, hasDepth := safeNumber(row["sample_event_depth_m"])
	runLength, hasRun := safeNumber(row["run_length_m"])
	totalCore, hasCore := safeNumber(row["total_core_length_cm"])
	tcr, hasTCR := safeNumber(row["tcr_percent"])
	rqdLen, hasRQDLen := safeNumber(row["rqd_length_cm"])
	rqdPct, hasRQDPct := safeNumber(row["rqd_percent"])
	remarks, hasRemarks := safeString(row["remarks"])

	var blows [3]*int
	hasBlows := false
	for i, key := range []string{"spt_blows_1", "spt_blows_2", "spt_blows_3"} {
		if v, ok := safeInt(row[key]); ok {
			vv := v
			blows[i] = &vv
			hasBlows = true
		}
	}

	if !hasType && !hasDepth && !hasRun && !hasCore && !hasTCR && !hasRQDLen && !hasRQDPct && !hasBlows && !hasRemarks {
		return types.Sample{}, false
	}

	sample := types.Sample{EventType: sampleType, SPTBlows: blows, Remarks: remarks}
	if hasDepth {
		sample.EventDepth = &sampleDepth
	}
	if hasRun {
		sample.RunLength = &runLength
	}
	if hasCore {
		sample.CoreLengthCM = &totalCore
	}
	if hasTCR {
		sample.TCRPercent = &tcr
	}
	if hasRQDLen {
		sample.RQDLengthCM = &rqdLen
	}
	if hasRQDPct {
		sample.RQDPercent = &rqdPct
	}
	if v, ok := safeInt(row["n_value_is_2131"]); ok {
		sample.NValue = &v
	}
	return sample, true
}

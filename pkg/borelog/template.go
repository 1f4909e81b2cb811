package borelog

import (
	"strings"

	"github.com/boreledger/boreledger/pkg/types"
)

// templateLabelMap maps a lowercase field label found in a metadata row to
// the value key buildTemplateMetadata reads it back under.
var templateLabelMap = map[string]string{
	"project name":          "project_name",
	"job code":              "job_code",
	"section name":          "section_name",
	"chainage":              "chainage_km",
	"borehole no":           "borehole_no",
	"commencement date":     "commencement_date",
	"completion date":       "completion_date",
	"method of boring":      "method_of_boring",
	"diameter of hole":      "diameter_of_hole",
	"standing water level":  "standing_water_level",
	"termination depth":     "termination_depth",
	"mean sea level":        "mean_sea_level",
	"no. of sp test":        "spt_tests_count",
	"no. of undisturbed sample": "undisturbed_samples_count",
}

// parseTemplate handles the template dialect: metadataRows are every row
// preceding and including the header, scanned for "label: value" or
// "label | adjacent cell" pairs; the header row itself is matched against
// the column dictionary, and dataRows is streamed into strata until a
// footer marker or the input runs out.
func parseTemplate(metadataRows [][]string, header []string, dataRows [][]string) (types.ParsedDocument, error) {
	metadata := buildTemplateMetadata(metadataRows)
	cm := buildColumnMap(header)
	strata := buildTemplateStrata(dataRows, cm)
	return types.ParsedDocument{Metadata: metadata, Strata: strata}, nil
}

func buildTemplateMetadata(rows [][]string) types.BorelogMetadata {
	values := map[string]string{}

	for _, row := range rows {
		for idx, cell := range row {
			if cell == "" {
				continue
			}
			if strings.Contains(cell, ":") {
				parts := strings.SplitN(cell, ":", 2)
				label := strings.ToLower(strings.TrimSpace(parts[0]))
				value := strings.TrimSpace(parts[1])
				if key, ok := templateLabelMap[label]; ok && value != "" {
					if _, already := values[key]; !already {
						values[key] = value
					}
					continue
				}
			}

			label := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(cell), ":"))
			if key, ok := templateLabelMap[label]; ok && idx+1 < len(row) {
				value := strings.TrimSpace(row[idx+1])
				if value != "" {
					if _, already := values[key]; !already {
						values[key] = value
					}
				}
			}
		}
	}

	meta := types.BorelogMetadata{
		ProjectName:      values["project_name"],
		JobCode:          values["job_code"],
		SectionName:      values["section_name"],
		BoreholeNumber:   values["borehole_no"],
		BoringMethod:     values["method_of_boring"],
		CommencementDate: values["commencement_date"],
		CompletionDate:   values["completion_date"],
	}
	if v, ok := safeNumber(values["chainage_km"]); ok {
		meta.Chainage = &v
	}
	if v, ok := safeNumber(values["mean_sea_level"]); ok {
		meta.MSL = &v
	}
	if v, ok := safeNumber(values["diameter_of_hole"]); ok {
		meta.HoleDiameter = &v
	}
	if v, ok := safeNumber(values["standing_water_level"]); ok {
		meta.StandingWaterLevel = &v
	}
	if v, ok := safeNumber(values["termination_depth"]); ok {
		meta.TerminationDepth = &v
	}
	if v, ok := safeInt(values["spt_tests_count"]); ok {
		meta.TestCount = &v
	}
	if v, ok := safeInt(values["undisturbed_samples_count"]); ok {
		meta.SampleCount = &v
	}
	return meta
}

// buildTemplateStrata streams dataRows, re-mapping columns whenever a
// sub-header row supersedes the original header, classifying each row as a
// new stratum, an additional sample row under the current stratum, or
// neither, and stopping at a footer/termination row.
func buildTemplateStrata(rows [][]string, cm columnMap) []types.Stratum {
	var strata []types.Stratum
	var current *types.Stratum

	for _, raw := range rows {
		row := normalizeRow(raw)
		if !hasMeaningfulData(row) {
			continue
		}
		if isTerminationRow(cm, row) {
			break
		}
		if isSubHeaderRow(row) {
			for f, idx := range buildColumnMap(row) {
				cm[f] = idx
			}
			continue
		}

		if isStratumRow(cm, row) {
			from, to, thickness, desc := resolveDepths(cm, row)
			stratum := types.Stratum{
				DepthFrom:   &from,
				DepthTo:     &to,
				Thickness:   &thickness,
				Description: desc,
			}
			if v, ok := safeString(cm.get(row, fieldReturnWaterColor)); ok {
				stratum.ReturnWaterColor = v
			}
			if v, ok := safeNumber(cm.get(row, fieldWaterLoss)); ok {
				stratum.WaterLoss = &v
			}
			if v, ok := safeNumber(cm.get(row, fieldBoreholeDiameter)); ok {
				stratum.BoreholeDiameter = &v
			}
			if v, ok := safeNumber(cm.get(row, fieldTCR)); ok {
				stratum.TCRPercent = &v
			}
			if v, ok := safeNumber(cm.get(row, fieldRQDPercent)); ok {
				stratum.RQDPercent = &v
			}
			if v, ok := safeString(cm.get(row, fieldRemarks)); ok {
				stratum.Remarks = v
			}
			strata = append(strata, stratum)
			current = &strata[len(strata)-1]

			if sample, ok := buildTemplateSample(cm, row); ok {
				current.Samples = append(current.Samples, sample)
			}
			continue
		}

		if current != nil && isSampleRow(cm, row) {
			if sample, ok := buildTemplateSample(cm, row); ok {
				current.Samples = append(current.Samples, sample)
			}
		}
	}

	return strata
}

func buildTemplateSample(cm columnMap, row []string) (types.Sample, bool) {
	sampleType, hasType := safeString(cm.get(row, fieldSampleType))
	sampleDepth, hasDepth := safeNumber(cm.get(row, fieldSampleDepth))
	runLength, hasRun := safeNumber(cm.get(row, fieldRunLength))
	totalCore, hasCore := safeNumber(cm.get(row, fieldCoreLength))
	tcr, hasTCR := safeNumber(cm.get(row, fieldTCR))
	rqdLen, hasRQDLen := safeNumber(cm.get(row, fieldRQDLength))
	rqdPct, hasRQDPct := safeNumber(cm.get(row, fieldRQDPercent))
	nValue, hasNValue := safeInt(cm.get(row, fieldNValue))
	remarks, hasRemarks := safeString(cm.get(row, fieldRemarks))

	blows := sptBlows(cm, row)
	hasBlows := blows[0] != nil || blows[1] != nil || blows[2] != nil

	if !hasType && !hasDepth && !hasRun && !hasCore && !hasTCR && !hasRQDLen && !hasRQDPct && !hasBlows && !hasNValue && !hasRemarks {
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
	if hasNValue {
		sample.NValue = &nValue
	}
	return sample, true
}

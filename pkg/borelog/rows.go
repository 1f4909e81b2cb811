package borelog

import (
	"regexp"
	"strings"
)

// depthRangePattern extracts a "<num>-<num>" or "<num> to <num>" span from
// free text, used when explicit depth columns are blank but the
// description embeds the range (common in template-dialect exports).
var depthRangePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-|to)\s*(\d+(?:\.\d+)?)`)

// terminationMarkers end stratum scanning for a borehole.
var terminationMarkers = []string{"termination depth", "total depth", "end of log", "end of borehole"}

// isTerminationRow reports whether row's description marks the end of the
// stratum log.
func isTerminationRow(cm columnMap, row []string) bool {
	desc := strings.ToLower(cm.get(row, fieldDescription))
	for _, marker := range terminationMarkers {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

// isStratumRow reports whether row carries a stratum layer: a non-empty
// description and either an explicit depth_from/depth_to pair or a
// thickness value. A description-only row with no depth information
// anywhere (not even embedded in the text) is not a stratum row.
func isStratumRow(cm columnMap, row []string) bool {
	desc, ok := safeString(cm.get(row, fieldDescription))
	if !ok {
		return false
	}
	_, fromOK := safeNumber(cm.get(row, fieldDepthFrom))
	_, toOK := safeNumber(cm.get(row, fieldDepthTo))
	if fromOK && toOK {
		return true
	}
	if _, ok := safeNumber(cm.get(row, fieldThickness)); ok {
		return true
	}
	_, _, ok = extractDepthRange(desc)
	return ok
}

// extractDepthRange finds the first "<num>-<num>" span in text and returns
// its two bounds; stripDepthRange removes that span from the text.
func extractDepthRange(text string) (from, to float64, ok bool) {
	match := depthRangePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, false
	}
	from, fromOK := parseFloatLoose(match[1])
	to, toOK := parseFloatLoose(match[2])
	if !fromOK || !toOK {
		return 0, 0, false
	}
	return from, to, true
}

// stripDepthRange removes the first matched depth span from text and
// trims the surrounding punctuation/whitespace left behind.
func stripDepthRange(text string) string {
	stripped := text
	if loc := depthRangePattern.FindStringIndex(text); loc != nil {
		stripped = text[:loc[0]] + text[loc[1]:]
	}
	stripped = strings.Trim(stripped, " \t-:,")
	return stripped
}

// resolveDepths computes depth_from/depth_to/thickness for a stratum row,
// preferring explicit columns and falling back to a range embedded in the
// description text.
func resolveDepths(cm columnMap, row []string) (from, to, thickness float64, desc string) {
	desc = cm.get(row, fieldDescription)

	from, fromOK := safeNumber(cm.get(row, fieldDepthFrom))
	to, toOK := safeNumber(cm.get(row, fieldDepthTo))
	thickness, thickOK := safeNumber(cm.get(row, fieldThickness))

	if !fromOK || !toOK {
		if rangeFrom, rangeTo, ok := extractDepthRange(desc); ok {
			if !fromOK {
				from = rangeFrom
				fromOK = true
			}
			if !toOK {
				to = rangeTo
				toOK = true
			}
			desc = stripDepthRange(desc)
		}
	}

	if !thickOK && fromOK && toOK {
		thickness = to - from
	}
	return from, to, thickness, strings.TrimSpace(desc)
}

// isSampleRow reports whether row carries a sample: a recognizable sample
// type or a parseable sample depth.
func isSampleRow(cm columnMap, row []string) bool {
	if _, ok := safeString(cm.get(row, fieldSampleType)); ok {
		return true
	}
	_, ok := safeNumber(cm.get(row, fieldSampleDepth))
	return ok
}

// sptBlows reads the three SPT blow counts, preferring separate SPT1/2/3
// columns and otherwise splitting the single "15 cm" cell on '/' or
// whitespace. The result is always exactly three slots (nil where absent),
// padding short splits and discarding any cells beyond the third.
func sptBlows(cm columnMap, row []string) [3]*int {
	var blows [3]*int
	if cm.hasSeparateSPTColumns() {
		if v, ok := safeInt(cm.get(row, fieldSPT1)); ok {
			blows[0] = &v
		}
		if v, ok := safeInt(cm.get(row, fieldSPT2)); ok {
			blows[1] = &v
		}
		if v, ok := safeInt(cm.get(row, fieldSPT3)); ok {
			blows[2] = &v
		}
		return blows
	}

	cell := cm.get(row, fieldSPTSingle)
	if cell == "" {
		return blows
	}
	parts := splitSPTCell(cell)
	for i := 0; i < 3 && i < len(parts); i++ {
		if v, ok := safeInt(parts[i]); ok {
			vv := v
			blows[i] = &vv
		}
	}
	return blows
}

func splitSPTCell(cell string) []string {
	cell = strings.ReplaceAll(cell, "/", " ")
	cell = strings.ReplaceAll(cell, ",", " ")
	return strings.Fields(cell)
}

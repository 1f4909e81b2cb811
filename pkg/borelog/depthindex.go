package borelog

import (
	"fmt"

	"github.com/boreledger/boreledger/pkg/types"
)

// BuildDepthIndex maps "{depth_from:.3f}-{depth_to:.3f}" to each stratum's
// 0-based position, letting callers look up a stratum by depth range
// without re-scanning the slice.
func BuildDepthIndex(strata []types.Stratum) types.DepthIndex {
	index := make(types.DepthIndex, len(strata))
	for i, s := range strata {
		if s.DepthFrom == nil || s.DepthTo == nil {
			continue
		}
		key := fmt.Sprintf("%.3f-%.3f", *s.DepthFrom, *s.DepthTo)
		index[key] = i
	}
	return index
}

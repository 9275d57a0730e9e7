package analysis

import (
	"fmt"
	"math"
	"sort"

	"medvis/domain/core"
)

// Quantile returns the q-th quantile of data using linear interpolation between the
// closest ranks: the position is (n-1)*q on the sorted values (Hyndman-Fan type 7).
func Quantile(data []float64, q float64) (float64, error) {
	if len(data) == 0 {
		return math.NaN(), fmt.Errorf("%w: quantile of empty data", core.ErrInsufficientData)
	}
	if q < 0 || q > 1 || math.IsNaN(q) {
		return math.NaN(), fmt.Errorf("quantile %v outside [0, 1]", q)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	pos := float64(len(sorted)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, nil
}

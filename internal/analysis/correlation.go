package analysis

import (
	"fmt"
	"math"

	"medvis/domain/exam"
	"medvis/domain/stats"
	apperrors "medvis/internal/errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinCorrelationRows is the smallest sample a Pearson coefficient is defined on.
const MinCorrelationRows = 2

// Correlate computes the Pearson correlation matrix over every numeric column of the
// derived table, in exam.DerivedColumns order.
//
// The diagonal is exactly 1, including for constant columns. A constant column has a NaN
// coefficient against every other column. Coefficients are clamped to [-1, 1].
func Correlate(table *exam.DerivedTable) (*stats.CorrelationMatrix, error) {
	if table == nil || table.Len() < MinCorrelationRows {
		n := 0
		if table != nil {
			n = table.Len()
		}
		return nil, apperrors.DegenerateSubset(fmt.Sprintf(
			"correlation needs at least %d rows, subset has %d", MinCorrelationRows, n))
	}

	columns := exam.DerivedColumns()
	names := make([]string, len(columns))
	data := make([][]float64, len(columns))
	constant := make([]bool, len(columns))
	for i, col := range columns {
		values, err := table.Column(col)
		if err != nil {
			return nil, err
		}
		names[i] = string(col)
		data[i] = values
		constant[i] = floats.Max(values) == floats.Min(values)
	}

	m := stats.NewCorrelationMatrix(names, table.Len())
	for i := range columns {
		for j := i + 1; j < len(columns); j++ {
			if constant[i] || constant[j] {
				m.Set(i, j, math.NaN())
				continue
			}
			m.Set(i, j, clampUnit(stat.Correlation(data[i], data[j], nil)))
		}
	}
	return m, nil
}

func clampUnit(r float64) float64 {
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

// UpperTriangleMask hides every cell strictly above the diagonal. The diagonal and the
// lower triangle stay visible, so each column pair is shown exactly once.
func UpperTriangleMask(n int) stats.Mask {
	mask := make(stats.Mask, n)
	for i := range mask {
		mask[i] = make([]bool, n)
		for j := i + 1; j < n; j++ {
			mask[i][j] = true
		}
	}
	return mask
}

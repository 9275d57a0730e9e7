package analysis

import (
	"fmt"

	"medvis/domain/exam"
	"medvis/domain/stats"
	apperrors "medvis/internal/errors"
)

// HeatmapSubset keeps rows whose diastolic pressure does not exceed the systolic one and
// whose height and weight lie inside the inclusive percentile range of their column.
// Percentiles are taken over the full input table. The input is not modified.
func HeatmapSubset(table *exam.DerivedTable, bounds stats.SubsetBounds) (*exam.DerivedTable, stats.SubsetSummary, error) {
	var summary stats.SubsetSummary
	if table == nil || table.Len() == 0 {
		return nil, summary, apperrors.DegenerateSubset("heatmap subset: input table is empty")
	}
	if bounds.LowerQuantile < 0 || bounds.UpperQuantile > 1 || bounds.LowerQuantile > bounds.UpperQuantile {
		return nil, summary, apperrors.InvalidInput(fmt.Sprintf("heatmap subset: invalid quantile bounds [%v, %v]",
			bounds.LowerQuantile, bounds.UpperQuantile))
	}

	heightRange, err := columnRange(table, exam.ColHeight, bounds)
	if err != nil {
		return nil, summary, err
	}
	weightRange, err := columnRange(table, exam.ColWeight, bounds)
	if err != nil {
		return nil, summary, err
	}

	summary.BaseRows = table.Len()
	summary.HeightRange = heightRange
	summary.WeightRange = weightRange

	subset := table.Filter(func(s exam.Subject) bool {
		if s.APLo > s.APHi {
			summary.PressureDrops++
			return false
		}
		if !heightRange.Contains(s.Height) || !weightRange.Contains(s.Weight) {
			summary.OutlierDropped++
			return false
		}
		return true
	})
	summary.KeptRows = subset.Len()

	return subset, summary, nil
}

func columnRange(table *exam.DerivedTable, col exam.Column, bounds stats.SubsetBounds) (stats.Range, error) {
	values, err := table.Column(col)
	if err != nil {
		return stats.Range{}, err
	}
	lo, err := Quantile(values, bounds.LowerQuantile)
	if err != nil {
		return stats.Range{}, apperrors.Wrapf(err, "quantile %v of %s", bounds.LowerQuantile, col)
	}
	hi, err := Quantile(values, bounds.UpperQuantile)
	if err != nil {
		return stats.Range{}, apperrors.Wrapf(err, "quantile %v of %s", bounds.UpperQuantile, col)
	}
	return stats.Range{Min: lo, Max: hi}, nil
}

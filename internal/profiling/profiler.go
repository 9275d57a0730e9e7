package profiling

import (
	"fmt"

	"medvis/domain/exam"
)

// DataProfiler profiles every numeric column of a derived table
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{
		analyzer: NewDistributionAnalyzer(),
	}
}

// ProfileColumn summarises a single column
func (dp *DataProfiler) ProfileColumn(name string, data []float64) (ColumnProfile, error) {
	return dp.analyzer.AnalyzeColumn(name, data)
}

// ProfileTable summarises all columns in exam.DerivedColumns order
func (dp *DataProfiler) ProfileTable(table *exam.DerivedTable) ([]ColumnProfile, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("profile: table is empty")
	}

	columns := exam.DerivedColumns()
	profiles := make([]ColumnProfile, 0, len(columns))
	for _, col := range columns {
		values, err := table.Column(col)
		if err != nil {
			return nil, err
		}
		p, err := dp.ProfileColumn(string(col), values)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", col, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

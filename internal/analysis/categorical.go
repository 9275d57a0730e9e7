package analysis

import (
	"fmt"
	"sort"

	"medvis/domain/exam"
	"medvis/domain/stats"

	"github.com/go-gota/gota/dataframe"
)

// Melt reshapes the binary indicators from one column each into one row per subject per
// indicator, keeping cardio as the id column. Rows come out subject-major in
// indicator declaration order.
func Melt(table *exam.DerivedTable) ([]stats.LongRow, error) {
	if table == nil {
		return nil, fmt.Errorf("melt: nil table")
	}

	long := make([]stats.LongRow, 0, table.Len()*len(exam.Indicators))
	for i := 0; i < table.Len(); i++ {
		s := table.At(i)
		for _, col := range exam.Indicators {
			v, ok := s.Value(col)
			if !ok {
				return nil, fmt.Errorf("melt: unknown indicator %s", col)
			}
			long = append(long, stats.LongRow{
				Cardio:   s.Cardio,
				Variable: string(col),
				Value:    int(v),
			})
		}
	}
	return long, nil
}

// countColumn is the gota aggregation output for a COUNT over Variable
var countColumn = fmt.Sprintf("%s_%s", "Variable", dataframe.Aggregation_COUNT)

// CountCategories counts long rows per (cardio, variable, value). Only observed
// combinations appear, sorted by cardio, then variable name, then value.
func CountCategories(long []stats.LongRow) ([]stats.CategoryCount, error) {
	if len(long) == 0 {
		return []stats.CategoryCount{}, nil
	}

	df := dataframe.LoadStructs(long)
	if df.Err != nil {
		return nil, fmt.Errorf("count categories: %w", df.Err)
	}
	groups := df.GroupBy("Cardio", "Variable", "Value")
	if groups.Err != nil {
		return nil, fmt.Errorf("count categories: %w", groups.Err)
	}
	agg := groups.Aggregation([]dataframe.AggregationType{dataframe.Aggregation_COUNT}, []string{"Variable"})
	if agg.Err != nil {
		return nil, fmt.Errorf("count categories: %w", agg.Err)
	}

	cardio, err := agg.Col("Cardio").Int()
	if err != nil {
		return nil, fmt.Errorf("count categories: cardio: %w", err)
	}
	value, err := agg.Col("Value").Int()
	if err != nil {
		return nil, fmt.Errorf("count categories: value: %w", err)
	}
	variable := agg.Col("Variable").Records()
	totals := agg.Col(countColumn).Float()

	counts := make([]stats.CategoryCount, agg.Nrow())
	for i := range counts {
		counts[i] = stats.CategoryCount{
			Cardio:   cardio[i],
			Variable: variable[i],
			Value:    value[i],
			Total:    int(totals[i]),
		}
	}

	sort.Slice(counts, func(i, j int) bool {
		a, b := counts[i], counts[j]
		if a.Cardio != b.Cardio {
			return a.Cardio < b.Cardio
		}
		if a.Variable != b.Variable {
			return a.Variable < b.Variable
		}
		return a.Value < b.Value
	})
	return counts, nil
}

// SummarizeCategories melts and counts in one step
func SummarizeCategories(table *exam.DerivedTable) ([]stats.CategoryCount, error) {
	long, err := Melt(table)
	if err != nil {
		return nil, err
	}
	return CountCategories(long)
}

// TotalsByCardio sums the counts of each cardio panel
func TotalsByCardio(counts []stats.CategoryCount) map[int]int {
	totals := make(map[int]int)
	for _, c := range counts {
		totals[c.Cardio] += c.Total
	}
	return totals
}

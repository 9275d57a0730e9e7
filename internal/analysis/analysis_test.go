package analysis

import (
	"math"
	"sort"
	"testing"

	"medvis/domain/exam"
	"medvis/domain/stats"
	apperrors "medvis/internal/errors"
	"medvis/internal/testkit"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	data := []float64{4, 1, 3, 2}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.5, 2.5},
		{1, 4},
		{0.25, 1.75},
	}
	for _, tt := range tests {
		got, err := Quantile(data, tt.q)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "q=%v", tt.q)
	}
	assert.Equal(t, []float64{4, 1, 3, 2}, data, "input must not be sorted in place")

	hundred := make([]float64, 100)
	for i := range hundred {
		hundred[i] = float64(i + 1)
	}
	got, err := Quantile(hundred, 0.025)
	require.NoError(t, err)
	assert.InDelta(t, 3.475, got, 1e-9)

	_, err = Quantile(nil, 0.5)
	assert.Error(t, err)
	_, err = Quantile(data, 1.5)
	assert.Error(t, err)
}

func TestCountCategories(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	long, err := Melt(table)
	require.NoError(t, err)
	assert.Len(t, long, table.Len()*6)
	assert.Equal(t, stats.LongRow{Cardio: 0, Variable: "cholesterol", Value: 0}, long[0])

	counts, err := CountCategories(long)
	require.NoError(t, err)

	totals := TotalsByCardio(counts)
	assert.Equal(t, 3*6, totals[0])
	assert.Equal(t, 3*6, totals[1])

	var cardio0Order []string
	for _, c := range counts {
		if c.Cardio == 0 && c.Value == 0 {
			cardio0Order = append(cardio0Order, c.Variable)
		}
	}
	assert.Equal(t, []string{"active", "alco", "cholesterol", "gluc", "overweight", "smoke"}, cardio0Order)

	find := func(cardio int, variable string, value int) int {
		for _, c := range counts {
			if c.Cardio == cardio && c.Variable == variable && c.Value == value {
				return c.Total
			}
		}
		return -1
	}
	// cardio 0 rows are subjects 1, 2 and 5 with cholesterol 1, 2, 2
	assert.Equal(t, 1, find(0, "cholesterol", 0))
	assert.Equal(t, 2, find(0, "cholesterol", 1))
	assert.Equal(t, 3, find(0, "overweight", 0))
	assert.Equal(t, -1, find(0, "overweight", 1), "unobserved combinations are not emitted")
}

func TestCountCategoriesMatchesTally(t *testing.T) {
	cfg := testkit.DefaultExamConfig()
	cfg.SubjectCount = 400
	table := deriveTable(t, testkit.NewExamGenerator(cfg).Generate())

	long, err := Melt(table)
	require.NoError(t, err)
	counts, err := CountCategories(long)
	require.NoError(t, err)

	tally := map[stats.CategoryCount]int{}
	for _, row := range long {
		tally[stats.CategoryCount{Cardio: row.Cardio, Variable: row.Variable, Value: row.Value}]++
	}
	var want []stats.CategoryCount
	for k, n := range tally {
		k.Total = n
		want = append(want, k)
	}
	sort.Slice(want, func(i, j int) bool {
		a, b := want[i], want[j]
		if a.Cardio != b.Cardio {
			return a.Cardio < b.Cardio
		}
		if a.Variable != b.Variable {
			return a.Variable < b.Variable
		}
		return a.Value < b.Value
	})

	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("grouped counts differ from a direct tally (-want +got):\n%s", diff)
	}

	empty, err := CountCategories(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSummarizeCategoriesIsIdempotent(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	first, err := SummarizeCategories(table)
	require.NoError(t, err)
	second, err := SummarizeCategories(table)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second summary differs (-first +second):\n%s", diff)
	}
}

func TestHeatmapSubset(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	subset, summary, err := HeatmapSubset(table, stats.DefaultSubsetBounds())
	require.NoError(t, err)

	assert.InDelta(t, 151.25, summary.HeightRange.Min, 1e-9)
	assert.InDelta(t, 198.75, summary.HeightRange.Max, 1e-9)
	assert.Equal(t, 4, subset.Len())
	assert.Equal(t, 6, summary.BaseRows)
	assert.Equal(t, 4, summary.KeptRows)
	assert.Equal(t, 6, table.Len(), "base table must be unchanged")
}

func TestHeatmapSubsetDropsInvertedPressure(t *testing.T) {
	records := fixtureRecords()
	// subject 3 sits in the middle of the height and weight ranges
	records[2].APHi = 80
	records[2].APLo = 90
	table := deriveTable(t, records)

	subset, summary, err := HeatmapSubset(table, stats.DefaultSubsetBounds())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PressureDrops)
	assert.Equal(t, 3, subset.Len())
	assert.LessOrEqual(t, subset.Len(), table.Len())
	for _, s := range subset.Subjects() {
		assert.NotEqual(t, int64(3), s.ID)
		assert.LessOrEqual(t, s.APLo, s.APHi)
	}
}

func TestHeatmapSubsetRejectsBadBounds(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	_, _, err := HeatmapSubset(table, stats.SubsetBounds{LowerQuantile: 0.9, UpperQuantile: 0.1})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestCorrelate(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	m, err := Correlate(table)
	require.NoError(t, err)
	require.Equal(t, 14, m.Size())
	assert.Equal(t, 6, m.SampleSize)

	for i := 0; i < m.Size(); i++ {
		assert.Equal(t, 1.0, m.At(i, i), "diagonal of %s", m.Columns[i])
		for j := 0; j < m.Size(); j++ {
			a, b := m.At(i, j), m.At(j, i)
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b))
				continue
			}
			assert.Equal(t, a, b)
			assert.GreaterOrEqual(t, a, -1.0)
			assert.LessOrEqual(t, a, 1.0)
		}
	}

	r, ok := m.Get("height", "weight")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestCorrelateZeroVarianceColumn(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	m, err := Correlate(table)
	require.NoError(t, err)

	ow, ok := m.Index(string(exam.ColOverweight))
	require.True(t, ok)
	assert.Equal(t, 1.0, m.At(ow, ow))
	for j := 0; j < m.Size(); j++ {
		if j == ow {
			continue
		}
		assert.True(t, math.IsNaN(m.At(ow, j)), "overweight vs %s", m.Columns[j])
		assert.True(t, math.IsNaN(m.At(j, ow)))
	}
}

func TestCorrelateDegenerate(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	empty := table.Filter(func(exam.Subject) bool { return false })
	_, err := Correlate(empty)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDegenerateSubset, apperrors.GetCode(err))

	single := table.Filter(func(s exam.Subject) bool { return s.ID == 1 })
	_, err = Correlate(single)
	assert.Equal(t, apperrors.CodeDegenerateSubset, apperrors.GetCode(err))

	_, err = Correlate(nil)
	assert.Error(t, err)
}

func TestCorrelateIsIdempotent(t *testing.T) {
	table := deriveTable(t, fixtureRecords())

	first, err := Correlate(table)
	require.NoError(t, err)
	second, err := Correlate(table)
	require.NoError(t, err)

	a, b := first.Rows(), second.Rows()
	for i := range a {
		for j := range a[i] {
			if math.IsNaN(a[i][j]) {
				assert.True(t, math.IsNaN(b[i][j]))
				continue
			}
			assert.Equal(t, a[i][j], b[i][j])
		}
	}
}

func TestUpperTriangleMask(t *testing.T) {
	mask := UpperTriangleMask(4)

	assert.Equal(t, 10, mask.VisibleCount())
	for i := 0; i < 4; i++ {
		assert.True(t, mask.Visible(i, i), "diagonal stays visible")
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			// exactly one of (i, j) and (j, i) is visible
			assert.NotEqual(t, mask.Visible(i, j), mask.Visible(j, i))
		}
	}
	assert.False(t, mask.Visible(0, 3))
	assert.True(t, mask.Visible(3, 0))
}

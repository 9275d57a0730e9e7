package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ============================================================================
// CATEGORICAL SUMMARY
// ============================================================================

// LongRow is one (subject, indicator) pair of the melted table
type LongRow struct {
	Cardio   int    `json:"cardio"`
	Variable string `json:"variable"`
	Value    int    `json:"value"`
}

// CategoryCount is the number of long rows sharing (cardio, variable, value)
type CategoryCount struct {
	Cardio   int    `json:"cardio"`
	Variable string `json:"variable"`
	Value    int    `json:"value"`
	Total    int    `json:"total"`
}

// ============================================================================
// HEATMAP SUBSET
// ============================================================================

// SubsetBounds are the inclusive percentile limits applied to height and weight
type SubsetBounds struct {
	LowerQuantile float64 `json:"lower_quantile"`
	UpperQuantile float64 `json:"upper_quantile"`
}

// DefaultSubsetBounds keeps the central 95% of height and weight
func DefaultSubsetBounds() SubsetBounds {
	return SubsetBounds{LowerQuantile: 0.025, UpperQuantile: 0.975}
}

// Range is a closed interval
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// SubsetSummary records how the heatmap subset was cut
type SubsetSummary struct {
	BaseRows       int   `json:"base_rows"`
	KeptRows       int   `json:"kept_rows"`
	PressureDrops  int   `json:"pressure_drops"`
	HeightRange    Range `json:"height_range"`
	WeightRange    Range `json:"weight_range"`
	OutlierDropped int   `json:"outlier_dropped"`
}

// ============================================================================
// CORRELATION MATRIX
// ============================================================================

// CorrelationMatrix is a symmetric matrix of pairwise Pearson coefficients
type CorrelationMatrix struct {
	Columns    []string
	SampleSize int
	values     *mat.SymDense
}

// NewCorrelationMatrix allocates a matrix over the given columns with a unit diagonal
func NewCorrelationMatrix(columns []string, sampleSize int) *CorrelationMatrix {
	n := len(columns)
	m := &CorrelationMatrix{
		Columns:    append([]string(nil), columns...),
		SampleSize: sampleSize,
		values:     mat.NewSymDense(n, nil),
	}
	for i := 0; i < n; i++ {
		m.values.SetSym(i, i, 1)
	}
	return m
}

// Size is the number of columns
func (m *CorrelationMatrix) Size() int { return len(m.Columns) }

// At returns the coefficient for columns i and j
func (m *CorrelationMatrix) At(i, j int) float64 { return m.values.At(i, j) }

// Set stores the coefficient for the pair (i, j) and (j, i)
func (m *CorrelationMatrix) Set(i, j int, v float64) { m.values.SetSym(i, j, v) }

// Index finds a column by name
func (m *CorrelationMatrix) Index(name string) (int, bool) {
	for i, c := range m.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Get returns the coefficient for two named columns
func (m *CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, ok := m.Index(a)
	if !ok {
		return math.NaN(), false
	}
	j, ok := m.Index(b)
	if !ok {
		return math.NaN(), false
	}
	return m.At(i, j), true
}

// Rows copies the matrix into a row-major slice
func (m *CorrelationMatrix) Rows() [][]float64 {
	n := m.Size()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

// Mask marks cells hidden from display; Mask[i][j] == true hides row i, column j.
type Mask [][]bool

// Visible reports whether cell (i, j) is drawn
func (m Mask) Visible(i, j int) bool {
	return !m[i][j]
}

// VisibleCount is the number of drawn cells
func (m Mask) VisibleCount() int {
	count := 0
	for i := range m {
		for j := range m[i] {
			if !m[i][j] {
				count++
			}
		}
	}
	return count
}

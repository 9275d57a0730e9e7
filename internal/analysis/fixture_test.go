package analysis

import (
	"testing"

	"medvis/domain/exam"

	"github.com/stretchr/testify/require"
)

// fixtureRecords has height and weight on a line (weight = height - 100) and every BMI
// at or below 25, so overweight is constant.
func fixtureRecords() []exam.Examination {
	rows := [][]float64{
		// id, age, gender, height, weight, ap_hi, ap_lo, chol, gluc, smoke, alco, active, cardio
		{1, 18000, 1, 150, 50, 110, 70, 1, 1, 0, 0, 1, 0},
		{2, 19000, 2, 160, 60, 120, 80, 2, 1, 1, 0, 0, 0},
		{3, 20000, 1, 170, 70, 130, 85, 3, 2, 0, 1, 1, 1},
		{4, 21000, 2, 180, 80, 140, 90, 1, 3, 1, 0, 1, 1},
		{5, 22000, 1, 190, 90, 150, 95, 2, 1, 0, 1, 0, 0},
		{6, 23000, 2, 200, 100, 160, 100, 1, 2, 1, 1, 1, 1},
	}
	columns := make(map[exam.Column][]float64)
	for _, row := range rows {
		for i, spec := range exam.Schema {
			columns[spec.Name] = append(columns[spec.Name], row[i])
		}
	}
	records, err := exam.RecordsFromColumns(columns)
	if err != nil {
		panic(err)
	}
	return records
}

func deriveTable(t *testing.T, records []exam.Examination) *exam.DerivedTable {
	t.Helper()
	raw, err := exam.NewRawTable(records)
	require.NoError(t, err)
	derived, err := exam.Derive(raw)
	require.NoError(t, err)
	return derived
}

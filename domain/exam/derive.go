package exam

import (
	"fmt"

	"medvis/domain/core"
)

// OverweightBMI is the body-mass index above which a subject counts as overweight.
const OverweightBMI = 25.0

// BMI is weight in kilograms over the square of height in meters
func BMI(heightCM, weightKG float64) float64 {
	h := heightCM / 100
	return weightKG / (h * h)
}

// OverweightFlag is 1 for a BMI strictly above 25, otherwise 0
func OverweightFlag(bmi float64) int {
	if bmi > OverweightBMI {
		return 1
	}
	return 0
}

// RecodeOrdinal maps the "normal" level 1 to 0 and every other level to 1
func RecodeOrdinal(v int) int {
	if v == 1 {
		return 0
	}
	return 1
}

// Derive adds the overweight flag and recodes cholesterol and gluc. The raw table is left
// untouched; the result has the same rows in the same order.
func Derive(raw *RawTable) (*DerivedTable, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: derive called with nil table", core.ErrEmptyTable)
	}

	subjects := make([]Subject, len(raw.records))
	for i, rec := range raw.records {
		s := Subject{Examination: rec}
		s.Cholesterol = RecodeOrdinal(rec.Cholesterol)
		s.Gluc = RecodeOrdinal(rec.Gluc)
		s.Overweight = OverweightFlag(BMI(rec.Height, rec.Weight))
		subjects[i] = s
	}
	return &DerivedTable{subjects: subjects}, nil
}

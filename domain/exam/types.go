package exam

import (
	"fmt"
	"math"

	"medvis/domain/core"
)

// Examination is one subject's row as loaded from the input file
type Examination struct {
	ID          int64   `json:"id"`
	Age         int     `json:"age"` // days
	Gender      int     `json:"gender"`
	Height      float64 `json:"height"` // cm
	Weight      float64 `json:"weight"` // kg
	APHi        int     `json:"ap_hi"`
	APLo        int     `json:"ap_lo"`
	Cholesterol int     `json:"cholesterol"`
	Gluc        int     `json:"gluc"`
	Smoke       int     `json:"smoke"`
	Alco        int     `json:"alco"`
	Active      int     `json:"active"`
	Cardio      int     `json:"cardio"`
}

// Value returns the named column as a float64
func (e Examination) Value(col Column) (float64, bool) {
	switch col {
	case ColID:
		return float64(e.ID), true
	case ColAge:
		return float64(e.Age), true
	case ColGender:
		return float64(e.Gender), true
	case ColHeight:
		return e.Height, true
	case ColWeight:
		return e.Weight, true
	case ColAPHi:
		return float64(e.APHi), true
	case ColAPLo:
		return float64(e.APLo), true
	case ColCholesterol:
		return float64(e.Cholesterol), true
	case ColGluc:
		return float64(e.Gluc), true
	case ColSmoke:
		return float64(e.Smoke), true
	case ColAlco:
		return float64(e.Alco), true
	case ColActive:
		return float64(e.Active), true
	case ColCardio:
		return float64(e.Cardio), true
	}
	return 0, false
}

func (e *Examination) set(col Column, v float64) {
	switch col {
	case ColID:
		e.ID = int64(v)
	case ColAge:
		e.Age = int(v)
	case ColGender:
		e.Gender = int(v)
	case ColHeight:
		e.Height = v
	case ColWeight:
		e.Weight = v
	case ColAPHi:
		e.APHi = int(v)
	case ColAPLo:
		e.APLo = int(v)
	case ColCholesterol:
		e.Cholesterol = int(v)
	case ColGluc:
		e.Gluc = int(v)
	case ColSmoke:
		e.Smoke = int(v)
	case ColAlco:
		e.Alco = int(v)
	case ColActive:
		e.Active = int(v)
	case ColCardio:
		e.Cardio = int(v)
	}
}

// Validate checks the physical and categorical constraints of a record.
// row is the 1-based data row used in error messages.
func (e Examination) Validate(row int) error {
	if e.Height <= 0 {
		return core.NewRowError(string(ColHeight), row, fmt.Sprintf("must be positive, got %v", e.Height))
	}
	if e.Weight <= 0 {
		return core.NewRowError(string(ColWeight), row, fmt.Sprintf("must be positive, got %v", e.Weight))
	}
	for _, spec := range Schema {
		if spec.Kind != KindBinary {
			continue
		}
		v, _ := e.Value(spec.Name)
		if v != 0 && v != 1 {
			return core.NewRowError(string(spec.Name), row, fmt.Sprintf("must be 0 or 1, got %v", v))
		}
	}
	return nil
}

// RecordsFromColumns assembles records from per-column values keyed by schema column.
// Every schema column must be present with the same length.
func RecordsFromColumns(columns map[Column][]float64) ([]Examination, error) {
	n := -1
	for _, spec := range Schema {
		values, ok := columns[spec.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, spec.Name)
		}
		if n >= 0 && len(values) != n {
			return nil, core.NewValidationError(string(spec.Name),
				fmt.Sprintf("has %d values, expected %d", len(values), n))
		}
		n = len(values)
	}

	records := make([]Examination, n)
	for _, spec := range Schema {
		for i, v := range columns[spec.Name] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewRowError(string(spec.Name), i+1, "missing or non-finite value")
			}
			if spec.Kind != KindReal && v != math.Trunc(v) {
				return nil, core.NewRowError(string(spec.Name), i+1, fmt.Sprintf("expected %s value, got %v", spec.Kind, v))
			}
			records[i].set(spec.Name, v)
		}
	}
	return records, nil
}

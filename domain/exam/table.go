package exam

import (
	"fmt"

	"medvis/domain/core"
)

// RawTable holds examination records exactly as loaded. It is never mutated.
type RawTable struct {
	records []Examination
}

// NewRawTable validates records and wraps them in a raw table
func NewRawTable(records []Examination) (*RawTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no examination records", core.ErrEmptyTable)
	}
	for i, rec := range records {
		if err := rec.Validate(i + 1); err != nil {
			return nil, err
		}
	}
	owned := make([]Examination, len(records))
	copy(owned, records)
	return &RawTable{records: owned}, nil
}

// Len returns the number of subjects
func (t *RawTable) Len() int { return len(t.records) }

// Records returns a copy of the loaded records
func (t *RawTable) Records() []Examination {
	out := make([]Examination, len(t.records))
	copy(out, t.records)
	return out
}

// Subject is an examination after feature derivation: cholesterol and gluc hold the
// binary recoding and Overweight is set.
type Subject struct {
	Examination
	Overweight int `json:"overweight"`
}

// Value returns the named column, including the derived overweight flag
func (s Subject) Value(col Column) (float64, bool) {
	if col == ColOverweight {
		return float64(s.Overweight), true
	}
	return s.Examination.Value(col)
}

// DerivedTable is the table every report reads. Only Derive and Filter construct one,
// so the ordinal recoding is applied exactly once per subject.
type DerivedTable struct {
	subjects []Subject
}

// Len returns the number of subjects
func (t *DerivedTable) Len() int { return len(t.subjects) }

// At returns the i-th subject
func (t *DerivedTable) At(i int) Subject { return t.subjects[i] }

// Subjects returns a copy of all rows
func (t *DerivedTable) Subjects() []Subject {
	out := make([]Subject, len(t.subjects))
	copy(out, t.subjects)
	return out
}

// Column extracts one numeric column in row order
func (t *DerivedTable) Column(col Column) ([]float64, error) {
	out := make([]float64, len(t.subjects))
	for i, s := range t.subjects {
		v, ok := s.Value(col)
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, col)
		}
		out[i] = v
	}
	return out, nil
}

// Filter returns a new table with the rows keep accepts. The receiver is unchanged.
func (t *DerivedTable) Filter(keep func(Subject) bool) *DerivedTable {
	out := make([]Subject, 0, len(t.subjects))
	for _, s := range t.subjects {
		if keep(s) {
			out = append(out, s)
		}
	}
	return &DerivedTable{subjects: out}
}

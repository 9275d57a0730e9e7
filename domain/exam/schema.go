package exam

import "strings"

// Column names a field of the examination table
type Column string

const (
	ColID          Column = "id"
	ColAge         Column = "age"
	ColGender      Column = "gender"
	ColHeight      Column = "height"
	ColWeight      Column = "weight"
	ColAPHi        Column = "ap_hi"
	ColAPLo        Column = "ap_lo"
	ColCholesterol Column = "cholesterol"
	ColGluc        Column = "gluc"
	ColSmoke       Column = "smoke"
	ColAlco        Column = "alco"
	ColActive      Column = "active"
	ColCardio      Column = "cardio"

	// ColOverweight only exists on derived tables.
	ColOverweight Column = "overweight"
)

func (c Column) String() string { return string(c) }

// ValueKind constrains the values a column may hold
type ValueKind int

const (
	KindReal ValueKind = iota
	KindInteger
	KindBinary
)

func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBinary:
		return "binary"
	default:
		return "real"
	}
}

// ColumnSpec describes one required input column
type ColumnSpec struct {
	Name    Column
	Aliases []string
	Kind    ValueKind
}

// Matches reports whether a header cell names this column
func (s ColumnSpec) Matches(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == string(s.Name) {
		return true
	}
	for _, a := range s.Aliases {
		if h == a {
			return true
		}
	}
	return false
}

// Schema lists the input columns in declaration order.
var Schema = []ColumnSpec{
	{Name: ColID, Kind: KindInteger},
	{Name: ColAge, Kind: KindInteger},
	{Name: ColGender, Aliases: []string{"sex"}, Kind: KindInteger},
	{Name: ColHeight, Kind: KindReal},
	{Name: ColWeight, Kind: KindReal},
	{Name: ColAPHi, Kind: KindInteger},
	{Name: ColAPLo, Kind: KindInteger},
	{Name: ColCholesterol, Kind: KindInteger},
	{Name: ColGluc, Kind: KindInteger},
	{Name: ColSmoke, Kind: KindBinary},
	{Name: ColAlco, Kind: KindBinary},
	{Name: ColActive, Kind: KindBinary},
	{Name: ColCardio, Kind: KindBinary},
}

// DerivedColumns lists every numeric column of a derived table, schema order then overweight.
func DerivedColumns() []Column {
	cols := make([]Column, 0, len(Schema)+1)
	for _, spec := range Schema {
		cols = append(cols, spec.Name)
	}
	return append(cols, ColOverweight)
}

// Indicators are the binary risk factors summarised by the categorical report.
var Indicators = []Column{ColCholesterol, ColGluc, ColSmoke, ColAlco, ColActive, ColOverweight}

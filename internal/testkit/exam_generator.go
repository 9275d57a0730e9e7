package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"

	"medvis/domain/exam"

	"github.com/xuri/excelize/v2"
)

// ExamGeneratorConfig configures the synthetic examination generator
type ExamGeneratorConfig struct {
	SubjectCount         int     `json:"subject_count"`
	Seed                 int64   `json:"seed"`
	CardioRate           float64 `json:"cardio_rate"`
	SmokeRate            float64 `json:"smoke_rate"`
	AlcoRate             float64 `json:"alco_rate"`
	ActiveRate           float64 `json:"active_rate"`
	InvertedPressureRate float64 `json:"inverted_pressure_rate"` // rows with ap_lo > ap_hi
	GenderHeader         string  `json:"gender_header"`          // "gender" or "sex"
}

// DefaultExamConfig returns defaults close to the public cardiovascular dataset
func DefaultExamConfig() ExamGeneratorConfig {
	return ExamGeneratorConfig{
		SubjectCount:         1000,
		Seed:                 42,
		CardioRate:           0.5,
		SmokeRate:            0.09,
		AlcoRate:             0.05,
		ActiveRate:           0.8,
		InvertedPressureRate: 0.02,
		GenderHeader:         "sex",
	}
}

// ExamGenerator generates deterministic examination records
type ExamGenerator struct {
	config ExamGeneratorConfig
	rng    *rand.Rand
}

// NewExamGenerator creates a new examination generator
func NewExamGenerator(config ExamGeneratorConfig) *ExamGenerator {
	return &ExamGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces SubjectCount records; the same seed always yields the same records
func (g *ExamGenerator) Generate() []exam.Examination {
	records := make([]exam.Examination, g.config.SubjectCount)
	for i := range records {
		records[i] = g.subject(int64(i))
	}
	return records
}

func (g *ExamGenerator) subject(id int64) exam.Examination {
	cardio := g.flag(g.config.CardioRate)
	gender := 1 + g.flag(0.35)

	height := g.normal(164, 8, 120, 210)
	if gender == 2 {
		height = g.normal(170, 7, 130, 210)
	}
	// Cardio subjects skew heavier and older.
	weight := g.normal(72+6*float64(cardio), 13, 35, 180)
	age := int(g.normal(19500+1000*float64(cardio), 2400, 10800, 24000))

	apHi := int(g.normal(122+12*float64(cardio), 14, 80, 220))
	apLo := int(math.Min(float64(apHi)-10, g.normal(80+6*float64(cardio), 9, 50, 140)))
	if g.rng.Float64() < g.config.InvertedPressureRate {
		apLo = apHi + 10 + g.rng.Intn(30)
	}

	return exam.Examination{
		ID:          id,
		Age:         age,
		Gender:      gender,
		Height:      math.Round(height),
		Weight:      math.Round(weight*10) / 10,
		APHi:        apHi,
		APLo:        apLo,
		Cholesterol: g.ordinal(0.75-0.15*float64(cardio), 0.13),
		Gluc:        g.ordinal(0.85-0.07*float64(cardio), 0.07),
		Smoke:       g.flag(g.config.SmokeRate),
		Alco:        g.flag(g.config.AlcoRate),
		Active:      g.flag(g.config.ActiveRate),
		Cardio:      cardio,
	}
}

func (g *ExamGenerator) flag(p float64) int {
	if g.rng.Float64() < p {
		return 1
	}
	return 0
}

// ordinal draws 1 ("normal") with probability pNormal, 2 with pAbove, otherwise 3
func (g *ExamGenerator) ordinal(pNormal, pAbove float64) int {
	u := g.rng.Float64()
	switch {
	case u < pNormal:
		return 1
	case u < pNormal+pAbove:
		return 2
	default:
		return 3
	}
}

func (g *ExamGenerator) normal(mean, sd, lo, hi float64) float64 {
	v := mean + g.rng.NormFloat64()*sd
	return math.Max(lo, math.Min(hi, v))
}

// Header returns the column names written by the generator
func (g *ExamGenerator) Header() []string {
	header := make([]string, len(exam.Schema))
	for i, spec := range exam.Schema {
		header[i] = string(spec.Name)
		if spec.Name == exam.ColGender && g.config.GenderHeader != "" {
			header[i] = g.config.GenderHeader
		}
	}
	return header
}

// Rows formats records as string cells in schema order
func (g *ExamGenerator) Rows(records []exam.Examination) [][]string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(exam.Schema))
		for j, spec := range exam.Schema {
			v, _ := rec.Value(spec.Name)
			if spec.Kind == exam.KindReal {
				row[j] = strconv.FormatFloat(v, 'f', 1, 64)
			} else {
				row[j] = strconv.FormatInt(int64(v), 10)
			}
		}
		rows[i] = row
	}
	return rows
}

// WriteCSV writes a header and the records as CSV
func (g *ExamGenerator) WriteCSV(w io.Writer, records []exam.Examination) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(g.Rows(records)); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSVFile writes the records to a CSV file at path
func (g *ExamGenerator) WriteCSVFile(path string, records []exam.Examination) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteXLSX writes the records to a workbook sheet
func (g *ExamGenerator) WriteXLSX(path, sheet string, records []exam.Examination) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	header := g.Header()
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, rec := range records {
		cells := make([]interface{}, len(exam.Schema))
		for j, spec := range exam.Schema {
			v, _ := rec.Value(spec.Name)
			if spec.Kind == exam.KindReal {
				cells[j] = v
			} else {
				cells[j] = int64(v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}

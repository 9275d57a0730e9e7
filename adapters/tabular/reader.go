package tabular

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"medvis/domain/core"
	"medvis/domain/exam"
	"medvis/internal"
	apperrors "medvis/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Format is the input file encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultSheet is read from workbooks when no sheet is configured
const DefaultSheet = "Sheet1"

// Reader loads the examination table from a CSV or XLSX file
type Reader struct {
	path   string
	format Format
	sheet  string
	logger *internal.Logger
}

// Option configures a Reader
type Option func(*Reader)

// WithSheet selects the workbook sheet for XLSX input
func WithSheet(sheet string) Option {
	return func(r *Reader) {
		if sheet != "" {
			r.sheet = sheet
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *internal.Logger) Option {
	return func(r *Reader) { r.logger = l.With(internal.SourceLoader) }
}

// NewReader creates a reader; the format follows the extension (.xlsx, anything else CSV)
func NewReader(path string, opts ...Option) *Reader {
	format := FormatCSV
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		format = FormatXLSX
	}
	r := &Reader{
		path:   path,
		format: format,
		sheet:  DefaultSheet,
		logger: internal.DefaultLogger.With(internal.SourceLoader),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the input path
func (r *Reader) Path() string { return r.path }

// Read loads, validates and types the whole file
func (r *Reader) Read(ctx context.Context) (*exam.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	r.logger.Info("reading %s file %s", r.format, r.path)

	var df dataframe.DataFrame
	var err error
	switch r.format {
	case FormatCSV:
		df, err = r.readCSV()
	case FormatXLSX:
		df, err = r.readXLSX()
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported input format %q", r.format))
	}
	if err != nil {
		return nil, err
	}

	table, err := DecodeFrame(df)
	if err != nil {
		return nil, apperrors.Wrapf(err, "decode %s", r.path)
	}

	r.logger.Info("loaded %d examination records in %.2fms", table.Len(),
		float64(time.Since(start).Nanoseconds())/1e6)
	return table, nil
}

func (r *Reader) readCSV() (dataframe.DataFrame, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.IOError("failed to open CSV file", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return df, apperrors.SchemaViolation(fmt.Sprintf("failed to parse CSV file %s: %v", r.path, df.Err))
	}
	return df, nil
}

func (r *Reader) readXLSX() (dataframe.DataFrame, error) {
	if _, err := os.Stat(r.path); err != nil {
		return dataframe.DataFrame{}, apperrors.IOError("failed to open workbook", err)
	}
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.IOError("failed to open workbook", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.IOError(fmt.Sprintf("failed to read sheet %s", r.sheet), err)
	}
	if len(rows) < 2 {
		return dataframe.DataFrame{}, apperrors.SchemaViolation("workbook must have a header row and at least one data row")
	}

	df := dataframe.LoadRecords(padRows(rows))
	if df.Err != nil {
		return df, apperrors.SchemaViolation(fmt.Sprintf("failed to parse sheet %s: %v", r.sheet, df.Err))
	}
	return df, nil
}

// padRows makes every row as wide as the header; GetRows trims trailing empty cells.
func padRows(rows [][]string) [][]string {
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}

// DecodeFrame validates a frame against exam.Schema and converts it to a raw table.
// Columns outside the schema are ignored.
func DecodeFrame(df dataframe.DataFrame) (*exam.RawTable, error) {
	if df.Nrow() == 0 {
		return nil, apperrors.SchemaViolation("input has no data rows")
	}

	names := df.Names()
	columns := make(map[exam.Column][]float64, len(exam.Schema))
	for _, spec := range exam.Schema {
		header, ok := findHeader(names, spec)
		if !ok {
			return nil, apperrors.WithCode(apperrors.CodeMissingColumn,
				fmt.Errorf("%w: required column %q not found", core.ErrMissingColumn, spec.Name))
		}

		col := df.Col(header)
		if t := col.Type(); t != series.Int && t != series.Float {
			return nil, apperrors.WithCode(apperrors.CodeSchemaViolation,
				core.NewValidationError(string(spec.Name), fmt.Sprintf("expected numeric column, got %s", t)))
		}
		if col.HasNaN() {
			return nil, apperrors.WithCode(apperrors.CodeSchemaViolation,
				core.NewValidationError(string(spec.Name), "column has missing values"))
		}
		columns[spec.Name] = col.Float()
	}

	records, err := exam.RecordsFromColumns(columns)
	if err != nil {
		return nil, withDomainCode(err)
	}
	table, err := exam.NewRawTable(records)
	if err != nil {
		return nil, withDomainCode(err)
	}
	return table, nil
}

// findHeader returns the frame column for spec. A UTF-8 byte order mark left on
// the first header cell by spreadsheet exports is ignored.
func findHeader(names []string, spec exam.ColumnSpec) (string, bool) {
	for _, n := range names {
		if spec.Matches(strings.TrimPrefix(n, "\ufeff")) {
			return n, true
		}
	}
	return "", false
}

func withDomainCode(err error) error {
	switch {
	case stderrors.Is(err, core.ErrMissingColumn):
		return apperrors.WithCode(apperrors.CodeMissingColumn, err)
	case stderrors.Is(err, core.ErrSchemaViolation), stderrors.Is(err, core.ErrEmptyTable):
		return apperrors.WithCode(apperrors.CodeSchemaViolation, err)
	}
	return err
}

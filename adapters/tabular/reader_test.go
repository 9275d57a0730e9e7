package tabular

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medvis/domain/exam"
	apperrors "medvis/internal/errors"
	"medvis/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,age,sex,height,weight,ap_hi,ap_lo,cholesterol,gluc,smoke,alco,active,cardio
0,18393,2,168,62.0,110,80,1,1,0,0,1,0
1,20228,1,156,85.0,140,90,3,1,0,0,1,1
2,18857,1,165,64.0,130,70,3,1,0,0,0,1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "cardio.csv", sampleCSV)

	table, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	records := table.Records()
	assert.Equal(t, exam.Examination{
		ID: 1, Age: 20228, Gender: 1, Height: 156, Weight: 85,
		APHi: 140, APLo: 90, Cholesterol: 3, Gluc: 1, Active: 1, Cardio: 1,
	}, records[1])
}

func TestReadCSVGenderHeader(t *testing.T) {
	path := writeFile(t, "cardio.csv", strings.Replace(sampleCSV, ",sex,", ",gender,", 1))

	table, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Records()[0].Gender)
}

func TestReadCSVWithByteOrderMark(t *testing.T) {
	path := writeFile(t, "cardio.csv", "\ufeff"+sampleCSV)

	table, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, int64(2), table.Records()[2].ID)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "absent.csv")).Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, apperrors.CodeIOError, apperrors.GetCode(err))
}

func TestReadMissingColumn(t *testing.T) {
	content := strings.Replace(sampleCSV, ",cardio\n", ",outcome\n", 1)
	path := writeFile(t, "cardio.csv", content)

	_, err := NewReader(path).Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeMissingColumn, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "cardio")
	assert.Equal(t, 1, strings.Count(err.Error(), `required column "cardio" not found`))
}

func TestReadNonNumericColumn(t *testing.T) {
	content := strings.Replace(sampleCSV, "156,85.0", "156,heavy", 1)
	path := writeFile(t, "cardio.csv", content)

	_, err := NewReader(path).Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSchemaViolation, apperrors.GetCode(err))
}

func TestReadRejectsInvalidFlag(t *testing.T) {
	content := strings.Replace(sampleCSV, "0,0,1,0\n", "0,0,1,2\n", 1)
	path := writeFile(t, "cardio.csv", content)

	_, err := NewReader(path).Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSchemaViolation, apperrors.GetCode(err))
}

func TestReadHeaderOnly(t *testing.T) {
	path := writeFile(t, "cardio.csv", strings.SplitN(sampleCSV, "\n", 2)[0]+"\n")

	_, err := NewReader(path).Read(context.Background())
	require.Error(t, err)
}

func TestReadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader("unused.csv").Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadXLSXMatchesCSV(t *testing.T) {
	config := testkit.DefaultExamConfig()
	config.SubjectCount = 40
	gen := testkit.NewExamGenerator(config)
	records := gen.Generate()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "exams.csv")
	xlsxPath := filepath.Join(dir, "exams.xlsx")
	require.NoError(t, gen.WriteCSVFile(csvPath, records))
	require.NoError(t, gen.WriteXLSX(xlsxPath, "exams", records))

	fromCSV, err := NewReader(csvPath).Read(context.Background())
	require.NoError(t, err)
	fromXLSX, err := NewReader(xlsxPath, WithSheet("exams")).Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, records, fromCSV.Records())
	assert.Equal(t, records, fromXLSX.Records())
}

func TestReadXLSXMissingSheet(t *testing.T) {
	config := testkit.DefaultExamConfig()
	config.SubjectCount = 2
	gen := testkit.NewExamGenerator(config)

	path := filepath.Join(t.TempDir(), "exams.xlsx")
	require.NoError(t, gen.WriteXLSX(path, "Sheet1", gen.Generate()))

	_, err := NewReader(path, WithSheet("absent")).Read(context.Background())
	assert.Equal(t, apperrors.CodeIOError, apperrors.GetCode(err))
}

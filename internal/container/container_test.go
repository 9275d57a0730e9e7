package container

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"medvis/internal"
	"medvis/internal/config"
	apperrors "medvis/internal/errors"
	"medvis/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, subjects int) *config.Config {
	t.Helper()
	dir := t.TempDir()
	gen := testkit.DefaultExamConfig()
	gen.SubjectCount = subjects
	input := filepath.Join(dir, "medical_examination.csv")
	g := testkit.NewExamGenerator(gen)
	require.NoError(t, g.WriteCSVFile(input, g.Generate()))

	cfg := config.Default()
	cfg.Input.Path = input
	cfg.Output.Dir = filepath.Join(dir, "out")
	return cfg
}

func quietLogger() *internal.Logger {
	return internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Path = ""
	_, err := NewWithLogger(cfg, quietLogger())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestLoadTable(t *testing.T) {
	cfg := testConfig(t, 80)
	c, err := NewWithLogger(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, cfg.Input.Path, c.Source.Path())

	table, err := c.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, table.Len())
	for _, s := range table.Subjects() {
		assert.Contains(t, []int{0, 1}, s.Overweight)
		assert.Contains(t, []int{0, 1}, s.Cholesterol)
		assert.Contains(t, []int{0, 1}, s.Gluc)
	}
}

func TestPipelineRunsFromConfig(t *testing.T) {
	cfg := testConfig(t, 150)
	cfg.Output.Manifest = true
	c, err := NewWithLogger(cfg, quietLogger())
	require.NoError(t, err)

	p, err := c.Pipeline(context.Background())
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"catplot.png", "heatmap.png", "manifest.json"} {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
		assert.NoError(t, err, name)
	}
	require.NotNil(t, res.Manifest)
	assert.NotEmpty(t, res.Manifest.Fingerprint.InputHash)
}

func TestLoadTableMissingInput(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Path = filepath.Join(t.TempDir(), "absent.csv")
	c, err := NewWithLogger(cfg, quietLogger())
	require.NoError(t, err)

	_, err = c.LoadTable(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIOError, apperrors.GetCode(err))
}

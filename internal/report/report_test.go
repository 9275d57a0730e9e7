package report

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medvis/domain/core"
	"medvis/domain/exam"
	"medvis/domain/stats"
	"medvis/internal"
	"medvis/internal/analysis"
	"medvis/internal/config"
	apperrors "medvis/internal/errors"
	"medvis/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatedTable(t *testing.T, n int) *exam.DerivedTable {
	t.Helper()
	cfg := testkit.DefaultExamConfig()
	cfg.SubjectCount = n
	raw, err := exam.NewRawTable(testkit.NewExamGenerator(cfg).Generate())
	require.NoError(t, err)
	derived, err := exam.Derive(raw)
	require.NoError(t, err)
	return derived
}

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.Logger = internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
	return opts
}

func TestDrawCatPlot(t *testing.T) {
	table := generatedTable(t, 300)
	opts := testOptions(t)

	res, err := DrawCatPlot(context.Background(), table, opts)
	require.NoError(t, err)
	require.NotNil(t, res.Figure)
	require.NotNil(t, res.Axes)

	cardio := 0
	for _, s := range table.Subjects() {
		cardio += s.Cardio
	}
	totals := analysis.TotalsByCardio(res.Counts)
	assert.Equal(t, 6*(table.Len()-cardio), totals[0])
	assert.Equal(t, 6*cardio, totals[1])

	assert.Equal(t, filepath.Join(opts.OutputDir, "catplot.png"), res.Path)
	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Empty(t, res.HTMLPath)
}

func TestDrawCatPlotIsIdempotent(t *testing.T) {
	table := generatedTable(t, 120)
	opts := testOptions(t)
	opts.CatPlotFile = ""

	first, err := DrawCatPlot(context.Background(), table, opts)
	require.NoError(t, err)
	second, err := DrawCatPlot(context.Background(), table, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Counts, second.Counts)
	a, err := first.Figure.PNG()
	require.NoError(t, err)
	b, err := second.Figure.PNG()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Empty(t, first.Path)
}

func TestDrawHeatMap(t *testing.T) {
	table := generatedTable(t, 300)
	before := table.Subjects()
	opts := testOptions(t)

	res, err := DrawHeatMap(context.Background(), table, opts)
	require.NoError(t, err)

	assert.LessOrEqual(t, res.SubsetSize(), table.Len())
	assert.Greater(t, res.SubsetSize(), 0)
	assert.Equal(t, table.Len(), res.Subset.BaseRows)
	assert.Equal(t, before, table.Subjects(), "shared table must not change")

	n := res.Matrix.Size()
	require.Equal(t, 14, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, res.Matrix.At(i, i))
		assert.Equal(t, "1.0", res.Axes.Cell(i, i).Annotation)
		for j := 0; j < i; j++ {
			a, b := res.Matrix.At(i, j), res.Matrix.At(j, i)
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b))
				continue
			}
			assert.Equal(t, a, b)
		}
	}
	assert.Equal(t, n*(n+1)/2, res.Axes.VisibleCells())
	assert.Equal(t, res.Mask.VisibleCount(), res.Axes.VisibleCells())

	_, err = os.Stat(filepath.Join(opts.OutputDir, "heatmap.png"))
	assert.NoError(t, err)
}

func TestDrawHeatMapDegenerateSubset(t *testing.T) {
	table := generatedTable(t, 50)
	keep := int64(-1)
	for _, s := range table.Subjects() {
		if s.APLo <= s.APHi {
			keep = s.ID
			break
		}
	}
	single := table.Filter(func(s exam.Subject) bool { return s.ID == keep })
	require.Equal(t, 1, single.Len())

	_, err := DrawHeatMap(context.Background(), single, testOptions(t))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDegenerateSubset, apperrors.GetCode(err))
}

func TestRunWritesAllOutputs(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			table := generatedTable(t, 200)
			opts := testOptions(t)
			opts.HTML = true
			opts.Summary = true
			opts.Manifest = true
			opts.Parallel = parallel

			res, err := Run(context.Background(), table, opts)
			require.NoError(t, err)

			for _, name := range []string{"catplot.png", "heatmap.png", "catplot.html", "heatmap.html",
				SummaryFile, SummaryHTMLFile, ManifestFile} {
				_, err := os.Stat(filepath.Join(opts.OutputDir, name))
				assert.NoError(t, err, name)
			}

			_, err = core.ParseRunID(res.RunID.String())
			assert.NoError(t, err)
			require.NotNil(t, res.Manifest)
			assert.Len(t, res.Manifest.Artifacts, 6)
			assert.Equal(t, table.Len(), res.Manifest.Rows)
			assert.Equal(t, res.HeatMap.SubsetSize(), res.Manifest.SubsetRows)

			data, err := os.ReadFile(res.ManifestPath)
			require.NoError(t, err)
			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, res.RunID.String(), decoded["run_id"])

			png, ok := res.Manifest.Artifact(core.ArtifactCatPlot)
			require.True(t, ok)
			h, err := core.HashFile(png.Path)
			require.NoError(t, err)
			assert.Equal(t, core.OutputHash(h), png.Hash)

			summary, err := os.ReadFile(res.SummaryPath)
			require.NoError(t, err)
			assert.Contains(t, string(summary), "## Categorical report")
			assert.Contains(t, string(summary), "## Column profiles")

			page, err := os.ReadFile(res.SummaryHTMLPath)
			require.NoError(t, err)
			assert.Contains(t, string(page), "<table>")
		})
	}
}

func TestRunDefaultsWriteOnlyCharts(t *testing.T) {
	table := generatedTable(t, 100)
	opts := testOptions(t)

	res, err := Run(context.Background(), table, opts)
	require.NoError(t, err)
	assert.Nil(t, res.Manifest)
	assert.Empty(t, res.SummaryPath)

	entries, err := os.ReadDir(opts.OutputDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"catplot.png", "heatmap.png"}, names)
}

func TestRunCancelled(t *testing.T) {
	table := generatedTable(t, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, table, testOptions(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPipelineRejectsEmptyTable(t *testing.T) {
	_, err := NewPipeline(nil, DefaultOptions())
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestStrongestPairs(t *testing.T) {
	m := stats.NewCorrelationMatrix([]string{"a", "b", "c"}, 10)
	m.Set(1, 0, 0.1)
	m.Set(2, 0, -0.8)
	m.Set(2, 1, math.NaN())
	res := &HeatMapResult{Matrix: m, Mask: analysis.UpperTriangleMask(3)}

	pairs := StrongestPairs(res, 5)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{A: "c", B: "a", R: -0.8}, pairs[0])
	assert.Equal(t, Pair{A: "b", B: "a", R: 0.1}, pairs[1])

	assert.Len(t, StrongestPairs(res, 1), 1)
}

func TestSummaryHTML(t *testing.T) {
	page := string(SummaryHTML([]byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")))
	assert.True(t, strings.Contains(page, "<h1"))
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<html")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = "out"
	cfg.Output.HTML = true
	cfg.Report.Parallel = true
	cfg.Report.QuantileLow = 0.05
	cfg.Report.HeatMapVMax = 0.5

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "out", opts.OutputDir)
	assert.True(t, opts.HTML)
	assert.True(t, opts.Parallel)
	assert.Equal(t, 0.05, opts.Bounds.LowerQuantile)
	assert.Equal(t, 0.975, opts.Bounds.UpperQuantile)
	assert.Equal(t, 0.5, opts.HeatMapStyle.VMax)
	assert.Equal(t, filepath.Join("out", "catplot.html"), opts.companion(opts.CatPlotFile, ".html"))
	assert.Empty(t, opts.companion("", ".html"))
}

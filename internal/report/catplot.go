package report

import (
	"context"
	"io"
	"time"

	"medvis/adapters/echarts"
	"medvis/adapters/render"
	"medvis/domain/exam"
	"medvis/domain/stats"
	"medvis/internal/analysis"
	apperrors "medvis/internal/errors"
)

// CatPlotResult is the outcome of the categorical report
type CatPlotResult struct {
	Figure   *render.Figure
	Axes     *render.CatPlotAxes
	Counts   []stats.CategoryCount
	Path     string // empty when not written
	HTMLPath string
}

// DrawCatPlot counts the binary indicators per cardio outcome and draws one grouped
// bar panel per outcome. The figure is written to opts.CatPlotFile when set.
func DrawCatPlot(ctx context.Context, table *exam.DerivedTable, opts Options) (*CatPlotResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := opts.logger()
	start := time.Now()

	counts, err := analysis.SummarizeCategories(table)
	if err != nil {
		return nil, apperrors.Wrap(err, "categorical report")
	}
	logger.Debug("counted %d (cardio, variable, value) combinations", len(counts))

	fig, axes, err := render.CatPlot(counts, opts.CatPlotStyle)
	if err != nil {
		return nil, apperrors.Wrap(err, "categorical report")
	}
	result := &CatPlotResult{Figure: fig, Axes: axes, Counts: counts}

	if path := opts.path(opts.CatPlotFile); path != "" {
		if err := savePNG(ctx, fig, path); err != nil {
			return nil, err
		}
		result.Path = path
		logger.Info("wrote %s (%dx%d)", path, fig.Width(), fig.Height())
	}

	if opts.HTML {
		if path := opts.companion(opts.CatPlotFile, ".html"); path != "" {
			err := writeFile(path, func(w io.Writer) error { return echarts.CatPlotPage(counts, w) })
			if err != nil {
				return nil, err
			}
			result.HTMLPath = path
			logger.Info("wrote %s", path)
		}
	}

	logger.Debug("categorical report finished in %.2fms", float64(time.Since(start).Nanoseconds())/1e6)
	return result, nil
}

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

// HeatMapResult is the outcome of the correlation heatmap report
type HeatMapResult struct {
	Figure   *render.Figure
	Axes     *render.Axes
	Matrix   *stats.CorrelationMatrix
	Mask     stats.Mask
	Subset   stats.SubsetSummary
	Path     string // empty when not written
	HTMLPath string
}

// SubsetSize is the number of rows the correlations were computed on
func (r *HeatMapResult) SubsetSize() int { return r.Subset.KeptRows }

// DrawHeatMap filters the table to the heatmap subset, correlates every numeric column
// and draws the lower triangle. The table itself is left untouched.
func DrawHeatMap(ctx context.Context, table *exam.DerivedTable, opts Options) (*HeatMapResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := opts.logger()
	start := time.Now()

	subset, summary, err := analysis.HeatmapSubset(table, opts.Bounds)
	if err != nil {
		return nil, apperrors.Wrap(err, "heatmap report")
	}
	logger.Info("heatmap subset kept %d of %d rows (%d inverted pressure, %d height/weight outliers)",
		summary.KeptRows, summary.BaseRows, summary.PressureDrops, summary.OutlierDropped)

	matrix, err := analysis.Correlate(subset)
	if err != nil {
		return nil, apperrors.Wrap(err, "heatmap report")
	}
	mask := analysis.UpperTriangleMask(matrix.Size())

	fig, axes, err := render.HeatMap(matrix, mask, opts.HeatMapStyle)
	if err != nil {
		return nil, apperrors.Wrap(err, "heatmap report")
	}
	result := &HeatMapResult{
		Figure: fig,
		Axes:   axes,
		Matrix: matrix,
		Mask:   mask,
		Subset: summary,
	}

	if path := opts.path(opts.HeatMapFile); path != "" {
		if err := savePNG(ctx, fig, path); err != nil {
			return nil, err
		}
		result.Path = path
		logger.Info("wrote %s (%dx%d)", path, fig.Width(), fig.Height())
	}

	if opts.HTML {
		if path := opts.companion(opts.HeatMapFile, ".html"); path != "" {
			err := writeFile(path, func(w io.Writer) error {
				return echarts.HeatMapPage(matrix, mask, opts.HeatMapStyle.VMax, w)
			})
			if err != nil {
				return nil, err
			}
			result.HTMLPath = path
			logger.Info("wrote %s", path)
		}
	}

	logger.Debug("heatmap report finished in %.2fms", float64(time.Since(start).Nanoseconds())/1e6)
	return result, nil
}

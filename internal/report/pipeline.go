package report

import (
	"context"
	"time"

	"medvis/domain/core"
	"medvis/domain/exam"
	"medvis/domain/run"
	"medvis/internal"
	apperrors "medvis/internal/errors"

	"golang.org/x/sync/errgroup"
)

// ManifestFile is the name of the run manifest in the output directory
const ManifestFile = "manifest.json"

// Result collects everything a pipeline run produced
type Result struct {
	RunID           core.RunID
	CatPlot         *CatPlotResult
	HeatMap         *HeatMapResult
	SummaryPath     string
	SummaryHTMLPath string
	Manifest        *run.Manifest
	ManifestPath    string
	Duration        time.Duration
}

// Pipeline runs both reports over one shared derived table
type Pipeline struct {
	table  *exam.DerivedTable
	opts   Options
	logger *internal.Logger
}

// NewPipeline binds report options to a derived table
func NewPipeline(table *exam.DerivedTable, opts Options) (*Pipeline, error) {
	if table == nil || table.Len() == 0 {
		return nil, apperrors.InvalidInput("pipeline needs a non-empty derived table")
	}
	return &Pipeline{table: table, opts: opts, logger: opts.logger()}, nil
}

// Table returns the shared derived table
func (p *Pipeline) Table() *exam.DerivedTable { return p.table }

// CatPlot runs the categorical report
func (p *Pipeline) CatPlot(ctx context.Context) (*CatPlotResult, error) {
	return DrawCatPlot(ctx, p.table, p.opts)
}

// HeatMap runs the correlation heatmap report
func (p *Pipeline) HeatMap(ctx context.Context) (*HeatMapResult, error) {
	return DrawHeatMap(ctx, p.table, p.opts)
}

// Run draws both charts, then writes the optional summary and manifest.
// Reports run one at a time unless Options.Parallel is set; the first failure cancels
// the other report and is returned.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: core.NewRunID()}
	p.logger.Info("run %s: rendering reports for %d subjects", result.RunID, p.table.Len())

	g, gctx := errgroup.WithContext(ctx)
	if !p.opts.Parallel {
		g.SetLimit(1)
	}
	g.Go(func() error {
		r, err := p.CatPlot(gctx)
		if err != nil {
			return err
		}
		result.CatPlot = r
		return nil
	})
	g.Go(func() error {
		r, err := p.HeatMap(gctx)
		if err != nil {
			return err
		}
		result.HeatMap = r
		return nil
	})
	if err := g.Wait(); err != nil {
		p.logger.Error("run %s failed: %v", result.RunID, err)
		return nil, err
	}

	if p.opts.Summary {
		if err := p.writeSummary(result); err != nil {
			return nil, err
		}
	}
	if p.opts.Manifest {
		if err := p.writeManifest(result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	p.logger.Info("run %s finished in %.2fms", result.RunID, float64(result.Duration.Nanoseconds())/1e6)
	return result, nil
}

// Run executes both reports over table with opts
func Run(ctx context.Context, table *exam.DerivedTable, opts Options) (*Result, error) {
	p, err := NewPipeline(table, opts)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

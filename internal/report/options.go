package report

import (
	"path/filepath"
	"strings"

	"medvis/adapters/render"
	"medvis/domain/stats"
	"medvis/internal"
	"medvis/internal/config"
)

// CodeVersion is recorded in run manifests
const CodeVersion = "1.0.0"

// Options controls what the reports compute and where they write
type Options struct {
	OutputDir    string
	CatPlotFile  string // empty keeps the figure in memory only
	HeatMapFile  string // empty keeps the figure in memory only
	Bounds       stats.SubsetBounds
	CatPlotStyle render.CatPlotStyle
	HeatMapStyle render.HeatMapStyle
	HTML         bool
	Summary      bool
	Manifest     bool
	Parallel     bool
	InputPath    string
	Logger       *internal.Logger
}

// DefaultOptions writes catplot.png and heatmap.png to the working directory
func DefaultOptions() Options {
	return Options{
		OutputDir:    ".",
		CatPlotFile:  "catplot.png",
		HeatMapFile:  "heatmap.png",
		Bounds:       stats.DefaultSubsetBounds(),
		CatPlotStyle: render.DefaultCatPlotStyle(),
		HeatMapStyle: render.DefaultHeatMapStyle(),
	}
}

// OptionsFromConfig maps application configuration onto report options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.OutputDir = cfg.Output.Dir
	opts.CatPlotFile = cfg.Output.CatPlotFile
	opts.HeatMapFile = cfg.Output.HeatMapFile
	opts.HTML = cfg.Output.HTML
	opts.Summary = cfg.Output.Summary
	opts.Manifest = cfg.Output.Manifest
	opts.Parallel = cfg.Report.Parallel
	opts.Bounds = stats.SubsetBounds{
		LowerQuantile: cfg.Report.QuantileLow,
		UpperQuantile: cfg.Report.QuantileHigh,
	}
	opts.HeatMapStyle.VMax = cfg.Report.HeatMapVMax
	opts.InputPath = cfg.Input.Path
	return opts
}

func (o Options) path(name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(o.OutputDir, name)
}

// companion swaps the extension of a PNG output for ext
func (o Options) companion(name, ext string) string {
	if name == "" {
		return ""
	}
	return o.path(strings.TrimSuffix(name, filepath.Ext(name)) + ext)
}

func (o Options) logger() *internal.Logger {
	if o.Logger != nil {
		return o.Logger.With(internal.SourceReport)
	}
	return internal.DefaultLogger.With(internal.SourceReport)
}

// settings lists the options that change chart content
func (o Options) settings() map[string]interface{} {
	return map[string]interface{}{
		"quantile_low":  o.Bounds.LowerQuantile,
		"quantile_high": o.Bounds.UpperQuantile,
		"heatmap_vmax":  o.HeatMapStyle.VMax,
		"heatmap_cell":  o.HeatMapStyle.CellSize,
		"catplot_panel": [2]int{o.CatPlotStyle.PanelWidth, o.CatPlotStyle.PanelHeight},
	}
}

package container

import (
	"context"
	"fmt"

	"medvis/adapters/tabular"
	"medvis/domain/exam"
	"medvis/internal"
	"medvis/internal/config"
	"medvis/internal/errors"
	"medvis/internal/report"
	"medvis/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Source ports.ExaminationSource
}

// New wires the loader and logger from configuration
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return NewWithLogger(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)))
}

// NewWithLogger is New with an explicit logger
func NewWithLogger(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Container{
		Config: cfg,
		Logger: logger,
		Source: tabular.NewReader(cfg.Input.Path,
			tabular.WithSheet(cfg.Input.Sheet),
			tabular.WithLogger(logger)),
	}, nil
}

// ReportOptions returns report options for the configured outputs
func (c *Container) ReportOptions() report.Options {
	opts := report.OptionsFromConfig(c.Config)
	opts.Logger = c.Logger
	return opts
}

// LoadTable reads the input and derives the feature columns
func (c *Container) LoadTable(ctx context.Context) (*exam.DerivedTable, error) {
	raw, err := c.Source.Read(ctx)
	if err != nil {
		return nil, err
	}
	derived, err := exam.Derive(raw)
	if err != nil {
		return nil, errors.Wrap(err, "feature derivation failed")
	}
	c.Logger.With(internal.SourceAnalysis).Debug("derived overweight, cholesterol and gluc for %d subjects", derived.Len())
	return derived, nil
}

// Pipeline loads the table and binds it to the configured report options
func (c *Container) Pipeline(ctx context.Context) (*report.Pipeline, error) {
	table, err := c.LoadTable(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewPipeline(table, c.ReportOptions())
}

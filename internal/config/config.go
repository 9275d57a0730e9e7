package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"medvis/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Report ReportConfig `yaml:"report"`
	Log    LogConfig    `yaml:"log"`
}

// InputConfig locates the examination table
type InputConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"` // workbook sheet, XLSX only
}

// OutputConfig controls which files are written and where
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	CatPlotFile string `yaml:"catplot_file"`
	HeatMapFile string `yaml:"heatmap_file"`
	HTML        bool   `yaml:"html"`
	Summary     bool   `yaml:"summary"`
	Manifest    bool   `yaml:"manifest"`
}

// ReportConfig holds chart computation settings
type ReportConfig struct {
	Parallel     bool    `yaml:"parallel"`
	QuantileLow  float64 `yaml:"quantile_low"`
	QuantileHigh float64 `yaml:"quantile_high"`
	HeatMapVMax  float64 `yaml:"heatmap_vmax"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:  "medical_examination.csv",
			Sheet: "Sheet1",
		},
		Output: OutputConfig{
			Dir:         ".",
			CatPlotFile: "catplot.png",
			HeatMapFile: "heatmap.png",
		},
		Report: ReportConfig{
			QuantileLow:  0.025,
			QuantileHigh: 0.975,
			HeatMapVMax:  0.3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from environment variables and validates it. When
// MEDVIS_CONFIG names a YAML file its values replace the defaults before the
// environment is applied.
func Load() (*Config, error) {
	d := Default()
	if path := os.Getenv("MEDVIS_CONFIG"); path != "" {
		fileConfig, err := readFile(path)
		if err != nil {
			return nil, err
		}
		d = fileConfig
	}
	config := &Config{
		Input: InputConfig{
			Path:  getEnvOrDefault("MEDVIS_INPUT", d.Input.Path),
			Sheet: getEnvOrDefault("MEDVIS_SHEET", d.Input.Sheet),
		},
		Output: OutputConfig{
			Dir:         getEnvOrDefault("MEDVIS_OUTPUT_DIR", d.Output.Dir),
			CatPlotFile: getEnvOrDefault("MEDVIS_CATPLOT_FILE", d.Output.CatPlotFile),
			HeatMapFile: getEnvOrDefault("MEDVIS_HEATMAP_FILE", d.Output.HeatMapFile),
			HTML:        getEnvBoolOrDefault("MEDVIS_HTML", d.Output.HTML),
			Summary:     getEnvBoolOrDefault("MEDVIS_SUMMARY", d.Output.Summary),
			Manifest:    getEnvBoolOrDefault("MEDVIS_MANIFEST", d.Output.Manifest),
		},
		Report: ReportConfig{
			Parallel:     getEnvBoolOrDefault("MEDVIS_PARALLEL", d.Report.Parallel),
			QuantileLow:  getEnvFloatOrDefault("MEDVIS_QUANTILE_LOW", d.Report.QuantileLow),
			QuantileHigh: getEnvFloatOrDefault("MEDVIS_QUANTILE_HIGH", d.Report.QuantileHigh),
			HeatMapVMax:  getEnvFloatOrDefault("MEDVIS_HEATMAP_VMAX", d.Report.HeatMapVMax),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", d.Log.Level),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadFile reads a YAML configuration file over the defaults and validates it
func LoadFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("failed to read config "+path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse config %s: %w", path, err))
	}
	return cfg, nil
}

// Validate checks value ranges and required fields
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input.Path) == "" {
		return errors.ConfigInvalid("input path is required")
	}
	if strings.TrimSpace(c.Output.CatPlotFile) == "" || strings.TrimSpace(c.Output.HeatMapFile) == "" {
		return errors.ConfigInvalid("output file names are required")
	}
	if c.Output.CatPlotFile == c.Output.HeatMapFile {
		return errors.ConfigInvalid("catplot and heatmap must be written to different files")
	}
	r := c.Report
	if r.QuantileLow < 0 || r.QuantileHigh > 1 || r.QuantileLow >= r.QuantileHigh {
		return errors.ConfigInvalid(fmt.Sprintf(
			"quantile bounds must satisfy 0 <= low < high <= 1, got %v and %v", r.QuantileLow, r.QuantileHigh))
	}
	if !(r.HeatMapVMax > 0) {
		return errors.ConfigInvalid(fmt.Sprintf("heatmap colour range must be positive, got %v", r.HeatMapVMax))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

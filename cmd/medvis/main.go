package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"medvis/internal"
	"medvis/internal/config"
	"medvis/internal/container"
	"medvis/internal/profiling"
	"medvis/internal/testkit"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "medvis",
		Short:         "Charts for the medical examination dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRenderCmd(),
		newProfileCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

// inputFlags are shared by every command that reads the examination table
type inputFlags struct {
	config   string
	input    string
	sheet    string
	logLevel string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "YAML configuration file, replaces MEDVIS_CONFIG")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Examination table (.csv or .xlsx), overrides MEDVIS_INPUT")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Workbook sheet for XLSX input, overrides MEDVIS_SHEET")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "error|warn|info|debug|trace, overrides LOG_LEVEL")
}

// load reads the configuration and applies the command line overrides
func (f *inputFlags) load() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.config != "" {
		cfg, err = config.LoadFile(f.config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	f.apply(cfg)
	return cfg, nil
}

func (f *inputFlags) apply(cfg *config.Config) {
	if f.input != "" {
		cfg.Input.Path = f.input
	}
	if f.sheet != "" {
		cfg.Input.Sheet = f.sheet
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}

func newRenderCmd() *cobra.Command {
	var in inputFlags
	var outDir string
	var html, summary, manifest, parallel bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw catplot.png and heatmap.png",
		Long: `Load the examination table, derive overweight and the recoded cholesterol
and gluc columns, then draw the categorical bar chart and the correlation heatmap.

Example: medvis render -i medical_examination.csv -o out --html --summary --manifest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := in.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.Dir = outDir
			}
			if cmd.Flags().Changed("html") {
				cfg.Output.HTML = html
			}
			if cmd.Flags().Changed("summary") {
				cfg.Output.Summary = summary
			}
			if cmd.Flags().Changed("manifest") {
				cfg.Output.Manifest = manifest
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Report.Parallel = parallel
			}

			c, err := container.NewWithLogger(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			pipeline, err := c.Pipeline(cmd.Context())
			if err != nil {
				return err
			}
			res, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (%s)\n", res.RunID, res.Duration)
			for _, path := range []string{
				res.CatPlot.Path, res.CatPlot.HTMLPath,
				res.HeatMap.Path, res.HeatMap.HTMLPath,
				res.SummaryPath, res.SummaryHTMLPath, res.ManifestPath,
			} {
				if path != "" {
					fmt.Fprintln(out, path)
				}
			}
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory, overrides MEDVIS_OUTPUT_DIR")
	cmd.Flags().BoolVar(&html, "html", false, "Also write interactive HTML charts")
	cmd.Flags().BoolVar(&summary, "summary", false, "Also write summary.md and summary.html")
	cmd.Flags().BoolVar(&manifest, "manifest", false, "Also write manifest.json")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Draw both charts concurrently")

	return cmd
}

func newProfileCmd() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print distribution statistics for every derived column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := in.load()
			if err != nil {
				return err
			}

			c, err := container.NewWithLogger(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			derived, err := c.LoadTable(cmd.Context())
			if err != nil {
				return err
			}
			profiles, err := profiling.NewDataProfiler().ProfileTable(derived)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), profileTable(profiles))
			return nil
		},
	}

	in.register(cmd)
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var seed int64
	var count int
	var sheet string

	cmd := &cobra.Command{
		Use:   "generate [output-file]",
		Short: "Write a synthetic examination table",
		Long: `Write a deterministic synthetic examination table. The format follows the
file extension: .xlsx writes a workbook, anything else writes CSV.

Example: medvis generate medical_examination.csv --count 70000 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			path := args[0]

			cfg := testkit.DefaultExamConfig()
			cfg.SubjectCount = count
			cfg.Seed = seed
			gen := testkit.NewExamGenerator(cfg)
			records := gen.Generate()

			var err error
			if strings.EqualFold(filepath.Ext(path), ".xlsx") {
				err = gen.WriteXLSX(path, sheet, records)
			} else {
				err = gen.WriteCSVFile(path, records)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d subjects to %s\n", len(records), path)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().IntVar(&count, "count", 1000, "Number of subjects")
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "Sheet name for XLSX output")

	return cmd
}

func newLogger(cfg *config.Config, w io.Writer) *internal.Logger {
	return internal.NewLoggerWithWriter(internal.ParseLogLevel(cfg.Log.Level), w)
}

func profileTable(profiles []profiling.ColumnProfile) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			p.Name,
			fmt.Sprintf("%.2f", p.Mean),
			fmt.Sprintf("%.2f", p.StdDev),
			fmt.Sprintf("%.2f", p.Min),
			fmt.Sprintf("%.2f", p.Median),
			fmt.Sprintf("%.2f", p.Max),
			fmt.Sprintf("%.2f", p.Skewness),
			fmt.Sprintf("%d", p.Outliers),
		})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("column", "mean", "std", "min", "median", "max", "skew", "outliers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return cell
			}
			return cell.Align(lipgloss.Right)
		}).
		String()
}

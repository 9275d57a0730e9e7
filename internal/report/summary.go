package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"medvis/domain/exam"
	"medvis/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const (
	SummaryFile     = "summary.md"
	SummaryHTMLFile = "summary.html"
)

// topPairs is how many correlations the summary lists
const topPairs = 5

// Pair is one off-diagonal coefficient
type Pair struct {
	A string
	B string
	R float64
}

// StrongestPairs returns the n defined coefficients of largest magnitude from the
// visible lower triangle, ties broken by column order.
func StrongestPairs(res *HeatMapResult, n int) []Pair {
	var pairs []Pair
	m := res.Matrix
	for i := 0; i < m.Size(); i++ {
		for j := 0; j < i; j++ {
			r := m.At(i, j)
			if math.IsNaN(r) || !res.Mask.Visible(i, j) {
				continue
			}
			pairs = append(pairs, Pair{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].R) > math.Abs(pairs[b].R)
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// BuildSummary renders a markdown description of a finished run
func BuildSummary(table *exam.DerivedTable, result *Result, profiles []profiling.ColumnProfile) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Medical examination report\n\n")
	fmt.Fprintf(&b, "Run `%s` over %d subjects.\n\n", result.RunID, table.Len())

	if cp := result.CatPlot; cp != nil {
		b.WriteString("## Categorical report\n\n")
		if cp.Path != "" {
			fmt.Fprintf(&b, "Chart: `%s`\n\n", cp.Path)
		}
		b.WriteString("| cardio | variable | value | total |\n|---:|---|---:|---:|\n")
		for _, c := range cp.Counts {
			fmt.Fprintf(&b, "| %d | %s | %d | %d |\n", c.Cardio, c.Variable, c.Value, c.Total)
		}
		b.WriteString("\n")
	}

	if hm := result.HeatMap; hm != nil {
		s := hm.Subset
		b.WriteString("## Correlation heatmap\n\n")
		if hm.Path != "" {
			fmt.Fprintf(&b, "Chart: `%s`\n\n", hm.Path)
		}
		fmt.Fprintf(&b, "The subset kept %d of %d rows: %d dropped for diastolic above systolic pressure, "+
			"%d for height or weight outside [%.1f, %.1f] cm and [%.1f, %.1f] kg.\n\n",
			s.KeptRows, s.BaseRows, s.PressureDrops, s.OutlierDropped,
			s.HeightRange.Min, s.HeightRange.Max, s.WeightRange.Min, s.WeightRange.Max)

		pairs := StrongestPairs(hm, topPairs)
		if len(pairs) > 0 {
			b.WriteString("| pair | r |\n|---|---:|\n")
			for _, p := range pairs {
				fmt.Fprintf(&b, "| %s / %s | %.2f |\n", p.A, p.B, p.R)
			}
			b.WriteString("\n")
		}
	}

	if len(profiles) > 0 {
		b.WriteString("## Column profiles\n\n")
		b.WriteString("| column | mean | std | min | median | max | skew | outliers |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, p := range profiles {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %d |\n",
				p.Name, p.Mean, p.StdDev, p.Min, p.Median, p.Max, p.Skewness, p.Outliers)
		}
	}

	return []byte(b.String())
}

// SummaryHTML converts summary markdown to a standalone HTML page
func SummaryHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Medical examination report",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(md, p, renderer)
}

func (p *Pipeline) writeSummary(result *Result) error {
	profiles, err := profiling.NewDataProfiler().ProfileTable(p.table)
	if err != nil {
		p.logger.Warn("column profiles skipped: %v", err)
	}
	md := BuildSummary(p.table, result, profiles)

	mdPath := p.opts.path(SummaryFile)
	if err := writeFile(mdPath, func(w io.Writer) error { _, err := w.Write(md); return err }); err != nil {
		return err
	}
	htmlPath := p.opts.path(SummaryHTMLFile)
	page := SummaryHTML(md)
	if err := writeFile(htmlPath, func(w io.Writer) error { _, err := w.Write(page); return err }); err != nil {
		return err
	}

	result.SummaryPath = mdPath
	result.SummaryHTMLPath = htmlPath
	p.logger.Info("wrote %s and %s", mdPath, htmlPath)
	return nil
}

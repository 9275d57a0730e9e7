package report

import (
	"encoding/json"
	"io"
	"os"

	"medvis/domain/core"
	"medvis/domain/run"
	apperrors "medvis/internal/errors"
)

type output struct {
	kind core.ArtifactKind
	path string
}

// BuildManifest hashes the input and every written artifact of result
func (p *Pipeline) BuildManifest(result *Result) (*run.Manifest, error) {
	var input core.InputHash
	if p.opts.InputPath != "" {
		h, err := core.HashFile(p.opts.InputPath)
		if err != nil {
			p.logger.Warn("input %s not hashed: %v", p.opts.InputPath, err)
		} else {
			input = core.InputHash(h)
		}
	}

	fp := run.NewFingerprint(input, core.ComputeConfigHash(p.opts.settings()), CodeVersion)
	subsetRows := 0
	if result.HeatMap != nil {
		subsetRows = result.HeatMap.SubsetSize()
	}
	m := run.NewManifest(result.RunID, p.opts.InputPath, p.table.Len(), subsetRows, fp)

	outputs := []output{
		{core.ArtifactSummary, result.SummaryPath},
		{core.ArtifactSummaryHTML, result.SummaryHTMLPath},
	}
	if cp := result.CatPlot; cp != nil {
		outputs = append(outputs, output{core.ArtifactCatPlot, cp.Path}, output{core.ArtifactCatPlotHTML, cp.HTMLPath})
	}
	if hm := result.HeatMap; hm != nil {
		outputs = append(outputs, output{core.ArtifactHeatmap, hm.Path}, output{core.ArtifactHeatmapHTML, hm.HTMLPath})
	}

	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		a, err := artifact(out.kind, out.path)
		if err != nil {
			return nil, err
		}
		m.AddArtifact(a)
	}

	if err := m.Validate(); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInternalError, err)
	}
	return m, nil
}

func artifact(kind core.ArtifactKind, path string) (run.Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return run.Artifact{}, apperrors.IOError("failed to stat "+path, err)
	}
	h, err := core.HashFile(path)
	if err != nil {
		return run.Artifact{}, apperrors.IOError("failed to hash "+path, err)
	}
	return run.Artifact{Kind: kind, Path: path, Hash: core.OutputHash(h), Bytes: info.Size()}, nil
}

func (p *Pipeline) writeManifest(result *Result) error {
	m, err := p.BuildManifest(result)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "encode manifest")
	}

	path := p.opts.path(ManifestFile)
	if err := writeFile(path, func(w io.Writer) error { _, err := w.Write(data); return err }); err != nil {
		return err
	}
	result.Manifest = m
	result.ManifestPath = path
	p.logger.Info("wrote %s with %d artifacts", path, len(m.Artifacts))
	return nil
}

package run

import (
	"fmt"

	"medvis/domain/core"
)

// Fingerprint identifies a run by what determines its output
type Fingerprint struct {
	InputHash   core.InputHash  `json:"input_hash"`
	ConfigHash  core.ConfigHash `json:"config_hash"`
	CodeVersion string          `json:"code_version"`
	Fingerprint core.Hash       `json:"fingerprint"` // hash of all above
}

// NewFingerprint creates a fingerprint from determinism parameters
func NewFingerprint(input core.InputHash, config core.ConfigHash, codeVersion string) Fingerprint {
	data := fmt.Sprintf("input:%s|config:%s|code:%s", input, config, codeVersion)
	return Fingerprint{
		InputHash:   input,
		ConfigHash:  config,
		CodeVersion: codeVersion,
		Fingerprint: core.NewHash([]byte(data)),
	}
}

// Artifact is one file written by a run
type Artifact struct {
	Kind  core.ArtifactKind `json:"kind"`
	Path  string            `json:"path"`
	Hash  core.OutputHash   `json:"sha256"`
	Bytes int64             `json:"bytes"`
}

// Manifest records the inputs and outputs of one chart run
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	InputPath   string         `json:"input_path,omitempty"`
	Rows        int            `json:"rows"`
	SubsetRows  int            `json:"subset_rows"`
	Fingerprint Fingerprint    `json:"fingerprint"`
	Artifacts   []Artifact     `json:"artifacts"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// NewManifest creates a manifest for a new run
func NewManifest(runID core.RunID, inputPath string, rows, subsetRows int, fp Fingerprint) *Manifest {
	return &Manifest{
		RunID:       runID,
		InputPath:   inputPath,
		Rows:        rows,
		SubsetRows:  subsetRows,
		Fingerprint: fp,
		Artifacts:   []Artifact{},
		CreatedAt:   core.Now(),
	}
}

// AddArtifact appends an output file
func (m *Manifest) AddArtifact(a Artifact) {
	m.Artifacts = append(m.Artifacts, a)
}

// Artifact finds an output by kind
func (m *Manifest) Artifact(kind core.ArtifactKind) (Artifact, bool) {
	for _, a := range m.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return Artifact{}, false
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("run_manifest", "run_id cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return core.NewValidationError("run_manifest", "fingerprint cannot be empty")
	}
	if m.Rows <= 0 {
		return core.NewValidationError("run_manifest", "rows must be positive")
	}
	if m.SubsetRows > m.Rows {
		return core.NewValidationError("run_manifest",
			fmt.Sprintf("subset rows %d exceed table rows %d", m.SubsetRows, m.Rows))
	}
	for _, a := range m.Artifacts {
		if a.Path == "" || core.Hash(a.Hash).IsEmpty() {
			return core.NewValidationError("run_manifest", fmt.Sprintf("artifact %s is incomplete", a.Kind))
		}
	}
	return nil
}

package domain

import "time"

// Kinds of copied artifacts. Compiled artifacts use their category as kind.
const (
	KindHTML  = "html"
	KindStyle = "style"
	KindAsset = "asset"
)

// Artifact is a file written into the output tree by one build or copy operation.
type Artifact struct {
	Kind   string
	Source string
	Output string
}

// BuildInfo is the persisted record of the last write of an output file.
type BuildInfo struct {
	Output     string    `json:"output,omitzero"`
	Source     string    `json:"source,omitzero"`
	Kind       string    `json:"kind,omitzero"`
	OutputHash string    `json:"output_hash,omitzero"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}

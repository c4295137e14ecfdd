package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one mesh in the output manifest.
type ManifestEntry struct {
	Name               string `json:"name"`
	Input              string `json:"input"`
	Archetype          string `json:"archetype,omitempty"`
	Rule               string `json:"rule,omitempty"`
	Fallback           bool   `json:"fallback,omitempty"`
	Joints             int    `json:"joints"`
	Vertices           int    `json:"vertices"`
	ZeroWeightVertices int    `json:"zero_weight_vertices"`
	SeededWeights      bool   `json:"seeded_weights,omitempty"`
	Rig                string `json:"rig,omitempty"`
	Preview            string `json:"preview,omitempty"`
	Error              string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json to path. Output paths are stored
// relative to the manifest's directory when possible.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" {
			return ""
		}
		if r, err := filepath.Rel(base, p); err == nil {
			return filepath.ToSlash(r)
		}
		return p
	}

	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Name:               r.Name,
			Input:              r.Input,
			Archetype:          r.Archetype,
			Rule:               r.Rule,
			Fallback:           r.Fallback,
			Joints:             r.Joints,
			Vertices:           r.Vertices,
			ZeroWeightVertices: r.ZeroWeightVertices,
			SeededWeights:      r.SeededWeights,
			Rig:                rel(r.Rig),
			Preview:            rel(r.Preview),
			Error:              r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

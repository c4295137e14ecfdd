package meshio

import (
	"encoding/json"
	"fmt"
	"os"

	"mesh-autorig/internal/mathutil"
)

// Samples is predictor output: sparse positions with a weight row each.
type Samples struct {
	Vertices []mathutil.Vec3 `json:"vertices"`
	Weights  [][]float64     `json:"weights"`
}

// ReadSamples loads a samples JSON file and checks that rows line up.
func ReadSamples(path string) (Samples, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Samples{}, fmt.Errorf("meshio: read %s: %w", path, err)
	}
	var s Samples
	if err := json.Unmarshal(data, &s); err != nil {
		return Samples{}, fmt.Errorf("meshio: parse %s: %w", path, err)
	}
	if len(s.Vertices) != len(s.Weights) {
		return Samples{}, fmt.Errorf("meshio: %s: %d vertices but %d weight rows", path, len(s.Vertices), len(s.Weights))
	}
	return s, nil
}

// WriteSamples stores s as indented JSON.
func WriteSamples(path string, s Samples) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("meshio: encode samples: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}
	return nil
}

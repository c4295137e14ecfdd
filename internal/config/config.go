// Package config loads rigging settings from a JSON file and applies CLI
// overrides and defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"mesh-autorig/internal/skinning"
)

// Config holds all configurable paths, rigging and preview settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	InputDir   string `json:"input_dir"`
	InputGlob  string `json:"input_glob"`
	WeightsDir string `json:"weights_dir"`
	OutputDir  string `json:"output_dir"`

	// Rigging
	ExtrudeScale float64 `json:"extrude_scale"`
	Seed         uint64  `json:"seed"`
	ObjCharset   string  `json:"obj_charset"`
	ExportFormat string  `json:"export_format"`

	// Diffusion
	SampleMethod   string  `json:"sample_method"`
	NearestSamples int     `json:"nearest_samples"`
	IterSteps      *int    `json:"iter_steps"`
	Threshold      float64 `json:"threshold"`
	Alpha          float64 `json:"alpha"`

	// Preview
	Preview       bool   `json:"preview"`
	PreviewFormat string `json:"preview_format"`
	PreviewSize   int    `json:"preview_size"`
	Supersample   int    `json:"supersample"`

	Workers  int    `json:"workers"`
	LogLevel string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Zero
// values leave the file setting alone; IterSteps uses -1 for "unset" since
// zero iterations is meaningful.
type Flags struct {
	InputDir      string
	OutputDir     string
	WeightsDir    string
	SampleMethod  string
	IterSteps     int
	Threshold     float64
	Alpha         float64
	Samples       int
	Workers       int
	Preview       bool
	PreviewFormat string
	LogLevel      string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.WeightsDir != "" {
		c.WeightsDir = flags.WeightsDir
	}
	if flags.SampleMethod != "" {
		c.SampleMethod = flags.SampleMethod
	}
	if flags.IterSteps >= 0 {
		n := flags.IterSteps
		c.IterSteps = &n
	}
	if flags.Threshold > 0 {
		c.Threshold = flags.Threshold
	}
	if flags.Alpha > 0 {
		c.Alpha = flags.Alpha
	}
	if flags.Samples > 0 {
		c.NearestSamples = flags.Samples
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Preview {
		c.Preview = true
	}
	if flags.PreviewFormat != "" {
		c.PreviewFormat = flags.PreviewFormat
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	c.InputDir = c.resolvePath(c.InputDir, "meshes")
	c.OutputDir = c.resolvePath(c.OutputDir, "rigs")
	if c.WeightsDir != "" {
		c.WeightsDir = c.resolvePath(c.WeightsDir, "")
	}
	if c.InputGlob == "" {
		c.InputGlob = "*.obj"
	}

	def := skinning.DefaultConfig()
	if c.SampleMethod == "" {
		c.SampleMethod = string(def.SampleMethod)
	}
	if c.NearestSamples <= 0 {
		c.NearestSamples = def.NearestSamples
	}
	if c.IterSteps == nil {
		n := def.IterSteps
		c.IterSteps = &n
	}
	if c.Threshold <= 0 {
		c.Threshold = def.Threshold
	}
	if c.Alpha <= 0 {
		c.Alpha = def.Alpha
	}

	if c.ExportFormat == "" {
		c.ExportFormat = "glb"
	}
	c.ExportFormat = strings.ToLower(c.ExportFormat)
	if c.PreviewFormat == "" {
		c.PreviewFormat = "webp"
	}
	c.PreviewFormat = strings.ToLower(c.PreviewFormat)
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Skinning converts the diffusion fields into a skinning.Config. Call after
// Resolve.
func (c *Config) Skinning() skinning.Config {
	sc := skinning.DefaultConfig()
	sc.SampleMethod = skinning.Method(c.SampleMethod)
	sc.NearestSamples = c.NearestSamples
	if c.IterSteps != nil {
		sc.IterSteps = *c.IterSteps
	}
	sc.Threshold = c.Threshold
	sc.Alpha = c.Alpha
	return sc
}

func (c *Config) resolvePath(p, def string) string {
	if p == "" {
		if def == "" {
			return ""
		}
		p = def
	}
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

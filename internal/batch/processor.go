// Package batch rigs many mesh files in parallel. Each file is an
// independent job: read, synthesize a skeleton, seed or load sampled
// weights, diffuse, export and optionally render a preview.
package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	autorig "mesh-autorig"
	"mesh-autorig/internal/export"
	"mesh-autorig/internal/logging"
	"mesh-autorig/internal/meshio"
	"mesh-autorig/internal/preview"
	"mesh-autorig/internal/skinning"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir    string
	WeightsDir   string // optional; <name>.json sample files
	ObjCharset   string
	ExportFormat string // "glb", "gltf" or "json"
	ExtrudeScale float64
	Seed         uint64
	Skinning     skinning.Config

	Preview       bool
	PreviewFormat string
	PreviewSize   int
	Supersample   int

	Workers  int
	Progress bool // print a throughput line every two seconds
	Logger   *slog.Logger
}

// Result holds the outcome of processing one mesh.
type Result struct {
	Input              string
	Name               string
	Archetype          string
	Rule               string
	Fallback           bool
	Joints             int
	Vertices           int
	ZeroWeightVertices int
	SeededWeights      bool
	Rig                string
	Preview            string
	Success            bool
	Error              string
}

// Run processes all inputs using a worker pool. Results keep input order.
func Run(cfg Config, inputs []string) []Result {
	total := len(inputs)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Printf("  [%d/%d] %.1f meshes/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processMesh(cfg, inputs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

func processMesh(cfg Config, input string) Result {
	log := logging.OrNop(cfg.Logger).With("input", input)
	res := Result{Input: input}
	fail := func(err error) Result {
		log.Error("rig failed", "err", err)
		res.Error = err.Error()
		return res
	}

	m, err := meshio.ReadOBJ(input, cfg.ObjCharset)
	if err != nil {
		return fail(err)
	}
	res.Name = m.Name
	res.Vertices = len(m.Vertices)
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	rig, err := autorig.Synthesize(m, autorig.SkeletonOptions{
		ExtrudeScale: cfg.ExtrudeScale,
		Seed:         cfg.Seed,
		Logger:       log,
	})
	if err != nil {
		return fail(err)
	}
	sk := rig.Skeleton
	res.Archetype = string(rig.Archetype)
	res.Rule = rig.Rule.String()
	res.Fallback = rig.Fallback
	res.Joints = sk.Len()

	skinCfg := cfg.Skinning
	skinCfg.Logger = log
	var weights skinning.Weights
	if len(m.Vertices) > 0 {
		in := autorig.DiffuseInput{
			TargetVertices: m.Vertices,
			TargetFaces:    m.Faces,
			Parents:        sk.Parents(),
		}
		samples, ok, err := loadSamples(cfg.WeightsDir, stem)
		if err != nil {
			return fail(err)
		}
		if ok {
			in.SampledVertices, in.SampledWeights = samples.Vertices, samples.Weights
		} else {
			// No predictor output: seed from bone proximity on the mesh itself.
			in.SampledVertices = m.Vertices
			in.SampledWeights = skinning.SeedFromSkeleton(m.Vertices, sk, skinCfg).Rows()
			res.SeededWeights = true
		}
		out, err := autorig.Skin(in, skinCfg)
		if err != nil {
			return fail(err)
		}
		weights = out.Weights
		res.ZeroWeightVertices = len(out.ZeroWeightVertices)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fail(fmt.Errorf("batch: mkdir %s: %w", cfg.OutputDir, err))
	}
	format := cfg.ExportFormat
	if format == "" {
		format = "glb"
	}
	res.Rig = filepath.Join(cfg.OutputDir, stem+"."+format)
	switch {
	case format == "json" || len(m.Faces) == 0:
		res.Rig = filepath.Join(cfg.OutputDir, stem+".json")
		err = export.WriteRigJSON(res.Rig, export.NewRig(m.Name, res.Archetype, sk, weights))
	default:
		err = export.WriteGLTF(res.Rig, m, sk, weights)
	}
	if err != nil {
		return fail(err)
	}

	if cfg.Preview {
		img, err := preview.Render(m, sk, weights, preview.Options{
			Size:        cfg.PreviewSize,
			Supersample: cfg.Supersample,
			Overlay:     true,
		})
		if err != nil {
			return fail(err)
		}
		pf := cfg.PreviewFormat
		if pf == "" {
			pf = "webp"
		}
		res.Preview = filepath.Join(cfg.OutputDir, stem+"."+pf)
		if err := preview.WriteFile(res.Preview, img, pf); err != nil {
			return fail(err)
		}
	}

	log.Info("rigged", "archetype", res.Archetype, "joints", res.Joints,
		"vertices", res.Vertices, "zero_weight_vertices", res.ZeroWeightVertices)
	res.Success = true
	return res
}

// loadSamples reads dir/<stem>.json when dir is set and the file exists.
func loadSamples(dir, stem string) (meshio.Samples, bool, error) {
	if dir == "" {
		return meshio.Samples{}, false, nil
	}
	path := filepath.Join(dir, stem+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return meshio.Samples{}, false, nil
	}
	s, err := meshio.ReadSamples(path)
	if err != nil {
		return meshio.Samples{}, false, err
	}
	return s, true, nil
}

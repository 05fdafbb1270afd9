package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chazu/vertexgen/pkg/detector"
	"github.com/chazu/vertexgen/pkg/engine"
	"github.com/chazu/vertexgen/pkg/kernel"
	"github.com/chazu/vertexgen/pkg/kernel/sdfx"
	"github.com/chazu/vertexgen/pkg/region"
	"github.com/chazu/vertexgen/pkg/sampler"
	"github.com/chazu/vertexgen/pkg/tessellate"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// colorPalette is a default palette used to assign distinct colors to entries.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the DSL engine, the built-in detector parts and the solid
// kernel together for the command line.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format written by the mesh command.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Region   string    `json:"region"`
	Entry    string    `json:"entry"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating and meshing a source.
type EvalResult struct {
	Regions []string        `json:"regions"`
	Meshes  []MeshData      `json:"meshes"`
	Errors  []EvalErrorData `json:"errors"`
}

// VolumeRow describes one entry of a region table.
type VolumeRow struct {
	Region     string  `json:"region"`
	Entry      string  `json:"entry"`
	Mode       string  `json:"mode"`
	Measure    string  `json:"measure"`
	Weight     float64 `json:"weight"`
	Breakpoint float64 `json:"breakpoint"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
}

// LoadDetector builds the tables of a built-in part.
func (a *App) LoadDetector(name string) ([]*region.Table, error) {
	p, err := detector.Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Tables()
}

// LoadSource evaluates a detector description and returns its tables.
// Eval errors are folded into one error.
func (a *App) LoadSource(source string) ([]*region.Table, error) {
	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("evaluation failed: %s", strings.Join(msgs, "; "))
	}
	return res.Tables, nil
}

// Evaluate takes Lisp source and returns mesh data + errors for every
// region it declares. Failures without a source position are reported
// at line 0.
func (a *App) Evaluate(source string) EvalResult {
	result, err := a.EvaluateRegion(source, "")
	if err != nil {
		log.Errorf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	}
	return result
}

// EvaluateRegion evaluates source and meshes the named region, or every
// region when name is empty. Eval errors are reported in the result with
// their line and column; anything else (timeout, unknown region,
// tessellation) is returned as an error.
func (a *App) EvaluateRegion(source, name string) (EvalResult, error) {
	// Step 1: Evaluate the Lisp source into region tables.
	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return newEvalResult(), err
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		result := newEvalResult()
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result, nil
	}

	// Step 3: Tessellate.
	return a.Render(res.Tables, name)
}

// Render meshes the named region, or every table when name is empty.
// Regions always lists every table.
func (a *App) Render(tables []*region.Table, name string) (EvalResult, error) {
	result := newEvalResult()
	for _, t := range tables {
		result.Regions = append(result.Regions, t.Name())
	}
	if name != "" {
		sel, err := region.NewSelector(tables...)
		if err != nil {
			return result, err
		}
		t, err := sel.Table(name)
		if err != nil {
			return result, err
		}
		tables = []*region.Table{t}
	}
	meshes, err := tessellate.All(tables, a.kernel)
	if err != nil {
		return result, fmt.Errorf("tessellation failed: %w", err)
	}
	result.Meshes = meshData(meshes)
	return result, nil
}

func newEvalResult() EvalResult {
	return EvalResult{
		Regions: []string{},
		Meshes:  []MeshData{},
		Errors:  []EvalErrorData{},
	}
}

func meshData(meshes []*kernel.Mesh) []MeshData {
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Region:   m.Region,
			Entry:    m.Entry,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out
}

// Volumes lists every entry of every table with its weight and breakpoint.
func (a *App) Volumes(tables []*region.Table) []VolumeRow {
	var rows []VolumeRow
	for _, t := range tables {
		bps := t.Breakpoints()
		for i := 0; i < t.Len(); i++ {
			e := t.Entry(i)
			rows = append(rows, VolumeRow{
				Region:     t.Name(),
				Entry:      e.Label(),
				Mode:       e.Mode.String(),
				Measure:    t.Measure().String(),
				Weight:     t.Weight(i),
				Breakpoint: bps[i],
			})
		}
	}
	return rows
}

// Sample draws n vertices from the named region using the given number of
// workers. Worker w draws a contiguous share of the output from its own
// stream, so the result is reproducible for a fixed seed and worker count.
func (a *App) Sample(tables []*region.Table, name string, n int, seed uint64, workers int) ([]r3.Vec, error) {
	sel, err := region.NewSelector(tables...)
	if err != nil {
		return nil, err
	}
	if _, err := sel.Table(name); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	out := make([]r3.Vec, n)
	chunk := (n + workers - 1) / workers
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			g := sel.Bind(sampler.NewStream(seed, w))
			errs[w] = g.Fill(name, out[lo:hi])
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	log.WithFields(log.Fields{
		"region":  name,
		"n":       n,
		"workers": workers,
		"seed":    seed,
	}).Debug("vertices generated")
	return out, nil
}

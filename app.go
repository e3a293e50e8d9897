package main

import (
	"log"

	"github.com/chazu/conduit/pkg/config"
	"github.com/chazu/conduit/pkg/engine"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/kernel/sdfx"
	"github.com/chazu/conduit/pkg/scene"
	"github.com/chazu/conduit/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scene scripts into meshes. Its results are JSON-serializable
// so a frontend can consume them directly.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	opts   tessellate.Options
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32      `json:"vertices"`
	Normals  []float32      `json:"normals"`
	UVs      []float32      `json:"uvs,omitempty"`
	Indices  []uint32       `json:"indices"`
	Groups   []kernel.Group `json:"groups,omitempty"`
	PartName string         `json:"partName"`
	Color    string         `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with the default settings.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App whose scenes start from the given settings.
func NewAppWithConfig(c config.Config) *App {
	return &App{
		engine: engine.NewEngineWithDefaults(c.Defaults()),
		kernel: sdfx.NewWithResolution(c.Output.Resolution),
		opts: tessellate.Options{
			MeshObstacles: c.Output.Obstacles,
			Logger:        log.Default(),
		},
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
// Obstacles come first, in scene order, followed by one mesh holding every
// pipe with a group per pipe body and ring set.
func (a *App) Evaluate(source string) EvalResult {
	res, result := a.build(source)
	if res == nil {
		return result
	}

	meshes := append([]*kernel.Mesh{}, res.Obstacles...)
	if !res.Pipes.IsEmpty() {
		meshes = append(meshes, res.Pipes)
	}
	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			UVs:      m.UVs,
			Indices:  m.Indices,
			Groups:   m.Groups,
			PartName: m.PartName,
			Color:    color,
		})
	}
	return result
}

// build runs the pipeline up to tessellation. It returns a nil result when
// the script could not be turned into geometry; the reasons are in the
// returned EvalResult.
func (a *App) build(source string) (*tessellate.Result, EvalResult) {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a scene.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, result
	}

	// Step 2: Convert eval errors to the frontend format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return nil, result
	}

	// Step 3: Validate. Warnings are reported but do not stop the build.
	v := scene.ValidateAll(s)
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Message})
		}
		return nil, result
	}

	// Step 4: Route the pipes and tessellate the scene.
	res, err := tessellate.Tessellate(s, a.kernel, a.opts)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return nil, result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w})
	}
	return res, result
}

package network

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"

	"github.com/chazu/conduit/pkg/frame"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/scene"
	"github.com/chazu/conduit/pkg/shape"
	"github.com/chazu/conduit/pkg/tube"
)

// Pipe is one routed or hand-drawn pipe in a network.
type Pipe struct {
	ID     uuid.UUID
	Name   string
	Points []v3.Vec
	Found  bool        // false when the router fell back to the direct connector
	Stats  route.Stats // zero for polylines
	Route  route.Config
	Shape  shape.Config
}

// collider is the world name of the pipe's obstacle capsules.
func (p *Pipe) collider() string {
	return "pipe/" + p.ID.String()
}

// Path frames the pipe's polyline.
func (p *Pipe) Path() (frame.Path, error) {
	return frame.Build(p.Points, p.Shape)
}

// Mesh frames and meshes the pipe. Group names are prefixed with the pipe
// name.
func (p *Pipe) Mesh() (*kernel.Mesh, error) {
	path, err := p.Path()
	if err != nil {
		return nil, fmt.Errorf("network: pipe %q: %w", p.Name, err)
	}
	m, err := tube.Build(path, p.Shape)
	if err != nil {
		return nil, fmt.Errorf("network: pipe %q: %w", p.Name, err)
	}
	for i := range m.Groups {
		m.Groups[i].Name = p.Name + "/" + m.Groups[i].Name
	}
	m.PartName = p.Name
	return m, nil
}

// MaxCurvature returns the largest corner curvature the pipe can hold.
func (p *Pipe) MaxCurvature() float64 {
	return scene.MaxCurvature(p.Points)
}

// anchors recovers the route endpoints of the pipe from its first and last
// segments.
func (p *Pipe) anchors() (start, end route.Anchor) {
	n := len(p.Points)
	start = route.Anchor{Position: p.Points[0], Normal: p.Points[1].Sub(p.Points[0])}
	end = route.Anchor{Position: p.Points[n-1], Normal: p.Points[n-2].Sub(p.Points[n-1])}
	return start, end
}

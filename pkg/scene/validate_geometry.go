package scene

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/geom"
)

// ---------------------------------------------------------------------------
// Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs the obstacle and pipe checks.
func validateGeometry(s *Scene) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateObstacles(s)...)
	pipeErrs, pipeWarnings := validatePipes(s)
	errs = append(errs, pipeErrs...)
	warnings = append(warnings, pipeWarnings...)
	warnings = append(warnings, validateTransformedPipes(s)...)
	return errs, warnings
}

// validateObstacles checks that every obstacle has positive extents.
func validateObstacles(s *Scene) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, what string, v float64) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf("%s %s is %.4f, must be positive", n.Label(), what, v),
			Severity: SeverityError,
		})
	}
	for _, n := range s.Nodes {
		d, ok := n.Data.(ObstacleData)
		if !ok {
			continue
		}
		switch d.Prim {
		case PrimBox:
			if d.Size.X <= 0 {
				bad(n, "box size X", d.Size.X)
			}
			if d.Size.Y <= 0 {
				bad(n, "box size Y", d.Size.Y)
			}
			if d.Size.Z <= 0 {
				bad(n, "box size Z", d.Size.Z)
			}
		case PrimSphere:
			if d.Radius <= 0 {
				bad(n, "sphere radius", d.Radius)
			}
		case PrimCylinder:
			if d.Radius <= 0 {
				bad(n, "cylinder radius", d.Radius)
			}
			if d.Height <= 0 {
				bad(n, "cylinder height", d.Height)
			}
		}
	}
	return errs
}

// validatePipes checks pipe endpoints and configuration and warns about
// corners that cannot fit the requested curvature.
func validatePipes(s *Scene) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning
	for _, n := range s.Nodes {
		d, ok := n.Data.(PipeData)
		if !ok {
			continue
		}
		rc, sc := s.RouteConfig(n), s.ShapeConfig(n)
		if err := sc.Validate(); err != nil {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: err.Error(), Severity: SeverityError})
		}

		if !d.Routed() {
			if len(d.Points) < 2 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("pipe %q has %d points, needs at least 2", n.Label(), len(d.Points)),
					Severity: SeverityError,
				})
				continue
			}
			if limit := MaxCurvature(d.Points); sc.Curvature > limit {
				warnings = append(warnings, ValidationWarning{
					NodeID:  n.ID,
					Message: fmt.Sprintf("pipe %q curvature %.3f exceeds %.3f, corners will overlap", n.Label(), sc.Curvature, limit),
				})
			}
			continue
		}

		if err := rc.Validate(); err != nil {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: err.Error(), Severity: SeverityError})
			continue
		}
		if geom.Distance(d.Start, d.End) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("pipe %q starts and ends at the same point", n.Label()),
				Severity: SeverityError,
			})
		}
		for _, end := range []struct {
			name   string
			normal float64
		}{{"start", d.StartNormal.Length()}, {"end", d.EndNormal.Length()}} {
			if end.normal == 0 {
				warnings = append(warnings, ValidationWarning{
					NodeID:  n.ID,
					Message: fmt.Sprintf("pipe %q has no %s normal, the stand-off is skipped", n.Label(), end.name),
				})
			}
		}
		if limit := rc.GridSize / 2; sc.Curvature > limit {
			warnings = append(warnings, ValidationWarning{
				NodeID:  n.ID,
				Message: fmt.Sprintf("pipe %q curvature %.3f exceeds half the grid size %.3f", n.Label(), sc.Curvature, limit),
			})
		}
	}
	return errs, warnings
}

// validateTransformedPipes warns about pipes placed under a transform, which
// does not move them.
func validateTransformedPipes(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	seen := make(map[NodeID]bool)
	var walk func(n *Node, transformed bool)
	walk = func(n *Node, transformed bool) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		if n.Kind == NodePipe && transformed {
			warnings = append(warnings, ValidationWarning{
				NodeID:  n.ID,
				Message: fmt.Sprintf("pipe %q is inside a place form; pipe anchors are not transformed", n.Label()),
			})
		}
		for _, c := range s.Children(n) {
			walk(c, transformed || n.Kind == NodeTransform)
		}
	}
	for _, rid := range s.Roots {
		if n := s.Get(rid); n != nil {
			walk(n, false)
		}
	}
	return warnings
}

// MaxCurvature returns the largest corner curvature the polyline can hold:
// half of its longest segment.
func MaxCurvature(points []v3.Vec) float64 {
	var longest float64
	for i := 1; i < len(points); i++ {
		longest = max(longest, geom.Distance(points[i], points[i-1]))
	}
	return longest / 2
}

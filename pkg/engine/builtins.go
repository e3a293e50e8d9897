package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/scene"
	"github.com/chazu/conduit/pkg/shape"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: grid-size -> grid_size
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpObstacle wraps an obstacle shape so it can be returned from `box`,
// `sphere` or `cylinder` and consumed by `defobstacle`.
type sexpObstacle struct {
	data scene.ObstacleData
}

func (o *sexpObstacle) SexpString(ps *zygo.PrintState) string {
	switch o.data.Prim {
	case scene.PrimBox:
		return fmt.Sprintf("(box %.1fx%.1fx%.1f)", o.data.Size.X, o.data.Size.Y, o.data.Size.Z)
	case scene.PrimCylinder:
		return fmt.Sprintf("(cylinder r%.1f h%.1f)", o.data.Radius, o.data.Height)
	default:
		return fmt.Sprintf("(%s r%.1f)", o.data.Prim, o.data.Radius)
	}
}
func (o *sexpObstacle) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a scene.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   scene.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpRoute wraps a route.Config built by `route`.
type sexpRoute struct {
	cfg route.Config
}

func (r *sexpRoute) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(route :grid-size %g :height %g)", r.cfg.GridSize, r.cfg.Height)
}
func (r *sexpRoute) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a shape.Config built by `shape`.
type sexpShape struct {
	cfg shape.Config
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape :radius %g :edge-count %d)", s.cfg.Radius, s.cfg.EdgeCount)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value - treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknownKeywords reports keywords that are not in allowed.
func (a kwArgs) unknownKeywords(form string, allowed map[string]bool) error {
	for k := range a.kw {
		if !allowed[k] {
			return fmt.Errorf("%s: unknown keyword :%s", form, k)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a Sexp. Floats must be whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (scene.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return scene.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toRoute extracts a route.Config from a sexpRoute.
func toRoute(s zygo.Sexp) (route.Config, error) {
	if r, ok := s.(*sexpRoute); ok {
		return r.cfg, nil
	}
	return route.Config{}, fmt.Errorf("expected route, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a shape.Config from a sexpShape.
func toShape(s zygo.Sexp) (shape.Config, error) {
	if c, ok := s.(*sexpShape); ok {
		return c.cfg, nil
	}
	return shape.Config{}, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Config fields
// ---------------------------------------------------------------------------

// setter assigns one keyword value to a config.
type setter[T any] func(cfg *T, v zygo.Sexp) error

func floatField[T any](field func(*T) *float64) setter[T] {
	return func(cfg *T, v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		*field(cfg) = f
		return nil
	}
}

func intField[T any](field func(*T) *int) setter[T] {
	return func(cfg *T, v zygo.Sexp) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		*field(cfg) = n
		return nil
	}
}

func boolField[T any](field func(*T) *bool) setter[T] {
	return func(cfg *T, v zygo.Sexp) error {
		b, err := toBool(v)
		if err != nil {
			return err
		}
		*field(cfg) = b
		return nil
	}
}

// routeFields maps `route` keywords to route.Config fields.
var routeFields = map[string]setter[route.Config]{
	"grid-size":               floatField(func(c *route.Config) *float64 { return &c.GridSize }),
	"height":                  floatField(func(c *route.Config) *float64 { return &c.Height }),
	"radius":                  floatField(func(c *route.Config) *float64 { return &c.Radius }),
	"grid-rotation-y":         floatField(func(c *route.Config) *float64 { return &c.GridRotationY }),
	"max-iterations":          intField(func(c *route.Config) *int { return &c.MaxIterations }),
	"chaos":                   floatField(func(c *route.Config) *float64 { return &c.Chaos }),
	"straight-path-priority":  floatField(func(c *route.Config) *float64 { return &c.StraightPathPriority }),
	"near-obstacles-priority": floatField(func(c *route.Config) *float64 { return &c.NearObstaclesPriority }),
}

// shapeFields maps `shape` keywords to shape.Config fields.
var shapeFields = map[string]setter[shape.Config]{
	"radius":                  floatField(func(c *shape.Config) *float64 { return &c.Radius }),
	"edge-count":              intField(func(c *shape.Config) *int { return &c.EdgeCount }),
	"segment-count":           intField(func(c *shape.Config) *int { return &c.SegmentCount }),
	"curvature":               floatField(func(c *shape.Config) *float64 { return &c.Curvature }),
	"rings":                   boolField(func(c *shape.Config) *bool { return &c.HasRings }),
	"extrusion":               boolField(func(c *shape.Config) *bool { return &c.HasExtrusion }),
	"ring-thickness":          floatField(func(c *shape.Config) *float64 { return &c.RingThickness }),
	"ring-radius":             floatField(func(c *shape.Config) *float64 { return &c.RingRadius }),
	"caps":                    boolField(func(c *shape.Config) *bool { return &c.HasCaps }),
	"cap-thickness":           floatField(func(c *shape.Config) *float64 { return &c.CapThickness }),
	"cap-radius":              floatField(func(c *shape.Config) *float64 { return &c.CapRadius }),
	"cap-offset":              floatField(func(c *shape.Config) *float64 { return &c.CapOffset }),
	"rings-uv-scale":          floatField(func(c *shape.Config) *float64 { return &c.RingsUVScale }),
	"separate-rings-material": boolField(func(c *shape.Config) *bool { return &c.SeparateRingsMaterial }),
	"world-space-uv":          boolField(func(c *shape.Config) *bool { return &c.WorldSpaceUV }),
	"pipes-amount":            intField(func(c *shape.Config) *int { return &c.PipesAmount }),
}

// applyFields sets every keyword of pa on cfg.
func applyFields[T any](form string, cfg *T, pa kwArgs, fields map[string]setter[T]) error {
	for k, v := range pa.kw {
		set, ok := fields[k]
		if !ok {
			return fmt.Errorf("%s: unknown keyword :%s", form, k)
		}
		if err := set(cfg, v); err != nil {
			return fmt.Errorf("%s: %s: %w", form, k, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// sceneBuilder tracks the nodes created during one evaluation.
type sceneBuilder struct {
	s       *scene.Scene
	order   []scene.NodeID // creation order
	counter int            // suffix for anonymous node IDs
}

func (b *sceneBuilder) add(n *scene.Node) *sexpNodeRef {
	if _, exists := b.s.Nodes[n.ID]; !exists {
		b.order = append(b.order, n.ID)
	}
	b.s.AddNode(n)
	return &sexpNodeRef{id: n.ID, name: n.Name}
}

// anonID returns a fresh ID for an unnamed node of the given kind.
func (b *sceneBuilder) anonID(kind string) scene.NodeID {
	b.counter++
	return scene.NewNodeID(fmt.Sprintf("%s/_anon_%d", kind, b.counter))
}

// finish makes every node that no other node contains a root, in creation
// order.
func (b *sceneBuilder) finish() {
	contained := make(map[scene.NodeID]bool)
	for _, n := range b.s.Nodes {
		for _, c := range n.Children {
			contained[c] = true
		}
	}
	for _, id := range b.order {
		if !contained[id] {
			b.s.AddRoot(id)
		}
	}
}

// registerBuiltins installs all scene DSL builtins into a zygomys environment.
// The builtins populate the provided Scene during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) *sceneBuilder {
	b := &sceneBuilder{s: s}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 10 20 30))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("box", map[string]bool{"size": true}); err != nil {
			return zygo.SexpNull, err
		}
		od := scene.ObstacleData{Prim: scene.PrimBox}
		v, ok := pa.kw["size"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("box requires :size")
		}
		size, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
		}
		od.Size = size
		return &sexpObstacle{data: od}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 5)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("sphere", map[string]bool{"radius": true}); err != nil {
			return zygo.SexpNull, err
		}
		od := scene.ObstacleData{Prim: scene.PrimSphere}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			od.Radius = f
		}
		return &sexpObstacle{data: od}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 5 :height 40)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("cylinder", map[string]bool{"radius": true, "height": true}); err != nil {
			return zygo.SexpNull, err
		}
		od := scene.ObstacleData{Prim: scene.PrimCylinder}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			od.Radius = f
		}
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			od.Height = f
		}
		return &sexpObstacle{data: od}, nil
	})

	// -----------------------------------------------------------------------
	// (defobstacle "name" (box ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defobstacle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defobstacle requires a name and a shape expression")
		}

		obstacleName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defobstacle: name: %w", err)
		}

		body, ok := args[1].(*sexpObstacle)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defobstacle: expected box, sphere or cylinder, got %T", args[1])
		}

		return b.add(&scene.Node{
			ID:   scene.NewNodeID("obstacle/" + obstacleName),
			Kind: scene.NodeObstacle,
			Name: obstacleName,
			Data: body.data,
		}), nil
	})

	// -----------------------------------------------------------------------
	// (obstacle "name")
	// -----------------------------------------------------------------------
	env.AddFunction("obstacle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("obstacle requires a name argument")
		}

		obstacleName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("obstacle: name: %w", err)
		}

		n := s.Lookup(obstacleName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("obstacle: no node named %q", obstacleName)
		}

		return &sexpNodeRef{id: n.ID, name: obstacleName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (obstacle "wall") :at (vec3 0 0 19) :rotate (vec3 0 90 0))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("place", map[string]bool{"at": true, "rotate": true}); err != nil {
			return zygo.SexpNull, err
		}

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a node reference as first argument")
		}

		var children []scene.NodeID
		for i, arg := range pa.positional {
			childID, err := toNodeRef(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: child %d: %w", i+1, err)
			}
			children = append(children, childID)
		}

		td := scene.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		return b.add(&scene.Node{
			ID:       b.anonID("place"),
			Kind:     scene.NodeTransform,
			Children: children,
			Data:     td,
		}), nil
	})

	// -----------------------------------------------------------------------
	// (group "name" (place ...) (pipe ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("group requires a name argument")
		}

		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
		}

		var children []scene.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("group: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			children = append(children, ref.id)
		}

		return b.add(&scene.Node{
			ID:       scene.NewNodeID("group/" + groupName),
			Kind:     scene.NodeGroup,
			Name:     groupName,
			Children: children,
			Data:     scene.GroupData{},
		}), nil
	})

	// -----------------------------------------------------------------------
	// (route :grid-size 3 :height 5 :chaos 0.5 ...)
	//
	// Starts from the scene defaults in effect when it is evaluated.
	// -----------------------------------------------------------------------
	env.AddFunction("route", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		cfg := s.Defaults.Route
		if err := applyFields("route", &cfg, parseArgs(args), routeFields); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRoute{cfg: cfg}, nil
	})

	// -----------------------------------------------------------------------
	// (shape :radius 1 :edge-count 12 :rings true ...)
	//
	// Starts from the scene defaults in effect when it is evaluated.
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		cfg := s.Defaults.Shape
		if err := applyFields("shape", &cfg, parseArgs(args), shapeFields); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{cfg: cfg}, nil
	})

	// -----------------------------------------------------------------------
	// (defaults :route (route ...) :shape (shape ...) :seed 7)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("defaults", map[string]bool{"route": true, "shape": true, "seed": true}); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["route"]; ok {
			cfg, err := toRoute(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: route: %w", err)
			}
			s.Defaults.Route = cfg
		}
		if v, ok := pa.kw["shape"]; ok {
			cfg, err := toShape(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: shape: %w", err)
			}
			s.Defaults.Shape = cfg
		}
		if v, ok := pa.kw["seed"]; ok {
			seed, err := toInt(v)
			if err != nil || seed < 0 {
				return zygo.SexpNull, fmt.Errorf("defaults: seed: expected a non-negative integer")
			}
			s.Defaults.Seed = uint64(seed)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (pipe "name" :from (vec3 ..) :from-normal (vec3 ..)
	//              :to (vec3 ..) :to-normal (vec3 ..)
	//              :route (route ...) :shape (shape ...))
	// -----------------------------------------------------------------------
	env.AddFunction("pipe", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pipeName, err := nameArg("pipe", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		allowed := map[string]bool{"from": true, "from-normal": true, "to": true, "to-normal": true, "route": true, "shape": true}
		if err := pa.unknownKeywords("pipe", allowed); err != nil {
			return zygo.SexpNull, err
		}

		pd := scene.PipeData{}
		for _, f := range []struct {
			kw       string
			dst      *v3.Vec
			required bool
		}{
			{"from", &pd.Start, true},
			{"from-normal", &pd.StartNormal, false},
			{"to", &pd.End, true},
			{"to-normal", &pd.EndNormal, false},
		} {
			v, ok := pa.kw[f.kw]
			if !ok {
				if f.required {
					return zygo.SexpNull, fmt.Errorf("pipe %q requires :%s", pipeName, f.kw)
				}
				continue
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pipe: %s: %w", f.kw, err)
			}
			*f.dst = vec
		}
		if err := pipeOverrides("pipe", pa, &pd); err != nil {
			return zygo.SexpNull, err
		}

		return b.add(&scene.Node{
			ID:   scene.NewNodeID("pipe/" + pipeName),
			Kind: scene.NodePipe,
			Name: pipeName,
			Data: pd,
		}), nil
	})

	// -----------------------------------------------------------------------
	// (polyline "name" :points (list (vec3 ..) (vec3 ..) ...) :shape (shape ...))
	// -----------------------------------------------------------------------
	env.AddFunction("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pipeName, err := nameArg("polyline", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.unknownKeywords("polyline", map[string]bool{"points": true, "shape": true}); err != nil {
			return zygo.SexpNull, err
		}

		v, ok := pa.kw["points"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("polyline %q requires :points", pipeName)
		}
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyline: points: %w", err)
		}
		pd := scene.PipeData{}
		for i, item := range items {
			p, err := toVec3(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polyline: point %d: %w", i, err)
			}
			pd.Points = append(pd.Points, p)
		}
		if len(pd.Points) == 0 {
			return zygo.SexpNull, fmt.Errorf("polyline %q has no points", pipeName)
		}
		if err := pipeOverrides("polyline", pa, &pd); err != nil {
			return zygo.SexpNull, err
		}

		return b.add(&scene.Node{
			ID:   scene.NewNodeID("pipe/" + pipeName),
			Kind: scene.NodePipe,
			Name: pipeName,
			Data: pd,
		}), nil
	})

	return b
}

// nameArg returns the required leading name of a named form.
func nameArg(form string, pa kwArgs) (string, error) {
	if len(pa.positional) < 1 {
		return "", fmt.Errorf("%s requires a name argument", form)
	}
	n, err := toString(pa.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", form, err)
	}
	return n, nil
}

// pipeOverrides reads the optional :route and :shape keywords of a pipe form.
func pipeOverrides(form string, pa kwArgs, pd *scene.PipeData) error {
	if v, ok := pa.kw["route"]; ok {
		cfg, err := toRoute(v)
		if err != nil {
			return fmt.Errorf("%s: route: %w", form, err)
		}
		pd.Route = &cfg
	}
	if v, ok := pa.kw["shape"]; ok {
		cfg, err := toShape(v)
		if err != nil {
			return fmt.Errorf("%s: shape: %w", form, err)
		}
		pd.Shape = &cfg
	}
	return nil
}

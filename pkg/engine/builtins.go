package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/vertexgen/pkg/geometry"
	"github.com/chazu/vertexgen/pkg/region"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms detector Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: linear-array -> linear_array
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

// sexpShape wraps an unplaced geometry.Shape returned by tubs, disc and box.
type sexpShape struct {
	shape geometry.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s)", s.shape.Kind())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpPlaced wraps a geometry.Descriptor returned by `place`.
type sexpPlaced struct {
	desc geometry.Descriptor
}

func (p *sexpPlaced) SexpString(ps *zygo.PrintState) string {
	t := p.desc.Placement.Translation
	return fmt.Sprintf("(place %s :at (vec3 %.2f %.2f %.2f))", p.desc.Label(), t.X, t.Y, t.Z)
}
func (p *sexpPlaced) Type() *zygo.RegisteredType { return nil }

// sexpEntries wraps one or more region entries returned by `entry` and
// `linear-array`.
type sexpEntries struct {
	entries []region.Entry
}

func (e *sexpEntries) SexpString(ps *zygo.PrintState) string {
	if len(e.entries) == 1 {
		return fmt.Sprintf("(entry %s :mode %s)", e.entries[0].Label(), e.entries[0].Mode)
	}
	return fmt.Sprintf("(entries %d)", len(e.entries))
}
func (e *sexpEntries) Type() *zygo.RegisteredType { return nil }

// sexpRegion references a table built by `region`.
type sexpRegion struct {
	table *region.Table
}

func (r *sexpRegion) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(region %q)", r.table.Name())
}
func (r *sexpRegion) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.2f %.2f %.2f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

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
				// Keyword at end with no value: a flag.
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

// float reads an optional numeric keyword into dst.
func (pa kwArgs) float(key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// kwFloat binds a numeric keyword to its destination.
type kwFloat struct {
	key string
	dst *float64
}

// floats reads several optional numeric keywords in order.
func (pa kwArgs) floats(fields ...kwFloat) error {
	for _, f := range fields {
		if err := pa.float(f.key, f.dst); err != nil {
			return err
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

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a unit vector.
func toAxis(s zygo.Sexp) (r3.Vec, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return r3.Vec{X: 1}, nil
	case "y":
		return r3.Vec{Y: 1}, nil
	case "z":
		return r3.Vec{Z: 1}, nil
	}
	return r3.Vec{}, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toMode converts a keyword or string to a sampling mode.
func toMode(s zygo.Sexp) (geometry.SamplingMode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected mode keyword: %w", err)
	}
	return geometry.ParseMode(name)
}

// toVec3 extracts an r3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toDescriptor extracts a descriptor from a shape or placed shape.
func toDescriptor(s zygo.Sexp) (geometry.Descriptor, error) {
	switch v := s.(type) {
	case *sexpShape:
		return geometry.Descriptor{Shape: v.shape}, nil
	case *sexpPlaced:
		return v.desc, nil
	}
	return geometry.Descriptor{}, fmt.Errorf("expected shape or placed shape, got %T (%s)", s, s.SexpString(nil))
}

// toEntries flattens entries, bare shapes and lists of them. Bare shapes
// are sampled by volume.
func toEntries(s zygo.Sexp) ([]region.Entry, error) {
	switch v := s.(type) {
	case *sexpEntries:
		return v.entries, nil
	case *sexpShape, *sexpPlaced:
		d, err := toDescriptor(v)
		if err != nil {
			return nil, err
		}
		return []region.Entry{{Descriptor: d, Mode: geometry.ModeVolume}}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected entry, shape or list of entries, got %T (%s)", s, s.SexpString(nil))
	}
	var out []region.Entry
	for _, item := range items {
		e, err := toEntries(item)
		if err != nil {
			return nil, err
		}
		out = append(out, e...)
	}
	return out, nil
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

// radians converts a DSL angle in degrees. A full 360 maps exactly to
// geometry.FullTurn.
func radians(deg float64) float64 {
	if math.Abs(deg-360) < 1e-9 {
		return geometry.FullTurn
	}
	return deg * math.Pi / 180
}

// angularSpan reads :phi-start and :phi-span in degrees.
func angularSpan(pa kwArgs) (start, span float64, err error) {
	start, span = 0, 360
	if err := pa.float("phi-start", &start); err != nil {
		return 0, 0, err
	}
	if err := pa.float("phi-span", &span); err != nil {
		return 0, 0, err
	}
	return radians(start), radians(span), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// design collects the region tables declared during one evaluation.
type design struct {
	tables []*region.Table
	names  map[string]bool
	opts   []region.Option
}

func newDesign(opts ...region.Option) *design {
	return &design{names: make(map[string]bool), opts: opts}
}

// registerBuiltins installs the detector DSL builtins into a zygomys
// environment. Declared regions are appended to d during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *design) {

	// -----------------------------------------------------------------------
	// (tubs :rmin 37.5 :rmax 38 :length 38 :phi-start 0 :phi-span 360)
	// -----------------------------------------------------------------------
	env.AddFunction("tubs", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t := geometry.Tube{}
		if err := pa.floats(kwFloat{"rmin", &t.Rmin}, kwFloat{"rmax", &t.Rmax}, kwFloat{"length", &t.Length}); err != nil {
			return zygo.SexpNull, fmt.Errorf("tubs: %w", err)
		}
		start, span, err := angularSpan(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tubs: %w", err)
		}
		t.PhiStart, t.PhiSpan = start, span
		return &sexpShape{shape: t}, nil
	})

	// -----------------------------------------------------------------------
	// (disc :radius 26 :thickness 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("disc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		c := geometry.Disc{}
		if err := pa.floats(kwFloat{"radius", &c.Radius}, kwFloat{"thickness", &c.Thickness}); err != nil {
			return zygo.SexpNull, fmt.Errorf("disc: %w", err)
		}
		start, span, err := angularSpan(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("disc: %w", err)
		}
		c.PhiStart, c.PhiSpan = start, span
		return &sexpShape{shape: c}, nil
	})

	// -----------------------------------------------------------------------
	// (box :x 488 :y 8 :z 1)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b := geometry.Box{}
		if err := pa.floats(kwFloat{"x", &b.Size.X}, kwFloat{"y", &b.Size.Y}, kwFloat{"z", &b.Size.Z}); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpShape{shape: b}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: r3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (tubs ...) :at (vec3 0 0 -19) :rotate (vec3 90 0 0) :name "RING")
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a shape as first argument")
		}
		sh, ok := pa.positional[0].(*sexpShape)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("place: expected unplaced shape, got %T (%s)",
				pa.positional[0], pa.positional[0].SexpString(nil))
		}

		desc := geometry.Descriptor{Shape: sh.shape}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			desc.Placement.Translation = vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			desc.Placement.Rotation = &vec
		}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: name: %w", err)
			}
			desc.Name = s
		}

		return &sexpPlaced{desc: desc}, nil
	})

	// -----------------------------------------------------------------------
	// (entry (place ...) :mode :inside-cap :name "REAR_CAP")
	// -----------------------------------------------------------------------
	env.AddFunction("entry", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("entry requires exactly one shape, got %d", len(pa.positional))
		}
		desc, err := toDescriptor(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("entry: %w", err)
		}

		e := region.Entry{Descriptor: desc, Mode: geometry.ModeVolume}
		if v, ok := pa.kw["mode"]; ok {
			m, err := toMode(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("entry: mode: %w", err)
			}
			e.Mode = m
		}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("entry: name: %w", err)
			}
			e.Descriptor.Name = s
		}

		return &sexpEntries{entries: []region.Entry{e}}, nil
	})

	// -----------------------------------------------------------------------
	// (linear-array :count 24 :container 488 :item (box :x 6 :y 6 :z 1.5)
	//               :axis :x :width 6 :at (vec3 0 0 1.25) :name "SIPM")
	//
	// :width defaults to the item's extent along the axis.
	// -----------------------------------------------------------------------
	env.AddFunction("linear_array", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		v, ok := pa.kw["item"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("linear-array requires :item")
		}
		item, err := toDescriptor(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linear-array: item: %w", err)
		}

		axis := r3.Vec{X: 1}
		if v, ok := pa.kw["axis"]; ok {
			if axis, err = toAxis(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-array: axis: %w", err)
			}
		}

		arr := geometry.LinearArray{}
		v, ok = pa.kw["count"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("linear-array requires :count")
		}
		if arr.Count, err = toInt(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("linear-array: count: %w", err)
		}
		if err := pa.float("container", &arr.ContainerLength); err != nil {
			return zygo.SexpNull, fmt.Errorf("linear-array: %w", err)
		}
		if _, ok := pa.kw["width"]; ok {
			if err := pa.float("width", &arr.ItemWidth); err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-array: %w", err)
			}
		} else if item.Shape != nil {
			b := geometry.LocalBounds(item.Shape)
			arr.ItemWidth = r3.Dot(r3.Sub(b.Max, b.Min), axis)
		}

		base := item.Placement.Translation
		if v, ok := pa.kw["at"]; ok {
			if base, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-array: at: %w", err)
			}
		}
		if v, ok := pa.kw["name"]; ok {
			if item.Name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-array: name: %w", err)
			}
		}
		mode := geometry.ModeVolume
		if v, ok := pa.kw["mode"]; ok {
			if mode, err = toMode(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-array: mode: %w", err)
			}
		}

		if err := geometry.Check("linear-array", arr.Validate()); err != nil {
			return zygo.SexpNull, err
		}

		descs := arr.Place(item, axis, base)
		entries := make([]region.Entry, len(descs))
		for i, desc := range descs {
			entries[i] = region.Entry{Descriptor: desc, Mode: mode}
		}
		return &sexpEntries{entries: entries}, nil
	})

	// -----------------------------------------------------------------------
	// (region "PMT_BODY" :bound (vec3 76 76 114) :bound-center (vec3 0 0 -38)
	//         (entry ...) (place ...) (linear-array ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("region", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("region requires a name argument")
		}
		regionName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("region: name: %w", err)
		}
		if d.names[regionName] {
			return zygo.SexpNull, fmt.Errorf("region: %q is already defined", regionName)
		}

		var entries []region.Entry
		for i, arg := range pa.positional[1:] {
			e, err := toEntries(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("region %s: argument %d: %w", regionName, i+1, err)
			}
			entries = append(entries, e...)
		}

		opts := append([]region.Option(nil), d.opts...)
		if v, ok := pa.kw["bound"]; ok {
			size, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("region: bound: %w", err)
			}
			bound := geometry.Centered(size)
			if v, ok := pa.kw["bound-center"]; ok {
				c, err := toVec3(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("region: bound-center: %w", err)
				}
				bound = r3.Box{Min: r3.Add(bound.Min, c), Max: r3.Add(bound.Max, c)}
			}
			opts = append(opts, region.WithBound(bound))
		}
		if v, ok := pa.kw["overlap-check"]; ok {
			check, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("region: overlap-check: %w", err)
			}
			if !check {
				opts = append(opts, region.WithoutOverlapCheck())
			}
		}

		t, err := region.NewTable(regionName, entries, opts...)
		if err != nil {
			return zygo.SexpNull, err
		}
		d.tables = append(d.tables, t)
		d.names[regionName] = true

		return &sexpRegion{table: t}, nil
	})
}

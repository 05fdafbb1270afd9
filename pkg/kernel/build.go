package kernel

import (
	"fmt"

	"github.com/chazu/vertexgen/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// cylinderSegments is passed to Cylinder for kernels that facet curves.
const cylinderSegments = 64

// Build creates the placed solid for a descriptor. The descriptor must be
// valid; see geometry.Validate.
func Build(k Kernel, d geometry.Descriptor) (Solid, error) {
	var s Solid
	switch shape := d.Shape.(type) {
	case geometry.Box:
		s = k.Box(shape.Size.X, shape.Size.Y, shape.Size.Z)
	case geometry.Tube:
		s = tube(k, shape)
	case geometry.Disc:
		s = tube(k, shape.Tube())
	default:
		return nil, fmt.Errorf("kernel: descriptor %s has unsupported shape %T", d.Label(), d.Shape)
	}

	// Rotation first, then translation.
	if rot := d.Placement.Rotation; rot != nil && (rot.X != 0 || rot.Y != 0 || rot.Z != 0) {
		s = k.Rotate(s, rot.X, rot.Y, rot.Z)
	}
	if t := d.Placement.Translation; t != (r3.Vec{}) {
		s = k.Translate(s, t.X, t.Y, t.Z)
	}
	return s, nil
}

func tube(k Kernel, t geometry.Tube) Solid {
	s := k.Cylinder(t.Length, t.Rmax, cylinderSegments)
	if t.Rmin > 0 {
		s = k.Difference(s, k.Cylinder(t.Length, t.Rmin, cylinderSegments))
	}
	if t.PhiSpan < geometry.FullTurn {
		// Oversize the wedge so only its flat sides cut.
		w := k.Wedge(2*t.Rmax, 2*t.Length, t.PhiStart, t.PhiSpan)
		s = k.Intersection(s, w)
	}
	return s
}

// Interpenetrate reports whether a and b share interior deeper than depth
// at any of the probe points. Solids that only touch never interpenetrate.
func Interpenetrate(k Kernel, a, b Solid, probes []r3.Vec, depth float64) bool {
	both := k.Intersection(a, b)
	for _, p := range probes {
		if both.Evaluate(p) < -depth {
			return true
		}
	}
	return false
}

// Grid returns the centres of an n×n×n lattice of cells spanning region.
func Grid(region r3.Box, n int) []r3.Vec {
	if n < 1 {
		n = 1
	}
	step := r3.Scale(1/float64(n), r3.Sub(region.Max, region.Min))
	out := make([]r3.Vec, 0, n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for l := 0; l < n; l++ {
				out = append(out, r3.Vec{
					X: region.Min.X + (float64(i)+0.5)*step.X,
					Y: region.Min.Y + (float64(j)+0.5)*step.Y,
					Z: region.Min.Z + (float64(l)+0.5)*step.Z,
				})
			}
		}
	}
	return out
}

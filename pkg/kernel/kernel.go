// Package kernel defines the abstract solid kernel used to cross-check
// composite parts: containment queries, interpenetration probing and
// triangle meshes for inspection. The sdfx package provides the
// implementation.
package kernel

import "gonum.org/v1/gonum/spatial/r3"

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Evaluate returns the signed distance from p to the surface,
	// negative inside.
	Evaluate(p r3.Vec) float64
}

// Kernel is the abstract solid kernel interface. All primitives are
// centred at the origin; cylinders run along Z.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Wedge(radius, height, start, span float64) Solid // angles in radians

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Contains reports whether p lies inside s or within tol of its surface.
func Contains(s Solid, p r3.Vec, tol float64) bool {
	return s.Evaluate(p) <= tol
}

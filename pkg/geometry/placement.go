package geometry

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
	axisZ = r3.Vec{Z: 1}
)

// Placement positions a primitive relative to the owning composite.
// Rotation holds Euler angles in degrees, applied about X, then Y, then Z.
// Rotation is applied before translation.
type Placement struct {
	Translation r3.Vec  `json:"translation"`
	Rotation    *r3.Vec `json:"rotation,omitempty"`
}

// Transform is a placement compiled into a single rotation and a translation.
type Transform struct {
	rot         r3.Rotation
	rotate      bool
	translation r3.Vec
}

// Compile folds the Euler angles into one rotation.
func (p Placement) Compile() Transform {
	t := Transform{translation: p.Translation}
	if p.Rotation == nil || (p.Rotation.X == 0 && p.Rotation.Y == 0 && p.Rotation.Z == 0) {
		return t
	}
	rx := r3.NewRotation(deg(p.Rotation.X), axisX)
	ry := r3.NewRotation(deg(p.Rotation.Y), axisY)
	rz := r3.NewRotation(deg(p.Rotation.Z), axisZ)
	q := quat.Mul(quat.Number(rz), quat.Mul(quat.Number(ry), quat.Number(rx)))
	t.rot = r3.Rotation(q)
	t.rotate = true
	return t
}

// Apply maps a point from the primitive's local frame to the composite frame.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	if t.rotate {
		p = t.rot.Rotate(p)
	}
	return r3.Add(p, t.translation)
}

// Apply is a convenience for one-off transforms.
func (p Placement) Apply(v r3.Vec) r3.Vec {
	return p.Compile().Apply(v)
}

func deg(a float64) float64 {
	return a * math.Pi / 180
}

package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FullTurn is the angular span of a closed tube or disc, in radians.
const FullTurn = 2 * math.Pi

// Kind distinguishes between primitive shapes.
type Kind int

const (
	KindTube Kind = iota // cylindrical shell
	KindDisc             // solid cylinder, no hole
	KindBox              // rectangular solid
)

func (k Kind) String() string {
	switch k {
	case KindTube:
		return "tube"
	case KindDisc:
		return "disc"
	case KindBox:
		return "box"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is the interface for kind-specific shape parameters.
type Shape interface {
	Kind() Kind
	shape() // marker method restricting implementations to this package
}

// Tube is a cylindrical shell along the local Z axis, centred at the local
// origin. Angles are in radians; Length is the full height.
type Tube struct {
	Rmin     float64 `json:"rmin"`
	Rmax     float64 `json:"rmax"`
	Length   float64 `json:"length"`
	PhiStart float64 `json:"phi_start"`
	PhiSpan  float64 `json:"phi_span"`
}

// NewTube returns a closed (full-turn) tube.
func NewTube(rmin, rmax, length float64) Tube {
	return Tube{Rmin: rmin, Rmax: rmax, Length: length, PhiSpan: FullTurn}
}

func (Tube) Kind() Kind { return KindTube }
func (Tube) shape()     {}

// Disc is a solid cylinder along the local Z axis, centred at the local origin.
type Disc struct {
	Radius    float64 `json:"radius"`
	Thickness float64 `json:"thickness"`
	PhiStart  float64 `json:"phi_start"`
	PhiSpan   float64 `json:"phi_span"`
}

// NewDisc returns a closed (full-turn) disc.
func NewDisc(radius, thickness float64) Disc {
	return Disc{Radius: radius, Thickness: thickness, PhiSpan: FullTurn}
}

func (Disc) Kind() Kind { return KindDisc }
func (Disc) shape()     {}

// Tube returns the disc as a tube with no hole.
func (d Disc) Tube() Tube {
	return Tube{Rmax: d.Radius, Length: d.Thickness, PhiStart: d.PhiStart, PhiSpan: d.PhiSpan}
}

// Box is a rectangular solid centred at the local origin. Size holds the
// full edge lengths along X, Y and Z.
type Box struct {
	Size r3.Vec `json:"size"`
}

// NewBox returns a box with the given full edge lengths.
func NewBox(x, y, z float64) Box {
	return Box{Size: r3.Vec{X: x, Y: y, Z: z}}
}

func (Box) Kind() Kind { return KindBox }
func (Box) shape()     {}

// Descriptor is a primitive shape together with its placement in the
// owning composite's frame.
type Descriptor struct {
	Name      string    `json:"name,omitempty"`
	Shape     Shape     `json:"shape"`
	Placement Placement `json:"placement"`
}

// At returns a copy of d translated to t, keeping its rotation.
func (d Descriptor) At(t r3.Vec) Descriptor {
	d.Placement.Translation = t
	return d
}

// Label returns the descriptor name, or its kind when unnamed.
func (d Descriptor) Label() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Shape == nil {
		return "<nil shape>"
	}
	return d.Shape.Kind().String()
}

// asTube returns the tube form of a tube or disc shape.
func asTube(s Shape) (Tube, bool) {
	switch v := s.(type) {
	case Tube:
		return v, true
	case Disc:
		return v.Tube(), true
	}
	return Tube{}, false
}

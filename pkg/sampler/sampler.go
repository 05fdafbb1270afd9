// Package sampler generates uniformly distributed points inside, or on the
// surface of, a single primitive shape. Samplers hold no mutable state; all
// randomness comes from the Source passed to each call.
package sampler

import (
	"math"

	"github.com/chazu/vertexgen/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// Source yields uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// Primitive is a descriptor compiled for repeated sampling in one mode.
type Primitive struct {
	desc      geometry.Descriptor
	mode      geometry.SamplingMode
	transform geometry.Transform

	// tube and disc
	tube geometry.Tube

	// box surface: cumulative face areas, normalised
	faceCDF [3]float64
}

// New compiles d for sampling in mode m. It validates the descriptor and
// returns a *geometry.GeometryError for an ill-formed one.
func New(d geometry.Descriptor, m geometry.SamplingMode) (*Primitive, error) {
	if err := geometry.Check(d.Label(), geometry.Validate(d, m)); err != nil {
		return nil, err
	}
	return compile(d, m), nil
}

func compile(d geometry.Descriptor, m geometry.SamplingMode) *Primitive {
	p := &Primitive{desc: d, mode: m, transform: d.Placement.Compile()}
	switch s := d.Shape.(type) {
	case geometry.Tube:
		p.tube = s
	case geometry.Disc:
		p.tube = s.Tube()
	case geometry.Box:
		x, y, z := s.Size.X, s.Size.Y, s.Size.Z
		xy, yz, xz := x*y, y*z, x*z
		total := xy + yz + xz
		p.faceCDF = [3]float64{xy / total, (xy + yz) / total, 1}
	}
	return p
}

// Descriptor returns the descriptor the primitive was compiled from.
func (p *Primitive) Descriptor() geometry.Descriptor { return p.desc }

// Mode returns the sampling mode.
func (p *Primitive) Mode() geometry.SamplingMode { return p.mode }

// GeneratePoint draws one point in the composite frame.
func (p *Primitive) GeneratePoint(src Source) r3.Vec {
	var local r3.Vec
	switch s := p.desc.Shape.(type) {
	case geometry.Box:
		local = p.boxPoint(s, src)
	default:
		local = p.tubePoint(src)
	}
	return p.transform.Apply(local)
}

// GeneratePoint draws one point from descriptor d in mode m. The
// descriptor must already be valid; use New to validate and reuse the
// compiled placement across draws.
func GeneratePoint(d geometry.Descriptor, m geometry.SamplingMode, src Source) r3.Vec {
	return compile(d, m).GeneratePoint(src)
}

func (p *Primitive) tubePoint(src Source) r3.Vec {
	t := p.tube
	phi := t.PhiStart + t.PhiSpan*src.Float64()

	var r, z float64
	switch p.mode {
	case geometry.ModeSurface:
		r = t.Rmax
		z = (src.Float64() - 0.5) * t.Length
	case geometry.ModeInsideCap:
		r = areaRadius(0, t.Rmax, src.Float64())
		z = (src.Float64() - 0.5) * t.Length
	case geometry.ModeEndcaps:
		r = areaRadius(t.Rmin, t.Rmax, src.Float64())
		z = t.Length / 2
		if src.Float64() < 0.5 {
			z = -z
		}
	default:
		r = areaRadius(t.Rmin, t.Rmax, src.Float64())
		z = (src.Float64() - 0.5) * t.Length
	}
	return r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}

// areaRadius inverts the area CDF of an annulus: r² is uniform in
// [rmin², rmax²]. Drawing r itself uniformly would crowd the centre.
func areaRadius(rmin, rmax, u float64) float64 {
	r2 := rmin*rmin + u*(rmax*rmax-rmin*rmin)
	return math.Sqrt(r2)
}

func (p *Primitive) boxPoint(b geometry.Box, src Source) r3.Vec {
	h := r3.Scale(0.5, b.Size)
	pt := r3.Vec{
		X: (2*src.Float64() - 1) * h.X,
		Y: (2*src.Float64() - 1) * h.Y,
		Z: (2*src.Float64() - 1) * h.Z,
	}
	if p.mode != geometry.ModeSurface {
		return pt
	}

	// Pick a face pair by area, then one of its two faces.
	u := src.Float64()
	side := 1.0
	if src.Float64() < 0.5 {
		side = -1
	}
	switch {
	case u < p.faceCDF[0]:
		pt.Z = side * h.Z
	case u < p.faceCDF[1]:
		pt.X = side * h.X
	default:
		pt.Y = side * h.Y
	}
	return pt
}

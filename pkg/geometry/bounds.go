package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LocalBounds returns the axis-aligned bounding box of a shape in its own
// frame. Partial tubes are bounded tightly by their arc extremes.
func LocalBounds(s Shape) r3.Box {
	switch v := s.(type) {
	case Box:
		h := r3.Scale(0.5, v.Size)
		return r3.Box{Min: r3.Scale(-1, h), Max: h}
	case Disc:
		return LocalBounds(v.Tube())
	case Tube:
		return tubeBounds(v)
	}
	return r3.Box{}
}

func tubeBounds(t Tube) r3.Box {
	hz := t.Length / 2
	if t.PhiSpan >= FullTurn {
		return r3.Box{
			Min: r3.Vec{X: -t.Rmax, Y: -t.Rmax, Z: -hz},
			Max: r3.Vec{X: t.Rmax, Y: t.Rmax, Z: hz},
		}
	}

	// Extremes of an annular sector lie on its four corners or where the
	// outer arc crosses an axis.
	end := t.PhiStart + t.PhiSpan
	xs := []float64{}
	ys := []float64{}
	for _, phi := range []float64{t.PhiStart, end} {
		for _, r := range []float64{t.Rmin, t.Rmax} {
			xs = append(xs, r*math.Cos(phi))
			ys = append(ys, r*math.Sin(phi))
		}
	}
	first := math.Ceil(t.PhiStart / (math.Pi / 2))
	for k := first; k*math.Pi/2 <= end; k++ {
		phi := k * math.Pi / 2
		xs = append(xs, t.Rmax*math.Cos(phi))
		ys = append(ys, t.Rmax*math.Sin(phi))
	}

	b := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: -hz},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: hz},
	}
	for i := range xs {
		b.Min.X = math.Min(b.Min.X, xs[i])
		b.Max.X = math.Max(b.Max.X, xs[i])
		b.Min.Y = math.Min(b.Min.Y, ys[i])
		b.Max.Y = math.Max(b.Max.Y, ys[i])
	}
	return b
}

// Bounds returns the axis-aligned bounding box of a placed descriptor in
// the composite frame. Rotated shapes are bounded by their rotated local box.
func Bounds(d Descriptor) r3.Box {
	local := LocalBounds(d.Shape)
	tr := d.Placement.Compile()

	out := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, c := range corners(local) {
		p := tr.Apply(c)
		out.Min = r3.Vec{X: math.Min(out.Min.X, p.X), Y: math.Min(out.Min.Y, p.Y), Z: math.Min(out.Min.Z, p.Z)}
		out.Max = r3.Vec{X: math.Max(out.Max.X, p.X), Y: math.Max(out.Max.Y, p.Y), Z: math.Max(out.Max.Z, p.Z)}
	}
	return out
}

func corners(b r3.Box) [8]r3.Vec {
	var c [8]r3.Vec
	for i := 0; i < 8; i++ {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}

// Within reports whether inner lies inside outer, allowing tol of slack on
// every face.
func Within(inner, outer r3.Box, tol float64) bool {
	return inner.Min.X >= outer.Min.X-tol && inner.Max.X <= outer.Max.X+tol &&
		inner.Min.Y >= outer.Min.Y-tol && inner.Max.Y <= outer.Max.Y+tol &&
		inner.Min.Z >= outer.Min.Z-tol && inner.Max.Z <= outer.Max.Z+tol
}

// Overlap returns the intersection of two boxes and whether it has
// positive extent along every axis.
func Overlap(a, b r3.Box) (r3.Box, bool) {
	o := r3.Box{
		Min: r3.Vec{X: math.Max(a.Min.X, b.Min.X), Y: math.Max(a.Min.Y, b.Min.Y), Z: math.Max(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Min(a.Max.X, b.Max.X), Y: math.Min(a.Max.Y, b.Max.Y), Z: math.Min(a.Max.Z, b.Max.Z)},
	}
	ok := o.Min.X < o.Max.X && o.Min.Y < o.Max.Y && o.Min.Z < o.Max.Z
	return o, ok
}

// Centered returns a box of the given full size centred at the origin.
func Centered(size r3.Vec) r3.Box {
	h := r3.Scale(0.5, size)
	return r3.Box{Min: r3.Scale(-1, h), Max: h}
}

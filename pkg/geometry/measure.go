package geometry

// Closed-form measures. These set the relative sampling weights of
// composite entries, so they are exact rather than estimated.

// Volume returns the volume of a shape.
func Volume(s Shape) float64 {
	switch v := s.(type) {
	case Tube:
		return sectorArea(v.PhiSpan, v.Rmin, v.Rmax) * v.Length
	case Disc:
		return Volume(v.Tube())
	case Box:
		return v.Size.X * v.Size.Y * v.Size.Z
	}
	return 0
}

// Weight returns the measure of the part of d eligible under mode m:
// a volume for volume modes, an area for surface modes. Unsupported
// combinations weigh zero.
func Weight(s Shape, m SamplingMode) float64 {
	if s == nil || !s.Kind().Supports(m) {
		return 0
	}
	if b, ok := s.(Box); ok {
		if m == ModeSurface {
			x, y, z := b.Size.X, b.Size.Y, b.Size.Z
			return 2 * (x*y + y*z + x*z)
		}
		return Volume(b)
	}

	t, _ := asTube(s)
	switch m {
	case ModeVolume:
		return Volume(t)
	case ModeInsideCap:
		return sectorArea(t.PhiSpan, 0, t.Rmax) * t.Length
	case ModeSurface:
		return t.PhiSpan * t.Rmax * t.Length
	case ModeEndcaps:
		return 2 * sectorArea(t.PhiSpan, t.Rmin, t.Rmax)
	}
	return 0
}

// sectorArea is the area of an annular sector of the given span in radians.
func sectorArea(span, rmin, rmax float64) float64 {
	return 0.5 * span * (rmax*rmax - rmin*rmin)
}

package geometry

import "math"

// coaxialTolerance is how far apart, in mm, two tube axes may sit and
// still be treated as the same line.
const coaxialTolerance = 1e-9

// Interpenetrate decides whether two placed descriptors share a region
// thicker than depth along every dimension. It has a closed form for
// unrotated boxes and for unrotated tubes or discs sharing an axis; for
// any other pair decided is false and the caller must probe.
func Interpenetrate(a, b Descriptor, depth float64) (overlap, decided bool) {
	if !unrotated(a.Placement) || !unrotated(b.Placement) {
		return false, false
	}

	_, aBox := a.Shape.(Box)
	_, bBox := b.Shape.(Box)
	if aBox && bBox {
		ba, bb := Bounds(a), Bounds(b)
		return intervalsOverlap(ba.Min.X, ba.Max.X, bb.Min.X, bb.Max.X, depth) &&
			intervalsOverlap(ba.Min.Y, ba.Max.Y, bb.Min.Y, bb.Max.Y, depth) &&
			intervalsOverlap(ba.Min.Z, ba.Max.Z, bb.Min.Z, bb.Max.Z, depth), true
	}

	ta, aTube := asTube(a.Shape)
	tb, bTube := asTube(b.Shape)
	if !aTube || !bTube {
		return false, false
	}
	pa, pb := a.Placement.Translation, b.Placement.Translation
	if math.Abs(pa.X-pb.X) > coaxialTolerance || math.Abs(pa.Y-pb.Y) > coaxialTolerance {
		return false, false
	}

	// Coaxial annular sectors intersect in z × r × φ.
	if !intervalsOverlap(pa.Z-ta.Length/2, pa.Z+ta.Length/2, pb.Z-tb.Length/2, pb.Z+tb.Length/2, depth) {
		return false, true
	}
	if !intervalsOverlap(ta.Rmin, ta.Rmax, tb.Rmin, tb.Rmax, depth) {
		return false, true
	}
	return spansOverlap(ta, tb), true
}

func unrotated(p Placement) bool {
	return p.Rotation == nil || (p.Rotation.X == 0 && p.Rotation.Y == 0 && p.Rotation.Z == 0)
}

func intervalsOverlap(lo1, hi1, lo2, hi2, depth float64) bool {
	return math.Min(hi1, hi2)-math.Max(lo1, lo2) > depth
}

// spansOverlap reports whether two angular spans share more than
// angleTolerance radians.
func spansOverlap(a, b Tube) bool {
	if a.PhiSpan >= FullTurn-angleTolerance || b.PhiSpan >= FullTurn-angleTolerance {
		return true
	}
	s1, s2 := wrapAngle(a.PhiStart), wrapAngle(b.PhiStart)
	for _, shift := range []float64{-FullTurn, 0, FullTurn} {
		lo := math.Max(s1, s2+shift)
		hi := math.Min(s1+a.PhiSpan, s2+shift+b.PhiSpan)
		if hi-lo > angleTolerance {
			return true
		}
	}
	return false
}

func wrapAngle(phi float64) float64 {
	phi = math.Mod(phi, FullTurn)
	if phi < 0 {
		phi += FullTurn
	}
	return phi
}

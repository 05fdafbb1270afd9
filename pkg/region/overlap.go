package region

import (
	"fmt"

	"github.com/chazu/vertexgen/pkg/geometry"
	"github.com/chazu/vertexgen/pkg/kernel"
	"github.com/chazu/vertexgen/pkg/sampler"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// overlapDepth is how far, in mm, a probe must sit inside both solids
	// to count as interpenetration. Coincident faces stay below it.
	overlapDepth = 1e-6
	// overlapSeed seeds the interior samples used as extra probes.
	overlapSeed = 0x5eed
	// overlapSamples is the number of interior samples drawn per entry.
	overlapSamples = 256
)

// sampledDescriptor returns the descriptor of the solid an entry actually
// draws from. An inside-cap entry fills its hole.
func sampledDescriptor(e Entry) geometry.Descriptor {
	d := e.Descriptor
	if e.Mode != geometry.ModeInsideCap {
		return d
	}
	switch s := d.Shape.(type) {
	case geometry.Tube:
		s.Rmin = 0
		d.Shape = s
	}
	return d
}

// overlapFindings checks every pair of entries whose bounding boxes
// intersect. Pairs with a closed form (unrotated boxes, coaxial unrotated
// tubes and discs) are decided exactly. The rest are probed on a lattice
// over the intersection plus interior samples of both entries that fall
// inside it; the probe is deterministic but can miss overlaps thinner
// than its spacing.
func overlapFindings(entries []weighted, k kernel.Kernel, resolution int) []geometry.ValidationError {
	n := len(entries)
	if n < 2 {
		return nil
	}

	descs := make([]geometry.Descriptor, n)
	solids := make([]kernel.Solid, n)
	boxes := make([]r3.Box, n)
	interior := make([][]r3.Vec, n)
	for i, e := range entries {
		d := sampledDescriptor(e.Entry)
		descs[i] = d
		s, err := kernel.Build(k, d)
		if err != nil {
			return []geometry.ValidationError{{
				Entry:    e.Label(),
				Message:  err.Error(),
				Severity: geometry.SeverityError,
			}}
		}
		solids[i] = s
		boxes[i] = geometry.Bounds(d)

		src := sampler.NewStream(overlapSeed, i)
		pts := make([]r3.Vec, overlapSamples)
		for j := range pts {
			pts[j] = sampler.GeneratePoint(d, geometry.ModeVolume, src)
		}
		interior[i] = pts
	}

	var errs []geometry.ValidationError
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ob, ok := geometry.Overlap(boxes[i], boxes[j])
			if !ok {
				continue
			}
			overlap, decided := geometry.Interpenetrate(descs[i], descs[j], overlapDepth)
			if !decided {
				overlap = probe(k, solids[i], solids[j], ob, interior[i], interior[j], resolution)
			}
			log.WithFields(log.Fields{
				"a":       entries[i].Label(),
				"b":       entries[j].Label(),
				"exact":   decided,
				"overlap": overlap,
			}).Trace("checked entry pair for overlap")
			if overlap {
				errs = append(errs, geometry.ValidationError{
					Entry:    entries[i].Label(),
					Message:  fmt.Sprintf("overlaps entry %s", entries[j].Label()),
					Severity: geometry.SeverityError,
				})
			}
		}
	}
	return errs
}

// probe tests the lattice over ob and the interior samples inside it.
func probe(k kernel.Kernel, a, b kernel.Solid, ob r3.Box, inA, inB []r3.Vec, resolution int) bool {
	probes := kernel.Grid(ob, resolution)
	probes = appendInside(probes, ob, inA)
	probes = appendInside(probes, ob, inB)
	return kernel.Interpenetrate(k, a, b, probes, overlapDepth)
}

func appendInside(dst []r3.Vec, b r3.Box, pts []r3.Vec) []r3.Vec {
	for _, p := range pts {
		if p.X >= b.Min.X && p.X <= b.Max.X &&
			p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
			p.Z >= b.Min.Z && p.Z <= b.Max.Z {
			dst = append(dst, p)
		}
	}
	return dst
}

package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// LinearArray is a row of identical fixed-width items laid out along one
// axis of a container, each centred in an equal share of the container
// length:
//
//	----------------------------------------------
//	|  | s |  | s |  | s |  | s |  | s |  | s |  |
//	----------------------------------------------
//
// Items may stand out of the container across the row, never along it.
type LinearArray struct {
	Count           int
	ItemWidth       float64
	ContainerLength float64
}

// Validate reports the findings that make the array infeasible. The only
// fit constraint is Count × ItemWidth > ContainerLength.
func (a LinearArray) Validate() []ValidationError {
	var errs []ValidationError
	if a.Count < 0 {
		errs = append(errs, errorf("", "linear array count is %d, must be non-negative", a.Count))
	}
	if !positive(a.ItemWidth) {
		errs = append(errs, errorf("", "linear array item width is %.4f, must be positive", a.ItemWidth))
	}
	if !positive(a.ContainerLength) {
		errs = append(errs, errorf("", "linear array container length is %.4f, must be positive", a.ContainerLength))
	}
	if float64(a.Count)*a.ItemWidth > a.ContainerLength {
		errs = append(errs, errorf("", "%d items of width %.4f do not fit in a container of length %.4f",
			a.Count, a.ItemWidth, a.ContainerLength))
	}
	return errs
}

// IllFormed reports whether Validate has any blocking finding.
func (a LinearArray) IllFormed() bool {
	return Check("", a.Validate()) != nil
}

// Offsets returns the centre of each item along the array axis, measured
// from the container centre.
func (a LinearArray) Offsets() []float64 {
	if a.Count <= 0 {
		return nil
	}
	pitch := a.ContainerLength / float64(a.Count)
	out := make([]float64, a.Count)
	for i := range out {
		out[i] = -a.ContainerLength/2 + (0.5+float64(i))*pitch
	}
	return out
}

// Place returns one descriptor per item, copies of item translated along
// axis by each offset, on top of base. Named items get an index suffix.
func (a LinearArray) Place(item Descriptor, axis r3.Vec, base r3.Vec) []Descriptor {
	offsets := a.Offsets()
	out := make([]Descriptor, len(offsets))
	for i, off := range offsets {
		out[i] = item.At(r3.Add(base, r3.Scale(off, axis)))
		if item.Name != "" {
			out[i].Name = fmt.Sprintf("%s_%d", item.Name, i)
		}
	}
	return out
}

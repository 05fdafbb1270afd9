// Package region composes primitive samplers into weighted composite
// tables and resolves named regions to them. Tables are validated and
// frozen at construction; after that they are read-only and may be shared
// by any number of goroutines, each sampling with its own random stream.
package region

import (
	"fmt"
	"math"

	"github.com/chazu/vertexgen/pkg/geometry"
	"github.com/chazu/vertexgen/pkg/kernel"
	"github.com/chazu/vertexgen/pkg/sampler"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// boundTolerance is the slack, in mm, allowed when checking entries
// against a declared outer bound.
const boundTolerance = 1e-6

// Entry is one primitive of a composite and the mode it is sampled in.
type Entry struct {
	Descriptor geometry.Descriptor `json:"descriptor"`
	Mode       geometry.SamplingMode `json:"mode"`
}

// Label names the entry in findings and listings.
func (e Entry) Label() string {
	return e.Descriptor.Label()
}

// weighted is an entry frozen for sampling.
type weighted struct {
	Entry
	weight float64
	prim   *sampler.Primitive
}

// Table is a Composite Region Table: an ordered sequence of weighted
// entries and their cumulative-probability breakpoints.
type Table struct {
	name        string
	entries     []weighted
	breakpoints []float64
	total       float64
	measure     geometry.Measure
	bound       *r3.Box
}

// NewTable validates entries and builds the table. Any blocking finding
// yields a *geometry.GeometryError wrapping geometry.ErrIllFormedGeometry.
// Construction is deterministic: identical inputs give identical
// breakpoints and the same pass/fail outcome.
func NewTable(name string, entries []Entry, opts ...Option) (*Table, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o(&cfg)
	}

	findings := validateEntries(name, entries)
	if err := geometry.Check(name, findings); err != nil {
		return nil, err
	}

	t := &Table{
		name:    name,
		entries: make([]weighted, len(entries)),
		measure: entries[0].Mode.Measure(),
		bound:   cfg.bound,
	}
	for i, e := range entries {
		t.entries[i] = weighted{
			Entry:  e,
			weight: geometry.Weight(e.Descriptor.Shape, e.Mode),
		}
		t.total += t.entries[i].weight
	}

	findings = append(findings, t.validateTotal()...)
	findings = append(findings, t.validateBound()...)
	if err := geometry.Check(name, findings); err != nil {
		return nil, err
	}
	if cfg.overlap && t.measure == geometry.MeasureVolume {
		findings = append(findings, overlapFindings(t.entries, cfg.kernel, cfg.resolution)...)
		if err := geometry.Check(name, findings); err != nil {
			return nil, err
		}
	}

	for i := range t.entries {
		prim, err := sampler.New(t.entries[i].Descriptor, t.entries[i].Mode)
		if err != nil {
			return nil, fmt.Errorf("region: %s: %w", name, err)
		}
		t.entries[i].prim = prim
	}
	t.breakpoints = cumulative(t.entries, t.total)

	log.WithFields(log.Fields{
		"region":  name,
		"entries": len(t.entries),
		"measure": t.measure,
		"total":   t.total,
	}).Debug("composite region table built")
	return t, nil
}

// NewSingle builds a table holding one primitive, for parts that are not
// composites.
func NewSingle(name string, d geometry.Descriptor, m geometry.SamplingMode, opts ...Option) (*Table, error) {
	return NewTable(name, []Entry{{Descriptor: d, Mode: m}}, opts...)
}

func validateEntries(name string, entries []Entry) []geometry.ValidationError {
	var errs []geometry.ValidationError
	if name == "" {
		errs = append(errs, geometry.ValidationError{Message: "region name is empty", Severity: geometry.SeverityError})
	}
	if len(entries) == 0 {
		return append(errs, geometry.ValidationError{Message: "composite has no entries", Severity: geometry.SeverityError})
	}

	measure := entries[0].Mode.Measure()
	for _, e := range entries {
		shapeErrs := geometry.Validate(e.Descriptor, e.Mode)
		errs = append(errs, shapeErrs...)
		if e.Mode.Measure() != measure {
			errs = append(errs, geometry.ValidationError{
				Entry:    e.Label(),
				Message:  fmt.Sprintf("%s mode is weighted by %s, composite is weighted by %s", e.Mode, e.Mode.Measure(), measure),
				Severity: geometry.SeverityError,
			})
		}
		if len(shapeErrs) > 0 {
			continue
		}
		if w := geometry.Weight(e.Descriptor.Shape, e.Mode); !(w > 0) || math.IsInf(w, 0) {
			errs = append(errs, geometry.ValidationError{
				Entry:    e.Label(),
				Message:  fmt.Sprintf("%s is %g, must be positive", e.Mode.Measure(), w),
				Severity: geometry.SeverityError,
			})
		}
	}
	return errs
}

func (t *Table) validateTotal() []geometry.ValidationError {
	if t.total > 0 && !math.IsInf(t.total, 0) {
		return nil
	}
	return []geometry.ValidationError{{
		Message:  fmt.Sprintf("total %s is %g, must be positive", t.measure, t.total),
		Severity: geometry.SeverityError,
	}}
}

func (t *Table) validateBound() []geometry.ValidationError {
	if t.bound == nil {
		return nil
	}
	var errs []geometry.ValidationError
	for _, e := range t.entries {
		b := geometry.Bounds(e.Descriptor)
		if !geometry.Within(b, *t.bound, boundTolerance) {
			errs = append(errs, geometry.ValidationError{
				Entry: e.Label(),
				Message: fmt.Sprintf("extent %v..%v exceeds the composite bound %v..%v",
					b.Min, b.Max, t.bound.Min, t.bound.Max),
				Severity: geometry.SeverityError,
			})
		}
	}
	return errs
}

// cumulative derives the breakpoints. The last one is pinned to exactly 1
// so rounding never leaves part of [0, 1) unmapped.
func cumulative(entries []weighted, total float64) []float64 {
	bps := make([]float64, len(entries))
	sum := 0.0
	for i, e := range entries {
		sum += e.weight
		bps[i] = sum / total
	}
	bps[len(bps)-1] = 1
	return bps
}

// Select returns the index of the entry owning u: the first entry whose
// breakpoint is strictly greater than u, so each entry owns the half-open
// interval [previous breakpoint, breakpoint). Values at or above 1 map to
// the last entry.
func (t *Table) Select(u float64) int {
	for i, bp := range t.breakpoints {
		if u < bp {
			return i
		}
	}
	return len(t.breakpoints) - 1
}

// Sample draws one point from the composite: one draw selects the entry,
// the chosen primitive consumes the rest.
func (t *Table) Sample(src sampler.Source) r3.Vec {
	_, p := t.SampleEntry(src)
	return p
}

// SampleEntry is Sample that also reports which entry produced the point.
func (t *Table) SampleEntry(src sampler.Source) (int, r3.Vec) {
	i := t.Select(src.Float64())
	return i, t.entries[i].prim.GeneratePoint(src)
}

// Name returns the region name.
func (t *Table) Name() string { return t.name }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entry returns entry i.
func (t *Table) Entry(i int) Entry { return t.entries[i].Entry }

// Weight returns the closed-form measure of entry i.
func (t *Table) Weight(i int) float64 { return t.entries[i].weight }

// Total returns the sum of entry weights.
func (t *Table) Total() float64 { return t.total }

// Measure reports whether the table is weighted by volume or area.
func (t *Table) Measure() geometry.Measure { return t.measure }

// Breakpoints returns a copy of the cumulative breakpoints.
func (t *Table) Breakpoints() []float64 {
	out := make([]float64, len(t.breakpoints))
	copy(out, t.breakpoints)
	return out
}

// Bound returns the declared outer bound, if any.
func (t *Table) Bound() (r3.Box, bool) {
	if t.bound == nil {
		return r3.Box{}, false
	}
	return *t.bound, true
}

// Solids builds one kernel solid per entry, in table order, using the
// shape each entry actually samples.
func (t *Table) Solids(k kernel.Kernel) ([]kernel.Solid, error) {
	out := make([]kernel.Solid, len(t.entries))
	for i, e := range t.entries {
		s, err := kernel.Build(k, sampledDescriptor(e.Entry))
		if err != nil {
			return nil, fmt.Errorf("region: %s: %w", t.name, err)
		}
		out[i] = s
	}
	return out, nil
}

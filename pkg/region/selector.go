package region

import (
	"fmt"
	"sort"

	"github.com/chazu/vertexgen/pkg/geometry"
	"github.com/chazu/vertexgen/pkg/sampler"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Selector maps region names to composite tables. It is immutable once
// built.
type Selector struct {
	tables map[string]*Table
}

// NewSelector indexes tables by name. Duplicate names are ill-formed.
func NewSelector(tables ...*Table) (*Selector, error) {
	s := &Selector{tables: make(map[string]*Table, len(tables))}
	var findings []geometry.ValidationError
	for i, t := range tables {
		if t == nil {
			findings = append(findings, geometry.ValidationError{
				Message:  fmt.Sprintf("table %d is nil", i),
				Severity: geometry.SeverityError,
			})
			continue
		}
		if _, dup := s.tables[t.Name()]; dup {
			findings = append(findings, geometry.ValidationError{
				Entry:    t.Name(),
				Message:  "region defined more than once",
				Severity: geometry.SeverityError,
			})
			continue
		}
		s.tables[t.Name()] = t
	}
	if err := geometry.Check("selector", findings); err != nil {
		return nil, err
	}
	log.WithField("regions", s.Regions()).Debug("region selector ready")
	return s, nil
}

// Table returns the table for region, or an error wrapping
// geometry.ErrUnknownRegion.
func (s *Selector) Table(region string) (*Table, error) {
	t, ok := s.tables[region]
	if !ok {
		return nil, &geometry.UnknownRegionError{Region: region}
	}
	return t, nil
}

// Regions returns the known region names, sorted.
func (s *Selector) Regions() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateVertex draws one point uniformly from the named region using
// src. An unknown region yields an error and consumes no draws.
func (s *Selector) GenerateVertex(region string, src sampler.Source) (r3.Vec, error) {
	t, err := s.Table(region)
	if err != nil {
		return r3.Vec{}, err
	}
	return t.Sample(src), nil
}

// Bind returns a Generator drawing from src. A Generator, like its source,
// belongs to a single goroutine.
func (s *Selector) Bind(src sampler.Source) *Generator {
	return &Generator{sel: s, src: src}
}

// Generator is a Selector bound to one random stream.
type Generator struct {
	sel *Selector
	src sampler.Source
}

// GenerateVertex draws one point from the named region.
func (g *Generator) GenerateVertex(region string) (r3.Vec, error) {
	return g.sel.GenerateVertex(region, g.src)
}

// Fill draws len(dst) points from the named region into dst.
func (g *Generator) Fill(region string, dst []r3.Vec) error {
	t, err := g.sel.Table(region)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = t.Sample(g.src)
	}
	return nil
}

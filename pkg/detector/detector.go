// Package detector provides built-in composite detector parts.
package detector

import (
	"fmt"
	"sort"

	"github.com/chazu/vertexgen/pkg/region"
)

// Part is a detector component that declares named sampling regions.
type Part interface {
	// Tables builds the part's region tables. The options apply to every
	// table.
	Tables(opts ...region.Option) ([]*region.Table, error)
}

var builtin = map[string]func() Part{
	"pmt-r11410": func() Part { return DefaultPmtR11410() },
	"sipm-board": func() Part { return DefaultSiPMBoard() },
}

// Names returns the names of the built-in parts, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a built-in part with its default dimensions.
func Lookup(name string) (Part, error) {
	f, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("detector: unknown part %q, expected one of %v", name, Names())
	}
	return f(), nil
}

// NewSelector builds the part's tables and indexes them by region name.
func NewSelector(p Part, opts ...region.Option) (*region.Selector, error) {
	tables, err := p.Tables(opts...)
	if err != nil {
		return nil, err
	}
	return region.NewSelector(tables...)
}

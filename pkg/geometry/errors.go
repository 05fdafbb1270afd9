package geometry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIllFormedGeometry means the declared primitives cannot physically
	// compose into the requested composite. It is a configuration bug.
	ErrIllFormedGeometry = errors.New("ill-formed geometry")
	// ErrUnknownRegion means a vertex was requested for a region name that
	// no composite defines.
	ErrUnknownRegion = errors.New("unknown region")
)

// GeometryError aggregates the blocking findings for one composite part.
type GeometryError struct {
	Part     string
	Findings []ValidationError
}

func (e *GeometryError) Error() string {
	msgs := make([]string, 0, len(e.Findings))
	for _, f := range e.Findings {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%s: part %q: %s", ErrIllFormedGeometry, e.Part, strings.Join(msgs, "; "))
}

func (e *GeometryError) Unwrap() error { return ErrIllFormedGeometry }

// Check returns a *GeometryError for the error-severity findings, or nil.
func Check(part string, findings []ValidationError) error {
	var errs []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &GeometryError{Part: part, Findings: errs}
}

// UnknownRegionError reports the region name that could not be resolved.
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownRegion, e.Region)
}

func (e *UnknownRegionError) Unwrap() error { return ErrUnknownRegion }

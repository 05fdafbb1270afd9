package geometry

import (
	"fmt"
	"math"
)

// angleTolerance absorbs rounding in spans computed from degrees.
const angleTolerance = 1e-9

// ValidationSeverity indicates whether a finding blocks construction or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks construction
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Entry    string             // which primitive has the problem (empty if part-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Entry, e.Message)
}

func errorf(entry, format string, args ...interface{}) ValidationError {
	return ValidationError{Entry: entry, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// Validate checks the shape invariants of a descriptor and that its kind
// supports the mode. It is read-only and deterministic.
func Validate(d Descriptor, m SamplingMode) []ValidationError {
	label := d.Label()
	if d.Shape == nil {
		return []ValidationError{errorf(label, "missing shape")}
	}

	var errs []ValidationError
	if !d.Shape.Kind().Supports(m) {
		errs = append(errs, errorf(label, "%s cannot be sampled in %s mode", d.Shape.Kind(), m))
	}

	switch s := d.Shape.(type) {
	case Tube:
		errs = append(errs, validateTube(label, s)...)
	case Disc:
		if !positive(s.Radius) {
			errs = append(errs, errorf(label, "disc radius is %.4f, must be positive", s.Radius))
		}
		if !positive(s.Thickness) {
			errs = append(errs, errorf(label, "disc thickness is %.4f, must be positive", s.Thickness))
		}
		errs = append(errs, validateSpan(label, s.PhiStart, s.PhiSpan)...)
	case Box:
		errs = append(errs, validateBox(label, s)...)
	}

	errs = append(errs, validatePlacement(label, d.Placement)...)
	return errs
}

func validateTube(label string, t Tube) []ValidationError {
	var errs []ValidationError
	if !(t.Rmin >= 0) || math.IsInf(t.Rmin, 0) {
		errs = append(errs, errorf(label, "inner radius is %.4f, must be non-negative", t.Rmin))
	}
	if !positive(t.Rmax) {
		errs = append(errs, errorf(label, "outer radius is %.4f, must be positive", t.Rmax))
	}
	if t.Rmax < t.Rmin {
		errs = append(errs, errorf(label, "outer radius %.4f is smaller than inner radius %.4f", t.Rmax, t.Rmin))
	}
	if !positive(t.Length) {
		errs = append(errs, errorf(label, "length is %.4f, must be positive", t.Length))
	}
	return append(errs, validateSpan(label, t.PhiStart, t.PhiSpan)...)
}

func validateSpan(label string, start, span float64) []ValidationError {
	var errs []ValidationError
	if math.IsNaN(start) || math.IsInf(start, 0) {
		errs = append(errs, errorf(label, "start angle %v is not finite", start))
	}
	if !(span > 0) || span > FullTurn+angleTolerance {
		errs = append(errs, errorf(label, "angular span %.6f rad outside (0, 2π]", span))
	}
	return errs
}

func validateBox(label string, b Box) []ValidationError {
	var errs []ValidationError
	for _, c := range []struct {
		axis string
		v    float64
	}{{"X", b.Size.X}, {"Y", b.Size.Y}, {"Z", b.Size.Z}} {
		if !positive(c.v) {
			errs = append(errs, errorf(label, "box dimension %s is %.4f, must be positive", c.axis, c.v))
		}
	}
	return errs
}

func validatePlacement(label string, p Placement) []ValidationError {
	vs := []float64{p.Translation.X, p.Translation.Y, p.Translation.Z}
	if p.Rotation != nil {
		vs = append(vs, p.Rotation.X, p.Rotation.Y, p.Rotation.Z)
	}
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return []ValidationError{errorf(label, "placement contains a non-finite component")}
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

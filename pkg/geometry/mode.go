package geometry

import "fmt"

// SamplingMode selects which part of a primitive is eligible for point
// generation. It changes the distribution, not the shape.
type SamplingMode int

const (
	ModeVolume    SamplingMode = iota // whole volume
	ModeSurface                       // outer lateral surface (tube, disc) or all faces (box)
	ModeInsideCap                     // full disc bounded by the outer radius, hole filled
	ModeEndcaps                       // the two flat end faces of a tube or disc
)

func (m SamplingMode) String() string {
	switch m {
	case ModeVolume:
		return "volume"
	case ModeSurface:
		return "surface"
	case ModeInsideCap:
		return "inside-cap"
	case ModeEndcaps:
		return "endcaps"
	default:
		return fmt.Sprintf("SamplingMode(%d)", int(m))
	}
}

// ParseMode converts a mode name as written in detector sources.
func ParseMode(s string) (SamplingMode, error) {
	switch s {
	case "volume", "whole-volume":
		return ModeVolume, nil
	case "surface", "surface-shell":
		return ModeSurface, nil
	case "inside-cap", "inside":
		return ModeInsideCap, nil
	case "endcaps":
		return ModeEndcaps, nil
	}
	return 0, fmt.Errorf("invalid sampling mode %q, expected volume, surface, inside-cap or endcaps", s)
}

// Measure is the dimension a sampling mode is weighted by.
type Measure int

const (
	MeasureVolume Measure = iota
	MeasureArea
)

func (m Measure) String() string {
	if m == MeasureArea {
		return "area"
	}
	return "volume"
}

// Measure reports whether the mode samples a volume or a surface.
func (m SamplingMode) Measure() Measure {
	switch m {
	case ModeSurface, ModeEndcaps:
		return MeasureArea
	default:
		return MeasureVolume
	}
}

// Supports reports whether shape kind k can be sampled in mode m.
func (k Kind) Supports(m SamplingMode) bool {
	switch k {
	case KindTube, KindDisc:
		return m == ModeVolume || m == ModeSurface || m == ModeInsideCap || m == ModeEndcaps
	case KindBox:
		return m == ModeVolume || m == ModeSurface
	}
	return false
}

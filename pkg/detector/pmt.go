package detector

import (
	"fmt"

	"github.com/chazu/vertexgen/pkg/geometry"
	"github.com/chazu/vertexgen/pkg/region"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Region names declared by PmtR11410.
const (
	RegionPmtBody      = "PMT_BODY"
	RegionPmtWindow    = "PMT_WINDOW"
	RegionPhotocathode = "PHOTOCATHODE"
)

// PmtR11410 is the Hamamatsu R11410 photomultiplier: a wide front body
// followed by a narrow rear body, both thin shells. Lengths are in mm.
// The origin is the centre of the front body and the window faces +z.
type PmtR11410 struct {
	FrontBodyDiam         float64
	FrontBodyLength       float64
	RearBodyDiam          float64
	RearBodyLength        float64
	BodyThickness         float64
	WindowThickness       float64
	PhotocathodeDiam      float64
	PhotocathodeThickness float64
}

// DefaultPmtR11410 returns the catalogue dimensions.
func DefaultPmtR11410() PmtR11410 {
	return PmtR11410{
		FrontBodyDiam:         76,
		FrontBodyLength:       38,
		RearBodyDiam:          53,
		RearBodyLength:        76,
		BodyThickness:         0.5,
		WindowThickness:       2,
		PhotocathodeDiam:      64,
		PhotocathodeThickness: 0.1,
	}
}

// RelPosition is the offset from the PMT origin to the front face.
func (p PmtR11410) RelPosition() r3.Vec {
	return r3.Vec{Z: p.FrontBodyLength / 2}
}

// Bound is the box enclosing the whole body.
func (p PmtR11410) Bound() r3.Box {
	r := p.FrontBodyDiam / 2
	return r3.Box{
		Min: r3.Vec{X: -r, Y: -r, Z: -p.FrontBodyLength/2 - p.RearBodyLength},
		Max: r3.Vec{X: r, Y: r, Z: p.FrontBodyLength / 2},
	}
}

// BodyEntries returns the four pieces of the body shell: the front body,
// the ring joining it to the rear body, the rear body and the rear cap.
// Adjacent pieces touch without interpenetrating.
func (p PmtR11410) BodyEntries() []region.Entry {
	t := p.BodyThickness
	frontRad := p.FrontBodyDiam / 2
	rearRad := p.RearBodyDiam / 2
	frontIrad := frontRad - t
	rearIrad := rearRad - t
	back := -p.FrontBodyLength / 2

	return []region.Entry{
		{
			Descriptor: geometry.Descriptor{
				Name:  "FRONT_BODY",
				Shape: geometry.NewTube(frontIrad, frontRad, p.FrontBodyLength),
			},
			Mode: geometry.ModeVolume,
		},
		{
			Descriptor: geometry.Descriptor{
				Name:  "MEDIUM_BODY",
				Shape: geometry.NewTube(rearRad, frontIrad, t),
			}.At(r3.Vec{Z: back + t/2}),
			Mode: geometry.ModeVolume,
		},
		{
			Descriptor: geometry.Descriptor{
				Name:  "REAR_BODY",
				Shape: geometry.NewTube(rearIrad, rearRad, p.RearBodyLength+t),
			}.At(r3.Vec{Z: back - p.RearBodyLength/2 + t/2}),
			Mode: geometry.ModeVolume,
		},
		{
			Descriptor: geometry.Descriptor{
				Name:  "REAR_CAP",
				Shape: geometry.NewDisc(rearIrad, t),
			}.At(r3.Vec{Z: back - p.RearBodyLength + t/2}),
			Mode: geometry.ModeInsideCap,
		},
	}
}

// window returns the entrance window, which sits inside the front body
// flush with its front face.
func (p PmtR11410) window() geometry.Descriptor {
	gasOffset := p.BodyThickness / 2
	gasLength := p.FrontBodyLength - p.BodyThickness
	z := gasOffset + gasLength/2 - p.WindowThickness/2
	return geometry.Descriptor{
		Name:  "WINDOW",
		Shape: geometry.NewDisc(p.FrontBodyDiam/2-p.BodyThickness, p.WindowThickness),
	}.At(r3.Vec{Z: z})
}

// photocathode returns the photocathode layer directly behind the window.
func (p PmtR11410) photocathode() geometry.Descriptor {
	w := p.window()
	z := w.Placement.Translation.Z - p.WindowThickness/2 - p.PhotocathodeThickness/2
	return geometry.Descriptor{
		Name:  "PHOTOCATHODE",
		Shape: geometry.NewDisc(p.PhotocathodeDiam/2, p.PhotocathodeThickness),
	}.At(r3.Vec{Z: z})
}

// Tables builds PMT_BODY, PMT_WINDOW and PHOTOCATHODE.
func (p PmtR11410) Tables(opts ...region.Option) ([]*region.Table, error) {
	bodyOpts := append([]region.Option{region.WithBound(p.Bound())}, opts...)
	body, err := region.NewTable(RegionPmtBody, p.BodyEntries(), bodyOpts...)
	if err != nil {
		return nil, fmt.Errorf("detector: pmt-r11410: %w", err)
	}
	window, err := region.NewSingle(RegionPmtWindow, p.window(), geometry.ModeVolume, opts...)
	if err != nil {
		return nil, fmt.Errorf("detector: pmt-r11410: %w", err)
	}
	cathode, err := region.NewSingle(RegionPhotocathode, p.photocathode(), geometry.ModeVolume, opts...)
	if err != nil {
		return nil, fmt.Errorf("detector: pmt-r11410: %w", err)
	}

	log.WithFields(log.Fields{
		"part":        "pmt-r11410",
		"body_volume": body.Total(),
	}).Debug("detector part built")
	return []*region.Table{body, window, cathode}, nil
}

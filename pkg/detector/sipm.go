package detector

import (
	"fmt"
	"math"

	"github.com/chazu/vertexgen/pkg/geometry"
	"github.com/chazu/vertexgen/pkg/region"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Region names declared by SiPMBoard.
const (
	RegionWholeBoard = "WHOLE_BOARD"
	RegionBoard      = "BOARD"
	RegionSiPMs      = "SIPMS"
)

// Sensor is the bounding box of one SiPM package: Width along the board,
// Height across it and Thickness normal to it. Lengths are in mm.
type Sensor struct {
	Width     float64
	Height    float64
	Thickness float64
}

// SiPMBoard is an FR4 strip carrying a row of SiPMs on its lower face,
// inside an encasing as thick as board and sensors together. The board
// runs along X, its height along Y and its thickness along Z.
type SiPMBoard struct {
	BoardLength    float64
	BoardHeight    float64
	BoardThickness float64
	NumSensors     int
	Sensor         Sensor
}

// DefaultSiPMBoard returns a 488 × 8 × 1 mm board with 24 sensors.
func DefaultSiPMBoard() SiPMBoard {
	return SiPMBoard{
		BoardLength:    488,
		BoardHeight:    8,
		BoardThickness: 1,
		NumSensors:     24,
		Sensor:         Sensor{Width: 6, Height: 6, Thickness: 1.5},
	}
}

// Array describes the row of sensors along the board.
func (b SiPMBoard) Array() geometry.LinearArray {
	return geometry.LinearArray{
		Count:           b.NumSensors,
		ItemWidth:       b.Sensor.Width,
		ContainerLength: b.BoardLength,
	}
}

// GeometryIsIllFormed reports whether the sensors cannot fit side by side
// along the board. Sensors may stand out across the board, never past its
// ends.
func (b SiPMBoard) GeometryIsIllFormed() bool {
	return b.Array().IllFormed()
}

// OverallHeight is the larger of the board and sensor heights.
func (b SiPMBoard) OverallHeight() float64 {
	return math.Max(b.BoardHeight, b.Sensor.Height)
}

// OverallThickness is the board plus sensor thickness.
func (b SiPMBoard) OverallThickness() float64 {
	return b.BoardThickness + b.Sensor.Thickness
}

// SensorPositions returns the centre of each sensor in the encasing frame.
func (b SiPMBoard) SensorPositions() []r3.Vec {
	z := b.OverallThickness()/2 - b.BoardThickness - b.Sensor.Thickness/2
	offsets := b.Array().Offsets()
	out := make([]r3.Vec, len(offsets))
	for i, x := range offsets {
		out[i] = r3.Vec{X: x, Z: z}
	}
	return out
}

func (b SiPMBoard) encasing() geometry.Descriptor {
	return geometry.Descriptor{
		Name:  "ENCASING",
		Shape: geometry.NewBox(b.BoardLength, b.OverallHeight(), b.OverallThickness()),
	}
}

func (b SiPMBoard) board() geometry.Descriptor {
	return geometry.Descriptor{
		Name:  "FR4",
		Shape: geometry.NewBox(b.BoardLength, b.BoardHeight, b.BoardThickness),
	}.At(r3.Vec{Z: (b.OverallThickness() - b.BoardThickness) / 2})
}

// SensorEntries returns one volume entry per sensor.
func (b SiPMBoard) SensorEntries() []region.Entry {
	item := geometry.Descriptor{
		Name:  "SIPM",
		Shape: geometry.NewBox(b.Sensor.Width, b.Sensor.Height, b.Sensor.Thickness),
	}
	base := r3.Vec{Z: b.OverallThickness()/2 - b.BoardThickness - b.Sensor.Thickness/2}
	descs := b.Array().Place(item, r3.Vec{X: 1}, base)
	entries := make([]region.Entry, len(descs))
	for i, d := range descs {
		entries[i] = region.Entry{Descriptor: d, Mode: geometry.ModeVolume}
	}
	return entries
}

// Tables builds WHOLE_BOARD, BOARD and SIPMS. An infeasible sensor row
// fails with geometry.ErrIllFormedGeometry before anything is built.
func (b SiPMBoard) Tables(opts ...region.Option) ([]*region.Table, error) {
	if err := geometry.Check("sipm-board", b.Array().Validate()); err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}

	bound := geometry.Bounds(b.encasing())
	inside := append([]region.Option{region.WithBound(bound)}, opts...)

	whole, err := region.NewSingle(RegionWholeBoard, b.encasing(), geometry.ModeVolume, opts...)
	if err != nil {
		return nil, fmt.Errorf("detector: sipm-board: %w", err)
	}
	board, err := region.NewSingle(RegionBoard, b.board(), geometry.ModeVolume, inside...)
	if err != nil {
		return nil, fmt.Errorf("detector: sipm-board: %w", err)
	}
	sipms, err := region.NewTable(RegionSiPMs, b.SensorEntries(), inside...)
	if err != nil {
		return nil, fmt.Errorf("detector: sipm-board: %w", err)
	}

	log.WithFields(log.Fields{
		"part":    "sipm-board",
		"sensors": b.NumSensors,
	}).Debug("detector part built")
	return []*region.Table{whole, board, sipms}, nil
}

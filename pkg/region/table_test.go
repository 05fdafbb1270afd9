package region

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/chazu/vertexgen/pkg/geometry"
	"github.com/chazu/vertexgen/pkg/kernel"
	"github.com/chazu/vertexgen/pkg/kernel/sdfx"
	"github.com/chazu/vertexgen/pkg/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func tubeEntry(name string, rmin, rmax, length float64, at r3.Vec) Entry {
	return Entry{
		Descriptor: geometry.Descriptor{
			Name:      name,
			Shape:     geometry.NewTube(rmin, rmax, length),
			Placement: geometry.Placement{Translation: at},
		},
		Mode: geometry.ModeVolume,
	}
}

func boxEntry(name string, x, y, z float64, at r3.Vec) Entry {
	return Entry{
		Descriptor: geometry.Descriptor{
			Name:      name,
			Shape:     geometry.NewBox(x, y, z),
			Placement: geometry.Placement{Translation: at},
		},
		Mode: geometry.ModeVolume,
	}
}

// ksStatistic returns the one-sample Kolmogorov-Smirnov distance between
// xs and the uniform distribution on [min, max].
func ksStatistic(xs []float64, min, max float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	u := distuv.Uniform{Min: min, Max: max}
	n := float64(len(sorted))
	d := 0.0
	for i, x := range sorted {
		c := u.CDF(x)
		d = math.Max(d, math.Max(float64(i+1)/n-c, c-float64(i)/n))
	}
	return d
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewTableBreakpoints(t *testing.T) {
	tbl, err := NewTable("pair", []Entry{
		boxEntry("a", 1, 1, 1, r3.Vec{}),
		boxEntry("b", 3, 1, 1, r3.Vec{X: 5}),
	})
	require.NoError(t, err)

	bps := tbl.Breakpoints()
	require.Len(t, bps, 2)
	assert.InDelta(t, 0.25, bps[0], 1e-12)
	assert.Equal(t, 1.0, bps[1])
	assert.InDelta(t, 4.0, tbl.Total(), 1e-12)
	assert.Equal(t, geometry.MeasureVolume, tbl.Measure())
}

func TestNewTableIdempotent(t *testing.T) {
	entries := []Entry{
		tubeEntry("inner", 0, 10, 20, r3.Vec{}),
		tubeEntry("outer", 10, 12, 20, r3.Vec{}),
	}
	a, err := NewTable("shells", entries)
	require.NoError(t, err)
	b, err := NewTable("shells", entries)
	require.NoError(t, err)
	assert.Equal(t, a.Breakpoints(), b.Breakpoints())

	bad := append(entries, boxEntry("clash", 4, 4, 4, r3.Vec{X: 11}))
	_, errA := NewTable("shells", bad)
	_, errB := NewTable("shells", bad)
	require.Error(t, errA)
	require.Error(t, errB)
	assert.Equal(t, errA.Error(), errB.Error())
}

func TestNewTableIllFormed(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		opts    []Option
	}{
		{"empty", nil, nil},
		{"zero volume", []Entry{tubeEntry("flat", 5, 5, 10, r3.Vec{})}, nil},
		{"negative radius", []Entry{tubeEntry("neg", -1, 5, 10, r3.Vec{})}, nil},
		{"overlapping boxes", []Entry{
			boxEntry("a", 2, 2, 2, r3.Vec{}),
			boxEntry("b", 2, 2, 2, r3.Vec{X: 1}),
		}, nil},
		{"out of bound", []Entry{boxEntry("a", 2, 2, 2, r3.Vec{X: 5})},
			[]Option{WithBound(r3.Box{Min: r3.Vec{X: -3, Y: -3, Z: -3}, Max: r3.Vec{X: 3, Y: 3, Z: 3}})}},
		{"mixed measure", []Entry{
			boxEntry("a", 1, 1, 1, r3.Vec{}),
			{Descriptor: boxEntry("b", 1, 1, 1, r3.Vec{X: 3}).Descriptor, Mode: geometry.ModeSurface},
		}, nil},
		{"unsupported mode", []Entry{
			{Descriptor: boxEntry("a", 1, 1, 1, r3.Vec{}).Descriptor, Mode: geometry.ModeEndcaps},
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := NewTable("part", tt.entries, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.True(t, errors.Is(err, geometry.ErrIllFormedGeometry), "got %v", err)

			var gerr *geometry.GeometryError
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, "part", gerr.Part)
			assert.NotEmpty(t, gerr.Findings)
		})
	}
}

func TestNewTableTouchingIsWellFormed(t *testing.T) {
	_, err := NewTable("stack", []Entry{
		boxEntry("a", 2, 2, 2, r3.Vec{}),
		boxEntry("b", 2, 2, 2, r3.Vec{X: 2}),
	})
	require.NoError(t, err)

	_, err = NewTable("shells", []Entry{
		tubeEntry("inner", 5, 10, 20, r3.Vec{}),
		tubeEntry("outer", 10, 12, 20, r3.Vec{}),
		tubeEntry("cap", 0, 12, 1, r3.Vec{Z: 10.5}),
	})
	require.NoError(t, err)
}

func TestNewTableThinShellOverlap(t *testing.T) {
	tests := []struct {
		name    string
		rmin    float64
		wantErr bool
	}{
		{"100 µm", 10.9, true},
		{"10 µm", 10.99, true},
		{"1 µm", 10.999, true},
		{"touching", 11, false},
		{"gap", 11.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("shells", []Entry{
				tubeEntry("a", 10, 11, 20, r3.Vec{}),
				tubeEntry("b", tt.rmin, 12, 20, r3.Vec{}),
			})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, geometry.ErrIllFormedGeometry)
			var gerr *geometry.GeometryError
			require.True(t, errors.As(err, &gerr))
			require.Len(t, gerr.Findings, 1)
			assert.Equal(t, "a", gerr.Findings[0].Entry)
			assert.Equal(t, "overlaps entry b", gerr.Findings[0].Message)
		})
	}
}

func TestNewTableThinAxialOverlap(t *testing.T) {
	_, err := NewTable("stack", []Entry{
		tubeEntry("lower", 0, 5, 10, r3.Vec{}),
		tubeEntry("upper", 0, 5, 10, r3.Vec{Z: 10 - 1e-3}),
	})
	require.ErrorIs(t, err, geometry.ErrIllFormedGeometry)

	_, err = NewTable("stack", []Entry{
		boxEntry("lower", 4, 4, 4, r3.Vec{}),
		boxEntry("upper", 4, 4, 4, r3.Vec{Z: 4 - 1e-3}),
	})
	require.ErrorIs(t, err, geometry.ErrIllFormedGeometry)
}

func TestNewTableOppositeHalfShells(t *testing.T) {
	half := func(name string, start float64) Entry {
		e := tubeEntry(name, 10, 11, 20, r3.Vec{})
		tube := e.Descriptor.Shape.(geometry.Tube)
		tube.PhiStart, tube.PhiSpan = start, math.Pi
		e.Descriptor.Shape = tube
		return e
	}
	_, err := NewTable("split", []Entry{half("east", -math.Pi/2), half("west", math.Pi/2)})
	require.NoError(t, err)

	_, err = NewTable("split", []Entry{half("east", -math.Pi/2), half("north", 0)})
	require.ErrorIs(t, err, geometry.ErrIllFormedGeometry)
}

func TestNewTableOverlapCheckCanBeSkipped(t *testing.T) {
	entries := []Entry{
		boxEntry("a", 2, 2, 2, r3.Vec{}),
		boxEntry("b", 2, 2, 2, r3.Vec{X: 1}),
	}
	_, err := NewTable("loose", entries, WithoutOverlapCheck())
	require.NoError(t, err)
}

func TestNewTableInsideCapFillsHole(t *testing.T) {
	capEntry := Entry{
		Descriptor: geometry.Descriptor{Name: "cap", Shape: geometry.NewTube(8, 10, 1)},
		Mode:       geometry.ModeInsideCap,
	}
	pin := boxEntry("pin", 2, 2, 1, r3.Vec{})
	_, err := NewTable("capped", []Entry{capEntry, pin})
	require.Error(t, err)
	assert.ErrorIs(t, err, geometry.ErrIllFormedGeometry)
}

func TestNewTableAreaMeasure(t *testing.T) {
	tbl, err := NewTable("skin", []Entry{
		{Descriptor: geometry.Descriptor{Name: "wall", Shape: geometry.NewTube(4, 5, 10)}, Mode: geometry.ModeSurface},
		{Descriptor: geometry.Descriptor{Name: "ends", Shape: geometry.NewTube(4, 5, 10)}, Mode: geometry.ModeEndcaps},
	})
	require.NoError(t, err)
	assert.Equal(t, geometry.MeasureArea, tbl.Measure())

	wall := 2 * math.Pi * 5 * 10
	ends := 2 * math.Pi * (25 - 16)
	assert.InDelta(t, wall/(wall+ends), tbl.Breakpoints()[0], 1e-12)
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

func TestSelectBoundaries(t *testing.T) {
	tbl, err := NewTable("halves", []Entry{
		boxEntry("a", 1, 1, 1, r3.Vec{}),
		boxEntry("b", 1, 1, 1, r3.Vec{X: 2}),
	})
	require.NoError(t, err)

	tests := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{0.25, 0},
		{math.Nextafter(0.5, 0), 0},
		{0.5, 1},
		{0.999999, 1},
		{1, 1},
		{1.5, 1},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tbl.Select(tt.u), "u=%v", tt.u)
	}
}

func TestSampleUsesSelectionDraw(t *testing.T) {
	tbl, err := NewTable("halves", []Entry{
		boxEntry("a", 1, 1, 1, r3.Vec{}),
		boxEntry("b", 1, 1, 1, r3.Vec{X: 2}),
	})
	require.NoError(t, err)

	i, p := tbl.SampleEntry(sampler.NewFixed(0.5, 0.5, 0.5, 0.5))
	assert.Equal(t, 1, i)
	assert.InDelta(t, 2.0, p.X, 1e-12)

	i, p = tbl.SampleEntry(sampler.NewFixed(0.49, 0.5, 0.5, 0.5))
	assert.Equal(t, 0, i)
	assert.InDelta(t, 0.0, p.X, 1e-12)
}

// ---------------------------------------------------------------------------
// Statistics
// ---------------------------------------------------------------------------

func TestSingleTubeRadialAndAxialUniformity(t *testing.T) {
	const n = 100000
	tbl, err := NewSingle("tube", geometry.Descriptor{Shape: geometry.NewTube(10, 20, 50)}, geometry.ModeVolume)
	require.NoError(t, err)

	src := sampler.NewStream(42, 0)
	r2 := make([]float64, n)
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		p := tbl.Sample(src)
		r2[i] = p.X*p.X + p.Y*p.Y
		z[i] = p.Z
		require.GreaterOrEqual(t, r2[i], 100-1e-9)
		require.LessOrEqual(t, r2[i], 400+1e-9)
		require.LessOrEqual(t, math.Abs(z[i]), 25+1e-9)
	}

	crit := 1.95 / math.Sqrt(n)
	assert.Less(t, ksStatistic(r2, 100, 400), crit, "r² not uniform")
	assert.Less(t, ksStatistic(z, -25, 25), crit, "z not uniform")
}

func TestTwoShellFrequencies(t *testing.T) {
	const n = 100000
	tbl, err := NewTable("shells", []Entry{
		tubeEntry("inner", 0, 1, 10, r3.Vec{}),
		tubeEntry("outer", 1, 2, 10, r3.Vec{}),
	})
	require.NoError(t, err)

	src := sampler.NewStream(7, 0)
	counts := make([]int, 2)
	for i := 0; i < n; i++ {
		e, p := tbl.SampleEntry(src)
		counts[e]++
		r := math.Hypot(p.X, p.Y)
		if e == 0 {
			require.LessOrEqual(t, r, 1+1e-9)
		} else {
			require.GreaterOrEqual(t, r, 1-1e-9)
		}
	}
	assert.InDelta(t, 0.25, float64(counts[0])/n, 0.01)
	assert.InDelta(t, 0.75, float64(counts[1])/n, 0.01)
}

func TestHundredToOneComposite(t *testing.T) {
	const n = 1000000
	// Shell volume 2100π, disc volume 21π.
	tbl, err := NewTable("lopsided", []Entry{
		tubeEntry("shell", 10, 11, 100, r3.Vec{}),
		{
			Descriptor: geometry.Descriptor{Name: "disc", Shape: geometry.NewDisc(1, 21)}.At(r3.Vec{Z: 100}),
			Mode:       geometry.ModeVolume,
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 100.0/101, tbl.Breakpoints()[0], 1e-12)

	const eps = 1e-9
	src := sampler.NewStream(2024, 3)
	counts := make([]int, 2)
	for i := 0; i < n; i++ {
		e, p := tbl.SampleEntry(src)
		counts[e]++
		r := math.Hypot(p.X, p.Y)
		if e == 0 {
			require.True(t, r >= 10-eps && r <= 11+eps && math.Abs(p.Z) <= 50+eps,
				"shell sample %v outside the shell", p)
		} else {
			require.True(t, r <= 1+eps && math.Abs(p.Z-100) <= 10.5+eps,
				"disc sample %v outside the disc", p)
		}
	}
	// σ of the disc fraction is about 1e-4 at this n.
	assert.InDelta(t, 1.0/101, float64(counts[1])/n, 5e-4)
	assert.InDelta(t, 100.0/101, float64(counts[0])/n, 5e-4)
}

func TestSamplesLieInsideEntrySolids(t *testing.T) {
	rot := r3.Vec{X: 90}
	tbl, err := NewTable("mixed", []Entry{
		tubeEntry("shell", 3, 4, 6, r3.Vec{}),
		{
			Descriptor: geometry.Descriptor{
				Name:      "arm",
				Shape:     geometry.NewBox(2, 2, 8),
				Placement: geometry.Placement{Translation: r3.Vec{X: 10}, Rotation: &rot},
			},
			Mode: geometry.ModeVolume,
		},
	})
	require.NoError(t, err)

	k := sdfx.New()
	solids, err := tbl.Solids(k)
	require.NoError(t, err)

	src := sampler.NewStream(1, 0)
	for i := 0; i < 2000; i++ {
		e, p := tbl.SampleEntry(src)
		require.True(t, kernel.Contains(solids[e], p, 1e-6), "sample %v outside entry %d", p, e)
	}
}

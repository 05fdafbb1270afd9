package region

import (
	"github.com/chazu/vertexgen/pkg/kernel"
	"github.com/chazu/vertexgen/pkg/kernel/sdfx"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultProbeResolution is the per-axis lattice size of the overlap probe.
const DefaultProbeResolution = 12

type options struct {
	bound      *r3.Box
	overlap    bool
	kernel     kernel.Kernel
	resolution int
}

func defaultOptions() options {
	return options{
		overlap:    true,
		kernel:     sdfx.New(),
		resolution: DefaultProbeResolution,
	}
}

// Option configures table construction.
type Option func(*options)

// WithBound declares the composite's outer bound. Every entry's placed
// bounding box must lie inside it.
func WithBound(b r3.Box) Option {
	return func(o *options) {
		o.bound = &b
	}
}

// WithKernel sets the solid kernel used for the overlap check.
func WithKernel(k kernel.Kernel) Option {
	return func(o *options) {
		o.kernel = k
	}
}

// WithProbeResolution sets the per-axis lattice size of the overlap probe.
func WithProbeResolution(n int) Option {
	return func(o *options) {
		o.resolution = n
	}
}

// WithoutOverlapCheck skips the interpenetration probe.
func WithoutOverlapCheck() Option {
	return func(o *options) {
		o.overlap = false
	}
}

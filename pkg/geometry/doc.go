// Package geometry defines the primitive shape descriptors that detector
// parts are composed of, their placements, sampling modes and the
// closed-form measures used to weight them. Descriptors are plain values
// and are never mutated after construction.
package geometry

// Package dataset defines the common interface through which raw
// diffraction-experiment directories are exposed to analysis code,
// independent of which instrument generation produced them.
package dataset

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by RawDataset implementations. A missing image
// file is a distinct condition from a request outside the recorded grid of
// time-delays and scans.
var (
	// ErrFrameNotFound reports that the file expected to hold a frame does
	// not exist or is not readable as an image.
	ErrFrameNotFound = errors.New("frame not found")

	// ErrOutOfBounds reports a time-delay or scan number outside the
	// dataset's recorded acquisition grid.
	ErrOutOfBounds = errors.New("out of bounds")
)

// RawDataset is a single raw experiment directory. Implementations parse
// the generation-specific metadata format at open time and resolve frame
// files on demand.
type RawDataset interface {
	// DisplayName is a human-readable name for the instrument generation.
	DisplayName() string

	// Metadata returns the experimental parameters parsed from the
	// dataset's metadata file.
	Metadata() Metadata

	// RawData returns the detector frame acquired at the given time-delay
	// and scan number as a 2-D float64 matrix. Background subtraction is
	// applied according to the generation's convention unless disabled
	// with NoBackground.
	RawData(timedelay float64, scan int, opts ...RawOption) (*mat.Dense, error)
}

// RawOptions carries per-call settings for RawData.
type RawOptions struct {
	// SkipBackground disables background/dark subtraction for generations
	// that would otherwise apply it.
	SkipBackground bool
}

// RawOption configures a single RawData call.
type RawOption func(*RawOptions)

// NoBackground disables background subtraction for one RawData call.
func NoBackground() RawOption {
	return func(o *RawOptions) { o.SkipBackground = true }
}

// ApplyOptions folds a list of options into a RawOptions value. Intended
// for use by implementations.
func ApplyOptions(opts []RawOption) RawOptions {
	var o RawOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

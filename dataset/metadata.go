package dataset

import (
	"math"
	"slices"
)

// Missing is the sentinel recorded for metadata values that were present in
// the source file but not interpretable as numbers (e.g. "BLANK" entries in
// alpha-generation tag files).
var Missing = math.NaN()

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Metadata holds the experimental parameters shared by every instrument
// generation. Scalar fields that the source file leaves blank are zero for
// defaults-based generations, or Missing where the file explicitly recorded
// a non-numeric placeholder.
type Metadata struct {
	// Energy is the electron energy in keV.
	Energy float64

	// AcquisitionDate is the date string recorded by the instrument, in
	// whatever format that generation used. Empty when unknown.
	AcquisitionDate string

	// Fluence is the pump fluence in mJ/cm².
	Fluence float64

	// Temperature is the sample temperature in kelvin.
	Temperature float64

	// Exposure is the per-frame exposure time in seconds.
	Exposure float64

	// Current is the electron-gun current. Only the alpha generation
	// records it.
	Current float64

	// PumpWavelength is the pump laser wavelength in nanometers.
	PumpWavelength float64

	// Notes is the free-form operator comment from the metadata file.
	Notes string

	// Resolution is the detector size in pixels, rows by columns.
	Resolution [2]int

	// Scans lists the recorded scan numbers, sorted ascending with no
	// duplicates. Later generations record a contiguous 1..N range.
	Scans []int

	// TimePoints lists the recorded pump-probe time-delays in picoseconds,
	// sorted ascending with no duplicates.
	TimePoints []float64
}

// HasScan reports whether n is one of the recorded scan numbers.
func (m Metadata) HasScan(n int) bool {
	return slices.Contains(m.Scans, n)
}

// HasTimePoint reports whether td is one of the recorded time-delays.
func (m Metadata) HasTimePoint(td float64) bool {
	return slices.Contains(m.TimePoints, td)
}

// ScanRange returns scan numbers 1..n, the contiguous layout used by the
// beta and later generations.
func ScanRange(n int) []int {
	scans := make([]int, n)
	for i := range scans {
		scans[i] = i + 1
	}
	return scans
}

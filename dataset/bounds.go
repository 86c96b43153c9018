package dataset

import "fmt"

// CheckBounds validates a (timedelay, scan) request against the dataset's
// recorded grid. Implementations call it at the top of RawData so that an
// out-of-grid request fails before any filesystem access, and fails with a
// condition distinct from a missing file.
func CheckBounds(m Metadata, timedelay float64, scan int) error {
	if !m.HasTimePoint(timedelay) {
		return fmt.Errorf("%w: time-delay %v is not in the time-points of this dataset", ErrOutOfBounds, timedelay)
	}
	if !m.HasScan(scan) {
		return fmt.Errorf("%w: scan %d is not in the scans of this dataset", ErrOutOfBounds, scan)
	}
	return nil
}

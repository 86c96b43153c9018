// Package units formats and parses the physical-quantity tokens embedded in
// raw frame filenames: pump-probe time-delays in picoseconds and epoch
// timestamps in seconds. Each instrument generation uses a fixed token
// format, so filename construction goes through here rather than ad-hoc
// format strings in each adapter.
package units

import (
	"fmt"
	"strconv"
)

// DelaySigned returns the time-delay token used by the alpha generation:
// two decimals with an explicit sign, no padding ("+1.00", "-5.50").
func DelaySigned(td float64) string {
	return fmt.Sprintf("%+.2f", td)
}

// DelayPadded returns the time-delay token used by the beta and later
// generations: signed, three decimals, zero-padded to ten characters
// ("+00001.500", "-00003.500").
func DelayPadded(td float64) string {
	return fmt.Sprintf("%+010.3f", td)
}

// Epoch returns the epoch-seconds token used by pump-off diagnostic
// filenames: no decimals, zero-padded to ten characters ("0001586024").
func Epoch(ts float64) string {
	return fmt.Sprintf("%010.0f", ts)
}

// ParseDelay parses a signed decimal time-delay token back into a float.
func ParseDelay(token string) (float64, error) {
	td, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("bad time-delay token %q: %w", token, err)
	}
	return td, nil
}

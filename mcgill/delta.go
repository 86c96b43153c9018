package mcgill

import (
	"fmt"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mcgill-femto/rawdata/dataset"
	"github.com/mcgill-femto/rawdata/internal/diffimg"
	"github.com/mcgill-femto/rawdata/internal/fsutil"
	"github.com/mcgill-femto/rawdata/internal/units"
)

// Delta is a raw dataset from the current diffractometer generation. It
// shares the gamma directory layout and adds a per-frame electron-count
// lookup backed by the ecounts table.
type Delta struct {
	Gamma
}

// OpenDelta opens a delta-generation dataset rooted at source.
func OpenDelta(source string) (*Delta, error) {
	g, err := openGamma(source, "McGill Raw Dataset v. Delta")
	if err != nil {
		return nil, err
	}
	return &Delta{Gamma: *g}, nil
}

// ElectronCount returns the electron count for the frame acquired at the
// given time-delay and scan. The frame file must exist, and the request is
// bounds-checked like RawData.
func (d *Delta) ElectronCount(timedelay float64, scan int) (float64, error) {
	if err := dataset.CheckBounds(d.meta, timedelay, scan); err != nil {
		return 0, err
	}

	rel := d.FramePath(timedelay, scan)
	if !fsutil.Exists(filepath.Join(d.source, filepath.FromSlash(rel))) {
		return 0, fmt.Errorf("%w: expected the frame for %vps and scan %d to exist, but could not find it",
			dataset.ErrFrameNotFound, timedelay, scan)
	}
	count, ok := d.ecounts.Get(rel)
	if !ok {
		return 0, fmt.Errorf("no electron count recorded for %s", rel)
	}
	return count, nil
}

// DeltaPumpoff is the diagnostic variant of a delta dataset that reduces
// only the pump-off frames. It has a single scan, and its time-points are
// the acquisition timestamps of the pump-off frames themselves.
type DeltaPumpoff struct {
	Delta
}

// OpenDeltaPumpoff opens the pump-off diagnostic view of a delta dataset.
func OpenDeltaPumpoff(source string) (*DeltaPumpoff, error) {
	d, err := OpenDelta(source)
	if err != nil {
		return nil, err
	}
	d.name = "McGill Raw Dataset v. Delta [Diagnostic pump-off]"
	d.meta.Scans = []int{1}
	d.meta.TimePoints = pumpOffTimePoints(d.timestamps.Values(pumpOffDir))
	return &DeltaPumpoff{Delta: *d}, nil
}

// pumpOffTimePoints sorts and de-duplicates the pump-off timestamps.
func pumpOffTimePoints(values []float64) []float64 {
	sort.Float64s(values)
	points := values[:0]
	var last float64
	for i, v := range values {
		if i > 0 && v == last {
			continue
		}
		points = append(points, v)
		last = v
	}
	return points
}

// FramePath returns the source-relative path of the pump-off frame for the
// given timestamp, e.g. "pump_off/pump_off_epoch_1586024631s.tif". The
// scan argument is accepted for interface symmetry but does not enter the
// path.
func (p *DeltaPumpoff) FramePath(timestamp float64, _ int) string {
	return fmt.Sprintf("%s/pump_off_epoch_%ss.tif", pumpOffDir, units.Epoch(timestamp))
}

// RawData implements dataset.RawDataset. For this diagnostic view the
// time-delay argument is the pump-off acquisition timestamp, and the
// background removed is the dark frame acquired nearest in time.
func (p *DeltaPumpoff) RawData(timestamp float64, scan int, opts ...dataset.RawOption) (*mat.Dense, error) {
	if err := dataset.CheckBounds(p.meta, timestamp, scan); err != nil {
		return nil, err
	}
	o := dataset.ApplyOptions(opts)

	rel := p.FramePath(timestamp, scan)
	full := filepath.Join(p.source, filepath.FromSlash(rel))
	if !fsutil.Exists(full) {
		return nil, fmt.Errorf("%w: expected the pump-off frame for timestamp %v to exist, but could not find it",
			dataset.ErrFrameNotFound, timestamp)
	}
	frame, err := diffimg.Read(full)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", dataset.ErrFrameNotFound, rel, err)
	}
	if o.SkipBackground {
		return frame, nil
	}

	ts, ok := p.timestamps.Get(rel)
	if !ok {
		return nil, fmt.Errorf("no acquisition timestamp recorded for %s", rel)
	}
	dark, err := p.NearestDark(ts)
	if err != nil {
		return nil, err
	}
	return diffimg.Subtract(frame, dark, false)
}

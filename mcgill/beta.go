package mcgill

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/mcgill-femto/rawdata/dataset"
	"github.com/mcgill-femto/rawdata/internal/diffimg"
	"github.com/mcgill-femto/rawdata/internal/fsutil"
	"github.com/mcgill-femto/rawdata/internal/metafile"
	"github.com/mcgill-femto/rawdata/internal/units"
)

// Beta is a raw dataset from the diffractometer generation in use from
// 2017 to late 2019. Metadata lives in metadata.cfg, and frames sit in
// per-scan directories named "scan 0132". Every frame filename carries an
// acquisition timestamp, so frames are resolved by glob rather than by
// direct construction.
type Beta struct {
	source string
	meta   dataset.Metadata
}

// OpenBeta opens a beta-generation dataset rooted at source.
func OpenBeta(source string) (*Beta, error) {
	if err := fsutil.ValidateSourceDir(source); err != nil {
		return nil, err
	}
	meta, err := metafile.ParseConfig(filepath.Join(source, "metadata.cfg"))
	if err != nil {
		return nil, err
	}
	return &Beta{source: source, meta: meta}, nil
}

// DisplayName implements dataset.RawDataset.
func (b *Beta) DisplayName() string { return "McGill Raw Dataset v. Beta" }

// Metadata implements dataset.RawDataset.
func (b *Beta) Metadata() dataset.Metadata { return b.meta }

// FramePattern returns the glob pattern, relative to the source directory,
// matching the frame for the given time-delay and scan.
func (b *Beta) FramePattern(timedelay float64, scan int) string {
	return filepath.Join(
		fmt.Sprintf("scan %04d", scan),
		fmt.Sprintf("pumpon_%sps_*.tif", units.DelayPadded(timedelay)),
	)
}

// RawData implements dataset.RawDataset. This generation records no
// background frames, so options are accepted but have no effect.
func (b *Beta) RawData(timedelay float64, scan int, opts ...dataset.RawOption) (*mat.Dense, error) {
	if err := dataset.CheckBounds(b.meta, timedelay, scan); err != nil {
		return nil, err
	}

	pattern := filepath.Join(b.source, b.FramePattern(timedelay, scan))
	match, ok, err := fsutil.FirstMatch(pattern)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: expected the frame for %vps and scan %d to exist, but could not find it",
			dataset.ErrFrameNotFound, timedelay, scan)
	}

	frame, err := diffimg.Read(match)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", dataset.ErrFrameNotFound, match, err)
	}
	return frame, nil
}

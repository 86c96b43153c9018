package mcgill

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/mcgill-femto/rawdata/dataset"
	"github.com/mcgill-femto/rawdata/internal/diffimg"
	"github.com/mcgill-femto/rawdata/internal/fsutil"
	"github.com/mcgill-femto/rawdata/internal/kvtable"
	"github.com/mcgill-femto/rawdata/internal/metafile"
	"github.com/mcgill-femto/rawdata/internal/units"
)

// Subdirectories holding reference frames in gamma- and delta-generation
// datasets.
const (
	laserBackgroundDir = "laser_background"
	pumpOffDir         = "pump_off"
	darkImageDir       = "dark_image"
)

// Gamma is a raw dataset from the diffractometer generation in use
// starting late 2019. Metadata lives in metadata.cfg; frames sit on a
// fixed filename grid under per-scan directories named "scan_0132"; and
// four auxiliary CSV tables map every frame to its acquisition timestamp,
// electron count and room conditions.
type Gamma struct {
	name   string
	source string
	meta   dataset.Metadata

	timestamps   *kvtable.Table
	ecounts      *kvtable.Table
	roomTemp     *kvtable.Table
	roomHumidity *kvtable.Table
}

// OpenGamma opens a gamma-generation dataset rooted at source.
func OpenGamma(source string) (*Gamma, error) {
	return openGamma(source, "McGill Raw Dataset v. Gamma")
}

func openGamma(source, name string) (*Gamma, error) {
	if err := fsutil.ValidateSourceDir(source); err != nil {
		return nil, err
	}
	meta, err := metafile.ParseConfig(filepath.Join(source, "metadata.cfg"))
	if err != nil {
		return nil, err
	}

	g := &Gamma{name: name, source: source, meta: meta}
	for _, table := range []struct {
		file string
		dst  **kvtable.Table
	}{
		{"timestamps.csv", &g.timestamps},
		{"ecounts.csv", &g.ecounts},
		{"room_temp.csv", &g.roomTemp},
		{"room_humidity.csv", &g.roomHumidity},
	} {
		*table.dst, err = kvtable.Load(filepath.Join(source, table.file))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", table.file, err)
		}
	}
	return g, nil
}

// DisplayName implements dataset.RawDataset.
func (g *Gamma) DisplayName() string { return g.name }

// Metadata implements dataset.RawDataset.
func (g *Gamma) Metadata() dataset.Metadata { return g.meta }

// Timestamps returns the acquisition timestamp (epoch seconds) of every
// recorded frame, keyed by source-relative path.
func (g *Gamma) Timestamps() map[string]float64 { return g.timestamps.All() }

// ElectronCounts returns the per-frame electron counts, keyed by
// source-relative path.
func (g *Gamma) ElectronCounts() map[string]float64 { return g.ecounts.All() }

// RoomTemperature returns the per-frame room temperature readings, keyed
// by source-relative path.
func (g *Gamma) RoomTemperature() map[string]float64 { return g.roomTemp.All() }

// RoomHumidity returns the per-frame room humidity readings, keyed by
// source-relative path.
func (g *Gamma) RoomHumidity() map[string]float64 { return g.roomHumidity.All() }

// FramePath returns the source-relative (slash-separated) path of the
// frame for the given time-delay and scan, e.g.
// "scan_0132/pumpon_+00001.500ps.tif".
func (g *Gamma) FramePath(timedelay float64, scan int) string {
	return fmt.Sprintf("scan_%04d/pumpon_%sps.tif", scan, units.DelayPadded(timedelay))
}

// NearestLaserBackground returns the laser background frame whose
// acquisition timestamp is nearest to the given one.
func (g *Gamma) NearestLaserBackground(timestamp float64) (*mat.Dense, error) {
	return g.nearestReference(laserBackgroundDir, timestamp)
}

// NearestPumpOff returns the pump-off frame whose acquisition timestamp is
// nearest to the given one.
func (g *Gamma) NearestPumpOff(timestamp float64) (*mat.Dense, error) {
	return g.nearestReference(pumpOffDir, timestamp)
}

// NearestDark returns the dark frame whose acquisition timestamp is
// nearest to the given one.
func (g *Gamma) NearestDark(timestamp float64) (*mat.Dense, error) {
	return g.nearestReference(darkImageDir, timestamp)
}

func (g *Gamma) nearestReference(dir string, timestamp float64) (*mat.Dense, error) {
	rel, _, ok := g.timestamps.Nearest(dir, timestamp)
	if !ok {
		return nil, fmt.Errorf("no %s frames recorded in the timestamp table", dir)
	}
	frame, err := diffimg.Read(filepath.Join(g.source, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading %s frame %s: %w", dir, rel, err)
	}
	return frame, nil
}

// RawData implements dataset.RawDataset. The laser background acquired
// nearest in time to the frame is removed unless disabled.
func (g *Gamma) RawData(timedelay float64, scan int, opts ...dataset.RawOption) (*mat.Dense, error) {
	if err := dataset.CheckBounds(g.meta, timedelay, scan); err != nil {
		return nil, err
	}
	o := dataset.ApplyOptions(opts)

	rel := g.FramePath(timedelay, scan)
	full := filepath.Join(g.source, filepath.FromSlash(rel))
	if !fsutil.Exists(full) {
		return nil, fmt.Errorf("%w: expected the frame for %vps and scan %d to exist, but could not find it",
			dataset.ErrFrameNotFound, timedelay, scan)
	}
	frame, err := diffimg.Read(full)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", dataset.ErrFrameNotFound, rel, err)
	}
	if o.SkipBackground {
		return frame, nil
	}

	timestamp, ok := g.timestamps.Get(rel)
	if !ok {
		return nil, fmt.Errorf("no acquisition timestamp recorded for %s", rel)
	}
	bg, err := g.NearestLaserBackground(timestamp)
	if err != nil {
		return nil, err
	}
	return diffimg.Subtract(frame, bg, false)
}

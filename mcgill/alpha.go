package mcgill

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/mcgill-femto/rawdata/dataset"
	"github.com/mcgill-femto/rawdata/internal/diffimg"
	"github.com/mcgill-femto/rawdata/internal/fsutil"
	"github.com/mcgill-femto/rawdata/internal/metafile"
	"github.com/mcgill-femto/rawdata/internal/units"
)

var (
	// Dotted acquisition dates embedded in directory names, e.g.
	// "2012.11.09.19.05.VO2".
	alphaDateRe = regexp.MustCompile(`(\d+\.)+`)

	// Scan-number token in frame filenames, e.g. "nscan.04".
	alphaScanRe = regexp.MustCompile(`nscan\.(\d+)`)

	// Signed time-delay token in frame filenames, e.g. "+1.00".
	alphaDelayRe = regexp.MustCompile(`[+-]\d+\.\d+`)
)

// Alpha is a raw dataset from the diffractometer generation in use from
// roughly 2008 to 2017. Metadata lives in a tag file, and every frame sits
// directly in the source directory.
type Alpha struct {
	source string
	meta   dataset.Metadata

	bgOnce sync.Once
	bg     *mat.Dense
	bgErr  error
}

// OpenAlpha opens an alpha-generation dataset rooted at source. The scan
// numbers and time-points are discovered by scanning the frame filenames,
// since the tag file does not record them.
func OpenAlpha(source string) (*Alpha, error) {
	if err := fsutil.ValidateSourceDir(source); err != nil {
		return nil, err
	}

	tags, err := metafile.ParseTagFile(filepath.Join(source, "tagfile.txt"))
	if err != nil {
		return nil, err
	}

	meta := dataset.Metadata{
		Fluence:    tagOr(tags, "fluence", 0),
		Current:    tagOr(tags, "current", 0),
		Exposure:   tagOr(tags, "exposure", 0),
		Energy:     tagOr(tags, "energy", 90),
		Resolution: [2]int{2048, 2048},
	}

	// The acquisition date is only recorded in the directory name. When
	// the name doesn't match the dotted time pattern, it stays empty.
	if date := alphaDateRe.FindString(source); date != "" {
		meta.AcquisitionDate = strings.TrimSuffix(date, ".")
	}

	images, err := fsutil.ListFilesWithExt(source, ".tif", ".tiff")
	if err != nil {
		return nil, err
	}
	meta.Scans = alphaScans(images)
	meta.TimePoints = alphaTimePoints(images)

	return &Alpha{source: source, meta: meta}, nil
}

// tagOr returns the tag value for key, or def when the key is absent or
// was recorded as a non-numeric placeholder.
func tagOr(tags map[string]float64, key string, def float64) float64 {
	v, ok := tags[key]
	if !ok || dataset.IsMissing(v) {
		return def
	}
	return v
}

// alphaScans extracts the distinct scan numbers from frame filenames.
func alphaScans(images []string) []int {
	seen := make(map[int]bool)
	var scans []int
	for _, name := range images {
		if !strings.Contains(name, "nscan") {
			continue
		}
		m := alphaScanRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		scans = append(scans, n)
	}
	sort.Ints(scans)
	return scans
}

// alphaTimePoints extracts the distinct signed time-delays from frame
// filenames, sorted ascending.
func alphaTimePoints(images []string) []float64 {
	seen := make(map[float64]bool)
	var points []float64
	for _, name := range images {
		if !strings.Contains(name, "timedelay") {
			continue
		}
		token := alphaDelayRe.FindString(name)
		if token == "" {
			continue
		}
		td, err := units.ParseDelay(token)
		if err != nil || seen[td] {
			continue
		}
		seen[td] = true
		points = append(points, td)
	}
	sort.Float64s(points)
	return points
}

// DisplayName implements dataset.RawDataset.
func (a *Alpha) DisplayName() string { return "McGill Raw Dataset v. Alpha" }

// Metadata implements dataset.RawDataset.
func (a *Alpha) Metadata() dataset.Metadata { return a.meta }

// Background returns the laser background: the average of every
// "background.*.pumpon.tif" frame in the source directory. The average is
// computed once and cached.
func (a *Alpha) Background() (*mat.Dense, error) {
	a.bgOnce.Do(func() {
		matches, err := fsutil.Matches(filepath.Join(a.source, "background.*.pumpon.tif"))
		if err != nil {
			a.bgErr = err
			return
		}
		if len(matches) == 0 {
			a.bgErr = fmt.Errorf("no laser background frames in %s", a.source)
			return
		}
		frames := make([]*mat.Dense, 0, len(matches))
		for _, match := range matches {
			frame, err := diffimg.Read(match)
			if err != nil {
				a.bgErr = fmt.Errorf("reading laser background %s: %w", match, err)
				return
			}
			frames = append(frames, frame)
		}
		a.bg, a.bgErr = diffimg.Average(frames)
	})
	return a.bg, a.bgErr
}

// FramePath returns the source-relative path of the frame for the given
// time-delay and scan. Alpha frame names look like
// "data.timedelay.+1.00.nscan.04.pumpon.tif".
func (a *Alpha) FramePath(timedelay float64, scan int) string {
	return fmt.Sprintf("data.timedelay.%s.nscan.%02d.pumpon.tif", units.DelaySigned(timedelay), scan)
}

// RawData implements dataset.RawDataset. The laser background is removed
// unless disabled, and negative intensities left by the subtraction are
// clamped to zero.
func (a *Alpha) RawData(timedelay float64, scan int, opts ...dataset.RawOption) (*mat.Dense, error) {
	if err := dataset.CheckBounds(a.meta, timedelay, scan); err != nil {
		return nil, err
	}
	o := dataset.ApplyOptions(opts)

	rel := a.FramePath(timedelay, scan)
	frame, err := diffimg.Read(filepath.Join(a.source, rel))
	if err != nil {
		return nil, fmt.Errorf("%w: expected the frame for %vps and scan %d at %s: %v",
			dataset.ErrFrameNotFound, timedelay, scan, rel, err)
	}
	if o.SkipBackground {
		return frame, nil
	}

	bg, err := a.Background()
	if err != nil {
		return nil, err
	}
	return diffimg.Subtract(frame, bg, true)
}

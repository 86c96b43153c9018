// Package mcgill exposes the raw data directories written by the four
// successive generations of the McGill ultrafast electron diffractometer
// through the common dataset.RawDataset interface. The generations differ
// mainly in metadata format and frame-file naming:
//
//   - alpha: tag-file metadata, flat directory of TIFF frames (~2008-2017)
//   - beta:  INI metadata, per-scan directories with free timestamps in
//     filenames (2017-2019)
//   - gamma: INI metadata, fixed filename grid, auxiliary CSV tables
//     (late 2019 onward)
//   - delta: gamma layout plus electron-count lookup and a pump-off
//     diagnostic variant
package mcgill

import "github.com/mcgill-femto/rawdata/dataset"

func init() {
	dataset.Register("alpha", func(source string) (dataset.RawDataset, error) {
		return OpenAlpha(source)
	})
	dataset.Register("beta", func(source string) (dataset.RawDataset, error) {
		return OpenBeta(source)
	})
	dataset.Register("gamma", func(source string) (dataset.RawDataset, error) {
		return OpenGamma(source)
	})
	dataset.Register("delta", func(source string) (dataset.RawDataset, error) {
		return OpenDelta(source)
	})
	dataset.Register("delta-pumpoff", func(source string) (dataset.RawDataset, error) {
		return OpenDeltaPumpoff(source)
	})
}

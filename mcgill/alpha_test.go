package mcgill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcgill-femto/rawdata/dataset"
	"github.com/mcgill-femto/rawdata/internal/testutil"
)

// newAlphaFixture writes a minimal alpha-generation dataset: a tag file,
// frames at two delays and two scans, and two laser background frames.
func newAlphaFixture(t *testing.T) string {
	t.Helper()
	source := filepath.Join(t.TempDir(), "2012.11.09.19.05.VO2")
	require.NoError(t, os.MkdirAll(source, 0o755))

	testutil.WriteFile(t, filepath.Join(source, "tagfile.txt"),
		"Energy = 30\nExposure = 10.0s\nFluence = BLANK\nCurrent = 0.5\n")

	for _, name := range []string{
		"data.timedelay.-5.00.nscan.01.pumpon.tif",
		"data.timedelay.+1.00.nscan.01.pumpon.tif",
		"data.timedelay.-5.00.nscan.02.pumpon.tif",
		"data.timedelay.+1.00.nscan.02.pumpon.tif",
	} {
		testutil.WriteFrame(t, filepath.Join(source, name), 4, 4, 300)
	}
	testutil.WriteFrame(t, filepath.Join(source, "background.19.10.00.pumpon.tif"), 4, 4, 100)
	testutil.WriteFrame(t, filepath.Join(source, "background.19.20.00.pumpon.tif"), 4, 4, 200)

	return source
}

func TestOpenAlpha(t *testing.T) {
	t.Parallel()

	t.Run("missing directory fails", func(t *testing.T) {
		t.Parallel()
		_, err := OpenAlpha(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not point to an existing directory")
	})

	t.Run("metadata comes from the tag file with defaults", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenAlpha(newAlphaFixture(t))
		require.NoError(t, err)

		meta := ds.Metadata()
		assert.Equal(t, 30.0, meta.Energy)
		assert.Equal(t, 10.0, meta.Exposure)
		assert.Equal(t, 0.5, meta.Current)
		// "BLANK" falls back to the default.
		assert.Equal(t, 0.0, meta.Fluence)
		assert.Equal(t, [2]int{2048, 2048}, meta.Resolution)
	})

	t.Run("acquisition date comes from the directory name", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenAlpha(newAlphaFixture(t))
		require.NoError(t, err)
		assert.Equal(t, "2012.11.09.19.05", ds.Metadata().AcquisitionDate)
	})

	t.Run("scans and time points are discovered from filenames", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenAlpha(newAlphaFixture(t))
		require.NoError(t, err)

		meta := ds.Metadata()
		assert.Equal(t, []int{1, 2}, meta.Scans)
		assert.Equal(t, []float64{-5.0, 1.0}, meta.TimePoints)
	})
}

func TestAlphaFramePath(t *testing.T) {
	t.Parallel()
	a := &Alpha{}
	assert.Equal(t, "data.timedelay.+1.00.nscan.04.pumpon.tif", a.FramePath(1.0, 4))
	assert.Equal(t, "data.timedelay.-5.50.nscan.12.pumpon.tif", a.FramePath(-5.5, 12))
	assert.Equal(t, "data.timedelay.+0.00.nscan.01.pumpon.tif", a.FramePath(0.0, 1))
}

func TestAlphaBackground(t *testing.T) {
	t.Parallel()
	ds, err := OpenAlpha(newAlphaFixture(t))
	require.NoError(t, err)

	bg, err := ds.Background()
	require.NoError(t, err)
	assert.Equal(t, 150.0, bg.At(0, 0))

	// Memoized: a second call returns the same matrix.
	again, err := ds.Background()
	require.NoError(t, err)
	assert.Same(t, bg, again)
}

func TestAlphaRawData(t *testing.T) {
	t.Parallel()

	t.Run("subtracts background and clamps negatives", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenAlpha(newAlphaFixture(t))
		require.NoError(t, err)

		frame, err := ds.RawData(1.0, 1)
		require.NoError(t, err)
		// 300 - avg(100, 200) = 150, positive, kept.
		assert.Equal(t, 150.0, frame.At(0, 0))
	})

	t.Run("clamps intensities below the background to zero", func(t *testing.T) {
		t.Parallel()
		source := newAlphaFixture(t)
		testutil.WriteFrame(t, filepath.Join(source, "data.timedelay.+1.00.nscan.01.pumpon.tif"), 4, 4, 120)
		ds, err := OpenAlpha(source)
		require.NoError(t, err)

		frame, err := ds.RawData(1.0, 1)
		require.NoError(t, err)
		// 120 - 150 would be negative; alpha clamps to zero.
		assert.Equal(t, 0.0, frame.At(0, 0))
	})

	t.Run("background subtraction can be disabled", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenAlpha(newAlphaFixture(t))
		require.NoError(t, err)

		frame, err := ds.RawData(1.0, 1, dataset.NoBackground())
		require.NoError(t, err)
		assert.Equal(t, 300.0, frame.At(0, 0))
	})

	t.Run("out-of-grid request is rejected before file access", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenAlpha(newAlphaFixture(t))
		require.NoError(t, err)

		_, err = ds.RawData(2.0, 1)
		assert.ErrorIs(t, err, dataset.ErrOutOfBounds)

		_, err = ds.RawData(1.0, 9)
		assert.ErrorIs(t, err, dataset.ErrOutOfBounds)
	})

	t.Run("missing frame file reports frame-not-found", func(t *testing.T) {
		t.Parallel()
		source := newAlphaFixture(t)
		require.NoError(t, os.Remove(filepath.Join(source, "data.timedelay.+1.00.nscan.02.pumpon.tif")))
		ds, err := OpenAlpha(source)
		require.NoError(t, err)

		// Delay and scan are still on the grid (other files define them),
		// but this particular frame is gone.
		_, err = ds.RawData(1.0, 2)
		assert.ErrorIs(t, err, dataset.ErrFrameNotFound)
	})
}

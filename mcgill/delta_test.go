package mcgill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcgill-femto/rawdata/dataset"
)

// The delta generation shares the gamma directory layout, so the gamma
// fixture doubles as a delta fixture.

func TestOpenDelta(t *testing.T) {
	t.Parallel()
	ds, err := OpenDelta(newGammaFixture(t))
	require.NoError(t, err)
	assert.Equal(t, "McGill Raw Dataset v. Delta", ds.DisplayName())
	assert.Equal(t, []float64{1.5}, ds.Metadata().TimePoints)
}

func TestDeltaElectronCount(t *testing.T) {
	t.Parallel()

	t.Run("returns the recorded count", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenDelta(newGammaFixture(t))
		require.NoError(t, err)

		count, err := ds.ElectronCount(1.5, 1)
		require.NoError(t, err)
		assert.Equal(t, 123456.0, count)
	})

	t.Run("out-of-grid request is rejected", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenDelta(newGammaFixture(t))
		require.NoError(t, err)

		_, err = ds.ElectronCount(9.0, 1)
		assert.ErrorIs(t, err, dataset.ErrOutOfBounds)
	})

	t.Run("missing frame file reports frame-not-found", func(t *testing.T) {
		t.Parallel()
		source := newGammaFixture(t)
		ds, err := OpenDelta(source)
		require.NoError(t, err)

		require.NoError(t, os.Remove(filepath.Join(source, "scan_0001", "pumpon_+00001.500ps.tif")))
		_, err = ds.ElectronCount(1.5, 1)
		assert.ErrorIs(t, err, dataset.ErrFrameNotFound)
	})
}

func TestDeltaRawData(t *testing.T) {
	t.Parallel()
	ds, err := OpenDelta(newGammaFixture(t))
	require.NoError(t, err)

	frame, err := ds.RawData(1.5, 1)
	require.NoError(t, err)
	// Same convention as gamma: nearest laser background, no clamping.
	assert.Equal(t, 450.0, frame.At(0, 0))
}

func TestOpenDeltaPumpoff(t *testing.T) {
	t.Parallel()
	ds, err := OpenDeltaPumpoff(newGammaFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "McGill Raw Dataset v. Delta [Diagnostic pump-off]", ds.DisplayName())

	meta := ds.Metadata()
	assert.Equal(t, []int{1}, meta.Scans)
	// Time points are the pump-off acquisition timestamps.
	assert.Equal(t, []float64{1100}, meta.TimePoints)
}

func TestDeltaPumpoffFramePath(t *testing.T) {
	t.Parallel()
	p := &DeltaPumpoff{}
	assert.Equal(t, "pump_off/pump_off_epoch_0000001100s.tif", p.FramePath(1100, 1))
	assert.Equal(t, "pump_off/pump_off_epoch_1586024631s.tif", p.FramePath(1586024631, 1))
}

func TestDeltaPumpoffRawData(t *testing.T) {
	t.Parallel()

	t.Run("subtracts the nearest dark frame", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenDeltaPumpoff(newGammaFixture(t))
		require.NoError(t, err)

		frame, err := ds.RawData(1100, 1)
		require.NoError(t, err)
		// 450 - 5 (dark_001).
		assert.Equal(t, 445.0, frame.At(0, 0))
	})

	t.Run("dark subtraction can be disabled", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenDeltaPumpoff(newGammaFixture(t))
		require.NoError(t, err)

		frame, err := ds.RawData(1100, 1, dataset.NoBackground())
		require.NoError(t, err)
		assert.Equal(t, 450.0, frame.At(0, 0))
	})

	t.Run("timestamps outside the grid are rejected", func(t *testing.T) {
		t.Parallel()
		ds, err := OpenDeltaPumpoff(newGammaFixture(t))
		require.NoError(t, err)

		_, err = ds.RawData(1200, 1)
		assert.ErrorIs(t, err, dataset.ErrOutOfBounds)
	})
}

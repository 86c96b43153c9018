package diffimg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mcgill-femto/rawdata/internal/testutil"
)

func TestRead(t *testing.T) {
	t.Parallel()

	t.Run("reads a 16-bit grayscale frame at native depth", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "frame.tif")
		testutil.WriteFramePixels(t, path, [][]uint16{
			{0, 100},
			{200, 65535},
		})

		frame, err := Read(path)
		require.NoError(t, err)
		rows, cols := frame.Dims()
		assert.Equal(t, 2, rows)
		assert.Equal(t, 2, cols)
		assert.Equal(t, 0.0, frame.At(0, 0))
		assert.Equal(t, 100.0, frame.At(0, 1))
		assert.Equal(t, 200.0, frame.At(1, 0))
		assert.Equal(t, 65535.0, frame.At(1, 1))
	})

	t.Run("missing file fails", func(t *testing.T) {
		t.Parallel()
		_, err := Read(filepath.Join(t.TempDir(), "no-such.tif"))
		assert.Error(t, err)
	})

	t.Run("non-image content fails", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "junk.tif")
		testutil.WriteFile(t, path, "this is not a TIFF")
		_, err := Read(path)
		assert.Error(t, err)
	})
}

func TestAverage(t *testing.T) {
	t.Parallel()

	t.Run("element-wise mean", func(t *testing.T) {
		t.Parallel()
		a := mat.NewDense(2, 2, []float64{0, 2, 4, 6})
		b := mat.NewDense(2, 2, []float64{2, 4, 6, 8})

		avg, err := Average([]*mat.Dense{a, b})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 3, 5, 7}, avg.RawMatrix().Data)
	})

	t.Run("no frames fails", func(t *testing.T) {
		t.Parallel()
		_, err := Average(nil)
		assert.Error(t, err)
	})

	t.Run("dimension mismatch fails", func(t *testing.T) {
		t.Parallel()
		a := mat.NewDense(2, 2, nil)
		b := mat.NewDense(3, 2, nil)
		_, err := Average([]*mat.Dense{a, b})
		assert.Error(t, err)
	})
}

func TestSubtract(t *testing.T) {
	t.Parallel()

	frame := mat.NewDense(1, 3, []float64{10, 5, 1})
	background := mat.NewDense(1, 3, []float64{3, 5, 7})

	t.Run("plain subtraction keeps negative intensities", func(t *testing.T) {
		t.Parallel()
		out, err := Subtract(frame, background, false)
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 0, -6}, out.RawMatrix().Data)
	})

	t.Run("clamped subtraction floors at zero", func(t *testing.T) {
		t.Parallel()
		out, err := Subtract(frame, background, true)
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 0, 0}, out.RawMatrix().Data)
	})

	t.Run("input frame is not modified", func(t *testing.T) {
		t.Parallel()
		_, err := Subtract(frame, background, true)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 5, 1}, frame.RawMatrix().Data)
	})

	t.Run("dimension mismatch fails", func(t *testing.T) {
		t.Parallel()
		_, err := Subtract(frame, mat.NewDense(2, 3, nil), false)
		assert.Error(t, err)
	})
}

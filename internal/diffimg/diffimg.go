// Package diffimg reads single-frame detector images into float64 matrices
// and provides the element-wise operations the adapters need: averaging a
// set of background frames and subtracting a background from a frame.
package diffimg

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"

	_ "image/png" // fixture frames in tests are sometimes PNG
)

// Read decodes the detector image at path into a rows-by-columns float64
// matrix. The instrument writes grayscale TIFF; 8- and 16-bit frames are
// decoded at their native depth.
func Read(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		// Not a TIFF; retry with whatever decoders are registered.
		if _, seekErr := f.Seek(0, 0); seekErr != nil {
			return nil, fmt.Errorf("rewinding %s: %w", path, seekErr)
		}
		img, _, err = image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding image %s: %w", path, err)
		}
	}
	return fromImage(img), nil
}

// fromImage converts a decoded image to a float64 matrix, keeping the
// native intensity scale for grayscale frames.
func fromImage(img image.Image) *mat.Dense {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	out := mat.NewDense(rows, cols, nil)

	switch im := img.(type) {
	case *image.Gray:
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				out.Set(y, x, float64(im.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
	case *image.Gray16:
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				out.Set(y, x, float64(im.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
	default:
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				out.Set(y, x, float64(r))
			}
		}
	}
	return out
}

// Average returns the element-wise mean of the given frames. All frames
// must share dimensions.
func Average(frames []*mat.Dense) (*mat.Dense, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to average")
	}
	rows, cols := frames[0].Dims()
	sum := mat.NewDense(rows, cols, nil)
	for i, frame := range frames {
		r, c := frame.Dims()
		if r != rows || c != cols {
			return nil, fmt.Errorf("frame %d is %dx%d, want %dx%d", i, r, c, rows, cols)
		}
		sum.Add(sum, frame)
	}
	sum.Scale(1/float64(len(frames)), sum)
	return sum, nil
}

// Subtract returns frame minus background. When clampNegative is set,
// resulting intensities below zero are clamped to zero (the convention of
// the earliest instrument generation).
func Subtract(frame, background *mat.Dense, clampNegative bool) (*mat.Dense, error) {
	fr, fc := frame.Dims()
	br, bc := background.Dims()
	if fr != br || fc != bc {
		return nil, fmt.Errorf("frame is %dx%d but background is %dx%d", fr, fc, br, bc)
	}
	out := mat.NewDense(fr, fc, nil)
	out.Sub(frame, background)
	if clampNegative {
		out.Apply(func(_, _ int, v float64) float64 {
			if v < 0 {
				return 0
			}
			return v
		}, out)
	}
	return out, nil
}

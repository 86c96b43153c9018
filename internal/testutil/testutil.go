// Package testutil provides shared fixtures for adapter tests: helpers
// that write synthetic raw dataset directories with tag files, experiment
// configs, auxiliary CSV tables and small grayscale TIFF frames.
package testutil

import (
	"encoding/csv"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
}

// WriteCSV writes a CSV table with a header row followed by the given rows.
func WriteCSV(t *testing.T, path string, header []string, rows [][]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("writing CSV header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("writing CSV rows: %v", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flushing CSV: %v", err)
	}
}

// WriteFrame writes a grayscale 16-bit TIFF frame where every pixel holds
// the same intensity. Detector frames in tests only need to be
// distinguishable, not realistic.
func WriteFrame(t *testing.T, path string, rows, cols int, intensity uint16) {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.SetGray16(x, y, color.Gray16{Y: intensity})
		}
	}
	writeTIFF(t, path, img)
}

// WriteFramePixels writes a grayscale 16-bit TIFF frame from an explicit
// pixel grid, row by row.
func WriteFramePixels(t *testing.T, path string, pixels [][]uint16) {
	t.Helper()
	rows := len(pixels)
	cols := 0
	if rows > 0 {
		cols = len(pixels[0])
	}
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y, row := range pixels {
		for x, v := range row {
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	writeTIFF(t, path, img)
}

func writeTIFF(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture %s: %v", path, err)
	}
	defer f.Close()
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatalf("encoding fixture TIFF %s: %v", path, err)
	}
}

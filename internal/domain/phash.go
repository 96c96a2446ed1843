package domain

import (
	"errors"
	"image"
	"io"
	"math/bits"
	"path/filepath"
	"strings"

	// Registered decoders for the supported perceptual-hash formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	m "github.com/mouse-blink/sift/internal/model"
)

// The hash compares adjacent cells of a phashCols x phashRows luminance
// grid, yielding phashRows*(phashCols-1) = 64 bits.
const (
	phashCols = 9
	phashRows = 8

	// cellSamples bounds the per-cell luminance sampling so hashing cost
	// stays fixed regardless of the source image dimensions.
	cellSamples = 4
)

var errEmptyImage = errors.New("image has no pixels")

// perceptualExts lists the extensions the engine attempts to decode for
// a perceptual hash. Anything else only gets an exact digest.
var perceptualExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// supportsPerceptual reports whether the path looks like an image the
// engine can perceptually hash.
func supportsPerceptual(path m.Path) bool {
	ext := strings.ToLower(filepath.Ext(string(path)))
	_, ok := perceptualExts[ext]

	return ok
}

// perceptualHash computes a 64-bit difference hash of the image read
// from r. The image is reduced to a coarse luminance grid and each bit
// records whether brightness increases between horizontally adjacent
// cells, so visually similar images land within a small Hamming
// distance of each other.
func perceptualHash(r io.Reader) (m.PerceptualHash, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return 0, err
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return 0, errEmptyImage
	}

	grid := luminanceGrid(img)

	var hash m.PerceptualHash

	bit := 0

	for row := 0; row < phashRows; row++ {
		for col := 0; col < phashCols-1; col++ {
			if grid[row][col+1] > grid[row][col] {
				hash |= 1 << uint(bit)
			}

			bit++
		}
	}

	return hash, nil
}

// luminanceGrid averages a bounded sample of pixels inside each grid
// cell. Sampling instead of full-cell averaging keeps the work constant
// per cell.
func luminanceGrid(img image.Image) [phashRows][phashCols]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var grid [phashRows][phashCols]float64

	for row := 0; row < phashRows; row++ {
		for col := 0; col < phashCols; col++ {
			var sum float64

			count := 0

			for sy := 0; sy < cellSamples; sy++ {
				for sx := 0; sx < cellSamples; sx++ {
					x := bounds.Min.X + (col*cellSamples+sx)*width/(phashCols*cellSamples)
					y := bounds.Min.Y + (row*cellSamples+sy)*height/(phashRows*cellSamples)

					sum += luminance(img, x, y)
					count++
				}
			}

			grid[row][col] = sum / float64(count)
		}
	}

	return grid
}

// luminance returns the Rec. 601 luma of the pixel at (x, y).
func luminance(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()

	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// hammingDistance counts differing bits between two perceptual hashes.
func hammingDistance(a, b m.PerceptualHash) int {
	return bits.OnesCount64(uint64(a ^ b))
}

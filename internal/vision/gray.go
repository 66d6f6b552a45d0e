// Package vision recognizes hero icons in cropped screen captures by comparing
// them against a labeled template set, and picks the crop geometry whose
// captures best resemble the templates.
package vision

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrShapeMismatch is returned when two grids of different size are compared
var ErrShapeMismatch = errors.New("grayscale grids differ in shape")

// Gray is a row-major grid of 8-bit intensities
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a black grid of the given size
func NewGray(width, height int) *Gray {
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// FromImage converts any image to grayscale using the standard luma weights
func FromImage(img image.Image) *Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return fromStd(dst)
}

// LoadGray decodes an image file and converts it to grayscale
func LoadGray(path string) (*Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// At returns the intensity at (x, y)
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set writes the intensity at (x, y)
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Empty reports whether the grid holds no pixels
func (g *Gray) Empty() bool {
	return g == nil || g.Width <= 0 || g.Height <= 0 || len(g.Pix) == 0
}

// SameShape reports whether both grids have identical dimensions
func (g *Gray) SameShape(other *Gray) bool {
	return g.Width == other.Width && g.Height == other.Height
}

// Resample scales the grid to width x height using nearest-neighbor sampling
func (g *Gray) Resample(width, height int) *Gray {
	if g.Width == width && g.Height == height {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), g.std(), image.Rect(0, 0, g.Width, g.Height), draw.Src, nil)
	return fromStd(dst)
}

// Distance is the mean absolute pixel difference normalized to [0, 1].
// 0 means a perfect match.
func Distance(a, b *Gray) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	if len(a.Pix) == 0 {
		return 0, fmt.Errorf("%w: empty grid", ErrShapeMismatch)
	}

	var sum int64
	for i := range a.Pix {
		d := int64(a.Pix[i]) - int64(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	mean := float64(sum) / float64(len(a.Pix))
	return mean / 255.0, nil
}

func (g *Gray) std() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

func fromStd(img *image.Gray) *Gray {
	b := img.Bounds()
	out := NewGray(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+out.Width]
		copy(out.Pix[y*out.Width:], row)
	}
	return out
}

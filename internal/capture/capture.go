package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"

	"heropick/internal/vision"
)

// FullName is the file the uncropped screenshot is saved as
const FullName = "full.png"

// Grabber returns a full-screen image
type Grabber interface {
	Grab() (image.Image, error)
}

// ScreenGrabber captures a physical display
type ScreenGrabber struct {
	Display int
}

// Grab captures the configured display, falling back to the primary one
func (g ScreenGrabber) Grab() (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}

	display := g.Display
	if display < 0 || display >= n {
		display = 0
	}

	img, err := screenshot.CaptureDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", display, err)
	}
	return img, nil
}

// FileGrabber replays a saved screenshot
type FileGrabber struct {
	Path string
}

// Grab decodes the saved screenshot
func (g FileGrabber) Grab() (image.Image, error) {
	f, err := os.Open(g.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot %s: %w", g.Path, err)
	}
	return img, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Cropper cuts portraits out of a full screenshot
type Cropper struct {
	Layout Layout
	Role   Role
}

// NewCropper creates a cropper for the player's role
func NewCropper(layout Layout, role Role) *Cropper {
	return &Cropper{Layout: layout, Role: role}
}

// Crop returns one variant's portraits in slot order
func (c *Cropper) Crop(full image.Image, v VariantOffset) ([]image.Image, []string) {
	boxes := c.Layout.SlotsFor(c.Role)
	images := make([]image.Image, 0, len(boxes))
	names := make([]string, 0, len(boxes))

	for _, b := range boxes {
		r := c.Layout.ScaleBox(b, v.Left, full.Bounds())
		images = append(images, crop(full, r))
		names = append(names, b.Name)
	}
	return images, names
}

// WriteVariants saves full.png in dir and each variant's portraits in
// dir/<variant>/. Stale images from earlier runs are removed first.
// Files are written in slot order so modification times follow the slots.
func (c *Cropper) WriteVariants(full image.Image, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture dir: %w", err)
	}
	if err := writePNG(filepath.Join(dir, FullName), full); err != nil {
		return nil, err
	}

	var dirs []string
	for _, v := range c.Layout.Variants {
		vdir := filepath.Join(dir, v.ID)
		if err := os.MkdirAll(vdir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create variant dir: %w", err)
		}
		if err := clearImages(vdir); err != nil {
			return nil, err
		}

		images, names := c.Crop(full, v)
		for i, img := range images {
			if err := writePNG(filepath.Join(vdir, names[i]+".png"), img); err != nil {
				return nil, err
			}
		}
		fmt.Printf("[Capture] Saved %d portraits to %s\n", len(images), vdir)
		dirs = append(dirs, vdir)
	}
	return dirs, nil
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out.Set(x-r.Min.X, y-r.Min.Y, img.At(x, y))
		}
	}
	return out
}

func clearImages(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read variant dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !vision.IsImageFile(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove stale capture: %w", err)
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

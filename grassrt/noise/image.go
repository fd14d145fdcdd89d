package noise

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// FromImage turns the luminance of a square or rectangular image into a
// field. Non-square images are resampled to the larger side.
func FromImage(img image.Image, worldMin, worldMax mgl32.Vec2, height float32) (*Field, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image: %w", ErrInvalidParams)
	}
	size := max(b.Dx(), b.Dy())
	f, err := newField(size, worldMin, worldMax, height)
	if err != nil {
		return nil, err
	}
	for py := 0; py < size; py++ {
		sy := b.Min.Y + py*b.Dy()/size
		for px := 0; px < size; px++ {
			sx := b.Min.X + px*b.Dx()/size
			g := color.Gray16Model.Convert(img.At(sx, sy)).(color.Gray16)
			f.Pix[py*size+px] = float32(g.Y) / 0xffff
		}
	}
	return f, nil
}

// LoadImage decodes a PNG, BMP or TIFF heightmap.
func LoadImage(path string, worldMin, worldMax mgl32.Vec2, height float32) (*Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		img, err = bmp.Decode(file)
	case ".tif", ".tiff":
		img, err = tiff.Decode(file)
	case ".png":
		img, err = png.Decode(file)
	default:
		return nil, fmt.Errorf("unsupported heightmap format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img, worldMin, worldMax, height)
}

// Image renders the texels as 16-bit grey, clamping to [0,1].
func (f *Field) Image() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Size, f.Size))
	for py := 0; py < f.Size; py++ {
		for px := 0; px < f.Size; px++ {
			v := mgl32.Clamp(f.Pix[py*f.Size+px], 0, 1)
			img.SetGray16(px, py, color.Gray16{Y: uint16(v*0xffff + 0.5)})
		}
	}
	return img
}

// Save writes the field as an image, picking the encoder from the extension.
func (f *Field) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	img := f.Image()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(file, img)
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	case ".png":
		err = png.Encode(file, img)
	default:
		err = fmt.Errorf("unsupported heightmap format %q", filepath.Ext(path))
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Package pixels converts Go images into the packed raster form the native
// engine consumes. The engine wants a contiguous byte slice plus explicit
// pixel and row strides; Buffer carries exactly that.
package pixels

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// Buffer is a packed raster ready to hand to the engine.
type Buffer struct {
	Data          []byte
	Width         int
	Height        int
	BytesPerPixel int
	BytesPerLine  int
}

// Validate checks that the strides and dimensions describe the data.
func (b Buffer) Validate() error {
	switch {
	case b.Width <= 0 || b.Height <= 0:
		return errors.New("pixels: non-positive dimensions")
	case b.BytesPerPixel <= 0:
		return errors.New("pixels: non-positive pixel stride")
	case b.BytesPerLine < b.Width*b.BytesPerPixel:
		return errors.New("pixels: row stride shorter than a row")
	case len(b.Data) < b.BytesPerLine*b.Height:
		return errors.New("pixels: data shorter than the raster")
	}
	return nil
}

// FromImage packs an image for the engine. Gray and RGBA images are wrapped
// without copying; everything else is converted to 8-bit grayscale first,
// which is what the recognition pipeline works on anyway.
func FromImage(img image.Image) Buffer {
	switch src := img.(type) {
	case *image.Gray:
		return Buffer{
			Data:          src.Pix,
			Width:         src.Rect.Dx(),
			Height:        src.Rect.Dy(),
			BytesPerPixel: 1,
			BytesPerLine:  src.Stride,
		}
	case *image.RGBA:
		return Buffer{
			Data:          src.Pix,
			Width:         src.Rect.Dx(),
			Height:        src.Rect.Dy(),
			BytesPerPixel: 4,
			BytesPerLine:  src.Stride,
		}
	}
	return FromImage(Grayscale(img))
}

// Grayscale renders any image into a fresh 8-bit grayscale raster anchored
// at the origin.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

package pixels

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImageGrayPassthrough(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 4))
	src.SetGray(3, 2, color.Gray{Y: 200})

	buf := FromImage(src)
	if err := buf.Validate(); err != nil {
		t.Fatalf("invalid buffer: %v", err)
	}
	if buf.Width != 8 || buf.Height != 4 {
		t.Fatalf("unexpected dimensions: %dx%d", buf.Width, buf.Height)
	}
	if buf.BytesPerPixel != 1 {
		t.Fatalf("unexpected pixel stride: %d", buf.BytesPerPixel)
	}
	if buf.Data[2*buf.BytesPerLine+3] != 200 {
		t.Fatalf("pixel not where expected")
	}
}

func TestFromImageRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 5, 5))
	buf := FromImage(src)
	if err := buf.Validate(); err != nil {
		t.Fatalf("invalid buffer: %v", err)
	}
	if buf.BytesPerPixel != 4 {
		t.Fatalf("unexpected pixel stride: %d", buf.BytesPerPixel)
	}
}

func TestFromImageConvertsOtherFormats(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 16, 14))
	for y := 10; y < 14; y++ {
		for x := 10; x < 16; x++ {
			src.Set(x, y, color.White)
		}
	}

	buf := FromImage(src)
	if err := buf.Validate(); err != nil {
		t.Fatalf("invalid buffer: %v", err)
	}
	if buf.BytesPerPixel != 1 {
		t.Fatalf("conversion should yield grayscale, got stride %d", buf.BytesPerPixel)
	}
	if buf.Width != 6 || buf.Height != 4 {
		t.Fatalf("bounds not normalized: %dx%d", buf.Width, buf.Height)
	}
	if buf.Data[0] != 255 {
		t.Fatalf("white pixel lost in conversion: %d", buf.Data[0])
	}
}

func TestValidateRejectsShortData(t *testing.T) {
	buf := Buffer{Data: make([]byte, 10), Width: 8, Height: 4, BytesPerPixel: 1, BytesPerLine: 8}
	if err := buf.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

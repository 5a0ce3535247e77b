package stereoproj

import (
	"image"
	"image/color"
	"testing"
)

func TestImageSetAt(t *testing.T) {
	m := NewImage(3, 2)
	if len(m.Pix) != 18 {
		t.Fatalf("pix len %d", len(m.Pix))
	}
	m.Set(1, 2, RGB{1, 2, 3})
	if m.At(1, 2) != (RGB{1, 2, 3}) || m.At(0, 0) != (RGB{}) {
		t.Fatal("Set/At mismatch")
	}
	// Row-major, 3 bytes per pixel.
	if m.Pix[(1*3+2)*3+ChB] != 3 {
		t.Fatal("unexpected layout")
	}
}

func TestFromImageDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 7, 7, 8)) // non-zero origin
	src.SetNRGBA(5, 7, color.NRGBA{200, 100, 50, 0})
	src.SetNRGBA(6, 7, color.NRGBA{1, 2, 3, 255})
	m := FromImage(src)
	if m.Width != 2 || m.Height != 1 {
		t.Fatalf("size %dx%d", m.Width, m.Height)
	}
	if m.At(0, 0) != (RGB{200, 100, 50}) || m.At(0, 1) != (RGB{1, 2, 3}) {
		t.Fatalf("pixels: %v %v", m.At(0, 0), m.At(0, 1))
	}
}

func TestNRGBAIsOpaque(t *testing.T) {
	m := quad()
	img := m.NRGBA()
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if c := img.NRGBAAt(1, 0); c != (color.NRGBA{0, 255, 0, 255}) {
		t.Fatalf("(x=1,y=0) = %v", c)
	}
	back := FromImage(img)
	for i := range m.Pix {
		if m.Pix[i] != back.Pix[i] {
			t.Fatal("NRGBA -> FromImage changed pixels")
		}
	}
}

package stereoproj

import (
	"image"
	"image/color"
)

// RGB is one 8-bit pixel; there is no alpha channel.
type RGB struct {
	R, G, B uint8
}

// Image is a row-major RGB raster, row 0 at the top.
// Pix holds 3 bytes per pixel: R, G, B.
type Image struct {
	Width, Height int
	Pix           []uint8
}

func NewImage(w, h int) *Image {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Image{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

func (m *Image) idx(row, col int) int { return (row*m.Width + col) * 3 }

func (m *Image) At(row, col int) RGB {
	i := m.idx(row, col)
	return RGB{m.Pix[i+ChR], m.Pix[i+ChG], m.Pix[i+ChB]}
}

func (m *Image) Set(row, col int, c RGB) {
	i := m.idx(row, col)
	m.Pix[i+ChR] = c.R
	m.Pix[i+ChG] = c.G
	m.Pix[i+ChB] = c.B
}

// FromImage converts any decoded image to RGB. Alpha is dropped without
// compositing against a background.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Set(y-b.Min.Y, x-b.Min.X, RGB{c.R, c.G, c.B})
		}
	}
	return out
}

// NRGBA returns an opaque copy suitable for the image encoders.
func (m *Image) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		rowOff := y * img.Stride
		for x := 0; x < m.Width; x++ {
			i := m.idx(y, x)
			p := rowOff + x*4
			img.Pix[p+0] = m.Pix[i+ChR]
			img.Pix[p+1] = m.Pix[i+ChG]
			img.Pix[p+2] = m.Pix[i+ChB]
			img.Pix[p+3] = 255
		}
	}
	return img
}


package stereoproj

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes PNG, JPEG, GIF, BMP, TIFF or WEBP and converts it to RGB.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := FromImage(img)
	DebugLog("Loaded %s image %s: %dx%d", format, path, out.Width, out.Height)
	return out, nil
}

// SaveImage writes m as JPEG when path ends in .jpg/.jpeg and as PNG otherwise.
func SaveImage(m *Image, path string) error {
	return saveNRGBA(m.NRGBA(), path)
}

func saveNRGBA(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Thumbnail scales m down so its longer side is at most maxSide, keeping the
// aspect ratio. Images already small enough are copied unscaled.
func Thumbnail(m *Image, maxSide int) *image.NRGBA {
	src := m.NRGBA()
	w, h := m.Width, m.Height
	if maxSide < 1 || (w <= maxSide && h <= maxSide) {
		return src
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// SaveThumbnail writes Thumbnail(m, maxSide) to path.
func SaveThumbnail(m *Image, maxSide int, path string) error {
	return saveNRGBA(Thumbnail(m, maxSide), path)
}

package stereoproj

import "math"

// Bilinear samples src at column u, row v. The lower neighbour is floor(u),
// floor(v); the upper one is clamped to the last column/row. ok is false when
// the lower neighbour falls outside the image, in which case the caller keeps
// its background.
func Bilinear(src *Image, u, v Real) (c [3]Real, ok bool) {
	fu, fv := math.Floor(u), math.Floor(v)
	if !(fu >= 0 && fu < Real(src.Width) && fv >= 0 && fv < Real(src.Height)) {
		return c, false
	}
	u1, v1 := int(fu), int(fv)
	u2 := min(u1+1, src.Width-1)
	v2 := min(v1+1, src.Height-1)
	du, dv := u-fu, v-fv

	c11, c12 := src.idx(v1, u1), src.idx(v1, u2)
	c21, c22 := src.idx(v2, u1), src.idx(v2, u2)

	w11 := (1 - du) * (1 - dv)
	w12 := du * (1 - dv)
	w21 := (1 - du) * dv
	w22 := du * dv
	for ch := ChR; ch <= ChB; ch++ {
		c[ch] = w11*Real(src.Pix[c11+ch]) +
			w12*Real(src.Pix[c12+ch]) +
			w21*Real(src.Pix[c21+ch]) +
			w22*Real(src.Pix[c22+ch])
	}
	return c, true
}

// quantize rounds half away from zero and clamps to 0..255.
func quantize(c [3]Real) RGB {
	return RGB{toByte(c[ChR]), toByte(c[ChG]), toByte(c[ChB])}
}

func toByte(v Real) uint8 {
	x := math.Round(v)
	if x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}

package stereoproj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Real = float64

// SpherePoint lifts a normalized plane point onto the unit sphere with the
// inverse stereographic projection. North keeps Z = (1-r²)/(1+r²), South
// negates it; the centre of the plane therefore lands on +Z for North.
func SpherePoint(nx, ny Real, pole Pole) mgl64.Vec3 {
	r2 := nx*nx + ny*ny
	d := 1 + r2
	z := (1 - r2) / d
	if pole == South {
		z = -z
	}
	return mgl64.Vec3{2 * nx / d, 2 * ny / d, z}
}

// SphericalToSource maps a rotated sphere point to equirectangular source
// coordinates: longitude atan2(Y, X) spans the width, colatitude acos(Z/r)
// spans the height. ok is false for the origin, which has no direction.
func SphericalToSource(p mgl64.Vec3, w, h int) (u, v Real, ok bool) {
	r := p.Len()
	if r == 0 {
		return 0, 0, false
	}
	theta := math.Atan2(p[1], p[0])
	phi := math.Acos(p[2] / r)
	u = (theta + math.Pi) / (2 * math.Pi) * Real(w-1)
	v = phi / math.Pi * Real(h-1)
	return u, v, true
}

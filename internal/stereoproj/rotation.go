package stereoproj

import "github.com/go-gl/mathgl/mgl64"

// Rot3Deg holds per-axis rotation angles in degrees.
type Rot3Deg struct {
	X Real `json:"x" env:"X"`
	Y Real `json:"y" env:"Y"`
	Z Real `json:"z" env:"Z"`
}

// Radians converts to radians, X, Y, Z order.
func (r Rot3Deg) Radians() (x, y, z Real) {
	return mgl64.DegToRad(r.X), mgl64.DegToRad(r.Y), mgl64.DegToRad(r.Z)
}

// Right-handed single-axis rotations: X turns the Y/Z plane, Y the Z/X plane,
// Z the X/Y plane.
func rotX(a Real) mgl64.Mat3 { return mgl64.Rotate3DX(a) }
func rotY(a Real) mgl64.Mat3 { return mgl64.Rotate3DY(a) }
func rotZ(a Real) mgl64.Mat3 { return mgl64.Rotate3DZ(a) }

// RotationMatrix composes R = Rz·(Ry·Rx) from angles in degrees.
// The product order is fixed; swapping it changes the rendered image.
func RotationMatrix(r Rot3Deg) mgl64.Mat3 {
	x, y, z := r.Radians()
	return rotZ(z).Mul3(rotY(y).Mul3(rotX(x)))
}

func (p Params) rotation() mgl64.Mat3 {
	return RotationMatrix(Rot3Deg{X: p.RotX, Y: p.RotY, Z: p.RotZ})
}

package stereoproj

import (
	"fmt"
	"math"
	"strings"
)

// Pole selects the sign of Z in the inverse projection.
type Pole uint8

const (
	North Pole = iota
	South
)

func (p Pole) String() string {
	switch p {
	case North:
		return "north"
	case South:
		return "south"
	}
	return fmt.Sprintf("Pole(%d)", uint8(p))
}

// ParsePole accepts north/n and south/s in any case. An empty value is an
// error; the zero Pole is already North.
func ParsePole(s string) (Pole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "south", "s":
		return South, nil
	}
	return North, invalid("pole", "unknown pole %q (want north or south)", s)
}

func (p Pole) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Pole) UnmarshalText(b []byte) error {
	v, err := ParsePole(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Params fully describes one projection. Angles are in degrees.
type Params struct {
	RotX, RotY, RotZ Real
	SphereRadius     Real
	Pole             Pole
	RadiusScale      Real // scales the radius of the unit disk on the output
	OutputSize       int  // side of the square output
}

// DefaultParams returns the CLI defaults with no rotation.
func DefaultParams() Params {
	return Params{
		SphereRadius: SphereRadius,
		Pole:         North,
		RadiusScale:  RadiusScale,
		OutputSize:   OutputSize,
	}
}

// Validate reports the first problem found, as an *InputError.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    Real
	}{{"rotation_x", p.RotX}, {"rotation_y", p.RotY}, {"rotation_z", p.RotZ}} {
		if !isFinite(f.v) {
			return invalid(f.name, "must be finite, got %v", f.v)
		}
	}
	if !isFinite(p.SphereRadius) || p.SphereRadius <= 0 {
		return invalid("sphere_radius", "must be finite and > 0, got %v", p.SphereRadius)
	}
	if !isFinite(p.RadiusScale) || p.RadiusScale <= 0 {
		return invalid("projection_radius_scale", "must be finite and > 0, got %v", p.RadiusScale)
	}
	if p.OutputSize < 1 {
		return invalid("output_size", "must be >= 1, got %d", p.OutputSize)
	}
	if p.Pole != North && p.Pole != South {
		return invalid("projection_pole", "unknown value %d", uint8(p.Pole))
	}
	return nil
}

func validateSource(src *Image) error {
	if src == nil {
		return invalid("source", "image is nil")
	}
	if src.Width < 1 || src.Height < 1 {
		return invalid("source", "image must be at least 1x1, got %dx%d", src.Width, src.Height)
	}
	if len(src.Pix) != src.Width*src.Height*3 {
		return invalid("source", "pixel buffer has %d bytes, want %d", len(src.Pix), src.Width*src.Height*3)
	}
	return nil
}

func isFinite(x Real) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

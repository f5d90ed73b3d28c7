package particles

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a cubic periodic cell centred on the origin. Half is always Size/2.
type Box struct {
	Size float64 `json:"size"`
	Half float64 `json:"half"`
}

func NewBox(size float64) (Box, error) {
	if !(size > 0) || math.IsInf(size, 0) {
		return Box{}, fmt.Errorf("%w: box_size=%g", ErrInvalidBox, size)
	}
	return Box{Size: size, Half: size / 2}, nil
}

// MinimumImage maps a raw coordinate to its periodic image in (-Half, Half].
// Zero takes the non-positive branch. The single value that lands exactly on
// -Half is folded onto +Half, which is the same periodic point.
func (b Box) MinimumImage(c float64) float64 {
	var m float64
	if c > 0 {
		m = math.Mod(c+b.Half, b.Size) - b.Half
	} else {
		m = math.Mod(c-b.Half, b.Size) + b.Half
	}
	if m <= -b.Half {
		return b.Half
	}
	return m
}

// Image applies MinimumImage to each axis of v.
func (b Box) Image(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: b.MinimumImage(v.X),
		Y: b.MinimumImage(v.Y),
		Z: b.MinimumImage(v.Z),
	}
}

// WrapDelta folds a coordinate difference of two imaged positions back into
// [-Half, Half].
func (b Box) WrapDelta(d float64) float64 {
	if d > b.Half {
		return d - b.Size
	}
	if d < -b.Half {
		return d + b.Size
	}
	return d
}

// Separation returns the wrapped vector from a to b.
func (b Box) Separation(a, c r3.Vec) r3.Vec {
	return r3.Vec{
		X: b.WrapDelta(c.X - a.X),
		Y: b.WrapDelta(c.Y - a.Y),
		Z: b.WrapDelta(c.Z - a.Z),
	}
}

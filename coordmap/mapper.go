// Package coordmap maps depth-space pixels into color-space coordinates.
package coordmap

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrSizeMismatch = errors.New("depth buffer and coordinate buffer sizes differ")
	ErrUnavailable  = errors.New("coordinate mapper unavailable")
)

// Point is a color-space coordinate. Depth pixels without a valid mapping
// are reported as (-Inf, -Inf).
type Point struct {
	X, Y float32
}

var invalid = Point{X: float32(math.Inf(-1)), Y: float32(math.Inf(-1))}

// Mapper maps a whole depth frame into color space. len(out) must equal
// len(depth).
type Mapper interface {
	MapDepthFrameToColorSpace(depth []uint16, out []Point) error
}

// Adapter owns the per-frame coordinate buffer and the mapper acquired from
// the sensor. A nil mapper puts the adapter in degraded mode.
type Adapter struct {
	mapper Mapper
	coords []Point
}

func NewAdapter(mapper Mapper, depthPixels int) *Adapter {
	return &Adapter{
		mapper: mapper,
		coords: make([]Point, depthPixels),
	}
}

func (a *Adapter) Available() bool {
	return a.mapper != nil
}

// Map recomputes the coordinate buffer from depth. The returned slice is
// owned by the adapter and overwritten by the next call.
func (a *Adapter) Map(depth []uint16) ([]Point, error) {
	if a.mapper == nil {
		return nil, ErrUnavailable
	}
	if len(depth) != len(a.coords) {
		return nil, fmt.Errorf("could not map %d depth pixels into %d coordinates: %w", len(depth), len(a.coords), ErrSizeMismatch)
	}

	if err := a.mapper.MapDepthFrameToColorSpace(depth, a.coords); err != nil {
		return nil, fmt.Errorf("could not map depth frame to color space: %w", err)
	}

	return a.coords, nil
}

// Linear maps depth pixel (x, y) to (x*ScaleX+OffsetX, y*ScaleY+OffsetY),
// ignoring the depth value.
type Linear struct {
	Width            int
	ScaleX, ScaleY   float32
	OffsetX, OffsetY float32
}

func (l Linear) MapDepthFrameToColorSpace(depth []uint16, out []Point) error {
	if len(depth) != len(out) {
		return ErrSizeMismatch
	}
	if l.Width <= 0 {
		return fmt.Errorf("invalid linear mapper width %d", l.Width)
	}

	for i := range out {
		x, y := i%l.Width, i/l.Width
		out[i] = Point{
			X: float32(x)*l.ScaleX + l.OffsetX,
			Y: float32(y)*l.ScaleY + l.OffsetY,
		}
	}

	return nil
}

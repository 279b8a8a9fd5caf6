// Package kinect holds the Kinect v2 frame model, the sensor source contract
// and the renderers that turn raw sensor buffers into images.
package kinect

import (
	"errors"
	"image"
)

const (
	DepthWidth  = 512
	DepthHeight = 424
	DepthSize   = DepthWidth * DepthHeight

	ColorWidth  = 1920
	ColorHeight = 1080

	// BodyCount is the number of body slots reported by the sensor.
	BodyCount = 6

	// BodyIndexBackground marks body-index pixels that belong to no body.
	BodyIndexBackground = 255
)

var ErrNotReady = errors.New("sensor streams not ready")

// Frame holds the buffers of one sensor update. The source overwrites them in
// place; consumers must not keep references across frames.
type Frame struct {
	Depth     []uint16
	Infrared  []uint16
	BodyIndex []uint8
	Color     *image.RGBA
	Bodies    []Body
}

// Complete reports whether depth, body-index and color all carry data.
func (f *Frame) Complete() bool {
	return len(f.Depth) > 0 && len(f.BodyIndex) > 0 && f.Color != nil && len(f.Color.Pix) > 0
}

func (f *Frame) TrackedBodies() int {
	n := 0
	for _, b := range f.Bodies {
		if b.Tracked {
			n++
		}
	}

	return n
}

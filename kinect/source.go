package kinect

import (
	"image"
	"image/draw"

	"github.com/dusxproductions/kinect2share/coordmap"
)

// Source is a sensor producing frames.
type Source interface {
	// Update refreshes the frame buffers in place. It returns ErrNotReady
	// while the sensor has not delivered every stream yet.
	Update() error
	Frame() *Frame
	// CoordinateMapper is acquired once at startup.
	CoordinateMapper() (coordmap.Mapper, error)
	Close() error
}

// Drawable renders a stream into a rectangle of dst.
type Drawable interface {
	Width() int
	Height() int
	Draw(dst draw.Image, r image.Rectangle)
}

// Stream is a Drawable that also exposes its raw pixel data.
type Stream[P any] interface {
	Drawable
	Pixels() P
}

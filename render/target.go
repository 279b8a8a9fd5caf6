// Package render provides off-screen render targets and the pixel readback
// machinery used to hand rendered frames to network senders.
package render

import (
	"image"

	"github.com/dusxproductions/kinect2share/kinect"
)

// Target is an off-screen RGBA render target at a stream's native size.
type Target struct {
	img *image.RGBA
}

func NewTarget(width, height int) *Target {
	return &Target{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

func (t *Target) Image() *image.RGBA {
	return t.img
}

func (t *Target) Width() int  { return t.img.Bounds().Dx() }
func (t *Target) Height() int { return t.img.Bounds().Dy() }

func (t *Target) Clear() {
	clear(t.img.Pix)
}

// Render clears the target and draws src over its full bounds.
func (t *Target) Render(src kinect.Drawable) {
	t.Clear()
	src.Draw(t.img, t.img.Bounds())
}

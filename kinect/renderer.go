package kinect

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

const (
	// maxDepthMM is the far end of the depth visualisation; anything beyond
	// renders white.
	maxDepthMM = 4500
	// irScale brings raw infrared intensities into 8 bits.
	irScale = 64
)

type DepthStream struct {
	frame *Frame
	vis   *image.RGBA
}

func NewDepthStream(f *Frame) *DepthStream {
	return &DepthStream{
		frame: f,
		vis:   image.NewRGBA(image.Rect(0, 0, DepthWidth, DepthHeight)),
	}
}

func (s *DepthStream) Width() int { return DepthWidth }
func (s *DepthStream) Height() int { return DepthHeight }
func (s *DepthStream) Pixels() []uint16 { return s.frame.Depth }

func (s *DepthStream) Draw(dst draw.Image, r image.Rectangle) {
	if len(s.frame.Depth) != DepthSize {
		return
	}
	depthToRGBA(s.vis.Pix, s.frame.Depth)
	drawScaled(dst, r, s.vis)
}

type InfraredStream struct {
	frame *Frame
	vis   *image.RGBA
}

func NewInfraredStream(f *Frame) *InfraredStream {
	return &InfraredStream{
		frame: f,
		vis:   image.NewRGBA(image.Rect(0, 0, DepthWidth, DepthHeight)),
	}
}

func (s *InfraredStream) Width() int { return DepthWidth }
func (s *InfraredStream) Height() int { return DepthHeight }

func (s *InfraredStream) Draw(dst draw.Image, r image.Rectangle) {
	if len(s.frame.Infrared) != DepthSize {
		return
	}
	infraredToRGBA(s.vis.Pix, s.frame.Infrared)
	drawScaled(dst, r, s.vis)
}

// BodyIndexStream renders the black and white body cutouts: bodies black,
// background white.
type BodyIndexStream struct {
	frame *Frame
	vis   *image.RGBA
}

func NewBodyIndexStream(f *Frame) *BodyIndexStream {
	return &BodyIndexStream{
		frame: f,
		vis:   image.NewRGBA(image.Rect(0, 0, DepthWidth, DepthHeight)),
	}
}

func (s *BodyIndexStream) Width() int { return DepthWidth }
func (s *BodyIndexStream) Height() int { return DepthHeight }
func (s *BodyIndexStream) Pixels() []uint8 { return s.frame.BodyIndex }

func (s *BodyIndexStream) Draw(dst draw.Image, r image.Rectangle) {
	if len(s.frame.BodyIndex) != DepthSize {
		return
	}
	bodyIndexToRGBA(s.vis.Pix, s.frame.BodyIndex)
	drawScaled(dst, r, s.vis)
}

type ColorStream struct {
	frame *Frame
}

func NewColorStream(f *Frame) *ColorStream {
	return &ColorStream{frame: f}
}

func (s *ColorStream) Width() int { return ColorWidth }
func (s *ColorStream) Height() int { return ColorHeight }
func (s *ColorStream) Pixels() *image.RGBA { return s.frame.Color }

func (s *ColorStream) Draw(dst draw.Image, r image.Rectangle) {
	if s.frame.Color == nil {
		return
	}
	drawScaled(dst, r, s.frame.Color)
}

// ImageStream draws an image produced elsewhere, such as the keyed composite.
type ImageStream struct {
	img *image.RGBA
}

func NewImageStream(img *image.RGBA) *ImageStream {
	return &ImageStream{img: img}
}

func (s *ImageStream) Width() int { return s.img.Bounds().Dx() }
func (s *ImageStream) Height() int { return s.img.Bounds().Dy() }

func (s *ImageStream) Draw(dst draw.Image, r image.Rectangle) {
	drawScaled(dst, r, s.img)
}

func drawScaled(dst draw.Image, r image.Rectangle, src image.Image) {
	if r.Size() == src.Bounds().Size() {
		xdraw.Draw(dst, r, src, src.Bounds().Min, xdraw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}

func depthToRGBA(dst []byte, depth []uint16) {
	for i, d := range depth {
		v := scaleTo255(d, maxDepthMM)
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = v, v, v, 255
	}
}

func infraredToRGBA(dst []byte, ir []uint16) {
	for i, d := range ir {
		v := uint8(255)
		if s := d / irScale; s < 255 {
			v = uint8(s)
		}
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = v, v, v, 255
	}
}

func bodyIndexToRGBA(dst []byte, index []uint8) {
	for i, b := range index {
		v := uint8(0)
		if b >= BodyCount {
			v = 255
		}
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = v, v, v, 255
	}
}

func scaleTo255(value uint16, max uint32) uint8 {
	if uint32(value) >= max {
		return 255
	}

	return uint8(uint32(value) * 255 / max)
}

package kinect

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/dusxproductions/kinect2share/coordmap"
)

const (
	syntheticBackgroundMM = 3500
	syntheticFocal        = 365.46
	syntheticTrackingBase = 72057594037927936
)

// Stick figure joint offsets in depth pixels from the body centre.
var syntheticPose = [JointCount][2]float64{
	JointSpineBase: {0, 40}, JointSpineMid: {0, 0}, JointNeck: {0, -60}, JointHead: {0, -80},
	JointShoulderLeft: {-25, -50}, JointElbowLeft: {-40, -20}, JointWristLeft: {-45, 10}, JointHandLeft: {-46, 18},
	JointShoulderRight: {25, -50}, JointElbowRight: {40, -20}, JointWristRight: {45, 10}, JointHandRight: {46, 18},
	JointHipLeft: {-12, 45}, JointKneeLeft: {-14, 90}, JointAnkleLeft: {-15, 130}, JointFootLeft: {-20, 135},
	JointHipRight: {12, 45}, JointKneeRight: {14, 90}, JointAnkleRight: {15, 130}, JointFootRight: {20, 135},
	JointSpineShoulder: {0, -50}, JointHandTipLeft: {-47, 26}, JointThumbLeft: {-40, 20},
	JointHandTipRight: {47, 26}, JointThumbRight: {40, 20},
}

type SyntheticOptions struct {
	// Bodies is the number of tracked bodies, clamped to BodyCount.
	Bodies int
	// WarmupFrames is the number of updates reported as not ready.
	WarmupFrames int
	// NoMapper makes coordinate mapper acquisition fail.
	NoMapper bool
	// Mapper selects the depth to color mapping, MapperCalibrated by default.
	Mapper MapperKind
}

type MapperKind string

const (
	// MapperCalibrated projects through the default sensor intrinsics.
	MapperCalibrated MapperKind = "calibrated"
	// MapperLinear stretches the depth raster over the color raster.
	MapperLinear MapperKind = "linear"
)

// Synthetic generates moving body silhouettes without a sensor attached.
type Synthetic struct {
	opts  SyntheticOptions
	frame Frame
	tick  int
}

func NewSynthetic(opts SyntheticOptions) *Synthetic {
	if opts.Bodies < 0 {
		opts.Bodies = 0
	}
	if opts.Bodies > BodyCount {
		opts.Bodies = BodyCount
	}

	return &Synthetic{opts: opts}
}

func (s *Synthetic) Frame() *Frame {
	return &s.frame
}

func (s *Synthetic) Close() error {
	return nil
}

func (s *Synthetic) CoordinateMapper() (coordmap.Mapper, error) {
	if s.opts.NoMapper {
		return nil, errors.New("synthetic source has no coordinate mapper")
	}

	switch s.opts.Mapper {
	case "", MapperCalibrated:
		return coordmap.NewCalibrated(coordmap.DefaultCalibration(), DepthWidth)
	case MapperLinear:
		return coordmap.Linear{
			Width:  DepthWidth,
			ScaleX: float32(ColorWidth) / DepthWidth,
			ScaleY: float32(ColorHeight) / DepthHeight,
		}, nil
	}
	return nil, fmt.Errorf("unknown coordinate mapper %q", s.opts.Mapper)
}

func (s *Synthetic) Update() error {
	s.tick++
	if s.tick <= s.opts.WarmupFrames {
		s.frame.Depth = s.frame.Depth[:0]
		s.frame.Infrared = s.frame.Infrared[:0]
		s.frame.BodyIndex = s.frame.BodyIndex[:0]
		s.frame.Color = nil
		s.frame.Bodies = s.frame.Bodies[:0]
		return ErrNotReady
	}

	s.allocate()
	s.renderColor()
	s.renderBodies()

	return nil
}

func (s *Synthetic) allocate() {
	if cap(s.frame.Depth) < DepthSize {
		s.frame.Depth = make([]uint16, DepthSize)
		s.frame.Infrared = make([]uint16, DepthSize)
		s.frame.BodyIndex = make([]uint8, DepthSize)
	}
	s.frame.Depth = s.frame.Depth[:DepthSize]
	s.frame.Infrared = s.frame.Infrared[:DepthSize]
	s.frame.BodyIndex = s.frame.BodyIndex[:DepthSize]

	if s.frame.Color == nil {
		s.frame.Color = image.NewRGBA(image.Rect(0, 0, ColorWidth, ColorHeight))
	}
}

func (s *Synthetic) renderColor() {
	pix := s.frame.Color.Pix
	shift := s.tick % 256

	for y := 0; y < ColorHeight; y++ {
		for x := 0; x < ColorWidth; x++ {
			o := y*s.frame.Color.Stride + x*4
			pix[o] = uint8((x*255/ColorWidth + shift) % 256)
			pix[o+1] = uint8(y * 255 / ColorHeight)
			pix[o+2] = 128
			pix[o+3] = 255
		}
	}
}

func (s *Synthetic) bodyCentre(slot int) (float64, float64) {
	phase := float64(s.tick)/30 + float64(slot)
	x := float64(DepthWidth)/float64(BodyCount+1)*float64(slot+1) + 20*math.Sin(phase)
	return x, DepthHeight / 2
}

func (s *Synthetic) renderBodies() {
	for i := range s.frame.Depth {
		s.frame.Depth[i] = syntheticBackgroundMM
		s.frame.BodyIndex[i] = BodyIndexBackground
	}

	if cap(s.frame.Bodies) < BodyCount {
		s.frame.Bodies = make([]Body, BodyCount)
	}
	s.frame.Bodies = s.frame.Bodies[:BodyCount]

	for slot := range s.frame.Bodies {
		tracked := slot < s.opts.Bodies
		body := &s.frame.Bodies[slot]
		*body = Body{
			ID:         slot,
			TrackingID: 0,
			Tracked:    tracked,
			Joints:     body.Joints[:0],
		}
		if !tracked {
			continue
		}

		body.TrackingID = syntheticTrackingBase + uint64(slot)
		body.LeftHandState = HandStateOpen
		body.RightHandState = HandStateClosed
		if (s.tick/30)%2 == 1 {
			body.LeftHandState, body.RightHandState = HandStateClosed, HandStateOpen
		}

		cx, cy := s.bodyCentre(slot)
		z := uint16(1500 + 300*slot)
		s.fillSilhouette(slot, cx, cy, z)
		body.Joints = appendPose(body.Joints, cx, cy, float64(z)/1000)
	}

	for i, d := range s.frame.Depth {
		s.frame.Infrared[i] = 65535 - d*8
	}
}

func (s *Synthetic) fillSilhouette(slot int, cx, cy float64, z uint16) {
	const rx, ry = 40.0, 140.0

	for y := int(cy - ry); y <= int(cy+ry); y++ {
		if y < 0 || y >= DepthHeight {
			continue
		}
		for x := int(cx - rx); x <= int(cx+rx); x++ {
			if x < 0 || x >= DepthWidth {
				continue
			}
			dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			if dx*dx+dy*dy > 1 {
				continue
			}
			i := y*DepthWidth + x
			if s.frame.Depth[i] < z {
				continue
			}
			s.frame.Depth[i] = z
			s.frame.BodyIndex[i] = uint8(slot)
		}
	}
}

func appendPose(joints []Joint, cx, cy, z float64) []Joint {
	for t, off := range syntheticPose {
		px, py := cx+off[0], cy+off[1]
		joints = append(joints, Joint{
			Type: JointType(t),
			World: Vec3{
				X: float32((px - DepthWidth/2) * z / syntheticFocal),
				Y: float32(-(py - DepthHeight/2) * z / syntheticFocal),
				Z: float32(z),
			},
			DepthX:        float32(px),
			DepthY:        float32(py),
			TrackingState: TrackingStateTracked,
		})
	}

	return joints
}

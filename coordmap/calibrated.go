package coordmap

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type Intrinsics struct {
	Fx, Fy float64
	Cx, Cy float64
}

// Calibration describes the depth (IR) camera, the color camera and the rigid
// transform from depth camera space to color camera space, in metres.
type Calibration struct {
	Depth       Intrinsics
	Color       Intrinsics
	Rotation    [9]float64
	Translation [3]float64
}

// DefaultCalibration returns typical Kinect v2 factory values. The color
// camera sits 52mm beside the IR camera.
func DefaultCalibration() Calibration {
	return Calibration{
		Depth: Intrinsics{Fx: 365.46, Fy: 365.46, Cx: 254.88, Cy: 205.40},
		Color: Intrinsics{Fx: 1081.37, Fy: 1081.37, Cx: 959.5, Cy: 539.5},
		Rotation: [9]float64{
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
		Translation: [3]float64{0.052, 0, 0},
	}
}

// Calibrated back-projects every depth pixel using its depth value and
// re-projects it into the color camera.
type Calibrated struct {
	depth, color Intrinsics
	width        int

	rotation    *mat.Dense
	translation *mat.VecDense
}

func NewCalibrated(c Calibration, depthWidth int) (*Calibrated, error) {
	if depthWidth <= 0 {
		return nil, fmt.Errorf("invalid depth width %d", depthWidth)
	}
	if c.Depth.Fx == 0 || c.Depth.Fy == 0 || c.Color.Fx == 0 || c.Color.Fy == 0 {
		return nil, fmt.Errorf("calibration focal lengths must be non-zero")
	}

	rot := c.Rotation
	trans := c.Translation

	return &Calibrated{
		depth:       c.Depth,
		color:       c.Color,
		width:       depthWidth,
		rotation:    mat.NewDense(3, 3, rot[:]),
		translation: mat.NewVecDense(3, trans[:]),
	}, nil
}

func (m *Calibrated) MapDepthFrameToColorSpace(depth []uint16, out []Point) error {
	if len(depth) != len(out) {
		return ErrSizeMismatch
	}

	p := mat.NewVecDense(3, nil)
	q := mat.NewVecDense(3, nil)

	for i, d := range depth {
		if d == 0 {
			out[i] = invalid
			continue
		}

		z := float64(d) / 1000
		x, y := float64(i%m.width), float64(i/m.width)

		p.SetVec(0, (x-m.depth.Cx)*z/m.depth.Fx)
		p.SetVec(1, (y-m.depth.Cy)*z/m.depth.Fy)
		p.SetVec(2, z)

		q.MulVec(m.rotation, p)
		q.AddVec(q, m.translation)

		qz := q.AtVec(2)
		if qz <= 0 {
			out[i] = invalid
			continue
		}

		out[i] = Point{
			X: float32(m.color.Fx*q.AtVec(0)/qz + m.color.Cx),
			Y: float32(m.color.Fy*q.AtVec(1)/qz + m.color.Cy),
		}
	}

	return nil
}

package coordmap

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingMapper struct{}

func (failingMapper) MapDepthFrameToColorSpace([]uint16, []Point) error {
	return errors.New("sensor gone")
}

func TestAdapterDegraded(t *testing.T) {
	t.Parallel()

	a := NewAdapter(nil, 4)
	assert.False(t, a.Available())

	_, err := a.Map(make([]uint16, 4))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAdapterSizeMismatch(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Linear{Width: 2, ScaleX: 1, ScaleY: 1}, 4)
	_, err := a.Map(make([]uint16, 3))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestAdapterWrapsMapperError(t *testing.T) {
	t.Parallel()

	a := NewAdapter(failingMapper{}, 4)
	_, err := a.Map(make([]uint16, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensor gone")
}

func TestAdapterReusesBuffer(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Linear{Width: 2, ScaleX: 2, ScaleY: 3, OffsetX: 1}, 4)

	first, err := a.Map(make([]uint16, 4))
	require.NoError(t, err)
	second, err := a.Map(make([]uint16, 4))
	require.NoError(t, err)

	require.Len(t, first, 4)
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, []Point{{1, 0}, {3, 0}, {1, 3}, {3, 3}}, second)
}

func TestCalibratedIdentity(t *testing.T) {
	t.Parallel()

	in := Intrinsics{Fx: 100, Fy: 100, Cx: 2, Cy: 1}
	m, err := NewCalibrated(Calibration{
		Depth:    in,
		Color:    in,
		Rotation: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}, 4)
	require.NoError(t, err)

	depth := []uint16{
		1000, 1500, 2000, 2500,
		3000, 0, 1000, 1000,
	}
	out := make([]Point, len(depth))
	require.NoError(t, m.MapDepthFrameToColorSpace(depth, out))

	for i, p := range out {
		if depth[i] == 0 {
			assert.True(t, math.IsInf(float64(p.X), -1), "zero depth maps nowhere")
			continue
		}
		assert.InDelta(t, float64(i%4), float64(p.X), 1e-4, "pixel %d x", i)
		assert.InDelta(t, float64(i/4), float64(p.Y), 1e-4, "pixel %d y", i)
	}
}

func TestCalibratedTranslationShiftsRight(t *testing.T) {
	t.Parallel()

	in := Intrinsics{Fx: 100, Fy: 100, Cx: 0, Cy: 0}
	m, err := NewCalibrated(Calibration{
		Depth:       in,
		Color:       in,
		Rotation:    [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		Translation: [3]float64{0.1, 0, 0},
	}, 1)
	require.NoError(t, err)

	out := make([]Point, 1)
	require.NoError(t, m.MapDepthFrameToColorSpace([]uint16{1000}, out))

	// 0.1m at 1m distance with f=100 is 10 pixels.
	assert.InDelta(t, 10, float64(out[0].X), 1e-4)
	assert.InDelta(t, 0, float64(out[0].Y), 1e-4)
}

func TestNewCalibratedValidates(t *testing.T) {
	t.Parallel()

	_, err := NewCalibrated(DefaultCalibration(), 0)
	assert.Error(t, err)

	_, err = NewCalibrated(Calibration{}, 512)
	assert.Error(t, err)

	_, err = NewCalibrated(DefaultCalibration(), 512)
	assert.NoError(t, err)
}

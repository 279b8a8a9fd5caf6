package kinect

import (
	"image"
	"image/color"
	"testing"

	"github.com/dusxproductions/kinect2share/coordmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJointNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 25, int(JointCount))
	assert.Equal(t, "SpineBase", JointSpineBase.String())
	assert.Equal(t, "Head", JointHead.String())
	assert.Equal(t, "ShldrL", JointShoulderLeft.String())
	assert.Equal(t, "SpineShldr", JointSpineShoulder.String())
	assert.Equal(t, "ThumbR", JointThumbRight.String())
	assert.Equal(t, "Unknown", JointCount.String())
	assert.Equal(t, "Unknown", JointType(-1).String())
}

func TestFrameComplete(t *testing.T) {
	t.Parallel()

	f := &Frame{}
	assert.False(t, f.Complete())

	f.Depth = make([]uint16, 4)
	f.BodyIndex = make([]uint8, 4)
	assert.False(t, f.Complete(), "color missing")

	f.Color = image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.True(t, f.Complete())
}

func TestFrameTrackedBodies(t *testing.T) {
	t.Parallel()

	f := &Frame{Bodies: []Body{{Tracked: true}, {}, {Tracked: true}, {}}}
	assert.Equal(t, 2, f.TrackedBodies())
}

func TestSyntheticWarmup(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(SyntheticOptions{Bodies: 2, WarmupFrames: 2})

	assert.ErrorIs(t, s.Update(), ErrNotReady)
	assert.False(t, s.Frame().Complete())
	assert.ErrorIs(t, s.Update(), ErrNotReady)

	require.NoError(t, s.Update())
	f := s.Frame()
	assert.True(t, f.Complete())
	assert.Len(t, f.Depth, DepthSize)
	assert.Len(t, f.BodyIndex, DepthSize)
	assert.Equal(t, image.Rect(0, 0, ColorWidth, ColorHeight), f.Color.Bounds())
	assert.Len(t, f.Bodies, BodyCount)
	assert.Equal(t, 2, f.TrackedBodies())
}

func TestSyntheticBodies(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(SyntheticOptions{Bodies: 1})
	require.NoError(t, s.Update())
	f := s.Frame()

	tracked := f.Bodies[0]
	assert.True(t, tracked.Tracked)
	assert.NotZero(t, tracked.TrackingID)
	assert.Len(t, tracked.Joints, int(JointCount))
	for i, j := range tracked.Joints {
		assert.Equal(t, JointType(i), j.Type, "joints ordered by type")
	}

	untracked := f.Bodies[1]
	assert.False(t, untracked.Tracked)
	assert.Empty(t, untracked.Joints)

	inside := 0
	for _, v := range f.BodyIndex {
		switch v {
		case 0:
			inside++
		case BodyIndexBackground:
		default:
			t.Fatalf("unexpected body index %d", v)
		}
	}
	assert.Positive(t, inside)
}

func TestSyntheticClampsBodies(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(SyntheticOptions{Bodies: 10})
	require.NoError(t, s.Update())
	assert.Equal(t, BodyCount, s.Frame().TrackedBodies())
}

func TestSyntheticMapper(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(SyntheticOptions{Bodies: BodyCount})
	require.NoError(t, s.Update())

	m, err := s.CoordinateMapper()
	require.NoError(t, err)
	require.IsType(t, &coordmap.Calibrated{}, m)

	f := s.Frame()
	out := make([]coordmap.Point, DepthSize)
	require.NoError(t, m.MapDepthFrameToColorSpace(f.Depth, out))

	inside := 0
	for i, idx := range f.BodyIndex {
		if idx == BodyIndexBackground {
			continue
		}
		p := out[i]
		if p.X < 0 || p.X >= ColorWidth || p.Y < 0 || p.Y >= ColorHeight {
			t.Fatalf("silhouette pixel %d maps outside the color frame: %+v", i, p)
		}
		inside++
	}
	assert.Positive(t, inside)

	lin, err := NewSynthetic(SyntheticOptions{Mapper: MapperLinear}).CoordinateMapper()
	require.NoError(t, err)
	assert.IsType(t, coordmap.Linear{}, lin)

	_, err = NewSynthetic(SyntheticOptions{Mapper: "fisheye"}).CoordinateMapper()
	assert.Error(t, err)

	_, err = NewSynthetic(SyntheticOptions{NoMapper: true}).CoordinateMapper()
	assert.Error(t, err)
}

func TestBodyJointLookup(t *testing.T) {
	t.Parallel()

	b := Body{Joints: []Joint{{Type: JointHead, World: Vec3{X: 1}}}}
	j, ok := b.Joint(JointHead)
	assert.True(t, ok)
	assert.Equal(t, float32(1), j.World.X)

	_, ok = b.Joint(JointFootLeft)
	assert.False(t, ok)
}

func TestBodyIndexStreamDraw(t *testing.T) {
	t.Parallel()

	f := &Frame{BodyIndex: make([]uint8, DepthSize)}
	for i := range f.BodyIndex {
		f.BodyIndex[i] = BodyIndexBackground
	}
	f.BodyIndex[0] = 3

	dst := image.NewRGBA(image.Rect(0, 0, DepthWidth, DepthHeight))
	NewBodyIndexStream(f).Draw(dst, dst.Bounds())

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, dst.RGBAAt(1, 0))
}

func TestDepthStreamDraw(t *testing.T) {
	t.Parallel()

	f := &Frame{Depth: make([]uint16, DepthSize)}
	f.Depth[1] = maxDepthMM
	f.Depth[2] = 60000

	dst := image.NewRGBA(image.Rect(0, 0, DepthWidth, DepthHeight))
	s := NewDepthStream(f)
	s.Draw(dst, dst.Bounds())

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, dst.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, dst.RGBAAt(2, 0))
	assert.Equal(t, DepthWidth, s.Width())
	assert.Equal(t, DepthHeight, s.Height())
}

func TestStreamsSkipEmptyFrames(t *testing.T) {
	t.Parallel()

	f := &Frame{}
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for _, s := range []Drawable{
		NewDepthStream(f),
		NewInfraredStream(f),
		NewBodyIndexStream(f),
		NewColorStream(f),
	} {
		s.Draw(dst, dst.Bounds())
	}

	for _, b := range dst.Pix {
		require.Zero(t, b)
	}
}

func TestImageStreamScales(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 200
	}

	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s := NewImageStream(src)
	s.Draw(dst, dst.Bounds())

	assert.Equal(t, 4, s.Width())
	got := dst.RGBAAt(1, 1)
	for _, c := range []uint8{got.R, got.G, got.B, got.A} {
		assert.InDelta(t, 200, int(c), 1)
	}
}

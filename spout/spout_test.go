package spout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tex(v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestHubCountsWithoutReceivers(t *testing.T) {
	t.Parallel()

	h := NewHub()
	require.NoError(t, h.SendTexture("kv2_color", tex(1)))
	require.NoError(t, h.SendTexture("kv2_color", tex(1)))

	assert.Equal(t, uint64(2), h.Sent("kv2_color"))
	assert.Zero(t, h.Sent("kv2_depth"))
}

func TestHubDeliversLatestCopy(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ch := h.Receive("kv2_keyed")

	src := tex(1)
	require.NoError(t, h.SendTexture("kv2_keyed", src))
	require.NoError(t, h.SendTexture("kv2_keyed", tex(2)))

	got := <-ch
	assert.Equal(t, uint8(2), got.Pix[0], "stale texture replaced by the latest")

	require.NoError(t, h.SendTexture("kv2_keyed", src))
	got = <-ch
	src.Pix[0] = 99
	assert.Equal(t, uint8(1), got.Pix[0], "receivers get a copy")
}

func TestHubRoutesByName(t *testing.T) {
	t.Parallel()

	h := NewHub()
	depth := h.Receive("kv2_depth")

	require.NoError(t, h.SendTexture("kv2_color", tex(1)))
	select {
	case <-depth:
		t.Fatal("depth receiver got a color texture")
	default:
	}
}

func TestHubClose(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ch := h.Receive("kv2_cutout")
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, ok := <-ch
	assert.False(t, ok)

	require.NoError(t, h.SendTexture("kv2_cutout", tex(1)))
	_, ok = <-h.Receive("kv2_cutout")
	assert.False(t, ok)
}

package skeleton

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusxproductions/kinect2share/kinect"
)

func exampleBody() kinect.Body {
	return kinect.Body{
		ID:             7,
		TrackingID:     7,
		Tracked:        true,
		LeftHandState:  kinect.HandStateOpen,
		RightHandState: kinect.HandStateNotTracked,
		Joints: []kinect.Joint{
			{Type: kinect.JointSpineBase, World: kinect.Vec3{X: 0.1, Y: -0.2, Z: 1.5}},
			{Type: kinect.JointHead, World: kinect.Vec3{X: 0.0, Y: 0.3, Z: 1.6}},
		},
	}
}

func TestBodyJSONExact(t *testing.T) {
	t.Parallel()

	want := `{"b7": "[{\"tracked\":1},{\"ID\":7},{\"RH-st8\":1},{\"LH-st8\":2},` +
		`{\"j\":\"SpineBase\",\"x\":0.1,\"y\":-0.2,\"z\":1.5},` +
		`{\"j\":\"Head\",\"x\":0,\"y\":0.3,\"z\":1.6}]"}`

	assert.Equal(t, want, BodyJSON(exampleBody()))
}

func TestBodyJSONRoundTrip(t *testing.T) {
	t.Parallel()

	var outer map[string]string
	require.NoError(t, json.Unmarshal([]byte(BodyJSON(exampleBody())), &outer))
	require.Contains(t, outer, "b7")

	var inner []map[string]any
	require.NoError(t, json.Unmarshal([]byte(outer["b7"]), &inner))

	want := []map[string]any{
		{"tracked": 1.0},
		{"ID": 7.0},
		{"RH-st8": 1.0},
		{"LH-st8": 2.0},
		{"j": "SpineBase", "x": 0.1, "y": -0.2, "z": 1.5},
		{"j": "Head", "x": 0.0, "y": 0.3, "z": 1.6},
	}
	if diff := cmp.Diff(want, inner); diff != "" {
		t.Errorf("unexpected inner array (-want +got):\n%s", diff)
	}
}

func TestBodyJSONUntrackedHasNoJoints(t *testing.T) {
	t.Parallel()

	b := exampleBody()
	b.ID = 3
	b.Tracked = false
	b.TrackingID = 0

	assert.Equal(t,
		`{"b3": "[{\"tracked\":0},{\"ID\":0},{\"RH-st8\":1},{\"LH-st8\":2}]"}`,
		BodyJSON(b))
}

func TestBodyJSONLargeTrackingID(t *testing.T) {
	t.Parallel()

	b := kinect.Body{ID: 0, TrackingID: 72057594037927936, Tracked: true}
	assert.Contains(t, BodyJSON(b), `{\"ID\":72057594037927936}`)
}

func TestJSONMessages(t *testing.T) {
	t.Parallel()

	msgs := JSONMessages([]kinect.Body{exampleBody(), {ID: 2}})
	require.Len(t, msgs, 2)

	assert.Equal(t, "/kV2/body/7", msgs[0].Address)
	require.Len(t, msgs[0].Arguments, 1)
	assert.Equal(t, BodyJSON(exampleBody()), msgs[0].Arguments[0])
	assert.Equal(t, "/kV2/body/2", msgs[1].Address)
}

func TestFlatMessages(t *testing.T) {
	t.Parallel()

	msgs := FlatMessages([]kinect.Body{exampleBody()})
	require.Len(t, msgs, 2)

	assert.Equal(t, "/7/SpineBase", msgs[0].Address)
	assert.Equal(t, []any{float32(0.1), float32(-0.2), float32(1.5), "SpineBase"}, msgs[0].Arguments)
	assert.Equal(t, "/7/Head", msgs[1].Address)
	assert.Equal(t, []any{float32(0), float32(0.3), float32(1.6), "Head"}, msgs[1].Arguments)
}

func TestMessagesModes(t *testing.T) {
	t.Parallel()

	bodies := []kinect.Body{exampleBody(), {ID: 1}}

	jsonMsgs := Messages(bodies, true)
	require.Len(t, jsonMsgs, 2, "untracked bodies still report status in JSON mode")
	assert.Equal(t, "/kV2/body/7", jsonMsgs[0].Address)

	flat := Messages(bodies, false)
	require.Len(t, flat, 2, "untracked bodies carry no joints")
	assert.Equal(t, "/7/SpineBase", flat[0].Address)
}

func TestMessagesNothingTracked(t *testing.T) {
	t.Parallel()

	bodies := make([]kinect.Body, kinect.BodyCount)
	for i := range bodies {
		bodies[i].ID = i
	}

	assert.Empty(t, Messages(bodies, true))
	assert.Empty(t, Messages(bodies, false))
	assert.Empty(t, Messages(nil, true))
}

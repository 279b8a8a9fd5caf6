// Package skeleton serializes tracked bodies into OSC messages, either one
// message per joint or one JSON payload per body.
package skeleton

import (
	"strconv"

	"github.com/hypebeast/go-osc/osc"

	"github.com/dusxproductions/kinect2share/kinect"
)

const bodyAddressPrefix = "/kV2/body/"

// Messages serializes bodies in JSON or flat mode. Nothing is emitted when no
// body is tracked.
func Messages(bodies []kinect.Body, jsonMode bool) []*osc.Message {
	tracked := false
	for _, b := range bodies {
		if b.Tracked {
			tracked = true
			break
		}
	}
	if !tracked {
		return nil
	}

	if jsonMode {
		return JSONMessages(bodies)
	}
	return FlatMessages(bodies)
}

// FlatMessages emits /{bodyId}/{joint} with x, y, z and the joint name for
// every joint of every body.
func FlatMessages(bodies []kinect.Body) []*osc.Message {
	var msgs []*osc.Message
	for _, b := range bodies {
		prefix := "/" + strconv.Itoa(b.ID) + "/"
		for _, j := range b.Joints {
			name := j.Type.String()
			msgs = append(msgs, osc.NewMessage(prefix+name, j.World.X, j.World.Y, j.World.Z, name))
		}
	}

	return msgs
}

// JSONMessages emits one /kV2/body/{bodyId} message per body carrying
// BodyJSON.
func JSONMessages(bodies []kinect.Body) []*osc.Message {
	msgs := make([]*osc.Message, 0, len(bodies))
	for _, b := range bodies {
		msgs = append(msgs, osc.NewMessage(bodyAddressPrefix+strconv.Itoa(b.ID), BodyJSON(b)))
	}

	return msgs
}

// BodyJSON renders {"b<id>": "<array>"} where the array is itself JSON
// carried as an escaped string: tracked, ID, RH-st8 and LH-st8 objects in that
// order, then one object per joint. Untracked bodies carry no joints.
func BodyJSON(b kinect.Body) string {
	tracked := Int(0)
	if b.Tracked {
		tracked = 1
	}

	data := Array{
		Object{{"tracked", tracked}},
		Object{{"ID", Uint(b.TrackingID)}},
		Object{{"RH-st8", Int(b.RightHandState)}},
		Object{{"LH-st8", Int(b.LeftHandState)}},
	}

	if b.Tracked {
		for _, j := range b.Joints {
			data = append(data, Object{
				{"j", String(j.Type.String())},
				{"x", Float(j.World.X)},
				{"y", Float(j.World.Y)},
				{"z", Float(j.World.Z)},
			})
		}
	}

	return Marshal(LooseObject{
		{"b" + strconv.Itoa(b.ID), String(Marshal(data))},
	})
}

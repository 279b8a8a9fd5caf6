package kinect

type JointType int

const (
	JointSpineBase JointType = iota
	JointSpineMid
	JointNeck
	JointHead
	JointShoulderLeft
	JointElbowLeft
	JointWristLeft
	JointHandLeft
	JointShoulderRight
	JointElbowRight
	JointWristRight
	JointHandRight
	JointHipLeft
	JointKneeLeft
	JointAnkleLeft
	JointFootLeft
	JointHipRight
	JointKneeRight
	JointAnkleRight
	JointFootRight
	JointSpineShoulder
	JointHandTipLeft
	JointThumbLeft
	JointHandTipRight
	JointThumbRight

	JointCount
)

// Short joint names keep OSC packets small.
var jointNames = [JointCount]string{
	"SpineBase", "SpineMid", "Neck", "Head",
	"ShldrL", "ElbowL", "WristL", "HandL",
	"ShldrR", "ElbowR", "WristR", "HandR",
	"HipL", "KneeL", "AnkleL", "FootL",
	"HipR", "KneeR", "AnkleR", "FootR",
	"SpineShldr", "HandTipL", "ThumbL", "HandTipR", "ThumbR",
}

func (j JointType) String() string {
	if j < 0 || j >= JointCount {
		return "Unknown"
	}

	return jointNames[j]
}

type HandState int

const (
	HandStateUnknown HandState = iota
	HandStateNotTracked
	HandStateOpen
	HandStateClosed
	HandStateLasso
)

type TrackingState int

const (
	TrackingStateNotTracked TrackingState = iota
	TrackingStateInferred
	TrackingStateTracked
)

type Vec3 struct {
	X, Y, Z float32
}

type Joint struct {
	Type          JointType
	World         Vec3
	DepthX        float32
	DepthY        float32
	TrackingState TrackingState
}

// Body is rebuilt by the source every frame. Joints are ordered by joint type
// and empty for untracked bodies.
type Body struct {
	ID             int
	TrackingID     uint64
	Tracked        bool
	LeftHandState  HandState
	RightHandState HandState
	Joints         []Joint
}

// Bones lists the joint pairs drawn by the skeleton overlay.
var Bones = [][2]JointType{
	{JointSpineBase, JointSpineMid},
	{JointSpineMid, JointSpineShoulder},
	{JointSpineShoulder, JointNeck},
	{JointNeck, JointHead},

	{JointSpineShoulder, JointShoulderLeft},
	{JointShoulderLeft, JointElbowLeft},
	{JointElbowLeft, JointWristLeft},
	{JointWristLeft, JointHandLeft},
	{JointHandLeft, JointHandTipLeft},
	{JointWristLeft, JointThumbLeft},

	{JointSpineShoulder, JointShoulderRight},
	{JointShoulderRight, JointElbowRight},
	{JointElbowRight, JointWristRight},
	{JointWristRight, JointHandRight},
	{JointHandRight, JointHandTipRight},
	{JointWristRight, JointThumbRight},

	{JointSpineBase, JointHipLeft},
	{JointHipLeft, JointKneeLeft},
	{JointKneeLeft, JointAnkleLeft},
	{JointAnkleLeft, JointFootLeft},

	{JointSpineBase, JointHipRight},
	{JointHipRight, JointKneeRight},
	{JointKneeRight, JointAnkleRight},
	{JointAnkleRight, JointFootRight},
}

// Joint returns the joint of the given type, if the body carries it.
func (b *Body) Joint(t JointType) (Joint, bool) {
	for _, j := range b.Joints {
		if j.Type == t {
			return j, true
		}
	}

	return Joint{}, false
}

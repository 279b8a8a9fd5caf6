package control

import "sync"

// Target is a setting that can be flipped by a control input.
type Target int

const (
	TargetSpout Target = iota
	TargetNDI
	TargetNDIActive
	TargetJSON
	TargetPBO
	TargetAsync
)

// Toggle addresses one boolean setting. Stream is only used by TargetSpout
// and TargetNDI.
type Toggle struct {
	Target Target
	Stream Stream
}

// Snapshot is the immutable view of the settings used for one frame.
type Snapshot struct {
	OSC   OSCSettings
	Spout StreamToggles
	// NDI holds the effective per-stream switches: false for every stream
	// unless NDI was active at startup and still is.
	NDI                StreamToggles
	NDIActive          bool
	NDIRestartRequired bool
	PBO                bool
	Async              bool
}

// KeyedNeeded reports whether any sink consumes the keyed stream this frame.
func (s Snapshot) KeyedNeeded() bool {
	return s.Spout.Keyed || s.NDI.Keyed
}

// State guards the settings shared between the frame loop and the control
// inputs.
type State struct {
	mu       sync.Mutex
	settings Settings

	// ndiAtStartup locks NDI off for the whole session when the master
	// switch was off at launch.
	ndiAtStartup bool
}

func NewState(s Settings) *State {
	return &State{
		settings:     s,
		ndiAtStartup: s.NDI.Active,
	}
}

// Settings returns a copy of the current settings, as they should be
// persisted.
func (st *State) Settings() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.settings
}

func (st *State) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.settings
	active := st.ndiAtStartup && s.NDI.Active

	snap := Snapshot{
		OSC:                s.OSC,
		Spout:              s.Spout,
		NDIActive:          active,
		NDIRestartRequired: s.NDI.Active && !st.ndiAtStartup,
		PBO:                s.NDI.PBO,
		Async:              s.NDI.Async,
	}
	if active {
		snap.NDI = s.NDI.Streams
	}

	return snap
}

func (st *State) Get(t Toggle) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	return *st.field(t)
}

func (st *State) Set(t Toggle, on bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	*st.field(t) = on
}

// Toggle flips a setting and returns its new value.
func (st *State) Toggle(t Toggle) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	f := st.field(t)
	*f = !*f
	return *f
}

func (st *State) SetOSC(host string, outPort, inPort int) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.settings.OSC.Host = host
	st.settings.OSC.OutPort = outPort
	st.settings.OSC.InPort = inPort
}

func (st *State) field(t Toggle) *bool {
	s := &st.settings
	switch t.Target {
	case TargetSpout:
		return streamField(&s.Spout, t.Stream)
	case TargetNDI:
		return streamField(&s.NDI.Streams, t.Stream)
	case TargetNDIActive:
		return &s.NDI.Active
	case TargetJSON:
		return &s.OSC.JSON
	case TargetPBO:
		return &s.NDI.PBO
	case TargetAsync:
		return &s.NDI.Async
	}
	// Unknown targets write to a throwaway value.
	return new(bool)
}

func streamField(t *StreamToggles, s Stream) *bool {
	switch s {
	case StreamColor:
		return &t.Color
	case StreamDepth:
		return &t.Depth
	case StreamCutout:
		return &t.Cutout
	case StreamKeyed:
		return &t.Keyed
	}
	return new(bool)
}

// Package control holds the runtime settings that decide which streams are
// published and where OSC traffic goes.
package control

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "settings.yaml"

// Stream identifies one of the published image streams.
type Stream int

const (
	StreamColor Stream = iota
	StreamDepth
	StreamCutout
	StreamKeyed

	StreamCount = 4
)

var streamNames = [StreamCount]string{"color", "depth", "cutout", "keyed"}

func (s Stream) String() string {
	if s < 0 || int(s) >= StreamCount {
		return fmt.Sprintf("Stream(%d)", int(s))
	}
	return streamNames[s]
}

// ParseStream maps a stream name as used in OSC addresses to a Stream.
func ParseStream(name string) (Stream, error) {
	for i, n := range streamNames {
		if n == name {
			return Stream(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stream %q", name)
}

// StreamToggles enables or disables a sink per stream.
type StreamToggles struct {
	Color  bool `yaml:"color"`
	Depth  bool `yaml:"depth"`
	Cutout bool `yaml:"cutout"`
	Keyed  bool `yaml:"keyed"`
}

func (t StreamToggles) Get(s Stream) bool {
	return *streamField(&t, s)
}

func (t *StreamToggles) Set(s Stream, on bool) {
	*streamField(t, s) = on
}

// Any reports whether at least one stream is enabled.
func (t StreamToggles) Any() bool {
	return t.Color || t.Depth || t.Cutout || t.Keyed
}

type OSCSettings struct {
	Host    string `yaml:"host"`
	OutPort int    `yaml:"out_port"`
	InPort  int    `yaml:"in_port"`
	// JSON sends one JSON document per body instead of one message per joint.
	JSON bool `yaml:"json"`
}

type NDISettings struct {
	// Active is the master switch. It only takes effect at startup.
	Active  bool          `yaml:"active"`
	Streams StreamToggles `yaml:"streams"`
	// PBO reads pixels back through a one frame delayed transfer pair.
	PBO   bool `yaml:"pbo"`
	Async bool `yaml:"async"`
}

type Settings struct {
	OSC   OSCSettings   `yaml:"osc"`
	Spout StreamToggles `yaml:"spout"`
	NDI   NDISettings   `yaml:"ndi"`
}

func DefaultSettings() Settings {
	all := StreamToggles{Color: true, Depth: true, Cutout: true, Keyed: true}

	return Settings{
		OSC: OSCSettings{
			Host:    "localhost",
			OutPort: 1234,
			InPort:  4321,
			JSON:    true,
		},
		Spout: all,
		NDI: NDISettings{
			Active:  true,
			Streams: all,
			PBO:     true,
			Async:   false,
		},
	}
}

func (s Settings) Validate() error {
	if s.OSC.Host == "" {
		return errors.New("osc host is empty")
	}
	if s.OSC.OutPort <= 0 || s.OSC.OutPort > 0xffff {
		return fmt.Errorf("osc out port %d out of range", s.OSC.OutPort)
	}
	if s.OSC.InPort <= 0 || s.OSC.InPort > 0xffff {
		return fmt.Errorf("osc in port %d out of range", s.OSC.InPort)
	}
	return nil
}

// Load reads settings from path. A missing file yields the defaults, and keys
// absent from the file keep their default value.
func Load(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("could not read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("could not parse settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return DefaultSettings(), fmt.Errorf("invalid settings: %w", err)
	}

	return s, nil
}

func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write settings file: %w", err)
	}

	return nil
}

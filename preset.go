package siggen

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a saved set of channel configurations, loaded from YAML:
//
//	channels:
//	  - shape: square
//	    duty: 0.25
//	    amplitude_db: -6
//	    frequency: 440
//	    phase_degrees: 90
type Preset struct {
	Channels []PresetChannel `yaml:"channels"`
}

// PresetChannel is the YAML form of ChannelParams. Omitted fields take the
// ChannelParams defaults.
type PresetChannel struct {
	Shape        string   `yaml:"shape"`
	Duty         *float64 `yaml:"duty,omitempty"`
	AmplitudeDB  *float64 `yaml:"amplitude_db,omitempty"`
	Frequency    *float64 `yaml:"frequency,omitempty"`
	PhaseDegrees *float64 `yaml:"phase_degrees,omitempty"`
}

// Params converts the entry into ChannelParams.
func (c PresetChannel) Params() (ChannelParams, error) {
	p := DefaultChannelParams()

	if strings.TrimSpace(c.Shape) != "" {
		duty := defaultSquareDuty
		if c.Duty != nil {
			duty = *c.Duty
		}
		shape, err := ParseShape(c.Shape, duty)
		if err != nil {
			return ChannelParams{}, err
		}
		p.Shape = shape
	}
	if c.AmplitudeDB != nil {
		p.AmplitudeDB = *c.AmplitudeDB
	}
	if c.Frequency != nil {
		p.Frequency = *c.Frequency
	}
	if c.PhaseDegrees != nil {
		p.PhaseDegrees = *c.PhaseDegrees
	}
	return p, nil
}

// PresetChannelFrom builds the YAML form of p.
func PresetChannelFrom(p ChannelParams) PresetChannel {
	c := PresetChannel{
		Shape:        strings.ToLower(p.Shape.Name()),
		AmplitudeDB:  &p.AmplitudeDB,
		Frequency:    &p.Frequency,
		PhaseDegrees: &p.PhaseDegrees,
	}
	if p.Shape.Kind == ShapeSquare {
		c.Duty = &p.Shape.Duty
	}
	return c
}

// Messages returns one SetParams message per channel, in index order.
func (p *Preset) Messages() ([]Message, error) {
	msgs := make([]Message, 0, len(p.Channels))
	for i, c := range p.Channels {
		params, err := c.Params()
		if err != nil {
			return nil, fmt.Errorf("preset channel %d: %w", i, err)
		}
		msgs = append(msgs, SetParamsMessage(i, params))
	}
	return msgs, nil
}

// LoadPreset decodes a YAML preset from r.
func LoadPreset(r io.Reader) (*Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return &p, nil
		}
		return nil, fmt.Errorf("decode preset: %w", err)
	}

	// Validate shapes up front so a bad file fails before any audio starts.
	if _, err := p.Messages(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPresetFile reads a YAML preset from path.
func LoadPresetFile(path string) (*Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open preset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadPreset(f)
}

// WritePreset encodes p as YAML.
func WritePreset(w io.Writer, p *Preset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	return enc.Close()
}

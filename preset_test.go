package siggen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stereoPreset = `
channels:
  - shape: square
    duty: 0.25
    amplitude_db: -6
    frequency: 440
    phase_degrees: 90
  - shape: Triangle
    frequency: 220
  - {}
`

func TestLoadPreset(t *testing.T) {
	p, err := LoadPreset(strings.NewReader(stereoPreset))
	require.NoError(t, err)
	require.Len(t, p.Channels, 3)

	msgs, err := p.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, SetParamsMessage(0, ChannelParams{
		Shape: Square(0.25), AmplitudeDB: -6, Frequency: 440, PhaseDegrees: 90,
	}), msgs[0])

	want := DefaultChannelParams()
	want.Shape = Triangle()
	want.Frequency = 220
	assert.Equal(t, SetParamsMessage(1, want), msgs[1])

	assert.Equal(t, SetParamsMessage(2, DefaultChannelParams()), msgs[2])
}

func TestLoadPreset_SquareWithoutDuty(t *testing.T) {
	p, err := LoadPreset(strings.NewReader("channels:\n  - shape: square\n"))
	require.NoError(t, err)

	params, err := p.Channels[0].Params()
	require.NoError(t, err)
	assert.Equal(t, Square(defaultSquareDuty), params.Shape)
}

func TestLoadPreset_ExplicitZeroDuty(t *testing.T) {
	p, err := LoadPreset(strings.NewReader("channels:\n  - shape: square\n    duty: 0\n"))
	require.NoError(t, err)

	params, err := p.Channels[0].Params()
	require.NoError(t, err)
	assert.Equal(t, Square(0), params.Shape)
}

func TestLoadPreset_Empty(t *testing.T) {
	p, err := LoadPreset(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, p.Channels)
}

func TestLoadPreset_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown shape", "channels:\n  - shape: noise\n"},
		{"unknown field", "channels:\n  - shape: sine\n    volume: 3\n"},
		{"wrong type", "channels:\n  - frequency: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPreset(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}

	_, err := LoadPreset(strings.NewReader("channels:\n  - shape: noise\n"))
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestPreset_WriteThenLoad(t *testing.T) {
	params := []ChannelParams{
		{Shape: Sine(), AmplitudeDB: -3, Frequency: 1000, PhaseDegrees: 0},
		{Shape: Square(0.1), AmplitudeDB: -12, Frequency: 50, PhaseDegrees: 180},
		{Shape: Square(0), AmplitudeDB: -6, Frequency: 100, PhaseDegrees: 0},
		{Shape: Square(1), AmplitudeDB: -6, Frequency: 100, PhaseDegrees: 0},
		{Shape: Sawtooth(), AmplitudeDB: 0, Frequency: 7.5, PhaseDegrees: -90},
	}

	var p Preset
	for _, cp := range params {
		p.Channels = append(p.Channels, PresetChannelFrom(cp))
	}

	var buf bytes.Buffer
	require.NoError(t, WritePreset(&buf, &p))
	assert.Contains(t, buf.String(), "amplitude_db: -12")
	assert.Contains(t, buf.String(), "duty: 0\n")

	loaded, err := LoadPreset(&buf)
	require.NoError(t, err)
	msgs, err := loaded.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, len(params))
	for i, cp := range params {
		assert.Equal(t, cp, msgs[i].Params, "channel %d", i)
	}
}

func TestLoadPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(stereoPreset), 0o600))

	p, err := LoadPresetFile(path)
	require.NoError(t, err)
	assert.Len(t, p.Channels, 3)

	_, err = LoadPresetFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siggen "github.com/tphakala/go-signal-generator"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "siggen "+version)
	assert.Contains(t, out, "SIMD:")
}

func TestRenderCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	out, err := execute(t, "render", "-o", path,
		"--channels", "1", "--rate", "8000", "--duration", "1s",
		"--freq", "500", "--db", "-6", "--bits", "24")
	require.NoError(t, err)

	assert.Contains(t, out, "Rendered tone.wav")
	assert.Contains(t, out, "8000 Hz, 1 channels, 24-bit")
	assert.Contains(t, out, "8000 frames")

	reports, err := analyzeWAV(path)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 8000, reports[0].Samples)
	assert.InDelta(t, -6, reports[0].PeakDB(), 0.05)
	assert.InDelta(t, 500, reports[0].DominantHz, 1)
}

func TestRenderCmd_Preset(t *testing.T) {
	dir := t.TempDir()
	preset := filepath.Join(dir, "preset.yaml")
	require.NoError(t, os.WriteFile(preset, []byte(`channels:
  - shape: sine
    frequency: 250
  - shape: square
    amplitude_db: -12
    frequency: 100
`), 0o600))

	path := filepath.Join(dir, "out.wav")
	_, err := execute(t, "render", "-o", path, "--preset", preset,
		"--channels", "2", "--rate", "8000", "--duration", "500ms", "--analyze=false")
	require.NoError(t, err)

	reports, err := analyzeWAV(path)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.InDelta(t, 250, reports[0].DominantHz, 1)
	assert.InDelta(t, -12, reports[1].PeakDB(), 0.05)
	assert.InDelta(t, reports[1].Peak, reports[1].RMS, 1e-3)
}

func TestRenderCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"missing output", []string{"render"}},
		{"bad bits", []string{"render", "-o", filepath.Join(dir, "a.wav"), "--bits", "8"}},
		{"bad shape", []string{"render", "-o", filepath.Join(dir, "b.wav"), "--shape", "noise"}},
		{"bad transport", []string{"render", "-o", filepath.Join(dir, "c.wav"), "--transport", "udp"}},
		{"no frames", []string{"render", "-o", filepath.Join(dir, "d.wav"), "--duration", "0s"}},
		{"missing preset", []string{"render", "-o", filepath.Join(dir, "e.wav"), "--preset", filepath.Join(dir, "none.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRenderCmd_WireTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wire.wav")
	_, err := execute(t, "render", "-o", path, "--transport", "wire",
		"--channels", "1", "--rate", "8000", "--duration", "250ms",
		"--shape", "square", "--duty", "1", "--analyze=false")
	require.NoError(t, err)

	reports, err := analyzeWAV(path)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.InDelta(t, 0, reports[0].PeakDB(), 0.01)
	assert.InDelta(t, 1, reports[0].RMS, 1e-3)
}

// parseSignal parses args into a bare command carrying the signal flags.
func parseSignal(t *testing.T, args ...string) (*cobra.Command, *signalOptions) {
	t.Helper()
	opts := &signalOptions{}
	cmd := &cobra.Command{Use: "test"}
	opts.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, opts
}

func TestSignalOptions_Messages(t *testing.T) {
	t.Run("defaults send nothing", func(t *testing.T) {
		cmd, opts := parseSignal(t)
		msgs, channels, err := opts.messages(cmd)
		require.NoError(t, err)
		assert.Empty(t, msgs)
		assert.Equal(t, defaultChannels, channels)
	})

	t.Run("overrides target channel 0", func(t *testing.T) {
		cmd, opts := parseSignal(t, "--shape", "square", "--duty", "0.25", "--freq", "50", "--db", "-3", "--phase", "90")
		msgs, _, err := opts.messages(cmd)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, siggen.SetParamsMessage(0, siggen.ChannelParams{
			Shape: siggen.Square(0.25), AmplitudeDB: -3, Frequency: 50, PhaseDegrees: 90,
		}), msgs[0])
	})

	t.Run("duty keeps the default shape name", func(t *testing.T) {
		cmd, opts := parseSignal(t, "--duty", "0.1")
		msgs, _, err := opts.messages(cmd)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, siggen.Sine(), msgs[0].Params.Shape)
	})

	t.Run("zero duty is kept", func(t *testing.T) {
		cmd, opts := parseSignal(t, "--shape", "square", "--duty", "0")
		msgs, _, err := opts.messages(cmd)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, siggen.Square(0), msgs[0].Params.Shape)
	})

	t.Run("shape override keeps preset duty", func(t *testing.T) {
		preset := filepath.Join(t.TempDir(), "p.yaml")
		require.NoError(t, os.WriteFile(preset, []byte("channels: [{shape: square, duty: 0.2}]\n"), 0o600))

		cmd, opts := parseSignal(t, "--preset", preset, "--shape", "pulse")
		msgs, _, err := opts.messages(cmd)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, siggen.Square(0.2), msgs[0].Params.Shape)
	})

	t.Run("preset widens channel count", func(t *testing.T) {
		preset := filepath.Join(t.TempDir(), "p.yaml")
		require.NoError(t, os.WriteFile(preset, []byte("channels: [{}, {}, {frequency: 10}]\n"), 0o600))

		cmd, opts := parseSignal(t, "--preset", preset, "--freq", "20")
		msgs, channels, err := opts.messages(cmd)
		require.NoError(t, err)
		assert.Equal(t, 3, channels)
		require.Len(t, msgs, 3)
		assert.Equal(t, 20.0, msgs[0].Params.Frequency)
		assert.Equal(t, 10.0, msgs[2].Params.Frequency)

		cmd, opts = parseSignal(t, "--preset", preset, "-c", "1")
		_, channels, err = opts.messages(cmd)
		require.NoError(t, err)
		assert.Equal(t, 1, channels)
	})

	t.Run("no channels", func(t *testing.T) {
		cmd, opts := parseSignal(t, "-c", "0")
		_, _, err := opts.messages(cmd)
		assert.Error(t, err)
	})
}

func TestSignalOptions_EngineConfig(t *testing.T) {
	root := &rootOptions{stderr: &bytes.Buffer{}}
	opts := &signalOptions{rate: 44100, transport: "wire"}

	cfg, err := opts.engineConfig(root, 500)
	require.NoError(t, err)
	assert.Equal(t, siggen.Wire, cfg.Transport)
	assert.Equal(t, 44100.0, cfg.DefaultSampleRate)
	assert.Equal(t, 500, cfg.QueueCapacity)

	opts.rate = 0
	_, err = opts.engineConfig(root, 0)
	assert.ErrorIs(t, err, siggen.ErrInvalidConfig)
}

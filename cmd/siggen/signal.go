package main

import (
	"fmt"

	"github.com/spf13/cobra"

	siggen "github.com/tphakala/go-signal-generator"
)

const (
	defaultChannels = 2
	defaultRate     = 48000
)

// signalOptions describe the initial channel setup shared by all commands.
type signalOptions struct {
	preset    string
	channels  int
	rate      int
	transport string

	// Channel 0 overrides.
	shape string
	duty  float64
	freq  float64
	db    float64
	phase float64
}

func (o *signalOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.preset, "preset", "", "YAML preset with per-channel settings")
	f.IntVarP(&o.channels, "channels", "c", defaultChannels, "Number of output channels")
	f.IntVarP(&o.rate, "rate", "r", defaultRate, "Sample rate in Hz")
	f.StringVar(&o.transport, "transport", "in-process", "Control transport: in-process or wire")

	f.StringVar(&o.shape, "shape", "sine", "Channel 0 shape: sine, triangle, square, sawtooth")
	f.Float64Var(&o.duty, "duty", 0.5, "Channel 0 square duty cycle")
	f.Float64Var(&o.freq, "freq", 1000, "Channel 0 frequency in Hz")
	f.Float64Var(&o.db, "db", 0, "Channel 0 amplitude in dBFS")
	f.Float64Var(&o.phase, "phase", 0, "Channel 0 phase offset in degrees")
}

// messages returns the SetParams messages for the initial state and the
// number of channels to render.
func (o *signalOptions) messages(cmd *cobra.Command) ([]siggen.Message, int, error) {
	if o.channels < 1 {
		return nil, 0, fmt.Errorf("at least one channel required, got %d", o.channels)
	}

	var msgs []siggen.Message
	if o.preset != "" {
		p, err := siggen.LoadPresetFile(o.preset)
		if err != nil {
			return nil, 0, err
		}
		if msgs, err = p.Messages(); err != nil {
			return nil, 0, err
		}
	}

	channels := max(o.channels, len(msgs))
	if cmd.Flags().Changed("channels") {
		channels = o.channels
	}

	f := cmd.Flags()
	if !f.Changed("shape") && !f.Changed("duty") && !f.Changed("freq") && !f.Changed("db") && !f.Changed("phase") {
		return msgs, channels, nil
	}

	params := siggen.DefaultChannelParams()
	if len(msgs) > 0 {
		params = msgs[0].Params
	}
	if f.Changed("shape") || f.Changed("duty") {
		name, duty := o.shape, o.duty
		if !f.Changed("shape") {
			name = params.Shape.Name()
		}
		if !f.Changed("duty") && params.Shape.Kind == siggen.ShapeSquare {
			duty = params.Shape.Duty
		}
		shape, err := siggen.ParseShape(name, duty)
		if err != nil {
			return nil, 0, err
		}
		params.Shape = shape
	}
	if f.Changed("freq") {
		params.Frequency = o.freq
	}
	if f.Changed("db") {
		params.AmplitudeDB = o.db
	}
	if f.Changed("phase") {
		params.PhaseDegrees = o.phase
	}

	m := siggen.SetParamsMessage(0, params)
	if len(msgs) > 0 {
		msgs[0] = m
	} else {
		msgs = append(msgs, m)
	}
	return msgs, channels, nil
}

// engineConfig builds the engine configuration for queueing initial messages
// before the first block.
func (o *signalOptions) engineConfig(root *rootOptions, initial int) (siggen.Config, error) {
	cfg := siggen.DefaultConfig()
	cfg.Logger = root.logger()
	cfg.DefaultSampleRate = float64(o.rate)
	cfg.QueueCapacity = max(cfg.QueueCapacity, initial)

	switch o.transport {
	case "in-process", "":
		cfg.Transport = siggen.InProcess
	case "wire":
		cfg.Transport = siggen.Wire
	default:
		return cfg, fmt.Errorf("unknown transport %q", o.transport)
	}
	return cfg, cfg.Validate()
}

// signalAll delivers the initial messages.
func signalAll(cmd *cobra.Command, e *siggen.Engine, msgs []siggen.Message) error {
	for _, m := range msgs {
		if err := e.Signal(cmd.Context(), m); err != nil {
			return fmt.Errorf("signal %s: %w", m, err)
		}
	}
	return nil
}

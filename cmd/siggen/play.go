package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	siggen "github.com/tphakala/go-signal-generator"
	"github.com/tphakala/go-signal-generator/internal/backend/otoout"
	"github.com/tphakala/go-signal-generator/internal/control/console"
)

type playOptions struct {
	signal   signalOptions
	duration time.Duration
	buffer   time.Duration
	noTTY    bool
}

func newPlayCmd(root *rootOptions) *cobra.Command {
	opts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play signals on the audio device",
		Long: `Play the generator on the system audio device. On a terminal, single keys
adjust the selected channel while it plays:

  ` + console.Help + `

Examples:
  siggen play --freq 440
  siggen play --preset stereo.yaml
  siggen play --no-tty --duration 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, root, opts)
		},
	}

	opts.signal.register(cmd)
	f := cmd.Flags()
	f.DurationVarP(&opts.duration, "duration", "d", 0, "Stop after this long (0 plays until quit)")
	f.DurationVar(&opts.buffer, "buffer", 50*time.Millisecond, "Device buffer length")
	f.BoolVar(&opts.noTTY, "no-tty", false, "Disable the key console")

	return cmd
}

// startDevice runs an engine on the audio device and applies the initial
// messages.
func startDevice(cmd *cobra.Command, root *rootOptions, opts *signalOptions, buffer time.Duration) (*siggen.Engine, []siggen.Message, int, error) {
	msgs, channels, err := opts.messages(cmd)
	if err != nil {
		return nil, nil, 0, err
	}

	backend, err := otoout.New(otoout.Options{
		SampleRate: opts.rate,
		Channels:   channels,
		BufferSize: buffer,
	})
	if err != nil {
		return nil, nil, 0, err
	}

	cfg, err := opts.engineConfig(root, len(msgs))
	if err != nil {
		return nil, nil, 0, err
	}
	engine, err := siggen.New(backend, &cfg)
	if err != nil {
		return nil, nil, 0, err
	}

	if err := engine.Run(cmd.Context()); err != nil {
		return nil, nil, 0, err
	}
	if err := signalAll(cmd, engine, msgs); err != nil {
		_ = engine.Stop()
		return nil, nil, 0, err
	}
	return engine, msgs, channels, nil
}

func runPlay(cmd *cobra.Command, root *rootOptions, opts *playOptions) error {
	engine, msgs, channels, err := startDevice(cmd, root, &opts.signal, opts.buffer)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Stop() }()

	ctx := cmd.Context()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	in := cmd.InOrStdin()
	interactive := !opts.noTTY
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		interactive = false
	}

	if !interactive {
		<-ctx.Done()
		return engine.Stop()
	}

	ctrl := console.NewController(channels)
	ctrl.Apply(msgs...)
	session := console.NewSession(engine, ctrl, in, cmd.OutOrStdout(), root.logger())
	if err := session.Run(ctx); err != nil {
		return err
	}
	return engine.Stop()
}

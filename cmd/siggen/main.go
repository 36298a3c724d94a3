// Command siggen renders and plays multi-channel test signals.
//
// Usage:
//
//	siggen render -o tone.wav --duration 2s --freq 440
//	siggen render -o sweep.wav --preset stereo.yaml --bits 24
//	siggen play --preset stereo.yaml            # interactive console
//	siggen serve --addr 127.0.0.1:8080          # HTTP control surface
//	siggen version
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// rootOptions are flags shared by every subcommand.
type rootOptions struct {
	verbose bool
	stderr  io.Writer
}

// logger returns a text logger on stderr; -v enables debug output.
func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stderr: stderr}

	root := &cobra.Command{
		Use:   "siggen",
		Short: "Multi-channel test signal generator",
		Long: `siggen synthesizes sine, triangle, square and sawtooth test tones on any
number of channels, each with its own frequency, level in dBFS and phase.

Signals are rendered offline to WAV files, played on the system audio device
with an interactive console, or driven remotely over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		newRenderCmd(opts),
		newPlayCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})

	return root
}

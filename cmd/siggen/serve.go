package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/go-signal-generator/internal/control/httpapi"
)

type serveOptions struct {
	signal signalOptions
	addr   string
	buffer time.Duration
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Play signals controlled over HTTP",
		Long: `Play the generator on the system audio device and expose its controls
over HTTP.

Endpoints:
  GET  /api/status
  PUT  /api/channels/{index}   {"shape","duty","amplitude_db","frequency","phase_degrees"}
  POST /api/reset
  POST /api/run
  POST /api/stop
  POST /api/messages          binary wire frame

Example:
  siggen serve --addr 127.0.0.1:8080 --preset stereo.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, opts)
		},
	}

	opts.signal.register(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "127.0.0.1:8080", "Listen address")
	f.DurationVar(&opts.buffer, "buffer", 50*time.Millisecond, "Device buffer length")

	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	engine, _, _, err := startDevice(cmd, root, &opts.signal, opts.buffer)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Stop() }()

	server := httpapi.New(engine, httpapi.Config{Addr: opts.addr, Logger: root.logger()})
	if err := server.Run(cmd.Context()); err != nil {
		return err
	}
	return engine.Stop()
}

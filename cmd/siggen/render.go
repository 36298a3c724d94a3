package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	siggen "github.com/tphakala/go-signal-generator"
	"github.com/tphakala/go-signal-generator/internal/analysis"
	"github.com/tphakala/go-signal-generator/internal/backend/wavout"
)

const (
	defaultBlockSize = 128
	defaultDuration  = time.Second
	defaultBitDepth  = 16
)

type renderOptions struct {
	signal   signalOptions
	output   string
	block    int
	duration time.Duration
	bits     int
	analyze  bool
}

// renderStats summarizes a finished render.
type renderStats struct {
	path     string
	rate     int
	channels int
	bitDepth int
	frames   int64
	elapsed  time.Duration
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render signals to a WAV file",
		Long: `Render the generator offline into a PCM WAV file, then print the measured
level and dominant frequency of every channel.

Examples:
  siggen render -o tone.wav --freq 440 --db -6
  siggen render -o test.wav --preset stereo.yaml --duration 10s --bits 24
  siggen render -o pulse.wav --shape square --duty 0.1 --channels 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, root, opts)
		},
	}

	opts.signal.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output WAV file")
	f.IntVarP(&opts.block, "block", "b", defaultBlockSize, "Frames per render block")
	f.DurationVarP(&opts.duration, "duration", "d", defaultDuration, "Length of the rendered signal")
	f.IntVar(&opts.bits, "bits", defaultBitDepth, "Bit depth: 16, 24 or 32")
	f.BoolVar(&opts.analyze, "analyze", true, "Print per-channel analysis of the written file")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions) (err error) {
	logger := root.logger()

	msgs, channels, err := opts.signal.messages(cmd)
	if err != nil {
		return err
	}

	frames := int64(opts.duration.Seconds() * float64(opts.signal.rate))
	if frames <= 0 {
		return fmt.Errorf("duration %s yields no frames at %d Hz", opts.duration, opts.signal.rate)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	backend, err := wavout.New(f, wavout.Options{
		SampleRate: opts.signal.rate,
		Channels:   channels,
		BlockSize:  opts.block,
		BitDepth:   opts.bits,
		Frames:     frames,
		Hold:       true,
	})
	if err != nil {
		return err
	}

	cfg, err := opts.signal.engineConfig(root, len(msgs))
	if err != nil {
		return err
	}
	engine, err := siggen.New(backend, &cfg)
	if err != nil {
		return err
	}

	logger.Debug("rendering",
		"output", opts.output,
		"channels", channels,
		"rate", opts.signal.rate,
		"frames", frames,
		"bits", opts.bits)

	start := time.Now()
	if err := engine.Run(cmd.Context()); err != nil {
		return err
	}
	if err := signalAll(cmd, engine, msgs); err != nil {
		_ = engine.Stop()
		return err
	}
	backend.Release()

	select {
	case <-backend.Done():
	case <-cmd.Context().Done():
		logger.Warn("render interrupted", "frames", backend.Frames())
	}
	if err := engine.Stop(); err != nil {
		return err
	}

	stats := renderStats{
		path:     opts.output,
		rate:     opts.signal.rate,
		channels: channels,
		bitDepth: opts.bits,
		frames:   backend.Frames(),
		elapsed:  time.Since(start),
	}
	out := cmd.OutOrStdout()
	printRenderSummary(out, stats)

	if !opts.analyze {
		return nil
	}
	if err := f.Sync(); err != nil {
		return err
	}
	reports, err := analyzeWAV(opts.output)
	if err != nil {
		return err
	}
	printReports(out, reports)
	return nil
}

func printRenderSummary(w io.Writer, s renderStats) {
	seconds := float64(s.frames) / float64(s.rate)
	_, _ = fmt.Fprintf(w, "Rendered %s\n", filepath.Base(s.path))
	_, _ = fmt.Fprintf(w, "  %d Hz, %d channels, %d-bit\n", s.rate, s.channels, s.bitDepth)
	_, _ = fmt.Fprintf(w, "  %d frames (%.2fs)", s.frames, seconds)
	if s.elapsed > 0 {
		_, _ = fmt.Fprintf(w, ", Speed: %.1fx realtime", seconds/s.elapsed.Seconds())
	}
	_, _ = fmt.Fprintln(w)
}

// analyzeWAV reads path back and measures every channel.
func analyzeWAV(path string) ([]analysis.Report, error) {
	input, err := openWAVInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	planar, err := input.readPlanar()
	if err != nil {
		return nil, err
	}

	reports := make([]analysis.Report, len(planar))
	for ch, run := range planar {
		reports[ch] = analysis.Measure(run, float64(input.rate))
	}
	return reports, nil
}

func printReports(w io.Writer, reports []analysis.Report) {
	_, _ = fmt.Fprintf(w, "  %-4s %10s %10s %12s\n", "ch", "peak dB", "rms dB", "freq Hz")
	for ch, r := range reports {
		_, _ = fmt.Fprintf(w, "  %-4d %10.2f %10.2f %12.2f\n", ch, r.PeakDB(), r.RMSDB(), r.DominantHz)
	}
}

// Package siggen provides a real-time multi-channel signal generator in pure Go.
//
// Each channel is an independent phase-continuous oscillator producing one of
// four waveforms. An audio backend pulls planar float32 blocks from the
// engine, while a control surface changes channel parameters concurrently
// without ever blocking the render path.
//
// # Features
//
//   - Sine, triangle, square (variable duty cycle) and sawtooth waveforms
//   - Amplitude in dB, frequency in Hz and phase offset in degrees per channel
//   - Phase continuity across blocks and across parameter changes
//   - Bounded, non-blocking control queue with explicit backpressure policy
//   - Compact binary wire format for control and render contexts that only
//     share a byte channel
//   - Native playback via github.com/ebitengine/oto/v3 and offline WAV
//     rendering via github.com/go-audio/wav
//
// # Quick Start
//
// Synthesizing directly with a Processor:
//
//	p := siggen.NewProcessor(siggen.PreservePhase)
//	p.Message(siggen.SetParamsMessage(0, siggen.ChannelParams{
//	    Shape:     siggen.Square(0.5),
//	    Frequency: 440,
//	}))
//	block := p.Process(2, 128, 48000) // 2 channels x 128 samples, planar
//
// Driving a backend through the Engine facade:
//
//	engine, err := siggen.New(backend, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := engine.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
//	_ = engine.Signal(ctx, siggen.SetParamsMessage(1, params))
//	_ = engine.Signal(ctx, siggen.ResetMessage())
//
// # Waveforms
//
// For phase p = t*2π*f/rate + θ at sample t, with x the fractional part of
// p/2π:
//
//   - [ShapeSine]: sin(p)
//   - [ShapeTriangle]: 4x for x < 1/4, 2-4x up to 3/4, 4x-4 after
//   - [ShapeSquare]: +1 while x < duty, -1 otherwise
//   - [ShapeSawtooth]: 1-2x
//
// Every shape stays within [-1, 1] before the dB gain is applied.
//
// # Messages
//
// [Message] values are either SetParams(index, params) or Reset. SetParams on
// an index that does not exist yet grows the channel list with default
// channels (1 kHz sine, 0 dB, 0°). With [PreservePhase] the oscillator keeps
// running across the update; [ResetPhase] restarts it. Reset rewinds all
// channels and keeps their parameters.
//
// Messages are applied between blocks, never mid-block.
//
// # Thread Safety
//
// [Processor] is owned by one render context and is not safe for concurrent
// use. [Engine] methods are safe for concurrent use; the render callback it
// hands to a [Backend] never blocks, never logs and only allocates when the
// requested channel or sample count grows.
package siggen

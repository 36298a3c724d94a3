// Package otoout plays the generator through the system audio device using
// oto.
//
// oto allows a single context per process, so the first Open fixes the device
// sample rate and channel count; later backends must agree with it. Builds
// tagged headless replace the device with a stub that reports ErrUnavailable.
package otoout

import (
	"errors"
	"fmt"
	"io"
	"time"
	"unsafe"

	siggen "github.com/tphakala/go-signal-generator"
	"github.com/tphakala/go-signal-generator/internal/simdops"
)

const (
	bytesPerSample = 4 // float32 little endian

	defaultChannels   = 2
	defaultBufferSize = 50 * time.Millisecond
)

var (
	// ErrUnavailable indicates that no audio device can be used.
	ErrUnavailable = errors.New("audio output unavailable")

	// ErrInvalidOptions indicates unusable backend options.
	ErrInvalidOptions = errors.New("invalid audio output options")
)

// Options configures the device stream.
type Options struct {
	SampleRate int           // device rate in Hz
	Channels   int           // interleaved channels sent to the device
	BufferSize time.Duration // device buffer; zero lets oto choose
}

// DefaultOptions returns stereo at the generator's default rate.
func DefaultOptions() Options {
	return Options{
		SampleRate: int(siggen.DefaultSampleRate),
		Channels:   defaultChannels,
		BufferSize: defaultBufferSize,
	}
}

// Validate checks if the options are usable.
func (o *Options) Validate() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidOptions)
	}
	if o.Channels < 1 || o.Channels > 2 {
		return fmt.Errorf("%w: oto supports 1 or 2 channels, got %d", ErrInvalidOptions, o.Channels)
	}
	if o.BufferSize < 0 {
		return fmt.Errorf("%w: negative buffer size", ErrInvalidOptions)
	}
	return nil
}

// source adapts a RenderFunc to the io.Reader a player pulls from.
type source struct {
	render   siggen.RenderFunc
	channels int
	rate     float64
	ops      *simdops.Ops
	frames   []float32 // interleaved scratch, grows to the largest request
}

func newSource(render siggen.RenderFunc, channels int, rate float64) *source {
	return &source{
		render:   render,
		channels: channels,
		rate:     rate,
		ops:      simdops.Float32Ops(),
	}
}

// Read renders len(p)/(4*channels) frames. Once the generator stops it
// returns io.EOF so the player drains and goes quiet.
func (s *source) Read(p []byte) (int, error) {
	frameBytes := bytesPerSample * s.channels
	n := len(p) / frameBytes
	if n == 0 {
		clear(p)
		return len(p), nil
	}

	planar, ok := s.render(s.channels, n, s.rate)
	if !ok {
		return 0, io.EOF
	}

	total := n * s.channels
	if cap(s.frames) < total {
		s.frames = make([]float32, total)
	}
	frames := s.frames[:total]
	simdops.Interleave(s.ops, frames, planar, s.channels, n)

	written := copy(p, unsafe.Slice((*byte)(unsafe.Pointer(&frames[0])), total*bytesPerSample))
	return written, nil
}

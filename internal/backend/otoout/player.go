//go:build !headless

package otoout

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	siggen "github.com/tphakala/go-signal-generator"
)

// device is the process-wide oto context.
var device struct {
	once  sync.Once
	ctx   *oto.Context
	ready chan struct{}
	opts  Options
	err   error
}

func openDevice(opts Options) (*oto.Context, chan struct{}, error) {
	device.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   opts.SampleRate,
			ChannelCount: opts.Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   opts.BufferSize,
		})
		device.ctx, device.ready, device.opts, device.err = ctx, ready, opts, err
	})
	if device.err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, device.err)
	}
	if device.opts.SampleRate != opts.SampleRate || device.opts.Channels != opts.Channels {
		return nil, nil, fmt.Errorf("%w: device already opened at %d Hz, %d channels",
			ErrInvalidOptions, device.opts.SampleRate, device.opts.Channels)
	}
	return device.ctx, device.ready, nil
}

// Backend plays through the system audio device.
type Backend struct {
	opts Options
}

// New creates a device backend. The device itself is acquired on first Open.
func New(opts Options) (*Backend, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Backend{opts: opts}, nil
}

// Options returns the backend options.
func (b *Backend) Options() Options {
	return b.opts
}

// Open starts a player pulling from render.
func (b *Backend) Open(ctx context.Context, render siggen.RenderFunc) (siggen.Stream, error) {
	c, ready, err := openDevice(b.opts)
	if err != nil {
		return nil, err
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p := c.NewPlayer(newSource(render, b.opts.Channels, float64(b.opts.SampleRate)))
	p.Play()
	return &stream{player: p}, nil
}

type stream struct {
	mu     sync.Mutex
	player *oto.Player
}

// Close pauses and releases the player. oto reads from the source under the
// player lock, so no render call is in flight once Close returns.
func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return nil
	}
	s.player.Pause()
	err := s.player.Close()
	s.player = nil
	return err
}

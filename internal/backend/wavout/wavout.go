// Package wavout is an offline backend that renders the generator into a WAV
// file as fast as the encoder accepts data.
//
// The backend drives the render callback from its own goroutine, so an Engine
// behaves exactly as it would with a sound card: Run opens the stream,
// Signal messages are applied at block boundaries, Stop closes it.
package wavout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	siggen "github.com/tphakala/go-signal-generator"
	"github.com/tphakala/go-signal-generator/internal/simdops"
)

const (
	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Full-scale values per bit depth
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// wavFormatPCM is the WAVE_FORMAT_PCM tag.
	wavFormatPCM = 1

	defaultBlockSize = 1024
	maxBlockSize     = 1 << 16
)

var (
	// ErrInvalidOptions indicates unusable backend options.
	ErrInvalidOptions = errors.New("invalid wav options")

	// ErrAlreadyOpened indicates a second Open on a single-use backend.
	ErrAlreadyOpened = errors.New("wav backend already opened")
)

// Options configures the rendered file.
type Options struct {
	SampleRate int   // frames per second
	Channels   int   // channels requested from the generator
	BlockSize  int   // frames per render callback
	BitDepth   int   // 16, 24 or 32 bit PCM
	Frames     int64 // total frames to render; 0 renders until Close

	// Hold delays the first block until Release is called, so messages
	// signalled right after Run land before any audio is written.
	Hold bool
}

// DefaultOptions returns stereo 16-bit at the generator's default rate.
func DefaultOptions() Options {
	return Options{
		SampleRate: int(siggen.DefaultSampleRate),
		Channels:   2,
		BlockSize:  defaultBlockSize,
		BitDepth:   bitsPerSample16,
	}
}

// Validate checks if the options are usable.
func (o *Options) Validate() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidOptions)
	}
	if o.Channels < 1 {
		return fmt.Errorf("%w: at least one channel required", ErrInvalidOptions)
	}
	if o.BlockSize < 1 || o.BlockSize > maxBlockSize {
		return fmt.Errorf("%w: block size must be 1-%d", ErrInvalidOptions, maxBlockSize)
	}
	if _, ok := fullScale(o.BitDepth); !ok {
		return fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidOptions, o.BitDepth)
	}
	if o.Frames < 0 {
		return fmt.Errorf("%w: negative frame count", ErrInvalidOptions)
	}
	return nil
}

func fullScale(bitDepth int) (float64, bool) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, true
	case bitsPerSample24:
		return maxInt24, true
	case bitsPerSample32:
		return maxInt32, true
	default:
		return 0, false
	}
}

// Backend renders into w. It is single use: one Open per file.
type Backend struct {
	w    io.WriteSeeker
	opts Options

	mu     sync.Mutex
	opened bool

	release     chan struct{}
	releaseOnce sync.Once

	done    chan struct{}
	written atomic.Int64
	err     error // set by the render goroutine before done closes
}

// New creates a backend writing to w.
func New(w io.WriteSeeker, opts Options) (*Backend, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil writer", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Backend{
		w:       w,
		opts:    opts,
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Release lets a held backend start rendering. It is a no-op otherwise.
func (b *Backend) Release() {
	b.releaseOnce.Do(func() { close(b.release) })
}

// Options returns the backend options.
func (b *Backend) Options() Options {
	return b.opts
}

// Done is closed once rendering has ended, either because Frames were
// written, the generator stopped, or the stream was closed.
func (b *Backend) Done() <-chan struct{} {
	return b.done
}

// Frames returns the number of frames written so far.
func (b *Backend) Frames() int64 {
	return b.written.Load()
}

// Open starts rendering. Rendering also ends when ctx is cancelled.
func (b *Backend) Open(ctx context.Context, render siggen.RenderFunc) (siggen.Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.opened {
		return nil, ErrAlreadyOpened
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.opened = true

	maxVal, _ := fullScale(b.opts.BitDepth)
	n := b.opts.BlockSize * b.opts.Channels
	s := &stream{
		b:      b,
		render: render,
		enc:    wav.NewEncoder(b.w, b.opts.SampleRate, b.opts.BitDepth, b.opts.Channels, wavFormatPCM),
		ops:    simdops.Float32Ops(),
		frames: make([]float32, n),
		pcm: &audio.IntBuffer{
			Data:           make([]int, n),
			Format:         &audio.Format{NumChannels: b.opts.Channels, SampleRate: b.opts.SampleRate},
			SourceBitDepth: b.opts.BitDepth,
		},
		maxVal: maxVal,
		quit:   make(chan struct{}),
	}

	if !b.opts.Hold {
		b.Release()
	}

	go s.run(ctx)
	return s, nil
}

type stream struct {
	b      *Backend
	render siggen.RenderFunc
	enc    *wav.Encoder
	ops    *simdops.Ops
	frames []float32 // interleaved scratch
	pcm    *audio.IntBuffer
	maxVal float64

	quit      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *stream) run(ctx context.Context) {
	defer close(s.b.done)

	select {
	case <-s.b.release:
	case <-s.quit:
		return
	case <-ctx.Done():
		return
	}

	opts := s.b.opts
	rate := float64(opts.SampleRate)

	for opts.Frames == 0 || s.b.written.Load() < opts.Frames {
		select {
		case <-s.quit:
			return
		case <-ctx.Done():
			return
		default:
		}

		n := opts.BlockSize
		if opts.Frames > 0 {
			n = int(min(int64(n), opts.Frames-s.b.written.Load()))
		}

		planar, ok := s.render(opts.Channels, n, rate)
		if !ok {
			return
		}
		if err := s.write(planar, n); err != nil {
			s.b.err = err
			return
		}
		s.b.written.Add(int64(n))
	}
}

// write interleaves, clips and quantizes one planar block.
func (s *stream) write(planar []float32, n int) error {
	ch := s.b.opts.Channels
	total := n * ch
	if len(planar) < total {
		return fmt.Errorf("render returned %d samples, want %d", len(planar), total)
	}

	frames := s.frames[:total]
	simdops.Interleave(s.ops, frames, planar, ch, n)

	data := s.pcm.Data[:total]
	for i, v := range frames {
		sample := float64(v)
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		data[i] = int(sample * s.maxVal)
	}
	s.pcm.Data = data

	if err := s.enc.Write(s.pcm); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close stops rendering, waits for the render goroutine and finalizes the
// WAV header. The underlying writer is left open.
func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.b.done

		err := s.b.err
		if encErr := s.enc.Close(); encErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to finalize wav: %w", encErr))
		}
		s.closeErr = err
	})
	return s.closeErr
}

package siggen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tphakala/go-signal-generator/internal/queue"
)

// Backend is an audio host able to open an output stream that pulls blocks
// from a RenderFunc.
type Backend interface {
	// Open acquires and activates an output stream. The backend invokes
	// render from its own context until the stream is closed or render
	// reports that it has stopped.
	Open(ctx context.Context, render RenderFunc) (Stream, error)
}

// Stream is an active output stream.
type Stream interface {
	// Close deactivates the stream. It must not return while a render
	// callback is still in flight, and no callback may start afterwards.
	Close() error
}

// Backpressure selects what Signal does when the control queue is full.
type Backpressure uint8

const (
	// BackpressureBlock makes Signal wait for the render side to drain a
	// slot. The render side itself never waits.
	BackpressureBlock Backpressure = iota

	// BackpressureDropOldest makes Signal discard the oldest queued message
	// instead of waiting.
	BackpressureDropOldest
)

func (b Backpressure) String() string {
	return b.queuePolicy().String()
}

func (b Backpressure) queuePolicy() queue.Backpressure {
	if b == BackpressureDropOldest {
		return queue.DropOldest
	}
	return queue.Block
}

// State is the lifecycle state of an Engine.
type State uint32

const (
	// Stopped means no stream is active.
	Stopped State = iota

	// Starting means the backend stream is being acquired.
	Starting

	// Running means the stream is active and signals are delivered.
	Running

	// Stopping means the stream is being torn down.
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// Config holds engine configuration.
type Config struct {
	// QueueCapacity is the number of control messages that may be pending
	// between two render blocks.
	QueueCapacity int

	// Backpressure selects the full-queue behaviour of Signal.
	Backpressure Backpressure

	// Transport selects in-process values or serialized frames.
	Transport Transport

	// UpdatePolicy selects whether SetParams keeps or resets the phase.
	UpdatePolicy UpdatePolicy

	// DefaultSampleRate is reported by SampleRate until a stream has
	// published its real rate.
	DefaultSampleRate float64

	// Logger receives lifecycle events. Nil discards them. The render path
	// never logs.
	Logger *slog.Logger
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		QueueCapacity:     DefaultQueueCapacity,
		Backpressure:      BackpressureBlock,
		Transport:         InProcess,
		UpdatePolicy:      PreservePhase,
		DefaultSampleRate: DefaultSampleRate,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.QueueCapacity < 1 || c.QueueCapacity > maxQueueCapacity {
		return fmt.Errorf("%w: queue capacity must be 1-%d", ErrInvalidConfig, maxQueueCapacity)
	}

	if c.Backpressure > BackpressureDropOldest {
		return fmt.Errorf("%w: unknown backpressure policy %d", ErrInvalidConfig, c.Backpressure)
	}

	if c.Transport > Wire {
		return fmt.Errorf("%w: unknown transport %d", ErrInvalidConfig, c.Transport)
	}

	if c.UpdatePolicy > ResetPhase {
		return fmt.Errorf("%w: unknown update policy %d", ErrInvalidConfig, c.UpdatePolicy)
	}

	if c.DefaultSampleRate <= 0 {
		return fmt.Errorf("%w: default sample rate must be positive", ErrInvalidConfig)
	}

	return nil
}

// Stats are counters of the current or last session.
type Stats struct {
	Dropped   uint64 // messages evicted by BackpressureDropOldest
	Malformed uint64 // frames discarded by the render side
}

// session is everything that lives from Run to Stop.
type session struct {
	link     link
	renderer *Renderer
	stream   Stream
}

// Engine is the control-surface facade. Run, Stop, Signal, IsRunning and
// SampleRate may be called from any goroutine; the render callback runs in
// the backend's context.
//
// Channel state belongs to the engine, not to a stream: Stop followed by Run
// resumes every oscillator where it left off.
type Engine struct {
	backend   Backend
	config    Config
	logger    *slog.Logger
	processor *Processor
	rate      RateCell

	mu      sync.Mutex // serializes Run and Stop
	state   atomic.Uint32
	current atomic.Pointer[session]
	last    Stats
}

// New creates an engine driving backend. A nil config selects DefaultConfig.
func New(backend Backend, config *Config) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is nil", ErrInvalidConfig)
	}

	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		backend:   backend,
		config:    cfg,
		logger:    logger,
		processor: NewProcessor(cfg.UpdatePolicy),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// IsRunning reports whether a stream is active.
func (e *Engine) IsRunning() bool {
	return e.State() == Running
}

// SampleRate returns the rate last seen by the render side, or the configured
// default before any block has been rendered.
func (e *Engine) SampleRate() float64 {
	return e.rate.Load(e.config.DefaultSampleRate)
}

// Run opens the backend stream. It is a no-op when already running. On
// failure the engine stays Stopped and Run may be retried.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() == Running {
		return nil
	}

	e.state.Store(uint32(Starting))
	e.logger.Debug("starting engine",
		"transport", e.config.Transport,
		"queue_capacity", e.config.QueueCapacity,
		"backpressure", e.config.Backpressure)

	l := newLink(e.config.Transport, e.config.QueueCapacity, e.config.Backpressure.queuePolicy())
	r := newRenderer(l, e.processor, &e.rate)

	stream, err := e.backend.Open(ctx, r.Render)
	if err != nil {
		l.close()
		e.state.Store(uint32(Stopped))
		e.logger.Warn("backend failed to open stream", "error", err)
		return fmt.Errorf("%w: %w", ErrBackend, err)
	}

	e.current.Store(&session{link: l, renderer: r, stream: stream})
	e.state.Store(uint32(Running))
	e.logger.Info("engine running", "sample_rate", e.SampleRate())
	return nil
}

// Stop closes the stream. It is a no-op when already stopped. Channel state
// is kept. Stop may run concurrently with an in-flight render callback.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.current.Load()
	if s == nil {
		return nil
	}

	e.state.Store(uint32(Stopping))

	// Disconnecting first makes the render side stop producing even if the
	// backend delivers one more callback before Close takes effect.
	s.link.close()
	err := s.stream.Close()

	e.last = Stats{Dropped: s.link.dropped(), Malformed: s.link.malformed()}
	e.current.Store(nil)
	e.state.Store(uint32(Stopped))

	if err != nil {
		e.logger.Warn("backend failed to close stream", "error", err)
		return fmt.Errorf("%w: %w", ErrBackend, err)
	}
	e.logger.Info("engine stopped",
		"dropped", e.last.Dropped,
		"malformed", e.last.Malformed)
	return nil
}

// Signal delivers m to the render side. When the engine is not running the
// message is dropped and Signal returns nil: UI controls resend their full
// state on the next change anyway.
func (e *Engine) Signal(ctx context.Context, m Message) error {
	s := e.current.Load()
	if s == nil || e.State() != Running {
		e.logger.Debug("dropping signal while not running", "message", m)
		return nil
	}
	return e.deliver(s.link.send(ctx, m))
}

// SignalFrame decodes a wire frame in the caller's context and delivers it
// like Signal. A malformed frame is reported to the caller and never reaches
// the render side.
func (e *Engine) SignalFrame(ctx context.Context, frame []byte) error {
	m, err := DecodeMessage(frame)
	if err != nil {
		return err
	}

	s := e.current.Load()
	if s == nil || e.State() != Running {
		e.logger.Debug("dropping frame while not running", "message", m)
		return nil
	}
	return e.deliver(s.link.sendFrame(ctx, m, frame))
}

func (e *Engine) deliver(err error) error {
	if errors.Is(err, queue.ErrClosed) {
		// Lost a race with Stop.
		return nil
	}
	return err
}

// Stats returns the counters of the running session, or of the last one
// when stopped.
func (e *Engine) Stats() Stats {
	if s := e.current.Load(); s != nil {
		return Stats{Dropped: s.link.dropped(), Malformed: s.link.malformed()}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

package siggen

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/tphakala/go-signal-generator/internal/queue"
)

// Transport selects how messages cross from the control context to the render
// context.
type Transport uint8

const (
	// InProcess hands Message values over directly.
	InProcess Transport = iota

	// Wire serializes every message into a frame on the control side and
	// decodes it on the render side, as required when the two contexts only
	// share a byte channel.
	Wire
)

func (t Transport) String() string {
	if t == Wire {
		return "wire"
	}
	return "in-process"
}

// RenderFunc is the pull callback a backend invokes once per block. It returns
// channels*samples planar samples, or false once the engine has stopped and
// no further data will be produced.
type RenderFunc func(channels, samples int, sampleRate float64) ([]float32, bool)

// RateCell publishes the render side's sample rate to the control side
// without locking. The render context is the only writer.
type RateCell struct {
	bits atomic.Uint64
}

// Store publishes rate.
func (c *RateCell) Store(rate float64) {
	c.bits.Store(math.Float64bits(rate))
}

// Load returns the last published rate, or fallback when nothing has been
// published yet.
func (c *RateCell) Load(fallback float64) float64 {
	bits := c.bits.Load()
	if bits == 0 {
		return fallback
	}
	return math.Float64frombits(bits)
}

// link is the transport-specific half of the control queue.
type link interface {
	send(ctx context.Context, m Message) error
	sendFrame(ctx context.Context, m Message, frame []byte) error
	// drain applies every queued message to p and reports whether the
	// producer is still connected.
	drain(p *Processor) bool
	close()
	dropped() uint64
	malformed() uint64
}

func newLink(t Transport, capacity int, policy queue.Backpressure) link {
	if t == Wire {
		return &wireLink{q: queue.New[[]byte](capacity, policy)}
	}
	return &valueLink{q: queue.New[Message](capacity, policy)}
}

type valueLink struct {
	q *queue.Queue[Message]
}

func (l *valueLink) send(ctx context.Context, m Message) error {
	return l.q.Send(ctx, m)
}

func (l *valueLink) sendFrame(ctx context.Context, m Message, _ []byte) error {
	return l.q.Send(ctx, m)
}

func (l *valueLink) drain(p *Processor) bool {
	for {
		m, st := l.q.TryRecv()
		switch st {
		case queue.Received:
			p.Message(m)
		case queue.Empty:
			return true
		default:
			return false
		}
	}
}

func (l *valueLink) close()            { l.q.Close() }
func (l *valueLink) dropped() uint64   { return l.q.Dropped() }
func (l *valueLink) malformed() uint64 { return 0 }

type wireLink struct {
	q   *queue.Queue[[]byte]
	bad atomic.Uint64
}

func (l *wireLink) send(ctx context.Context, m Message) error {
	frame, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return l.q.Send(ctx, frame)
}

func (l *wireLink) sendFrame(ctx context.Context, _ Message, frame []byte) error {
	return l.q.Send(ctx, frame)
}

func (l *wireLink) drain(p *Processor) bool {
	for {
		frame, st := l.q.TryRecv()
		switch st {
		case queue.Received:
			m, fail := decodeMessage(frame)
			if fail.failed() {
				l.bad.Add(1)
				continue
			}
			p.Message(m)
		case queue.Empty:
			return true
		default:
			return false
		}
	}
}

func (l *wireLink) close()            { l.q.Close() }
func (l *wireLink) dropped() uint64   { return l.q.Dropped() }
func (l *wireLink) malformed() uint64 { return l.bad.Load() }

// Renderer is the render-context side of a running engine. Each Render call
// drains pending control messages, publishes the sample rate and synthesizes
// one block.
type Renderer struct {
	link      link
	processor *Processor
	rate      *RateCell
	stopped   atomic.Bool
}

func newRenderer(l link, p *Processor, rate *RateCell) *Renderer {
	return &Renderer{link: l, processor: p, rate: rate}
}

// Render is a RenderFunc. Once the control side has disconnected it returns
// nil, false on every call.
func (r *Renderer) Render(channels, samples int, sampleRate float64) ([]float32, bool) {
	if r.stopped.Load() {
		return nil, false
	}
	if !r.link.drain(r.processor) {
		r.stopped.Store(true)
		return nil, false
	}
	r.rate.Store(sampleRate)
	return r.processor.Process(channels, samples, sampleRate), true
}

// Stopped reports whether the renderer has observed a disconnect.
func (r *Renderer) Stopped() bool {
	return r.stopped.Load()
}

package siggen

import "math"

// ChannelState is the running sample counter of one oscillator. It is the only
// notion of time a channel has: it advances by one per emitted sample and is
// only zeroed by Reset.
type ChannelState struct {
	t uint64
}

// Tick returns the number of samples emitted since the last reset.
func (s *ChannelState) Tick() uint64 {
	return s.t
}

// Reset rewinds the oscillator to sample zero.
func (s *ChannelState) Reset() {
	s.t = 0
}

// Process synthesizes len(buf) samples of params at sampleRate into buf.
//
// The phase of sample n is derived from the absolute counter (n*w + theta)
// rather than accumulated, so block boundaries never change the output and a
// frequency change keeps the counter running.
func (s *ChannelState) Process(buf []float32, params *ChannelParams, sampleRate float64) {
	amp := params.Gain()
	theta := params.Theta()
	w := params.Frequency * 2 * math.Pi / sampleRate

	// Shape switch is hoisted out of the sample loop.
	switch params.Shape.Kind {
	case ShapeTriangle:
		for i := range buf {
			buf[i] = float32(triangle(s.next(w, theta)) * amp)
		}
	case ShapeSquare:
		duty := params.Shape.Duty
		for i := range buf {
			buf[i] = float32(square(s.next(w, theta), duty) * amp)
		}
	case ShapeSawtooth:
		for i := range buf {
			buf[i] = float32(sawtooth(s.next(w, theta)) * amp)
		}
	default:
		for i := range buf {
			buf[i] = float32(math.Sin(s.next(w, theta)) * amp)
		}
	}
}

// next returns the phase of the current sample and advances the counter.
func (s *ChannelState) next(w, theta float64) float64 {
	p := math.FMA(float64(s.t), w, theta)
	s.t++
	return p
}

// Channel pairs an oscillator configuration with its running state.
type Channel struct {
	params ChannelParams
	state  ChannelState
}

// NewChannel returns a channel at sample zero configured with params.
func NewChannel(params ChannelParams) Channel {
	return Channel{params: params}
}

// DefaultChannel returns a channel with DefaultChannelParams.
func DefaultChannel() Channel {
	return NewChannel(DefaultChannelParams())
}

// Params returns the channel's configuration.
func (c *Channel) Params() ChannelParams {
	return c.params
}

// Tick returns the channel's sample counter.
func (c *Channel) Tick() uint64 {
	return c.state.Tick()
}

// SetParams replaces the configuration and keeps the oscillator running.
func (c *Channel) SetParams(params ChannelParams) {
	c.params = params
}

// Reset rewinds the oscillator without touching the configuration.
func (c *Channel) Reset() {
	c.state.Reset()
}

// Process fills buf with the next len(buf) samples.
func (c *Channel) Process(buf []float32, sampleRate float64) {
	c.state.Process(buf, &c.params, sampleRate)
}

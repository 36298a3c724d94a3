package siggen

// UpdatePolicy controls what a SetParams message does to the oscillator phase
// of the channel it addresses.
type UpdatePolicy uint8

const (
	// PreservePhase keeps the channel's sample counter running across a
	// parameter change so slider sweeps stay click-free. Only an explicit
	// Reset rewinds the oscillator.
	PreservePhase UpdatePolicy = iota

	// ResetPhase replaces the whole channel, restarting it at sample zero.
	ResetPhase
)

func (p UpdatePolicy) String() string {
	if p == ResetPhase {
		return "reset-phase"
	}
	return "preserve-phase"
}

// Processor owns the channel list and the scratch buffer that render blocks
// are synthesized into. It is not safe for concurrent use: one render context
// owns it and applies messages between blocks.
type Processor struct {
	channels []Channel
	buffer   []float32
	policy   UpdatePolicy
}

// NewProcessor returns an empty processor using the given update policy.
func NewProcessor(policy UpdatePolicy) *Processor {
	return &Processor{policy: policy}
}

// Policy returns the processor's SetParams policy.
func (p *Processor) Policy() UpdatePolicy {
	return p.policy
}

// Len returns the number of materialized channels.
func (p *Processor) Len() int {
	return len(p.channels)
}

// Params returns the configuration of channel i, or false when i is out of
// range.
func (p *Processor) Params(i int) (ChannelParams, bool) {
	if i < 0 || i >= len(p.channels) {
		return ChannelParams{}, false
	}
	return p.channels[i].params, true
}

// Tick returns the sample counter of channel i, or false when i is out of
// range.
func (p *Processor) Tick(i int) (uint64, bool) {
	if i < 0 || i >= len(p.channels) {
		return 0, false
	}
	return p.channels[i].Tick(), true
}

// Message applies one control message. It never faults: SetParams on an index
// past the end grows the list with default channels, negative indices and
// indices at or above MaxChannels are ignored.
func (p *Processor) Message(m Message) {
	switch m.Kind {
	case MsgSetParams:
		if m.Index < 0 || m.Index >= MaxChannels {
			return
		}
		if m.Index >= len(p.channels) {
			p.resize(m.Index + 1)
		}
		if p.policy == ResetPhase {
			p.channels[m.Index] = NewChannel(m.Params)
		} else {
			p.channels[m.Index].SetParams(m.Params)
		}
	case MsgReset:
		for i := range p.channels {
			p.channels[i].Reset()
		}
	}
}

// Process synthesizes sampleCount samples for each of channelCount channels
// and returns them in planar layout: channel k occupies
// [k*sampleCount, (k+1)*sampleCount).
//
// The channel list is resized to exactly channelCount. The returned slice
// aliases the processor's scratch buffer and is only valid until the next
// call.
func (p *Processor) Process(channelCount, sampleCount int, sampleRate float64) []float32 {
	channelCount = max(channelCount, 0)
	sampleCount = max(sampleCount, 0)

	p.resize(channelCount)

	n := channelCount * sampleCount
	if cap(p.buffer) < n {
		p.buffer = make([]float32, n)
	}
	out := p.buffer[:n]
	if n == 0 {
		return out
	}

	for k := range p.channels {
		p.channels[k].Process(out[k*sampleCount:(k+1)*sampleCount], sampleRate)
	}
	return out
}

// resize grows with default channels or truncates to exactly n.
func (p *Processor) resize(n int) {
	if n <= len(p.channels) {
		clear(p.channels[n:])
		p.channels = p.channels[:n]
		return
	}
	for len(p.channels) < n {
		p.channels = append(p.channels, DefaultChannel())
	}
}

// Package worklet hosts the generator in a single-threaded cooperative
// environment such as an audio worklet, where the host invokes message
// handling and block processing as separate entry points on one thread.
//
// No locking is involved: a message handled before a Process call is always
// audible in that call.
package worklet

import (
	siggen "github.com/tphakala/go-signal-generator"
)

// Node is one generator instance. It must only be used from the host thread.
type Node struct {
	processor *siggen.Processor
	rate      float64
	handled   uint64
	rejected  uint64
}

// New creates a node with the given update policy.
func New(policy siggen.UpdatePolicy) *Node {
	return &Node{processor: siggen.NewProcessor(policy)}
}

// HandleMessage decodes a wire frame and applies it. A malformed frame is
// returned as a *siggen.DecodeError and changes nothing.
func (n *Node) HandleMessage(frame []byte) error {
	m, err := siggen.DecodeMessage(frame)
	if err != nil {
		n.rejected++
		return err
	}
	n.Apply(m)
	return nil
}

// Apply applies an already decoded message.
func (n *Node) Apply(m siggen.Message) {
	n.handled++
	n.processor.Message(m)
}

// Process fills outputs with one block. The channel count is len(outputs) and
// the sample count is len(outputs[0]); shorter outputs receive a prefix and
// longer ones are zeroed past the block.
// It returns false when there is nothing to render into.
func (n *Node) Process(outputs [][]float32, sampleRate float64) bool {
	if len(outputs) == 0 {
		return false
	}
	n.rate = sampleRate

	samples := len(outputs[0])
	block := n.processor.Process(len(outputs), samples, sampleRate)
	for c, out := range outputs {
		m := copy(out, block[c*samples:(c+1)*samples])
		clear(out[m:])
	}
	return true
}

// SampleRate returns the rate of the last processed block, or the default
// before the first one.
func (n *Node) SampleRate() float64 {
	if n.rate == 0 {
		return siggen.DefaultSampleRate
	}
	return n.rate
}

// Channels returns the current number of channels.
func (n *Node) Channels() int {
	return n.processor.Len()
}

// Handled returns the number of applied messages.
func (n *Node) Handled() uint64 {
	return n.handled
}

// Rejected returns the number of malformed frames.
func (n *Node) Rejected() uint64 {
	return n.rejected
}

//go:build headless

package otoout

import (
	"context"

	siggen "github.com/tphakala/go-signal-generator"
)

// Backend is unavailable in headless builds.
type Backend struct {
	opts Options
}

// New validates opts and returns a backend whose Open always fails.
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

// Open reports ErrUnavailable.
func (b *Backend) Open(context.Context, siggen.RenderFunc) (siggen.Stream, error) {
	return nil, ErrUnavailable
}

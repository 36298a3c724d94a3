package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siggen "github.com/tphakala/go-signal-generator"
)

type recordingEngine struct {
	state   siggen.State
	runs    int
	stops   int
	signals []siggen.Message
}

func (e *recordingEngine) Run(context.Context) error {
	e.runs++
	e.state = siggen.Running
	return nil
}

func (e *recordingEngine) Stop() error {
	e.stops++
	e.state = siggen.Stopped
	return nil
}

func (e *recordingEngine) Signal(_ context.Context, m siggen.Message) error {
	e.signals = append(e.signals, m)
	return nil
}

func (e *recordingEngine) State() siggen.State { return e.state }

func TestSession_AppliesKeys(t *testing.T) {
	e := &recordingEngine{state: siggen.Running}
	var out bytes.Buffer
	s := NewSession(e, NewController(2), strings.NewReader("2]s rq+"), &out, nil)

	require.NoError(t, s.Run(context.Background()))

	// space stops, q quits before '+' is read.
	assert.Equal(t, 1, e.stops)
	require.Len(t, e.signals, 3)
	assert.Equal(t, 1, e.signals[0].Index)
	assert.Equal(t, 1.0, e.signals[0].Params.AmplitudeDB)
	assert.Equal(t, siggen.Triangle(), e.signals[1].Params.Shape)
	assert.Equal(t, siggen.MsgReset, e.signals[2].Kind)

	assert.Contains(t, out.String(), Help)
	assert.Contains(t, out.String(), "[stopped] ch 2/2  Triangle")
}

func TestSession_ToggleRestarts(t *testing.T) {
	e := &recordingEngine{}
	s := NewSession(e, NewController(1), strings.NewReader("  "), &bytes.Buffer{}, nil)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, e.runs)
	assert.Equal(t, 1, e.stops)
}

func TestSession_EndsOnEOF(t *testing.T) {
	e := &recordingEngine{}
	s := NewSession(e, NewController(1), strings.NewReader(""), &bytes.Buffer{}, nil)
	assert.NoError(t, s.Run(context.Background()))
}

func TestSession_EndsOnCancel(t *testing.T) {
	e := &recordingEngine{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that stays idle stands in for a terminal nobody types into.
	idle := idleReader{release: make(chan struct{})}
	t.Cleanup(func() { close(idle.release) })

	s := NewSession(e, NewController(1), idle, &bytes.Buffer{}, nil)
	assert.NoError(t, s.Run(ctx))
}

type idleReader struct {
	release chan struct{}
}

func (r idleReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

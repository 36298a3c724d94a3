package siggen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-signal-generator/internal/testutil"
)

func TestProcessor_DefaultChannelsEndToEnd(t *testing.T) {
	p := NewProcessor(PreservePhase)

	out := p.Process(2, 4, 48000)
	require.Len(t, out, 8)
	assert.Equal(t, 2, p.Len())

	want := make([]float32, 4)
	for k := range want {
		want[k] = float32(math.Sin(2 * math.Pi * 1000 * float64(k) / 48000))
	}

	testutil.AssertSamplesInDelta(t, want, out[:4], testutil.Float32Tolerance)
	testutil.AssertSamplesInDelta(t, want, out[4:], testutil.Float32Tolerance)
	assert.Equal(t, out[:4], out[4:], "identical defaults must give identical channels")
}

func TestProcessor_ResizesToRequestedCount(t *testing.T) {
	p := NewProcessor(PreservePhase)

	p.Process(4, 16, 48000)
	assert.Equal(t, 4, p.Len())

	p.Process(1, 16, 48000)
	assert.Equal(t, 1, p.Len())

	p.Process(3, 16, 48000)
	assert.Equal(t, 3, p.Len())

	// Regrown channels start fresh with defaults.
	tick, ok := p.Tick(2)
	require.True(t, ok)
	assert.Equal(t, uint64(16), tick)
	params, ok := p.Params(2)
	require.True(t, ok)
	assert.Equal(t, DefaultChannelParams(), params)

	tick, ok = p.Tick(0)
	require.True(t, ok)
	assert.Equal(t, uint64(48), tick)
}

func TestProcessor_PlanarLayout(t *testing.T) {
	p := NewProcessor(PreservePhase)
	p.Message(SetParamsMessage(0, ChannelParams{Shape: Square(1), Frequency: 100}))
	p.Message(SetParamsMessage(1, ChannelParams{Shape: Square(0), Frequency: 100}))
	p.Message(SetParamsMessage(2, ChannelParams{Shape: Square(1), AmplitudeDB: -6, Frequency: 100}))

	out := p.Process(3, 5, 48000)
	require.Len(t, out, 15)

	half := float32(DBToGain(-6))
	assert.Equal(t, []float32{1, 1, 1, 1, 1}, out[0:5])
	assert.Equal(t, []float32{-1, -1, -1, -1, -1}, out[5:10])
	assert.Equal(t, []float32{half, half, half, half, half}, out[10:15])
}

func TestProcessor_SetParamsGrowsList(t *testing.T) {
	p := NewProcessor(PreservePhase)
	params := ChannelParams{Shape: Sawtooth(), AmplitudeDB: -3, Frequency: 50, PhaseDegrees: 10}

	// Before any Process call has established a channel count.
	p.Message(SetParamsMessage(3, params))
	require.Equal(t, 4, p.Len())

	for i := range 3 {
		got, ok := p.Params(i)
		require.True(t, ok)
		assert.Equal(t, DefaultChannelParams(), got, "channel %d", i)
	}
	got, ok := p.Params(3)
	require.True(t, ok)
	assert.Equal(t, params, got)

	_, ok = p.Params(4)
	assert.False(t, ok)
}

func TestProcessor_InvalidIndicesNeverFault(t *testing.T) {
	p := NewProcessor(PreservePhase)
	assert.NotPanics(t, func() {
		p.Message(SetParamsMessage(-1, DefaultChannelParams()))
		p.Message(Message{Kind: MessageKind(200)})
		p.Message(ResetMessage())
		p.Process(-3, 10, 48000)
		p.Process(2, -1, 48000)
		p.Process(0, 0, 0)
	})
	assert.Equal(t, 0, p.Len())
}

func TestProcessor_IgnoresIndicesPastLimit(t *testing.T) {
	p := NewProcessor(PreservePhase)
	p.Process(2, 4, 48000)

	assert.NotPanics(t, func() {
		p.Message(SetParamsMessage(MaxChannels, ChannelParams{Shape: Square(1)}))
		p.Message(SetParamsMessage(math.MaxInt32, ChannelParams{Shape: Square(1)}))
		p.Message(SetParamsMessage(math.MaxInt, ChannelParams{Shape: Square(1)}))
	})
	assert.Equal(t, 2, p.Len())

	p.Message(SetParamsMessage(MaxChannels-1, ChannelParams{Shape: Square(1)}))
	assert.Equal(t, MaxChannels, p.Len())
	params, ok := p.Params(MaxChannels - 1)
	require.True(t, ok)
	assert.Equal(t, Square(1), params.Shape)
}

func TestProcessor_UpdatePolicy(t *testing.T) {
	params := ChannelParams{Shape: Sine(), Frequency: 440}

	t.Run("preserve", func(t *testing.T) {
		p := NewProcessor(PreservePhase)
		p.Process(1, 100, 48000)
		p.Message(SetParamsMessage(0, params))

		tick, _ := p.Tick(0)
		assert.Equal(t, uint64(100), tick)

		out := p.Process(1, 8, 48000)
		want := testutil.SineReference(100, 8, 440, 48000, 1, 0)
		testutil.AssertSamplesInDelta(t, want, out, testutil.Float32Tolerance)
	})

	t.Run("reset", func(t *testing.T) {
		p := NewProcessor(ResetPhase)
		p.Process(1, 100, 48000)
		p.Message(SetParamsMessage(0, params))

		tick, _ := p.Tick(0)
		assert.Equal(t, uint64(0), tick)

		out := p.Process(1, 8, 48000)
		want := testutil.SineReference(0, 8, 440, 48000, 1, 0)
		testutil.AssertSamplesInDelta(t, want, out, testutil.Float32Tolerance)
	})
}

func TestProcessor_ResetRewindsAndKeepsParams(t *testing.T) {
	params := ChannelParams{Shape: Triangle(), AmplitudeDB: -1, Frequency: 321, PhaseDegrees: 12}

	fresh := NewProcessor(PreservePhase)
	fresh.Message(SetParamsMessage(1, params))
	want := append([]float32(nil), fresh.Process(2, 64, 44100)...)

	p := NewProcessor(PreservePhase)
	p.Message(SetParamsMessage(1, params))
	p.Process(2, 1000, 44100)
	p.Message(ResetMessage())

	got, _ := p.Params(1)
	assert.Equal(t, params, got)
	assert.Equal(t, want, p.Process(2, 64, 44100))
}

func TestProcessor_MessagesApplyInOrder(t *testing.T) {
	p := NewProcessor(PreservePhase)
	p.Message(SetParamsMessage(0, ChannelParams{Shape: Square(1), Frequency: 1}))
	p.Message(SetParamsMessage(0, ChannelParams{Shape: Square(0), Frequency: 1}))

	out := p.Process(1, 3, 48000)
	assert.Equal(t, []float32{-1, -1, -1}, out)
}

func TestProcessor_ExactDutyAfterSetParams(t *testing.T) {
	p := NewProcessor(PreservePhase)
	p.Message(SetParamsMessage(0, ChannelParams{Shape: Square(0.5), AmplitudeDB: 0, Frequency: 100, PhaseDegrees: 0}))

	out := p.Process(1, 480, 48000)
	assert.Equal(t, 240, testutil.CountEqual(out, 1))
	assert.Equal(t, 240, testutil.CountEqual(out, -1))
}

func TestProcessor_BufferIsReused(t *testing.T) {
	p := NewProcessor(PreservePhase)
	big := p.Process(2, 256, 48000)
	small := p.Process(2, 64, 48000)

	require.Len(t, small, 128)
	assert.Same(t, &big[0], &small[0], "shrinking must not reallocate")
}

func TestProcessor_SteadyStateDoesNotAllocate(t *testing.T) {
	p := NewProcessor(PreservePhase)
	p.Process(8, 128, 48000)

	allocs := testing.AllocsPerRun(100, func() {
		p.Message(SetParamsMessage(3, ChannelParams{Shape: Square(0.25), Frequency: 220}))
		p.Message(ResetMessage())
		p.Process(8, 128, 48000)
	})
	assert.Zero(t, allocs)
}

func BenchmarkProcessor_Process(b *testing.B) {
	p := NewProcessor(PreservePhase)
	for i := range 8 {
		p.Message(SetParamsMessage(i, ChannelParams{Shape: WaveShape{Kind: ShapeKind(i % 4), Duty: 0.5}, Frequency: 110 * float64(i+1)}))
	}
	b.ReportAllocs()
	for b.Loop() {
		p.Process(8, 128, 48000)
	}
}

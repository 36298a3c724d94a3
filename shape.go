package siggen

import (
	"fmt"
	"math"
	"strings"
)

// ShapeKind enumerates the supported oscillator waveforms.
type ShapeKind uint8

const (
	// ShapeSine is a pure sine wave.
	ShapeSine ShapeKind = iota

	// ShapeTriangle is a symmetric triangle starting at zero and rising.
	ShapeTriangle

	// ShapeSquare is a pulse wave; WaveShape.Duty sets the high fraction.
	ShapeSquare

	// ShapeSawtooth falls linearly from +1 to -1 once per cycle.
	ShapeSawtooth
)

// WaveShape describes a channel's waveform. It is a small value type so it can
// travel through queues and across the wire without allocation.
//
// Duty is only meaningful for ShapeSquare. Values outside [0, 1] are accepted
// and degenerate into a constant +1 or -1 output.
type WaveShape struct {
	Kind ShapeKind
	Duty float64
}

// Sine returns the sine shape.
func Sine() WaveShape { return WaveShape{Kind: ShapeSine} }

// Triangle returns the triangle shape.
func Triangle() WaveShape { return WaveShape{Kind: ShapeTriangle} }

// Square returns a square shape with the given duty cycle.
func Square(duty float64) WaveShape { return WaveShape{Kind: ShapeSquare, Duty: duty} }

// Sawtooth returns the sawtooth shape.
func Sawtooth() WaveShape { return WaveShape{Kind: ShapeSawtooth} }

// Name returns the display name of the shape without parameters.
func (s WaveShape) Name() string {
	return s.Kind.String()
}

func (s WaveShape) String() string {
	if s.Kind == ShapeSquare {
		return fmt.Sprintf("Square(%g)", s.Duty)
	}
	return s.Kind.String()
}

func (k ShapeKind) String() string {
	switch k {
	case ShapeSine:
		return "Sine"
	case ShapeTriangle:
		return "Triangle"
	case ShapeSquare:
		return "Square"
	case ShapeSawtooth:
		return "Sawtooth"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// ParseShape maps a case-insensitive shape name to a WaveShape. The duty is
// used for squares only and is taken as given.
func ParseShape(name string, duty float64) (WaveShape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine(), nil
	case "triangle", "tri":
		return Triangle(), nil
	case "square", "sqr", "pulse":
		return Square(duty), nil
	case "sawtooth", "saw":
		return Sawtooth(), nil
	default:
		return WaveShape{}, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
}

// Next cycles through the shapes in display order. Squares come back with a
// 50% duty.
func (s WaveShape) Next() WaveShape {
	switch s.Kind {
	case ShapeSine:
		return Triangle()
	case ShapeTriangle:
		return Square(defaultSquareDuty)
	case ShapeSquare:
		return Sawtooth()
	default:
		return Sine()
	}
}

// Value evaluates the shape at phase p (radians). The result is in [-1, 1]
// for every finite p.
func (s WaveShape) Value(p float64) float64 {
	switch s.Kind {
	case ShapeTriangle:
		return triangle(p)
	case ShapeSquare:
		return square(p, s.Duty)
	case ShapeSawtooth:
		return sawtooth(p)
	default:
		return math.Sin(p)
	}
}

// cycleFraction returns the position of p within its cycle, in [0, 1]. It
// floors rather than truncates so negative phases (negative offsets or
// frequencies) stay inside the cycle.
func cycleFraction(p float64) float64 {
	x := p / (2 * math.Pi)
	return x - math.Floor(x)
}

func triangle(p float64) float64 {
	f := cycleFraction(p) * triangleQuarters
	switch {
	case f < triangleRiseEnd:
		return f
	case f < triangleFallEnd:
		return 2 - f
	default:
		return f - triangleQuarters
	}
}

func square(p, duty float64) float64 {
	if cycleFraction(p) < duty {
		return squareHigh
	}
	return squareLow
}

func sawtooth(p float64) float64 {
	return math.FMA(cycleFraction(p), sawtoothSlope, 1)
}

// ChannelParams is the complete configuration of one oscillator channel.
// Updates always replace all fields.
type ChannelParams struct {
	Shape        WaveShape
	AmplitudeDB  float64
	Frequency    float64 // Hz
	PhaseDegrees float64
}

// DefaultChannelParams returns a 1 kHz sine at 0 dB and 0°.
func DefaultChannelParams() ChannelParams {
	return ChannelParams{
		Shape:        Sine(),
		AmplitudeDB:  defaultAmplitudeDB,
		Frequency:    defaultFrequency,
		PhaseDegrees: defaultPhaseDegrees,
	}
}

// Gain converts AmplitudeDB into a linear factor.
func (p ChannelParams) Gain() float64 {
	return DBToGain(p.AmplitudeDB)
}

// Theta returns the phase offset in radians.
func (p ChannelParams) Theta() float64 {
	return p.PhaseDegrees * (2 * math.Pi / degreesPerCircle)
}

// DBToGain converts an amplitude in dB to a linear gain.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/dbPerDecade)
}

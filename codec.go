package siggen

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Wire format
//
//	[0]     version
//	[1]     message tag
//	SetParams:
//	[2:10]  channel index, uint64
//	[10]    shape tag
//	        square only: duty, float64
//	        amplitude dB, frequency, phase degrees, float64 each
//	Reset:  no payload
//
// All multi-byte fields are little endian.
const (
	wireVersion = 1

	wireTagSetParams = 0
	wireTagReset     = 1

	wireShapeSine     = 0
	wireShapeTriangle = 1
	wireShapeSquare   = 2
	wireShapeSawtooth = 3

	wireHeaderSize  = 2
	wireIndexSize   = 8
	wireFloatSize   = 8
	wireParamFloats = 3 // amplitude, frequency, phase

	// MaxFrameSize is the size of the largest frame: a square SetParams.
	MaxFrameSize = wireHeaderSize + wireIndexSize + 1 + wireFloatSize + wireParamFloats*wireFloatSize
)

// MarshalBinary encodes the message into a new wire frame.
func (m Message) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(make([]byte, 0, MaxFrameSize))
}

// AppendBinary appends the wire frame of m to dst.
func (m Message) AppendBinary(dst []byte) ([]byte, error) {
	switch m.Kind {
	case MsgReset:
		return append(dst, wireVersion, wireTagReset), nil
	case MsgSetParams:
		if m.Index < 0 || m.Index >= MaxChannels {
			return dst, fmt.Errorf("%w: channel index %d out of range [0, %d)", ErrInvalidMessage, m.Index, MaxChannels)
		}
		dst = append(dst, wireVersion, wireTagSetParams)
		dst = binary.LittleEndian.AppendUint64(dst, uint64(m.Index))

		switch m.Params.Shape.Kind {
		case ShapeSine:
			dst = append(dst, wireShapeSine)
		case ShapeTriangle:
			dst = append(dst, wireShapeTriangle)
		case ShapeSquare:
			dst = append(dst, wireShapeSquare)
			dst = appendFloat(dst, m.Params.Shape.Duty)
		case ShapeSawtooth:
			dst = append(dst, wireShapeSawtooth)
		default:
			return dst, fmt.Errorf("%w: unknown shape %s", ErrInvalidMessage, m.Params.Shape.Kind)
		}

		dst = appendFloat(dst, m.Params.AmplitudeDB)
		dst = appendFloat(dst, m.Params.Frequency)
		dst = appendFloat(dst, m.Params.PhaseDegrees)
		return dst, nil
	default:
		return dst, fmt.Errorf("%w: unknown kind %s", ErrInvalidMessage, m.Kind)
	}
}

// UnmarshalBinary decodes a complete wire frame into m. On error m is left
// unchanged.
func (m *Message) UnmarshalBinary(data []byte) error {
	msg, err := DecodeMessage(data)
	if err != nil {
		return err
	}
	*m = msg
	return nil
}

// DecodeMessage decodes one complete wire frame. Errors are *DecodeError and
// match ErrMalformedMessage.
func DecodeMessage(data []byte) (Message, error) {
	msg, fail := decodeMessage(data)
	if fail.failed() {
		return Message{}, &DecodeError{Offset: fail.offset, Reason: fail.reason}
	}
	return msg, nil
}

// decodeFailure is the allocation-free error form used on the render side.
type decodeFailure struct {
	offset int
	reason string
}

func (f decodeFailure) failed() bool { return f.reason != "" }

func decodeMessage(data []byte) (Message, decodeFailure) {
	if len(data) < wireHeaderSize {
		return Message{}, decodeFailure{len(data), "frame too short"}
	}
	if data[0] != wireVersion {
		return Message{}, decodeFailure{0, "unsupported version"}
	}

	switch data[1] {
	case wireTagReset:
		if len(data) != wireHeaderSize {
			return Message{}, decodeFailure{wireHeaderSize, "trailing bytes"}
		}
		return ResetMessage(), decodeFailure{}
	case wireTagSetParams:
	default:
		return Message{}, decodeFailure{1, "unknown message tag"}
	}

	r := wireReader{data: data, off: wireHeaderSize}

	index, ok := r.readUint64()
	if !ok {
		return Message{}, decodeFailure{r.off, "truncated channel index"}
	}
	if index >= MaxChannels {
		return Message{}, decodeFailure{wireHeaderSize, "channel index out of range"}
	}

	tag, ok := r.readByte()
	if !ok {
		return Message{}, decodeFailure{r.off, "truncated shape"}
	}

	var params ChannelParams
	switch tag {
	case wireShapeSine:
		params.Shape = Sine()
	case wireShapeTriangle:
		params.Shape = Triangle()
	case wireShapeSquare:
		duty, ok := r.readFloat()
		if !ok {
			return Message{}, decodeFailure{r.off, "truncated square duty"}
		}
		params.Shape = Square(duty)
	case wireShapeSawtooth:
		params.Shape = Sawtooth()
	default:
		return Message{}, decodeFailure{r.off - 1, "unknown shape tag"}
	}

	var okA, okF, okP bool
	params.AmplitudeDB, okA = r.readFloat()
	params.Frequency, okF = r.readFloat()
	params.PhaseDegrees, okP = r.readFloat()
	if !okA || !okF || !okP {
		return Message{}, decodeFailure{r.off, "truncated channel params"}
	}
	if r.off != len(data) {
		return Message{}, decodeFailure{r.off, "trailing bytes"}
	}

	return SetParamsMessage(int(index), params), decodeFailure{}
}

func appendFloat(dst []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
}

// wireReader is a bounds-checked cursor over a frame.
type wireReader struct {
	data []byte
	off  int
}

func (r *wireReader) readByte() (byte, bool) {
	if r.off >= len(r.data) {
		return 0, false
	}
	b := r.data[r.off]
	r.off++
	return b, true
}

func (r *wireReader) readUint64() (uint64, bool) {
	if len(r.data)-r.off < wireIndexSize {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += wireIndexSize
	return v, true
}

func (r *wireReader) readFloat() (float64, bool) {
	if len(r.data)-r.off < wireFloatSize {
		return 0, false
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.off:]))
	r.off += wireFloatSize
	return v, true
}

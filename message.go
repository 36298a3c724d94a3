package siggen

import "fmt"

// MessageKind identifies a control message.
type MessageKind uint8

const (
	// MsgSetParams replaces the configuration of one channel.
	MsgSetParams MessageKind = iota

	// MsgReset rewinds every channel to sample zero.
	MsgReset
)

func (k MessageKind) String() string {
	switch k {
	case MsgSetParams:
		return "SetParams"
	case MsgReset:
		return "Reset"
	default:
		return fmt.Sprintf("MessageKind(%d)", uint8(k))
	}
}

// Message is a control command travelling from the control surface to the
// render side. It is a plain value: sending it through a channel does not
// allocate. Index and Params are only meaningful for MsgSetParams.
type Message struct {
	Kind   MessageKind
	Index  int
	Params ChannelParams
}

// SetParamsMessage builds a message replacing channel index with params.
func SetParamsMessage(index int, params ChannelParams) Message {
	return Message{Kind: MsgSetParams, Index: index, Params: params}
}

// ResetMessage builds a message rewinding all channels.
func ResetMessage() Message {
	return Message{Kind: MsgReset}
}

func (m Message) String() string {
	if m.Kind == MsgSetParams {
		return fmt.Sprintf("SetParams(%d, %s %gdB %gHz %g°)",
			m.Index, m.Params.Shape, m.Params.AmplitudeDB, m.Params.Frequency, m.Params.PhaseDegrees)
	}
	return m.Kind.String()
}

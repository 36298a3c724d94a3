// Package console maps single key presses to generator commands.
//
// Controller holds the key logic and channel state and never touches a
// terminal; Session feeds it from a raw-mode terminal and applies the
// resulting commands to an engine.
package console

import (
	"fmt"
	"math"

	siggen "github.com/tphakala/go-signal-generator"
)

// Help lists the key bindings.
const Help = "keys: 1-9 channel  +/- semitone  ]/[ ±1 dB  ./, ±15°  s shape  r reset  space run/stop  q quit"

const (
	maxSelectable = 9

	// semitone is the frequency ratio of one +/- step.
	semitoneRatio = 1.0594630943592953 // 2^(1/12)

	amplitudeStepDB  = 1.0
	phaseStepDegrees = 15.0

	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// CommandKind says what a key asks the engine to do.
type CommandKind uint8

const (
	// CmdNone means the key was ignored or only changed the selection.
	CmdNone CommandKind = iota

	// CmdSignal carries a message for Engine.Signal.
	CmdSignal

	// CmdToggle starts a stopped engine or stops a running one.
	CmdToggle

	// CmdQuit ends the session.
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdNone:
		return "none"
	case CmdSignal:
		return "signal"
	case CmdToggle:
		return "toggle"
	case CmdQuit:
		return "quit"
	default:
		return fmt.Sprintf("CommandKind(%d)", uint8(k))
	}
}

// Command is the outcome of one key press.
type Command struct {
	Kind    CommandKind
	Message siggen.Message // valid for CmdSignal
}

// Controller tracks the selected channel and the parameters last sent for
// each channel. UI controls always send a channel's full state.
type Controller struct {
	selected int
	channels []siggen.ChannelParams
}

// NewController creates a controller for channels default channels.
func NewController(channels int) *Controller {
	c := &Controller{}
	c.ensure(max(channels, 1) - 1)
	return c
}

// Apply records messages sent outside the controller, such as a preset.
func (c *Controller) Apply(msgs ...siggen.Message) {
	for _, m := range msgs {
		if m.Kind != siggen.MsgSetParams || m.Index < 0 {
			continue
		}
		c.ensure(m.Index)
		c.channels[m.Index] = m.Params
	}
}

// Selected returns the selected channel index.
func (c *Controller) Selected() int {
	return c.selected
}

// Channels returns the number of known channels.
func (c *Controller) Channels() int {
	return len(c.channels)
}

// Params returns the parameters of channel i.
func (c *Controller) Params(i int) siggen.ChannelParams {
	if i < 0 || i >= len(c.channels) {
		return siggen.DefaultChannelParams()
	}
	return c.channels[i]
}

// Key handles one key press.
func (c *Controller) Key(k byte) Command {
	switch {
	case k >= '1' && k <= '0'+maxSelectable:
		c.selected = int(k - '1')
		c.ensure(c.selected)
		return Command{}
	case k == 'q' || k == 'Q' || k == keyCtrlC || k == keyEscape:
		return Command{Kind: CmdQuit}
	case k == ' ':
		return Command{Kind: CmdToggle}
	case k == 'r' || k == 'R':
		return Command{Kind: CmdSignal, Message: siggen.ResetMessage()}
	}

	p := c.channels[c.selected]
	switch k {
	case '+', '=':
		p.Frequency *= semitoneRatio
	case '-', '_':
		p.Frequency /= semitoneRatio
	case ']':
		p.AmplitudeDB += amplitudeStepDB
	case '[':
		p.AmplitudeDB -= amplitudeStepDB
	case '.', '>':
		p.PhaseDegrees = wrapDegrees(p.PhaseDegrees + phaseStepDegrees)
	case ',', '<':
		p.PhaseDegrees = wrapDegrees(p.PhaseDegrees - phaseStepDegrees)
	case 's', 'S':
		p.Shape = p.Shape.Next()
	default:
		return Command{}
	}

	c.channels[c.selected] = p
	return Command{Kind: CmdSignal, Message: siggen.SetParamsMessage(c.selected, p)}
}

// Status renders a one-line summary of the selected channel.
func (c *Controller) Status(state siggen.State) string {
	p := c.channels[c.selected]
	return fmt.Sprintf("[%s] ch %d/%d  %s  %.2f Hz  %+.1f dB  %.0f°",
		state, c.selected+1, len(c.channels), p.Shape, p.Frequency, p.AmplitudeDB, p.PhaseDegrees)
}

func (c *Controller) ensure(i int) {
	for len(c.channels) <= i {
		c.channels = append(c.channels, siggen.DefaultChannelParams())
	}
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	siggen "github.com/tphakala/go-signal-generator"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\x1b[K"

// Engine is the part of *siggen.Engine a session drives.
type Engine interface {
	Run(ctx context.Context) error
	Stop() error
	Signal(ctx context.Context, m siggen.Message) error
	State() siggen.State
}

// Session connects a key source to an engine.
type Session struct {
	engine Engine
	ctrl   *Controller
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewSession creates a session reading keys from in and drawing status on
// out. A nil logger discards.
func NewSession(engine Engine, ctrl *Controller, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{engine: engine, ctrl: ctrl, in: in, out: out, logger: logger}
}

// Run handles keys until quit, end of input or ctx cancellation. When in is
// a terminal it is switched to raw mode for the duration.
func (s *Session) Run(ctx context.Context) error {
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer func() { _ = term.Restore(int(f.Fd()), old) }()
	}

	keys := make(chan byte)
	readErr := make(chan error, 1)
	go s.readKeys(ctx, keys, readErr)

	_, _ = fmt.Fprintf(s.out, "%s\r\n", Help)
	s.draw()

	for {
		select {
		case <-ctx.Done():
			s.finish()
			return nil
		case err := <-readErr:
			s.finish()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case k := <-keys:
			quit, err := s.handle(ctx, k)
			if err != nil {
				s.logger.Warn("key command failed", slog.Any("error", err))
			}
			if quit {
				s.finish()
				return nil
			}
			s.draw()
		}
	}
}

// handle applies the command for k and reports whether to quit.
func (s *Session) handle(ctx context.Context, k byte) (bool, error) {
	cmd := s.ctrl.Key(k)
	switch cmd.Kind {
	case CmdQuit:
		return true, nil
	case CmdToggle:
		if s.engine.State() == siggen.Running {
			return false, s.engine.Stop()
		}
		return false, s.engine.Run(ctx)
	case CmdSignal:
		return false, s.engine.Signal(ctx, cmd.Message)
	default:
		return false, nil
	}
}

func (s *Session) readKeys(ctx context.Context, keys chan<- byte, errs chan<- error) {
	buf := make([]byte, 1)
	for {
		n, err := s.in.Read(buf)
		if n > 0 {
			select {
			case keys <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errs <- err
			return
		}
	}
}

func (s *Session) draw() {
	_, _ = fmt.Fprint(s.out, clearLine+s.ctrl.Status(s.engine.State()))
}

func (s *Session) finish() {
	_, _ = fmt.Fprint(s.out, "\r\n")
}

// Package neje drives NEJE-class laser engravers: a session owns the
// transport, validates every operation against the engraving workflow and
// turns it into the firmware's byte frames.
package neje

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/srsgit/EzGraver/pkg/bitmap"
	"github.com/srsgit/EzGraver/pkg/command"
	"github.com/srsgit/EzGraver/pkg/proto"
	"github.com/srsgit/EzGraver/pkg/transmit"
)

const (
	// BaudRate is fixed by the firmware.
	BaudRate = 57600

	// EraseTime is how long the controller takes to wipe its EEPROM after
	// acknowledging an erase. Data sent earlier is silently dropped.
	EraseTime = 6 * time.Second

	// UploadChunkSize keeps writes inside the controller's receive buffer.
	UploadChunkSize = 64

	// DefaultBurnTime is the stock per-pixel dwell.
	DefaultBurnTime = 60

	// DefaultDrainTimeout bounds the flush after each write.
	DefaultDrainTimeout = 10 * time.Second
)

var (
	ErrNotConnected = errors.New("session not connected")
	ErrInvalidState = errors.New("operation not allowed")
)

// Session drives one engraver over one transport, which it owns until
// Close. It is not safe for concurrent use; callers sharing a session
// serialize around it.
type Session struct {
	transport proto.Transport
	logger    *zap.Logger

	state       State
	settleUntil time.Time

	chunkSize    int
	drainTimeout time.Duration
	progress     transmit.Progress

	now func() time.Time
}

type Option func(*Session)

// WithChunkSize overrides the upload chunk size.
func WithChunkSize(n int) Option {
	return func(s *Session) {
		s.chunkSize = n
	}
}

// WithDrainTimeout overrides the per-write flush timeout.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.drainTimeout = d
	}
}

// WithProgress reports upload delivery chunk by chunk.
func WithProgress(fn transmit.Progress) Option {
	return func(s *Session) {
		s.progress = fn
	}
}

// Connect opens the named port at the engraver's fixed serial settings
// and returns an Idle session owning it.
func Connect(serial *proto.Serial, logger *zap.Logger, opts ...Option) (*Session, error) {
	if err := serial.Open(&proto.Options{BaudRate: BaudRate}); err != nil {
		return nil, fmt.Errorf("connect engraver: %w", err)
	}
	return New(serial, logger, opts...), nil
}

// New wraps an already-open transport in an Idle session. Connect is the
// usual path; New serves dry runs and tests.
func New(t proto.Transport, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		transport:    t,
		logger:       logger.With(zap.String("session", xid.New().String())),
		state:        Idle,
		chunkSize:    UploadChunkSize,
		drainTimeout: DefaultDrainTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Home drives the carriage to the top-left origin.
func (s *Session) Home() error { return s.motion(command.Home()) }

// Center drives the carriage to the middle of the engraving area.
func (s *Session) Center() error { return s.motion(command.Center()) }

// Preview traces the outline of the engraving area.
func (s *Session) Preview() error { return s.motion(command.Preview()) }

// Up, Down, Left and Right nudge the carriage one step.
func (s *Session) Up() error    { return s.motion(command.Up()) }
func (s *Session) Down() error  { return s.motion(command.Down()) }
func (s *Session) Left() error  { return s.motion(command.Left()) }
func (s *Session) Right() error { return s.motion(command.Right()) }

func (s *Session) motion(c command.Command) error {
	if err := s.guard(c.String(), Idle, Ready); err != nil {
		return err
	}
	return s.send(c)
}

// Erase wipes the controller's EEPROM and returns immediately. The wipe
// takes EraseTime; until it has settled the session refuses uploads.
// WaitErased blocks out the remainder.
func (s *Session) Erase() error {
	if err := s.guard("erase", Idle); err != nil {
		return err
	}
	if err := s.send(command.Erase()); err != nil {
		return err
	}

	s.state = Erasing
	s.settleUntil = s.now().Add(EraseTime)
	s.logger.With(zap.Time("until", s.settleUntil)).Debug("erasing")
	return nil
}

// WaitErased blocks until the EEPROM wipe has settled, or ctx ends. It
// returns immediately when no erase is pending.
func (s *Session) WaitErased(ctx context.Context) error {
	if s.state == Disconnected {
		return fmt.Errorf("wait erased: %w", ErrNotConnected)
	}

	s.advance()
	if s.state != Erasing {
		return nil
	}

	select {
	case <-time.After(s.settleUntil.Sub(s.now())):
		s.advance()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UploadImage converts src through the full pipeline and uploads it.
// Conversion failures surface before any byte reaches the device.
func (s *Session) UploadImage(src image.Image) (int, error) {
	if err := s.guard("upload image", Idle); err != nil {
		return 0, err
	}

	payload, err := bitmap.Encode(src)
	if err != nil {
		return 0, fmt.Errorf("convert image: %w", err)
	}

	return s.upload(payload)
}

// UploadBitmap uploads an already-packed 512x512 payload, bits exactly as
// the device expects them: set means burn.
func (s *Session) UploadBitmap(raw []byte) (int, error) {
	if err := s.guard("upload bitmap", Idle); err != nil {
		return 0, err
	}

	m, err := bitmap.Unpack(raw)
	if err != nil {
		return 0, err
	}

	return s.upload(m.Packed())
}

// Start begins engraving the uploaded image. The burn time is latched
// first; resuming from Paused re-sends it, so the dwell can change
// mid-job.
func (s *Session) Start(burnTime byte) error {
	if err := s.guard("start", Ready, Paused); err != nil {
		return err
	}
	if err := s.send(command.Start(burnTime)); err != nil {
		return err
	}
	s.state = Engraving
	return nil
}

// Pause halts the carriage; Start resumes from where it stopped without
// another upload.
func (s *Session) Pause() error {
	if err := s.guard("pause", Engraving); err != nil {
		return err
	}
	if err := s.send(command.Pause()); err != nil {
		return err
	}
	s.state = Paused
	return nil
}

// Reset aborts whatever the device is doing and returns the session to
// Idle.
func (s *Session) Reset() error {
	if s.state == Disconnected {
		return fmt.Errorf("reset: %w", ErrNotConnected)
	}
	if err := s.send(command.Reset()); err != nil {
		return err
	}
	s.state = Idle
	s.settleUntil = time.Time{}
	return nil
}

// State reports the session state, folding in an erase settle that has
// run out.
func (s *Session) State() State {
	if s.state == Disconnected {
		return Disconnected
	}
	s.advance()
	return s.state
}

// Close releases the transport. A closed session rejects every further
// operation; closing twice is harmless.
func (s *Session) Close() error {
	if s.state == Disconnected {
		return nil
	}
	s.state = Disconnected
	if err := s.transport.Close(); err != nil {
		return errors.Wrap(err, "close transport")
	}
	s.logger.Debug("session closed")
	return nil
}

// advance retires an erase whose settle deadline has passed. The device
// doesn't report completion; time is the only signal.
func (s *Session) advance() {
	if s.state == Erasing && !s.now().Before(s.settleUntil) {
		s.state = Idle
		s.logger.Debug("erase settled")
	}
}

func (s *Session) guard(op string, allowed ...State) error {
	if s.state == Disconnected {
		return fmt.Errorf("%s: %w", op, ErrNotConnected)
	}

	s.advance()

	for _, a := range allowed {
		if s.state == a {
			return nil
		}
	}

	if s.state == Erasing {
		remaining := s.settleUntil.Sub(s.now()).Round(time.Millisecond)
		return fmt.Errorf("%s while erasing (%s to settle): %w", op, remaining, ErrInvalidState)
	}
	return fmt.Errorf("%s while %s: %w", op, s.state, ErrInvalidState)
}

package neje

import (
	"fmt"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/srsgit/EzGraver/pkg/command"
	"github.com/srsgit/EzGraver/pkg/transmit"
)

// send writes a single command frame and flushes it through.
func (s *Session) send(c command.Command) error {
	frame := c.Bytes()

	start := time.Now()
	n, err := s.transport.Write(frame)
	if err != nil {
		return errors.Wrapf(err, "send %s", c)
	}
	if err := s.transport.Drain(s.drainTimeout); err != nil {
		return errors.Wrapf(err, "send %s", c)
	}

	s.logger.With(
		zap.Stringer("command", c),
		zap.Int("sent", n),
		zap.String("cost", time.Since(start).String()),
		zap.String("data", fmt.Sprintf("%x", frame)),
	).Debug("transfer")

	return nil
}

// upload streams a packed payload, tracking state around the transfer.
// A failed transfer leaves the device with a partial image, so the
// session drops back to Idle and the caller restarts from scratch.
func (s *Session) upload(payload []byte) (int, error) {
	s.state = Uploading
	s.logger.With(
		zap.Stringer("size", bytesize.New(float64(len(payload)))),
		zap.Int("chunk", s.chunkSize),
	).Info("uploading")

	start := time.Now()
	sent, err := transmit.Send(s.transport, payload, s.chunkSize,
		transmit.WithDrainTimeout(s.drainTimeout),
		transmit.WithProgress(s.progress),
	)
	if err != nil {
		s.state = Idle
		s.logger.With(zap.Int("sent", sent), zap.Error(err)).Warn("upload failed")
		return sent, fmt.Errorf("upload: %w", err)
	}

	s.state = Ready
	s.logger.With(
		zap.Int("sent", sent),
		zap.String("cost", time.Since(start).String()),
	).Info("uploaded")

	return sent, nil
}

// Package virtual provides a loopback engraver line: it records what a
// session writes and flushes instantly, so the whole pipeline runs with
// no hardware attached.
package virtual

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func NewTransport(logger *zap.Logger) *Transport {
	return &Transport{logger: logger}
}

type Transport struct {
	logger *zap.Logger

	mu     sync.Mutex
	data   []byte
	writes int
	closed bool
}

func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, errors.New("transport closed")
	}

	t.data = append(t.data, p...)
	t.writes++

	ext := ""
	if len(p) <= 16 {
		ext = fmt.Sprintf("%x", p)
	}
	t.logger.With(zap.Int("len", len(p)), zap.String("data", ext)).Debug("write")

	return len(p), nil
}

func (t *Transport) Drain(timeout time.Duration) error {
	t.logger.Debug("drain")
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.logger.Info("closed")
	return nil
}

// Bytes returns a copy of everything written so far.
func (t *Transport) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]byte, len(t.data))
	copy(out, t.data)
	return out
}

// Writes reports how many Write calls landed.
func (t *Transport) Writes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writes
}

// Package transmit delivers byte payloads over a transport in bounded
// chunks. Writing a full 32KB payload in one call overruns the engraver's
// receive buffer; chunking with per-chunk flushes keeps the firmware fed
// at a rate it can absorb.
package transmit

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/srsgit/EzGraver/pkg/proto"
)

// Progress observes delivery after each chunk lands.
type Progress func(sent, total int)

type sender struct {
	progress Progress
	drain    time.Duration
	pacing   time.Duration
}

type Option func(*sender)

// WithProgress calls fn after each delivered chunk.
func WithProgress(fn Progress) Option {
	return func(s *sender) {
		s.progress = fn
	}
}

// WithDrainTimeout flushes the transport after every chunk, failing the
// transfer if a flush exceeds d.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *sender) {
		s.drain = d
	}
}

// WithPacing sleeps d between chunks, for devices that drop bytes without
// flow control.
func WithPacing(d time.Duration) Option {
	return func(s *sender) {
		s.pacing = d
	}
}

// Error reports a transfer that died mid-payload. Sent is the number of
// bytes the transport accepted before the failure; the device holds a
// partial image, so callers retry from scratch or not at all.
type Error struct {
	Sent int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transmission failed after %d bytes: %v", e.Sent, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Chunks splits payload into size-byte chunks, in order, the last possibly
// shorter. An empty payload yields no chunks. Panics if size is not
// positive.
func Chunks(payload []byte, size int) [][]byte {
	if len(payload) == 0 {
		return nil
	}
	return lo.Chunk(payload, size)
}

// Send writes payload to t in chunkSize pieces, in order, with no retries.
// It returns the bytes written; on failure the error is an *Error carrying
// the same count.
func Send(t proto.Transport, payload []byte, chunkSize int, opts ...Option) (int, error) {
	if chunkSize <= 0 {
		return 0, errors.Errorf("chunk size %d, must be positive", chunkSize)
	}

	s := &sender{}
	for _, opt := range opts {
		opt(s)
	}

	total := len(payload)
	sent := 0

	for i, chunk := range Chunks(payload, chunkSize) {
		if i > 0 && s.pacing > 0 {
			time.Sleep(s.pacing)
		}

		n, err := t.Write(chunk)
		sent += n
		if err == nil && n < len(chunk) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return sent, &Error{Sent: sent, Err: err}
		}

		if s.drain > 0 {
			if err := t.Drain(s.drain); err != nil {
				return sent, &Error{Sent: sent, Err: err}
			}
		}

		if s.progress != nil {
			s.progress(sent, total)
		}
	}

	return sent, nil
}

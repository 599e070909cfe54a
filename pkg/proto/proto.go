package proto

import (
	"io"
	"time"
)

// Transport is the byte channel between a session and the engraver.
// Drain blocks until the OS has pushed buffered output onto the wire, or
// the timeout passes.
type Transport interface {
	io.Writer
	Drain(timeout time.Duration) error
	Close() error
}

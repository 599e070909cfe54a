package proto

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

var (
	ErrPortNotFound = errors.New("serial port not found")
	ErrDrainTimeout = errors.New("drain timed out")
)

type Options struct {
	BaudRate int
}

func NewSerial(name string) *Serial {
	return &Serial{name: name}
}

// Serial matches a port by name substring, so "ttyUSB" finds ttyUSB0.
type Serial struct {
	name string
	port serial.Port
}

func (s *Serial) Ports() ([]string, error) {
	return serial.GetPortsList()
}

func (s *Serial) Open(opts *Options) error {
	ports, err := s.Ports()
	if err != nil {
		return err
	}

	matched, ok := match(ports, s.name)
	if !ok {
		return errors.Wrap(ErrPortNotFound, s.name)
	}

	// 8N1, the only framing these devices speak.
	port, err := serial.Open(matched, &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return errors.Wrapf(err, "open %s", matched)
	}

	s.port = port
	return nil
}

func (s *Serial) Write(p []byte) (n int, err error) {
	return s.port.Write(p)
}

// Drain waits for the OS to flush its output buffer. The library call
// blocks with no deadline of its own, so it races a timer here.
func (s *Serial) Drain(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- s.port.Drain()
	}()

	select {
	case err := <-done:
		return errors.Wrap(err, "drain")
	case <-time.After(timeout):
		return ErrDrainTimeout
	}
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

func match(ports []string, name string) (string, bool) {
	for _, p := range ports {
		if strings.Contains(p, name) {
			return p, true
		}
	}
	return "", false
}

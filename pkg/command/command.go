// Package command encodes the frames the NEJE engraver family understands.
// Encoding is pure: no I/O, every command maps to a fixed byte sequence.
package command

import (
	"bytes"
	"fmt"
)

// Wire opcodes. The values are a firmware contract validated against real
// devices; never re-derive them.
const (
	opStart   byte = 0xF1
	opPause   byte = 0xF2
	opHome    byte = 0xF3
	opPreview byte = 0xF4
	opUp      byte = 0xF5
	opDown    byte = 0xF6
	opLeft    byte = 0xF7
	opRight   byte = 0xF8
	opReset   byte = 0xF9
	opCenter  byte = 0xFB
	opErase   byte = 0xFE
)

// The erase opcode is repeated; a single byte is not accepted as an erase.
const eraseFrameLen = 8

type kind int

const (
	kindSetBurnTime kind = iota
	kindStart
	kindPause
	kindHome
	kindCenter
	kindPreview
	kindUp
	kindDown
	kindLeft
	kindRight
	kindReset
	kindErase
)

// Command is one device operation, immutable once constructed.
type Command struct {
	kind kind
	burn byte
}

// SetBurnTime latches the per-pixel laser dwell for the next engraving
// pass. The frame is the raw value byte itself; any 0-255 value is valid.
func SetBurnTime(value byte) Command { return Command{kind: kindSetBurnTime, burn: value} }

// Start begins engraving: it commits the burn time, then starts the pass.
func Start(burnTime byte) Command { return Command{kind: kindStart, burn: burnTime} }

// Pause halts the carriage mid-pass. Start resumes it.
func Pause() Command { return Command{kind: kindPause} }

// Home drives the carriage to the top-left origin.
func Home() Command { return Command{kind: kindHome} }

// Center drives the carriage to the middle of the engraving area.
func Center() Command { return Command{kind: kindCenter} }

// Preview traces the outline of the engraving area with the laser dimmed.
func Preview() Command { return Command{kind: kindPreview} }

// Up, Down, Left and Right nudge the carriage one step.
func Up() Command    { return Command{kind: kindUp} }
func Down() Command  { return Command{kind: kindDown} }
func Left() Command  { return Command{kind: kindLeft} }
func Right() Command { return Command{kind: kindRight} }

// Reset aborts whatever the controller is doing.
func Reset() Command { return Command{kind: kindReset} }

// Erase wipes the EEPROM holding the uploaded image. The controller needs
// several seconds to finish before it accepts new data.
func Erase() Command { return Command{kind: kindErase} }

// Bytes renders the wire frame. Start carries the burn time as a leading
// raw byte; the firmware latches it before acting on the start opcode.
func (c Command) Bytes() []byte {
	switch c.kind {
	case kindSetBurnTime:
		return []byte{c.burn}
	case kindStart:
		return []byte{c.burn, opStart}
	case kindPause:
		return []byte{opPause}
	case kindHome:
		return []byte{opHome}
	case kindCenter:
		return []byte{opCenter}
	case kindPreview:
		return []byte{opPreview}
	case kindUp:
		return []byte{opUp}
	case kindDown:
		return []byte{opDown}
	case kindLeft:
		return []byte{opLeft}
	case kindRight:
		return []byte{opRight}
	case kindReset:
		return []byte{opReset}
	case kindErase:
		return bytes.Repeat([]byte{opErase}, eraseFrameLen)
	}
	return nil
}

func (c Command) String() string {
	switch c.kind {
	case kindSetBurnTime:
		return fmt.Sprintf("set-burn-time(%d)", c.burn)
	case kindStart:
		return fmt.Sprintf("start(burn=%d)", c.burn)
	case kindPause:
		return "pause"
	case kindHome:
		return "home"
	case kindCenter:
		return "center"
	case kindPreview:
		return "preview"
	case kindUp:
		return "up"
	case kindDown:
		return "down"
	case kindLeft:
		return "left"
	case kindRight:
		return "right"
	case kindReset:
		return "reset"
	case kindErase:
		return "erase"
	}
	return fmt.Sprintf("command(%d)", int(c.kind))
}

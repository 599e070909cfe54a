package command

import (
	"bytes"
	"testing"
)

func TestCommandBytes(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{"pause", Pause(), []byte{0xF2}},
		{"home", Home(), []byte{0xF3}},
		{"preview", Preview(), []byte{0xF4}},
		{"up", Up(), []byte{0xF5}},
		{"down", Down(), []byte{0xF6}},
		{"left", Left(), []byte{0xF7}},
		{"right", Right(), []byte{0xF8}},
		{"reset", Reset(), []byte{0xF9}},
		{"center", Center(), []byte{0xFB}},
		{"set burn time", SetBurnTime(0x23), []byte{0x23}},
		{"start zero", Start(0), []byte{0x00, 0xF1}},
		{"start typical", Start(60), []byte{0x3C, 0xF1}},
		{"start max", Start(255), []byte{0xFF, 0xF1}},
		{"erase", Erase(), bytes.Repeat([]byte{0xFE}, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Bytes(); !bytes.Equal(got, tt.want) {
				t.Errorf("Bytes() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestStartCarriesEveryBurnTime(t *testing.T) {
	for v := 0; v <= 255; v++ {
		got := Start(byte(v)).Bytes()
		if len(got) != 2 {
			t.Fatalf("Start(%d).Bytes() length = %d, want 2", v, len(got))
		}
		if got[0] != byte(v) {
			t.Errorf("Start(%d).Bytes()[0] = %#x, want %#x", v, got[0], v)
		}
		if got[1] != 0xF1 {
			t.Errorf("Start(%d).Bytes()[1] = %#x, want 0xF1", v, got[1])
		}
	}
}

func TestSetBurnTimeMatchesStartPrefix(t *testing.T) {
	for _, v := range []byte{0, 1, 60, 128, 240, 255} {
		single := SetBurnTime(v).Bytes()
		composed := Start(v).Bytes()
		if !bytes.Equal(single, composed[:1]) {
			t.Errorf("SetBurnTime(%d) = %x, Start prefix = %x", v, single, composed[:1])
		}
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Home(), "home"},
		{Erase(), "erase"},
		{Start(60), "start(burn=60)"},
		{SetBurnTime(9), "set-burn-time(9)"},
	}

	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

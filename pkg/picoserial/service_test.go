package picoserial

import (
	"errors"
	"testing"
)

func TestIsMScriptDevice(t *testing.T) {
	tests := []struct {
		description string
		want        bool
	}{
		{"EmStat4", true},
		{"ESPicoDev", true},
		{"ESPicoDev v1.2", true},
		{"SensitBT-1234", true},
		{"SensitSmart", true},
		{"EmStat4 LR (COM3)", true},
		{"EmStat4 HR (COM7)", true},
		{"MultiEmStat4 LR (COM4)", true},
		{"MultiEmStat4 HR (COM4)", true},
		{"USB Serial Port (COM5)", true},
		{"EmStat4 Bootloader", false}, // cannot run MethodSCRIPTs
		{"Arduino Uno", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isMScriptDevice(tt.description); got != tt.want {
			t.Errorf("isMScriptDevice(%q) = %v, want %v", tt.description, got, tt.want)
		}
	}
}

func TestSelectCandidate(t *testing.T) {
	port, err := selectCandidate([]string{"/dev/ttyUSB0"})
	if err != nil || port != "/dev/ttyUSB0" {
		t.Errorf("selectCandidate single = %q, %v", port, err)
	}

	if _, err := selectCandidate(nil); !errors.Is(err, ErrNoDeviceFound) {
		t.Errorf("expected ErrNoDeviceFound, got %v", err)
	}

	_, err = selectCandidate([]string{"/dev/ttyUSB0", "/dev/ttyUSB1"})
	if !errors.Is(err, ErrMultipleCandidates) {
		t.Errorf("expected ErrMultipleCandidates, got %v", err)
	}
}

func TestClosedConnectionOperations(t *testing.T) {
	c := NewConnection("/dev/null", 0)
	if err := c.Write([]byte("e\n")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write on closed connection = %v, want ErrNotOpen", err)
	}
	if _, err := c.ReadLine(0); !errors.Is(err, ErrNotOpen) {
		t.Errorf("ReadLine on closed connection = %v, want ErrNotOpen", err)
	}
	// Close before open is a no-op.
	if err := c.Close(); err != nil {
		t.Errorf("Close on closed connection = %v", err)
	}
}

func TestNewConnectionDefaultBaudrate(t *testing.T) {
	c := NewConnection("/dev/ttyUSB0", 0)
	if c.baudrate != DefaultBaudrate {
		t.Errorf("baudrate = %d, want %d", c.baudrate, DefaultBaudrate)
	}
	c = NewConnection("/dev/ttyUSB0", 115200)
	if c.baudrate != 115200 {
		t.Errorf("baudrate = %d, want 115200", c.baudrate)
	}
}

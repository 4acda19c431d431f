package picoserial

import (
	"go.bug.st/serial"
)

// Connection owns a single serial port handle to a MethodSCRIPT device.
// The port is an exclusively-owned resource: one Connection per physical
// instrument, and concurrent use must be serialized by the caller.
type Connection struct {
	portName string
	baudrate int
	port     serial.Port
	isOpen   bool
}

// Package picoserial implements the serial (UART) interface to MethodSCRIPT
// potentiostats, including auto-detection of the communication port.
package picoserial

import (
	"fmt"
	"log"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaudrate is the UART speed used by EmStat Pico class devices.
const DefaultBaudrate = 230400

var (
	ErrNoDeviceFound      = fmt.Errorf("no MethodSCRIPT device found")
	ErrMultipleCandidates = fmt.Errorf("multiple candidate ports found")
	ErrNotOpen            = fmt.Errorf("serial port not open")
)

// NewConnection prepares a connection to the given port without opening it.
// A baudrate of 0 selects the device default.
func NewConnection(portName string, baudrate int) *Connection {
	if baudrate == 0 {
		baudrate = DefaultBaudrate
	}
	return &Connection{
		portName: portName,
		baudrate: baudrate,
	}
}

// Open opens the serial port. Opening an already open connection is a no-op.
func (c *Connection) Open() error {
	if c.isOpen {
		return nil
	}
	mode := &serial.Mode{
		BaudRate: c.baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(c.portName, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", c.portName, err)
	}
	c.port = port
	c.isOpen = true
	log.Printf("Connected to %s", c.portName)
	return nil
}

// Close closes the serial port. Closing a closed connection is a no-op,
// so Close can be deferred unconditionally.
func (c *Connection) Close() error {
	if !c.isOpen {
		return nil
	}
	c.isOpen = false
	err := c.port.Close()
	log.Printf("Disconnected from %s", c.portName)
	return err
}

// PortName returns the name of the underlying port.
func (c *Connection) PortName() string {
	return c.portName
}

// Write writes raw bytes to the port. No line terminator is appended;
// callers supply their own framing.
func (c *Connection) Write(data []byte) error {
	if !c.isOpen {
		return ErrNotOpen
	}
	_, err := c.port.Write(data)
	return err
}

// ReadLine reads up to the next '\n' or until the timeout elapses.
// On timeout it returns whatever bytes arrived so far, which may be none:
// an empty result is the only timeout signal callers get, and it is not an
// error. I/O failures (port closed, device unplugged) are returned as-is.
func (c *Connection) ReadLine(timeout time.Duration) ([]byte, error) {
	if !c.isOpen {
		return nil, ErrNotOpen
	}
	deadline := time.Now().Add(timeout)
	var line []byte
	buf := make([]byte, 1)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return line, nil
		}
		if err := c.port.SetReadTimeout(remaining); err != nil {
			return line, err
		}
		n, err := c.port.Read(buf)
		if err != nil {
			return line, err
		}
		if n == 0 {
			// Timeout expired with no byte available.
			return line, nil
		}
		line = append(line, buf[0])
		if buf[0] == '\n' {
			return line, nil
		}
	}
}

// Device description strings reported by the OS for supported instruments.
// The EmStat Pico uses a generic FTDI USB-to-serial chip, so on Windows it
// shows up as "USB Serial Port"; auto-detection cannot tell it apart from
// other devices using that name.
func isMScriptDevice(description string) bool {
	if description == "EmStat4" {
		return true
	}
	prefixes := []string{
		// Linux names.
		"ESPicoDev",
		"SensitBT",
		"SensitSmart",
		// Windows names.
		"EmStat4 LR (COM",
		"EmStat4 HR (COM",
		"MultiEmStat4 LR (COM",
		"MultiEmStat4 HR (COM",
		"USB Serial Port",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(description, prefix) {
			return true
		}
	}
	return false
}

// selectCandidate enforces the single-match rule: zero matches means no
// instrument is connected, more than one means the guess could address the
// wrong instrument, and both are fatal rather than silently picking a port.
func selectCandidate(candidates []string) (string, error) {
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", ErrNoDeviceFound
	default:
		return "", fmt.Errorf("%w: %s", ErrMultipleCandidates, strings.Join(candidates, ", "))
	}
}

// AutoDetectPort scans the available serial ports and returns the one
// whose USB product description matches a known MethodSCRIPT device.
func AutoDetectPort() (string, error) {
	log.Println("Auto-detecting serial communication port")
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	var candidates []string
	for _, port := range ports {
		log.Printf("Found port: %s (%s)", port.Name, port.Product)
		if isMScriptDevice(port.Product) {
			candidates = append(candidates, port.Name)
		}
	}
	return selectCandidate(candidates)
}

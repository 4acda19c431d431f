// Package instrument drives a MethodSCRIPT potentiostat over a line-oriented
// serial transport: send a script, stream back the result lines, query the
// firmware version.
package instrument

import (
	"fmt"
	"strings"
	"time"
)

// ErrNoResponse is returned when the device stays silent on a query that
// requires an answer.
var ErrNoResponse = fmt.Errorf("no response from device")

// endOfMeasurement is the line marking the end of the outermost measurement
// loop. Device silence is detected heuristically instead: two consecutive
// timed-out reads.
const endOfMeasurement = "*"

// consecutiveEmptyLimit is how many empty reads in a row mean the device has
// stopped sending (finished without a terminator, or disconnected).
const consecutiveEmptyLimit = 2

// New wraps an open transport connection.
func New(comm Conn) *Device {
	return &Device{comm: comm, state: StateIdle}
}

// State reports the driver's position in the current conversation.
func (d *Device) State() State {
	return d.state
}

// SendCmd writes one command line, appending the '\n' framing.
func (d *Device) SendCmd(cmd string) error {
	return d.comm.Write([]byte(cmd + "\n"))
}

// SendScript writes a MethodSCRIPT to the device line by line. The script
// text is transmitted byte-for-byte, including the blank line that ends a
// script.
func (d *Device) SendScript(text string) error {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		if err := d.comm.Write([]byte(line)); err != nil {
			return err
		}
	}
	d.state = StateScriptSent
	return nil
}

// ReadLine reads one line from the device, preserving the line terminator.
// An empty string means the read timed out.
func (d *Device) ReadLine(timeout time.Duration) (string, error) {
	raw, err := d.comm.ReadLine(timeout)
	return string(raw), err
}

// ReadLinesUntilEnd accumulates result lines until the end-of-measurement
// marker arrives (state Completed) or the device goes silent for two
// consecutive read timeouts (state TimedOut). The lines collected so far are
// returned in both cases, so a partial result can still be parsed. onLine,
// if non-nil, is invoked for every line as it arrives.
//
// Transport failures are returned unmodified; there is no retry.
func (d *Device) ReadLinesUntilEnd(timeout time.Duration, onLine func(line string)) ([]string, error) {
	var lines []string
	emptyReads := 0
	for {
		line, err := d.ReadLine(timeout)
		if err != nil {
			return lines, err
		}
		if line == "" {
			emptyReads++
			if emptyReads >= consecutiveEmptyLimit {
				d.state = StateTimedOut
				return lines, nil
			}
			continue
		}
		emptyReads = 0
		d.state = StateStreaming
		lines = append(lines, line)
		if onLine != nil {
			onLine(line)
		}
		if strings.TrimRight(line, "\r\n") == endOfMeasurement {
			d.state = StateCompleted
			return lines, nil
		}
	}
}

// FirmwareVersion sends the version query command and returns the response
// read up to the '*'-terminated acknowledgement.
func (d *Device) FirmwareVersion(timeout time.Duration) (string, error) {
	if err := d.SendCmd("t"); err != nil {
		return "", err
	}
	var response []string
	emptyReads := 0
	for {
		line, err := d.ReadLine(timeout)
		if err != nil {
			return strings.TrimSpace(strings.Join(response, "\n")), err
		}
		if line == "" {
			emptyReads++
			if emptyReads >= consecutiveEmptyLimit {
				return strings.TrimSpace(strings.Join(response, "\n")), ErrNoResponse
			}
			continue
		}
		emptyReads = 0
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(trimmed, "*") {
			return strings.TrimSpace(strings.Join(response, "\n")), nil
		}
		response = append(response, trimmed)
	}
}

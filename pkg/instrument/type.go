package instrument

import "time"

// Conn is the transport the driver talks through. picoserial.Connection
// implements it; tests substitute a fake.
type Conn interface {
	Write(data []byte) error
	ReadLine(timeout time.Duration) ([]byte, error)
}

// State tracks where the driver is in a device conversation.
type State int

const (
	StateIdle State = iota
	StateScriptSent
	StateStreaming
	StateCompleted
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScriptSent:
		return "script_sent"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Device sequences the conversation with one MethodSCRIPT instrument.
// It is a thin, predictable primitive: no retries, no backoff; that policy
// belongs to the caller.
type Device struct {
	comm  Conn
	state State
}

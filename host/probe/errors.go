package probe

import (
	"fmt"
	"time"
)

// DeviceError reports a sentinel failure code returned by the firmware
// for an operation that reached the wire. For readBlock the codes are:
// -1 request outside the 128-byte array, -2 no device acknowledged the
// discovery handshake, -3 a byte failed majority-vote verification.
type DeviceError struct {
	Op   string
	Code int
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s failed on the wire: code %d", e.Op, e.Code)
}

// RemoteError carries a firmware error response that has no sentinel
// code, such as the zero manufacturer ID report or a parse rejection.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// TimeoutError indicates that no reply arrived for a command in time.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no reply to %s within %v", e.Op, e.Timeout)
}

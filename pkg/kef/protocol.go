package kef

import (
	"errors"
	"fmt"
)

// Wire constants for the LS50 Wireless control protocol. Requests are
// tiny fixed frames: a register read is [0x47, op, 0x80] and a
// register write is [0x53, op, 0x81, value].
const (
	getStart = 0x47 // 'G'
	setStart = 0x53 // 'S'
	getMid   = 0x80
	setMid   = 0x81

	opVolume = 0x25 // '%'
	opSource = 0x30 // '0'

	// responseOK is the payload byte acknowledging a successful write.
	responseOK = 0x11

	// flagBit carries mute in the volume register and standby in the
	// source register. The low 7 bits carry the value.
	flagBit   = 0x80
	valueMask = 0x7F

	// volumeScale is the device's full volume range in register units.
	volumeScale = 100
)

var (
	ErrInvalidResponse = errors.New("invalid response frame")
	ErrInvalidSource   = errors.New("invalid source")
)

// CommunicationError reports a failed exchange with the speaker: the
// connection was refused or reset, the exchange timed out, or the
// reply was malformed. Polling callers should treat it as the device
// being offline; command callers should report the command as failed.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// getRequest builds a register read frame.
func getRequest(op byte) []byte {
	return []byte{getStart, op, getMid}
}

// setRequest builds a register write frame.
func setRequest(op, value byte) []byte {
	return []byte{setStart, op, setMid, value}
}

// parseReply extracts the payload from a response frame. The speaker
// answers every request with one short frame whose second-to-last
// byte carries the register value or the write acknowledgement.
func parseReply(data []byte) (byte, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidResponse, len(data))
	}
	return data[len(data)-2], nil
}

package kef

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Frame bytes captured from the LS50 Wireless control protocol.

func TestGetRequest_Volume(t *testing.T) {
	// 'G' '%' 0x80
	assert.Equal(t, "472580", hex.EncodeToString(getRequest(opVolume)))
}

func TestGetRequest_Source(t *testing.T) {
	// 'G' '0' 0x80
	assert.Equal(t, "473080", hex.EncodeToString(getRequest(opSource)))
}

func TestSetRequest_Volume(t *testing.T) {
	// 'S' '%' 0x81, level 56
	assert.Equal(t, "53258138", hex.EncodeToString(setRequest(opVolume, 56)))
}

func TestSetRequest_SourceBluetooth(t *testing.T) {
	// 'S' '0' 0x81, code 25
	assert.Equal(t, "53308119", hex.EncodeToString(setRequest(opSource, 25)))
}

func TestSetRequest_StandbyKeepsSourceCode(t *testing.T) {
	// Standby is the source code with bit 7 set: Wifi (18) -> 146.
	assert.Equal(t, "53308192", hex.EncodeToString(setRequest(opSource, 18|flagBit)))
}

func TestParseReply_PayloadIsSecondToLastByte(t *testing.T) {
	payload, err := parseReply([]byte{0x52, 0x25, 0x81, 0x38, 0x0D})
	require.NoError(t, err)
	assert.Equal(t, byte(0x38), payload)
}

func TestParseReply_MinimalFrame(t *testing.T) {
	payload, err := parseReply([]byte{0x11, 0x0D})
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), payload)
}

func TestParseReply_TooShort(t *testing.T) {
	_, err := parseReply([]byte{0x11})
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = parseReply(nil)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

package kef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSources_StableOrder(t *testing.T) {
	assert.Equal(t, []Source{
		SourceWifi, SourceBluetooth, SourceAux, SourceOpt, SourceUsb,
	}, Sources())
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("Opt")
	require.NoError(t, err)
	assert.Equal(t, SourceOpt, s)

	_, err = ParseSource("Tape")
	assert.ErrorIs(t, err, ErrInvalidSource)

	// Names are case sensitive, like the source list shown to users.
	_, err = ParseSource("opt")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		name   string
		reg    byte
		source Source
		on     bool
	}{
		{"wifi on", 18, SourceWifi, true},
		{"bluetooth on", 25, SourceBluetooth, true},
		{"bluetooth unpaired", 31, SourceBluetooth, true},
		{"aux on", 26, SourceAux, true},
		{"opt standby", 27 | 0x80, SourceOpt, false},
		{"usb standby", 28 | 0x80, SourceUsb, false},
		{"wifi standby", 18 | 0x80, SourceWifi, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, on, err := decodeStatus(tt.reg)
			require.NoError(t, err)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.on, on)
		})
	}
}

func TestDecodeStatus_UnknownCode(t *testing.T) {
	_, _, err := decodeStatus(0x00)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, _, err = decodeStatus(42)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

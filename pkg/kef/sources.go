package kef

import "fmt"

// Source is a named input channel the speaker can play from.
type Source string

const (
	SourceWifi      Source = "Wifi"
	SourceBluetooth Source = "Bluetooth"
	SourceAux       Source = "Aux"
	SourceOpt       Source = "Opt"
	SourceUsb       Source = "Usb"
)

// sourceCodes maps each source to its code in the source register.
var sourceCodes = map[Source]byte{
	SourceWifi:      18,
	SourceBluetooth: 25,
	SourceAux:       26,
	SourceOpt:       27,
	SourceUsb:       28,
}

// codeSources is the reverse table. The speaker reports 31 instead of
// 25 when Bluetooth is selected but no device is paired.
var codeSources = map[byte]Source{
	18: SourceWifi,
	25: SourceBluetooth,
	26: SourceAux,
	27: SourceOpt,
	28: SourceUsb,
	31: SourceBluetooth,
}

// Sources returns the selectable input sources in a stable order.
func Sources() []Source {
	return []Source{SourceWifi, SourceBluetooth, SourceAux, SourceOpt, SourceUsb}
}

// ParseSource maps a user-facing name to a Source.
func ParseSource(name string) (Source, error) {
	s := Source(name)
	if _, ok := sourceCodes[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, name)
	}
	return s, nil
}

// decodeStatus unpacks the combined source/standby register. Bit 7 set
// means the unit is in standby; the low bits name the source, which is
// still reported while in standby.
func decodeStatus(reg byte) (Source, bool, error) {
	source, ok := codeSources[reg&valueMask]
	if !ok {
		return "", false, fmt.Errorf("%w: unknown source code %d", ErrInvalidResponse, reg&valueMask)
	}
	return source, reg&flagBit == 0, nil
}

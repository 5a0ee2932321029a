package nex

import "encoding/binary"

// Option tag ids, per the fixed id→size table the wire format uses:
// each tag has a mandatory fixed byte length, and a mismatch is a hard
// parse error (InvalidOptionSize).
const (
	OptionSupportedFunctions  uint8 = 0
	OptionConnectionSignature uint8 = 1
	OptionFragmentID          uint8 = 2
	OptionInitialSequenceID   uint8 = 3
	OptionMaximumSubstreamID  uint8 = 4
)

// optionSize returns the fixed byte length for a known option id, and ok
// = false for an unrecognised one (InvalidOptionId).
func optionSize(id uint8) (size uint8, ok bool) {
	switch id {
	case OptionSupportedFunctions:
		return 4, true
	case OptionConnectionSignature:
		return 16, true
	case OptionFragmentID:
		return 1, true
	case OptionInitialSequenceID:
		return 2, true
	case OptionMaximumSubstreamID:
		return 1, true
	default:
		return 0, false
	}
}

// decodeOptions walks a packet's options TLV area, returning a map from
// option id to raw value bytes. A tag whose declared size doesn't match
// its fixed expected size is a parse error (InvalidOptionSize); an
// unrecognised tag is a parse error (InvalidOptionId).
func decodeOptions(data []byte) (map[uint8][]byte, error) {
	out := make(map[uint8][]byte)

	offset := 0
	for offset < len(data) {
		if offset+2 > len(data) {
			return nil, &ParseError{Reason: "truncated option header"}
		}

		id := data[offset]
		size := data[offset+1]
		offset += 2

		expected, ok := optionSize(id)
		if !ok {
			return nil, &ParseError{Reason: "invalid option id"}
		}

		if size != expected {
			return nil, &ParseError{Reason: "invalid option size"}
		}

		if offset+int(size) > len(data) {
			return nil, &ParseError{Reason: "truncated option value"}
		}

		out[id] = data[offset : offset+int(size)]
		offset += int(size)
	}

	return out, nil
}

// encodeOption appends one TLV-encoded option to an options buffer.
func encodeOption(id uint8, value []byte) []byte {
	out := make([]byte, 0, 2+len(value))
	out = append(out, id, uint8(len(value)))
	out = append(out, value...)
	return out
}

func encodeConnectionSignatureOption(signature []byte) []byte {
	return encodeOption(OptionConnectionSignature, signature)
}

func decodeConnectionSignatureOption(data []byte) ([]byte, bool) {
	options, err := decodeOptions(data)
	if err != nil {
		return nil, false
	}

	value, ok := options[OptionConnectionSignature]
	return value, ok
}

func decodeFragmentIDOption(data []byte) (uint8, bool) {
	options, err := decodeOptions(data)
	if err != nil {
		return 0, false
	}

	value, ok := options[OptionFragmentID]
	if !ok {
		return 0, false
	}

	return value[0], true
}

func decodeMaximumSubstreamIDOption(data []byte) (uint8, bool) {
	options, err := decodeOptions(data)
	if err != nil {
		return 0, false
	}

	value, ok := options[OptionMaximumSubstreamID]
	if !ok {
		return 0, false
	}

	return value[0], true
}

func encodeSupportedFunctionsOption(mask uint32) []byte {
	value := make([]byte, 4)
	binary.LittleEndian.PutUint32(value, mask)
	return encodeOption(OptionSupportedFunctions, value)
}

func decodeSupportedFunctionsOption(data []byte) (uint32, bool) {
	options, err := decodeOptions(data)
	if err != nil {
		return 0, false
	}

	value, ok := options[OptionSupportedFunctions]
	if !ok {
		return 0, false
	}

	return binary.LittleEndian.Uint32(value), true
}

package nex

import "testing"

func TestDecodeOptionsRoundTrip(t *testing.T) {
	sig := make([]byte, 16)
	for i := range sig {
		sig[i] = byte(i)
	}

	data := append([]byte{}, encodeConnectionSignatureOption(sig)...)
	data = append(data, encodeOption(OptionFragmentID, []byte{0})...)
	data = append(data, encodeSupportedFunctionsOption(0x04)...)

	options, err := decodeOptions(data)
	if err != nil {
		t.Fatalf("decodeOptions: %v", err)
	}

	gotSig, ok := options[OptionConnectionSignature]
	if !ok || string(gotSig) != string(sig) {
		t.Fatalf("ConnectionSignature option = %v, want %v", gotSig, sig)
	}

	mask, ok := decodeSupportedFunctionsOption(data)
	if !ok || mask != 0x04 {
		t.Fatalf("SupportedFunctions = %d, ok=%v, want 4,true", mask, ok)
	}

	fragment, ok := decodeFragmentIDOption(data)
	if !ok || fragment != 0 {
		t.Fatalf("FragmentID = %d, ok=%v, want 0,true", fragment, ok)
	}
}

func TestDecodeOptionsRejectsUnknownID(t *testing.T) {
	data := encodeOption(0xFE, []byte{1, 2, 3})

	_, err := decodeOptions(data)
	if err == nil {
		t.Fatal("expected InvalidOptionId error, got nil")
	}
}

func TestDecodeOptionsRejectsWrongSize(t *testing.T) {
	// ConnectionSignature must be exactly 16 bytes.
	data := encodeOption(OptionConnectionSignature, []byte{1, 2, 3})

	_, err := decodeOptions(data)
	if err == nil {
		t.Fatal("expected InvalidOptionSize error, got nil")
	}
}

func TestDecodeMaximumSubstreamIDOption(t *testing.T) {
	data := encodeOption(OptionMaximumSubstreamID, []byte{3})

	got, ok := decodeMaximumSubstreamIDOption(data)
	if !ok || got != 3 {
		t.Fatalf("MaximumSubstreamID = %d, ok=%v, want 3,true", got, ok)
	}
}

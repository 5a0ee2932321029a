package rmc

import (
	"bytes"
	"testing"
)

func TestEncodeSuccessResponseThenDecodeRequestRoundTrip(t *testing.T) {
	requestBody := NewByteStreamOut()
	encodeProtocolID(requestBody, 10, true)
	requestBody.WriteUInt32(77)  // call id
	requestBody.WriteUInt32(2)   // method id
	requestBody.WriteRaw([]byte("payload"))

	frameBytes := prependSize(requestBody.Bytes())

	frame, sizeMatches, err := DecodeRequestFrame(frameBytes)
	if err != nil {
		t.Fatalf("DecodeRequestFrame: %v", err)
	}

	if !sizeMatches {
		t.Fatal("sizeMatches = false for a correctly framed request")
	}

	if frame.ProtocolID != 10 || frame.CallID != 77 || frame.MethodID != 2 {
		t.Fatalf("frame = %+v, want ProtocolID=10 CallID=77 MethodID=2", frame)
	}

	if string(frame.Payload) != "payload" {
		t.Fatalf("Payload = %q, want %q", frame.Payload, "payload")
	}
}

func TestDecodeRequestFrameExtendedProtocolID(t *testing.T) {
	body := NewByteStreamOut()
	encodeProtocolID(body, 300, true)
	body.WriteUInt32(1)
	body.WriteUInt32(1)

	frame, _, err := DecodeRequestFrame(prependSize(body.Bytes()))
	if err != nil {
		t.Fatalf("DecodeRequestFrame: %v", err)
	}

	if frame.ProtocolID != 300 {
		t.Fatalf("ProtocolID = %d, want 300", frame.ProtocolID)
	}
}

func TestDecodeRequestFrameRejectsResponseFrame(t *testing.T) {
	response := EncodeSuccessResponse(10, 1, 2, []byte("x"))

	if _, _, err := DecodeRequestFrame(response); err == nil {
		t.Fatal("DecodeRequestFrame must reject a frame with the request bit clear")
	}
}

func TestDecodeRequestFrameFlagsSizeMismatch(t *testing.T) {
	body := NewByteStreamOut()
	encodeProtocolID(body, 10, true)
	body.WriteUInt32(1)
	body.WriteUInt32(1)

	bodyBytes := body.Bytes()

	// Deliberately declare a size that disagrees with the actual body.
	framed := make([]byte, 4+len(bodyBytes))
	framed[0] = 0xFF
	copy(framed[4:], bodyBytes)

	_, sizeMatches, err := DecodeRequestFrame(framed)
	if err != nil {
		t.Fatalf("DecodeRequestFrame: %v", err)
	}

	if sizeMatches {
		t.Fatal("sizeMatches = true for a declared size that disagrees with the actual body length")
	}
}

func TestEncodeErrorResponseCarriesCodeAndCallID(t *testing.T) {
	encoded := EncodeErrorResponse(10, 99, Core_NotImplemented)

	out := NewByteStreamIn(encoded)
	size, err := out.ReadUInt32()
	if err != nil {
		t.Fatalf("reading size: %v", err)
	}

	if int(size) != len(encoded)-4 {
		t.Fatalf("declared size = %d, want %d", size, len(encoded)-4)
	}

	protoByte, _ := out.ReadUInt8()
	if protoByte&requestFlag != 0 {
		t.Fatal("error response must not carry the request bit")
	}

	successFlag, _ := out.ReadUInt8()
	if successFlag != 0 {
		t.Fatal("error response success byte must be 0")
	}

	errorCode, _ := out.ReadUInt32()
	if ErrorCode(errorCode) != Core_NotImplemented {
		t.Fatalf("errorCode = %#x, want %#x", errorCode, Core_NotImplemented)
	}

	callID, _ := out.ReadUInt32()
	if callID != 99 {
		t.Fatalf("callID = %d, want 99", callID)
	}
}

func TestEncodeRequestFrameThenDecodeRoundTrip(t *testing.T) {
	payload := []byte("notify-me")
	encoded := EncodeRequestFrame(14, 1, 1, payload)

	frame, sizeMatches, err := DecodeRequestFrame(encoded)
	if err != nil {
		t.Fatalf("DecodeRequestFrame: %v", err)
	}

	if !sizeMatches {
		t.Fatal("sizeMatches = false for EncodeRequestFrame's own output")
	}

	if frame.ProtocolID != 14 || frame.CallID != 1 || frame.MethodID != 1 {
		t.Fatalf("frame = %+v, want ProtocolID=14 CallID=1 MethodID=1", frame)
	}

	if !bytes.Equal(frame.Payload, payload) {
		t.Fatalf("Payload = %q, want %q", frame.Payload, payload)
	}
}

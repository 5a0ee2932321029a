package rmc

import (
	"encoding/binary"

	"github.com/olympus-net/nexus"
)

// requestFlag marks a protocol-id byte as "request" (set) vs "response"
// (clear); 0x7F in the low 7 bits means a following u16 id.
const (
	requestFlag        = 0x80
	extendedProtocolID = 0x7F
)

// RequestFrame is a decoded RMC request frame: `[u32 size][u8 compressed
// proto_id | 0x80][u16 proto_id if compressed==0x7F][u32 call_id][u32
// method_id][payload]`.
type RequestFrame struct {
	ProtocolID uint16
	CallID     uint32
	MethodID   uint32
	Payload    []byte
}

// DecodeRequestFrame parses one RMC request frame from a decrypted DATA
// payload. A declared size that disagrees with the bytes actually
// consumed is reported by a false second result rather than an error;
// the frame is still usable.
func DecodeRequestFrame(data []byte) (*RequestFrame, bool, error) {
	if len(data) < 4 {
		return nil, false, &nex.ParseError{Reason: "rmc request shorter than size field"}
	}

	declaredSize := binary.LittleEndian.Uint32(data[0:4])
	body := data[4:]

	if len(body) < 1 {
		return nil, false, &nex.ParseError{Reason: "rmc request missing protocol id"}
	}

	idByte := body[0]
	isRequest := idByte&requestFlag != 0
	protoLow := idByte &^ requestFlag

	offset := 1
	var protocolID uint16

	if protoLow == extendedProtocolID {
		if len(body) < offset+2 {
			return nil, false, &nex.ParseError{Reason: "rmc request truncated extended protocol id"}
		}

		protocolID = binary.LittleEndian.Uint16(body[offset : offset+2])
		offset += 2
	} else {
		protocolID = uint16(protoLow)
	}

	if !isRequest {
		return nil, false, &nex.ParseError{Reason: "rmc frame is not a request"}
	}

	if len(body) < offset+8 {
		return nil, false, &nex.ParseError{Reason: "rmc request truncated call/method id"}
	}

	callID := binary.LittleEndian.Uint32(body[offset : offset+4])
	offset += 4
	methodID := binary.LittleEndian.Uint32(body[offset : offset+4])
	offset += 4

	payload := body[offset:]

	sizeMatches := int(declaredSize) == len(body)

	return &RequestFrame{
		ProtocolID: protocolID,
		CallID:     callID,
		MethodID:   methodID,
		Payload:    payload,
	}, sizeMatches, nil
}

// encodeProtocolID writes protocolID as the compressed-or-extended leading
// byte(s) of an RMC frame, with the request bit applied if isRequest.
func encodeProtocolID(out *ByteStreamOut, protocolID uint16, isRequest bool) {
	flag := uint8(0)
	if isRequest {
		flag = requestFlag
	}

	if protocolID >= extendedProtocolID {
		out.WriteUInt8(extendedProtocolID | flag)
		out.WriteUInt16(protocolID)
	} else {
		out.WriteUInt8(uint8(protocolID) | flag)
	}
}

// EncodeSuccessResponse builds a success RMC response frame: payload
// bytes preceded by the size header, protocol id, success flag, call id,
// and method id (with the 0x8000 response bit set).
func EncodeSuccessResponse(protocolID uint16, callID, methodID uint32, data []byte) []byte {
	body := NewByteStreamOut()
	encodeProtocolID(body, protocolID, false)
	body.WriteUInt8(1)
	body.WriteUInt32(callID)
	body.WriteUInt32(methodID | 0x8000)
	body.WriteRaw(data)

	return prependSize(body.Bytes())
}

// EncodeErrorResponse builds an error RMC response frame: the numeric
// error code and call id, with the success byte cleared.
func EncodeErrorResponse(protocolID uint16, callID uint32, errorCode ErrorCode) []byte {
	body := NewByteStreamOut()
	encodeProtocolID(body, protocolID, false)
	body.WriteUInt8(0)
	body.WriteUInt32(uint32(errorCode))
	body.WriteUInt32(callID)

	return prependSize(body.Bytes())
}

// EncodeRequestFrame builds an RMC request frame, the mirror image of
// DecodeRequestFrame. Used for server-originated calls (e.g. protocol
// 14's fire-and-forget ProcessNotificationEvent, which the server sends
// to clients rather than receiving).
func EncodeRequestFrame(protocolID uint16, callID, methodID uint32, payload []byte) []byte {
	body := NewByteStreamOut()
	encodeProtocolID(body, protocolID, true)
	body.WriteUInt32(callID)
	body.WriteUInt32(methodID)
	body.WriteRaw(payload)

	return prependSize(body.Bytes())
}

func prependSize(body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(body)))
	copy(out[4:], body)
	return out
}

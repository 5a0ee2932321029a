package rmc

import (
	"testing"

	"github.com/rs/zerolog"

	nex "github.com/olympus-net/nexus"
)

func testContext() *nex.CoreContext {
	return &nex.CoreContext{Logger: zerolog.Nop(), Clock: nex.SystemClock{}}
}

func encodeRequest(t *testing.T, protocolID uint16, callID, methodID uint32) []byte {
	t.Helper()

	body := NewByteStreamOut()
	encodeProtocolID(body, protocolID, true)
	body.WriteUInt32(callID)
	body.WriteUInt32(methodID)

	return prependSize(body.Bytes())
}

func TestDispatchRoutesToMatchingHandler(t *testing.T) {
	d := NewDispatcher(testContext())
	d.Register(&ProtocolServer{
		ID: 10,
		Methods: map[uint32]HandlerFunc{
			1: func(pid uint32, hasPID bool, payload []byte) ([]byte, error) {
				return []byte("ok"), nil
			},
		},
	})

	response := d.Dispatch(encodeRequest(t, 10, 55, 1), 0, false)

	in := NewByteStreamIn(response)
	if _, err := in.ReadUInt32(); err != nil {
		t.Fatalf("reading response size: %v", err)
	}

	protoByte, _ := in.ReadUInt8()
	if protoByte&requestFlag != 0 {
		t.Fatal("response must not carry the request bit")
	}

	success, _ := in.ReadUInt8()
	if success != 1 {
		t.Fatal("expected a success response")
	}

	callID, _ := in.ReadUInt32()
	if callID != 55 {
		t.Fatalf("callID = %d, want 55", callID)
	}
}

func TestDispatchUnmatchedProtocolRespondsNotImplemented(t *testing.T) {
	d := NewDispatcher(testContext())

	response := d.Dispatch(encodeRequest(t, 10, 1, 1), 0, false)

	in := NewByteStreamIn(response)
	in.ReadUInt32() // size
	in.ReadUInt8()  // proto byte
	success, _ := in.ReadUInt8()
	if success != 0 {
		t.Fatal("unmatched protocol must respond with an error frame")
	}

	code, _ := in.ReadUInt32()
	if ErrorCode(code) != Core_NotImplemented {
		t.Fatalf("error code = %#x, want Core_NotImplemented", code)
	}
}

func TestDispatchUnmatchedMethodRespondsNotImplemented(t *testing.T) {
	d := NewDispatcher(testContext())
	d.Register(&ProtocolServer{
		ID:      10,
		Methods: map[uint32]HandlerFunc{1: func(uint32, bool, []byte) ([]byte, error) { return nil, nil }},
	})

	response := d.Dispatch(encodeRequest(t, 10, 1, 99), 0, false)

	in := NewByteStreamIn(response)
	in.ReadUInt32()
	in.ReadUInt8()
	success, _ := in.ReadUInt8()
	if success != 0 {
		t.Fatal("unmatched method must respond with an error frame")
	}

	code, _ := in.ReadUInt32()
	if ErrorCode(code) != Core_NotImplemented {
		t.Fatalf("error code = %#x, want Core_NotImplemented", code)
	}

	callID, _ := in.ReadUInt32()
	if callID != 1 {
		t.Fatalf("callID = %d, want 1 (original call id preserved)", callID)
	}
}

func TestDispatchSurfacesRpcError(t *testing.T) {
	d := NewDispatcher(testContext())
	d.Register(&ProtocolServer{
		ID: 10,
		Methods: map[uint32]HandlerFunc{
			1: func(uint32, bool, []byte) ([]byte, error) {
				return nil, &nex.RpcError{Code: uint32(RendezVous_InvalidPassword)}
			},
		},
	})

	response := d.Dispatch(encodeRequest(t, 10, 1, 1), 0, false)

	in := NewByteStreamIn(response)
	in.ReadUInt32()
	in.ReadUInt8()
	success, _ := in.ReadUInt8()
	if success != 0 {
		t.Fatal("expected an error response")
	}

	code, _ := in.ReadUInt32()
	if ErrorCode(code) != RendezVous_InvalidPassword {
		t.Fatalf("error code = %#x, want RendezVous_InvalidPassword", code)
	}
}

func TestDispatchNotificationIsFireAndForget(t *testing.T) {
	d := NewDispatcher(testContext())

	called := false
	d.Register(&ProtocolServer{
		ID: NotificationProtocolID,
		Methods: map[uint32]HandlerFunc{
			NotificationMethodID: func(uint32, bool, []byte) ([]byte, error) {
				called = true
				return nil, nil
			},
		},
	})

	response := d.Dispatch(encodeRequest(t, NotificationProtocolID, 1, NotificationMethodID), 0, false)

	if response != nil {
		t.Fatal("a fire-and-forget notification must never produce a response frame")
	}

	if !called {
		t.Fatal("the bound notification handler must still run")
	}
}

func TestDispatchNotificationNoHandlerStillProducesNoResponse(t *testing.T) {
	d := NewDispatcher(testContext())

	response := d.Dispatch(encodeRequest(t, NotificationProtocolID, 1, NotificationMethodID), 0, false)

	if response != nil {
		t.Fatal("an unbound notification must still never produce a response frame")
	}
}

package nex

import (
	"bytes"
	"testing"
	"time"
)

func TestCipherPairIsInvolutive(t *testing.T) {
	pair, err := newCipherPair([]byte("CD&ML"))
	if err != nil {
		t.Fatalf("newCipherPair: %v", err)
	}

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	ciphertext := pair.EncryptOutgoing(plaintext)

	recvPair, err := newCipherPair([]byte("CD&ML"))
	if err != nil {
		t.Fatalf("newCipherPair: %v", err)
	}

	decrypted := recvPair.DecryptIncoming(ciphertext)
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("DecryptIncoming(EncryptOutgoing(x)) = %q, want %q", decrypted, plaintext)
	}
}

func TestRotateSubstreamKeyIsDeterministicAndIdentityAtZero(t *testing.T) {
	base := []byte("0123456789ABCDEF0123456789ABCDE")

	if !bytes.Equal(rotateSubstreamKey(base, 0), base) {
		t.Fatal("rotateSubstreamKey(base, 0) must return the raw session key unmodified")
	}

	k1a := rotateSubstreamKey(base, 1)
	k1b := rotateSubstreamKey(base, 1)
	if !bytes.Equal(k1a, k1b) {
		t.Fatal("rotateSubstreamKey is not deterministic for the same (base, substream)")
	}

	if bytes.Equal(k1a, base) {
		t.Fatal("rotateSubstreamKey(base, 1) must differ from the raw key")
	}

	k2 := rotateSubstreamKey(base, 2)
	if bytes.Equal(k1a, k2) {
		t.Fatal("rotateSubstreamKey must differ across substream indices")
	}
}

// Byte-exact vectors: each round adds (L+1-i) to each of the first L/2
// bytes at 0-based position i, with L=32 here. The second half of the
// key never changes.
func TestRotateSubstreamKeyKnownVectors(t *testing.T) {
	base := make([]byte, 32)
	for i := range base {
		base[i] = byte(i)
	}

	cases := []struct {
		substream int
		want      []byte
	}{
		{
			substream: 1,
			want: []byte{
				0x21, 0x21, 0x21, 0x21, 0x21, 0x21, 0x21, 0x21,
				0x21, 0x21, 0x21, 0x21, 0x21, 0x21, 0x21, 0x21,
				0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
				0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E, 0x1F,
			},
		},
		{
			substream: 4,
			want: []byte{
				0x84, 0x81, 0x7E, 0x7B, 0x78, 0x75, 0x72, 0x6F,
				0x6C, 0x69, 0x66, 0x63, 0x60, 0x5D, 0x5A, 0x57,
				0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
				0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E, 0x1F,
			},
		},
		{
			substream: 16,
			want: []byte{
				0x10, 0x01, 0xF2, 0xE3, 0xD4, 0xC5, 0xB6, 0xA7,
				0x98, 0x89, 0x7A, 0x6B, 0x5C, 0x4D, 0x3E, 0x2F,
				0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
				0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E, 0x1F,
			},
		},
	}

	for _, tc := range cases {
		got := rotateSubstreamKey(base, tc.substream)
		if !bytes.Equal(got, tc.want) {
			t.Fatalf("rotateSubstreamKey(base, %d) = % x, want % x", tc.substream, got, tc.want)
		}
	}
}

func TestBuildCipherPairsSubstreamZeroUsesRawKey(t *testing.T) {
	sessionKey := []byte("0123456789ABCDEF0123456789ABCDE")

	pairs, err := buildCipherPairs(sessionKey, 3)
	if err != nil {
		t.Fatalf("buildCipherPairs: %v", err)
	}

	if len(pairs) != 3 {
		t.Fatalf("len(pairs) = %d, want 3", len(pairs))
	}

	raw, _ := newCipherPair(sessionKey)
	want := raw.EncryptOutgoing([]byte("probe"))
	got := pairs[0].EncryptOutgoing([]byte("probe"))

	if !bytes.Equal(got, want) {
		t.Fatal("substream 0's cipher pair must be keyed with the raw session key")
	}
}

func TestPacketSignAndVerifyRoundTrip(t *testing.T) {
	p := &PacketV1{
		PacketType: DataPacket,
		SequenceID: 7,
		Payload:    []byte("payload bytes"),
	}

	sessionKey := []byte("session-key-bytes")
	connSig := bytes.Repeat([]byte{0xAB}, 16)

	p.Sign("6f599f81", sessionKey, connSig)

	if !p.VerifySignature("6f599f81", sessionKey, connSig) {
		t.Fatal("VerifySignature() = false for a packet signed with identical inputs")
	}

	if p.VerifySignature("6f599f81", sessionKey, nil) {
		t.Fatal("VerifySignature() = true with a different connection signature")
	}

	if p.VerifySignature("wrong-access-key", sessionKey, connSig) {
		t.Fatal("VerifySignature() = true with a different access key")
	}
}

func TestUnsecureCryptoHandlerInstantiate(t *testing.T) {
	h := &UnsecureCryptoHandler{AccessKey: "6f599f81"}

	response, instance, ok := h.Instantiate(nil, nil, nil, 4)
	if !ok {
		t.Fatal("Instantiate() ok = false for an unsecure handler")
	}

	if len(response) != 0 {
		t.Fatalf("unsecure Instantiate() response = %v, want empty", response)
	}

	if _, err := instance.Substream(3); err != nil {
		t.Fatalf("Substream(3): %v", err)
	}

	if _, err := instance.Substream(4); err == nil {
		t.Fatal("Substream(4) should be out of range for substreamCount=4")
	}

	if _, hasPID := instance.GetUserID(); hasPID {
		t.Fatal("unsecure instance must not report an authenticated user id")
	}
}

func TestSecureCryptoHandlerInstantiateAcceptsValidTicket(t *testing.T) {
	clock := FixedClock{At: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	srcPID, srcPassword := uint32(1001), []byte("aaaaaaaaaaaaaaaa")
	serverPID, serverPassword := uint32(2), []byte("bbbbbbbbbbbbbbbb")

	issued, err := IssueTicket(srcPID, srcPassword, serverPID, serverPassword, clock.Now())
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	srcKey := DeriveKerberosKey(srcPID, srcPassword)
	sessionKey, forServer, err := DecodeClientTicketEnvelope(issued.ForClient, srcKey)
	if err != nil {
		t.Fatalf("DecodeClientTicketEnvelope: %v", err)
	}

	if !bytes.Equal(forServer, issued.ForServer) {
		t.Fatal("forServer extracted from client envelope must match IssuedTicket.ForServer")
	}

	const checkValue uint32 = 0x12345678

	request := make([]byte, 12)
	copy(request[0:4], leBytesUint32(srcPID))
	copy(request[4:8], leBytesUint32(7)) // cid, unused downstream
	copy(request[8:12], leBytesUint32(checkValue))
	encryptedRequest := rc4XOR(sessionKey, request)

	connectPayload := make([]byte, 0)
	connectPayload = append(connectPayload, leBytesUint32(uint32(len(forServer)))...)
	connectPayload = append(connectPayload, forServer...)
	connectPayload = append(connectPayload, leBytesUint32(uint32(len(encryptedRequest)))...)
	connectPayload = append(connectPayload, encryptedRequest...)

	h := &SecureCryptoHandler{
		AccessKey:        "6f599f81",
		KerberosPassword: string(serverPassword),
		ServerPID:        serverPID,
		TicketLifetime:   2 * time.Minute,
		Clock:            clock,
	}

	response, instance, ok := h.Instantiate(nil, nil, connectPayload, 1)
	if !ok {
		t.Fatal("Instantiate() ok = false for a legitimate ticket + request")
	}

	responsePlain, err := decryptAndVerify(sessionKey, response)
	if err != nil {
		t.Fatalf("decryptAndVerify(response): %v", err)
	}

	if len(responsePlain) != 4 || leUint32(responsePlain) != checkValue+1 {
		t.Fatalf("response check value = % x, want %#x", responsePlain, checkValue+1)
	}

	pid, hasPID := instance.GetUserID()
	if !hasPID || pid != srcPID {
		t.Fatalf("GetUserID() = (%d, %v), want (%d, true)", pid, hasPID, srcPID)
	}
}

func TestSecureCryptoHandlerInstantiateRejectsPIDSpoof(t *testing.T) {
	clock := FixedClock{At: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	srcPID, srcPassword := uint32(1001), []byte("aaaaaaaaaaaaaaaa")
	serverPID, serverPassword := uint32(2), []byte("bbbbbbbbbbbbbbbb")

	issued, err := IssueTicket(srcPID, srcPassword, serverPID, serverPassword, clock.Now())
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	srcKey := DeriveKerberosKey(srcPID, srcPassword)
	sessionKey, forServer, err := DecodeClientTicketEnvelope(issued.ForClient, srcKey)
	if err != nil {
		t.Fatalf("DecodeClientTicketEnvelope: %v", err)
	}

	spoofedPID := uint32(999)
	request := make([]byte, 12)
	copy(request[0:4], leBytesUint32(spoofedPID))
	copy(request[8:12], leBytesUint32(0x12345678))
	encryptedRequest := rc4XOR(sessionKey, request)

	connectPayload := make([]byte, 0)
	connectPayload = append(connectPayload, leBytesUint32(uint32(len(forServer)))...)
	connectPayload = append(connectPayload, forServer...)
	connectPayload = append(connectPayload, leBytesUint32(uint32(len(encryptedRequest)))...)
	connectPayload = append(connectPayload, encryptedRequest...)

	h := &SecureCryptoHandler{
		AccessKey:        "6f599f81",
		KerberosPassword: string(serverPassword),
		ServerPID:        serverPID,
		TicketLifetime:   2 * time.Minute,
		Clock:            clock,
	}

	_, instance, ok := h.Instantiate(nil, nil, connectPayload, 1)
	if ok || instance != nil {
		t.Fatal("Instantiate() must reject a request pid that doesn't match the ticket's source pid")
	}
}

func TestSecureCryptoHandlerInstantiateRejectsExpiredTicket(t *testing.T) {
	issueTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	srcPID, srcPassword := uint32(1001), []byte("aaaaaaaaaaaaaaaa")
	serverPID, serverPassword := uint32(2), []byte("bbbbbbbbbbbbbbbb")

	issued, err := IssueTicket(srcPID, srcPassword, serverPID, serverPassword, issueTime)
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	srcKey := DeriveKerberosKey(srcPID, srcPassword)
	sessionKey, forServer, err := DecodeClientTicketEnvelope(issued.ForClient, srcKey)
	if err != nil {
		t.Fatalf("DecodeClientTicketEnvelope: %v", err)
	}

	request := make([]byte, 12)
	copy(request[0:4], leBytesUint32(srcPID))
	copy(request[8:12], leBytesUint32(0x12345678))
	encryptedRequest := rc4XOR(sessionKey, request)

	connectPayload := make([]byte, 0)
	connectPayload = append(connectPayload, leBytesUint32(uint32(len(forServer)))...)
	connectPayload = append(connectPayload, forServer...)
	connectPayload = append(connectPayload, leBytesUint32(uint32(len(encryptedRequest)))...)
	connectPayload = append(connectPayload, encryptedRequest...)

	h := &SecureCryptoHandler{
		AccessKey:        "6f599f81",
		KerberosPassword: string(serverPassword),
		ServerPID:        serverPID,
		TicketLifetime:   2 * time.Minute,
		Clock:            FixedClock{At: issueTime.Add(3 * time.Minute)},
	}

	_, _, ok := h.Instantiate(nil, nil, connectPayload, 1)
	if ok {
		t.Fatal("Instantiate() must reject a ticket older than the configured lifetime")
	}
}

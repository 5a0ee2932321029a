package nex

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// DeriveKerberosKey derives a 16-byte account key from a PID and a
// 16-byte password by iterating MD5 N = 65000 + (pid mod 1024) times,
// starting from the password bytes.
func DeriveKerberosKey(pid uint32, password []byte) []byte {
	n := 65000 + int(pid%1024)

	key := make([]byte, 16)
	copy(key, password)

	for i := 0; i < n; i++ {
		sum := md5.Sum(key)
		key = sum[:]
	}

	return key
}

// KerberosDateTime is the packed 64-bit timestamp used inside tickets:
// seconds(6) | minutes(6) | hours(5) | day(5) | month(4) | year(rest).
type KerberosDateTime uint64

// NewKerberosDateTime packs a time.Time into a KerberosDateTime.
func NewKerberosDateTime(t time.Time) KerberosDateTime {
	var v uint64

	v |= uint64(t.Second()) & 0x3F
	v |= (uint64(t.Minute()) & 0x3F) << 6
	v |= (uint64(t.Hour()) & 0x1F) << 12
	v |= (uint64(t.Day()) & 0x1F) << 17
	v |= (uint64(t.Month()) & 0x0F) << 22
	v |= uint64(t.Year()) << 26

	return KerberosDateTime(v)
}

// Time unpacks a KerberosDateTime back into a time.Time (UTC).
func (d KerberosDateTime) Time() time.Time {
	v := uint64(d)

	second := int(v & 0x3F)
	minute := int((v >> 6) & 0x3F)
	hour := int((v >> 12) & 0x1F)
	day := int((v >> 17) & 0x1F)
	month := int((v >> 22) & 0x0F)
	year := int(v >> 26)

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// innerTicket is { issued_time u64 | pid u32 | session_key[32] },
// encrypted with the destination account's derived key.
type innerTicket struct {
	Issued     time.Time
	PID        uint32
	SessionKey []byte
}

func (t *innerTicket) serialize() []byte {
	buf := make([]byte, 8+4+32)

	binary.LittleEndian.PutUint64(buf[0:8], uint64(NewKerberosDateTime(t.Issued)))
	binary.LittleEndian.PutUint32(buf[8:12], t.PID)
	copy(buf[12:44], t.SessionKey)

	return buf
}

func decodeInnerTicket(buf []byte) (*innerTicket, error) {
	if len(buf) < 44 {
		return nil, &ParseError{Reason: "inner ticket too short"}
	}

	return &innerTicket{
		Issued:     KerberosDateTime(binary.LittleEndian.Uint64(buf[0:8])).Time(),
		PID:        binary.LittleEndian.Uint32(buf[8:12]),
		SessionKey: append([]byte(nil), buf[12:44]...),
	}, nil
}

// Ticket is the decoded, verified result of presenting a two-layer
// Kerberos-style envelope to a secure server: the authenticated session
// key and originating PID, plus the inner envelope's issue time (used to
// enforce the configured ticket lifetime).
type Ticket struct {
	PID        uint32
	SessionKey []byte
	Issued     time.Time
}

// IssuedTicket is the pair of byte strings the auth server hands out for
// one (src, dst) pair: ForClient is returned to the requesting user
// inside the login response (only the user's own derived key can open
// it, yielding the session key); ForServer is the bytes the client then
// forwards verbatim as the "ticket" half of a secure server's CONNECT
// payload (only the destination server's own derived key can open it).
type IssuedTicket struct {
	ForClient []byte
	ForServer []byte
}

// IssueTicket builds the two-layer authenticated envelope described by
// the ticket subsystem. The inner layer (ForServer) proves src's identity
// and carries a fresh session key, encrypted and MAC'd under dst's
// derived key so only the destination server can open it. The outer
// layer (ForClient) wraps that same session key plus dst's pid,
// encrypted and MAC'd under src's derived key so only the requesting
// user can open it.
func IssueTicket(srcPID uint32, srcPassword []byte, dstPID uint32, dstPassword []byte, now time.Time) (*IssuedTicket, error) {
	sessionKey := make([]byte, 32)
	if _, err := rand.Read(sessionKey); err != nil {
		return nil, &CryptoError{Reason: "session key generation: " + err.Error()}
	}

	srcKey := DeriveKerberosKey(srcPID, srcPassword)
	dstKey := DeriveKerberosKey(dstPID, dstPassword)

	inner := &innerTicket{Issued: now, PID: srcPID, SessionKey: sessionKey}
	forServer := encryptAndMAC(dstKey, inner.serialize())

	outer := make([]byte, 0, 32+4+4+len(forServer))
	outer = append(outer, sessionKey...)
	outer = append(outer, leBytesUint32(dstPID)...)
	outer = append(outer, leBytesUint32(uint32(len(forServer)))...)
	outer = append(outer, forServer...)

	forClient := encryptAndMAC(srcKey, outer)

	return &IssuedTicket{ForClient: forClient, ForServer: forServer}, nil
}

// DecodeClientTicketEnvelope decrypts and verifies the ForClient half of
// an IssuedTicket, as the requesting user would with their own derived
// key, recovering the session key and the embedded ForServer bytes to
// forward on to the destination server.
func DecodeClientTicketEnvelope(envelope []byte, srcKey []byte) (sessionKey []byte, forServer []byte, err error) {
	plain, err := decryptAndVerify(srcKey, envelope)
	if err != nil {
		return nil, nil, err
	}

	if len(plain) < 32+4+4 {
		return nil, nil, &ParseError{Reason: "client ticket envelope too short"}
	}

	sessionKey = append([]byte(nil), plain[0:32]...)
	innerLen := binary.LittleEndian.Uint32(plain[36:40])

	if uint32(len(plain)-40) < innerLen {
		return nil, nil, &ParseError{Reason: "embedded server ticket length out of range"}
	}

	forServer = append([]byte(nil), plain[40:40+innerLen]...)

	return sessionKey, forServer, nil
}

// encryptAndMAC returns RC4(key, plaintext) || HMAC_MD5(key, RC4(key, plaintext)).
func encryptAndMAC(key, plaintext []byte) []byte {
	ciphertext := rc4XOR(key, plaintext)
	mac := hmacMD5(key, ciphertext)

	out := make([]byte, 0, len(ciphertext)+len(mac))
	out = append(out, ciphertext...)
	out = append(out, mac...)

	return out
}

// decryptAndVerify reverses encryptAndMAC, returning the plaintext. It
// fails closed (CryptoError) on a MAC mismatch.
func decryptAndVerify(key, envelope []byte) ([]byte, error) {
	if len(envelope) < md5.Size {
		return nil, &CryptoError{Reason: "envelope shorter than MAC"}
	}

	ciphertext := envelope[:len(envelope)-md5.Size]
	gotMAC := envelope[len(envelope)-md5.Size:]
	wantMAC := hmacMD5(key, ciphertext)

	if !hmac.Equal(gotMAC, wantMAC) {
		return nil, &CryptoError{Reason: "ticket MAC verification failed"}
	}

	return rc4XOR(key, ciphertext), nil
}

// DecodeTicket decrypts and verifies the ForServer half of an
// IssuedTicket (the bytes a client forwards as the "ticket" portion of a
// secure CONNECT payload), using the destination server's own derived
// key. It does not itself enforce ticket lifetime; callers
// (SecureCryptoHandler) apply that policy against the returned Issued
// time.
func DecodeTicket(envelope []byte, serverKey []byte) (*Ticket, error) {
	plain, err := decryptAndVerify(serverKey, envelope)
	if err != nil {
		return nil, err
	}

	inner, err := decodeInnerTicket(plain)
	if err != nil {
		return nil, err
	}

	return &Ticket{
		PID:        inner.PID,
		SessionKey: inner.SessionKey,
		Issued:     inner.Issued,
	}, nil
}

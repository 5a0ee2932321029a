package nex

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rc4"
	"time"
)

// unsecureStreamKey is the fixed RC4 key used by every unsecure endpoint
// (title servers that perform no ticket authentication).
const unsecureStreamKey = "CD&ML"

// CipherPair is one substream's independent send/recv RC4 stream-cipher
// state. RC4 is a symmetric stream cipher, so encrypting the output a
// second time with the same key recovers the plaintext; send and recv
// never share state because client→server and server→client bytes must
// advance the keystream independently.
type CipherPair struct {
	send *rc4.Cipher
	recv *rc4.Cipher
}

// newCipherPair builds a CipherPair from a single key, keying both
// directions identically (client and server each run their own copy).
func newCipherPair(key []byte) (*CipherPair, error) {
	send, err := rc4.NewCipher(key)
	if err != nil {
		return nil, &CryptoError{Reason: "rc4 key init: " + err.Error()}
	}

	recv, err := rc4.NewCipher(key)
	if err != nil {
		return nil, &CryptoError{Reason: "rc4 key init: " + err.Error()}
	}

	return &CipherPair{send: send, recv: recv}, nil
}

// EncryptOutgoing advances the send keystream over buf, returning the
// ciphertext. Safe only to call once per logical packet, in send order.
func (c *CipherPair) EncryptOutgoing(buf []byte) []byte {
	out := make([]byte, len(buf))
	c.send.XORKeyStream(out, buf)
	return out
}

// DecryptIncoming advances the recv keystream over buf, returning the
// plaintext. Safe only to call once per logical packet, in the order the
// peer encrypted them.
func (c *CipherPair) DecryptIncoming(buf []byte) []byte {
	out := make([]byte, len(buf))
	c.recv.XORKeyStream(out, buf)
	return out
}

// rotateSubstreamKey derives substream i's key from the substream-0
// session key by adding (L+1-pos) to each of the first L/2 bytes, where
// L is the key length and pos is the 0-based byte position. Substream 0
// always uses the raw session key unmodified.
func rotateSubstreamKey(base []byte, substream int) []byte {
	if substream == 0 {
		return base
	}

	key := append([]byte(nil), base...)
	l := len(key)

	for round := 0; round < substream; round++ {
		rotated := append([]byte(nil), key...)
		for i := 0; i < l/2; i++ {
			rotated[i] = key[i] + byte(l+1-i)
		}
		key = rotated
	}

	return key
}

// buildCipherPairs derives n independent CipherPairs from a session key,
// per the substream key-rotation rule in the secure crypto handler.
func buildCipherPairs(sessionKey []byte, n int) ([]*CipherPair, error) {
	pairs := make([]*CipherPair, n)

	for i := 0; i < n; i++ {
		pair, err := newCipherPair(rotateSubstreamKey(sessionKey, i))
		if err != nil {
			return nil, err
		}

		pairs[i] = pair
	}

	return pairs, nil
}

// CryptoHandler is the per-endpoint policy for signing packets and
// deriving substream ciphers. There are exactly two variants: Unsecure
// (fixed key, no ticket check) and Secure (ticket-derived session key).
type CryptoHandler interface {
	// SignPreHandshake signs a packet before any session key exists
	// (the SYN/SYN-ACK exchange).
	SignPreHandshake(packet *PacketV1, connectionSignature []byte)
	// Instantiate processes a CONNECT payload and, on success, returns
	// the bytes to place in the CONNECT-ACK payload plus a CryptoInstance
	// bound to the negotiated session. ok is false if the CONNECT should
	// be logged and dropped rather than accepted.
	Instantiate(remoteSignature, selfSignature, connectPayload []byte, substreamCount int) (responsePayload []byte, instance *CryptoInstance, ok bool)
}

// CryptoInstance is the live, per-connection state a CryptoHandler
// produces once a session has been established.
type CryptoInstance struct {
	accessKey  string
	selfSig    []byte
	sessionKey []byte // nil for unsecure connections
	substreams []*CipherPair
	userPID    uint32
	hasUserPID bool
}

// Substream returns the cipher pair for the given substream id.
func (ci *CryptoInstance) Substream(id int) (*CipherPair, error) {
	if id < 0 || id >= len(ci.substreams) {
		return nil, &CryptoError{Reason: "substream index out of range"}
	}

	return ci.substreams[id], nil
}

// GetUserID returns the authenticated PID for a secure session, or
// (0, false) for an unsecure one.
func (ci *CryptoInstance) GetUserID() (uint32, bool) {
	return ci.userPID, ci.hasUserPID
}

// SignConnect signs the CONNECT-ACK reply. No session key is active yet
// from the wire's perspective (session key is folded in only once the
// connection is Active and exchanging DATA).
func (ci *CryptoInstance) SignConnect(packet *PacketV1) {
	packet.Sign(ci.accessKey, nil, ci.selfSig)
}

// SignPacket signs a DATA/PING/DISCONNECT packet once the connection is
// Active, folding in the session key if one exists.
func (ci *CryptoInstance) SignPacket(packet *PacketV1) {
	packet.Sign(ci.accessKey, ci.sessionKey, ci.selfSig)
}

// VerifyPacket checks a packet's signature against the same inputs
// SignPacket would use.
func (ci *CryptoInstance) VerifyPacket(packet *PacketV1) bool {
	return packet.VerifySignature(ci.accessKey, ci.sessionKey, ci.selfSig)
}

// UnsecureCryptoHandler is the CryptoHandler for title servers that
// perform no ticket authentication: every connection shares the fixed
// "CD&ML" stream key.
type UnsecureCryptoHandler struct {
	AccessKey string
}

func (h *UnsecureCryptoHandler) SignPreHandshake(packet *PacketV1, connectionSignature []byte) {
	packet.Sign(h.AccessKey, nil, connectionSignature)
}

func (h *UnsecureCryptoHandler) Instantiate(remoteSignature, selfSignature, connectPayload []byte, substreamCount int) ([]byte, *CryptoInstance, bool) {
	pairs, err := buildCipherPairs([]byte(unsecureStreamKey), substreamCount)
	if err != nil {
		return nil, nil, false
	}

	return []byte{}, &CryptoInstance{
		accessKey:  h.AccessKey,
		selfSig:    selfSignature,
		substreams: pairs,
	}, true
}

// SecureCryptoHandler is the CryptoHandler for servers that require a
// Kerberos-style ticket (the secure rendez-vous / matchmake backends).
type SecureCryptoHandler struct {
	AccessKey        string
	KerberosPassword string
	ServerPID        uint32
	TicketLifetime   time.Duration
	Clock            Clock
}

func (h *SecureCryptoHandler) SignPreHandshake(packet *PacketV1, connectionSignature []byte) {
	packet.Sign(h.AccessKey, nil, connectionSignature)
}

// Instantiate parses connectPayload as [buffer ticket][buffer request],
// decrypts the ticket under this server's derived key, decrypts the
// request under the ticket's session key, and rejects on pid mismatch or
// expiry. On success it builds one CipherPair per substream from the
// session key via the rotation rule, and returns check_value+1,
// serialised little-endian and encrypted+MAC'd under the session key,
// as the CONNECT-ACK payload.
func (h *SecureCryptoHandler) Instantiate(remoteSignature, selfSignature, connectPayload []byte, substreamCount int) ([]byte, *CryptoInstance, bool) {
	ticketBytes, request, ok := splitLengthPrefixedPair(connectPayload)
	if !ok {
		return nil, nil, false
	}

	serverKey := DeriveKerberosKey(h.ServerPID, []byte(h.KerberosPassword))

	ticket, err := DecodeTicket(ticketBytes, serverKey)
	if err != nil {
		return nil, nil, false
	}

	if h.Clock != nil && h.TicketLifetime > 0 {
		age := h.Clock.Now().Sub(ticket.Issued)
		if age > h.TicketLifetime {
			return nil, nil, false
		}
	}

	requestPlain := rc4XOR(ticket.SessionKey, request)
	if len(requestPlain) < 12 {
		return nil, nil, false
	}

	requestPID := leUint32(requestPlain[0:4])
	// requestCID := leUint32(requestPlain[4:8]) // parsed, not threaded further
	checkValue := leUint32(requestPlain[8:12])

	if requestPID != ticket.PID {
		return nil, nil, false
	}

	pairs, err := buildCipherPairs(ticket.SessionKey, substreamCount)
	if err != nil {
		return nil, nil, false
	}

	response := encryptAndMAC(ticket.SessionKey, leBytesUint32(checkValue+1))

	return response, &CryptoInstance{
		accessKey:  h.AccessKey,
		selfSig:    selfSignature,
		sessionKey: ticket.SessionKey,
		substreams: pairs,
		userPID:    ticket.PID,
		hasUserPID: true,
	}, true
}

// splitLengthPrefixedPair splits a [u32 len][bytes][u32 len][bytes] buffer
// into its two parts, matching how the CONNECT payload packs
// [ticket][request].
func splitLengthPrefixedPair(data []byte) (first, second []byte, ok bool) {
	if len(data) < 4 {
		return nil, nil, false
	}

	firstLen := int(leUint32(data[0:4]))
	if len(data) < 4+firstLen+4 {
		return nil, nil, false
	}

	first = data[4 : 4+firstLen]
	rest := data[4+firstLen:]

	secondLen := int(leUint32(rest[0:4]))
	if len(rest) < 4+secondLen {
		return nil, nil, false
	}

	second = rest[4 : 4+secondLen]

	return first, second, true
}

// rc4XOR runs RC4 once over data with key and returns the result; used
// for one-shot decrypts where a persistent CipherPair isn't needed.
func rc4XOR(key, data []byte) []byte {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil
	}

	out := make([]byte, len(data))
	c.XORKeyStream(out, data)

	return out
}

// hmacMD5 computes HMAC-MD5(key, data).
func hmacMD5(key, data []byte) []byte {
	mac := hmac.New(md5.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leBytesUint32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}


package nex

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/binary"
)

// PRUDP packet types, carried in the low 4 bits of the types-and-flags
// header field.
const (
	SynPacket PacketType = iota
	ConnectPacket
	DataPacket
	DisconnectPacket
	PingPacket
)

// PRUDP packet flags, carried in the high 12 bits of the types-and-flags
// header field, one bit each.
const (
	FlagAck PacketFlag = 1 << iota
	FlagReliable
	FlagNeedsAck
	FlagHasSize
	FlagMultiAck
	FlagUseCompression
)

// PacketType is one of Syn/Connect/Data/Disconnect/Ping.
type PacketType uint16

// PacketFlag is a single bit of the types-and-flags field.
type PacketFlag uint16

const prudpV1Magic = 0xEAD0

// prudpV1HeaderSize is the fixed size of the header preceding the
// signature, in bytes: magic(2) version(1) packet_specific_size(1)
// payload_size(2) source_port(1) destination_port(1) types_and_flags(2)
// session_id(1) substream_id(1) sequence_id(2).
const prudpV1HeaderSize = 14

// prudpV1SignatureSize is the HMAC-MD5 packet signature trailing the
// header.
const prudpV1SignatureSize = 16

// PacketV1 is a parsed PRUDP v1 packet. All multi-byte integer fields are
// little-endian on the wire.
type PacketV1 struct {
	SourcePort      VirtualPort
	DestinationPort VirtualPort
	PacketType      PacketType
	Flags           PacketFlag
	SessionID       uint8
	SubstreamID     uint8
	SequenceID      uint16
	Signature       [prudpV1SignatureSize]byte
	Options         []byte
	Payload         []byte
}

// HasFlag reports whether every bit in flag is set.
func (p *PacketV1) HasFlag(flag PacketFlag) bool {
	return p.Flags&flag == flag
}

// AddFlag sets flag.
func (p *PacketV1) AddFlag(flag PacketFlag) {
	p.Flags |= flag
}

// ClearFlag unsets flag.
func (p *PacketV1) ClearFlag(flag PacketFlag) {
	p.Flags &^= flag
}

// DecodePacketV1 parses a single PRUDP v1 datagram. It validates the magic
// and version but does not verify the signature; callers with access to
// the owning connection's substream ciphers should call VerifySignature
// separately once decrypted state is available.
func DecodePacketV1(data []byte) (*PacketV1, error) {
	if len(data) < prudpV1HeaderSize+prudpV1SignatureSize {
		return nil, &ParseError{Reason: "packet shorter than header+signature"}
	}

	magic := binary.LittleEndian.Uint16(data[0:2])
	if magic != prudpV1Magic {
		return nil, &ParseError{Reason: "invalid magic"}
	}

	version := data[2]
	if version != 1 {
		return nil, &ParseError{Reason: "unsupported prudp version"}
	}

	optionsSize := int(data[3])
	payloadSize := int(binary.LittleEndian.Uint16(data[4:6]))
	sourcePort := VirtualPort(data[6])
	destinationPort := VirtualPort(data[7])
	typesAndFlags := binary.LittleEndian.Uint16(data[8:10])
	sessionID := data[10]
	substreamID := data[11]
	sequenceID := binary.LittleEndian.Uint16(data[12:14])

	offset := prudpV1HeaderSize

	packet := &PacketV1{
		SourcePort:      sourcePort,
		DestinationPort: destinationPort,
		PacketType:      PacketType(typesAndFlags & 0x000F),
		Flags:           PacketFlag((typesAndFlags & 0xFFF0) >> 4),
		SessionID:       sessionID,
		SubstreamID:     substreamID,
		SequenceID:      sequenceID,
	}

	if len(data) < offset+prudpV1SignatureSize {
		return nil, &ParseError{Reason: "packet shorter than signature"}
	}

	copy(packet.Signature[:], data[offset:offset+prudpV1SignatureSize])
	offset += prudpV1SignatureSize

	if len(data) < offset+optionsSize {
		return nil, &ParseError{Reason: "packet shorter than declared option size"}
	}

	packet.Options = append([]byte(nil), data[offset:offset+optionsSize]...)
	offset += optionsSize

	if len(data) < offset+payloadSize {
		return nil, &ParseError{Reason: "packet shorter than declared payload size"}
	}

	packet.Payload = append([]byte(nil), data[offset:offset+payloadSize]...)

	return packet, nil
}

// headerBytes returns the 14-byte header (everything VerifySignature and
// Encode sign/serialize before the signature), with payloadSize and
// optionsSize already resolved against the packet's current Options and
// Payload.
func (p *PacketV1) headerBytes() []byte {
	header := make([]byte, prudpV1HeaderSize)

	binary.LittleEndian.PutUint16(header[0:2], prudpV1Magic)
	header[2] = 1
	header[3] = uint8(len(p.Options))
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(p.Payload)))
	header[6] = uint8(p.SourcePort)
	header[7] = uint8(p.DestinationPort)
	binary.LittleEndian.PutUint16(header[8:10], uint16(p.PacketType)|(uint16(p.Flags)<<4))
	header[10] = p.SessionID
	header[11] = p.SubstreamID
	binary.LittleEndian.PutUint16(header[12:14], p.SequenceID)

	return header
}

// Encode serializes the packet with the given signature, which the caller
// must have computed via Sign.
func (p *PacketV1) Encode() []byte {
	header := p.headerBytes()

	out := make([]byte, 0, len(header)+len(p.Signature)+len(p.Options)+len(p.Payload))
	out = append(out, header...)
	out = append(out, p.Signature[:]...)
	out = append(out, p.Options...)
	out = append(out, p.Payload...)

	return out
}

// accessKeySigningKey derives the HMAC key from a title's ASCII access
// key: MD5 of the access key bytes.
func accessKeySigningKey(accessKey string) [md5.Size]byte {
	return md5.Sum([]byte(accessKey))
}

// Sign computes and stores the HMAC-MD5 packet signature. connectionSignature
// is the 16-byte value established during the SYN/SYN-ACK exchange (zero
// for the initial client SYN); sessionKey is the active substream's RC4
// session key, or nil before a session key has been established.
func (p *PacketV1) Sign(accessKey string, sessionKey []byte, connectionSignature []byte) {
	key := accessKeySigningKey(accessKey)

	mac := hmac.New(md5.New, key[:])

	mac.Write(p.headerBytes()[2:])

	if len(sessionKey) > 0 {
		mac.Write(sessionKey)
	}

	var seq [2]byte
	binary.LittleEndian.PutUint16(seq[:], p.SequenceID)
	mac.Write(seq[:])

	mac.Write(connectionSignature)
	mac.Write(p.Payload)

	copy(p.Signature[:], mac.Sum(nil))
}

// VerifySignature recomputes the signature the same way Sign does and
// compares it against the signature currently stored on the packet.
func (p *PacketV1) VerifySignature(accessKey string, sessionKey []byte, connectionSignature []byte) bool {
	want := p.Signature

	p.Sign(accessKey, sessionKey, connectionSignature)
	got := p.Signature
	p.Signature = want

	return hmac.Equal(got[:], want[:])
}

package nex

import "fmt"

// StreamType identifies which logical substream kind a VirtualPort
// addresses. The endpoints this module builds use RVSecure; the others
// are carried for wire fidelity.
type StreamType uint8

const (
	StreamTypeDO StreamType = iota
	StreamTypeRVSec
	StreamTypeRVScheme
	StreamTypeRVSource
	StreamTypeRVAny
	StreamTypeSBMgmt
	StreamTypeNAT
	StreamTypeSession
	StreamTypeNATEcho
	StreamTypeRouting
	StreamTypeGame
	StreamTypeRVSecure
	StreamTypeRelay
)

// VirtualPort packs a 4-bit stream type and a 4-bit port number into a
// single byte, letting many independent logical endpoints multiplex over
// one UDP socket.
type VirtualPort uint8

// NewVirtualPort builds a VirtualPort from a stream type and port number.
// Both values are masked to 4 bits.
func NewVirtualPort(streamType StreamType, portNumber uint8) VirtualPort {
	return VirtualPort((uint8(streamType) << 4) | (portNumber & 0x0F))
}

// StreamType returns the high nibble.
func (p VirtualPort) StreamType() StreamType {
	return StreamType((p >> 4) & 0x0F)
}

// PortNumber returns the low nibble.
func (p VirtualPort) PortNumber() uint8 {
	return uint8(p) & 0x0F
}

func (p VirtualPort) String() string {
	return fmt.Sprintf("%d:%d", p.StreamType(), p.PortNumber())
}

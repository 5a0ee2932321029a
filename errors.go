package nex

import "fmt"

// ParseError indicates malformed PRUDP or RMC bytes. The packet that
// triggered it is dropped; the connection it belongs to survives.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// CryptoError indicates a MAC verification, ticket decrypt, or substream
// index failure. The offending packet is dropped but the connection is
// never torn down over it, to avoid giving an attacker a decryption oracle.
type CryptoError struct {
	Reason string
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto error: %s", e.Reason)
}

// ProtocolViolation indicates a packet that is well-formed but not valid
// given connection state (DATA on a non-Active connection, a duplicate
// sequence, fragmented reliable payload, unknown packet type).
type ProtocolViolation struct {
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

// RpcError wraps a numeric RMC error code returned by a handler. It
// surfaces as an RMC error response; the connection survives. Code holds
// the raw wire value (see rmc.ErrorCode for the named table) rather than
// that type itself, so this package never needs to import rmc.
type RpcError struct {
	Code uint32
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error: 0x%08X", e.Code)
}

// IoError indicates a failed UDP send. The next client retransmit will
// reattempt; no state is rolled back.
type IoError struct {
	Reason string
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error: %s", e.Reason)
}

// FatalError is the only admissible process-abort condition: the router's
// UDP socket failed to bind at startup.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error: %s", e.Reason)
}

package nex

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"
)

// ConnectionState is where a Connection sits in the handshake state
// machine. Only Active accepts DATA.
type ConnectionState uint8

const (
	StateNew ConnectionState = iota
	StateHalfOpen
	StateActive
	StateClosed
)

// activeState is the subset of Connection fields that only exist once
// the handshake has completed; kept as its own struct so a fresh
// Connection carries a nil activeState and ConnectionState.New state.
type activeState struct {
	serverSessionID uint8
	rx              *ReliableRXQueue
	txCounter       uint16
	crypto          *CryptoInstance
}

// Connection is the per-(UDP peer, virtual port) session record. All
// mutation happens under mutex, matching the "per-connection work is
// serialised behind a per-connection mutex" concurrency rule.
type Connection struct {
	mutex sync.Mutex

	ID                 uint64
	Address            *net.UDPAddr
	State              ConnectionState
	ClientSignature    []byte
	ServerSignature    []byte
	active             *activeState
	lastActivity       time.Time
	clock              Clock
	idleTimeout        time.Duration
	disconnectHandlers []func(*Connection)
}

// NewConnection creates a fresh, HalfOpen-eligible connection in State
// New for addr.
func NewConnection(addr *net.UDPAddr, clock Clock, idleTimeout time.Duration) *Connection {
	return &Connection{
		ID:          rand.Uint64(),
		Address:     addr,
		State:       StateNew,
		clock:       clock,
		idleTimeout: idleTimeout,
	}
}

// stableConnectionSignature derives the client connection signature: a
// stable hash of the peer address, sent as the SYN-ACK's
// ConnectionSignature option. It is not a MAC input: the SYN-ACK is
// signed without a connection signature, and packets after the CONNECT
// are signed with the signature the CONNECT packet carried.
func stableConnectionSignature(addr *net.UDPAddr) []byte {
	sum := md5.Sum([]byte(addr.String()))
	return sum[:]
}

// touch resets the idle timer; called on every packet received for this
// connection.
func (c *Connection) touch() {
	c.lastActivity = c.clock.Now()
}

// IdleExpired reports whether this connection has gone longer than its
// idle timeout without activity.
func (c *Connection) IdleExpired() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.idleTimeout <= 0 {
		return false
	}

	return c.clock.Now().Sub(c.lastActivity) > c.idleTimeout
}

// supportedFunctionsMask is the only capability bit the handshake echoes
// back to the client.
const supportedFunctionsMask = 0x04

// HandleSyn processes a SYN packet: computes and stores the client
// signature, transitions to HalfOpen, and returns the SYN-ACK to send.
func (c *Connection) HandleSyn(syn *PacketV1, crypto CryptoHandler) *PacketV1 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.touch()

	c.ClientSignature = stableConnectionSignature(c.Address)
	c.State = StateHalfOpen

	var options []byte
	options = append(options, encodeConnectionSignatureOption(c.ClientSignature)...)

	if functions, ok := decodeSupportedFunctionsOption(syn.Options); ok {
		options = append(options, encodeSupportedFunctionsOption(functions&supportedFunctionsMask)...)
	}

	if maxSubstream, ok := decodeMaximumSubstreamIDOption(syn.Options); ok {
		options = append(options, encodeOption(OptionMaximumSubstreamID, []byte{maxSubstream})...)
	}

	ack := &PacketV1{
		SourcePort:      syn.DestinationPort,
		DestinationPort: syn.SourcePort,
		PacketType:      SynPacket,
		SessionID:       syn.SessionID,
		SubstreamID:     syn.SubstreamID,
		SequenceID:      0,
		Options:         options,
	}
	ack.AddFlag(FlagAck)
	ack.AddFlag(FlagHasSize)

	crypto.SignPreHandshake(ack, nil)

	return ack
}

// HandleConnect processes a CONNECT packet. On success it installs
// Active state and returns the CONNECT-ACK to send; ok is false if the
// CONNECT must be logged and dropped (malformed ticket, crypto
// instantiate failure, missing MaximumSubstreamId option).
func (c *Connection) HandleConnect(packet *PacketV1, crypto CryptoHandler, serverSessionID uint8) (ack *PacketV1, ok bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.touch()

	maxSubstream, hasMaxSubstream := decodeMaximumSubstreamIDOption(packet.Options)
	if !hasMaxSubstream {
		return nil, false
	}

	serverSig, found := decodeConnectionSignatureOption(packet.Options)
	if !found {
		serverSig = make([]byte, 16)
	}

	substreamCount := int(maxSubstream) + 1

	responsePayload, instance, instantiated := crypto.Instantiate(c.ClientSignature, serverSig, packet.Payload, substreamCount)
	if !instantiated {
		return nil, false
	}

	c.ServerSignature = serverSig
	c.active = &activeState{
		serverSessionID: serverSessionID,
		rx:              NewReliableRXQueue(2),
		txCounter:       1,
		crypto:          instance,
	}
	c.State = StateActive

	ack = &PacketV1{
		SourcePort:      packet.DestinationPort,
		DestinationPort: packet.SourcePort,
		PacketType:      ConnectPacket,
		SessionID:       serverSessionID,
		SubstreamID:     packet.SubstreamID,
		SequenceID:      1,
		Options:         packet.Options,
		Payload:         responsePayload,
	}
	ack.AddFlag(FlagAck)
	ack.AddFlag(FlagHasSize)

	instance.SignConnect(ack)

	return ack, true
}

// ReliableDataResult is one in-order reliable DATA payload ready for the
// RMC dispatcher, with the port pair its reply must use.
type ReliableDataResult struct {
	SubstreamID uint8
	Payload     []byte
	// ReplySourcePort/ReplyDestinationPort are the port pair a response
	// to this payload must use, following buildAck's swap convention
	// (reply source = the port this packet arrived addressed to; reply
	// destination = the port it came from).
	ReplySourcePort      VirtualPort
	ReplyDestinationPort VirtualPort
}

// HandleReliableData processes a reliable DATA packet: verifies Active
// state, rejects fragments and duplicates, inserts into the RX queue,
// and drains whatever is now in order. It returns the decrypted payloads
// ready for dispatch, in order, and the ack packet to send if NEED_ACK
// was set.
func (c *Connection) HandleReliableData(packet *PacketV1) ([]ReliableDataResult, *PacketV1, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.touch()

	if c.State != StateActive || c.active == nil {
		return nil, nil, &ProtocolViolation{Reason: "DATA on non-Active connection"}
	}

	if !c.active.crypto.VerifyPacket(packet) {
		return nil, nil, &CryptoError{Reason: "packet signature verification failed"}
	}

	if packet.HasFlag(FlagReliable) {
		// fragmentation is carried in an option; absence means
		// fragment id 0 (Non-goal (b): multi-fragment rejected).
		fragmentID, _ := decodeFragmentIDOption(packet.Options)
		if fragmentID != 0 {
			return nil, nil, &ProtocolViolation{Reason: "fragmented reliable payload rejected"}
		}

		accepted := c.active.rx.Insert(packet.SequenceID, packet.SubstreamID, fragmentID, packet.Payload)

		var ack *PacketV1
		if packet.HasFlag(FlagNeedsAck) {
			ack = c.buildAck(packet)
		}

		if !accepted {
			return nil, ack, nil
		}

		drained := c.active.rx.Drain(packet.SequenceID, packet.SubstreamID, fragmentID, packet.Payload)

		results := make([]ReliableDataResult, 0, len(drained))
		for _, item := range drained {
			pair, err := c.active.crypto.Substream(int(item.substreamID))
			if err != nil {
				continue
			}

			results = append(results, ReliableDataResult{
				SubstreamID:          item.substreamID,
				Payload:              pair.DecryptIncoming(item.payload),
				ReplySourcePort:      packet.DestinationPort,
				ReplyDestinationPort: packet.SourcePort,
			})
		}

		return results, ack, nil
	}

	return nil, nil, &ProtocolViolation{Reason: "unreliable DATA rejected"}
}

// buildAck builds a standalone ACK packet for packet, signed with the
// active crypto instance.
func (c *Connection) buildAck(packet *PacketV1) *PacketV1 {
	ack := &PacketV1{
		SourcePort:      packet.DestinationPort,
		DestinationPort: packet.SourcePort,
		PacketType:      packet.PacketType,
		SessionID:       c.active.serverSessionID,
		SubstreamID:     packet.SubstreamID,
		SequenceID:      packet.SequenceID,
	}
	ack.AddFlag(FlagAck)

	c.active.crypto.SignPacket(ack)

	return ack
}

// HandlePing processes a PING packet, resetting the idle timer and
// returning an ACK if NEED_ACK was set.
func (c *Connection) HandlePing(packet *PacketV1) *PacketV1 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.touch()

	if !packet.HasFlag(FlagNeedsAck) {
		return nil
	}

	if c.active != nil {
		return c.buildAck(packet)
	}

	ack := &PacketV1{
		SourcePort:      packet.DestinationPort,
		DestinationPort: packet.SourcePort,
		PacketType:      PingPacket,
		SessionID:       packet.SessionID,
		SubstreamID:     packet.SubstreamID,
		SequenceID:      packet.SequenceID,
	}
	ack.AddFlag(FlagAck)

	return ack
}

// HandleDisconnect builds the three loss-tolerant disconnect ACKs and
// transitions to Closed, dropping the active crypto state (ciphers must
// not outlive the session).
func (c *Connection) HandleDisconnect(packet *PacketV1) []*PacketV1 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var acks []*PacketV1

	for i := 0; i < 3; i++ {
		ack := &PacketV1{
			SourcePort:      packet.DestinationPort,
			DestinationPort: packet.SourcePort,
			PacketType:      DisconnectPacket,
			SessionID:       packet.SessionID,
			SubstreamID:     packet.SubstreamID,
			SequenceID:      packet.SequenceID,
		}
		ack.AddFlag(FlagAck)

		if c.active != nil {
			c.active.crypto.SignPacket(ack)
		}

		acks = append(acks, ack)
	}

	c.active = nil
	c.State = StateClosed

	for _, f := range c.disconnectHandlers {
		f(c)
	}

	return acks
}

// OnDisconnect registers f to run when this connection transitions to
// Closed.
func (c *Connection) OnDisconnect(f func(*Connection)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.disconnectHandlers = append(c.disconnectHandlers, f)
}

// PrepareOutgoing builds a reliable outbound DATA packet for payload on
// substreamID: assigns the next TX sequence, encrypts, and signs. It
// requires Active state.
func (c *Connection) PrepareOutgoing(substreamID uint8, sourcePort, destinationPort VirtualPort, payload []byte) (*PacketV1, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.State != StateActive || c.active == nil {
		return nil, &ProtocolViolation{Reason: "send on non-Active connection"}
	}

	pair, err := c.active.crypto.Substream(int(substreamID))
	if err != nil {
		return nil, err
	}

	sequence := c.active.txCounter
	c.active.txCounter++

	packet := &PacketV1{
		SourcePort:      sourcePort,
		DestinationPort: destinationPort,
		PacketType:      DataPacket,
		SessionID:       c.active.serverSessionID,
		SubstreamID:     substreamID,
		SequenceID:      sequence,
		Payload:         pair.EncryptOutgoing(payload),
	}
	packet.AddFlag(FlagReliable)
	packet.AddFlag(FlagNeedsAck)
	packet.AddFlag(FlagHasSize)

	c.active.crypto.SignPacket(packet)

	return packet, nil
}

// GetUserID returns the authenticated PID for a secure connection, if
// active and secure.
func (c *Connection) GetUserID() (uint32, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active == nil {
		return 0, false
	}

	return c.active.crypto.GetUserID()
}

func (c *Connection) String() string {
	return fmt.Sprintf("Connection{id=%d addr=%s state=%d}", c.ID, c.Address, c.State)
}

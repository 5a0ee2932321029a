package nex

import (
	"net"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// EndpointEventHandler receives decrypted reliable DATA payloads ready
// for RMC dispatch. replySourcePort/replyDestinationPort are the port
// pair a response to this payload must be addressed with.
type EndpointEventHandler func(conn *Connection, substreamID uint8, payload []byte, replySourcePort, replyDestinationPort VirtualPort)

// Endpoint is one virtual-port-addressed server instance, holding the
// connection table for everything addressed to its port number. It owns
// one CryptoHandler variant (unsecure or secure).
type Endpoint struct {
	ctx         *CoreContext
	router      *Router
	PortNumber  uint8
	StreamType  StreamType
	AccessKey   string
	Crypto      CryptoHandler
	IdleTimeout time.Duration

	connections         *MutexMap[string, *Connection]
	sessionIDCounter    *Counter[uint8]
	onData              []EndpointEventHandler
	connectionsAccepted *metrics.Counter
	connectionsReaped   *metrics.Counter
	cryptoErrors        *metrics.Counter
	protocolViolations  *metrics.Counter
}

// NewEndpoint constructs an Endpoint bound to the given virtual port
// number (stream type RVSecure, the convention used by every protocol
// server this module implements).
func NewEndpoint(ctx *CoreContext, router *Router, portNumber uint8, crypto CryptoHandler, accessKey string) *Endpoint {
	idleTimeout := 30 * time.Second
	if ctx.Config != nil && ctx.Config.IdleTimeout > 0 {
		idleTimeout = ctx.Config.IdleTimeout
	}

	return &Endpoint{
		ctx:                 ctx,
		router:              router,
		PortNumber:          portNumber,
		StreamType:          StreamTypeRVSecure,
		AccessKey:           accessKey,
		Crypto:              crypto,
		IdleTimeout:         idleTimeout,
		connections:         NewMutexMap[string, *Connection](),
		sessionIDCounter:    NewCounter[uint8](0),
		connectionsAccepted: metrics.GetOrCreateCounter("nexus_endpoint_connections_accepted_total"),
		connectionsReaped:   metrics.GetOrCreateCounter("nexus_endpoint_connections_reaped_total"),
		cryptoErrors:        metrics.GetOrCreateCounter("nexus_endpoint_crypto_errors_total"),
		protocolViolations:  metrics.GetOrCreateCounter("nexus_endpoint_protocol_violations_total"),
	}
}

// OnData registers a handler invoked for every decrypted reliable DATA
// payload accepted in order.
func (e *Endpoint) OnData(handler EndpointEventHandler) {
	e.onData = append(e.onData, handler)
}

// getOrCreateConnection looks up (and lazily creates) the Connection
// record for a peer address. Connections are created lazily on first
// packet.
func (e *Endpoint) getOrCreateConnection(addr *net.UDPAddr) *Connection {
	key := addr.String()

	conn, ok := e.connections.Get(key)
	if ok {
		return conn
	}

	conn = NewConnection(addr, e.ctx.Clock, e.IdleTimeout)
	e.connections.Set(key, conn)

	return conn
}

// HandlePacket dispatches one parsed packet by type to the owning
// Connection.
func (e *Endpoint) HandlePacket(addr *net.UDPAddr, packet *PacketV1) {
	conn := e.getOrCreateConnection(addr)

	switch packet.PacketType {
	case SynPacket:
		e.handleSyn(conn, addr, packet)
	case ConnectPacket:
		e.handleConnect(conn, addr, packet)
	case DataPacket:
		e.handleData(conn, addr, packet)
	case PingPacket:
		e.handlePing(conn, addr, packet)
	case DisconnectPacket:
		e.handleDisconnect(conn, addr, packet)
	default:
		e.protocolViolations.Inc()
		e.ctx.Logger.Warn().Int("type", int(packet.PacketType)).Msg("unknown packet type")
	}
}

func (e *Endpoint) send(addr *net.UDPAddr, packet *PacketV1) {
	if err := e.router.Send(addr, packet.Encode()); err != nil {
		e.ctx.Logger.Warn().Err(err).Msg("udp send failed")
	}
}

func (e *Endpoint) handleSyn(conn *Connection, addr *net.UDPAddr, packet *PacketV1) {
	ack := conn.HandleSyn(packet, e.Crypto)
	e.send(addr, ack)
}

func (e *Endpoint) handleConnect(conn *Connection, addr *net.UDPAddr, packet *PacketV1) {
	serverSessionID := e.sessionIDCounter.Increment()

	ack, ok := conn.HandleConnect(packet, e.Crypto, serverSessionID)
	if !ok {
		e.cryptoErrors.Inc()
		e.ctx.Logger.Warn().Str("addr", addr.String()).Msg("rejecting CONNECT")
		return
	}

	e.connectionsAccepted.Inc()
	e.send(addr, ack)
}

func (e *Endpoint) handleData(conn *Connection, addr *net.UDPAddr, packet *PacketV1) {
	results, ack, err := conn.HandleReliableData(packet)
	if err != nil {
		e.protocolViolations.Inc()
		e.ctx.Logger.Debug().Err(err).Str("addr", addr.String()).Msg("dropping data packet")
	}

	if ack != nil {
		e.send(addr, ack)
	}

	for _, result := range results {
		for _, handler := range e.onData {
			handler(conn, result.SubstreamID, result.Payload, result.ReplySourcePort, result.ReplyDestinationPort)
		}
	}
}

func (e *Endpoint) handlePing(conn *Connection, addr *net.UDPAddr, packet *PacketV1) {
	ack := conn.HandlePing(packet)
	if ack != nil {
		e.send(addr, ack)
	}
}

func (e *Endpoint) handleDisconnect(conn *Connection, addr *net.UDPAddr, packet *PacketV1) {
	acks := conn.HandleDisconnect(packet)
	for _, ack := range acks {
		e.send(addr, ack)
	}

	e.connections.Delete(addr.String())
}

// ReapIdle removes every connection that has exceeded its idle timeout,
// dropping cipher state as it goes. Safe to call periodically from a
// single maintenance goroutine.
func (e *Endpoint) ReapIdle() {
	var stale []string

	e.connections.Each(func(key string, conn *Connection) bool {
		if conn.IdleExpired() {
			stale = append(stale, key)
		}
		return true
	})

	for _, key := range stale {
		if conn, ok := e.connections.Get(key); ok {
			conn.mutex.Lock()
			conn.active = nil
			conn.State = StateClosed
			conn.mutex.Unlock()
		}

		e.connections.Delete(key)
		e.connectionsReaped.Inc()
	}
}

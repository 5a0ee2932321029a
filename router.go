package nex

import (
	"errors"
	"fmt"
	"net"
	"runtime"

	"github.com/VictoriaMetrics/metrics"
)

// maxDatagramSize is the largest UDP payload this router will attempt to
// read in one ReadFromUDP call.
const maxDatagramSize = 65507

// ErrPortTaken is returned by Router.AddEndpoint when the requested
// virtual port number is already bound.
var ErrPortTaken = errors.New("virtual port already bound")

// Router owns one UDP socket and fans datagrams out to the Endpoint
// bound to each packet's destination virtual port.
type Router struct {
	ctx       *CoreContext
	conn      *net.UDPConn
	endpoints *MutexMap[uint8, *Endpoint]

	packetsReceived *metrics.Counter
	packetsDropped  *metrics.Counter
	parseErrors     *metrics.Counter
}

// NewRouter constructs a Router. Call ListenAndServe to bind and start
// the receive loop.
func NewRouter(ctx *CoreContext) *Router {
	return &Router{
		ctx:             ctx,
		endpoints:       NewMutexMap[uint8, *Endpoint](),
		packetsReceived: metrics.GetOrCreateCounter("nexus_router_packets_received_total"),
		packetsDropped:  metrics.GetOrCreateCounter("nexus_router_packets_dropped_total"),
		parseErrors:     metrics.GetOrCreateCounter("nexus_router_parse_errors_total"),
	}
}

// AddEndpoint binds a new Endpoint to the given virtual port's port
// number nibble. Returns ErrPortTaken if that port number already has an
// endpoint.
func (r *Router) AddEndpoint(portNumber uint8, crypto CryptoHandler, accessKey string) (*Endpoint, error) {
	if _, ok := r.endpoints.Get(portNumber); ok {
		return nil, ErrPortTaken
	}

	endpoint := NewEndpoint(r.ctx, r, portNumber, crypto, accessKey)
	r.endpoints.Set(portNumber, endpoint)

	return endpoint, nil
}

// RemoveEndpoint unbinds the endpoint at portNumber. Idempotent.
func (r *Router) RemoveEndpoint(portNumber uint8) {
	r.endpoints.Delete(portNumber)
}

// GetOwnAddress returns the local address the router's socket is bound
// to, or nil if ListenAndServe hasn't been called yet.
func (r *Router) GetOwnAddress() net.Addr {
	if r.conn == nil {
		return nil
	}

	return r.conn.LocalAddr()
}

// ListenAndServe binds the UDP socket on the configured port and blocks,
// fanning the receive loop out over NumCPU goroutines, matching the
// "work-stealing task pool over non-blocking UDP I/O" scheduling model.
// A bind failure is the one error that aborts the process.
func (r *Router) ListenAndServe(bindAddr string, port int) error {
	udpAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", bindAddr, port))
	if err != nil {
		return &FatalError{Reason: "resolving bind address: " + err.Error()}
	}

	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return &FatalError{Reason: "binding udp socket: " + err.Error()}
	}

	r.conn = conn

	r.ctx.Logger.Info().Str("addr", conn.LocalAddr().String()).Msg("prudp router listening")

	errs := make(chan error, runtime.NumCPU())

	for i := 0; i < runtime.NumCPU(); i++ {
		go r.receiveLoop(errs)
	}

	return <-errs
}

func (r *Router) receiveLoop(errs chan<- error) {
	buffer := make([]byte, maxDatagramSize)

	for {
		n, addr, err := r.conn.ReadFromUDP(buffer)
		if err != nil {
			errs <- err
			return
		}

		r.packetsReceived.Inc()
		r.handleDatagram(addr, append([]byte(nil), buffer[:n]...))
	}
}

// handleDatagram parses every PRUDP packet in one datagram and dispatches
// each to its destination endpoint. A parse failure aborts this datagram
// only.
func (r *Router) handleDatagram(addr *net.UDPAddr, data []byte) {
	offset := 0

	for offset < len(data) {
		packet, err := DecodePacketV1(data[offset:])
		if err != nil {
			r.parseErrors.Inc()
			r.ctx.Logger.Debug().Err(err).Str("addr", addr.String()).Msg("dropping malformed datagram remainder")
			return
		}

		consumed := prudpV1HeaderSize + prudpV1SignatureSize + len(packet.Options) + len(packet.Payload)
		offset += consumed

		endpoint, ok := r.endpoints.Get(packet.DestinationPort.PortNumber())
		if !ok {
			r.packetsDropped.Inc()
			r.ctx.Logger.Warn().Uint8("port", packet.DestinationPort.PortNumber()).Msg("dropping packet for unbound virtual port")
			continue
		}

		go endpoint.HandlePacket(addr, packet)
	}
}

// Send writes raw bytes to addr over the router's shared-send UDP
// socket. Safe to call concurrently from many connections.
func (r *Router) Send(addr *net.UDPAddr, data []byte) error {
	_, err := r.conn.WriteToUDP(data, addr)
	if err != nil {
		return &IoError{Reason: err.Error()}
	}

	return nil
}

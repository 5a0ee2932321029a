// Package rmcserver wires an rmc.Dispatcher to a live nex.Endpoint:
// every decrypted reliable DATA payload the endpoint accepts is handed
// to the dispatcher, and whatever it returns (nil for a fire-and-forget
// notification) is sent back as a reliable DATA packet on the same
// substream, addressed with the port pair the request arrived on.
package rmcserver

import (
	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/rmc"
)

// boundConnection is what the registry keeps per authenticated pid: the
// connection to reply on, and the substream/port pair its last request
// arrived with (RMC notifications ride the same substream convention
// every other call on that connection uses).
type boundConnection struct {
	conn        *nex.Connection
	substreamID uint8
	sourcePort  nex.VirtualPort
	destPort    nex.VirtualPort
}

// Server is the glue between the transport layer (nex.Router/Endpoint/
// Connection) and the RMC layer (rmc.Dispatcher). It also doubles as a
// pid-addressable rmc.Notifier: every payload it dispatches records
// which live connection that pid is reachable on, so a later
// server-originated ProcessNotificationEvent call (e.g. a matchmake
// join announcement) can find its way back onto the wire.
type Server struct {
	ctx        *nex.CoreContext
	router     *nex.Router
	dispatcher *rmc.Dispatcher

	byPID *nex.MutexMap[uint32, boundConnection]

	callIDSeq *nex.Counter[uint32]
}

// NewServer builds an rmcserver.Server.
func NewServer(ctx *nex.CoreContext, router *nex.Router, dispatcher *rmc.Dispatcher) *Server {
	return &Server{
		ctx:        ctx,
		router:     router,
		dispatcher: dispatcher,
		byPID:      nex.NewMutexMap[uint32, boundConnection](),
		callIDSeq:  nex.NewCounter[uint32](0),
	}
}

// Attach registers this server as endpoint's data handler.
func (s *Server) Attach(endpoint *nex.Endpoint) {
	endpoint.OnData(s.handleData)
}

func (s *Server) handleData(conn *nex.Connection, substreamID uint8, payload []byte, replySourcePort, replyDestinationPort nex.VirtualPort) {
	pid, hasPID := conn.GetUserID()

	if hasPID {
		s.byPID.Set(pid, boundConnection{
			conn:        conn,
			substreamID: substreamID,
			sourcePort:  replySourcePort,
			destPort:    replyDestinationPort,
		})
	}

	response := s.dispatcher.Dispatch(payload, pid, hasPID)
	if response == nil {
		return
	}

	s.send(conn, substreamID, replySourcePort, replyDestinationPort, response)
}

func (s *Server) send(conn *nex.Connection, substreamID uint8, sourcePort, destPort nex.VirtualPort, payload []byte) {
	packet, err := conn.PrepareOutgoing(substreamID, sourcePort, destPort, payload)
	if err != nil {
		s.ctx.Logger.Warn().Err(err).Str("conn", conn.String()).Msg("failed to prepare rmc packet")
		return
	}

	if err := s.router.Send(conn.Address, packet.Encode()); err != nil {
		s.ctx.Logger.Warn().Err(err).Str("conn", conn.String()).Msg("failed to send rmc packet")
	}
}

// Notify implements rmc.Notifier by encoding event as a server-originated
// ProcessNotificationEvent request frame and sending it on the last
// connection pid was observed dispatching a request on. pids this
// server has never seen a request from (never authenticated on this
// endpoint) are silently skipped: only currently-connected
// participants get notified.
func (s *Server) Notify(pid uint32, event *rmc.NotificationEvent) {
	bound, ok := s.byPID.Get(pid)
	if !ok {
		s.ctx.Logger.Debug().Uint32("pid", pid).Msg("notification dropped: pid not bound to a live connection")
		return
	}

	body := rmc.NewByteStreamOut()
	event.Encode(body)

	callID := s.callIDSeq.Increment()
	frame := rmc.EncodeRequestFrame(rmc.NotificationProtocolID, callID, rmc.NotificationMethodID, body.Bytes())

	s.send(bound.conn, bound.substreamID, bound.sourcePort, bound.destPort, frame)
}

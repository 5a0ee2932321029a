package rmc

import (
	"errors"
	"fmt"

	"github.com/VictoriaMetrics/metrics"

	"github.com/olympus-net/nexus"
)

// NotificationProtocolID and NotificationMethodID identify the one
// "no-return" RMC call this module dispatches: protocol 14 method 1,
// ProcessNotificationEvent. A request for this pair is fire-and-forget
// and never produces a response frame.
const (
	NotificationProtocolID uint16 = 14
	NotificationMethodID   uint32 = 1
)

// HandlerFunc implements one RMC method. callerPID/hasCallerPID carry the
// authenticated PID for a secure connection (NotAuthenticated should be
// returned by the handler itself if it requires one and none is
// present).
type HandlerFunc func(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error)

// ProtocolServer binds one protocol id to its method table.
type ProtocolServer struct {
	ID      uint16
	Methods map[uint32]HandlerFunc
}

// Dispatcher walks a list of ProtocolServers and routes an incoming RMC
// request to the first one whose protocol id matches.
type Dispatcher struct {
	ctx     *nex.CoreContext
	servers []*ProtocolServer
}

// NewDispatcher builds an empty Dispatcher.
func NewDispatcher(ctx *nex.CoreContext) *Dispatcher {
	return &Dispatcher{ctx: ctx}
}

// Register adds a protocol server to the dispatch list.
func (d *Dispatcher) Register(server *ProtocolServer) {
	d.servers = append(d.servers, server)
}

func (d *Dispatcher) countOutcome(protocolID uint16, methodID uint32, outcome string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(
		`nexus_rmc_dispatch_total{protocol="%d",method="%d",outcome="%s"}`,
		protocolID, methodID, outcome,
	)).Inc()
}

// Dispatch decodes one reliable DATA payload as an RMC request, routes it
// to the matching handler, and returns the wire bytes to send back, or
// nil for a fire-and-forget notification (no response expected).
func (d *Dispatcher) Dispatch(payload []byte, callerPID uint32, hasCallerPID bool) []byte {
	frame, sizeMatches, err := DecodeRequestFrame(payload)
	if err != nil {
		d.ctx.Logger.Debug().Err(err).Msg("dropping malformed rmc request")
		return nil
	}

	if !sizeMatches {
		d.ctx.Logger.Warn().Uint16("protocol", frame.ProtocolID).Msg("rmc request declared size mismatch")
	}

	isNotification := frame.ProtocolID == NotificationProtocolID && frame.MethodID == NotificationMethodID

	var server *ProtocolServer
	for _, s := range d.servers {
		if s.ID == frame.ProtocolID {
			server = s
			break
		}
	}

	if server == nil {
		d.countOutcome(frame.ProtocolID, frame.MethodID, "not_implemented")
		d.ctx.Logger.Warn().Uint16("protocol", frame.ProtocolID).Msg("no protocol server bound")

		if isNotification {
			return nil
		}

		return EncodeErrorResponse(frame.ProtocolID, frame.CallID, Core_NotImplemented)
	}

	handler, ok := server.Methods[frame.MethodID]
	if !ok {
		d.countOutcome(frame.ProtocolID, frame.MethodID, "not_implemented")
		d.ctx.Logger.Warn().Uint16("protocol", frame.ProtocolID).Uint32("method", frame.MethodID).Msg("no method bound")

		if isNotification {
			return nil
		}

		return EncodeErrorResponse(frame.ProtocolID, frame.CallID, Core_NotImplemented)
	}

	data, err := handler(callerPID, hasCallerPID, frame.Payload)
	if err != nil {
		d.countOutcome(frame.ProtocolID, frame.MethodID, "error")

		if isNotification {
			d.ctx.Logger.Warn().Err(err).Msg("notification handler returned error, dropping (no return expected)")
			return nil
		}

		var rpcErr *nex.RpcError
		if errors.As(err, &rpcErr) {
			return EncodeErrorResponse(frame.ProtocolID, frame.CallID, ErrorCode(rpcErr.Code))
		}

		d.ctx.Logger.Warn().Err(err).Msg("handler returned non-RpcError, surfacing as Core_Unknown")
		return EncodeErrorResponse(frame.ProtocolID, frame.CallID, Core_Unknown)
	}

	d.countOutcome(frame.ProtocolID, frame.MethodID, "success")

	if isNotification {
		return nil
	}

	return EncodeSuccessResponse(frame.ProtocolID, frame.CallID, frame.MethodID, data)
}

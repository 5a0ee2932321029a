// Package nattraversal implements the thin slice of the NAT traversal
// RMC protocol (protocol id 3) this module's scope needs: accepting a
// client's self-reported NAT properties. Probe-initiation and
// traversal-result handling live elsewhere; this server only logs what
// the client reports.
package nattraversal

import (
	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/rmc"
)

// ProtocolID is the NATTraversal RMC protocol id.
const ProtocolID uint16 = 3

const methodReportNATProperties uint32 = 5

// Server implements the NatTraversal RMC protocol's
// ReportNATProperties method as a logging no-op acknowledgement.
type Server struct {
	ctx *nex.CoreContext
}

// NewServer builds a NatTraversal protocol server.
func NewServer(ctx *nex.CoreContext) *Server {
	return &Server{ctx: ctx}
}

// Register wires this server's methods into an rmc.Dispatcher.
func (s *Server) Register(dispatcher *rmc.Dispatcher) {
	dispatcher.Register(&rmc.ProtocolServer{
		ID: ProtocolID,
		Methods: map[uint32]rmc.HandlerFunc{
			methodReportNATProperties: s.handleReportNATProperties,
		},
	})
}

// handleReportNATProperties implements ReportNATProperties(nat_mapping,
// nat_filtering, rtt) -> (). The values are logged only; acting on them
// (hole-punch coordination) belongs to the external NAT traversal
// collaborator this module's Non-goals exclude.
func (s *Server) handleReportNATProperties(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	natMapping, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	natFiltering, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	rtt, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	event := s.ctx.Logger.Info().
		Uint32("nat_mapping", natMapping).
		Uint32("nat_filtering", natFiltering).
		Uint32("rtt", rtt)

	if hasCallerPID {
		event = event.Uint32("pid", callerPID)
	}

	event.Msg("reported nat properties")

	return rmc.NewByteStreamOut().Bytes(), nil
}

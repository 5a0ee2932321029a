// Package secure implements the secure server's RMC protocol (protocol
// id 11): RegisterEx and ReplaceURL against an in-memory station
// registry.
package secure

import (
	"strconv"

	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/rmc"
)

// ProtocolID is the SecureConnection RMC protocol id.
const ProtocolID uint16 = 11

const (
	methodRegisterEx uint32 = 1
	methodReplaceURL uint32 = 7
)

// Registration is one pid's registered public station.
type Registration struct {
	ConnectionID uint32
	PublicURL    *nex.StationURL
}

// Server implements the Secure RMC protocol against an in-memory
// registry of public station URLs, one per connected pid.
type Server struct {
	ctx          *nex.CoreContext
	registry     *nex.MutexMap[uint32, *Registration]
	connIDSeq    *nex.Counter[uint32]
	publicScheme string
}

// NewServer builds a Secure protocol server. publicScheme is the
// StationURL scheme ("prudps") used when minting a registrant's public
// URL.
func NewServer(ctx *nex.CoreContext, publicScheme string) *Server {
	return &Server{
		ctx:          ctx,
		registry:     nex.NewMutexMap[uint32, *Registration](),
		connIDSeq:    nex.NewCounter[uint32](1),
		publicScheme: publicScheme,
	}
}

// Register wires this server's methods into an rmc.Dispatcher.
func (s *Server) Register(dispatcher *rmc.Dispatcher) {
	dispatcher.Register(&rmc.ProtocolServer{
		ID: ProtocolID,
		Methods: map[uint32]rmc.HandlerFunc{
			methodRegisterEx: s.handleRegisterEx,
			methodReplaceURL: s.handleReplaceURL,
		},
	})
}

// handleRegisterEx implements RegisterEx(station_urls) -> (QResult,
// connection_id, public_station_url). The candidate URLs the client
// offers are parsed (a malformed list is rejected) but otherwise
// unused: the public station is built from the caller's registered
// identity rather than the socket's observed address, so callers must
// arrive already NAT-resolved.
func (s *Server) handleRegisterEx(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	if !hasCallerPID {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_NotAuthenticated)}
	}

	in := rmc.NewByteStreamIn(payload)

	count, err := in.ReadListCount()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	for i := 0; i < count; i++ {
		if _, err := in.ReadString(); err != nil {
			return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
		}
	}

	connectionID := s.connIDSeq.Increment()

	publicURL := nex.NewStationURL(s.publicScheme)
	publicURL.Set("pid", strconv.FormatUint(uint64(callerPID), 10))
	publicURL.Set("rvcid", strconv.FormatUint(uint64(connectionID), 10))
	publicURL.Set("natf", "0")
	publicURL.Set("natm", "0")

	s.registry.Set(callerPID, &Registration{ConnectionID: connectionID, PublicURL: publicURL})

	out := rmc.NewByteStreamOut()
	rmc.QResultSuccess(rmc.Core_Unknown).Encode(out)
	out.WriteUInt32(connectionID)
	out.WriteStationURL(publicURL)

	return out.Bytes(), nil
}

// handleReplaceURL implements ReplaceURL(target, dest): if the caller's
// registered public URL renders equal to target, it is replaced with
// dest.
func (s *Server) handleReplaceURL(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	if !hasCallerPID {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_NotAuthenticated)}
	}

	in := rmc.NewByteStreamIn(payload)

	target, err := in.ReadStationURL()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	dest, err := in.ReadStationURL()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	registration, ok := s.registry.Get(callerPID)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_NotAuthenticated)}
	}

	if registration.PublicURL.String() == target.String() {
		registration.PublicURL = dest
		s.registry.Set(callerPID, registration)
	}

	return rmc.NewByteStreamOut().Bytes(), nil
}

// PublicURL returns pid's currently registered public station URL,
// satisfying matchmake.StationLookup.
func (s *Server) PublicURL(pid uint32) (*nex.StationURL, bool) {
	registration, ok := s.registry.Get(pid)
	if !ok {
		return nil, false
	}

	return registration.PublicURL, true
}

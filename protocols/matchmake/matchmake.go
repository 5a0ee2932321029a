package matchmake

import (
	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/rmc"
)

// ProtocolID is the RendezVous (matchmake) RMC protocol id.
const ProtocolID uint16 = 21

const (
	methodUnregisterGathering uint32 = 2
	methodGetSessionURLs      uint32 = 41
)

// StationLookup resolves a pid's currently-registered public station
// URL. secure.Server implements this against its own registry; kept as
// an interface here so this package never imports protocols/secure.
type StationLookup interface {
	PublicURL(pid uint32) (*nex.StationURL, bool)
}

// Server implements the MatchMaking RMC protocol against a shared
// Arena.
type Server struct {
	ctx      *nex.CoreContext
	arena    *Arena
	stations StationLookup
}

// NewServer builds a MatchMaking protocol server.
func NewServer(ctx *nex.CoreContext, arena *Arena, stations StationLookup) *Server {
	return &Server{ctx: ctx, arena: arena, stations: stations}
}

// Register wires this server's methods into an rmc.Dispatcher.
func (s *Server) Register(dispatcher *rmc.Dispatcher) {
	dispatcher.Register(&rmc.ProtocolServer{
		ID: ProtocolID,
		Methods: map[uint32]rmc.HandlerFunc{
			methodUnregisterGathering: s.handleUnregisterGathering,
			methodGetSessionURLs:      s.handleGetSessionURLs,
		},
	})
}

// handleUnregisterGathering implements UnregisterGathering(gid) ->
// bool: only the gathering's owner may tear it down.
func (s *Server) handleUnregisterGathering(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	gid, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	session, ok := s.arena.Get(gid)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidGID)}
	}

	if !hasCallerPID || session.Body.Gathering.OwnerPID != callerPID {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_PermissionDenied)}
	}

	s.arena.Delete(gid)

	out := rmc.NewByteStreamOut()
	out.WriteBool(true)

	return out.Bytes(), nil
}

// handleGetSessionURLs implements GetSessionURLs(gid) ->
// List<StationUrl>: the public station URL of every current
// participant, via the injected StationLookup.
func (s *Server) handleGetSessionURLs(_ uint32, _ bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	gid, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	session, ok := s.arena.Get(gid)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidGID)}
	}

	urls := make([]*nex.StationURL, 0, len(session.Participants))
	for _, pid := range session.Participants {
		if url, ok := s.stations.PublicURL(pid); ok {
			urls = append(urls, url)
		}
	}

	out := rmc.NewByteStreamOut()
	out.WriteListCount(len(urls))
	for _, url := range urls {
		out.WriteStationURL(url)
	}

	return out.Bytes(), nil
}

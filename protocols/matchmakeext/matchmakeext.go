// Package matchmakeext implements the MatchmakeExtension RMC protocol
// (protocol id 109) against the same gathering arena protocol 21
// (protocols/matchmake.Server) uses.
package matchmakeext

import (
	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/protocols/matchmake"
	"github.com/olympus-net/nexus/rmc"
)

// ProtocolID is the MatchmakeExtension RMC protocol id.
const ProtocolID uint16 = 109

const (
	methodGetPlayingSession               uint32 = 16
	methodUpdateProgressScore             uint32 = 34
	methodCreateMatchmakeSessionWithParam uint32 = 38
	methodJoinMatchmakeSessionWithParam   uint32 = 39
	methodAutoMatchmakeWithParamPostpone  uint32 = 40
)

// Server implements the MatchmakeExtension RMC protocol against a
// shared matchmake.Arena.
type Server struct {
	ctx      *nex.CoreContext
	arena    *matchmake.Arena
	notifier rmc.Notifier
}

// notifyJoinTypeID is the notif_type of a new-participant announcement.
const notifyJoinTypeID uint32 = 3001

// NewServer builds a MatchmakeExtension protocol server. notifier
// delivers the join-announcement ProcessNotificationEvent calls fanned
// out to every other participant on a successful join.
func NewServer(ctx *nex.CoreContext, arena *matchmake.Arena, notifier rmc.Notifier) *Server {
	return &Server{ctx: ctx, arena: arena, notifier: notifier}
}

// announceJoin fires the join notification to every other current
// participant of session.
func (s *Server) announceJoin(session *matchmake.Session, joiningPID uint32, joinMessage string) {
	for _, otherPID := range session.Participants {
		if otherPID == joiningPID {
			continue
		}

		s.notifier.Notify(otherPID, &rmc.NotificationEvent{
			PIDSource: joiningPID,
			NotifType: notifyJoinTypeID,
			Param1:    session.GID,
			Param2:    otherPID,
			StrParam:  joinMessage,
			Param3:    uint32(len(session.Participants)),
		})
	}
}

// Register wires this server's methods into an rmc.Dispatcher.
func (s *Server) Register(dispatcher *rmc.Dispatcher) {
	dispatcher.Register(&rmc.ProtocolServer{
		ID: ProtocolID,
		Methods: map[uint32]rmc.HandlerFunc{
			methodGetPlayingSession:               s.handleGetPlayingSession,
			methodUpdateProgressScore:             s.handleUpdateProgressScore,
			methodCreateMatchmakeSessionWithParam: s.handleCreateMatchmakeSessionWithParam,
			methodJoinMatchmakeSessionWithParam:   s.handleJoinMatchmakeSessionWithParam,
			methodAutoMatchmakeWithParamPostpone:  s.handleAutoMatchmakeWithParamPostpone,
		},
	})
}

// handleGetPlayingSession implements GetPlayingSession(pids) ->
// List<List<u32>>: for each requested pid, the gids of every session it
// currently participates in.
func (s *Server) handleGetPlayingSession(_ uint32, _ bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	count, err := in.ReadListCount()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	pids := make([]uint32, count)
	for i := 0; i < count; i++ {
		if pids[i], err = in.ReadUInt32(); err != nil {
			return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
		}
	}

	out := rmc.NewByteStreamOut()
	out.WriteListCount(len(pids))
	for _, pid := range pids {
		gids := s.arena.SessionsForUser(pid)
		out.WriteListCount(len(gids))
		for _, gid := range gids {
			out.WriteUInt32(gid)
		}
	}

	return out.Bytes(), nil
}

// handleUpdateProgressScore implements UpdateProgressScore(gid,
// progress) -> ().
func (s *Server) handleUpdateProgressScore(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	gid, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	progress, err := in.ReadUInt8()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	session, ok := s.arena.Get(gid)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidGID)}
	}

	if !hasCallerPID || !isParticipant(session, callerPID) {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_PermissionDenied)}
	}

	session.Body.ProgressScore = progress
	s.arena.Put(session)

	return rmc.NewByteStreamOut().Bytes(), nil
}

// handleCreateMatchmakeSessionWithParam implements
// CreateMatchmakeSessionWithParam(param) -> MatchmakeSession: the
// caller becomes both owner and host of a freshly allocated gathering,
// and is added as its first participant.
func (s *Server) handleCreateMatchmakeSessionWithParam(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	if !hasCallerPID {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_NotAuthenticated)}
	}

	in := rmc.NewByteStreamIn(payload)

	param, err := rmc.DecodeCreateMatchmakeSessionParam(in)
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	gid := s.arena.NextGID()

	body := param.MatchmakeSession
	body.Gathering.SelfGID = gid
	body.Gathering.OwnerPID = callerPID
	body.Gathering.HostPID = callerPID
	body.ParticipationCount = 1

	session := &matchmake.Session{GID: gid, Body: body, Participants: []uint32{callerPID}}
	s.arena.Put(session)
	s.arena.KnowUser(callerPID)

	out := rmc.NewByteStreamOut()
	session.Body.Encode(out)

	return out.Bytes(), nil
}

// handleJoinMatchmakeSessionWithParam implements
// JoinMatchmakeSessionWithParam(param) -> MatchmakeSession.
func (s *Server) handleJoinMatchmakeSessionWithParam(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	if !hasCallerPID {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_NotAuthenticated)}
	}

	in := rmc.NewByteStreamIn(payload)

	param, err := rmc.DecodeJoinMatchmakeSessionParam(in)
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	session, ok := s.arena.Get(param.GID)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidGID)}
	}

	maxParticipants := session.Body.Gathering.MaximumParticipants
	if maxParticipants != 0 && uint16(len(session.Participants)) >= maxParticipants {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_SessionFull)}
	}

	if !isParticipant(session, callerPID) {
		session.Participants = append(session.Participants, callerPID)
	}
	session.Body.ParticipationCount = uint32(len(session.Participants))

	s.arena.Put(session)
	s.arena.KnowUser(callerPID)
	s.announceJoin(session, callerPID, param.JoinMessage)

	out := rmc.NewByteStreamOut()
	session.Body.Encode(out)

	return out.Bytes(), nil
}

// handleAutoMatchmakeWithParamPostpone implements
// AutoMatchmakeWithParamPostpone(param) -> MatchmakeSession: a naive
// first-fit search over live sessions matching the requested game mode
// with room to spare, falling back to creating a fresh session from
// param.MatchmakeSession when nothing matches. Ranking and policy are
// out of scope; when several sessions match, which one is picked
// follows the arena's map iteration order and is not fixed.
func (s *Server) handleAutoMatchmakeWithParamPostpone(callerPID uint32, hasCallerPID bool, payload []byte) ([]byte, error) {
	if !hasCallerPID {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_NotAuthenticated)}
	}

	in := rmc.NewByteStreamIn(payload)

	param, err := rmc.DecodeAutoMatchmakeParam(in)
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	if match, ok := s.findJoinableSession(param.MatchmakeSession.GameMode); ok {
		if !isParticipant(match, callerPID) {
			match.Participants = append(match.Participants, callerPID)
		}
		match.Body.ParticipationCount = uint32(len(match.Participants))
		s.arena.Put(match)
		s.arena.KnowUser(callerPID)
		s.announceJoin(match, callerPID, param.JoinMessage)

		out := rmc.NewByteStreamOut()
		match.Body.Encode(out)
		return out.Bytes(), nil
	}

	gid := s.arena.NextGID()

	body := param.MatchmakeSession
	body.Gathering.SelfGID = gid
	body.Gathering.OwnerPID = callerPID
	body.Gathering.HostPID = callerPID
	body.ParticipationCount = 1

	session := &matchmake.Session{GID: gid, Body: body, Participants: []uint32{callerPID}}
	s.arena.Put(session)
	s.arena.KnowUser(callerPID)

	out := rmc.NewByteStreamOut()
	session.Body.Encode(out)

	return out.Bytes(), nil
}

func (s *Server) findJoinableSession(gameMode uint32) (*matchmake.Session, bool) {
	var found *matchmake.Session

	s.arena.Each(func(gid uint32, session *matchmake.Session) bool {
		if session.Body.GameMode != gameMode {
			return true
		}

		max := session.Body.Gathering.MaximumParticipants
		if max != 0 && uint16(len(session.Participants)) >= max {
			return true
		}

		found = session
		return false
	})

	return found, found != nil
}

func isParticipant(session *matchmake.Session, pid uint32) bool {
	for _, p := range session.Participants {
		if p == pid {
			return true
		}
	}

	return false
}

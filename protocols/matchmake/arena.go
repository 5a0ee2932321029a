// Package matchmake implements the MatchMaking RMC protocol (protocol
// id 21) and the gathering arena it and protocol 109
// (matchmakeext.Server) share.
//
// Sessions never hold a live reference to a participant: a Session's
// participant list is a slice of stable PIDs. The Arena's user table
// records which PIDs have been seen; session handling does not consult
// it. Nothing in this package
// holds a pointer into a Connection or a User that could outlive it.
package matchmake

import (
	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/rmc"
)

// UserRecord is the stable-identity record the Arena keeps per known
// pid. It carries only what the matchmake layer itself needs; the
// secure connection that owns a given pid is reached independently
// (through secure.Server's registry), never stored here.
type UserRecord struct {
	PID uint32
}

// Session is one live gathering: its serializable MatchmakeSession body
// plus the PIDs of its current participants.
type Session struct {
	GID          uint32
	Body         rmc.MatchmakeSession
	Participants []uint32
}

// Arena is the in-memory store of live gatherings and known users,
// built on the same generic MutexMap/Counter the router/connection
// layer uses for shared state.
type Arena struct {
	sessions *nex.MutexMap[uint32, *Session]
	users    *nex.MutexMap[uint32, *UserRecord]
	gidSeq   *nex.Counter[uint32]
}

// NewArena builds an empty Arena. gid 0 is never issued; a self_gid of
// 0 means "no gathering".
func NewArena() *Arena {
	return &Arena{
		sessions: nex.NewMutexMap[uint32, *Session](),
		users:    nex.NewMutexMap[uint32, *UserRecord](),
		gidSeq:   nex.NewCounter[uint32](1),
	}
}

// KnowUser registers pid as present in the arena (called by the
// matchmakeext handlers for a caller that creates or joins a session).
func (a *Arena) KnowUser(pid uint32) {
	a.users.Set(pid, &UserRecord{PID: pid})
}

// NextGID allocates a fresh gathering id.
func (a *Arena) NextGID() uint32 {
	return a.gidSeq.Increment()
}

// Get returns the session for gid, if any.
func (a *Arena) Get(gid uint32) (*Session, bool) {
	return a.sessions.Get(gid)
}

// Put stores (or replaces) a session.
func (a *Arena) Put(session *Session) {
	a.sessions.Set(session.GID, session)
}

// Delete removes a session.
func (a *Arena) Delete(gid uint32) {
	a.sessions.Delete(gid)
}

// Each calls f for every live session, per nex.MutexMap.Each's
// contract (f must not call back into the Arena).
func (a *Arena) Each(f func(gid uint32, session *Session) bool) {
	a.sessions.Each(f)
}

// SessionsForUser returns the gids of every session pid currently
// participates in.
func (a *Arena) SessionsForUser(pid uint32) []uint32 {
	var gids []uint32

	a.sessions.Each(func(gid uint32, session *Session) bool {
		for _, p := range session.Participants {
			if p == pid {
				gids = append(gids, gid)
				break
			}
		}
		return true
	})

	return gids
}

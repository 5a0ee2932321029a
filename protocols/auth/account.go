// Package auth implements the authentication server's RMC protocol
// (protocol id 10): Login, LoginEx, RequestTicket, GetPID, GetName.
package auth

import (
	nex "github.com/olympus-net/nexus"
)

// Account is one registered title account: the pid/password pair the
// Kerberos layer derives keys from, plus the username Login/GetPID/
// GetName resolve against (a full deployment would resolve usernames
// through an external account service; this is its
// in-memory stand-in).
type Account struct {
	PID      uint32
	Username string
	// Password is the raw Kerberos password material fed to
	// nex.DeriveKerberosKey — not a derived key itself.
	Password []byte
}

// AccountStore is an in-memory account directory, built on the same
// generic MutexMap the router and connection layers use for shared
// state (see nex.MutexMap).
type AccountStore struct {
	byPID      *nex.MutexMap[uint32, *Account]
	byUsername *nex.MutexMap[string, *Account]
}

// NewAccountStore builds an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		byPID:      nex.NewMutexMap[uint32, *Account](),
		byUsername: nex.NewMutexMap[string, *Account](),
	}
}

// Register adds or replaces an account.
func (s *AccountStore) Register(account *Account) {
	s.byPID.Set(account.PID, account)
	s.byUsername.Set(account.Username, account)
}

// ByPID looks up an account by pid.
func (s *AccountStore) ByPID(pid uint32) (*Account, bool) {
	return s.byPID.Get(pid)
}

// ByUsername looks up an account by username.
func (s *AccountStore) ByUsername(username string) (*Account, bool) {
	return s.byUsername.Get(username)
}

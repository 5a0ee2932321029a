package auth

import (
	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/rmc"
)

// ProtocolID is the Authentication RMC protocol id.
const ProtocolID uint16 = 10

const (
	methodLogin         uint32 = 1
	methodLoginEx       uint32 = 2
	methodRequestTicket uint32 = 3
	methodGetPID        uint32 = 4
	methodGetName       uint32 = 5
)

// Config carries the values the auth server needs beyond its account
// directory: the secure server's own account (so auth can mint tickets
// addressed to it) and the station URL/build string echoed back from
// LoginEx.
type Config struct {
	SecureServerPID        uint32
	SecureServerPassword   []byte
	SecureServerStationURL *nex.StationURL
	BuildName              string
}

// Server implements the Auth RMC protocol against an AccountStore.
type Server struct {
	ctx      *nex.CoreContext
	cfg      Config
	accounts *AccountStore
}

// NewServer builds an Auth protocol server.
func NewServer(ctx *nex.CoreContext, cfg Config, accounts *AccountStore) *Server {
	return &Server{ctx: ctx, cfg: cfg, accounts: accounts}
}

// Register wires this server's methods into an rmc.Dispatcher.
func (s *Server) Register(dispatcher *rmc.Dispatcher) {
	dispatcher.Register(&rmc.ProtocolServer{
		ID: ProtocolID,
		Methods: map[uint32]rmc.HandlerFunc{
			methodLogin:         s.handleLogin,
			methodLoginEx:       s.handleLoginEx,
			methodRequestTicket: s.handleRequestTicket,
			methodGetPID:        s.handleGetPID,
			methodGetName:       s.handleGetName,
		},
	})
}

// handleLogin implements Login(name) -> (): a bare existence check, no
// ticket issued (LoginEx does that).
func (s *Server) handleLogin(_ uint32, _ bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	name, err := in.ReadString()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	if _, ok := s.accounts.ByUsername(name); !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidUsername)}
	}

	return rmc.NewByteStreamOut().Bytes(), nil
}

// handleLoginEx implements LoginEx(name, extra_data Any) -> (QResult,
// pid, ticket, ConnectionData, build_name). extra_data's declared
// struct name is checked (AuthenticationInfo) but not otherwise
// interpreted.
func (s *Server) handleLoginEx(_ uint32, _ bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	name, err := in.ReadString()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	extraData, err := in.ReadAny()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	if extraData.Name != "AuthenticationInfo" {
		s.ctx.Logger.Warn().Str("name", extraData.Name).Msg("loginEx: unexpected Any struct name")
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	account, ok := s.accounts.ByUsername(name)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidUsername)}
	}

	ticket, err := nex.IssueTicket(account.PID, account.Password, s.cfg.SecureServerPID, s.cfg.SecureServerPassword, s.ctx.Clock.Now())
	if err != nil {
		s.ctx.Logger.Error().Err(err).Msg("loginEx: ticket issuance failed")
		return nil, &nex.RpcError{Code: uint32(rmc.Core_Exception)}
	}

	connectionData := &rmc.ConnectionData{
		StationURL:        s.cfg.SecureServerStationURL,
		SpecialProtocols:  nil,
		SpecialStationURL: nex.NewStationURL(""),
		DateTime:          nex.NewKerberosDateTime(s.ctx.Clock.Now()),
	}

	out := rmc.NewByteStreamOut()
	rmc.QResultSuccess(rmc.Core_Unknown).Encode(out)
	out.WriteUInt32(account.PID)
	out.WriteBuffer(ticket.ForClient)
	connectionData.Encode(out)
	out.WriteString(s.cfg.BuildName)

	return out.Bytes(), nil
}

// handleRequestTicket implements RequestTicket(source_pid,
// destination_pid) -> (QResult, ticket). A destination matching the
// secure server's own pid uses the
// configured secure-server account directly; any other destination is
// looked up in the account directory, so a ticket can be issued between
// two ordinary logged-in users too.
func (s *Server) handleRequestTicket(_ uint32, _ bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	sourcePID, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	destPID, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	source, ok := s.accounts.ByPID(sourcePID)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_Exception)}
	}

	var destPassword []byte
	if destPID == s.cfg.SecureServerPID {
		destPassword = s.cfg.SecureServerPassword
	} else {
		dest, ok := s.accounts.ByPID(destPID)
		if !ok {
			return nil, &nex.RpcError{Code: uint32(rmc.Core_Exception)}
		}
		destPassword = dest.Password
	}

	ticket, err := nex.IssueTicket(sourcePID, source.Password, destPID, destPassword, s.ctx.Clock.Now())
	if err != nil {
		s.ctx.Logger.Error().Err(err).Msg("requestTicket: ticket issuance failed")
		return nil, &nex.RpcError{Code: uint32(rmc.Core_Exception)}
	}

	out := rmc.NewByteStreamOut()
	rmc.QResultSuccess(rmc.Core_Unknown).Encode(out)
	out.WriteBuffer(ticket.ForClient)

	return out.Bytes(), nil
}

// handleGetPID implements GetPID(username) -> pid.
func (s *Server) handleGetPID(_ uint32, _ bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	username, err := in.ReadString()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	account, ok := s.accounts.ByUsername(username)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidUsername)}
	}

	out := rmc.NewByteStreamOut()
	out.WriteUInt32(account.PID)

	return out.Bytes(), nil
}

// handleGetName implements GetName(pid) -> username.
func (s *Server) handleGetName(_ uint32, _ bool, payload []byte) ([]byte, error) {
	in := rmc.NewByteStreamIn(payload)

	pid, err := in.ReadUInt32()
	if err != nil {
		return nil, &nex.RpcError{Code: uint32(rmc.Core_InvalidArgument)}
	}

	account, ok := s.accounts.ByPID(pid)
	if !ok {
		return nil, &nex.RpcError{Code: uint32(rmc.RendezVous_InvalidPID)}
	}

	out := rmc.NewByteStreamOut()
	out.WriteString(account.Username)

	return out.Bytes(), nil
}

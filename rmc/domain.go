package rmc

import "github.com/olympus-net/nexus"

// QResult is a one-bit-tagged error/success result: the high bit marks
// failure, the low 31 bits carry an ErrorCode. Unlike the other structs
// in this file it is NOT a versioned struct envelope; it serializes as
// a bare u32.
type QResult uint32

const qResultErrorMask uint32 = 1 << 31

// QResultSuccess builds a successful QResult carrying code with the
// failure bit cleared (normally Core_Unknown, 0x00010001, used as the
// domain-agnostic "no error" value).
func QResultSuccess(code ErrorCode) QResult {
	return QResult(uint32(code) &^ qResultErrorMask)
}

// QResultError builds a failing QResult.
func QResultError(code ErrorCode) QResult {
	return QResult(uint32(code) | qResultErrorMask)
}

// IsError reports whether this result represents a failure.
func (r QResult) IsError() bool {
	return uint32(r)&qResultErrorMask != 0
}

// Encode writes the bare u32 wire form of a QResult.
func (r QResult) Encode(out *ByteStreamOut) {
	out.WriteUInt32(uint32(r))
}

// DecodeQResult reads a bare u32 QResult.
func DecodeQResult(in *ByteStreamIn) (QResult, error) {
	v, err := in.ReadUInt32()
	return QResult(v), err
}

// Gathering is the base struct every matchmake session extends (rmc
// struct version 0).
type Gathering struct {
	SelfGID             uint32
	OwnerPID            uint32
	HostPID             uint32
	MinimumParticipants uint16
	MaximumParticipants uint16
	ParticipantPolicy   uint32
	PolicyArgument      uint32
	Flags               uint32
	State               uint32
	Description         string
}

func (g *Gathering) encode(out *ByteStreamOut) {
	out.WriteVersionedStruct(0, func(inner *ByteStreamOut) {
		inner.WriteUInt32(g.SelfGID)
		inner.WriteUInt32(g.OwnerPID)
		inner.WriteUInt32(g.HostPID)
		inner.WriteUInt16(g.MinimumParticipants)
		inner.WriteUInt16(g.MaximumParticipants)
		inner.WriteUInt32(g.ParticipantPolicy)
		inner.WriteUInt32(g.PolicyArgument)
		inner.WriteUInt32(g.Flags)
		inner.WriteUInt32(g.State)
		inner.WriteString(g.Description)
	})
}

func decodeGathering(in *ByteStreamIn) (*Gathering, error) {
	g := &Gathering{}

	err := in.ReadVersionedStruct(0, func(inner *ByteStreamIn) error {
		var err error

		if g.SelfGID, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if g.OwnerPID, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if g.HostPID, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if g.MinimumParticipants, err = inner.ReadUInt16(); err != nil {
			return err
		}
		if g.MaximumParticipants, err = inner.ReadUInt16(); err != nil {
			return err
		}
		if g.ParticipantPolicy, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if g.PolicyArgument, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if g.Flags, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if g.State, err = inner.ReadUInt32(); err != nil {
			return err
		}
		g.Description, err = inner.ReadString()
		return err
	})

	return g, err
}

// MatchmakeParam is a free-form name/Variant property bag (rmc struct
// version 0), used both standalone and nested inside MatchmakeSession
// and MatchmakeSessionSearchCriteria.
type MatchmakeParam struct {
	Params []MatchmakeParamEntry
}

// MatchmakeParamEntry is one (name, value) pair of a MatchmakeParam.
type MatchmakeParamEntry struct {
	Name  string
	Value Variant
}

func (p *MatchmakeParam) encode(out *ByteStreamOut) {
	out.WriteVersionedStruct(0, func(inner *ByteStreamOut) {
		inner.WriteListCount(len(p.Params))
		for _, entry := range p.Params {
			inner.WriteString(entry.Name)
			inner.WriteVariant(entry.Value)
		}
	})
}

func decodeMatchmakeParam(in *ByteStreamIn) (*MatchmakeParam, error) {
	p := &MatchmakeParam{}

	err := in.ReadVersionedStruct(0, func(inner *ByteStreamIn) error {
		count, err := inner.ReadListCount()
		if err != nil {
			return err
		}

		p.Params = make([]MatchmakeParamEntry, 0, count)
		for i := 0; i < count; i++ {
			name, err := inner.ReadString()
			if err != nil {
				return err
			}

			value, err := inner.ReadVariant()
			if err != nil {
				return err
			}

			p.Params = append(p.Params, MatchmakeParamEntry{Name: name, Value: value})
		}

		return nil
	})

	return p, err
}

// ConnectionData is returned from LoginEx (rmc struct version 1). It
// points the client at the secure server.
type ConnectionData struct {
	StationURL        *nex.StationURL
	SpecialProtocols  []uint8
	SpecialStationURL *nex.StationURL
	DateTime          nex.KerberosDateTime
}

// Encode writes the versioned ConnectionData envelope.
func (c *ConnectionData) Encode(out *ByteStreamOut) {
	out.WriteVersionedStruct(1, func(inner *ByteStreamOut) {
		inner.WriteStationURL(c.StationURL)
		inner.WriteListCount(len(c.SpecialProtocols))
		for _, p := range c.SpecialProtocols {
			inner.WriteUInt8(p)
		}
		inner.WriteStationURL(c.SpecialStationURL)
		inner.WriteUInt64(uint64(c.DateTime))
	})
}

func decodeConnectionData(in *ByteStreamIn) (*ConnectionData, error) {
	c := &ConnectionData{}

	err := in.ReadVersionedStruct(1, func(inner *ByteStreamIn) error {
		var err error

		if c.StationURL, err = inner.ReadStationURL(); err != nil {
			return err
		}

		count, err := inner.ReadListCount()
		if err != nil {
			return err
		}

		c.SpecialProtocols = make([]uint8, count)
		for i := 0; i < count; i++ {
			if c.SpecialProtocols[i], err = inner.ReadUInt8(); err != nil {
				return err
			}
		}

		if c.SpecialStationURL, err = inner.ReadStationURL(); err != nil {
			return err
		}

		raw, err := inner.ReadUInt64()
		c.DateTime = nex.KerberosDateTime(raw)
		return err
	})

	return c, err
}

// MatchmakeSession extends Gathering (rmc struct version 3).
type MatchmakeSession struct {
	Gathering Gathering

	GameMode              uint32
	Attributes            []uint32
	OpenParticipation     bool
	MatchmakeSystemType   uint32
	ApplicationBuffer     []byte
	ParticipationCount    uint32
	ProgressScore         uint8
	SessionKey            []byte
	Option0               uint32
	MatchmakeParam        MatchmakeParam
	DateTime              nex.KerberosDateTime
	UserPassword          string
	ReferGID              uint32
	UserPasswordEnabled   bool
	SystemPasswordEnabled bool
}

// Encode writes the full base-then-derived envelope pair.
func (m *MatchmakeSession) Encode(out *ByteStreamOut) {
	m.Gathering.encode(out)

	out.WriteVersionedStruct(3, func(inner *ByteStreamOut) {
		inner.WriteUInt32(m.GameMode)
		inner.WriteListCount(len(m.Attributes))
		for _, a := range m.Attributes {
			inner.WriteUInt32(a)
		}
		inner.WriteBool(m.OpenParticipation)
		inner.WriteUInt32(m.MatchmakeSystemType)
		inner.WriteBuffer(m.ApplicationBuffer)
		inner.WriteUInt32(m.ParticipationCount)
		inner.WriteUInt8(m.ProgressScore)
		inner.WriteBuffer(m.SessionKey)
		inner.WriteUInt32(m.Option0)
		m.MatchmakeParam.encode(inner)
		inner.WriteUInt64(uint64(m.DateTime))
		inner.WriteString(m.UserPassword)
		inner.WriteUInt32(m.ReferGID)
		inner.WriteBool(m.UserPasswordEnabled)
		inner.WriteBool(m.SystemPasswordEnabled)
	})
}

// DecodeMatchmakeSession reads a MatchmakeSession.
func DecodeMatchmakeSession(in *ByteStreamIn) (*MatchmakeSession, error) {
	gathering, err := decodeGathering(in)
	if err != nil {
		return nil, err
	}

	m := &MatchmakeSession{Gathering: *gathering}

	err = in.ReadVersionedStruct(3, func(inner *ByteStreamIn) error {
		var err error

		if m.GameMode, err = inner.ReadUInt32(); err != nil {
			return err
		}

		count, err := inner.ReadListCount()
		if err != nil {
			return err
		}
		m.Attributes = make([]uint32, count)
		for i := 0; i < count; i++ {
			if m.Attributes[i], err = inner.ReadUInt32(); err != nil {
				return err
			}
		}

		if m.OpenParticipation, err = inner.ReadBool(); err != nil {
			return err
		}
		if m.MatchmakeSystemType, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if m.ApplicationBuffer, err = inner.ReadBuffer(); err != nil {
			return err
		}
		if m.ParticipationCount, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if m.ProgressScore, err = inner.ReadUInt8(); err != nil {
			return err
		}
		if m.SessionKey, err = inner.ReadBuffer(); err != nil {
			return err
		}
		if m.Option0, err = inner.ReadUInt32(); err != nil {
			return err
		}

		param, err := decodeMatchmakeParam(inner)
		if err != nil {
			return err
		}
		m.MatchmakeParam = *param

		raw, err := inner.ReadUInt64()
		if err != nil {
			return err
		}
		m.DateTime = nex.KerberosDateTime(raw)

		if m.UserPassword, err = inner.ReadString(); err != nil {
			return err
		}
		if m.ReferGID, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if m.UserPasswordEnabled, err = inner.ReadBool(); err != nil {
			return err
		}
		m.SystemPasswordEnabled, err = inner.ReadBool()
		return err
	})

	return m, err
}

// MatchmakeSessionSearchCriteria (rmc struct version 3) narrows an auto
// matchmake request to matching sessions.
type MatchmakeSessionSearchCriteria struct {
	Attribs                  []string
	GameMode                 string
	MinimumParticipants      string
	MaximumParticipants      string
	MatchmakeSystemType      string
	VacantOnly               bool
	ExcludeLocked            bool
	ExcludeNonHostPID        bool
	SelectionMethod          uint32
	VacantParticipants       uint16
	MatchmakeParam           MatchmakeParam
	ExcludeUserPasswordSet   bool
	ExcludeSystemPasswordSet bool
	ReferGID                 uint32
}

func decodeMatchmakeSessionSearchCriteria(in *ByteStreamIn) (*MatchmakeSessionSearchCriteria, error) {
	c := &MatchmakeSessionSearchCriteria{}

	err := in.ReadVersionedStruct(3, func(inner *ByteStreamIn) error {
		count, err := inner.ReadListCount()
		if err != nil {
			return err
		}
		c.Attribs = make([]string, count)
		for i := 0; i < count; i++ {
			if c.Attribs[i], err = inner.ReadString(); err != nil {
				return err
			}
		}

		if c.GameMode, err = inner.ReadString(); err != nil {
			return err
		}
		if c.MinimumParticipants, err = inner.ReadString(); err != nil {
			return err
		}
		if c.MaximumParticipants, err = inner.ReadString(); err != nil {
			return err
		}
		if c.MatchmakeSystemType, err = inner.ReadString(); err != nil {
			return err
		}
		if c.VacantOnly, err = inner.ReadBool(); err != nil {
			return err
		}
		if c.ExcludeLocked, err = inner.ReadBool(); err != nil {
			return err
		}
		if c.ExcludeNonHostPID, err = inner.ReadBool(); err != nil {
			return err
		}
		if c.SelectionMethod, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if c.VacantParticipants, err = inner.ReadUInt16(); err != nil {
			return err
		}

		param, err := decodeMatchmakeParam(inner)
		if err != nil {
			return err
		}
		c.MatchmakeParam = *param

		if c.ExcludeUserPasswordSet, err = inner.ReadBool(); err != nil {
			return err
		}
		if c.ExcludeSystemPasswordSet, err = inner.ReadBool(); err != nil {
			return err
		}
		c.ReferGID, err = inner.ReadUInt32()
		return err
	})

	return c, err
}

// AutoMatchmakeParam (rmc struct version 0) drives
// AutoMatchmakeWithParamPostpone.
type AutoMatchmakeParam struct {
	MatchmakeSession         MatchmakeSession
	AdditionalParticipants   []uint32
	GIDForParticipationCheck uint32
	AutoMatchmakeOption      uint32
	JoinMessage              string
	ParticipationCount       uint16
	SearchCriteria           []MatchmakeSessionSearchCriteria
	TargetGIDs               []uint32
}

// DecodeAutoMatchmakeParam reads an AutoMatchmakeParam.
func DecodeAutoMatchmakeParam(in *ByteStreamIn) (*AutoMatchmakeParam, error) {
	p := &AutoMatchmakeParam{}

	err := in.ReadVersionedStruct(0, func(inner *ByteStreamIn) error {
		session, err := DecodeMatchmakeSession(inner)
		if err != nil {
			return err
		}
		p.MatchmakeSession = *session

		count, err := inner.ReadListCount()
		if err != nil {
			return err
		}
		p.AdditionalParticipants = make([]uint32, count)
		for i := 0; i < count; i++ {
			if p.AdditionalParticipants[i], err = inner.ReadUInt32(); err != nil {
				return err
			}
		}

		if p.GIDForParticipationCheck, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if p.AutoMatchmakeOption, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if p.JoinMessage, err = inner.ReadString(); err != nil {
			return err
		}
		if p.ParticipationCount, err = inner.ReadUInt16(); err != nil {
			return err
		}

		searchCount, err := inner.ReadListCount()
		if err != nil {
			return err
		}
		p.SearchCriteria = make([]MatchmakeSessionSearchCriteria, searchCount)
		for i := 0; i < searchCount; i++ {
			criteria, err := decodeMatchmakeSessionSearchCriteria(inner)
			if err != nil {
				return err
			}
			p.SearchCriteria[i] = *criteria
		}

		targetCount, err := inner.ReadListCount()
		if err != nil {
			return err
		}
		p.TargetGIDs = make([]uint32, targetCount)
		for i := 0; i < targetCount; i++ {
			if p.TargetGIDs[i], err = inner.ReadUInt32(); err != nil {
				return err
			}
		}

		return nil
	})

	return p, err
}

// CreateMatchmakeSessionParam (rmc struct version 0) drives
// CreateMatchmakeSessionWithParam: a MatchmakeSession followed by a
// join message and a participant count on the same wire request.
type CreateMatchmakeSessionParam struct {
	MatchmakeSession   MatchmakeSession
	JoinMessage        string
	ParticipationCount uint16
}

// DecodeCreateMatchmakeSessionParam reads a CreateMatchmakeSessionParam.
func DecodeCreateMatchmakeSessionParam(in *ByteStreamIn) (*CreateMatchmakeSessionParam, error) {
	p := &CreateMatchmakeSessionParam{}

	err := in.ReadVersionedStruct(0, func(inner *ByteStreamIn) error {
		session, err := DecodeMatchmakeSession(inner)
		if err != nil {
			return err
		}
		p.MatchmakeSession = *session

		if p.JoinMessage, err = inner.ReadString(); err != nil {
			return err
		}
		p.ParticipationCount, err = inner.ReadUInt16()
		return err
	})

	return p, err
}

// JoinMatchmakeSessionParam (rmc struct version 0) drives
// JoinMatchmakeSessionWithParam: the target gathering id plus the same
// join message/participant count shape as CreateMatchmakeSessionParam.
type JoinMatchmakeSessionParam struct {
	GID                uint32
	JoinMessage        string
	ParticipationCount uint16
}

// DecodeJoinMatchmakeSessionParam reads a JoinMatchmakeSessionParam.
func DecodeJoinMatchmakeSessionParam(in *ByteStreamIn) (*JoinMatchmakeSessionParam, error) {
	p := &JoinMatchmakeSessionParam{}

	err := in.ReadVersionedStruct(0, func(inner *ByteStreamIn) error {
		var err error

		if p.GID, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if p.JoinMessage, err = inner.ReadString(); err != nil {
			return err
		}
		p.ParticipationCount, err = inner.ReadUInt16()
		return err
	})

	return p, err
}

// NotificationEvent is the payload of the fire-and-forget
// ProcessNotificationEvent call (protocol 14, method 1), rmc struct
// version 0.
type NotificationEvent struct {
	PIDSource uint32
	NotifType uint32
	Param1    uint32
	Param2    uint32
	StrParam  string
	Param3    uint32
}

// Encode writes a NotificationEvent.
func (n *NotificationEvent) Encode(out *ByteStreamOut) {
	out.WriteVersionedStruct(0, func(inner *ByteStreamOut) {
		inner.WriteUInt32(n.PIDSource)
		inner.WriteUInt32(n.NotifType)
		inner.WriteUInt32(n.Param1)
		inner.WriteUInt32(n.Param2)
		inner.WriteString(n.StrParam)
		inner.WriteUInt32(n.Param3)
	})
}

// DecodeNotificationEvent reads a NotificationEvent.
func DecodeNotificationEvent(in *ByteStreamIn) (*NotificationEvent, error) {
	n := &NotificationEvent{}

	err := in.ReadVersionedStruct(0, func(inner *ByteStreamIn) error {
		var err error

		if n.PIDSource, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if n.NotifType, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if n.Param1, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if n.Param2, err = inner.ReadUInt32(); err != nil {
			return err
		}
		if n.StrParam, err = inner.ReadString(); err != nil {
			return err
		}
		n.Param3, err = inner.ReadUInt32()
		return err
	})

	return n, err
}

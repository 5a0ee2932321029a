package rmc

import (
	"strings"

	crunch "github.com/superwhiskers/crunch/v3"

	"github.com/olympus-net/nexus"
)

// ByteStreamIn is a read cursor over an RMC payload, built on
// crunch.Buffer and extended with the
// domain-struct codec conventions (String, Buffer, QBuffer, List<T>, Any,
// versioned-struct envelope, Variant).
type ByteStreamIn struct {
	*crunch.Buffer
}

// NewByteStreamIn wraps data for reading.
func NewByteStreamIn(data []byte) *ByteStreamIn {
	return &ByteStreamIn{Buffer: crunch.NewBuffer(data)}
}

// Remaining returns the number of unread bytes.
func (s *ByteStreamIn) Remaining() int {
	return len(s.Bytes()) - int(s.ByteOffset())
}

func (s *ByteStreamIn) ReadUInt8() (uint8, error) {
	if s.Remaining() < 1 {
		return 0, &nex.ParseError{Reason: "not enough data to read uint8"}
	}

	return s.ReadByteNext(), nil
}

func (s *ByteStreamIn) ReadInt8() (int8, error) {
	v, err := s.ReadUInt8()
	return int8(v), err
}

func (s *ByteStreamIn) ReadBool() (bool, error) {
	v, err := s.ReadUInt8()
	return v != 0, err
}

func (s *ByteStreamIn) ReadUInt16() (uint16, error) {
	if s.Remaining() < 2 {
		return 0, &nex.ParseError{Reason: "not enough data to read uint16"}
	}

	return s.ReadU16LENext(1)[0], nil
}

func (s *ByteStreamIn) ReadInt16() (int16, error) {
	v, err := s.ReadUInt16()
	return int16(v), err
}

func (s *ByteStreamIn) ReadUInt32() (uint32, error) {
	if s.Remaining() < 4 {
		return 0, &nex.ParseError{Reason: "not enough data to read uint32"}
	}

	return s.ReadU32LENext(1)[0], nil
}

func (s *ByteStreamIn) ReadInt32() (int32, error) {
	v, err := s.ReadUInt32()
	return int32(v), err
}

func (s *ByteStreamIn) ReadUInt64() (uint64, error) {
	if s.Remaining() < 8 {
		return 0, &nex.ParseError{Reason: "not enough data to read uint64"}
	}

	return s.ReadU64LENext(1)[0], nil
}

func (s *ByteStreamIn) ReadInt64() (int64, error) {
	v, err := s.ReadUInt64()
	return int64(v), err
}

func (s *ByteStreamIn) ReadFloat32() (float32, error) {
	if s.Remaining() < 4 {
		return 0, &nex.ParseError{Reason: "not enough data to read float32"}
	}

	return s.ReadF32LENext(1)[0], nil
}

func (s *ByteStreamIn) ReadFloat64() (float64, error) {
	if s.Remaining() < 8 {
		return 0, &nex.ParseError{Reason: "not enough data to read float64"}
	}

	return s.ReadF64LENext(1)[0], nil
}

// ReadString reads `u16 length_including_nul | UTF-8 bytes | 0x00`. An
// empty string is encoded as [1,0,0x00].
func (s *ByteStreamIn) ReadString() (string, error) {
	length, err := s.ReadUInt16()
	if err != nil {
		return "", &nex.ParseError{Reason: "reading string length: " + err.Error()}
	}

	if length == 0 {
		return "", &nex.ParseError{Reason: "string length field is zero, must include nul"}
	}

	if s.Remaining() < int(length) {
		return "", &nex.ParseError{Reason: "string length longer than remaining data"}
	}

	data := s.ReadBytesNext(int64(length))

	return strings.TrimRight(string(data), "\x00"), nil
}

// ReadBuffer reads `u32 length | bytes`.
func (s *ByteStreamIn) ReadBuffer() ([]byte, error) {
	length, err := s.ReadUInt32()
	if err != nil {
		return nil, &nex.ParseError{Reason: "reading buffer length: " + err.Error()}
	}

	if s.Remaining() < int(length) {
		return nil, &nex.ParseError{Reason: "buffer length longer than remaining data"}
	}

	return s.ReadBytesNext(int64(length)), nil
}

// ReadQBuffer reads `u16 length | bytes`.
func (s *ByteStreamIn) ReadQBuffer() ([]byte, error) {
	length, err := s.ReadUInt16()
	if err != nil {
		return nil, &nex.ParseError{Reason: "reading qbuffer length: " + err.Error()}
	}

	if s.Remaining() < int(length) {
		return nil, &nex.ParseError{Reason: "qbuffer length longer than remaining data"}
	}

	return s.ReadBytesNext(int64(length)), nil
}

// ReadListCount reads the `u32 count` prefix of a List<T>.
func (s *ByteStreamIn) ReadListCount() (int, error) {
	count, err := s.ReadUInt32()
	if err != nil {
		return 0, &nex.ParseError{Reason: "reading list count: " + err.Error()}
	}

	return int(count), nil
}

// Any is the tagged struct envelope: `String name | u32 len_repeat | u32
// len | bytes`.
type Any struct {
	Name string
	Data []byte
}

// ReadAny reads an Any envelope.
func (s *ByteStreamIn) ReadAny() (*Any, error) {
	name, err := s.ReadString()
	if err != nil {
		return nil, &nex.ParseError{Reason: "reading any name: " + err.Error()}
	}

	if _, err := s.ReadUInt32(); err != nil {
		return nil, &nex.ParseError{Reason: "reading any repeated length: " + err.Error()}
	}

	data, err := s.ReadBuffer()
	if err != nil {
		return nil, &nex.ParseError{Reason: "reading any data: " + err.Error()}
	}

	return &Any{Name: name, Data: data}, nil
}

// ReadVersionedStruct reads a versioned struct envelope (`u8 version | u32
// inner_len | inner`), verifies the declared version matches wantVersion,
// and runs inner against a fresh ByteStreamIn scoped to exactly the inner
// bytes.
func (s *ByteStreamIn) ReadVersionedStruct(wantVersion uint8, inner func(*ByteStreamIn) error) error {
	version, err := s.ReadUInt8()
	if err != nil {
		return &nex.ParseError{Reason: "reading struct version: " + err.Error()}
	}

	if version != wantVersion {
		return &nex.ParseError{Reason: "struct version mismatch"}
	}

	length, err := s.ReadUInt32()
	if err != nil {
		return &nex.ParseError{Reason: "reading struct content length: " + err.Error()}
	}

	if s.Remaining() < int(length) {
		return &nex.ParseError{Reason: "struct content length longer than remaining data"}
	}

	scoped := NewByteStreamIn(s.ReadBytesNext(int64(length)))

	return inner(scoped)
}

// Variant tags.
const (
	VariantNone uint8 = iota
	VariantInt64
	VariantFloat64
	VariantBool
	VariantString
	VariantDateTime
	VariantUInt64
)

// Variant is the tagged union used inside MatchmakeParam's key/value list.
type Variant struct {
	Tag      uint8
	Int64    int64
	Float64  float64
	Bool     bool
	String   string
	DateTime nex.KerberosDateTime
	UInt64   uint64
}

// ReadVariant reads a 1-byte-tagged Variant.
func (s *ByteStreamIn) ReadVariant() (Variant, error) {
	tag, err := s.ReadUInt8()
	if err != nil {
		return Variant{}, &nex.ParseError{Reason: "reading variant tag: " + err.Error()}
	}

	v := Variant{Tag: tag}

	switch tag {
	case VariantNone:
	case VariantInt64:
		v.Int64, err = s.ReadInt64()
	case VariantFloat64:
		v.Float64, err = s.ReadFloat64()
	case VariantBool:
		v.Bool, err = s.ReadBool()
	case VariantString:
		v.String, err = s.ReadString()
	case VariantDateTime:
		var raw uint64
		raw, err = s.ReadUInt64()
		v.DateTime = nex.KerberosDateTime(raw)
	case VariantUInt64:
		v.UInt64, err = s.ReadUInt64()
	default:
		return Variant{}, &nex.ParseError{Reason: "unknown variant tag"}
	}

	if err != nil {
		return Variant{}, &nex.ParseError{Reason: "reading variant value: " + err.Error()}
	}

	return v, nil
}

// ReadStationURL reads a StationURL encoded as a String.
func (s *ByteStreamIn) ReadStationURL() (*nex.StationURL, error) {
	raw, err := s.ReadString()
	if err != nil {
		return nil, &nex.ParseError{Reason: "reading station url: " + err.Error()}
	}

	if raw == "" {
		return nex.NewStationURL(""), nil
	}

	return nex.ParseStationURL(raw)
}

// ByteStreamOut is a write cursor building an RMC payload, using the
// mirror-image conventions of ByteStreamIn.
type ByteStreamOut struct {
	*crunch.Buffer
}

// NewByteStreamOut builds an empty ByteStreamOut.
func NewByteStreamOut() *ByteStreamOut {
	return &ByteStreamOut{Buffer: crunch.NewBuffer()}
}

func (s *ByteStreamOut) WriteUInt8(v uint8) {
	s.Grow(1)
	s.WriteByteNext(v)
}

func (s *ByteStreamOut) WriteInt8(v int8) {
	s.WriteUInt8(uint8(v))
}

func (s *ByteStreamOut) WriteBool(v bool) {
	if v {
		s.WriteUInt8(1)
	} else {
		s.WriteUInt8(0)
	}
}

func (s *ByteStreamOut) WriteUInt16(v uint16) {
	s.Grow(2)
	s.WriteU16LENext([]uint16{v})
}

func (s *ByteStreamOut) WriteInt16(v int16) {
	s.WriteUInt16(uint16(v))
}

func (s *ByteStreamOut) WriteUInt32(v uint32) {
	s.Grow(4)
	s.WriteU32LENext([]uint32{v})
}

func (s *ByteStreamOut) WriteInt32(v int32) {
	s.WriteUInt32(uint32(v))
}

func (s *ByteStreamOut) WriteUInt64(v uint64) {
	s.Grow(8)
	s.WriteU64LENext([]uint64{v})
}

func (s *ByteStreamOut) WriteInt64(v int64) {
	s.WriteUInt64(uint64(v))
}

func (s *ByteStreamOut) WriteFloat32(v float32) {
	s.Grow(4)
	s.WriteF32LENext([]float32{v})
}

func (s *ByteStreamOut) WriteFloat64(v float64) {
	s.Grow(8)
	s.WriteF64LENext([]float64{v})
}

func (s *ByteStreamOut) WriteRaw(data []byte) {
	s.Grow(int64(len(data)))
	s.WriteBytesNext(data)
}

// WriteString writes `u16 length_including_nul | UTF-8 bytes | 0x00`.
func (s *ByteStreamOut) WriteString(v string) {
	s.WriteUInt16(uint16(len(v) + 1))
	s.WriteRaw([]byte(v))
	s.WriteUInt8(0)
}

// WriteBuffer writes `u32 length | bytes`.
func (s *ByteStreamOut) WriteBuffer(data []byte) {
	s.WriteUInt32(uint32(len(data)))
	s.WriteRaw(data)
}

// WriteQBuffer writes `u16 length | bytes`.
func (s *ByteStreamOut) WriteQBuffer(data []byte) {
	s.WriteUInt16(uint16(len(data)))
	s.WriteRaw(data)
}

// WriteListCount writes the `u32 count` prefix of a List<T>.
func (s *ByteStreamOut) WriteListCount(count int) {
	s.WriteUInt32(uint32(count))
}

// WriteAny writes the tagged struct envelope `String name | u32 len_repeat
// | u32 len | bytes`.
func (s *ByteStreamOut) WriteAny(name string, data []byte) {
	s.WriteString(name)
	s.WriteUInt32(uint32(len(data)))
	s.WriteBuffer(data)
}

// WriteVersionedStruct writes the versioned struct envelope (`u8 version |
// u32 inner_len | inner`) by buffering inner's output in a scratch stream
// first so the length prefix can be computed.
func (s *ByteStreamOut) WriteVersionedStruct(version uint8, inner func(*ByteStreamOut)) {
	scratch := NewByteStreamOut()
	inner(scratch)

	s.WriteUInt8(version)
	s.WriteUInt32(uint32(len(scratch.Bytes())))
	s.WriteRaw(scratch.Bytes())
}

// WriteVariant writes a 1-byte-tagged Variant.
func (s *ByteStreamOut) WriteVariant(v Variant) {
	s.WriteUInt8(v.Tag)

	switch v.Tag {
	case VariantNone:
	case VariantInt64:
		s.WriteInt64(v.Int64)
	case VariantFloat64:
		s.WriteFloat64(v.Float64)
	case VariantBool:
		s.WriteBool(v.Bool)
	case VariantString:
		s.WriteString(v.String)
	case VariantDateTime:
		s.WriteUInt64(uint64(v.DateTime))
	case VariantUInt64:
		s.WriteUInt64(v.UInt64)
	}
}

// WriteStationURL writes a StationURL encoded as a String.
func (s *ByteStreamOut) WriteStationURL(url *nex.StationURL) {
	if url == nil {
		s.WriteString("")
		return
	}

	s.WriteString(url.String())
}

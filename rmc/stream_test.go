package rmc

import (
	"bytes"
	"testing"

	"github.com/olympus-net/nexus"
)

func TestByteStreamPrimitivesRoundTrip(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteUInt8(0xAB)
	out.WriteBool(true)
	out.WriteUInt16(0x1234)
	out.WriteUInt32(0xDEADBEEF)
	out.WriteUInt64(0x0102030405060708)
	out.WriteFloat32(1.5)
	out.WriteFloat64(2.25)

	in := NewByteStreamIn(out.Bytes())

	u8, err := in.ReadUInt8()
	if err != nil || u8 != 0xAB {
		t.Fatalf("ReadUInt8() = (%d, %v), want (0xAB, nil)", u8, err)
	}

	b, err := in.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool() = (%v, %v), want (true, nil)", b, err)
	}

	u16, err := in.ReadUInt16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadUInt16() = (%#x, %v), want (0x1234, nil)", u16, err)
	}

	u32, err := in.ReadUInt32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadUInt32() = (%#x, %v), want (0xDEADBEEF, nil)", u32, err)
	}

	u64, err := in.ReadUInt64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadUInt64() = (%#x, %v), want (0x0102030405060708, nil)", u64, err)
	}

	f32, err := in.ReadFloat32()
	if err != nil || f32 != 1.5 {
		t.Fatalf("ReadFloat32() = (%v, %v), want (1.5, nil)", f32, err)
	}

	f64, err := in.ReadFloat64()
	if err != nil || f64 != 2.25 {
		t.Fatalf("ReadFloat64() = (%v, %v), want (2.25, nil)", f64, err)
	}

	if in.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", in.Remaining())
	}
}

func TestByteStreamStringRoundTrip(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteString("hello")
	out.WriteString("")

	in := NewByteStreamIn(out.Bytes())

	s, err := in.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString() = (%q, %v), want (\"hello\", nil)", s, err)
	}

	empty, err := in.ReadString()
	if err != nil || empty != "" {
		t.Fatalf("ReadString() = (%q, %v), want (\"\", nil)", empty, err)
	}
}

func TestEmptyStringWireShape(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteString("")

	if !bytes.Equal(out.Bytes(), []byte{1, 0, 0x00}) {
		t.Fatalf("empty string wire bytes = %v, want [1 0 0]", out.Bytes())
	}
}

func TestByteStreamBufferAndQBufferRoundTrip(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteBuffer([]byte("buffer-data"))
	out.WriteQBuffer([]byte("qb"))

	in := NewByteStreamIn(out.Bytes())

	buf, err := in.ReadBuffer()
	if err != nil || string(buf) != "buffer-data" {
		t.Fatalf("ReadBuffer() = (%q, %v), want (\"buffer-data\", nil)", buf, err)
	}

	qbuf, err := in.ReadQBuffer()
	if err != nil || string(qbuf) != "qb" {
		t.Fatalf("ReadQBuffer() = (%q, %v), want (\"qb\", nil)", qbuf, err)
	}
}

func TestByteStreamListCountRoundTrip(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteListCount(3)
	out.WriteUInt32(1)
	out.WriteUInt32(2)
	out.WriteUInt32(3)

	in := NewByteStreamIn(out.Bytes())

	count, err := in.ReadListCount()
	if err != nil || count != 3 {
		t.Fatalf("ReadListCount() = (%d, %v), want (3, nil)", count, err)
	}

	for i := 0; i < count; i++ {
		v, err := in.ReadUInt32()
		if err != nil || int(v) != i+1 {
			t.Fatalf("element %d = (%d, %v), want (%d, nil)", i, v, err, i+1)
		}
	}
}

func TestByteStreamAnyRoundTrip(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteAny("MatchmakeSession", []byte("struct-bytes"))

	in := NewByteStreamIn(out.Bytes())

	any, err := in.ReadAny()
	if err != nil {
		t.Fatalf("ReadAny: %v", err)
	}

	if any.Name != "MatchmakeSession" || string(any.Data) != "struct-bytes" {
		t.Fatalf("any = %+v, want Name=MatchmakeSession Data=struct-bytes", any)
	}
}

func TestByteStreamVersionedStructRoundTrip(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteVersionedStruct(3, func(inner *ByteStreamOut) {
		inner.WriteUInt32(42)
		inner.WriteString("inner")
	})

	in := NewByteStreamIn(out.Bytes())

	var gotU32 uint32
	var gotStr string

	err := in.ReadVersionedStruct(3, func(inner *ByteStreamIn) error {
		var err error
		gotU32, err = inner.ReadUInt32()
		if err != nil {
			return err
		}

		gotStr, err = inner.ReadString()
		return err
	})

	if err != nil {
		t.Fatalf("ReadVersionedStruct: %v", err)
	}

	if gotU32 != 42 || gotStr != "inner" {
		t.Fatalf("inner = (%d, %q), want (42, \"inner\")", gotU32, gotStr)
	}
}

func TestByteStreamVersionedStructRejectsVersionMismatch(t *testing.T) {
	out := NewByteStreamOut()
	out.WriteVersionedStruct(1, func(inner *ByteStreamOut) {
		inner.WriteUInt8(0)
	})

	in := NewByteStreamIn(out.Bytes())

	err := in.ReadVersionedStruct(2, func(inner *ByteStreamIn) error {
		return nil
	})

	if err == nil {
		t.Fatal("ReadVersionedStruct must reject a declared version that doesn't match wantVersion")
	}
}

func TestByteStreamVariantRoundTrip(t *testing.T) {
	variants := []Variant{
		{Tag: VariantNone},
		{Tag: VariantInt64, Int64: -42},
		{Tag: VariantFloat64, Float64: 3.5},
		{Tag: VariantBool, Bool: true},
		{Tag: VariantString, String: "variant-string"},
		{Tag: VariantUInt64, UInt64: 0xFFFFFFFF},
	}

	out := NewByteStreamOut()
	for _, v := range variants {
		out.WriteVariant(v)
	}

	in := NewByteStreamIn(out.Bytes())
	for i, want := range variants {
		got, err := in.ReadVariant()
		if err != nil {
			t.Fatalf("ReadVariant() #%d: %v", i, err)
		}

		if got != want {
			t.Fatalf("ReadVariant() #%d = %+v, want %+v", i, got, want)
		}
	}
}

func TestByteStreamStationURLRoundTrip(t *testing.T) {
	url := nex.NewStationURL("prudps")
	url.SetAddress("127.0.0.1", 60000)
	url.Set("pid", "1001")

	out := NewByteStreamOut()
	out.WriteStationURL(url)

	in := NewByteStreamIn(out.Bytes())
	got, err := in.ReadStationURL()
	if err != nil {
		t.Fatalf("ReadStationURL: %v", err)
	}

	if got.String() != url.String() {
		t.Fatalf("ReadStationURL() = %q, want %q", got.String(), url.String())
	}
}

package nex

import (
	"bytes"
	"testing"
	"time"
)

func TestDeriveKerberosKeyIsDeterministic(t *testing.T) {
	pw := []byte("sixteen byte pw!")

	k1 := DeriveKerberosKey(1001, pw)
	k2 := DeriveKerberosKey(1001, pw)

	if !bytes.Equal(k1, k2) {
		t.Fatal("DeriveKerberosKey must be deterministic in (pid, password)")
	}

	if bytes.Equal(k1, DeriveKerberosKey(1002, pw)) {
		t.Fatal("DeriveKerberosKey must differ across pids")
	}
}

func TestKerberosDateTimeRoundTrip(t *testing.T) {
	want := time.Date(2023, time.November, 17, 8, 42, 13, 0, time.UTC)

	packed := NewKerberosDateTime(want)
	got := packed.Time()

	if !got.Equal(want) {
		t.Fatalf("KerberosDateTime round trip = %v, want %v", got, want)
	}
}

func TestIssueTicketProducesFreshSessionKeysEachTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t1, err := IssueTicket(1001, []byte("aaaaaaaaaaaaaaaa"), 2, []byte("bbbbbbbbbbbbbbbb"), now)
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	t2, err := IssueTicket(1001, []byte("aaaaaaaaaaaaaaaa"), 2, []byte("bbbbbbbbbbbbbbbb"), now)
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	if bytes.Equal(t1.ForClient, t2.ForClient) {
		t.Fatal("two tickets issued back to back for the same (src, dst) must carry different session keys")
	}
}

func TestIssueTicketAndDecodeTicketRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

	srcPID, srcPassword := uint32(1001), []byte("aaaaaaaaaaaaaaaa")
	dstPID, dstPassword := uint32(2), []byte("bbbbbbbbbbbbbbbb")

	issued, err := IssueTicket(srcPID, srcPassword, dstPID, dstPassword, now)
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	dstKey := DeriveKerberosKey(dstPID, dstPassword)

	ticket, err := DecodeTicket(issued.ForServer, dstKey)
	if err != nil {
		t.Fatalf("DecodeTicket: %v", err)
	}

	if ticket.PID != srcPID {
		t.Fatalf("ticket.PID = %d, want %d", ticket.PID, srcPID)
	}

	if len(ticket.SessionKey) != 32 {
		t.Fatalf("len(ticket.SessionKey) = %d, want 32", len(ticket.SessionKey))
	}

	if !ticket.Issued.Equal(now) {
		t.Fatalf("ticket.Issued = %v, want %v", ticket.Issued, now)
	}
}

func TestDecodeTicketRejectsTamperedCiphertext(t *testing.T) {
	now := time.Now().UTC()

	dstPID, dstPassword := uint32(2), []byte("bbbbbbbbbbbbbbbb")

	issued, err := IssueTicket(1001, []byte("aaaaaaaaaaaaaaaa"), dstPID, dstPassword, now)
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	tampered := append([]byte(nil), issued.ForServer...)
	tampered[0] ^= 0xFF

	dstKey := DeriveKerberosKey(dstPID, dstPassword)

	if _, err := DecodeTicket(tampered, dstKey); err == nil {
		t.Fatal("DecodeTicket must reject a ticket whose ciphertext was tampered with")
	}
}

func TestDecodeTicketRejectsWrongKey(t *testing.T) {
	now := time.Now().UTC()

	issued, err := IssueTicket(1001, []byte("aaaaaaaaaaaaaaaa"), 2, []byte("bbbbbbbbbbbbbbbb"), now)
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}

	wrongKey := DeriveKerberosKey(3, []byte("cccccccccccccccc"))

	if _, err := DecodeTicket(issued.ForServer, wrongKey); err == nil {
		t.Fatal("DecodeTicket must reject a ticket opened with the wrong destination key")
	}
}

package nex

import "testing"

func TestParseStationURLReadsFields(t *testing.T) {
	raw := "prudps:/address=127.0.0.1;port=60000;pid=1001;sid=1;stream=10;type=3"

	station, err := ParseStationURL(raw)
	if err != nil {
		t.Fatalf("ParseStationURL: %v", err)
	}

	if station.Scheme != "prudps" {
		t.Fatalf("Scheme = %q, want %q", station.Scheme, "prudps")
	}

	for _, want := range []struct{ key, value string }{
		{"address", "127.0.0.1"},
		{"port", "60000"},
		{"pid", "1001"},
	} {
		got, ok := station.Get(want.key)
		if !ok || got != want.value {
			t.Fatalf("Get(%q) = (%q, %v), want (%q, true)", want.key, got, ok, want.value)
		}
	}
}

func TestParseStationURLIsCaseInsensitiveOnKeys(t *testing.T) {
	station, err := ParseStationURL("udp:/ADDRESS=10.0.0.1;Port=1000")
	if err != nil {
		t.Fatalf("ParseStationURL: %v", err)
	}

	if v, ok := station.Get("address"); !ok || v != "10.0.0.1" {
		t.Fatalf("Get(\"address\") = (%q, %v), want (\"10.0.0.1\", true)", v, ok)
	}

	if v, ok := station.Get("PORT"); !ok || v != "1000" {
		t.Fatalf("Get(\"PORT\") = (%q, %v), want (\"1000\", true)", v, ok)
	}
}

func TestParseStationURLSkipsUnknownKeys(t *testing.T) {
	station, err := ParseStationURL("udp:/address=10.0.0.1;bogus=nope")
	if err != nil {
		t.Fatalf("ParseStationURL: %v", err)
	}

	if _, ok := station.Get("bogus"); ok {
		t.Fatal("unrecognised keys must be skipped, not stored")
	}

	if _, ok := station.Get("address"); !ok {
		t.Fatal("recognised keys alongside an unknown one must still be parsed")
	}
}

func TestStationURLStringIsLowercaseAndSorted(t *testing.T) {
	s := NewStationURL("PRUDPS")
	s.Set("PID", "1001")
	s.SetAddress("127.0.0.1", 60000)

	got := s.String()
	want := "prudps:/address=127.0.0.1;pid=1001;port=60000"

	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParseStationURLMissingSchemeSeparatorErrors(t *testing.T) {
	if _, err := ParseStationURL("not-a-station-url"); err == nil {
		t.Fatal("expected a parse error for a string missing the ':/' separator")
	}
}

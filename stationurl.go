package nex

import (
	"sort"
	"strconv"
	"strings"
)

// stationURLKeys is the recognised key set for a StationURL. Anything
// else is skipped on read; the skip is not logged.
var stationURLKeys = map[string]bool{
	"address": true, "port": true, "sid": true, "stream": true,
	"cid": true, "pid": true, "type": true, "natm": true,
	"natf": true, "upnp": true, "rvcid": true, "pl": true, "pmp": true,
}

// StationURL is the textual endpoint descriptor
// `scheme:/k1=v1;k2=v2;...` used to advertise rendez-vous endpoints to
// clients (e.g. in matchmake session gathering descriptions).
type StationURL struct {
	Scheme string
	Fields map[string]string
}

// NewStationURL constructs an empty StationURL for the given scheme
// (one of "udp", "prudp", "prudps").
func NewStationURL(scheme string) *StationURL {
	return &StationURL{
		Scheme: scheme,
		Fields: make(map[string]string),
	}
}

// Set stores a field value using its canonical lowercase key name.
func (s *StationURL) Set(key, value string) {
	s.Fields[strings.ToLower(key)] = value
}

// Get retrieves a field value, case-insensitively.
func (s *StationURL) Get(key string) (string, bool) {
	v, ok := s.Fields[strings.ToLower(key)]
	return v, ok
}

// SetAddress is a convenience setter for the common "address"/"port"
// pair stations carry.
func (s *StationURL) SetAddress(address string, port uint16) {
	s.Set("address", address)
	s.Set("port", strconv.Itoa(int(port)))
}

// String serialises the StationURL with a lowercase scheme and keys, in
// a stable (sorted) key order so output is deterministic.
func (s *StationURL) String() string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(strings.ToLower(s.Scheme))
	b.WriteString(":/")

	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.Fields[k])
	}

	return b.String()
}

// ParseStationURL parses the `scheme:/k1=v1;k2=v2;...` grammar. Key
// parsing is case-insensitive; unrecognised keys are skipped, not an
// error.
func ParseStationURL(raw string) (*StationURL, error) {
	schemeSplit := strings.SplitN(raw, ":/", 2)
	if len(schemeSplit) != 2 {
		return nil, &ParseError{Reason: "station url missing scheme separator"}
	}

	station := NewStationURL(strings.ToLower(schemeSplit[0]))

	if schemeSplit[1] == "" {
		return station, nil
	}

	for _, pair := range strings.Split(schemeSplit[1], ";") {
		if pair == "" {
			continue
		}

		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, &ParseError{Reason: "station url field missing '='"}
		}

		key := strings.ToLower(kv[0])
		if !stationURLKeys[key] {
			continue
		}

		station.Fields[key] = kv[1]
	}

	return station, nil
}

package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

// member is one key/value pair of a JSON object, kept in document order.
type member struct {
	Key   string
	Value json.RawMessage
}

// decodeObject decodes a JSON object into its members in document order.
// A repeated key keeps its first position and its last value.
func decodeObject(raw json.RawMessage) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected JSON object")
	}

	var members []member
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if i, seen := index[key]; seen {
			members[i].Value = value
			continue
		}
		index[key] = len(members)
		members = append(members, member{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

// decodeArray decodes a JSON array into its raw elements. null yields nil.
func decodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseTimestamp accepts RFC 3339 strings (with or without zone, the latter
// read as UTC) and numeric Unix seconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts, nil
		}
		if ts, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
			return ts, nil
		}
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}

	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s", string(raw))
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
}

// fields is a decoded station object.
type fields map[string]json.RawMessage

func decodeFields(raw json.RawMessage) (fields, error) {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("expected JSON object")
	}
	return f, nil
}

// str returns the field as text. Numbers are kept in their literal form since
// upstream publishes post codes and house numbers as either.
func (f fields) str(key string) string {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// boolean returns the field if it is a JSON boolean and false otherwise.
func (f fields) boolean(key string) bool {
	var b bool
	if err := json.Unmarshal(f[key], &b); err != nil {
		return false
	}
	return b
}

// prices collects the numeric fuel price fields. Absent and non-numeric
// fields are skipped.
func (f fields) prices() map[fuel.Kind]float64 {
	out := make(map[fuel.Kind]float64, len(fuel.Kinds))
	for _, k := range fuel.Kinds {
		raw, ok := f[string(k)]
		if !ok || isNull(raw) {
			continue
		}
		var p float64
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		out[k] = p
	}
	return out
}

func (f fields) info() fuel.StationInfo {
	return fuel.StationInfo{
		Brand:       f.str("brand"),
		Name:        f.str("name"),
		Street:      f.str("street"),
		HouseNumber: f.str("houseNumber"),
		PostCode:    f.str("postCode"),
		Place:       f.str("place"),
	}
}

// sortSnapshots orders snapshots by timestamp, keeping document order for
// equal timestamps. Well-ordered input is left unchanged.
func sortSnapshots(snaps []fuel.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
}

func malformed(doc string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", fuel.ErrEmptyOrMalformed, doc, fmt.Sprintf(format, args...))
}

// Package profile holds the company-profile record codec.
//
// A record is an opaque JSON document with one required field, "id". The
// storage layer never interprets anything beyond that: a decoded record keeps
// its original bytes and Encode returns them verbatim, so decode→encode is a
// byte-for-byte round trip.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingID marks a well-formed document that carries no usable identity.
var ErrMissingID = errors.New("record has no id field")

// Record is one company profile as stored: its id plus the exact serialized
// bytes it was decoded from (or built with).
type Record struct {
	id  string
	raw []byte
}

// Decode validates data as a JSON object with a non-empty string "id" and
// returns a Record preserving the input bytes.
func Decode(data []byte) (Record, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&fields); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if dec.More() {
		return Record{}, errors.New("decode record: trailing data after document")
	}
	idRaw, ok := fields["id"]
	if !ok {
		return Record{}, ErrMissingID
	}
	var id string
	if err := json.Unmarshal(idRaw, &id); err != nil || id == "" {
		return Record{}, ErrMissingID
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return Record{id: id, raw: raw}, nil
}

// New builds a record from caller fields. The id argument wins over any "id"
// key in fields. Output is two-space-indented JSON.
func New(id string, fields map[string]any) (Record, error) {
	if id == "" {
		return Record{}, ErrMissingID
	}
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["id"] = id
	raw, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}
	return Record{id: id, raw: raw}, nil
}

// ID returns the record identity.
func (r Record) ID() string { return r.id }

// Encode returns the stored bytes verbatim.
func (r Record) Encode() []byte {
	out := make([]byte, len(r.raw))
	copy(out, r.raw)
	return out
}

// Fields decodes the record into a generic map. Used by update flows that
// merge caller changes over the current content.
func (r Record) Fields() (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(r.raw, &fields); err != nil {
		return nil, fmt.Errorf("decode record fields: %w", err)
	}
	return fields, nil
}

// Equal reports whether two records have identical stored bytes.
func (r Record) Equal(other Record) bool {
	return bytes.Equal(r.raw, other.raw)
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reserved and extracted record field names.
const (
	FieldSource      = "_source"
	FieldRaw         = "_raw"
	FieldEmail       = "email"
	FieldTelephone   = "telephone"
	FieldIP          = "ip"
	FieldURL         = "url"
	FieldIdentifiant = "identifiant"
	FieldPassword    = "password"
)

// ExtractedFields lists the fields the extractor can populate, in cascade order.
func ExtractedFields() []string {
	return []string{FieldEmail, FieldTelephone, FieldIP, FieldURL, FieldIdentifiant, FieldPassword}
}

// Record is an ordered mapping from field name to value, built from one
// line of raw text. It always carries _source and _raw.
//
// Records are populated once during extraction and treated as immutable
// afterwards; copies share storage.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord creates a record holding only the reserved fields.
func NewRecord(source, raw string) Record {
	r := Record{
		keys:   make([]string, 0, 4),
		values: make(map[string]string, 4),
	}
	r.SetIfAbsent(FieldSource, source)
	r.SetIfAbsent(FieldRaw, raw)
	return r
}

// SetIfAbsent stores value under key unless the key is already present.
// It reports whether the value was stored. Only used while building a record.
func (r *Record) SetIfAbsent(key, value string) bool {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; ok {
		return false
	}
	r.keys = append(r.keys, key)
	r.values[key] = value
	return true
}

// Get returns the value stored under key.
func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Source returns the display name of the resource the record came from.
func (r Record) Source() string {
	return r.values[FieldSource]
}

// Raw returns the original line text.
func (r Record) Raw() string {
	return r.values[FieldRaw]
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Keys returns the field names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record, keeping key order.
// Non-string values are kept as their JSON text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	*r = Record{values: make(map[string]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected string key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(raw)
		}
		r.SetIfAbsent(key, s)
	}

	_, err = dec.Token()
	return err
}

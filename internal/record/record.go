package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrNotObject is returned when a JSON record is not an object
var ErrNotObject = errors.New("record must be a JSON object")

// Field is a single name/value pair used to build records
type Field struct {
	Name  string
	Value Value
}

// F builds a Field from a Go scalar
func F(name string, v any) Field {
	return Field{Name: name, Value: ValueOf(v)}
}

// Record maps field names to values and remembers insertion order.
// The zero Record is empty and ready to use.
type Record struct {
	keys   []string
	values map[string]Value
}

// New creates a record from fields in order. A repeated name keeps its first
// position and takes the last value.
func New(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set assigns a value, appending the key if it is new
func (r *Record) Set(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

// Get returns the value for name and whether it is present
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Keys returns the field names in insertion order
func (r Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of fields
func (r Record) Len() int { return len(r.keys) }

// MarshalJSON encodes the record as an object in field order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object with the key order a browser gives
// it: array-index keys first in ascending order, then the others as written.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.Set(key, fromJSON(raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	r.sortIndexKeys()
	return nil
}

// sortIndexKeys moves array-index keys to the front in numeric order
func (r *Record) sortIndexKeys() {
	sort.SliceStable(r.keys, func(i, j int) bool {
		a, aIdx := arrayIndex(r.keys[i])
		b, bIdx := arrayIndex(r.keys[j])
		if aIdx && bIdx {
			return a < b
		}
		return aIdx && !bIdx
	})
}

// arrayIndex reports whether key is a canonical array index (0 to 2^32-2)
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}

// fromJSON maps decoded JSON to a Value. Nested containers take the text a
// browser produces when coercing them to strings.
func fromJSON(v any) Value {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			if e == nil {
				continue
			}
			parts[i] = fromJSON(e).Text()
		}
		return String(strings.Join(parts, ","))
	case map[string]any:
		return String("[object Object]")
	default:
		return ValueOf(x)
	}
}

// RecordSet is an ordered sequence of records sharing the first record's schema
type RecordSet []Record

// Headers returns the field names of the first record, or nil when empty.
// Fields that only appear in later records are not part of the schema.
func (rs RecordSet) Headers() []string {
	if len(rs) == 0 {
		return nil
	}
	return rs[0].Keys()
}

// Empty reports whether there is nothing to export
func (rs RecordSet) Empty() bool { return len(rs) == 0 }

// Decode parses a JSON array of objects into a RecordSet. A JSON null
// yields an empty set.
func Decode(data []byte) (RecordSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var rs RecordSet
	if err := json.Unmarshal(trimmed, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return rs, nil
}

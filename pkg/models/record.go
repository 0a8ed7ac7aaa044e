package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one row of a tabular dataset: an ordered mapping from column name
// to cell value. Key order is insertion order.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord creates an empty record with room for n columns.
func NewRecord(n int) *Record {
	return &Record{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// RecordOf builds a record from alternating key/value pairs. Intended for
// fixtures; panics on an odd argument count or a non-string key.
func RecordOf(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("models.RecordOf: odd number of arguments")
	}
	r := NewRecord(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("models.RecordOf: key %v is not a string", kv[i]))
		}
		r.Set(k, ValueOf(kv[i+1]))
	}
	return r
}

// ValueOf converts a Go scalar into a Value. Unsupported types become their
// fmt string form.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case int32:
		return NumberValue(float64(t))
	}
	return StringValue(fmt.Sprint(x))
}

// Set assigns a value, appending the key if it is new.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key and whether the key is present.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or null when absent.
func (r *Record) Value(key string) Value {
	v, _ := r.Get(key)
	return v
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the column names in insertion order. The slice must not be
// modified by callers.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return r.keys
}

// Len returns the number of columns.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Signature identifies the key set and order of the record.
func (r *Record) Signature() string {
	return strings.Join(r.Keys(), "\x00")
}

// MarshalJSON writes the record as a JSON object in key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
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
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the key order of the input.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = Record{values: make(map[string]Value)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record key must be a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// ExtraColumn holds the surplus cells of a parsed row that is longer than its
// header. Profiling and geo extraction skip it.
const ExtraColumn = "__parsed_extra"

// Dataset is an ordered sequence of records, typically produced by a file
// parser. Records in a well-formed dataset share the same column set.
type Dataset []*Record

// Columns returns the column names of the first record.
func (d Dataset) Columns() []string {
	if len(d) == 0 {
		return nil
	}
	return d[0].Keys()
}

// DataColumns returns the columns of the first record without ExtraColumn.
func (d Dataset) DataColumns() []string {
	cols := d.Columns()
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != ExtraColumn {
			out = append(out, c)
		}
	}
	return out
}

// ColumnValues returns the value of column for every record, null where a
// record lacks the column.
func (d Dataset) ColumnValues(column string) []Value {
	values := make([]Value, len(d))
	for i, rec := range d {
		values[i] = rec.Value(column)
	}
	return values
}

// Package ordered provides a JSON object type that keeps its keys in document order.
package ordered

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
)

// Map is a string-keyed map that remembers insertion order.
// Decoding keeps the order keys appear in the JSON document.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// New creates an empty Map
func New[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// Len returns the number of entries
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in order
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value stored under key
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key. New keys are appended at the end.
func (m *Map[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key, keeping the order of the rest
func (m *Map[V]) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Each calls fn for every entry in order until fn returns false
func (m *Map[V]) Each(fn func(key string, value V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// UnmarshalJSON decodes a JSON object, keeping document key order
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("ordered: invalid json")
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return fmt.Errorf("ordered: expected object, got %s", res.Type)
	}

	m.keys = nil
	m.values = make(map[string]V)

	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		var v V
		if uerr := json.Unmarshal([]byte(value.Raw), &v); uerr != nil {
			err = fmt.Errorf("ordered: key %q: %w", key.String(), uerr)
			return false
		}
		m.Set(key.String(), v)
		return true
	})
	return err
}

// MarshalJSON encodes the entries as a JSON object in order
func (m Map[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Unknown returns the entries of the JSON object data whose keys are not in
// known, in document order. It returns nil when there are none.
func Unknown(data []byte, known ...string) *Map[json.RawMessage] {
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return nil
	}
	var out *Map[json.RawMessage]
	res.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if slices.Contains(known, k) {
			return true
		}
		if out == nil {
			out = New[json.RawMessage]()
		}
		out.Set(k, json.RawMessage(value.Raw))
		return true
	})
	return out
}

// AppendEntries adds the entries of extra to the end of the encoded object obj.
// Keys obj already has are not repeated.
func AppendEntries(obj []byte, extra *Map[json.RawMessage]) ([]byte, error) {
	if extra.Len() == 0 {
		return obj, nil
	}
	have := gjson.ParseBytes(obj)
	if !have.IsObject() {
		return nil, fmt.Errorf("ordered: expected object, got %s", have.Type)
	}

	existing := make(map[string]bool)
	have.ForEach(func(key, _ gjson.Result) bool {
		existing[key.String()] = true
		return true
	})

	trimmed := bytes.TrimSpace(obj)
	var buf bytes.Buffer
	buf.Write(trimmed[:len(trimmed)-1])
	first := len(existing) == 0
	var err error
	extra.Each(func(k string, raw json.RawMessage) bool {
		if existing[k] {
			return true
		}
		var kb, vb []byte
		if kb, err = Marshal(k); err != nil {
			return false
		}
		if vb, err = Marshal(raw); err != nil {
			return false
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal encodes v without HTML escaping, so prose with markup survives a
// round trip through the data files unchanged.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

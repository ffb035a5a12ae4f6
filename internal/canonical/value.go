// Package canonical rewrites JSON-like values into a deterministic form and
// fingerprints them. Two bags that differ only in object key order, at any
// depth, produce the same canonical string and the same fingerprint.
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// ErrUnsupported is returned by FromAny for Go values with no JSON shape
var ErrUnsupported = errors.New("canonical: unsupported value type")

// Kind tags the variant held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Member is one key/value pair of an object
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	number  string // normalized literal
	str     string
	items   []Value
	members []Member
}

// Null returns the null value
func Null() Value { return Value{} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a float. Non-finite numbers become null, as they have no JSON form.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, number: formatNumber(f)}
}

// Int wraps an integer
func Int(i int64) Value {
	return Value{kind: KindNumber, number: strconv.FormatInt(i, 10)}
}

// Array builds an array preserving element order
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value(nil), items...)}
}

// Object builds an object. When a key repeats, the last member wins.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{kind: KindObject, members: out}
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// Items returns the elements of an array value
func (v Value) Items() []Value { return v.items }

// Members returns the members of an object value in their current order
func (v Value) Members() []Member { return v.members }

// Get looks up an object member by key
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// FromAny converts decoded JSON (as produced by encoding/json into an any,
// with or without UseNumber) and plain Go scalars into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, fmt.Errorf("canonical: bad number %q: %w", t.String(), err)
		}
		// out of range literals arrive as ±Inf or 0 and follow Number's rules
		return Number(f), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint32:
		return Int(int64(t)), nil
	case json.RawMessage:
		return Parse(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindArray, items: items}, nil
	case map[string]any:
		members := make([]Member, 0, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: k, Value: v})
		}
		return Value{kind: KindObject, members: members}, nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupported, x)
}

// Parse decodes a single JSON document into a Value
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("canonical: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errors.New("canonical: trailing data after JSON value")
	}
	return FromAny(raw)
}

// Canonicalize returns a copy with object keys sorted ascending (byte-wise)
// at every depth. Array order is preserved; scalars pass through.
func (v Value) Canonicalize() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.Canonicalize()
		}
		return Value{kind: KindArray, items: items}
	case KindObject:
		members := make([]Member, len(v.members))
		for i, m := range v.members {
			members[i] = Member{Key: m.Key, Value: m.Value.Canonicalize()}
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Key < members[j].Key
		})
		return Value{kind: KindObject, members: members}
	}
	return v
}

// MarshalJSON serializes v as is, without reordering
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil), nil
}

// UnmarshalJSON parses any JSON document into v
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

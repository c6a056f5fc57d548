// Package jsonv is a small JSON document model: a tagged union over null,
// booleans, integers, strings and objects, with object members kept in
// insertion order.
package jsonv

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
	KindObject
)

// Value holds exactly one of the kinds, selected by Kind.
type Value struct {
	Kind   Kind
	b      bool
	n      int64
	s      string
	fields []Field
}

// Field is a single object member.
type Field struct {
	Key   string
	Value Value
}

func Null() Value              { return Value{Kind: KindNull} }
func Bool(b bool) Value        { return Value{Kind: KindBool, b: b} }
func Int(n int) Value          { return Value{Kind: KindInt, n: int64(n)} }
func String(s string) Value    { return Value{Kind: KindString, s: s} }
func Object(fs ...Field) Value { return Value{Kind: KindObject, fields: fs} }

// F builds an object member.
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// With returns a copy of the object v with f appended. It panics if v is
// not an object.
func (v Value) With(f Field) Value {
	if v.Kind != KindObject {
		panic("jsonv: With on non-object value")
	}
	fs := make([]Field, len(v.fields), len(v.fields)+1)
	copy(fs, v.fields)
	return Value{Kind: KindObject, fields: append(fs, f)}
}

// Get returns the member named key of an object.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Serialize renders v as compact JSON.
func Serialize(v Value) []byte {
	var buf bytes.Buffer
	write(&buf, v)
	return buf.Bytes()
}

func (v Value) MarshalJSON() ([]byte, error) {
	return Serialize(v), nil
}

func (v Value) String() string {
	return string(Serialize(v))
}

func write(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.n, 10))
	case KindString:
		writeString(buf, v.s)
	case KindObject:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, f.Key)
			buf.WriteByte(':')
			write(buf, f.Value)
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
}

func writeString(buf *bytes.Buffer, s string) {
	// Marshal of a string cannot fail
	data, _ := json.Marshal(s)
	buf.Write(data)
}

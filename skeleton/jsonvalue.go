package skeleton

import (
	"math"
	"strconv"
)

// Value is a JSON value that renders itself in a fixed layout. Field order is
// preserved exactly as built.
type Value interface {
	appendJSON(b []byte) []byte
}

type Field struct {
	Key   string
	Value Value
}

// Object renders as {"k":v,...}.
type Object []Field

// LooseObject renders as {"k": v, ...}, with a space after each colon.
type LooseObject []Field

type Array []Value

type String string

type Int int64

type Uint uint64

// Float renders with the shortest representation that round-trips a
// float32. Non-finite values render as null.
type Float float32

func (o Object) appendJSON(b []byte) []byte { return appendObject(b, o, ":") }
func (o LooseObject) appendJSON(b []byte) []byte { return appendObject(b, o, ": ") }

func (a Array) appendJSON(b []byte) []byte {
	b = append(b, '[')
	for i, v := range a {
		if i > 0 {
			b = append(b, ',')
		}
		b = v.appendJSON(b)
	}
	return append(b, ']')
}

func (s String) appendJSON(b []byte) []byte {
	b = append(b, '"')
	b = appendEscaped(b, string(s))
	return append(b, '"')
}

func (i Int) appendJSON(b []byte) []byte { return strconv.AppendInt(b, int64(i), 10) }
func (u Uint) appendJSON(b []byte) []byte { return strconv.AppendUint(b, uint64(u), 10) }

func (f Float) appendJSON(b []byte) []byte {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(b, "null"...)
	}
	return strconv.AppendFloat(b, v, 'f', -1, 32)
}

func appendObject(b []byte, fields []Field, colon string) []byte {
	b = append(b, '{')
	for i, f := range fields {
		if i > 0 {
			b = append(b, ',')
		}
		b = String(f.Key).appendJSON(b)
		b = append(b, colon...)
		b = f.Value.appendJSON(b)
	}
	return append(b, '}')
}

// Marshal renders v.
func Marshal(v Value) string {
	return string(v.appendJSON(nil))
}

// Escape backslash-escapes double quotes and backslashes. It is the only
// escaping applied by this package.
func Escape(s string) string {
	return string(appendEscaped(make([]byte, 0, len(s)+4), s))
}

func appendEscaped(b []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return b
}

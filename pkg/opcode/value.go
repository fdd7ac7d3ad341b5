package opcode

import (
	"fmt"
	"strconv"
)

// Kind identifies which member of the Value union is populated.
type Kind int

const (
	KindInt Kind = iota
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the Int | String union manipulated by scripts.
// The zero Value is Int(0), the value of an unset variable.
type Value struct {
	Kind Kind
	Int  int64
	Str  string
}

// Int returns an integer Value.
func Int(n int64) Value {
	return Value{Kind: KindInt, Int: n}
}

// Str returns a string Value.
func Str(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.Kind == KindInt }

// Equal reports whether a and b have the same kind and payload.
// Mixed kinds are never equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind == KindInt {
		return v.Int == other.Int
	}
	return v.Str == other.Str
}

// Any returns the host representation: int64 or string.
func (v Value) Any() any {
	if v.Kind == KindString {
		return v.Str
	}
	return v.Int
}

// String renders the value the way it would be written in source.
func (v Value) String() string {
	if v.Kind == KindString {
		return strconv.Quote(v.Str)
	}
	return strconv.FormatInt(v.Int, 10)
}

// FromAny converts a host value into a Value.
// Any Go integer kind is accepted; the second result is false for
// everything else, including unsigned values that overflow int64.
func FromAny(x any) (Value, bool) {
	switch v := x.(type) {
	case Value:
		return v, true
	case string:
		return Str(v), true
	case int:
		return Int(int64(v)), true
	case int8:
		return Int(int64(v)), true
	case int16:
		return Int(int64(v)), true
	case int32:
		return Int(int64(v)), true
	case int64:
		return Int(v), true
	case uint8:
		return Int(int64(v)), true
	case uint16:
		return Int(int64(v)), true
	case uint32:
		return Int(int64(v)), true
	case uint:
		if uint64(v) > 1<<63-1 {
			return Value{}, false
		}
		return Int(int64(v)), true
	case uint64:
		if v > 1<<63-1 {
			return Value{}, false
		}
		return Int(int64(v)), true
	default:
		return Value{}, false
	}
}

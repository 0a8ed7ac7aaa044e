package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the runtime kind of a cell value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBoolean
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	}
	return "null"
}

// Value is a single cell of a tabular dataset. The zero value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a float64.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Kind returns the runtime kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null (or absent).
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value is null or an empty string.
// Empty values are excluded from type sampling and uniqueness.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Number returns the numeric payload and whether the value is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean payload and whether the value is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBoolean }

// Truthy follows JavaScript truthiness: null, "", 0, NaN and false are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBoolean:
		return v.b
	}
	return false
}

// String renders the value the way it is shown to users.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	}
	return "null"
}

// ValueKey is a comparable identity for a Value.
type ValueKey struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// Key returns the identity used for set membership. Numbers compare by value
// with 0 == -0 and every NaN equal to every other NaN.
func (v Value) Key() ValueKey {
	k := ValueKey{kind: v.kind}
	switch v.kind {
	case KindString:
		k.str = v.str
	case KindNumber:
		switch {
		case math.IsNaN(v.num):
			k.str = "NaN"
		case v.num == 0:
			k.num = 0
		default:
			k.num = v.num
		}
	case KindBoolean:
		k.b = v.b
	}
	return k
}

// Equal reports value equality under the same rules as Key.
func (v Value) Equal(o Value) bool { return v.Key() == o.Key() }

// FormatNumber returns the canonical decimal form of f: shortest digits that
// round-trip, fixed notation for 1e-6 <= |f| < 1e21 and exponent notation
// otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + string(sign) + digits
}

// MarshalJSON encodes the value as a native JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindBoolean:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a JSON scalar. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = Null()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '{', '[':
		return fmt.Errorf("cell value must be a scalar, got %s", data[:1])
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = NumberValue(f)
	}
	return nil
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OneOrMany holds a field the catalog serializes either as a single value or
// as an array of values, depending on how many values the record carries.
// The zero value is an empty Single and should not normally be observed:
// optional fields are declared as *OneOrMany so that JSON null stays absent.
type OneOrMany[T any] struct {
	values []T
	many   bool
}

// TextOrList is the common string-or-list-of-strings field.
type TextOrList = OneOrMany[string]

// One wraps a single value.
func One[T any](v T) OneOrMany[T] {
	return OneOrMany[T]{values: []T{v}}
}

// Many wraps a sequence. The result encodes as an array even with one element.
func Many[T any](vs ...T) OneOrMany[T] {
	out := make([]T, len(vs))
	copy(out, vs)
	return OneOrMany[T]{values: out, many: true}
}

// IsMany reports whether the value came from (or encodes as) an array.
func (o OneOrMany[T]) IsMany() bool {
	return o.many
}

// Single returns the value when o is the single form.
func (o OneOrMany[T]) Single() (T, bool) {
	var zero T
	if o.many || len(o.values) == 0 {
		return zero, false
	}
	return o.values[0], true
}

// Values returns every value regardless of form. The slice is a copy.
func (o OneOrMany[T]) Values() []T {
	out := make([]T, len(o.values))
	copy(out, o.values)
	return out
}

// First returns the first value of either form.
func (o OneOrMany[T]) First() (T, bool) {
	var zero T
	if len(o.values) == 0 {
		return zero, false
	}
	return o.values[0], true
}

// Len returns the number of values held.
func (o OneOrMany[T]) Len() int {
	return len(o.values)
}

// FirstOf returns the first value of an optional field, or the zero value when absent.
func FirstOf[T any](o *OneOrMany[T]) T {
	var zero T
	if o == nil {
		return zero
	}
	v, _ := o.First()
	return v
}

// ValuesOf returns the values of an optional field, or nil when absent.
func ValuesOf[T any](o *OneOrMany[T]) []T {
	if o == nil {
		return nil
	}
	return o.Values()
}

func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if isNull(trimmed) {
		*o = OneOrMany[T]{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var vs []T
		manyErr := json.Unmarshal(trimmed, &vs)
		if manyErr == nil {
			if vs == nil {
				vs = []T{}
			}
			o.values, o.many = vs, true
			return nil
		}
		// T may itself be a slice type, in which case the array is one value.
		var v T
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return manyErr
		}
		o.values, o.many = []T{v}, false
		return nil
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	o.values, o.many = []T{v}, false
	return nil
}

func (o OneOrMany[T]) MarshalJSON() ([]byte, error) {
	if o.many {
		if o.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(o.values)
	}
	if len(o.values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(o.values[0])
}

// NumberOrText is a numeric field the catalog sometimes sends as a quoted string.
// The literal text is kept so nothing is lost on re-encoding.
type NumberOrText struct {
	raw     string
	numeric bool
}

// Number builds a numeric NumberOrText.
func Number(n int64) NumberOrText {
	return NumberOrText{raw: strconv.FormatInt(n, 10), numeric: true}
}

// NumericText builds the quoted-string form.
func NumericText(s string) NumberOrText {
	return NumberOrText{raw: s}
}

// IsNumber reports whether the value was a JSON number.
func (n NumberOrText) IsNumber() bool {
	return n.numeric
}

// String returns the literal text of either form.
func (n NumberOrText) String() string {
	return n.raw
}

// Int parses either form as a base-10 integer.
func (n NumberOrText) Int() (int64, error) {
	if v, err := strconv.ParseInt(n.raw, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", n.raw)
	}
	return int64(f), nil
}

// Float parses either form as a float.
func (n NumberOrText) Float() (float64, error) {
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", n.raw)
	}
	return f, nil
}

func (n *NumberOrText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if isNull(trimmed) {
		*n = NumberOrText{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		n.raw, n.numeric = s, false
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	num, ok := v.(json.Number)
	if !ok {
		return fmt.Errorf("expected number or string, got %s", trimmed)
	}
	n.raw, n.numeric = num.String(), true
	return nil
}

func (n NumberOrText) MarshalJSON() ([]byte, error) {
	if n.numeric {
		return []byte(n.raw), nil
	}
	return json.Marshal(n.raw)
}

// BoolOrText is a boolean field the catalog sometimes sends as a string.
type BoolOrText struct {
	text   string
	value  bool
	isBool bool
}

// BoolValue builds the boolean form.
func BoolValue(b bool) BoolOrText {
	return BoolOrText{value: b, isBool: true}
}

// BoolText builds the string form.
func BoolText(s string) BoolOrText {
	return BoolOrText{text: s}
}

// IsBool reports whether the value was a JSON boolean.
func (b BoolOrText) IsBool() bool {
	return b.isBool
}

// String returns the text form. Booleans render as "true" or "false".
func (b BoolOrText) String() string {
	if b.isBool {
		return strconv.FormatBool(b.value)
	}
	return b.text
}

// Bool interprets either form. ok is false for strings that are not booleans.
func (b BoolOrText) Bool() (value bool, ok bool) {
	if b.isBool {
		return b.value, true
	}
	v, err := strconv.ParseBool(b.text)
	if err != nil {
		return false, false
	}
	return v, true
}

func (b *BoolOrText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if isNull(trimmed) {
		*b = BoolOrText{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*b = BoolOrText{text: s}
		return nil
	}
	var v bool
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("expected bool or string, got %s", trimmed)
	}
	*b = BoolOrText{value: v, isBool: true}
	return nil
}

func (b BoolOrText) MarshalJSON() ([]byte, error) {
	if b.isBool {
		return json.Marshal(b.value)
	}
	return json.Marshal(b.text)
}

func isNull(data []byte) bool {
	return bytes.Equal(data, []byte("null"))
}

package capacity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numeric is a raw size field as reported by a source. Sources send sizes
// either as JSON numbers or as decimal strings; an empty Numeric is absent.
type Numeric string

// NumericOf formats f as a Numeric. Unknown values become absent.
func NumericOf(f float64) Numeric {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return Numeric(strconv.FormatFloat(f, 'f', -1, 64))
}

// Present reports whether the field was supplied.
func (n Numeric) Present() bool {
	return strings.TrimSpace(string(n)) != ""
}

// Float returns the parsed value, or NaN when absent or not numeric.
func (n Numeric) Float() float64 {
	if !n.Present() {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid numeric string: %w", err)
		}
		*n = Numeric(s)
	default:
		*n = Numeric(data)
	}
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

// Value is a derived size or percentage. NaN means unknown and is encoded as
// JSON null.
type Value float64

// Unknown returns the unknown value.
func Unknown() Value {
	return Value(math.NaN())
}

// Known reports whether v holds a finite number.
func (v Value) Known() bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (v Value) Float64() float64 {
	return float64(v)
}

// Numeric converts v back to its raw form.
func (v Value) Numeric() Numeric {
	return NumericOf(float64(v))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Known() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(v), 'f', -1, 64)), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw Numeric
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	*v = Value(raw.Float())
	return nil
}

// Parse converts an arbitrary decoded value into a float. Strings are parsed
// as decimals; anything that is not numeric yields NaN.
func Parse(v any) float64 {
	switch val := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case Value:
		return float64(val)
	case Numeric:
		return val.Float()
	case json.Number:
		return Numeric(val).Float()
	case string:
		return Numeric(val).Float()
	default:
		return math.NaN()
	}
}

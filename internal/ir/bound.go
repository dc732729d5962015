package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Bound is a limit value that may be infinite.
//
// encoding/json cannot represent infinities, so Bound marshals +Inf and -Inf
// as the strings "+Inf" and "-Inf" and finite values as plain numbers. NaN
// marshals as the string "NaN".
type Bound float64

// Infinite reports whether b is +Inf or -Inf.
func (b Bound) Infinite() bool {
	return math.IsInf(float64(b), 0)
}

// String formats b the way it appears in JSON, without quotes.
func (b Bound) String() string {
	f := float64(b)
	switch {
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// MarshalJSON implements json.Marshaler.
func (b Bound) MarshalJSON() ([]byte, error) {
	f := float64(b)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return json.Marshal(b.String())
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bound) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := ParseBound(s)
		if err != nil {
			return err
		}
		*b = f
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("bound: %w", err)
	}
	*b = Bound(f)
	return nil
}

// ParseBound parses "+Inf", "-Inf", "Inf", "NaN" or a decimal number.
func ParseBound(s string) (Bound, error) {
	switch s {
	case "+Inf", "Inf", "inf", "+inf":
		return Bound(math.Inf(1)), nil
	case "-Inf", "-inf":
		return Bound(math.Inf(-1)), nil
	case "NaN":
		return Bound(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bound: invalid value %q", s)
	}
	return Bound(f), nil
}

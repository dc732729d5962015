package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for hashing.
// This is the ONLY serialization used for content-addressed identity.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. Numbers use the shortest round-trip form; integral values have no exponent
//     below 1e21
//  5. NaN, infinities and null are rejected
//
// Supported inputs: string, bool, int, int64, float64, []any, map[string]any,
// *float64 (nil rejected), Point, Node and ConstraintSpec.
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v)
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case float64:
		return marshalCanonicalNumber(val)
	case *float64:
		if val == nil {
			return nil, fmt.Errorf("null is forbidden in canonical JSON")
		}
		return marshalCanonicalNumber(*val)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	case Point:
		return marshalCanonicalObject(val.canonicalMap())
	case Node:
		return marshalCanonicalObject(val.canonicalMap())
	case ConstraintSpec:
		return marshalCanonicalObject(val.canonicalMap())
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalNumber formats a finite float in ES6 Number style.
func marshalCanonicalNumber(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite numbers are forbidden in canonical JSON: %v", f)
	}
	if f == 0 {
		// Collapses -0 to 0.
		return []byte("0"), nil
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go writes e-07 / e+21; ES6 writes e-7 / e+21.
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return []byte(mantissa + "e" + sign + digits), nil
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization and without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // <, >, & must NOT be escaped
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range sortedKeys(obj) {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeys orders keys by UTF-16 code units.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i], keys[j]) < 0
	})
	return keys
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	return len(ua) - len(ub)
}

func (p Point) canonicalMap() map[string]any {
	return map[string]any{"x": p.X, "y": p.Y}
}

// canonicalMap omits unset parameters so that adding optional fields later
// does not change existing hashes.
func (n Node) canonicalMap() map[string]any {
	m := map[string]any{"kind": n.Kind}
	if n.MaxVelocity != nil {
		m["max_velocity"] = *n.MaxVelocity
	}
	if n.MaxCentripetalAcceleration != nil {
		m["max_centripetal_acceleration"] = *n.MaxCentripetalAcceleration
	}
	if n.MinAcceleration != nil {
		m["min_acceleration"] = *n.MinAcceleration
	}
	if n.MaxAcceleration != nil {
		m["max_acceleration"] = *n.MaxAcceleration
	}
	if n.BottomLeft != nil {
		m["bottom_left"] = n.BottomLeft.canonicalMap()
	}
	if n.TopRight != nil {
		m["top_right"] = n.TopRight.canonicalMap()
	}
	if n.Inner != nil {
		m["inner"] = n.Inner.canonicalMap()
	}
	if n.Ref != "" {
		m["ref"] = n.Ref
	}
	return m
}

func (s ConstraintSpec) canonicalMap() map[string]any {
	m := map[string]any{
		"name": s.Name,
		"root": s.Root.canonicalMap(),
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	return m
}

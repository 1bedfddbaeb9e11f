package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// fields holds the top-level keys of a response object, each undecoded.
// Every accessor returns a zero value instead of an error so that a wrong
// type in one field never blocks the rest of the payload.
type fields map[string]json.RawMessage

// parseFields splits a response body into its top-level keys. Anything that
// is not a JSON object yields an empty set.
func parseFields(raw []byte) fields {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return fields{}
	}
	return f
}

// has reports whether any of the keys is present and not null.
func (f fields) has(keys ...string) bool {
	for _, k := range keys {
		if v, ok := f[k]; ok && !isNull(v) {
			return true
		}
	}
	return false
}

func (f fields) float(key string) float64 {
	return parseFloatOrZero(f[key])
}

func (f fields) str(key string) string {
	var s string
	if err := json.Unmarshal(f[key], &s); err != nil {
		return ""
	}
	return s
}

// strings decodes a list of strings, skipping nulls and items of any other type.
func (f fields) strings(key string) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(f[key], &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// floats decodes a list of numbers; unparseable items become 0 so positions hold.
func (f fields) floats(key string) []float64 {
	var items []json.RawMessage
	if err := json.Unmarshal(f[key], &items); err != nil || items == nil {
		return nil
	}
	out := make([]float64, len(items))
	for i, item := range items {
		out[i] = parseFloatOrZero(item)
	}
	return out
}

// floatMap decodes an object of label -> number.
func (f fields) floatMap(key string) map[string]float64 {
	var items map[string]json.RawMessage
	if err := json.Unmarshal(f[key], &items); err != nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(items))
	for label, v := range items {
		out[label] = parseFloatOrZero(v)
	}
	return out
}

// orderedFloats decodes an object of name -> number keeping document order.
// Repeated names keep their first position. Returns ok=false when the value
// is not an object.
func (f fields) orderedFloats(key string) (names []string, values []float64, ok bool) {
	raw := f[key]
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, false
	}
	if d, isDelim := tok.(json.Delim); !isDelim || d != '{' {
		return nil, nil, false
	}

	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			break
		}
		name, _ := keyTok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			break
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		values = append(values, parseFloatOrZero(v))
	}
	return names, values, true
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// parseFloatOrZero accepts a JSON number or a numeric string, returning 0 otherwise.
func parseFloatOrZero(raw json.RawMessage) float64 {
	if isNull(raw) {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

package portal

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one raw JSON object as sent by the portal. Keys and value types
// vary between deployments, so fields are read through ordered lists of
// synonymous keys rather than fixed structs.
type Record map[string]any

// decodeJSON parses a response body keeping numbers as json.Number so large
// ids and epoch milliseconds are not rounded through float64.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	}
	return nil, false
}

// First returns the first value among keys that is present and non-empty.
// Zero numbers, false, "", empty lists and empty objects all count as empty.
func (r Record) First(keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && present(v) {
			return v
		}
	}
	return nil
}

// Text returns the first non-empty value among keys rendered as text.
func (r Record) Text(keys ...string) string {
	return stringify(r.First(keys...))
}

// Int returns the first non-empty value among keys as an integer, or 0.
func (r Record) Int(keys ...string) int64 {
	n, _ := toInt64(r.First(keys...))
	return n
}

// Float returns the first non-empty value among keys as a number, or nil.
// Zero is a real amount here, so it is looked up directly rather than via First.
func (r Record) Float(keys ...string) *float64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat64(v); ok {
			return &f
		}
	}
	return nil
}

// Object returns the nested object under key, or an empty Record.
func (r Record) Object(key string) Record {
	if m, ok := asRecord(r[key]); ok {
		return m
	}
	return Record{}
}

// Strings returns the list under key with every non-empty element as text.
func (r Record) Strings(key string) []string {
	list, _ := r[key].([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s := stringify(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case Record:
		return len(t) > 0
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	// Some deployments nest a {Id, Name} object where others send a plain name.
	if m, ok := asRecord(v); ok {
		return m.Text("Name", "DisplayName")
	}
	return ""
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return truncate(f)
		}
	case float64:
		return truncate(t)
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

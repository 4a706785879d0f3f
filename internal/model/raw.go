package model

import "strings"

// RawEvent is a source-native listing as written by a scraper. Field names
// and shapes vary per source; accessors never fail on missing or mistyped keys.
type RawEvent map[string]any

// String returns the string stored at key, or "" when absent or not a string.
func (r RawEvent) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// First returns the first non-empty string among keys.
func (r RawEvent) First(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Strings returns the list stored at key. ok is false when the value is not a
// list. Non-string elements are skipped.
func (r RawEvent) Strings(key string) ([]string, bool) {
	switch v := r[key].(type) {
	case []string:
		return append([]string{}, v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, isStr := item.(string); isStr {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Object returns the nested object stored at key.
func (r RawEvent) Object(key string) (RawEvent, bool) {
	switch v := r[key].(type) {
	case map[string]any:
		return RawEvent(v), true
	case RawEvent:
		return v, true
	default:
		return nil, false
	}
}

// JoinedAddress joins a list-valued field with ", ". ok is false when the
// field is not a list or the list is empty.
func (r RawEvent) JoinedAddress(key string) (string, bool) {
	parts, ok := r.Strings(key)
	if !ok || len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

package platform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Helpers for digging through untyped payload maps. All of them tolerate
// missing keys and wrong types and return zero values instead of failing:
// the payloads are untrusted and every field is optional until the
// classifier says otherwise.

func getMap(obj map[string]interface{}, key string) map[string]interface{} {
	if obj == nil {
		return nil
	}
	m, _ := obj[key].(map[string]interface{})
	return m
}

func getSlice(obj map[string]interface{}, key string) []interface{} {
	if obj == nil {
		return nil
	}
	s, _ := obj[key].([]interface{})
	return s
}

func getString(obj map[string]interface{}, key string) string {
	if obj == nil {
		return ""
	}
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// Integer-valued ids arrive as JSON numbers on some platforms.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return fmt.Sprintf("%v", v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func firstString(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v := getString(obj, k); v != "" {
			return v
		}
	}
	return ""
}

func getFloat(obj map[string]interface{}, key string) float64 {
	if obj == nil {
		return 0
	}
	switch v := obj[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func firstFloat(obj map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return getFloat(obj, k)
		}
	}
	return 0
}

func getBool(obj map[string]interface{}, key string) bool {
	if obj == nil {
		return false
	}
	b, _ := obj[key].(bool)
	return b
}

func hasKey(obj map[string]interface{}, key string) bool {
	if obj == nil {
		return false
	}
	_, ok := obj[key]
	return ok
}

// getTime parses the loose timestamp formats the platforms send: RFC 3339
// strings, "2006-01-02 15:04:05" and millisecond epoch numbers. Zero time
// on anything else; callers default to now.
func getTime(obj map[string]interface{}, keys ...string) time.Time {
	if obj == nil {
		return time.Time{}
	}
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t
			}
			if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
				return t
			}
		case float64:
			if v > 1e12 {
				return time.UnixMilli(int64(v))
			}
			if v > 0 {
				return time.Unix(int64(v), 0)
			}
		}
	}
	return time.Time{}
}

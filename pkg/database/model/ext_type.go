package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ExtType is a jsonb column holding free-form structured data, e.g. the
// parsed_data blob submitted by bots.
type ExtType map[string]interface{}

func (e ExtType) Value() (driver.Value, error) {
	b, err := json.Marshal(e)
	return string(b), err
}

func (e *ExtType) Scan(value interface{}) error {
	if value == nil {
		*e = make(map[string]interface{})
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(b) == 0 {
		*e = make(map[string]interface{})
		return nil
	}

	return json.Unmarshal(b, e)
}

func (e ExtType) GetStringValue(key string) string {
	if val, ok := e[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetStringSlice returns the value at key as a string slice, tolerating
// the []interface{} shape json.Unmarshal produces.
func (e ExtType) GetStringSlice(key string) []string {
	val, ok := e[key]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}

// GetPath walks a dotted key path through nested maps. The second return
// is false when any segment is missing or not a map.
func (e ExtType) GetPath(keys ...string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(e)
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetFloatPath resolves a dotted path to a float64.
func (e ExtType) GetFloatPath(keys ...string) (float64, bool) {
	val, ok := e.GetPath(keys...)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

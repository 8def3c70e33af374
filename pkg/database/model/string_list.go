package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringList is a jsonb column holding a list of strings (allowed sources,
// currency whitelists and the like).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
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
		*l = nil
		return nil
	}

	return json.Unmarshal(b, l)
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, item := range l {
		if item == s {
			return true
		}
	}
	return false
}

// Intersects reports whether any element of other is in the list.
func (l StringList) Intersects(other []string) bool {
	for _, item := range other {
		if l.Contains(item) {
			return true
		}
	}
	return false
}

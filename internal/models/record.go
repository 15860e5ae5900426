package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RawRecord is one decoded log entry (a JSON object or a CSV row).
// Values are scalars or sequences of scalars.
type RawRecord map[string]interface{}

// NormalizedRecord is a RawRecord whose sequence columns were collapsed into text.
type NormalizedRecord map[string]interface{}

// Text returns the value of field rendered as text. The boolean is false when the
// field is absent or null.
func (r NormalizedRecord) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	return ValueText(v), true
}

// ValueText renders a scalar the way it appeared in the source document.
func ValueText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

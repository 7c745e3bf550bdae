package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonValue encodes v for a jsonb column. lib/pq sends []byte as bytea,
// so the document goes out as text.
func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// scanJSON decodes a jsonb column into dst. NULL leaves dst untouched.
func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// StringPtr is a convenience for optional text fields.
func StringPtr(s string) *string {
	return &s
}

// StringValue dereferences an optional text field.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

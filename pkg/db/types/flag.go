package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag is a boolean persisted as an integer 0/1 and rendered as a JSON bool.
type Flag bool

func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(v)
	case int64:
		*f = v != 0
	case int32:
		*f = v != 0
	case int16:
		*f = v != 0
	case float64:
		*f = v != 0
	case []byte:
		return f.parse(string(v))
	case string:
		return f.parse(v)
	default:
		return fmt.Errorf("Flag: unsupported Scan type %T", src)
	}
	return nil
}

func (f Flag) Value() (driver.Value, error) {
	return f.Int(), nil
}

// Int returns the storage form of the flag.
func (f Flag) Int() int64 {
	if f {
		return 1
	}
	return 0
}

func (f Flag) Bool() bool {
	return bool(f)
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// UnmarshalJSON accepts true/false as well as 0/1.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	return f.parse(s)
}

func (f *Flag) parse(s string) error {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		*f = Flag(b)
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = n != 0
		return nil
	}
	return fmt.Errorf("Flag: cannot parse %q", s)
}

package model

import (
	"bytes"
	"strconv"
)

// Numeric is a tolerant scalar for upstream HR fields: the same field may
// arrive as a JSON number, a quoted string, or null depending on the
// endpoint. The raw token is kept as a string and parsed on demand.
type Numeric string

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			*n = ""
			return nil
		}
		*n = Numeric(unquoted)
		return nil
	}
	*n = Numeric(data)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(n))), nil
}

func (n Numeric) String() string {
	return string(n)
}

// Float64 parses the value; ok is false for empty or non-numeric tokens.
func (n Numeric) Float64() (float64, bool) {
	if n == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int64 parses the value as an integer, truncating a fractional part.
func (n Numeric) Int64() (int64, bool) {
	if n == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// IsSet reports whether the upstream field carried any value at all.
func (n Numeric) IsSet() bool {
	return n != ""
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString is a string on the Go side that decodes from either a JSON
// string or a JSON number. The backend is inconsistent about ids and numeric
// form fields, so both spellings are accepted. It always encodes as a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// Count is the total number of records matching a list query. The backend
// sends it as a numeric string; a plain number is accepted too.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(string(s))
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", s, err)
	}
	*c = Count(n)
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(c)))
}

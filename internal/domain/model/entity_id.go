package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EntityID is a backend-owned identifier. It is opaque: numeric ids from the
// CMS are kept in their textual form and never validated as numbers.
type EntityID string

func (id EntityID) String() string { return string(id) }

func (id EntityID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *EntityID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = EntityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = EntityID(n.String())
	return nil
}

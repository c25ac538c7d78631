package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The original data this system ingests was written by hand and by older
// versions of the exporter: ids show up as floats or strings, years as text,
// counters as anything. These scalar types absorb that at the JSON boundary
// so the repair pass and the mergers only ever see well-typed values.

// ID is a collection-local integer identifier. Unparseable input decodes to
// zero, which the repair pass renumbers.
type ID int64

// UnmarshalJSON accepts a JSON number (floats are truncated) or a numeric
// string; anything else becomes zero.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID(looseInt(data))
	return nil
}

// Year is an optional integer year. Absent, null and unparseable values are
// all "not set".
type Year struct {
	Int   int
	Valid bool
}

// NewYear returns a set Year.
func NewYear(i int) Year {
	return Year{Int: i, Valid: true}
}

func (y Year) MarshalJSON() ([]byte, error) {
	if !y.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(y.Int)
}

func (y *Year) UnmarshalJSON(data []byte) error {
	if n, ok := looseIntOK(data); ok {
		*y = Year{Int: int(n), Valid: true}
		return nil
	}
	*y = Year{}
	return nil
}

// Count is a non-failing integer counter: missing, null or garbage input
// decodes to zero so a partial stats record never poisons a merge.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count(looseInt(data))
	return nil
}

func looseInt(data []byte) int64 {
	n, _ := looseIntOK(data)
	return n
}

func looseIntOK(data []byte) (int64, bool) {
	s := string(bytes.TrimSpace(data))
	if s == "" || s == "null" {
		return 0, false
	}
	if strings.HasPrefix(s, `"`) {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(inner)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

// Package importer reconciles the three external dataset shapes into the
// live collection: full replacement, grouped quiz cards, statistics-only.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/models"
)

// Kind selects one of the recognized import shapes. There is no shape
// sniffing: the caller names the kind and the parser fails closed.
type Kind int

const (
	KindFullReplace Kind = iota + 1
	KindGroupedCards
	KindStats
)

func (k Kind) String() string {
	switch k {
	case KindFullReplace:
		return "replace"
	case KindGroupedCards:
		return "cards"
	case KindStats:
		return "stats"
	default:
		return "unknown"
	}
}

// ParseKind maps the wire name of an import kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "replace", "full":
		return KindFullReplace, nil
	case "cards", "grouped":
		return KindGroupedCards, nil
	case "stats":
		return KindStats, nil
	default:
		return 0, errors.NewMalformedImportError(fmt.Sprintf("unknown import kind %q", s))
	}
}

// GroupedCard is one record of a grouped-card import file.
type GroupedCard struct {
	Artist string         `json:"artist"`
	Title  string         `json:"title"`
	Date   string         `json:"date"`
	Image  models.Payload `json:"image"`
	Note   string         `json:"note"`
}

// StatsCard is one record of a statistics import file.
type StatsCard struct {
	Artist string            `json:"artist"`
	Title  string            `json:"title"`
	Stats  models.Statistics `json:"stats"`
}

// Import is the tagged result of parsing one import file: exactly one of
// the payload fields is set, matching Kind.
type Import struct {
	Kind    Kind
	Artists []models.Artist
	Cards   []GroupedCard
	Stats   []StatsCard
}

type statsEnvelope struct {
	Cards json.RawMessage `json:"cards"`
}

// Parse validates data against the selected kind and decodes it. Any shape
// mismatch aborts with MalformedImport; nothing is merged on failure.
func Parse(kind Kind, data []byte) (*Import, error) {
	switch kind {
	case KindFullReplace:
		var artists []models.Artist
		if err := decodeObjectArray(data, &artists); err != nil {
			return nil, err
		}
		return &Import{Kind: kind, Artists: artists}, nil

	case KindGroupedCards:
		var cards []GroupedCard
		if err := decodeObjectArray(data, &cards); err != nil {
			return nil, err
		}
		return &Import{Kind: kind, Cards: cards}, nil

	case KindStats:
		// Stats files come either as a bare array or wrapped in {"cards": [...]}.
		body := data
		if firstToken(data) == '{' {
			var env statsEnvelope
			if err := json.Unmarshal(data, &env); err != nil {
				return nil, errors.NewMalformedImportError("not a JSON object")
			}
			if len(env.Cards) == 0 {
				return nil, errors.NewMalformedImportError(`missing "cards" array`)
			}
			body = env.Cards
		}
		var cards []StatsCard
		if err := decodeObjectArray(body, &cards); err != nil {
			return nil, err
		}
		return &Import{Kind: kind, Stats: cards}, nil

	default:
		return nil, errors.NewMalformedImportError("no import kind selected")
	}
}

// decodeObjectArray enforces "JSON array of objects" before decoding, so a
// wrong-kind file is rejected instead of half-decoded.
func decodeObjectArray(data []byte, v any) error {
	if firstToken(data) != '[' {
		return errors.NewMalformedImportError("not a JSON array")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return errors.NewMalformedImportError("invalid JSON")
	}
	for i, e := range elems {
		if firstToken(e) != '{' {
			return errors.NewMalformedImportError(fmt.Sprintf("element %d is not an object", i))
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewMalformedImportError("records do not match the selected kind")
	}
	return nil
}

func firstToken(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

package models

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Payload is the textual transport encoding of a binary image, the
// data:<mime>;base64,<data> form the original exports used. The empty
// string means "no image".
type Payload string

// NewPayload encodes raw image bytes as a transport payload.
func NewPayload(mime string, data []byte) Payload {
	return Payload("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// IsZero reports whether the payload is absent.
func (p Payload) IsZero() bool {
	return p == ""
}

// Len returns the transport size in bytes, the quantity storage quota is
// charged against.
func (p Payload) Len() int {
	return len(p)
}

// MIME returns the declared media type, or "" when the payload is not a
// data URI.
func (p Payload) MIME() string {
	s := string(p)
	if !strings.HasPrefix(s, "data:") {
		return ""
	}
	rest := s[len("data:"):]
	if i := strings.IndexAny(rest, ";,"); i >= 0 {
		return rest[:i]
	}
	return ""
}

// Bytes decodes the payload back to raw image bytes.
func (p Payload) Bytes() ([]byte, error) {
	s := string(p)
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, fmt.Errorf("data URI without data separator")
		}
		if !strings.Contains(s[:i], ";base64") {
			return nil, fmt.Errorf("unsupported data URI encoding")
		}
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return raw, nil
}
